package board

import "atlasboard/internal/panel"

// Swap is the framebuffer byte swap setting.
type Swap uint32

const (
	SwapHWord Swap = 1 << 16
	SwapWord  Swap = 1 << 24
)

func (s Swap) String() string {
	switch s {
	case 0:
		return "none"
	case SwapHWord:
		return "hword"
	case SwapWord:
		return "word"
	case SwapHWord | SwapWord:
		return "hword|word"
	}
	return "custom"
}

// MarshalText implements encoding.TextMarshaler.
func (s Swap) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FBPlatformData is what the display controller driver is handed: the
// panel description plus the board hooks it calls. The hooks take the
// board lock, so they must not be called from inside a Board operation.
type FBPlatformData struct {
	HWVer      uint32    `json:"hw_ver"`
	ClkName    string    `json:"clk_name"`
	NrWins     int       `json:"nr_wins"`
	DefaultWin int       `json:"default_win"`
	Swap       Swap      `json:"swap"`
	LCD        panel.LCD `json:"lcd"`

	CfgGPIO     func() error `json:"-"`
	BacklightOn func() error `json:"-"`
	ResetLCD    func() error `json:"-"`
}

// defaultWindow is the framebuffer window the console uses.
const defaultWindow = 3

func (b *Board) newFBPlatformData() FBPlatformData {
	m := b.panel.Manager()
	return FBPlatformData{
		HWVer:       0x62,
		ClkName:     "sclk_fimd",
		NrWins:      5,
		DefaultWin:  defaultWindow,
		Swap:        SwapHWord | SwapWord,
		LCD:         panel.S6E63M0,
		CfgGPIO:     b.locked("fb cfg-gpio", m.ConfigureLCD),
		BacklightOn: func() error { return nil }, // AMOLED, no backlight
		ResetLCD:    b.locked("fb reset-lcd", m.ResetLCD),
	}
}

// locked wraps a framebuffer hook so it runs under the board lock like
// every other lifecycle operation.
func (b *Board) locked(op string, fn func() error) func() error {
	return func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.record(op, fn())
	}
}
