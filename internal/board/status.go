package board

import (
	"time"

	"atlasboard/internal/panel"
	"atlasboard/internal/pinctrl"
	"atlasboard/internal/pmic"
)

// PanelStatus describes the panel and the lines around it.
type PanelStatus struct {
	State     panel.State         `json:"state"`
	V255      *[3]uint8           `json:"factory_v255,omitempty"`
	Held      []pinctrl.Pin       `json:"held"`
	Lines     []pinctrl.LineState `json:"lines"`
	DriveLow  []pinctrl.Bank      `json:"drive_min_banks,omitempty"`
	LastError string              `json:"last_error,omitempty"`
	Changed   time.Time           `json:"changed"`
}

// Status is the board overview served by the HTTP API.
type Status struct {
	Machine  string               `json:"machine"`
	Panel    PanelStatus          `json:"panel"`
	FB       FBPlatformData       `json:"framebuffer"`
	SPI      []panel.SPIBoardInfo `json:"spi_devices"`
	SPIGPIO  panel.SPIGPIO        `json:"spi_gpio"`
	I2C      []pmic.I2CDevice     `json:"i2c_devices"`
	PMIC     []pmic.DeviceStatus  `json:"pmic,omitempty"`
	Preloads pmic.Preloads        `json:"buck_preloads"`
	Cable    pmic.Cable           `json:"cable"`
	MTDParts string               `json:"mtdparts"`
}

// PanelStatus returns a snapshot of the panel.
func (b *Board) PanelStatus() PanelStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.panelStatus()
}

func (b *Board) panelStatus() PanelStatus {
	st := PanelStatus{
		State:   b.panel.State(),
		Held:    b.reg.Held(),
		Lines:   b.reg.States(),
		Changed: b.changed,
	}
	if st.Held == nil {
		st.Held = []pinctrl.Pin{}
	}
	if v, ok := b.panel.FactoryV255(); ok {
		st.V255 = &v
	}
	for _, bank := range []pinctrl.Bank{pinctrl.GPF0, pinctrl.GPF1, pinctrl.GPF2, pinctrl.GPF3} {
		if v, ok := b.reg.DriveStrength(bank); ok && v == 0 {
			st.DriveLow = append(st.DriveLow, bank)
		}
	}
	if b.lastErr != nil {
		st.LastError = b.lastErr.Error()
	}
	return st
}

// Status returns a snapshot of the whole board.
func (b *Board) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	pm := make([]pmic.DeviceStatus, len(b.pmicSeen))
	copy(pm, b.pmicSeen)
	return Status{
		Machine:  Name,
		Panel:    b.panelStatus(),
		FB:       b.fb,
		SPI:      []panel.SPIBoardInfo{panel.TL2796SPI},
		SPIGPIO:  panel.LCDSPIGPIO,
		I2C:      pmic.Devices,
		PMIC:     pm,
		Preloads: pmic.AtlasPreloads,
		Cable:    b.charger.Status(),
		MTDParts: b.layout.MTDParts(OneNANDDevice),
	}
}
