// Package board assembles the Atlas board: it validates every static
// table, wires the panel to its GPIO and SPI backends, and runs the
// bring-up and suspend/resume lifecycle.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"periph.io/x/conn/v3/spi"

	"atlasboard/internal/gamma"
	appLog "atlasboard/internal/log"
	"atlasboard/internal/onenand"
	"atlasboard/internal/panel"
	"atlasboard/internal/pinctrl"
	"atlasboard/internal/pmic"
)

// Name is the machine name.
const Name = "atlas"

// OneNANDDevice is the MTD device name used in mtdparts.
const OneNANDDevice = "s5pc110-onenand"

// Options configure a Board.
type Options struct {
	// Prober checks the PMIC devices at bring-up. Nil skips the check.
	Prober pmic.Prober
	// GammaBrightness is the brightness used when a caller does not pick one.
	GammaBrightness uint8
	// Sleep replaces time.Sleep for panel delays. Tests set it.
	Sleep func(time.Duration)
}

var ErrPinConflict = errors.New("board: pin assigned twice")

// Board is the assembled machine. All methods are safe for concurrent use;
// lifecycle operations are serialized.
type Board struct {
	mu sync.Mutex

	reg      *pinctrl.Registry
	cfg      *panel.Config
	panel    *panel.Panel
	fb       FBPlatformData
	charger  pmic.Charger
	prober   pmic.Prober
	regs     []pmic.Regulator
	temps    pmic.TempTable
	layout   onenand.Layout
	bright   uint8
	pmicSeen []pmic.DeviceStatus
	lastErr  error
	changed  time.Time
}

// New validates the board tables and wires the panel to reg and conn. It
// does not touch the hardware; call BringUp for that.
func New(reg *pinctrl.Registry, conn spi.Conn, opts Options) (*Board, error) {
	cfg := panel.Atlas()
	b := &Board{
		reg:    reg,
		cfg:    cfg,
		prober: opts.Prober,
		regs:   pmic.Regulators(),
		temps:  pmic.AtlasTemps(),
		layout: onenand.Atlas(),
		bright: opts.GammaBrightness,
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	seq := panel.NewSequencer(reg, opts.Sleep)
	mgr := panel.NewManager(cfg, reg, seq)
	b.panel = panel.New(cfg, mgr, panel.NewWriter(conn, opts.Sleep))
	b.fb = b.newFBPlatformData()
	b.charger.Register(func(c pmic.Cable) {
		appLog.Info("charger cable changed", "cable", c.String())
	})

	appLog.Info("board tables validated",
		"machine", Name,
		"regulators", len(b.regs),
		"partitions", len(b.layout),
		"gamma_entries", len(cfg.Gamma),
	)
	return b, nil
}

func (b *Board) validate() error {
	if err := b.cfg.Validate(); err != nil {
		return fmt.Errorf("board: panel tables: %w", err)
	}
	if err := pmic.Validate(b.regs); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if err := pmic.ValidatePreloads(pmic.AtlasPreloads, b.regs); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if err := b.temps.Validate(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if err := b.layout.Validate(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	return checkPins(b.cfg)
}

// checkPins makes sure the bit-bang lines, the SPI lines and the reset
// line are all distinct.
func checkPins(cfg *panel.Config) error {
	seen := make(map[pinctrl.Pin]string)
	add := func(p pinctrl.Pin, role string) error {
		if prev, ok := seen[p]; ok {
			return fmt.Errorf("%w: %s is both %s and %s", ErrPinConflict, p, prev, role)
		}
		seen[p] = role
		return nil
	}
	pins := map[string]pinctrl.Pin{
		"rst": cfg.RST,
		"dcx": cfg.DCX,
		"rdx": cfg.RDX,
		"csx": cfg.CSX,
		"wrx": cfg.WRX,
	}
	for _, role := range []string{"rst", "dcx", "rdx", "csx", "wrx"} {
		if err := add(pins[role], role); err != nil {
			return err
		}
	}
	for i, p := range cfg.DB {
		if err := add(p, fmt.Sprintf("db%d", i)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Board) record(op string, err error) error {
	b.changed = time.Now()
	b.lastErr = err
	if err != nil {
		appLog.Error("board "+op+" failed", err)
		return err
	}
	appLog.Info("board "+op, "panel", b.panel.State().String())
	return nil
}

// BringUp powers the panel on, reads its factory V255 trim and probes the
// PMIC. Only the panel power-on is fatal.
func (b *Board) BringUp(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.panel.PowerOn(); err != nil {
		return b.record("bring-up", err)
	}
	if _, err := b.panel.ReadFactoryV255(); err != nil {
		appLog.Warn("panel factory v255 unavailable", "err", err)
	}
	if b.prober != nil {
		b.pmicSeen = b.probePMIC(ctx)
	}
	return b.record("bring-up", nil)
}

// probeMaxRetries bounds the PMIC probe; the I2C adapter may still be
// coming up when the daemon starts.
const probeMaxRetries = 3

func (b *Board) probePMIC(ctx context.Context) []pmic.DeviceStatus {
	var st []pmic.DeviceStatus
	op := func() error {
		var err error
		st, err = b.prober.Probe(ctx)
		return err
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), probeMaxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		appLog.Warn("pmic probe failed", "err", err)
	}
	for _, s := range st {
		appLog.Debug("pmic device", "device", s.Device.String(), "present", s.Present)
	}
	return st
}

// EarlySuspend puts the panel into standby and parks the display pins.
func (b *Board) EarlySuspend() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record("early-suspend", b.panel.Suspend())
}

// LateResume restores the display pins and powers the panel back on.
func (b *Board) LateResume() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record("late-resume", b.panel.Resume())
}

// ResetPanel runs the framebuffer reset hook and replays the setting
// sequences if the panel is on.
func (b *Board) ResetPanel() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record("panel-reset", b.panel.Reset())
}

// Shutdown leaves the panel suspended. It is safe to call more than once.
func (b *Board) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.panel.State() == panel.StateSuspended {
		return nil
	}
	return b.record("shutdown", b.panel.Suspend())
}

// FB returns the framebuffer platform data.
func (b *Board) FB() FBPlatformData {
	return b.fb
}

// Charger returns the cable event mailbox.
func (b *Board) Charger() *pmic.Charger {
	return &b.charger
}

// Regulators returns the PMIC regulator table.
func (b *Board) Regulators() []pmic.Regulator {
	out := make([]pmic.Regulator, len(b.regs))
	copy(out, b.regs)
	return out
}

// Partitions returns the OneNAND layout.
func (b *Board) Partitions() onenand.Layout {
	out := make(onenand.Layout, len(b.layout))
	copy(out, b.layout)
	return out
}

// MTDParts renders the OneNAND layout for the kernel command line.
func (b *Board) MTDParts() string {
	return b.layout.MTDParts(OneNANDDevice)
}

// Temperature converts a battery thermistor reading to tenths of °C.
func (b *Board) Temperature(adc int) int {
	return b.temps.Temperature(adc)
}

// GammaReading is the drive voltage at one brightness index.
type GammaReading struct {
	Index        uint32    `json:"index"`
	Volts        [3]uint32 `json:"volts"`
	Adjusted     [3]uint32 `json:"adjusted"`
	Interpolated [3]uint32 `json:"interpolated"`
}

// Gamma looks up index in the panel gamma table.
func (b *Board) Gamma(index uint32) GammaReading {
	v := b.cfg.Gamma.Lookup(index)
	return GammaReading{
		Index:        index,
		Volts:        v,
		Adjusted:     b.cfg.ColorAdj.Apply(v),
		Interpolated: b.cfg.Gamma.Interpolate(index),
	}
}

// Calibration returns the adjustment points for brightness, or for the
// configured brightness when brightness is nil.
func (b *Board) Calibration(brightness *uint8) []gamma.Point {
	br := b.bright
	if brightness != nil {
		br = *brightness
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.panel.Calibration(br)
}
