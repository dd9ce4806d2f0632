package panel

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	appLog "atlasboard/internal/log"
	"atlasboard/internal/pinctrl"
)

// Labels used when claiming lines.
const (
	labelRDX = "tl2796_rdx"
	labelDCX = "tl2796_dcx"
	labelRST = "tl2796_rst"
	labelDBX = "tl2796_dbx"
)

// rdStrobe is the RDX low time for a bus read.
const rdStrobe = time.Microsecond

// Manager claims and releases the panel's bit-bang lines.
type Manager struct {
	cfg   *Config
	lines Lines
	seq   *Sequencer
}

// NewManager returns a Manager for cfg.
func NewManager(cfg *Config, lines Lines, seq *Sequencer) *Manager {
	return &Manager{cfg: cfg, lines: lines, seq: seq}
}

// Handle is a successful acquisition. It must be released exactly once;
// further Release calls do nothing.
type Handle struct {
	m        *Manager
	pins     []pinctrl.Pin
	released bool
}

// Pins returns the claimed pins in acquisition order.
func (h *Handle) Pins() []pinctrl.Pin {
	out := make([]pinctrl.Pin, len(h.pins))
	copy(out, h.pins)
	return out
}

// Acquire claims RDX, DCX, RST and DB0..DB7 in that order. If any claim
// fails every earlier claim is undone, newest first, and the failing
// pin's error is returned. On success the bus pins are outputs without
// pull, driven low.
func (m *Manager) Acquire() (*Handle, error) {
	g := pinctrl.NewGuard(m.lines)
	defer g.Release()

	if err := g.Request(m.cfg.RDX, labelRDX); err != nil {
		return nil, fmt.Errorf("panel: request rdx: %w", err)
	}
	if err := g.Request(m.cfg.DCX, labelDCX); err != nil {
		return nil, fmt.Errorf("panel: request dcx: %w", err)
	}
	if err := g.Request(m.cfg.RST, labelRST); err != nil {
		return nil, fmt.Errorf("panel: request rst: %w", err)
	}
	for i, p := range m.cfg.DB {
		if err := g.Request(p, labelDBX); err != nil {
			return nil, fmt.Errorf("panel: request db%d: %w", i, err)
		}
	}

	var errs []error
	for _, p := range m.busPins() {
		errs = append(errs,
			m.lines.SetDirectionOutput(p, gpio.Low),
			m.lines.SetPull(p, gpio.Float),
		)
	}
	if err := errors.Join(errs...); err != nil {
		m.restoreBus()
		return nil, fmt.Errorf("panel: configure bus: %w", err)
	}

	h := &Handle{m: m, pins: g.Commit()}
	appLog.Debug("panel gpios acquired", "count", len(h.pins))
	return h, nil
}

// Release hands the bus pins back to the LCD controller function, resets
// the panel and frees every pin in reverse order. It never fails.
func (h *Handle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	m := h.m

	m.restoreBus()
	m.seq.Reset(m.cfg.RST)

	for i := len(h.pins) - 1; i >= 0; i-- {
		if err := m.lines.Free(h.pins[i]); err != nil {
			appLog.Error("panel release: free failed", err, "pin", h.pins[i])
		}
	}
	appLog.Debug("panel gpios released", "count", len(h.pins))
}

// restoreBus hands the bus pins back to the LCD controller function.
func (m *Manager) restoreBus() {
	for _, p := range m.busPins() {
		if err := m.lines.SetFunc(p, pinctrl.SFN(2)); err != nil {
			appLog.Error("panel: restore bus function failed", err, "pin", p)
		}
		if err := m.lines.SetPull(p, gpio.Float); err != nil {
			appLog.Error("panel: restore bus pull failed", err, "pin", p)
		}
	}
}

// busPins are DCX, RDX and the data bus: the pins that leave the LCD
// controller function while a Handle is held.
func (m *Manager) busPins() []pinctrl.Pin {
	out := make([]pinctrl.Pin, 0, 2+len(m.cfg.DB))
	out = append(out, m.cfg.DCX, m.cfg.RDX)
	return append(out, m.cfg.DB[:]...)
}

// ReadBus samples the data bus with an RDX strobe while DCX selects data.
// The register to read must already have been addressed over SPI.
func (h *Handle) ReadBus() (byte, error) {
	if h.released {
		return 0, errors.New("panel: read on released handle")
	}
	m := h.m
	cfg := m.cfg

	for _, p := range cfg.DB {
		if err := m.lines.SetFunc(p, pinctrl.FuncInput); err != nil {
			return 0, err
		}
	}
	defer func() {
		for _, p := range cfg.DB {
			_ = m.lines.SetDirectionOutput(p, gpio.Low)
		}
	}()

	if err := m.lines.SetValue(cfg.DCX, gpio.High); err != nil {
		return 0, err
	}
	if err := m.lines.SetValue(cfg.RDX, gpio.Low); err != nil {
		return 0, err
	}
	m.seq.sleep(rdStrobe)

	var b byte
	for i, p := range cfg.DB {
		v, err := m.lines.Value(p)
		if err != nil {
			return 0, err
		}
		if v == gpio.High {
			b |= 1 << i
		}
	}

	if err := m.lines.SetValue(cfg.RDX, gpio.High); err != nil {
		return 0, err
	}
	return b, m.lines.SetValue(cfg.DCX, gpio.Low)
}
