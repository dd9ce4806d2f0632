// Package panel drives the s6e63m0 AMOLED panel and its tl2796 controller:
// command sequences over the 9-bit SPI bus, the reset line, the bit-banged
// register read path and the suspend/resume pin states.
package panel

import (
	"errors"
	"fmt"

	"atlasboard/internal/gamma"
	appLog "atlasboard/internal/log"
)

// State is the power state of the panel.
type State int

const (
	StateOff State = iota
	StateOn
	StateStandby
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateOn:
		return "on"
	case StateStandby:
		return "standby"
	case StateSuspended:
		return "suspended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var ErrNotOn = errors.New("panel: panel is not on")

// Panel ties the pin manager and the SPI writer together. It is not safe
// for concurrent use; the board serializes calls.
type Panel struct {
	cfg   *Config
	mgr   *Manager
	w     *Writer
	state State
	v255  *[3]uint8
}

// New returns a Panel in StateOff.
func New(cfg *Config, mgr *Manager, w *Writer) *Panel {
	return &Panel{cfg: cfg, mgr: mgr, w: w}
}

// State returns the current power state.
func (p *Panel) State() State {
	return p.state
}

// Manager returns the pin manager.
func (p *Panel) Manager() *Manager {
	return p.mgr
}

// PowerOn routes the LCD pins, resets the panel and runs the display and
// ETC setting sequences.
func (p *Panel) PowerOn() error {
	if err := p.mgr.ConfigureLCD(); err != nil {
		return fmt.Errorf("panel: configure lcd pins: %w", err)
	}
	if err := p.mgr.ResetLCD(); err != nil {
		return fmt.Errorf("panel: reset: %w", err)
	}
	if err := p.w.Run(p.cfg.DisplaySetting); err != nil {
		return fmt.Errorf("panel: display setting: %w", err)
	}
	if err := p.w.Run(p.cfg.ETCSetting); err != nil {
		return fmt.Errorf("panel: etc setting: %w", err)
	}
	p.state = StateOn
	appLog.Info("panel on", "setting_delay", p.cfg.DisplaySetting.Duration())
	return nil
}

// Standby enters (on) or leaves the controller's standby mode without
// touching the pins.
func (p *Panel) Standby(on bool) error {
	if on {
		if p.state != StateOn {
			return ErrNotOn
		}
		if err := p.w.Run(p.cfg.StandbyOn); err != nil {
			return fmt.Errorf("panel: standby on: %w", err)
		}
		p.state = StateStandby
		return nil
	}
	if p.state != StateStandby {
		return nil
	}
	if err := p.w.Run(p.cfg.StandbyOff); err != nil {
		return fmt.Errorf("panel: standby off: %w", err)
	}
	p.state = StateOn
	return nil
}

// Suspend puts the controller in standby and parks the pins. Suspending a
// panel that is not on only parks the pins.
func (p *Panel) Suspend() error {
	if p.state == StateOn {
		if err := p.Standby(true); err != nil {
			return err
		}
	}
	if err := p.mgr.EarlySuspend(); err != nil {
		return fmt.Errorf("panel: early suspend: %w", err)
	}
	p.state = StateSuspended
	appLog.Info("panel suspended")
	return nil
}

// Resume restores the pins and powers the panel back on.
func (p *Panel) Resume() error {
	if err := p.mgr.LateResume(); err != nil {
		return fmt.Errorf("panel: late resume: %w", err)
	}
	return p.PowerOn()
}

// Reset pulses the reset line, then replays the setting sequences if the
// panel was on.
func (p *Panel) Reset() error {
	if err := p.mgr.ResetLCD(); err != nil {
		return fmt.Errorf("panel: reset: %w", err)
	}
	return p.replay()
}

// replay re-sends the setting sequences after a reset of a panel that
// should be on.
func (p *Panel) replay() error {
	if p.state != StateOn {
		return nil
	}
	if err := p.w.Run(p.cfg.DisplaySetting); err != nil {
		return fmt.Errorf("panel: display setting: %w", err)
	}
	if err := p.w.Run(p.cfg.ETCSetting); err != nil {
		return fmt.Errorf("panel: etc setting: %w", err)
	}
	return nil
}

// ReadFactoryV255 addresses each factory V255 register over SPI and reads
// it back over the bit-banged bus. Releasing the bus resets the panel, so
// a panel that was on gets its settings replayed whether or not the read
// succeeded. Only a successful result is cached.
func (p *Panel) ReadFactoryV255() ([3]uint8, error) {
	if p.v255 != nil {
		return *p.v255, nil
	}
	h, err := p.mgr.Acquire()
	if err != nil {
		return [3]uint8{}, err
	}
	out, err := p.readV255(h)
	h.Release()
	if err != nil {
		return [3]uint8{}, errors.Join(err, p.replay())
	}

	p.v255 = &out
	appLog.Info("panel factory v255 read", "r", out[gamma.Red], "g", out[gamma.Green], "b", out[gamma.Blue])
	return out, p.replay()
}

func (p *Panel) readV255(h *Handle) ([3]uint8, error) {
	var out [3]uint8
	for c, reg := range p.cfg.FactoryV255Regs {
		if err := p.w.Command(reg); err != nil {
			return out, fmt.Errorf("panel: address %#02x: %w", reg, err)
		}
		v, err := h.ReadBus()
		if err != nil {
			return out, fmt.Errorf("panel: read %#02x: %w", reg, err)
		}
		out[c] = v
	}
	return out, nil
}

// FactoryV255 returns the trim cached by ReadFactoryV255.
func (p *Panel) FactoryV255() ([3]uint8, bool) {
	if p.v255 == nil {
		return [3]uint8{}, false
	}
	return *p.v255, true
}

// Calibration returns the gamma adjustment points for brightness.
func (p *Panel) Calibration(brightness uint8) []gamma.Point {
	return gamma.Calibrate(p.cfg.Gamma, p.cfg.ColorAdj, brightness)
}
