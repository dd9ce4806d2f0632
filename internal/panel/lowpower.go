package panel

import (
	"errors"

	"periph.io/x/conn/v3/gpio"

	"atlasboard/internal/pinctrl"
)

// lcdPins are the RGB interface pins: GPF0..GPF2 and GPF3(0..3).
func lcdPins() []pinctrl.Pin {
	var out []pinctrl.Pin
	for _, b := range []pinctrl.Bank{pinctrl.GPF0, pinctrl.GPF1, pinctrl.GPF2} {
		out = append(out, pinctrl.BankPins(b, 8)...)
	}
	return append(out, pinctrl.BankPins(pinctrl.GPF3, 4)...)
}

var lcdBanks = []pinctrl.Bank{pinctrl.GPF0, pinctrl.GPF1, pinctrl.GPF2, pinctrl.GPF3}

// ConfigureLCD routes the RGB pins to the display controller and the
// panel SPI pins to their bus function.
func (m *Manager) ConfigureLCD() error {
	var errs []error
	for _, p := range lcdPins() {
		errs = append(errs, m.cfgPin(p, pinctrl.SFN(2), gpio.Float))
	}
	for _, p := range []pinctrl.Pin{PinDisplayCS, PinDisplayCLK, PinDisplaySO, PinDisplaySI} {
		errs = append(errs, m.cfgPin(p, pinctrl.SFN(1), gpio.Float))
	}
	return errors.Join(errs...)
}

// EarlySuspend parks every display pin in its lowest-power state. It does
// not take ownership of the lines and may be called repeatedly.
func (m *Manager) EarlySuspend() error {
	var errs []error
	for _, p := range lcdPins() {
		errs = append(errs, m.driveLow(p))
	}
	for _, b := range lcdBanks {
		m.lines.SetDriveStrength(b, 0)
	}
	for _, p := range []pinctrl.Pin{PinOLEDDet, PinMLCDReset, PinDisplayCS, PinDisplayCLK, PinDisplaySI} {
		errs = append(errs, m.driveLow(p))
	}
	for _, p := range []pinctrl.Pin{PinOLEDID, PinDICID} {
		errs = append(errs, m.cfgPin(p, pinctrl.FuncInput, gpio.PullDown))
	}
	return errors.Join(errs...)
}

// LateResume restores the detect and ID pins changed by EarlySuspend.
func (m *Manager) LateResume() error {
	return errors.Join(
		m.cfgPin(PinOLEDDet, pinctrl.FuncInput, gpio.Float),
		m.cfgPin(PinOLEDID, pinctrl.FuncOutput, gpio.Float),
		m.cfgPin(PinDICID, pinctrl.FuncOutput, gpio.Float),
	)
}

// ResetLCD is the framebuffer reset hook: claim the reset line, pulse it
// and give it back.
func (m *Manager) ResetLCD() error {
	if err := m.lines.Request(m.cfg.RST, "MLCD_RST"); err != nil {
		return err
	}
	m.seq.Reset(m.cfg.RST)
	return m.lines.Free(m.cfg.RST)
}

func (m *Manager) cfgPin(p pinctrl.Pin, f pinctrl.Func, pull gpio.Pull) error {
	if err := m.lines.SetFunc(p, f); err != nil {
		return err
	}
	return m.lines.SetPull(p, pull)
}

func (m *Manager) driveLow(p pinctrl.Pin) error {
	if err := m.lines.SetDirectionOutput(p, gpio.Low); err != nil {
		return err
	}
	return m.lines.SetPull(p, gpio.Float)
}
