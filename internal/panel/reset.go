package panel

import (
	"time"

	"periph.io/x/conn/v3/gpio"

	appLog "atlasboard/internal/log"
	"atlasboard/internal/pinctrl"
)

// ResetHold is how long each reset level is held. The controller needs
// all three holds.
const ResetHold = 10 * time.Millisecond

// Lines is the part of the GPIO registry the panel code drives.
type Lines interface {
	pinctrl.Claimer
	SetFunc(p pinctrl.Pin, f pinctrl.Func) error
	SetDirectionOutput(p pinctrl.Pin, v gpio.Level) error
	SetPull(p pinctrl.Pin, pull gpio.Pull) error
	SetValue(p pinctrl.Pin, v gpio.Level) error
	Value(p pinctrl.Pin) (gpio.Level, error)
	SetDriveStrength(b pinctrl.Bank, v uint32)
}

// Sequencer pulses the panel reset line.
type Sequencer struct {
	lines Lines
	sleep func(time.Duration)
}

// NewSequencer returns a Sequencer using sleep for delays; nil means
// time.Sleep.
func NewSequencer(lines Lines, sleep func(time.Duration)) *Sequencer {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Sequencer{lines: lines, sleep: sleep}
}

// Reset drives rst high, low, high with a ResetHold after each level. The
// caller must own rst. Errors from the line are logged; the sequence
// always runs to the end.
func (s *Sequencer) Reset(rst pinctrl.Pin) {
	if err := s.lines.SetDirectionOutput(rst, gpio.High); err != nil {
		appLog.Error("panel reset: drive high failed", err, "pin", rst)
	}
	s.sleep(ResetHold)

	if err := s.lines.SetValue(rst, gpio.Low); err != nil {
		appLog.Error("panel reset: drive low failed", err, "pin", rst)
	}
	s.sleep(ResetHold)

	if err := s.lines.SetValue(rst, gpio.High); err != nil {
		appLog.Error("panel reset: release failed", err, "pin", rst)
	}
	s.sleep(ResetHold)
}
