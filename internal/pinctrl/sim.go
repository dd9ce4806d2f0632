package pinctrl

import (
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// SimLines hands out gpiotest pins on demand. It backs the registry when
// the program runs without hardware and in tests.
type SimLines struct {
	mu   sync.Mutex
	pins map[string]*gpiotest.Pin
}

// NewSimLines returns an empty simulated line set.
func NewSimLines() *SimLines {
	return &SimLines{pins: make(map[string]*gpiotest.Pin)}
}

// ByName implements LookupFunc; every name resolves.
func (s *SimLines) ByName(name string) gpio.PinIO {
	return s.Pin(name)
}

// Pin returns the simulated pin for name, creating it low.
func (s *SimLines) Pin(name string) *gpiotest.Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pins[name]
	if !ok {
		p = &gpiotest.Pin{N: name, Num: len(s.pins), L: gpio.Low}
		s.pins[name] = p
	}
	return p
}

// NewSimulated returns a registry over a fresh SimLines.
func NewSimulated(names map[Pin]string) (*Registry, *SimLines) {
	lines := NewSimLines()
	return New(lines.ByName, names), lines
}
