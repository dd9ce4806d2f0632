// Package pinctrl is the GPIO registry used by the board code. It resolves
// S5PV210 pins onto periph.io lines, tracks which component owns each line
// and keeps the pin function, pull and drive state that the SoC pin
// controller would otherwise hold.
package pinctrl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Bank is an S5PV210 GPIO bank.
type Bank string

const (
	GPF0 Bank = "GPF0"
	GPF1 Bank = "GPF1"
	GPF2 Bank = "GPF2"
	GPF3 Bank = "GPF3"
	GPH0 Bank = "GPH0"
	GPH1 Bank = "GPH1"
	GPJ1 Bank = "GPJ1"
	MP01 Bank = "MP01"
	MP04 Bank = "MP04"
	MP05 Bank = "MP05"
)

// Pin identifies one line as bank + offset, e.g. GPF0(4).
type Pin struct {
	Bank   Bank
	Offset int
}

// P is shorthand for Pin{Bank: b, Offset: n}.
func P(b Bank, n int) Pin {
	return Pin{Bank: b, Offset: n}
}

func (p Pin) String() string {
	return fmt.Sprintf("%s(%d)", p.Bank, p.Offset)
}

// LineName is the default periph.io line name for the pin, "GPF0_4".
// Config overrides take precedence over it.
func (p Pin) LineName() string {
	return fmt.Sprintf("%s_%d", p.Bank, p.Offset)
}

// BankPins returns pins [0, n) of bank b.
func BankPins(b Bank, n int) []Pin {
	out := make([]Pin, n)
	for i := range out {
		out[i] = P(b, i)
	}
	return out
}

// Func is the pin controller function, numbered as the SoC's GPxCON field.
type Func uint8

const (
	FuncInput  Func = 0
	FuncOutput Func = 1
)

// SFN returns special function n.
func SFN(n uint8) Func {
	return Func(n)
}

func (f Func) String() string {
	switch f {
	case FuncInput:
		return "input"
	case FuncOutput:
		return "output"
	default:
		return fmt.Sprintf("sfn%d", uint8(f))
	}
}

var (
	// ErrBusy is returned by Request when another owner holds the line.
	ErrBusy = errors.New("pinctrl: line busy")
	// ErrUnknownPin is returned when a pin cannot be resolved to a line.
	ErrUnknownPin = errors.New("pinctrl: unknown pin")
	// ErrNotOwned is returned by Free for a line that is not requested.
	ErrNotOwned = errors.New("pinctrl: line not requested")
)

// BusyError reports the pin that could not be claimed and who holds it.
type BusyError struct {
	Pin   Pin
	Owner string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("pinctrl: %s already requested by %q", e.Pin, e.Owner)
}

func (e *BusyError) Unwrap() error {
	return ErrBusy
}

// MarshalText renders the pin as "GPF0(4)".
func (p Pin) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts "GPF0(4)" and "GPF0_4".
func (p *Pin) UnmarshalText(b []byte) error {
	parsed, err := ParsePin(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePin parses "GPF0(4)" or "GPF0_4".
func ParsePin(s string) (Pin, error) {
	var bank string
	var n int
	if i := strings.IndexByte(s, '('); i > 0 && strings.HasSuffix(s, ")") {
		bank = s[:i]
		v, err := strconv.Atoi(s[i+1 : len(s)-1])
		if err != nil {
			return Pin{}, fmt.Errorf("pinctrl: bad pin %q: %w", s, err)
		}
		n = v
	} else if i := strings.LastIndexByte(s, '_'); i > 0 {
		bank = s[:i]
		v, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return Pin{}, fmt.Errorf("pinctrl: bad pin %q: %w", s, err)
		}
		n = v
	} else {
		return Pin{}, fmt.Errorf("pinctrl: bad pin %q", s)
	}
	if n < 0 || n > 7 {
		return Pin{}, fmt.Errorf("pinctrl: bad pin %q: offset out of range", s)
	}
	return P(Bank(strings.ToUpper(bank)), n), nil
}
