package pmic

import (
	"fmt"
	"strings"
	"sync"

	appLog "atlasboard/internal/log"
)

// Cable is the charger cable status.
type Cable int

const (
	CableNone Cable = iota
	CableUSB
	CableAC
)

func (c Cable) String() string {
	switch c {
	case CableNone:
		return "none"
	case CableUSB:
		return "usb"
	case CableAC:
		return "ac"
	default:
		return fmt.Sprintf("cable(%d)", int(c))
	}
}

// ParseCable accepts "none", "usb" and "ac".
func ParseCable(s string) (Cable, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CableNone, nil
	case "usb":
		return CableUSB, nil
	case "ac", "ta":
		return CableAC, nil
	}
	return CableNone, fmt.Errorf("pmic: unknown cable status %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Cable) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Charger is the mailbox between cable detection and the charger driver.
// It keeps only the latest status and at most one subscriber. Both sides
// may run before the other exists: a subscriber that registers late is
// handed the last status right away unless it is CableNone.
//
// Subscribers are called with the mailbox locked and must not call back
// into it.
type Charger struct {
	mu     sync.Mutex
	status Cable
	sub    func(Cable)
}

// Publish records status and delivers it to the subscriber, if any.
func (c *Charger) Publish(status Cable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	if c.sub == nil {
		appLog.Debug("cable status pending", "cable", status.String())
		return
	}
	c.sub(status)
}

// Register installs sub as the only subscriber, replacing any previous
// one. A nil sub unregisters.
func (c *Charger) Register(sub func(Cable)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sub = sub
	if sub != nil && c.status != CableNone {
		sub(c.status)
	}
}

// Status returns the last published status.
func (c *Charger) Status() Cable {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}
