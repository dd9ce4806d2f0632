package pinctrl

import appLog "atlasboard/internal/log"

// Guard claims pins one at a time and frees them in reverse order unless
// Commit is called first. Typical use:
//
//	g := reg.Guard()
//	defer g.Release()
//	if err := g.Request(p, "label"); err != nil {
//		return err
//	}
//	held := g.Commit()
type Guard struct {
	reg  Claimer
	held []Pin
	done bool
}

// Claimer is the ownership half of the registry.
type Claimer interface {
	Request(p Pin, label string) error
	Free(p Pin) error
}

// NewGuard starts a scoped acquisition on c.
func NewGuard(c Claimer) *Guard {
	return &Guard{reg: c}
}

// Guard starts a scoped acquisition on r.
func (r *Registry) Guard() *Guard {
	return NewGuard(r)
}

// Request claims p and pushes it on the guard's stack.
func (g *Guard) Request(p Pin, label string) error {
	if err := g.reg.Request(p, label); err != nil {
		return err
	}
	g.held = append(g.held, p)
	return nil
}

// Commit hands ownership of the claimed pins to the caller. The returned
// slice is in acquisition order.
func (g *Guard) Commit() []Pin {
	g.done = true
	out := make([]Pin, len(g.held))
	copy(out, g.held)
	return out
}

// Release frees every claimed pin, last claimed first. It does nothing
// after Commit.
func (g *Guard) Release() {
	if g.done {
		return
	}
	g.done = true
	for i := len(g.held) - 1; i >= 0; i-- {
		if err := g.reg.Free(g.held[i]); err != nil {
			appLog.Error("guard release: free failed", err, "pin", g.held[i])
		}
	}
	g.held = nil
}
