package pinctrl

import (
	"fmt"
	"sort"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	appLog "atlasboard/internal/log"
)

// LookupFunc resolves a line name to a periph.io pin. It returns nil when
// the name is unknown, as gpioreg.ByName does.
type LookupFunc func(name string) gpio.PinIO

// LineState is a snapshot of one line as seen by the registry.
type LineState struct {
	Pin   Pin        `json:"pin"`
	Line  string     `json:"line"`
	Owner string     `json:"owner,omitempty"`
	Func  string     `json:"func"`
	Pull  string     `json:"pull"`
	Level gpio.Level `json:"level"`
}

type line struct {
	io    gpio.PinIO
	name  string
	owner string
	fn    Func
	pull  gpio.Pull
	level gpio.Level
}

// Registry owns the mapping from pins to lines and the ownership table.
// All methods are safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	lookup LookupFunc
	names  map[Pin]string
	lines  map[Pin]*line
	drive  map[Bank]uint32
}

// New returns a registry resolving lines through lookup. names overrides
// the default line name of individual pins and may be nil.
func New(lookup LookupFunc, names map[Pin]string) *Registry {
	n := make(map[Pin]string, len(names))
	for p, s := range names {
		n[p] = s
	}
	return &Registry{
		lookup: lookup,
		names:  n,
		lines:  make(map[Pin]*line),
		drive:  make(map[Bank]uint32),
	}
}

// NewHost initializes periph.io host drivers and returns a registry backed
// by gpioreg.
func NewHost(names map[Pin]string) (*Registry, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("pinctrl: periph host init failed: %w", err)
	}
	for _, d := range state.Loaded {
		appLog.Debug("periph driver loaded", "driver", d.String())
	}
	return New(gpioreg.ByName, names), nil
}

// resolve must be called with r.mu held.
func (r *Registry) resolve(p Pin) (*line, error) {
	if l, ok := r.lines[p]; ok {
		return l, nil
	}
	name, ok := r.names[p]
	if !ok {
		name = p.LineName()
	}
	io := r.lookup(name)
	if io == nil {
		return nil, fmt.Errorf("%w: %s (line %q)", ErrUnknownPin, p, name)
	}
	l := &line{io: io, name: name, fn: FuncInput, pull: gpio.PullNoChange, level: gpio.Low}
	r.lines[p] = l
	return l, nil
}

// Request claims p for label. It fails with a *BusyError when the line is
// already owned, including by the same label.
func (r *Registry) Request(p Pin, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, err := r.resolve(p)
	if err != nil {
		return err
	}
	if l.owner != "" {
		return &BusyError{Pin: p, Owner: l.owner}
	}
	if label == "" {
		label = "?"
	}
	l.owner = label
	return nil
}

// Free returns p to the platform. Freeing an unowned line is reported but
// leaves the registry unchanged.
func (r *Registry) Free(p Pin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[p]
	if !ok || l.owner == "" {
		return fmt.Errorf("%w: %s", ErrNotOwned, p)
	}
	l.owner = ""
	return nil
}

// Owner reports the label holding p.
func (r *Registry) Owner(p Pin) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[p]
	if !ok || l.owner == "" {
		return "", false
	}
	return l.owner, true
}

// Held returns every owned pin, sorted.
func (r *Registry) Held() []Pin {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Pin
	for p, l := range r.lines {
		if l.owner != "" {
			out = append(out, p)
		}
	}
	sortPins(out)
	return out
}

// SetFunc selects the pin function. Output drives the last latched level;
// input and special functions leave the line high impedance as far as
// user space is concerned.
func (r *Registry) SetFunc(p Pin, f Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, err := r.resolve(p)
	if err != nil {
		return err
	}
	l.fn = f
	return l.apply()
}

// SetDirectionOutput is gpio_direction_output: latch v, then switch to output.
func (r *Registry) SetDirectionOutput(p Pin, v gpio.Level) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, err := r.resolve(p)
	if err != nil {
		return err
	}
	l.level = v
	l.fn = FuncOutput
	return l.apply()
}

// SetDirectionInput is gpio_direction_input.
func (r *Registry) SetDirectionInput(p Pin) error {
	return r.SetFunc(p, FuncInput)
}

// SetPull records the pull and applies it when the line is not an output.
func (r *Registry) SetPull(p Pin, pull gpio.Pull) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, err := r.resolve(p)
	if err != nil {
		return err
	}
	l.pull = pull
	if l.fn == FuncOutput {
		return nil
	}
	return l.apply()
}

// SetValue latches v and drives it when the line is an output.
func (r *Registry) SetValue(p Pin, v gpio.Level) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, err := r.resolve(p)
	if err != nil {
		return err
	}
	l.level = v
	if l.fn != FuncOutput {
		return nil
	}
	return l.io.Out(v)
}

// Value returns the driven level for outputs and samples the line otherwise.
func (r *Registry) Value(p Pin) (gpio.Level, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, err := r.resolve(p)
	if err != nil {
		return gpio.Low, err
	}
	if l.fn == FuncOutput {
		return l.level, nil
	}
	return l.io.Read(), nil
}

// SetDriveStrength records the GPxDRV register value of a bank. Lines
// exposed through periph.io have no drive-strength control, so this only
// feeds status reporting.
func (r *Registry) SetDriveStrength(b Bank, v uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drive[b] = v
	appLog.Debug("gpio drive strength", "bank", string(b), "value", fmt.Sprintf("%#08x", v))
}

// DriveStrength returns the last recorded GPxDRV value of b.
func (r *Registry) DriveStrength(b Bank) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.drive[b]
	return v, ok
}

// State returns a snapshot of p.
func (r *Registry) State(p Pin) (LineState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, err := r.resolve(p)
	if err != nil {
		return LineState{}, err
	}
	return l.state(p), nil
}

// States returns snapshots of every line touched so far, sorted by pin.
func (r *Registry) States() []LineState {
	r.mu.Lock()
	defer r.mu.Unlock()
	pins := make([]Pin, 0, len(r.lines))
	for p := range r.lines {
		pins = append(pins, p)
	}
	sortPins(pins)
	out := make([]LineState, 0, len(pins))
	for _, p := range pins {
		out = append(out, r.lines[p].state(p))
	}
	return out
}

func (l *line) apply() error {
	if l.fn == FuncOutput {
		return l.io.Out(l.level)
	}
	return l.io.In(l.pull, gpio.NoEdge)
}

func (l *line) state(p Pin) LineState {
	level := l.level
	if l.fn != FuncOutput {
		level = l.io.Read()
	}
	return LineState{
		Pin:   p,
		Line:  l.name,
		Owner: l.owner,
		Func:  l.fn.String(),
		Pull:  l.pull.String(),
		Level: level,
	}
}

func sortPins(pins []Pin) {
	sort.Slice(pins, func(i, j int) bool {
		if pins[i].Bank != pins[j].Bank {
			return pins[i].Bank < pins[j].Bank
		}
		return pins[i].Offset < pins[j].Offset
	})
}
