package panel

import (
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"

	"atlasboard/internal/pinctrl"
)

// recLines records level changes and sleeps, lets tests feed levels
// into input lines and can fail switching chosen lines to output.
type recLines struct {
	*pinctrl.Registry
	events  []string
	input   map[pinctrl.Pin]gpio.Level
	failOut map[pinctrl.Pin]error
}

func (r *recLines) SetDirectionOutput(p pinctrl.Pin, v gpio.Level) error {
	r.events = append(r.events, fmt.Sprintf("out %s %s", p, v))
	if err := r.failOut[p]; err != nil {
		return err
	}
	return r.Registry.SetDirectionOutput(p, v)
}

func (r *recLines) SetValue(p pinctrl.Pin, v gpio.Level) error {
	r.events = append(r.events, fmt.Sprintf("set %s %s", p, v))
	return r.Registry.SetValue(p, v)
}

func (r *recLines) Value(p pinctrl.Pin) (gpio.Level, error) {
	if v, ok := r.input[p]; ok {
		return v, nil
	}
	return r.Registry.Value(p)
}

func (r *recLines) sleep(d time.Duration) {
	r.events = append(r.events, "sleep "+d.String())
}

// eventsFor filters the recorded events down to those touching p, plus
// every sleep.
func (r *recLines) eventsFor(p pinctrl.Pin) []string {
	var out []string
	tag := " " + p.String() + " "
	for _, e := range r.events {
		if strings.HasPrefix(e, "sleep") {
			out = append(out, e)
			continue
		}
		if strings.Contains(e, tag) {
			out = append(out, e)
		}
	}
	return out
}

type testRig struct {
	cfg   *Config
	reg   *pinctrl.Registry
	lines *recLines
	conn  *SimConn
	panel *Panel
}

func newRig() *testRig {
	reg, _ := pinctrl.NewSimulated(nil)
	rl := &recLines{
		Registry: reg,
		input:    make(map[pinctrl.Pin]gpio.Level),
		failOut:  make(map[pinctrl.Pin]error),
	}
	cfg := Atlas()
	mgr := NewManager(cfg, rl, NewSequencer(rl, rl.sleep))
	conn := &SimConn{}
	return &testRig{
		cfg:   cfg,
		reg:   reg,
		lines: rl,
		conn:  conn,
		panel: New(cfg, mgr, NewWriter(conn, rl.sleep)),
	}
}
