package panel

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"

	"atlasboard/internal/pinctrl"
)

func acquireOrder(cfg *Config) []pinctrl.Pin {
	out := []pinctrl.Pin{cfg.RDX, cfg.DCX, cfg.RST}
	return append(out, cfg.DB[:]...)
}

func TestAcquireRollsBackAtEveryStep(t *testing.T) {
	for i, blocked := range acquireOrder(Atlas()) {
		r := newRig()
		if err := r.reg.Request(blocked, "other"); err != nil {
			t.Fatal(err)
		}
		h, err := r.panel.Manager().Acquire()
		if !errors.Is(err, pinctrl.ErrBusy) {
			t.Fatalf("step %d (%s): Acquire = %v, want ErrBusy", i, blocked, err)
		}
		if h != nil {
			t.Fatalf("step %d: got a handle on failure", i)
		}
		if diff := cmp.Diff([]pinctrl.Pin{blocked}, r.reg.Held()); diff != "" {
			t.Errorf("step %d (%s): held (-want +got):\n%s", i, blocked, diff)
		}
	}
}

func TestAcquireConfigureFailureRestoresBus(t *testing.T) {
	r := newRig()
	errLine := errors.New("line stuck")
	r.lines.failOut[r.cfg.DB[3]] = errLine

	h, err := r.panel.Manager().Acquire()
	if !errors.Is(err, errLine) {
		t.Fatalf("Acquire = %v, want line error", err)
	}
	if h != nil {
		t.Fatal("got a handle on failure")
	}
	if held := r.reg.Held(); len(held) != 0 {
		t.Fatalf("held after failed Acquire: %v", held)
	}
	for _, p := range append([]pinctrl.Pin{r.cfg.DCX, r.cfg.RDX}, r.cfg.DB[:]...) {
		st, err := r.reg.State(p)
		if err != nil {
			t.Fatal(err)
		}
		if st.Func != "sfn2" || st.Pull != "Float" {
			t.Errorf("%s after failed Acquire = %+v", p, st)
		}
	}
}

func TestAcquireUnknownPin(t *testing.T) {
	sim := pinctrl.NewSimLines()
	missing := Atlas().DB[7].LineName()
	reg := pinctrl.New(func(name string) gpio.PinIO {
		if name == missing {
			return nil
		}
		return sim.ByName(name)
	}, nil)
	cfg := Atlas()
	m := NewManager(cfg, reg, NewSequencer(reg, func(time.Duration) {}))

	if _, err := m.Acquire(); !errors.Is(err, pinctrl.ErrUnknownPin) {
		t.Fatalf("Acquire = %v, want ErrUnknownPin", err)
	}
	if held := reg.Held(); len(held) != 0 {
		t.Fatalf("held after failed Acquire: %v", held)
	}
}

func TestAcquireRelease(t *testing.T) {
	r := newRig()
	m := r.panel.Manager()

	h, err := m.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(acquireOrder(r.cfg), h.Pins()); diff != "" {
		t.Fatalf("pins (-want +got):\n%s", diff)
	}
	for _, p := range m.busPins() {
		st, err := r.reg.State(p)
		if err != nil {
			t.Fatal(err)
		}
		if st.Func != "output" || st.Level != gpio.Low || st.Pull != "Float" {
			t.Errorf("%s after Acquire = %+v", p, st)
		}
	}
	if owner, _ := r.reg.Owner(r.cfg.DB[3]); owner != labelDBX {
		t.Errorf("db3 owner = %q", owner)
	}

	h.Release()
	h.Release()

	if held := r.reg.Held(); len(held) != 0 {
		t.Fatalf("held after Release: %v", held)
	}
	for _, p := range m.busPins() {
		st, _ := r.reg.State(p)
		if st.Func != "sfn2" {
			t.Errorf("%s func after Release = %s", p, st.Func)
		}
	}
	want := []string{
		"out MP05(5) High", "sleep 10ms",
		"set MP05(5) Low", "sleep 10ms",
		"set MP05(5) High", "sleep 10ms",
	}
	if diff := cmp.Diff(want, r.lines.eventsFor(r.cfg.RST)); diff != "" {
		t.Fatalf("release reset (-want +got):\n%s", diff)
	}
}

func TestReleaseNil(t *testing.T) {
	var h *Handle
	h.Release()
}

func TestReadBus(t *testing.T) {
	r := newRig()
	h, err := r.panel.Manager().Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	for _, i := range []int{0, 3, 7} {
		r.lines.input[r.cfg.DB[i]] = gpio.High
	}
	r.lines.events = nil
	b, err := h.ReadBus()
	if err != nil {
		t.Fatal(err)
	}
	if b != 0x89 {
		t.Fatalf("ReadBus = %#02x, want 0x89", b)
	}

	want := []string{"set GPF0(2) Low", "sleep 1µs", "set GPF0(2) High"}
	if diff := cmp.Diff(want, r.lines.eventsFor(r.cfg.RDX)); diff != "" {
		t.Fatalf("rdx strobe (-want +got):\n%s", diff)
	}
	for _, p := range r.cfg.DB {
		if st, _ := r.reg.State(p); st.Func != "output" {
			t.Errorf("%s left as %s after read", p, st.Func)
		}
	}
	if dcx, _ := r.reg.Value(r.cfg.DCX); dcx != gpio.Low {
		t.Errorf("dcx left %v", dcx)
	}
}

func TestReadBusAfterRelease(t *testing.T) {
	r := newRig()
	h, err := r.panel.Manager().Acquire()
	if err != nil {
		t.Fatal(err)
	}
	h.Release()
	if _, err := h.ReadBus(); err == nil {
		t.Fatal("ReadBus on released handle succeeded")
	}
}
