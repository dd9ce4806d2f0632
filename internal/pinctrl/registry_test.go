package pinctrl

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
)

func TestRequestBusy(t *testing.T) {
	reg, _ := NewSimulated(nil)
	p := P(GPF0, 2)

	if err := reg.Request(p, "first"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	err := reg.Request(p, "second")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("second Request = %v, want ErrBusy", err)
	}
	var be *BusyError
	if !errors.As(err, &be) || be.Owner != "first" || be.Pin != p {
		t.Fatalf("BusyError = %+v", be)
	}

	if err := reg.Free(p); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if err := reg.Free(p); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("double Free = %v, want ErrNotOwned", err)
	}
	if err := reg.Request(p, "second"); err != nil {
		t.Fatalf("Request after Free: %v", err)
	}
}

func TestUnknownPin(t *testing.T) {
	reg := New(func(string) gpio.PinIO { return nil }, nil)
	if err := reg.Request(P(GPF0, 0), "x"); !errors.Is(err, ErrUnknownPin) {
		t.Fatalf("Request = %v, want ErrUnknownPin", err)
	}
}

func TestNameOverride(t *testing.T) {
	p := P(MP05, 5)
	reg, lines := NewSimulated(map[Pin]string{p: "GPIO23"})
	if err := reg.SetDirectionOutput(p, gpio.High); err != nil {
		t.Fatal(err)
	}
	if got := lines.Pin("GPIO23").Read(); got != gpio.High {
		t.Fatalf("GPIO23 = %v, want High", got)
	}
	st, err := reg.State(p)
	if err != nil {
		t.Fatal(err)
	}
	if st.Line != "GPIO23" || st.Func != "output" {
		t.Fatalf("state = %+v", st)
	}
}

func TestValueLatchedUntilOutput(t *testing.T) {
	reg, lines := NewSimulated(nil)
	p := P(GPF1, 3)

	if err := reg.SetValue(p, gpio.High); err != nil {
		t.Fatal(err)
	}
	if got := lines.Pin(p.LineName()).Read(); got != gpio.Low {
		t.Fatalf("input line driven to %v before output", got)
	}
	if err := reg.SetFunc(p, FuncOutput); err != nil {
		t.Fatal(err)
	}
	if got := lines.Pin(p.LineName()).Read(); got != gpio.High {
		t.Fatalf("line = %v after switching to output, want High", got)
	}
	v, err := reg.Value(p)
	if err != nil || v != gpio.High {
		t.Fatalf("Value = %v, %v", v, err)
	}
}

func TestSetPullOnInput(t *testing.T) {
	reg, lines := NewSimulated(nil)
	p := P(GPJ1, 4)
	if err := reg.SetFunc(p, FuncInput); err != nil {
		t.Fatal(err)
	}
	if err := reg.SetPull(p, gpio.PullDown); err != nil {
		t.Fatal(err)
	}
	if got := lines.Pin(p.LineName()).Pull(); got != gpio.PullDown {
		t.Fatalf("pull = %v, want PullDown", got)
	}
}

func TestGuardRollback(t *testing.T) {
	reg, _ := NewSimulated(nil)
	blocked := P(GPF1, 0)
	if err := reg.Request(blocked, "other"); err != nil {
		t.Fatal(err)
	}

	func() {
		g := reg.Guard()
		defer g.Release()
		for _, p := range []Pin{P(GPF0, 0), P(GPF0, 1), blocked} {
			if err := g.Request(p, "guarded"); err != nil {
				return
			}
		}
		t.Fatal("guard acquired a busy pin")
	}()

	if diff := cmp.Diff([]Pin{blocked}, reg.Held()); diff != "" {
		t.Fatalf("held pins after rollback (-want +got):\n%s", diff)
	}
}

func TestGuardCommit(t *testing.T) {
	reg, _ := NewSimulated(nil)
	want := []Pin{P(GPF0, 3), P(GPF0, 1)}

	g := reg.Guard()
	for _, p := range want {
		if err := g.Request(p, "guarded"); err != nil {
			t.Fatal(err)
		}
	}
	got := g.Commit()
	g.Release()

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Commit (-want +got):\n%s", diff)
	}
	if len(reg.Held()) != 2 {
		t.Fatalf("Release after Commit freed pins: %v", reg.Held())
	}
}

func TestParsePin(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Pin
	}{
		{"GPF0(4)", P(GPF0, 4)},
		{"mp05_5", P(MP05, 5)},
		{"GPJ1_4", P(GPJ1, 4)},
	} {
		got, err := ParsePin(tc.in)
		if err != nil {
			t.Errorf("ParsePin(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePin(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "GPF0", "GPF0(9)", "GPF0_x"} {
		if _, err := ParsePin(bad); err == nil {
			t.Errorf("ParsePin(%q) succeeded", bad)
		}
	}
}
