package panel

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"

	"atlasboard/internal/pinctrl"
)

func TestPowerCycle(t *testing.T) {
	r := newRig()
	p := r.panel

	if err := p.Standby(true); !errors.Is(err, ErrNotOn) {
		t.Fatalf("Standby on while off = %v", err)
	}
	if err := p.PowerOn(); err != nil {
		t.Fatal(err)
	}
	if p.State() != StateOn {
		t.Fatalf("state = %v", p.State())
	}
	want := append(r.cfg.DisplaySetting.Writes(), r.cfg.ETCSetting.Writes()...)
	if diff := cmp.Diff(want, r.conn.Words()); diff != "" {
		t.Fatalf("power on words (-want +got):\n%s", diff)
	}
	if st, _ := r.reg.State(pinctrl.P(pinctrl.GPF2, 5)); st.Func != "sfn2" {
		t.Errorf("lcd pin func = %s", st.Func)
	}
	if st, _ := r.reg.State(PinDisplayCS); st.Func != "sfn1" {
		t.Errorf("cs func = %s", st.Func)
	}

	r.conn.Reset()
	if err := p.Suspend(); err != nil {
		t.Fatal(err)
	}
	if p.State() != StateSuspended {
		t.Fatalf("state = %v", p.State())
	}
	if diff := cmp.Diff([]uint16{0x010}, r.conn.Words()); diff != "" {
		t.Fatalf("suspend words (-want +got):\n%s", diff)
	}
	for _, pin := range []pinctrl.Pin{PinOLEDDet, PinMLCDReset, pinctrl.P(pinctrl.GPF3, 3)} {
		st, _ := r.reg.State(pin)
		if st.Func != "output" || st.Level != gpio.Low {
			t.Errorf("%s after suspend = %+v", pin, st)
		}
	}
	if st, _ := r.reg.State(PinOLEDID); st.Func != "input" || st.Pull != "PullDown" {
		t.Errorf("oled id after suspend = %+v", st)
	}
	if v, ok := r.reg.DriveStrength(pinctrl.GPF1); !ok || v != 0 {
		t.Errorf("drive strength = %d, %v", v, ok)
	}

	if err := p.Resume(); err != nil {
		t.Fatal(err)
	}
	if p.State() != StateOn {
		t.Fatalf("state after resume = %v", p.State())
	}
	if st, _ := r.reg.State(PinOLEDDet); st.Func != "input" {
		t.Errorf("oled det after resume = %+v", st)
	}
	if st, _ := r.reg.State(PinDICID); st.Func != "output" {
		t.Errorf("dic id after resume = %+v", st)
	}
	if held := r.reg.Held(); len(held) != 0 {
		t.Errorf("lines left held: %v", held)
	}
}

func TestStandbyToggle(t *testing.T) {
	r := newRig()
	if err := r.panel.PowerOn(); err != nil {
		t.Fatal(err)
	}
	r.conn.Reset()
	if err := r.panel.Standby(true); err != nil {
		t.Fatal(err)
	}
	if err := r.panel.Standby(false); err != nil {
		t.Fatal(err)
	}
	if err := r.panel.Standby(false); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint16{0x010, 0x011}, r.conn.Words()); diff != "" {
		t.Fatalf("standby words (-want +got):\n%s", diff)
	}
	if r.panel.State() != StateOn {
		t.Fatalf("state = %v", r.panel.State())
	}
}

func TestReadFactoryV255(t *testing.T) {
	r := newRig()
	r.lines.input[r.cfg.DB[1]] = gpio.High

	got, err := r.panel.ReadFactoryV255()
	if err != nil {
		t.Fatal(err)
	}
	if got != [3]uint8{0x02, 0x02, 0x02} {
		t.Fatalf("v255 = %v", got)
	}
	if diff := cmp.Diff([]uint16{0xB9, 0xB8, 0xFC}, r.conn.Words()); diff != "" {
		t.Fatalf("addressed registers (-want +got):\n%s", diff)
	}
	if held := r.reg.Held(); len(held) != 0 {
		t.Fatalf("held after read: %v", held)
	}

	r.conn.Reset()
	if _, err := r.panel.ReadFactoryV255(); err != nil {
		t.Fatal(err)
	}
	if len(r.conn.Transfers()) != 0 {
		t.Fatal("cached read went to the bus")
	}
}

func TestReadFactoryV255Busy(t *testing.T) {
	r := newRig()
	if err := r.reg.Request(r.cfg.DB[5], "other"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.panel.ReadFactoryV255(); !errors.Is(err, pinctrl.ErrBusy) {
		t.Fatalf("ReadFactoryV255 = %v, want ErrBusy", err)
	}
	if len(r.conn.Transfers()) != 0 {
		t.Fatal("spi written after failed acquire")
	}
}

func TestCalibration(t *testing.T) {
	pts := newRig().panel.Calibration(255)
	if len(pts) == 0 || pts[len(pts)-1].Level != 255 {
		t.Fatalf("points = %+v", pts)
	}
}

func TestReadFactoryV255ReplaysSettings(t *testing.T) {
	r := newRig()
	if err := r.panel.PowerOn(); err != nil {
		t.Fatal(err)
	}
	r.conn.Reset()
	if _, err := r.panel.ReadFactoryV255(); err != nil {
		t.Fatal(err)
	}
	want := []uint16{0xB9, 0xB8, 0xFC}
	want = append(want, r.cfg.DisplaySetting.Writes()...)
	want = append(want, r.cfg.ETCSetting.Writes()...)
	if diff := cmp.Diff(want, r.conn.Words()); diff != "" {
		t.Fatalf("words (-want +got):\n%s", diff)
	}
	if r.panel.State() != StateOn {
		t.Fatalf("state = %v", r.panel.State())
	}
}

var errBus = errors.New("spi: transfer failed")

// failingConn fails the next transfer once fail is set.
type failingConn struct {
	*SimConn
	fail bool
}

func (f *failingConn) Tx(w, r []byte) error {
	if f.fail {
		f.fail = false
		return errBus
	}
	return f.SimConn.Tx(w, r)
}

func TestReadFactoryV255FailureReplaysSettings(t *testing.T) {
	r := newRig()
	fc := &failingConn{SimConn: r.conn}
	p := New(r.cfg, r.panel.Manager(), NewWriter(fc, r.lines.sleep))
	if err := p.PowerOn(); err != nil {
		t.Fatal(err)
	}
	r.conn.Reset()
	r.lines.events = nil
	fc.fail = true

	if _, err := p.ReadFactoryV255(); !errors.Is(err, errBus) {
		t.Fatalf("ReadFactoryV255 = %v, want bus error", err)
	}
	want := []string{
		"out " + r.cfg.RST.String() + " High",
		"sleep 10ms",
		"set " + r.cfg.RST.String() + " Low",
		"sleep 10ms",
		"set " + r.cfg.RST.String() + " High",
		"sleep 10ms",
	}
	rst := r.lines.eventsFor(r.cfg.RST)
	if len(rst) < len(want) {
		t.Fatalf("no reset pulse on release: %v", rst)
	}
	if diff := cmp.Diff(want, rst[:len(want)]); diff != "" {
		t.Fatalf("reset (-want +got):\n%s", diff)
	}

	words := append(r.cfg.DisplaySetting.Writes(), r.cfg.ETCSetting.Writes()...)
	if diff := cmp.Diff(words, r.conn.Words()); diff != "" {
		t.Fatalf("replayed words (-want +got):\n%s", diff)
	}
	if p.State() != StateOn {
		t.Fatalf("state = %v", p.State())
	}
	if _, ok := p.FactoryV255(); ok {
		t.Fatal("failed read was cached")
	}
	if held := r.reg.Held(); len(held) != 0 {
		t.Fatalf("held after failed read: %v", held)
	}
}
