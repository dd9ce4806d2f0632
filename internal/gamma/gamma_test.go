package gamma

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAtlasTableValid(t *testing.T) {
	tbl := Atlas()
	if err := tbl.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(tbl) != 91 {
		t.Fatalf("len = %d, want 91", len(tbl))
	}
}

func TestLookupEndpoints(t *testing.T) {
	tbl := Atlas()
	if got, want := tbl.Lookup(0), [3]uint32{4200000, 4200000, 4200000}; got != want {
		t.Errorf("Lookup(0) = %v, want %v", got, want)
	}
	if got, want := tbl.Lookup(Sentinel), [3]uint32{1489879, 1576363, 1151415}; got != want {
		t.Errorf("Lookup(Sentinel) = %v, want %v", got, want)
	}
}

func TestLookupNearestBelow(t *testing.T) {
	tbl := Atlas()
	for _, tc := range []struct {
		index uint32
		want  [3]uint32
	}{
		{1, [3]uint32{3994200, 4107600, 3910200}},
		{0x3FF, [3]uint32{3994200, 4107600, 3910200}},
		{0x400, [3]uint32{3669486, 3738030, 3655093}},
		{0x4C1, [3]uint32{3669486, 3738030, 3655093}},
		{0x80000000, [3]uint32{1961395, 2041114, 1712536}},
		{0xFFFFFFFE, [3]uint32{1627706, 1716150, 1314437}},
	} {
		if got := tbl.Lookup(tc.index); got != tc.want {
			t.Errorf("Lookup(%#x) = %v, want %v", tc.index, got, tc.want)
		}
	}
}

func TestLookupMonotonic(t *testing.T) {
	tbl := Atlas()
	prev := tbl.Lookup(0)
	for i := uint64(0); i <= uint64(Sentinel); i += 0x01000000 {
		cur := tbl.Lookup(uint32(i))
		for c := range cur {
			if cur[c] > prev[c] {
				t.Fatalf("voltage rose at %#x channel %d: %d > %d", i, c, cur[c], prev[c])
			}
		}
		prev = cur
	}
}

func TestInterpolate(t *testing.T) {
	tbl := Table{
		{Index: 0, Volts: [3]uint32{100, 200, 300}},
		{Index: 10, Volts: [3]uint32{200, 100, 300}},
		{Index: Sentinel, Volts: [3]uint32{0, 0, 0}},
	}
	if got, want := tbl.Interpolate(5), [3]uint32{150, 150, 300}; got != want {
		t.Errorf("Interpolate(5) = %v, want %v", got, want)
	}
	if got, want := tbl.Interpolate(10), [3]uint32{200, 100, 300}; got != want {
		t.Errorf("Interpolate(10) = %v, want %v", got, want)
	}
	if got, want := tbl.Interpolate(Sentinel), [3]uint32{0, 0, 0}; got != want {
		t.Errorf("Interpolate(Sentinel) = %v, want %v", got, want)
	}
	if got, want := tbl.Lookup(5), [3]uint32{100, 200, 300}; got != want {
		t.Errorf("Lookup(5) = %v, want %v", got, want)
	}
}

func TestValidateRejects(t *testing.T) {
	for name, tc := range map[string]struct {
		tbl  Table
		want error
	}{
		"empty":    {Table{}, ErrEmpty},
		"no zero":  {Table{{Index: 1}, {Index: Sentinel}}, ErrBadEndpoint},
		"no end":   {Table{{Index: 0}, {Index: 5}}, ErrBadEndpoint},
		"unsorted": {Table{{Index: 0}, {Index: 9}, {Index: 9}, {Index: Sentinel}}, ErrUnsorted},
	} {
		if err := tc.tbl.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: Validate = %v, want %v", name, err, tc.want)
		}
	}
}

func TestScale(t *testing.T) {
	if got := Scale(1<<31, 2318372099, 31); got != 2318372099 {
		t.Errorf("Scale(2^31) = %d, want 2318372099", got)
	}
	if got := Scale(4200000, 1<<31, 31); got != 4200000 {
		t.Errorf("unity Scale = %d", got)
	}
	if got := Scale(0xFFFFFFFF, 0xFFFFFFFF, 0); got != 0xFFFFFFFF {
		t.Errorf("Scale did not saturate: %d", got)
	}
}

func TestColorAdjustApply(t *testing.T) {
	in := [3]uint32{1489879, 1576363, 1151415}
	want := [3]uint32{
		uint32(uint64(1489879) * 2318372099 >> 31),
		uint32(uint64(1576363) * 2117262806 >> 31),
		uint32(uint64(1151415) * 1729744557 >> 31),
	}
	if diff := cmp.Diff(want, AtlasColorAdjust.Apply(in)); diff != "" {
		t.Errorf("Apply (-want +got):\n%s", diff)
	}

	got := AtlasColorAdjust.Apply([3]uint32{4200000, 4200000, 4200000})
	if got[Red] != MaxVoltage {
		t.Errorf("red not clamped: %d", got[Red])
	}
	if got[Blue] >= MaxVoltage {
		t.Errorf("blue should scale down: %d", got[Blue])
	}
}

func TestCalibrate(t *testing.T) {
	pts := Calibrate(Atlas(), AtlasColorAdjust, 255)
	if len(pts) != len(AdjustLevels) {
		t.Fatalf("got %d points", len(pts))
	}
	if pts[0].Index != 0 || pts[len(pts)-1].Index != Sentinel {
		t.Fatalf("endpoints = %#x, %#x", pts[0].Index, pts[len(pts)-1].Index)
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Index <= pts[i-1].Index {
			t.Errorf("index not increasing at level %d", pts[i].Level)
		}
	}

	dark := Calibrate(Atlas(), AtlasColorAdjust, 0)
	for _, p := range dark {
		if p.Index != 0 {
			t.Errorf("brightness 0 level %d index = %#x", p.Level, p.Index)
		}
	}
}
