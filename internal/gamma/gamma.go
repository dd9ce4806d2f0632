// Package gamma maps panel brightness indices onto per-channel drive
// voltages and applies the fixed-point colour-temperature correction.
package gamma

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Channels in Entry.Volts order.
const (
	Red = iota
	Green
	Blue
)

// Sentinel is the index of the last table entry.
const Sentinel uint32 = 0xFFFFFFFF

// MaxVoltage is the highest drive voltage the panel accepts, in µV.
const MaxVoltage uint32 = 4200000

// Entry is one calibration point.
type Entry struct {
	Index uint32    `json:"index"`
	Volts [3]uint32 `json:"volts"`
}

// Table is sorted by strictly increasing Index and spans [0, Sentinel].
type Table []Entry

var (
	ErrEmpty       = errors.New("gamma: empty table")
	ErrUnsorted    = errors.New("gamma: indices not strictly increasing")
	ErrBadEndpoint = errors.New("gamma: table does not span the full index range")
)

// Atlas returns the calibration table of the Atlas panel.
func Atlas() Table {
	out := make(Table, len(atlasTable))
	copy(out, atlasTable)
	return out
}

// Validate checks ordering and that the first and last entries sit at 0
// and Sentinel.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmpty
	}
	if t[0].Index != 0 || t[len(t)-1].Index != Sentinel {
		return fmt.Errorf("%w: [%#x, %#x]", ErrBadEndpoint, t[0].Index, t[len(t)-1].Index)
	}
	for i := 1; i < len(t); i++ {
		if t[i].Index <= t[i-1].Index {
			return fmt.Errorf("%w: entry %d (%#x) after %#x", ErrUnsorted, i, t[i].Index, t[i-1].Index)
		}
		for c := range t[i].Volts {
			if t[i].Volts[c] > MaxVoltage {
				return fmt.Errorf("gamma: entry %d channel %d voltage %d above %d", i, c, t[i].Volts[c], MaxVoltage)
			}
		}
	}
	return nil
}

// floor returns the position of the last entry with Index <= index.
// The table must be valid.
func (t Table) floor(index uint32) int {
	i := sort.Search(len(t), func(i int) bool { return t[i].Index > index })
	return i - 1
}

// Lookup returns the voltages of the nearest entry at or below index. No
// interpolation happens: the table rows are the only values ever produced.
func (t Table) Lookup(index uint32) [3]uint32 {
	return t[t.floor(index)].Volts
}

// Interpolate is the linear variant of Lookup between the bracketing
// entries. Lookup stays the default; this exists for calibration tooling.
func (t Table) Interpolate(index uint32) [3]uint32 {
	i := t.floor(index)
	if i == len(t)-1 || t[i].Index == index {
		return t[i].Volts
	}
	lo, hi := t[i], t[i+1]
	span := uint64(hi.Index - lo.Index)
	off := uint64(index - lo.Index)
	var out [3]uint32
	for c := range out {
		a, b := int64(lo.Volts[c]), int64(hi.Volts[c])
		out[c] = uint32(a + (b-a)*int64(off)/int64(span))
	}
	return out
}

// ColorAdjust scales each channel by Mult[c] / 2^RShift.
type ColorAdjust struct {
	Mult   [3]uint32 `json:"mult"`
	RShift uint      `json:"rshift"`
}

// AtlasColorAdjust converts the panel's native 8500K white point to D65.
var AtlasColorAdjust = ColorAdjust{
	Mult:   [3]uint32{2318372099, 2117262806, 1729744557},
	RShift: 31,
}

// Scale computes (v * mult) >> shift in 64 bits, saturating at the uint32
// range.
func Scale(v, mult uint32, shift uint) uint32 {
	r := (uint64(v) * uint64(mult)) >> shift
	if r > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(r)
}

// Apply scales every channel and clamps the result to MaxVoltage.
func (c ColorAdjust) Apply(v [3]uint32) [3]uint32 {
	var out [3]uint32
	for i := range v {
		s := Scale(v[i], c.Mult[i], c.RShift)
		if s > MaxVoltage {
			s = MaxVoltage
		}
		out[i] = s
	}
	return out
}
