package gamma

import "math"

// AdjustLevels are the grey levels at which the panel driver programs
// gamma voltages.
var AdjustLevels = [...]uint8{0, 1, 19, 43, 87, 171, 255}

const displayGamma = 2.2

// BrightnessIndex maps a grey level onto the 32-bit brightness index
// space of the table, following a 2.2 display gamma.
func BrightnessIndex(level uint8) uint32 {
	switch level {
	case 0:
		return 0
	case 255:
		return Sentinel
	}
	v := math.Pow(float64(level)/255, displayGamma) * float64(Sentinel)
	return uint32(math.Round(v))
}

// Point is the computed drive voltage at one adjustment level.
type Point struct {
	Level uint8     `json:"level"`
	Index uint32    `json:"index"`
	Volts [3]uint32 `json:"volts"`
}

// Calibrate returns the colour-adjusted voltages at every adjustment
// level for a panel brightness in [0, 255]. Brightness scales the index
// linearly, so 255 is the full table range.
func Calibrate(t Table, adj ColorAdjust, brightness uint8) []Point {
	out := make([]Point, 0, len(AdjustLevels))
	for _, lvl := range AdjustLevels {
		idx := uint32(uint64(BrightnessIndex(lvl)) * uint64(brightness) / 255)
		out = append(out, Point{
			Level: lvl,
			Index: idx,
			Volts: adj.Apply(t.Lookup(idx)),
		})
	}
	return out
}
