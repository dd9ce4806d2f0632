package pmic

import (
	"errors"
	"fmt"
	"sort"
)

// ADCEntry maps a battery thermistor ADC reading to a temperature in
// tenths of a degree Celsius.
type ADCEntry struct {
	ADC  int `json:"adc"`
	Temp int `json:"temp"`
}

// TempTable is ordered by rising ADC, which is falling temperature.
type TempTable []ADCEntry

var atlasTemps = TempTable{
	{264, 650}, {275, 640}, {286, 630}, {293, 620}, {299, 610},
	{306, 600}, {324, 590}, {341, 580}, {354, 570}, {368, 560},
	{381, 550}, {396, 540}, {411, 530}, {427, 520}, {442, 510},
	{457, 500}, {472, 490}, {487, 480}, {503, 470}, {518, 460},
	{533, 450}, {554, 440}, {574, 430}, {595, 420}, {615, 410},
	{636, 400}, {656, 390}, {677, 380}, {697, 370}, {718, 360},
	{738, 350}, {761, 340}, {784, 330}, {806, 320}, {829, 310},
	{852, 300}, {875, 290}, {898, 280}, {920, 270}, {943, 260},
	{966, 250}, {990, 240}, {1013, 230}, {1037, 220}, {1060, 210},
	{1084, 200}, {1108, 190}, {1131, 180}, {1155, 170}, {1178, 160},
	{1202, 150}, {1226, 140}, {1251, 130}, {1275, 120}, {1299, 110},
	{1324, 100}, {1348, 90}, {1372, 80}, {1396, 70}, {1421, 60},
	{1445, 50}, {1468, 40}, {1491, 30}, {1513, 20}, {1536, 10},
	{1559, 0}, {1577, -10}, {1596, -20}, {1614, -30}, {1619, -40},
	{1632, -50}, {1658, -60}, {1667, -70},
}

// AtlasTemps returns a copy of the board's thermistor table.
func AtlasTemps() TempTable {
	out := make(TempTable, len(atlasTemps))
	copy(out, atlasTemps)
	return out
}

var ErrTempTable = errors.New("pmic: invalid temperature table")

// Validate checks that ADC values rise and temperatures fall strictly.
func (t TempTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty", ErrTempTable)
	}
	for i := 1; i < len(t); i++ {
		if t[i].ADC <= t[i-1].ADC {
			return fmt.Errorf("%w: adc not increasing at %d", ErrTempTable, i)
		}
		if t[i].Temp >= t[i-1].Temp {
			return fmt.Errorf("%w: temperature not decreasing at %d", ErrTempTable, i)
		}
	}
	return nil
}

// Temperature converts a reading using the largest entry whose ADC is not
// above adc. Readings outside the table clamp to its ends.
func (t TempTable) Temperature(adc int) int {
	if len(t) == 0 {
		return 0
	}
	i := sort.Search(len(t), func(i int) bool { return t[i].ADC > adc })
	if i == 0 {
		return t[0].Temp
	}
	return t[i-1].Temp
}
