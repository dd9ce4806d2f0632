package panel

import (
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"atlasboard/internal/gamma"
	"atlasboard/internal/pinctrl"
)

// Board pins around the panel. The detect and ID lines follow the Aries
// family GPIO map.
var (
	PinOLEDDet    = pinctrl.P(pinctrl.GPH1, 3)
	PinOLEDID     = pinctrl.P(pinctrl.GPJ1, 4)
	PinDICID      = pinctrl.P(pinctrl.GPJ1, 5)
	PinMLCDReset  = pinctrl.P(pinctrl.MP05, 5)
	PinDisplayCS  = pinctrl.P(pinctrl.MP01, 1)
	PinSubDispCS  = pinctrl.P(pinctrl.MP01, 2)
	PinDisplayCLK = pinctrl.P(pinctrl.MP04, 1)
	PinDisplaySO  = pinctrl.P(pinctrl.MP04, 2)
	PinDisplaySI  = pinctrl.P(pinctrl.MP04, 3)
)

// Config describes the s6e63m0 panel as wired on the Atlas board. It is
// built once by Atlas and treated as read-only afterwards.
type Config struct {
	// RST, DCX and RDX are claimed for bit-banged register reads.
	RST pinctrl.Pin
	DCX pinctrl.Pin
	RDX pinctrl.Pin
	// CSX and WRX belong to the SPI bus and are never requested here.
	CSX pinctrl.Pin
	WRX pinctrl.Pin
	DB  [8]pinctrl.Pin

	DisplaySetting Sequence
	ETCSetting     Sequence
	StandbyOn      Sequence
	StandbyOff     Sequence

	Gamma    gamma.Table
	ColorAdj gamma.ColorAdjust

	// FactoryV255Regs hold the factory-trimmed V255 level per channel.
	FactoryV255Regs [3]uint8
}

// Atlas returns the panel descriptor of the Atlas board.
func Atlas() *Config {
	return &Config{
		DCX: pinctrl.P(pinctrl.GPF0, 0), // H_SYNC pad
		RDX: pinctrl.P(pinctrl.GPF0, 2), // enable
		CSX: PinDisplayCS,
		WRX: PinDisplayCLK, // SCL pad
		RST: PinMLCDReset,
		DB: [8]pinctrl.Pin{
			pinctrl.P(pinctrl.GPF0, 4),
			pinctrl.P(pinctrl.GPF0, 5),
			pinctrl.P(pinctrl.GPF0, 6),
			pinctrl.P(pinctrl.GPF0, 7),
			pinctrl.P(pinctrl.GPF1, 0),
			pinctrl.P(pinctrl.GPF1, 1),
			pinctrl.P(pinctrl.GPF1, 2),
			pinctrl.P(pinctrl.GPF1, 3),
		},
		DisplaySetting:  MustDecode(displaySettingWords),
		ETCSetting:      MustDecode(etcSettingWords),
		StandbyOn:       MustDecode(standbyOnWords),
		StandbyOff:      MustDecode(standbyOffWords),
		Gamma:           gamma.Atlas(),
		ColorAdj:        gamma.AtlasColorAdjust,
		FactoryV255Regs: [3]uint8{0xB9, 0xB8, 0xFC},
	}
}

// Validate checks the tables a Config is built from.
func (c *Config) Validate() error {
	if err := c.Gamma.Validate(); err != nil {
		return err
	}
	for _, s := range []Sequence{c.DisplaySetting, c.ETCSetting, c.StandbyOn, c.StandbyOff} {
		if len(s) == 0 || s[len(s)-1].Op != OpEnd {
			return ErrNoEnd
		}
	}
	return nil
}

// Timing is the RGB interface timing handed to the framebuffer.
type Timing struct {
	HFrontPorch     int `json:"h_fp"`
	HBackPorch      int `json:"h_bp"`
	HSyncWidth      int `json:"h_sw"`
	VFrontPorch     int `json:"v_fp"`
	VFrontPorchEven int `json:"v_fpe"`
	VBackPorch      int `json:"v_bp"`
	VBackPorchEven  int `json:"v_bpe"`
	VSyncWidth      int `json:"v_sw"`
}

// Polarity flags of the RGB interface.
type Polarity struct {
	RiseVCLK bool `json:"rise_vclk"`
	InvHSync bool `json:"inv_hsync"`
	InvVSync bool `json:"inv_vsync"`
	InvVDEN  bool `json:"inv_vden"`
}

// LCD is the framebuffer view of the panel.
type LCD struct {
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	PhysicalWidth  int      `json:"p_width"`  // mm
	PhysicalHeight int      `json:"p_height"` // mm
	BPP            int      `json:"bpp"`
	Freq           int      `json:"freq"`
	Timing         Timing   `json:"timing"`
	Polarity       Polarity `json:"polarity"`
}

// S6E63M0 is the 480x800 AMOLED used on the board.
var S6E63M0 = LCD{
	Width:          480,
	Height:         800,
	PhysicalWidth:  52,
	PhysicalHeight: 86,
	BPP:            24,
	Freq:           60,
	Timing: Timing{
		HFrontPorch:     16,
		HBackPorch:      16,
		HSyncWidth:      2,
		VFrontPorch:     28,
		VFrontPorchEven: 1,
		VBackPorch:      1,
		VBackPorchEven:  1,
		VSyncWidth:      2,
	},
	Polarity: Polarity{RiseVCLK: true, InvHSync: true, InvVSync: true, InvVDEN: true},
}

// SPIBoardInfo describes the panel's SPI slave.
type SPIBoardInfo struct {
	Modalias    string           `json:"modalias"`
	Bus         int              `json:"bus_num"`
	ChipSelect  int              `json:"chip_select"`
	MaxSpeed    physic.Frequency `json:"max_speed_hz"`
	Mode        spi.Mode         `json:"mode"`
	BitsPerWord int              `json:"bits_per_word"`
	CSPin       pinctrl.Pin      `json:"controller_data"`
}

// SPIGPIO describes the GPIO bit-banged SPI master carrying the panel bus.
type SPIGPIO struct {
	Bus           int           `json:"id"`
	SCK           pinctrl.Pin   `json:"sck"`
	MOSI          pinctrl.Pin   `json:"mosi"`
	MISO          *pinctrl.Pin  `json:"miso"`
	NumChipSelect int           `json:"num_chipselect"`
	ChipSelects   []pinctrl.Pin `json:"chip_selects"`
}

const lcdBusNum = 3

// TL2796SPI is the SPI board info of the panel controller.
var TL2796SPI = SPIBoardInfo{
	Modalias:    "tl2796",
	Bus:         lcdBusNum,
	ChipSelect:  0,
	MaxSpeed:    1200 * physic.KiloHertz,
	Mode:        spi.Mode3,
	BitsPerWord: 9,
	CSPin:       PinDisplayCS,
}

// LCDSPIGPIO is the spi-gpio master on bus 3. It has no MISO line.
var LCDSPIGPIO = SPIGPIO{
	Bus:           lcdBusNum,
	SCK:           PinDisplayCLK,
	MOSI:          PinDisplaySI,
	NumChipSelect: 2,
	ChipSelects:   []pinctrl.Pin{PinDisplayCS, PinSubDispCS},
}
