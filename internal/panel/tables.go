package panel

// Command tables of the s6e63m0 controller. Each word is a 9-bit SPI
// frame: bit 8 set marks a data byte, clear marks a command byte.
// sleepMsec <ms> and endDef 0x0000 are directives, not frames.

// Stand-by on.
var standbyOnWords = []uint16{
	0x010,
	sleepMsec, 160,
	endDef, 0x0000,
}

// Stand-by off.
var standbyOffWords = []uint16{
	0x011,
	sleepMsec, 120,
	endDef, 0x0000,
}

// Panel condition (0xF8), display condition (0xF2), 0xF7 display mode.
var displaySettingWords = []uint16{
	sleepMsec, 10,
	0x0F8,
	0x101, 0x127, 0x127, 0x107, 0x107, 0x154, 0x19F, 0x163,
	0x186, 0x11A, 0x133, 0x10D, 0x100, 0x100,
	0x0F2,
	0x102, 0x103, 0x11C, 0x110, 0x110,
	0x0F7,
	0x103, 0x100, 0x100,
	endDef, 0x0000,
}

// ETC condition (0xF6), source and gamma tables 0xB3..0xBA, sleep out, display on.
var etcSettingWords = []uint16{
	0x0F6,
	0x100, 0x18E, 0x107,
	0x0B3,
	0x16C,
	0x0B5,
	0x127, 0x10A, 0x109, 0x107, 0x130, 0x11C, 0x113, 0x109,
	0x110, 0x11A, 0x12A, 0x124, 0x11F, 0x11B, 0x11A, 0x117,
	0x12B, 0x126, 0x122, 0x120, 0x13A, 0x134, 0x130, 0x12C,
	0x129, 0x126, 0x125, 0x123, 0x121, 0x120, 0x11E, 0x11E,
	0x0B6,
	0x100, 0x100, 0x123, 0x111, 0x132, 0x144, 0x144, 0x144,
	0x155, 0x155, 0x166, 0x166, 0x166, 0x166, 0x166, 0x166,
	0x0B7,
	0x127, 0x10A, 0x109, 0x107, 0x130, 0x11C, 0x113, 0x109,
	0x110, 0x11A, 0x12A, 0x124, 0x11F, 0x11B, 0x11A, 0x117,
	0x12B, 0x126, 0x122, 0x120, 0x13A, 0x134, 0x130, 0x12C,
	0x129, 0x126, 0x125, 0x123, 0x121, 0x120, 0x11E, 0x11E,
	0x0B8,
	0x100, 0x100, 0x123, 0x111, 0x132, 0x144, 0x144, 0x144,
	0x155, 0x155, 0x166, 0x166, 0x166, 0x166, 0x166, 0x166,
	0x0B9,
	0x127, 0x10A, 0x109, 0x107, 0x130, 0x11C, 0x113, 0x109,
	0x110, 0x11A, 0x12A, 0x124, 0x11F, 0x11B, 0x11A, 0x117,
	0x12B, 0x126, 0x122, 0x120, 0x13A, 0x134, 0x130, 0x12C,
	0x129, 0x126, 0x125, 0x123, 0x121, 0x120, 0x11E, 0x11E,
	0x0BA,
	0x100, 0x100, 0x123, 0x111, 0x132, 0x144, 0x144, 0x144,
	0x155, 0x155, 0x166, 0x166, 0x166, 0x166, 0x166, 0x166,
	0x011,
	sleepMsec, 120,
	0x029,
	endDef, 0x0000,
}
