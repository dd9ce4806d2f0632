// Package pmic describes the MAX8998 power management IC of the Atlas
// board: its regulator constraints, the battery temperature table the
// charger uses, the I2C devices it exposes and the cable event mailbox
// between the board and the charger driver.
package pmic

import (
	"errors"
	"fmt"

	"atlasboard/internal/pinctrl"
)

// Ops is the set of changes a consumer may make to a regulator.
type Ops uint8

const (
	ChangeVoltage Ops = 1 << iota
	ChangeStatus
)

func (o Ops) String() string {
	switch o {
	case 0:
		return "none"
	case ChangeVoltage:
		return "voltage"
	case ChangeStatus:
		return "status"
	case ChangeVoltage | ChangeStatus:
		return "voltage|status"
	default:
		return fmt.Sprintf("ops(%#x)", uint8(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Ops) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// SuspendState is the regulator state while the system is suspended to RAM.
type SuspendState struct {
	Enabled  bool   `json:"enabled,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
	MicroV   int    `json:"uv,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// Supply names a consumer of a regulator, optionally bound to one device.
type Supply struct {
	Supply string `json:"supply"`
	Device string `json:"device,omitempty"`
}

// Regulator is one MAX8998 output and its constraints.
type Regulator struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	MinMicroV int          `json:"min_uv"`
	MaxMicroV int          `json:"max_uv"`
	ApplyUV   bool         `json:"apply_uv"`
	AlwaysOn  bool         `json:"always_on"`
	Ops       Ops          `json:"valid_ops"`
	Suspend   SuspendState `json:"state_mem"`
	Consumers []Supply     `json:"consumers,omitempty"`
}

// Fixed reports whether r is a single-voltage rail.
func (r Regulator) Fixed() bool {
	return r.MaxMicroV > 0 && r.MinMicroV == r.MaxMicroV
}

var disabledInSuspend = SuspendState{Disabled: true}

func fixed(id, name string, uv int, ops Ops, consumers ...Supply) Regulator {
	r := Regulator{
		ID:        id,
		Name:      name,
		MinMicroV: uv,
		MaxMicroV: uv,
		ApplyUV:   true,
		Ops:       ops,
		Consumers: consumers,
	}
	if ops&ChangeStatus != 0 {
		r.Suspend = disabledInSuspend
	}
	return r
}

func supply(name string) Supply {
	return Supply{Supply: name}
}

// Regulators returns the regulator table of the board, in MAX8998 id order.
func Regulators() []Regulator {
	ldo2 := fixed("LDO2", "VALIVE_1.2V", 1200000, 0)
	ldo2.AlwaysOn = true
	ldo2.Suspend = SuspendState{Enabled: true}

	ldo5 := fixed("LDO5", "VTF_2.8V", 2800000, ChangeStatus, supply("vtf"))
	ldo5.AlwaysOn = true

	ldo9 := fixed("LDO9", "VCC_2.8V_PDA", 2800000, 0)
	ldo9.AlwaysOn = true

	buck3 := fixed("BUCK3", "VCC_1.8V", 1800000, 0)
	buck3.AlwaysOn = true

	return []Regulator{
		ldo2,
		fixed("LDO3", "VUSB_1.1V", 1100000, ChangeStatus, Supply{Supply: "pd_io", Device: "s3c-usbgadget"}),
		fixed("LDO4", "VADC_3.3V", 3300000, ChangeStatus, supply("VADC")),
		ldo5,
		fixed("LDO7", "VLCD_1.8V", 1800000, ChangeStatus, supply("vlcd")),
		fixed("LDO8", "VUSB_3.3V", 3300000, ChangeStatus, Supply{Supply: "pd_core", Device: "s3c-usbgadget"}),
		ldo9,
		fixed("LDO11", "CAM_AF_3.0V", 3000000, ChangeStatus, supply("cam_af")),
		fixed("LDO12", "CAM_SENSOR_CORE_1.2V", 1200000, ChangeStatus, supply("cam_sensor")),
		fixed("LDO13", "VGA_VDDIO_2.8V", 2800000, ChangeStatus, supply("vga_vddio")),
		fixed("LDO14", "VGA_DVDD_1.8V", 1800000, ChangeStatus, supply("vga_dvdd")),
		fixed("LDO15", "CAM_ISP_HOST_2.8V", 2800000, ChangeStatus, supply("cam_isp_host")),
		fixed("LDO16", "VGA_AVDD_2.8V", 2800000, ChangeStatus, supply("vga_avdd")),
		fixed("LDO17", "VCC_3.0V_LCD", 3000000, ChangeStatus, supply("vcc_lcd")),
		{
			ID:        "BUCK1",
			Name:      "VDD_ARM",
			MinMicroV: 750000,
			MaxMicroV: 1500000,
			ApplyUV:   true,
			Ops:       ChangeVoltage | ChangeStatus,
			Suspend:   SuspendState{Disabled: true, MicroV: 1250000, Mode: "normal"},
			Consumers: []Supply{supply("vddarm")},
		},
		{
			ID:        "BUCK2",
			Name:      "VDD_INT",
			MinMicroV: 750000,
			MaxMicroV: 1500000,
			ApplyUV:   true,
			Ops:       ChangeVoltage | ChangeStatus,
			Suspend:   SuspendState{Disabled: true, MicroV: 1100000, Mode: "normal"},
			Consumers: []Supply{supply("vddint")},
		},
		buck3,
		fixed("BUCK4", "CAM_ISP_CORE_1.2V", 1200000, ChangeStatus, supply("cam_isp_core")),
		{
			ID:        "ESAFEOUT2",
			Name:      "ESAFEOUT2",
			Ops:       ChangeStatus,
			Consumers: []Supply{supply("esafeout2")},
		},
	}
}

// Preloads are the DVS voltages latched into BUCK1 and BUCK2 at probe,
// plus the GPIOs that select between them: Set1 and Set2 pick the BUCK1
// level, Set3 the BUCK2 level.
type Preloads struct {
	Buck1 [4]int      `json:"buck1"`
	Buck2 [2]int      `json:"buck2"`
	Set1  pinctrl.Pin `json:"set1_gpio"`
	Set2  pinctrl.Pin `json:"set2_gpio"`
	Set3  pinctrl.Pin `json:"set3_gpio"`
}

// AtlasPreloads must stay in increasing order of voltage. The select
// lines are BUCK_1_EN_A, BUCK_1_EN_B and BUCK_2_EN.
var AtlasPreloads = Preloads{
	Buck1: [4]int{950000, 1050000, 1200000, 1275000},
	Buck2: [2]int{1000000, 1100000},
	Set1:  pinctrl.P(pinctrl.GPH0, 3),
	Set2:  pinctrl.P(pinctrl.GPH0, 4),
	Set3:  pinctrl.P(pinctrl.GPH0, 5),
}

var (
	ErrRegulator = errors.New("pmic: invalid regulator table")
	ErrPreload   = errors.New("pmic: invalid buck preload")
)

// Validate checks constraint ranges, name uniqueness, that fixed rails
// apply their voltage, and that every suspend voltage is in range.
func Validate(regs []Regulator) error {
	ids := make(map[string]bool, len(regs))
	names := make(map[string]bool, len(regs))
	for _, r := range regs {
		if ids[r.ID] {
			return fmt.Errorf("%w: duplicate id %s", ErrRegulator, r.ID)
		}
		ids[r.ID] = true
		if names[r.Name] {
			return fmt.Errorf("%w: duplicate name %q", ErrRegulator, r.Name)
		}
		names[r.Name] = true

		if r.MinMicroV > r.MaxMicroV {
			return fmt.Errorf("%w: %s min %d > max %d", ErrRegulator, r.ID, r.MinMicroV, r.MaxMicroV)
		}
		if r.Fixed() && !r.ApplyUV {
			return fmt.Errorf("%w: fixed rail %s does not apply its voltage", ErrRegulator, r.ID)
		}
		if uv := r.Suspend.MicroV; uv != 0 && (uv < r.MinMicroV || uv > r.MaxMicroV) {
			return fmt.Errorf("%w: %s suspend voltage %d out of range", ErrRegulator, r.ID, uv)
		}
		if r.Suspend.Enabled && r.Suspend.Disabled {
			return fmt.Errorf("%w: %s both enabled and disabled in suspend", ErrRegulator, r.ID)
		}
	}
	return nil
}

// ValidatePreloads checks that both preload sets increase strictly and
// lie inside the constraints of their buck, and that the three select
// GPIOs are distinct.
func ValidatePreloads(p Preloads, regs []Regulator) error {
	check := func(id string, vs []int) error {
		r, ok := Find(regs, id)
		if !ok {
			return fmt.Errorf("%w: no regulator %s", ErrPreload, id)
		}
		for i, v := range vs {
			if i > 0 && v <= vs[i-1] {
				return fmt.Errorf("%w: %s[%d] = %d not above %d", ErrPreload, id, i, v, vs[i-1])
			}
			if v < r.MinMicroV || v > r.MaxMicroV {
				return fmt.Errorf("%w: %s[%d] = %d out of range", ErrPreload, id, i, v)
			}
		}
		return nil
	}
	if err := check("BUCK1", p.Buck1[:]); err != nil {
		return err
	}
	if err := check("BUCK2", p.Buck2[:]); err != nil {
		return err
	}
	if p.Set1 == p.Set2 || p.Set1 == p.Set3 || p.Set2 == p.Set3 {
		return fmt.Errorf("%w: dvs select gpios %s, %s, %s not distinct", ErrPreload, p.Set1, p.Set2, p.Set3)
	}
	return nil
}

// Find returns the regulator with the given id.
func Find(regs []Regulator, id string) (Regulator, bool) {
	for _, r := range regs {
		if r.ID == id {
			return r, true
		}
	}
	return Regulator{}, false
}

// Consumers returns the regulators feeding supply. A device-bound supply
// matches only when device is equal; an unbound one matches any device.
func Consumers(regs []Regulator, supplyName, device string) []Regulator {
	var out []Regulator
	for _, r := range regs {
		for _, s := range r.Consumers {
			if s.Supply != supplyName {
				continue
			}
			if s.Device != "" && s.Device != device {
				continue
			}
			out = append(out, r)
			break
		}
	}
	return out
}
