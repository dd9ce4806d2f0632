package pmic

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// I2CDevice is a board-info record for a device on an I2C bus.
type I2CDevice struct {
	Bus  int    `json:"bus"`
	Name string `json:"name"`
	Addr uint16 `json:"addr"`
	IRQ  string `json:"irq,omitempty"`
}

func (d I2CDevice) String() string {
	return fmt.Sprintf("%s@%d-%#02x", d.Name, d.Bus, d.Addr)
}

// PMICBus is the I2C bus the MAX8998 sits on.
const PMICBus = 6

// Devices are the I2C board-info records on PMICBus. The PMIC answers at
// 0xCC>>1 since SRAD is tied low; its RTC at 0x0D>>1.
var Devices = []I2CDevice{
	{Bus: PMICBus, Name: "max8998", Addr: 0xCC >> 1, IRQ: "EINT7"},
	{Bus: PMICBus, Name: "rtc_max8998", Addr: 0x0D >> 1},
}

// DeviceStatus is the result of probing one device.
type DeviceStatus struct {
	Device  I2CDevice `json:"device"`
	Present bool      `json:"present"`
	Reg0    byte      `json:"reg0"`
	Error   string    `json:"error,omitempty"`
}

// Prober reports which PMIC devices answer on the bus.
type Prober interface {
	Probe(ctx context.Context) ([]DeviceStatus, error)
}

// mockProber reports every device present. It is used when running
// without hardware.
type mockProber struct {
	devs []I2CDevice
}

// i2cProber reads register 0 of each device over a periph.io bus.
type i2cProber struct {
	busName string
	devs    []I2CDevice
}

// NewMockProber returns a Prober that never touches hardware.
func NewMockProber(devs []I2CDevice) Prober {
	return &mockProber{devs: devs}
}

// NewI2CProber returns a Prober for devs on busName ("" is the periph.io
// default bus). The bus is opened on every Probe call.
func NewI2CProber(busName string, devs []I2CDevice) Prober {
	return &i2cProber{busName: busName, devs: devs}
}

func (m *mockProber) Probe(_ context.Context) ([]DeviceStatus, error) {
	out := make([]DeviceStatus, len(m.devs))
	for i, d := range m.devs {
		out[i] = DeviceStatus{Device: d, Present: true}
	}
	return out, nil
}

// Probe implements Prober.
func (p *i2cProber) Probe(ctx context.Context) ([]DeviceStatus, error) {
	if runtime.GOOS != "linux" {
		return nil, errors.New("pmic: i2c probe unavailable on this platform")
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("pmic: periph host init failed: %w", err)
	}

	bus, err := i2creg.Open(p.busName)
	if err != nil {
		return nil, fmt.Errorf("pmic: open i2c bus %q: %w", p.busName, err)
	}
	defer bus.Close()

	return probeBus(ctx, bus, p.devs)
}

// probeBus reads register 0 of each device. A device that does not
// answer is reported absent; only cancellation aborts the scan.
func probeBus(ctx context.Context, bus i2c.Bus, devs []I2CDevice) ([]DeviceStatus, error) {
	out := make([]DeviceStatus, 0, len(devs))
	for _, d := range devs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		dev := &i2c.Dev{Bus: bus, Addr: d.Addr}
		buf := []byte{0}
		st := DeviceStatus{Device: d}
		if err := dev.Tx([]byte{0x00}, buf); err != nil {
			st.Error = err.Error()
		} else {
			st.Present = true
			st.Reg0 = buf[0]
		}
		out = append(out, st)
	}
	return out, nil
}
