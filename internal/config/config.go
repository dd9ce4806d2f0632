package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"atlasboard/internal/pinctrl"
)

// DefaultPath is where the daemon looks for its config when -config is not given.
const DefaultPath = "/etc/atlasboard/config.yaml"

const (
	defaultListen     = "127.0.0.1:8080"
	defaultLogLevel   = "info"
	defaultSPIPort    = "/dev/spidev3.0"
	defaultBrightness = 255
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// ScheduleConfig holds cron specs for unattended panel power changes.
// Empty strings disable the job.
type ScheduleConfig struct {
	Suspend string `yaml:"suspend" json:"suspend"`
	Resume  string `yaml:"resume" json:"resume"`
}

// Config is the top-level daemon configuration.
type Config struct {
	// Listen is the HTTP listen address of the status API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Simulate runs against gpiotest lines and a recording SPI bus instead
	// of hardware.
	Simulate bool `yaml:"simulate" json:"simulate"`

	// SPIPort is the periph.io SPI port of the panel bus.
	SPIPort string `yaml:"spi_port" json:"spi_port"`

	// I2CBus is the periph.io I2C bus of the PMIC ("" for the default bus).
	I2CBus string `yaml:"i2c_bus" json:"i2c_bus"`

	// Pins maps an S5PV210 pin ("GPF0(4)") to the line name the host
	// exposes it under, for pins whose default "GPF0_4" name does not exist.
	Pins map[string]string `yaml:"pins" json:"pins"`

	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`

	// GammaBrightness is the default brightness of the calibration report.
	GammaBrightness *int `yaml:"gamma_brightness" json:"gamma_brightness"`

	// BasicAuth, if non-nil, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	b := defaultBrightness
	return &Config{
		Listen:          defaultListen,
		LogLevel:        defaultLogLevel,
		SPIPort:         defaultSPIPort,
		Pins:            map[string]string{},
		GammaBrightness: &b,
	}
}

// Normalize fills in zero values so that partially written files behave
// like the defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
	if c.SPIPort == "" {
		c.SPIPort = defaultSPIPort
	}
	if c.Pins == nil {
		c.Pins = map[string]string{}
	}
	if c.GammaBrightness == nil || *c.GammaBrightness < 0 || *c.GammaBrightness > 255 {
		b := defaultBrightness
		c.GammaBrightness = &b
	}
}

// Brightness returns GammaBrightness as a byte.
func (c *Config) Brightness() uint8 {
	if c.GammaBrightness == nil {
		return defaultBrightness
	}
	return uint8(*c.GammaBrightness)
}

// PinNames parses the pin overrides.
func (c *Config) PinNames() (map[pinctrl.Pin]string, error) {
	out := make(map[pinctrl.Pin]string, len(c.Pins))
	for k, v := range c.Pins {
		p, err := pinctrl.ParsePin(k)
		if err != nil {
			return nil, fmt.Errorf("config: pins: %w", err)
		}
		if v == "" {
			return nil, fmt.Errorf("config: pins: empty line name for %s", p)
		}
		out[p] = v
	}
	return out, nil
}

// Validate checks the fields Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := c.PinNames(); err != nil {
		return err
	}
	for name, spec := range map[string]string{"suspend": c.Schedule.Suspend, "resume": c.Schedule.Resume} {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("config: schedule.%s %q: %w", name, spec, err)
		}
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		return errors.New("config: basic_auth needs both username and password")
	}
	return nil
}

// Load reads the YAML config at path. A missing file is created with the
// defaults (0600) and the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Caller decides whether running on defaults is acceptable.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path atomically: parent directory 0700, temp file in
// the same directory, chmod 0600, rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".atlasboard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
