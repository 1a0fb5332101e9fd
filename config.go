package lorasched

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// DeviceConfig is the TOML-backed endpoint configuration: the regional
// plan, the identity and key material handed to the state machine at
// startup, and the dispatch queue depth.
type DeviceConfig struct {
	Region     string `toml:"region"`
	DevEUI     string `toml:"dev_eui"`
	AppEUI     string `toml:"app_eui"`
	AppKey     string `toml:"app_key"`
	QueueDepth int    `toml:"queue_depth"`
}

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid device config")

var supportedRegions = map[string]bool{
	"EU433": true,
	"EU868": true,
	"US915": true,
}

// DefaultDeviceConfig returns a config with the development defaults
// filled in. Identity material still has to be set before use.
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Region:     "EU433",
		QueueDepth: 0, // core default
	}
}

// LoadDeviceConfig reads and validates a TOML config file.
func LoadDeviceConfig(path string) (*DeviceConfig, error) {
	cfg := DefaultDeviceConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the region and the identity/key material lengths.
func (c *DeviceConfig) Validate() error {
	if !supportedRegions[c.Region] {
		return fmt.Errorf("%w: unsupported region %q", ErrInvalidConfig, c.Region)
	}
	if _, err := c.DevEUIBytes(); err != nil {
		return err
	}
	if _, err := c.AppEUIBytes(); err != nil {
		return err
	}
	if _, err := c.AppKeyBytes(); err != nil {
		return err
	}
	if c.QueueDepth < 0 {
		return fmt.Errorf("%w: negative queue depth", ErrInvalidConfig)
	}
	return nil
}

// DevEUIBytes decodes the device EUI (8 bytes, hex).
func (c *DeviceConfig) DevEUIBytes() ([8]byte, error) {
	return eui(c.DevEUI, "dev_eui")
}

// AppEUIBytes decodes the application EUI (8 bytes, hex).
func (c *DeviceConfig) AppEUIBytes() ([8]byte, error) {
	return eui(c.AppEUI, "app_eui")
}

// AppKeyBytes decodes the application key (16 bytes, hex).
func (c *DeviceConfig) AppKeyBytes() ([16]byte, error) {
	var key [16]byte
	raw, err := hex.DecodeString(c.AppKey)
	if err != nil || len(raw) != len(key) {
		return key, fmt.Errorf("%w: app_key must be %d hex bytes", ErrInvalidConfig, len(key))
	}
	copy(key[:], raw)
	return key, nil
}

func eui(s, field string) ([8]byte, error) {
	var out [8]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(out) {
		return out, fmt.Errorf("%w: %s must be %d hex bytes", ErrInvalidConfig, field, len(out))
	}
	copy(out[:], raw)
	return out, nil
}
