package config

import (
	"os"
	"time"

	"github.com/Krajiyah/speaker-os/pkg/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when no -config flag is given
const DefaultConfigPath = "/etc/speaker-os/config.yaml"

// Config holds all agent configuration.
type Config struct {
	Device   DeviceConfig  `yaml:"device"`
	Radio    RadioConfig   `yaml:"radio"`
	Network  NetworkConfig `yaml:"network"`
	Storage  StorageConfig `yaml:"storage"`
	API      APIConfig     `yaml:"api"`
	LogLevel string        `yaml:"log_level"`
}

// DeviceConfig holds the values the device info service reports.
type DeviceConfig struct {
	Model           string `yaml:"model"`
	FirmwareVersion string `yaml:"firmware_version"`
	AdvertisedName  string `yaml:"advertised_name"`
}

// RadioConfig holds the bootstrap and HCI settings.
type RadioConfig struct {
	DaemonUnit    string `yaml:"daemon_unit"`
	Adapter       string `yaml:"adapter"`
	HciconfigPath string `yaml:"hciconfig_path"`
	DeviceID      int    `yaml:"device_id"`
}

// NetworkConfig holds interface names and reachability settings.
type NetworkConfig struct {
	EthernetInterfaces []string      `yaml:"ethernet_interfaces"`
	WiFiInterfaces     []string      `yaml:"wifi_interfaces"`
	AssociationTimeout time.Duration `yaml:"association_timeout"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	ReachabilityServer string        `yaml:"reachability_server"`
	ReachabilityName   string        `yaml:"reachability_name"`
}

// StorageConfig locates the persisted key/value file.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// APIConfig holds the local status API settings. An empty listen address disables it.
type APIConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns a Config with the values used on the reference hardware.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Model:           util.DefaultModel,
			FirmwareVersion: util.DefaultFirmwareVersion,
			AdvertisedName:  util.DefaultAdvertisedName,
		},
		Radio: RadioConfig{
			DaemonUnit:    "bluetooth.service",
			Adapter:       "hci0",
			HciconfigPath: "hciconfig",
			DeviceID:      0,
		},
		Network: NetworkConfig{
			EthernetInterfaces: []string{"eth0"},
			WiFiInterfaces:     []string{"wlan0"},
			AssociationTimeout: 30 * time.Second,
			PollInterval:       30 * time.Second,
			ReachabilityServer: "resolver1.opendns.com:53",
			ReachabilityName:   "myip.opendns.com.",
		},
		Storage: StorageConfig{
			Path: "/var/lib/speaker-os/store.yaml",
		},
		API: APIConfig{
			Listen: "127.0.0.1:8787",
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Device.AdvertisedName == "" {
		return errors.New("device.advertised_name must not be empty")
	}
	if c.Radio.DaemonUnit == "" {
		return errors.New("radio.daemon_unit must not be empty")
	}
	if c.Radio.Adapter == "" {
		return errors.New("radio.adapter must not be empty")
	}
	if c.Radio.DeviceID < 0 {
		return errors.Errorf("radio.device_id must be >= 0, got %d", c.Radio.DeviceID)
	}
	if len(c.Network.WiFiInterfaces) == 0 {
		return errors.New("network.wifi_interfaces must not be empty")
	}
	if c.Network.AssociationTimeout <= 0 {
		return errors.New("network.association_timeout must be > 0")
	}
	if c.Network.PollInterval < 0 {
		return errors.New("network.poll_interval must be >= 0")
	}
	if c.Storage.Path == "" {
		return errors.New("storage.path must not be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}
	return nil
}
