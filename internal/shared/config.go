package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML (or YAML) file.
type Config struct {
	Client   ClientConfig   `toml:"client" yaml:"client"`
	Timing   TimingConfig   `toml:"timing" yaml:"timing"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
}

// ClientConfig describes where the stream and download endpoints live and how downloads are handled.
type ClientConfig struct {
	BaseURL      string `toml:"base_url" yaml:"base_url"`
	StreamPath   string `toml:"stream_path" yaml:"stream_path"`
	DownloadPath string `toml:"download_path" yaml:"download_path"`
	DownloadDir  string `toml:"download_dir" yaml:"download_dir"`
	DownloadMode string `toml:"download_mode" yaml:"download_mode"` // fetch or browser
	LocationPath string `toml:"location_path" yaml:"location_path"`
}

// TimingConfig holds the debounce and one-shot delays, in milliseconds.
type TimingConfig struct {
	ValidateDebounceMS  int `toml:"validate_debounce_ms" yaml:"validate_debounce_ms"`
	TooltipDelayMS      int `toml:"tooltip_delay_ms" yaml:"tooltip_delay_ms"`
	AutoDownloadDelayMS int `toml:"auto_download_delay_ms" yaml:"auto_download_delay_ms"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" yaml:"path"`
	MaxOpenConns int    `toml:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" yaml:"max_idle_conns"`
}

// ServerConfig contains settings for the backend that produces the event stream.
type ServerConfig struct {
	Host      string   `toml:"host" yaml:"host"`
	Port      int      `toml:"port" yaml:"port"`
	OutputDir string   `toml:"output_dir" yaml:"output_dir"`
	Command   string   `toml:"command" yaml:"command"`
	Args      []string `toml:"args" yaml:"args"`
	RateLimit float64  `toml:"rate_limit" yaml:"rate_limit"`
	Burst     int      `toml:"burst" yaml:"burst"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ValidateDebounce is the wait before a keystroke is checked.
func (t TimingConfig) ValidateDebounce() time.Duration {
	return time.Duration(t.ValidateDebounceMS) * time.Millisecond
}

// TooltipDelay is the one-shot wait before an invalid-input tooltip shows.
func (t TimingConfig) TooltipDelay() time.Duration {
	return time.Duration(t.TooltipDelayMS) * time.Millisecond
}

// AutoDownloadDelay is the wait between a file notice and its automatic download.
func (t TimingConfig) AutoDownloadDelay() time.Duration {
	return time.Duration(t.AutoDownloadDelayMS) * time.Millisecond
}

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files with a .yaml or .yml extension are decoded as YAML, everything else as TOML.
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports configuration values the client or server cannot run with.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Client.BaseURL, "http://") && !strings.HasPrefix(c.Client.BaseURL, "https://") {
		return fmt.Errorf("%w: client.base_url must be an http(s) URL, got %q", ErrInvalidConfig, c.Client.BaseURL)
	}
	switch c.Client.DownloadMode {
	case "fetch", "browser":
	default:
		return fmt.Errorf("%w: client.download_mode must be fetch or browser, got %q", ErrInvalidConfig, c.Client.DownloadMode)
	}
	if c.Timing.ValidateDebounceMS < 0 || c.Timing.TooltipDelayMS < 0 || c.Timing.AutoDownloadDelayMS < 0 {
		return fmt.Errorf("%w: timing values must not be negative", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
