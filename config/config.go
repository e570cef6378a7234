// Package config loads and saves the TOML-based tunables for the
// assembler and emulator, following the teacher toolchain's
// Config/DefaultConfig/LoadFrom/SaveTo pattern.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the non-spec-mandated knobs for both binaries. None of
// these change wire format or instruction semantics; they only relax
// or report on the compiled-in defaults.
type Config struct {
	Assemble struct {
		MaxLines      int `toml:"max_lines"`
		MaxLineLength int `toml:"max_line_length"`
	} `toml:"assemble"`

	Emulate struct {
		MemSize         int  `toml:"mem_size"`
		GPIOPrintEnabled bool `toml:"gpio_print_enabled"`
	} `toml:"emulate"`

	Viewer struct {
		Enabled       bool   `toml:"enabled"`
		ColorOutput   bool   `toml:"color_output"`
		BytesPerLine  int    `toml:"bytes_per_line"`
		NumberFormat  string `toml:"number_format"` // hex, dec, both
	} `toml:"viewer"`
}

// DefaultConfig returns the compiled-in defaults: the 100-line /
// 512-byte caps and 65,536-byte memory size spec.md mandates, GPIO
// printing on, and the viewer disabled by default (plain-text dump is
// always produced regardless).
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assemble.MaxLines = 100
	cfg.Assemble.MaxLineLength = 512

	cfg.Emulate.MemSize = 65536
	cfg.Emulate.GPIOPrintEnabled = true

	cfg.Viewer.Enabled = false
	cfg.Viewer.ColorOutput = true
	cfg.Viewer.BytesPerLine = 16
	cfg.Viewer.NumberFormat = "hex"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "arm2core")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "arm2core")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, falling back
// to defaults when the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
