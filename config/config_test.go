package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/armforge/arm2core/config"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := config.DefaultConfig()
	if cfg.Assemble.MaxLines != 100 {
		t.Errorf("MaxLines = %d, want 100", cfg.Assemble.MaxLines)
	}
	if cfg.Assemble.MaxLineLength != 512 {
		t.Errorf("MaxLineLength = %d, want 512", cfg.Assemble.MaxLineLength)
	}
	if cfg.Emulate.MemSize != 65536 {
		t.Errorf("MemSize = %d, want 65536", cfg.Emulate.MemSize)
	}
	if !cfg.Emulate.GPIOPrintEnabled {
		t.Error("GPIOPrintEnabled should default to true")
	}
	if cfg.Viewer.Enabled {
		t.Error("Viewer.Enabled should default to false")
	}
}

func TestLoadFromMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom(missing): %v", err)
	}
	if *cfg != *config.DefaultConfig() {
		t.Errorf("LoadFrom(missing) = %+v, want the compiled-in defaults", cfg)
	}
}

func TestSaveToThenLoadFromRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()
	cfg.Assemble.MaxLines = 250
	cfg.Viewer.Enabled = true
	cfg.Viewer.NumberFormat = "both"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("LoadFrom(SaveTo(cfg)) = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadFromRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("this is not valid = = toml"), 0600); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}

	if _, err := config.LoadFrom(path); err == nil {
		t.Error("LoadFrom should reject a malformed TOML file")
	}
}
