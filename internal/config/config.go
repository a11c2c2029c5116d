package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/rbuild/internal/sequencer"
)

// FileName is the config file looked up in the working directory and under
// the user config directory.
const FileName = ".rbuild.yaml"

// Defaults.
const (
	DefaultTestDir     = "bin/tests"
	DefaultRuntimeRoot = "bin"
	DefaultBuildDir    = "build"
	DefaultBackend     = "ninja"
	DefaultCrossMarker = ".cross-compile"
)

// AppConfig mirrors .rbuild.yaml. Empty fields fall through to defaults.
type AppConfig struct {
	TestDir     string             `yaml:"test_dir,omitempty"`
	RuntimeRoot string             `yaml:"runtime_root,omitempty"`
	BuildDir    string             `yaml:"build_dir,omitempty"`
	Backend     string             `yaml:"backend,omitempty"`
	CrossMarker string             `yaml:"cross_marker,omitempty"`
	Invocation  map[string]string  `yaml:"invocation,omitempty"`
	Bindings    sequencer.Bindings `yaml:"bindings,omitempty"`
	ReportJSON  string             `yaml:"report_json,omitempty"`
	MetricsFile string             `yaml:"metrics_file,omitempty"`
	Telemetry   bool               `yaml:"telemetry"`
	NoColor     bool               `yaml:"no_color"`
	Debug       bool               `yaml:"debug"`
}

// FindPath returns the config file to use: dir/.rbuild.yaml first, then
// $XDG_CONFIG_HOME/rbuild/.rbuild.yaml. It returns "" when neither exists.
func FindPath(dir string) string {
	local := filepath.Join(dir, FileName)
	if _, err := os.Stat(local); err == nil {
		return local
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "rbuild", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}

// LoadFile parses one config file.
func LoadFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Load finds and parses the config file for dir. With no file it returns an
// empty AppConfig and path "".
func Load(dir string) (*AppConfig, string, error) {
	path := FindPath(dir)
	if path == "" {
		return &AppConfig{}, "", nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &AppConfig{}, "", nil
	}
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
