package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-drill2exc/internal/fileutil"
	"github.com/alnah/go-drill2exc/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Bounds for numeric settings.
const (
	MinLineLength = 16
	MaxLineLength = 1 << 20
	MaxTimeout    = time.Hour
)

// configDirName is the directory under the user config dir searched for
// named configs.
const configDirName = "go-drill2exc"

// Config holds all configuration for a drill conversion.
type Config struct {
	Exporter ExporterConfig `yaml:"exporter"`
	Export   ExportConfig   `yaml:"export"`
	Convert  ConvertConfig  `yaml:"convert"`
	Board    BoardConfig    `yaml:"board"`
	Log      LogConfig      `yaml:"log"`
}

// ExporterConfig locates and bounds the kicad-cli process.
type ExporterConfig struct {
	Path        string   `yaml:"path"`        // Explicit kicad-cli path (empty = search)
	SearchPaths []string `yaml:"searchPaths"` // Extra locations tried before the built-in ones
	Timeout     string   `yaml:"timeout"`     // Go duration, "0" = no timeout (default: 2m)
	WorkDir     string   `yaml:"workDir"`     // Exporter working dir (empty = temp dir per run)
}

// ExportConfig selects the kicad-cli drill export flags.
type ExportConfig struct {
	DrillOrigin   string `yaml:"drillOrigin"`   // "plot", "absolute"
	ZerosFormat   string `yaml:"zerosFormat"`   // "decimal", "suppressleading", "suppresstrailing", "keep"
	Units         string `yaml:"units"`         // "in", "mm"
	MinimalHeader bool   `yaml:"minimalHeader"` // --excellon-min-header
}

// ConvertConfig controls the drill file rewrite.
type ConvertConfig struct {
	Sentinel        string `yaml:"sentinel"`        // Line ending the header block (default: "T1")
	From            string `yaml:"from"`            // Text replaced once per line (default: "X-")
	To              string `yaml:"to"`              // Replacement (default: "X")
	MaxLineLength   int    `yaml:"maxLineLength"`   // Bytes per line, terminator included
	RawExtension    string `yaml:"rawExtension"`    // kicad-cli output (default: "drl")
	OutputExtension string `yaml:"outputExtension"` // Converted output (default: "exc")
	KeepRaw         bool   `yaml:"keepRaw"`         // Keep the .drl after conversion
}

// BoardConfig controls input discovery and validation.
type BoardConfig struct {
	Extension string `yaml:"extension"` // Board file extension (default: "kicad_pcb")
	Validate  bool   `yaml:"validate"`  // Check the kicad_pcb header before export
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json"
}

// DefaultConfig returns the configuration matching the EAGLE CAM job.
func DefaultConfig() *Config {
	return &Config{
		Exporter: ExporterConfig{Timeout: "2m"},
		Export: ExportConfig{
			DrillOrigin:   "plot",
			ZerosFormat:   "suppressleading",
			Units:         "in",
			MinimalHeader: true,
		},
		Convert: ConvertConfig{
			Sentinel:        "T1",
			From:            "X-",
			To:              "X",
			MaxLineLength:   4096,
			RawExtension:    "drl",
			OutputExtension: "exc",
		},
		Board: BoardConfig{
			Extension: "kicad_pcb",
			Validate:  true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// TimeoutDuration parses Exporter.Timeout. Empty means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Exporter.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Exporter.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: exporter.timeout %q: %v", ErrInvalidValue, c.Exporter.Timeout, err)
	}
	return d, nil
}

// Validate checks enumerations and bounds.
// Called automatically by LoadConfig, but available for callers that build
// or modify a Config in code (flag and environment merging).
func (c *Config) Validate() error {
	d, err := c.TimeoutDuration()
	if err != nil {
		return err
	}
	if d < 0 || d > MaxTimeout {
		return fmt.Errorf("%w: exporter.timeout must be between 0 and %s, got %s", ErrInvalidValue, MaxTimeout, d)
	}

	if err := oneOf("export.drillOrigin", c.Export.DrillOrigin, "plot", "absolute"); err != nil {
		return err
	}
	if err := oneOf("export.zerosFormat", c.Export.ZerosFormat, "decimal", "suppressleading", "suppresstrailing", "keep"); err != nil {
		return err
	}
	if err := oneOf("export.units", c.Export.Units, "in", "mm"); err != nil {
		return err
	}

	if c.Convert.Sentinel == "" {
		return fmt.Errorf("%w: convert.sentinel cannot be empty", ErrInvalidValue)
	}
	if c.Convert.From == "" {
		return fmt.Errorf("%w: convert.from cannot be empty", ErrInvalidValue)
	}
	if c.Convert.MaxLineLength < MinLineLength || c.Convert.MaxLineLength > MaxLineLength {
		return fmt.Errorf("%w: convert.maxLineLength must be between %d and %d, got %d",
			ErrInvalidValue, MinLineLength, MaxLineLength, c.Convert.MaxLineLength)
	}

	for field, ext := range map[string]string{
		"convert.rawExtension":    c.Convert.RawExtension,
		"convert.outputExtension": c.Convert.OutputExtension,
		"board.extension":         c.Board.Extension,
	} {
		if err := fileutil.ValidateExtension(ext); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
		}
	}
	if c.Convert.RawExtension == c.Convert.OutputExtension {
		return fmt.Errorf("%w: convert.rawExtension and convert.outputExtension must differ", ErrInvalidValue)
	}

	if err := oneOf("log.level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return oneOf("log.format", c.Log.Format, "text", "json")
}

// oneOf checks value against allowed (case-insensitive).
func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q (must be %s)", ErrInvalidValue, field, value, strings.Join(allowed, ", "))
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their defaults.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the locations LoadConfig tries for a config name.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-drill2exc/
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
