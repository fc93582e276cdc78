package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-drill2exc/internal/config"
)

// ErrInvalidEnv is returned when a DRILL2EXC_* variable cannot be parsed.
var ErrInvalidEnv = errors.New("invalid environment variable")

// envPrefix marks environment variables read by drill2exc.
const envPrefix = "DRILL2EXC_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // DRILL2EXC_CONFIG: config file name or path
	Exporter   string // DRILL2EXC_EXPORTER: kicad-cli path
	Timeout    string // DRILL2EXC_TIMEOUT: exporter timeout
	WorkDir    string // DRILL2EXC_WORK_DIR: exporter working directory
	LogLevel   string // DRILL2EXC_LOG_LEVEL: debug, info, warn, error
	LogFormat  string // DRILL2EXC_LOG_FORMAT: text, json
	KeepRaw    *bool  // DRILL2EXC_KEEP_RAW: keep the exported .drl
	NoPrompt   bool   // DRILL2EXC_NO_PROMPT: never prompt
}

// knownEnvVars lists valid DRILL2EXC_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DRILL2EXC_CONFIG":     true,
	"DRILL2EXC_EXPORTER":   true,
	"DRILL2EXC_TIMEOUT":    true,
	"DRILL2EXC_WORK_DIR":   true,
	"DRILL2EXC_LOG_LEVEL":  true,
	"DRILL2EXC_LOG_FORMAT": true,
	"DRILL2EXC_KEEP_RAW":   true,
	"DRILL2EXC_NO_PROMPT":  true,
}

// loadEnvConfig reads configuration from environment variables.
// Boolean variables must parse with strconv.ParseBool.
func loadEnvConfig(env *Environment) (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath: env.getenv("DRILL2EXC_CONFIG"),
		Exporter:   env.getenv("DRILL2EXC_EXPORTER"),
		Timeout:    env.getenv("DRILL2EXC_TIMEOUT"),
		WorkDir:    env.getenv("DRILL2EXC_WORK_DIR"),
		LogLevel:   env.getenv("DRILL2EXC_LOG_LEVEL"),
		LogFormat:  env.getenv("DRILL2EXC_LOG_FORMAT"),
	}

	if v := env.getenv("DRILL2EXC_KEEP_RAW"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: DRILL2EXC_KEEP_RAW=%q", ErrInvalidEnv, v)
		}
		cfg.KeepRaw = &b
	}

	if v := env.getenv("DRILL2EXC_NO_PROMPT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: DRILL2EXC_NO_PROMPT=%q", ErrInvalidEnv, v)
		}
		cfg.NoPrompt = b
	}

	return cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized DRILL2EXC_* variables.
// Helps catch typos like DRILL2EXC_EXPORTR instead of DRILL2EXC_EXPORTER.
func warnUnknownEnvVars(environ []string, w io.Writer) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			_, _ = fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; flags are merged afterwards,
// giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Exporter != "" {
		cfg.Exporter.Path = env.Exporter
	}
	if env.Timeout != "" {
		cfg.Exporter.Timeout = env.Timeout
	}
	if env.WorkDir != "" {
		cfg.Exporter.WorkDir = env.WorkDir
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.KeepRaw != nil {
		cfg.Convert.KeepRaw = *env.KeepRaw
	}
}
