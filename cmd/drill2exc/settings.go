package main

import (
	"errors"
	"fmt"

	"github.com/alnah/go-drill2exc/internal/config"
	"github.com/alnah/go-drill2exc/internal/hints"
)

// loadSettings builds the effective configuration for a command:
// defaults, then the config file, then DRILL2EXC_* variables, then the
// logging flags. Command specific flags are merged by the caller.
func loadSettings(env *Environment, f commonFlags) (*config.Config, *envConfig, error) {
	envCfg, err := loadEnvConfig(env)
	if err != nil {
		return nil, nil, err
	}
	if env.Environ != nil {
		warnUnknownEnvVars(env.Environ(), env.Stderr)
	}

	cfg := config.DefaultConfig()
	name := f.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, nil, err
		}
	}

	applyEnvConfig(envCfg, cfg)

	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	return cfg, envCfg, nil
}

// usageError marks a flag parsing failure. --help passes through untouched.
func usageError(err error) error {
	if errors.Is(err, errHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
