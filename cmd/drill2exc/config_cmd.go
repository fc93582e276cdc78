package main

import (
	"fmt"

	"github.com/alnah/go-drill2exc/internal/yamlutil"
)

// runConfigCmd prints the effective configuration as YAML.
// The output is a valid config file.
func runConfigCmd(args []string, env *Environment) error {
	flags, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}

	cfg, _, err := loadSettings(env, *flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(data)
	return err
}
