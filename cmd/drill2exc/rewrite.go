package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	drill2exc "github.com/alnah/go-drill2exc"
	"github.com/alnah/go-drill2exc/internal/fileutil"
)

// runRewrite converts an existing drill file without running the exporter.
func runRewrite(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRewriteFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: rewrite takes exactly one drill file, got %d", ErrUsage, len(positional))
	}

	cfg, _, err := loadSettings(env, flags.common)
	if err != nil {
		return err
	}
	if flags.sentinel != "" {
		cfg.Convert.Sentinel = flags.sentinel
	}
	if flags.maxLine != 0 {
		cfg.Convert.MaxLineLength = flags.maxLine
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	configureColor(flags.common.noColor, env)
	out := newUI(env, flags.common)
	logger := newLogger(cfg.Log.Level, cfg.Log.Format, env.Stderr)

	input := fileutil.TrimQuotes(positional[0])
	output := flags.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + cfg.Convert.OutputExtension
	}
	if fileutil.SamePath(input, output) {
		return fmt.Errorf("%w: output %s would overwrite the input", ErrUsage, output)
	}

	conv, err := drill2exc.NewConverter(append(converterOptions(cfg), drill2exc.WithConverterLogger(logger))...)
	if err != nil {
		return err
	}

	start := env.now()
	stats, err := conv.ConvertFile(ctx, input, output)
	if err != nil {
		return withHint(err, nil, cfg)
	}

	out.success("%s -> %s", input, output)
	out.detail("header lines dropped: %d, lines written: %d, lines rewritten: %d",
		stats.HeaderLines, stats.Lines, stats.Replaced)
	out.detail("done in %s", env.now().Sub(start).Round(time.Millisecond))
	return nil
}
