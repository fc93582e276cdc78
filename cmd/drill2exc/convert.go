package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	drill2exc "github.com/alnah/go-drill2exc"
	"github.com/alnah/go-drill2exc/internal/config"
	"github.com/alnah/go-drill2exc/internal/fileutil"
	"github.com/alnah/go-drill2exc/internal/hints"
	"github.com/alnah/go-drill2exc/internal/resolve"
)

// runConvert exports the board's drill file and writes the EAGLE version
// next to it.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected at most one board file, got %d", ErrUsage, len(positional))
	}

	cfg, envCfg, err := loadSettings(env, flags.common)
	if err != nil {
		return err
	}
	mergeConvertFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	configureColor(flags.common.noColor, env)
	out := newUI(env, flags.common)
	logger := newLogger(cfg.Log.Level, cfg.Log.Format, env.Stderr)

	p, closePrompter, err := openPrompter(env, flags.noPrompt || envCfg.NoPrompt)
	if err != nil {
		return err
	}
	defer closePrompter()

	r := &resolve.Resolver{
		Dir:       env.Dir,
		Extension: cfg.Board.Extension,
		Prompter:  p,
		Out:       env.Stderr,
	}

	var arg string
	if len(positional) == 1 {
		arg = positional[0]
	}
	board, err := r.Board(arg)
	if err != nil {
		return err
	}
	logger.Debug("board resolved", "path", board)

	exporterPath, err := resolveExporter(r, cfg, out)
	if err != nil {
		return withHint(err, nil, cfg)
	}
	logger.Debug("exporter resolved", "path", exporterPath)

	opts, err := pipelineOptions(cfg, exporterPath, logger, env.Runner)
	if err != nil {
		return err
	}
	pipe, err := drill2exc.NewPipeline(opts...)
	if err != nil {
		return err
	}

	if flags.dryRun {
		return printDryRun(env, pipe, board, cfg)
	}

	out.info("Exporting drill file for %s", board)
	result, err := pipe.Run(ctx, board)
	if err != nil {
		return withHint(err, result, cfg)
	}

	out.success("%s -> %s", board, result.Artifacts.Converted)
	if result.Board != nil {
		out.detail("board format %d (%s)", result.Board.Version, result.Board.Generator)
	}
	out.detail("exporter: %s", result.Export.CommandLine)
	out.detail("header lines dropped: %d, lines written: %d, lines rewritten: %d",
		result.Stats.HeaderLines, result.Stats.Lines, result.Stats.Replaced)
	if cfg.Convert.KeepRaw {
		out.detail("raw drill file kept at %s", result.Artifacts.Raw)
	}
	out.detail("done in %s", result.Duration.Round(time.Millisecond))
	return nil
}

// mergeConvertFlags applies flags that were set over cfg.
func mergeConvertFlags(f *convertFlags, cfg *config.Config) {
	if f.exporter.path != "" {
		cfg.Exporter.Path = f.exporter.path
	}
	if f.exporter.timeout != "" {
		cfg.Exporter.Timeout = f.exporter.timeout
	}
	if f.exporter.workDir != "" {
		cfg.Exporter.WorkDir = f.exporter.workDir
	}
	if f.keepRaw {
		cfg.Convert.KeepRaw = true
	}
	if f.noValidate {
		cfg.Board.Validate = false
	}
}

// openPrompter opens the interactive prompter unless prompting is disabled
// or the session is not interactive. The returned func releases it.
func openPrompter(env *Environment, disabled bool) (resolve.Prompter, func(), error) {
	if disabled || env.NewPrompter == nil {
		return nil, func() {}, nil
	}
	p, err := env.NewPrompter(env.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("opening prompt: %w", err)
	}
	return p, func() { _ = p.Close() }, nil
}

// resolveExporter finds kicad-cli: the configured path first, then the
// configured search paths, then well-known locations and PATH.
func resolveExporter(r *resolve.Resolver, cfg *config.Config, out *ui) (string, error) {
	explicit := fileutil.TrimQuotes(cfg.Exporter.Path)
	if explicit != "" && !fileutil.FileExists(explicit) {
		out.warn("exporter %s not found, searching default locations", explicit)
	}
	candidates := append([]string{explicit}, cfg.Exporter.SearchPaths...)
	return r.Exporter(candidates...)
}

// pipelineOptions translates the configuration into pipeline options.
func pipelineOptions(cfg *config.Config, exporterPath string, logger *slog.Logger, runner drill2exc.CommandRunner) ([]drill2exc.Option, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	opts := []drill2exc.Option{
		drill2exc.WithExporterPath(exporterPath),
		drill2exc.WithExportOptions(drill2exc.ExportOptions{
			DrillOrigin:   cfg.Export.DrillOrigin,
			ZerosFormat:   cfg.Export.ZerosFormat,
			Units:         cfg.Export.Units,
			MinimalHeader: cfg.Export.MinimalHeader,
		}),
		drill2exc.WithTimeout(timeout),
		drill2exc.WithWorkDir(cfg.Exporter.WorkDir),
		drill2exc.WithExtensions(cfg.Convert.RawExtension, cfg.Convert.OutputExtension),
		drill2exc.WithKeepRaw(cfg.Convert.KeepRaw),
		drill2exc.WithValidation(cfg.Board.Validate),
		drill2exc.WithConverterOptions(converterOptions(cfg)...),
		drill2exc.WithLogger(logger),
	}
	if runner != nil {
		opts = append(opts, drill2exc.WithRunner(runner))
	}
	return opts, nil
}

// converterOptions returns the rewrite rules from cfg.
func converterOptions(cfg *config.Config) []drill2exc.ConverterOption {
	return []drill2exc.ConverterOption{
		drill2exc.WithSentinel(cfg.Convert.Sentinel),
		drill2exc.WithReplacement(cfg.Convert.From, cfg.Convert.To),
		drill2exc.WithMaxLineLength(cfg.Convert.MaxLineLength),
	}
}

// printDryRun shows the exporter invocation and the files a run would write.
func printDryRun(env *Environment, pipe *drill2exc.Pipeline, board string, cfg *config.Config) error {
	artifacts, err := drill2exc.DeriveArtifacts(board, cfg.Convert.RawExtension, cfg.Convert.OutputExtension)
	if err != nil {
		return err
	}
	absBoard, err := filepath.Abs(board)
	if err != nil {
		return fmt.Errorf("resolving board path: %w", err)
	}

	fmt.Fprintf(env.Stdout, "exporter: %s\n", pipe.Exporter().CommandLine(absBoard))
	fmt.Fprintf(env.Stdout, "raw:      %s\n", artifacts.Raw)
	fmt.Fprintf(env.Stdout, "output:   %s\n", artifacts.Converted)
	if !cfg.Convert.KeepRaw {
		fmt.Fprintln(env.Stdout, "the raw drill file is removed after conversion")
	}
	return nil
}

// withHint appends an actionable hint to err when one applies.
// result may be nil.
func withHint(err error, result *drill2exc.Result, cfg *config.Config) error {
	var hint string
	switch {
	case errors.Is(err, drill2exc.ErrExporterNotFound):
		hint = hints.ForExporterNotFound()
	case errors.Is(err, drill2exc.ErrExporterTimeout):
		hint = hints.ForTimeout()
	case errors.Is(err, drill2exc.ErrExporterFailed):
		if result != nil && result.Export != nil {
			hint = hints.ForExporterFailed(result.Export.Stderr)
		}
	case errors.Is(err, drill2exc.ErrSentinelNotFound):
		hint = hints.ForSentinelMissing(cfg.Convert.Sentinel)
	case errors.Is(err, drill2exc.ErrLineTooLong):
		hint = hints.ForLineTooLong()
	case errors.Is(err, drill2exc.ErrRelocateExport), errors.Is(err, drill2exc.ErrWriteOutput):
		hint = hints.ForOutputDirectory()
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}
