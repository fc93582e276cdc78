package drill2exc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-drill2exc/internal/fileutil"
)

// Pipeline orchestrates the board-to-EAGLE drill conversion:
// validate, export, relocate, convert, clean up.
type Pipeline struct {
	cfg       pipelineConfig
	runner    CommandRunner
	logger    *slog.Logger
	exporter  *Exporter
	converter *Converter
	board     *BoardParser
}

// NewPipeline creates a Pipeline with default configuration.
// Returns ErrExporterNotFound if no exporter path is given and none can be located.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg: pipelineConfig{
			exportOptions: DefaultExportOptions(),
			timeout:       DefaultTimeout,
			rawExt:        RawExtension,
			convertedExt:  ConvertedExtension,
			validate:      true,
		},
		runner: &ExecRunner{},
		logger: discardLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	for _, ext := range []string{p.cfg.rawExt, p.cfg.convertedExt} {
		if err := fileutil.ValidateExtension(ext); err != nil {
			return nil, fmt.Errorf("invalid artifact extension %q: %w", ext, err)
		}
	}
	if p.cfg.rawExt == p.cfg.convertedExt {
		return nil, fmt.Errorf("raw and converted extensions must differ: %q", p.cfg.rawExt)
	}

	exporterPath := p.cfg.exporterPath
	if exporterPath == "" {
		var err error
		exporterPath, err = LocateExporter(WellKnownExporterPaths()...)
		if err != nil {
			return nil, err
		}
	}
	p.exporter = &Exporter{
		Path:    exporterPath,
		Options: p.cfg.exportOptions,
		Timeout: p.cfg.timeout,
		Runner:  p.runner,
	}

	convOpts := append([]ConverterOption{WithConverterLogger(p.logger)}, p.cfg.converterOpts...)
	conv, err := NewConverter(convOpts...)
	if err != nil {
		return nil, err
	}
	p.converter = conv

	if p.cfg.validate {
		bp, err := NewBoardParser()
		if err != nil {
			return nil, err
		}
		p.board = bp
	}

	return p, nil
}

// Exporter returns the exporter the pipeline drives.
func (p *Pipeline) Exporter() *Exporter { return p.exporter }

// Run converts board into its EAGLE drill file. Stages run in order and the
// first failure aborts the rest. The returned Result is partially filled on
// failure and nil only when the paths cannot be derived.
func (p *Pipeline) Run(ctx context.Context, board string) (*Result, error) {
	start := time.Now()

	artifacts, err := DeriveArtifacts(board, p.cfg.rawExt, p.cfg.convertedExt)
	if err != nil {
		return nil, err
	}
	result := &Result{Artifacts: artifacts}
	logger := p.logger.With("board", board)

	if p.board != nil {
		info, err := p.board.ParseFile(board)
		if err != nil {
			return result, fmt.Errorf("validating board: %w", err)
		}
		result.Board = info
		logger.Debug("board validated", "version", info.Version, "generator", info.Generator)
	}

	workDir, cleanup, err := p.prepareWorkDir()
	if err != nil {
		return result, err
	}
	defer cleanup()

	logger.Info("exporting drill file", "exporter", p.exporter.Path, "workDir", workDir)
	export, err := p.exporter.Export(ctx, board, workDir)
	result.Export = export
	if err != nil {
		return result, fmt.Errorf("exporting drill file: %w", err)
	}
	logger.Debug("exporter finished", "duration", export.Duration, "exitCode", export.ExitCode)

	if err := relocate(artifacts.ExportedIn(workDir), artifacts.Raw); err != nil {
		return result, err
	}
	logger.Debug("drill file relocated", "path", artifacts.Raw)

	stats, err := p.converter.ConvertFile(ctx, artifacts.Raw, artifacts.Converted)
	result.Stats = stats
	if err != nil {
		return result, fmt.Errorf("converting %s: %w", artifacts.Raw, err)
	}

	if !p.cfg.keepRaw {
		if err := os.Remove(artifacts.Raw); err != nil {
			logger.Warn("could not remove raw drill file", "path", artifacts.Raw, "error", err)
		}
	}

	result.Duration = time.Since(start)
	logger.Info("drill file converted",
		"output", artifacts.Converted,
		"lines", stats.Lines,
		"replaced", stats.Replaced,
		"duration", result.Duration)
	return result, nil
}

// prepareWorkDir returns the exporter working directory and its cleanup.
func (p *Pipeline) prepareWorkDir() (string, func(), error) {
	if p.cfg.workDir != "" {
		return p.cfg.workDir, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "drill2exc-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating work directory: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// relocate moves the exported drill file next to the board.
func relocate(src, dst string) error {
	if !fileutil.FileExists(src) {
		return fmt.Errorf("%w: %s", ErrExportMissing, src)
	}
	if fileutil.SamePath(src, dst) {
		return nil
	}
	if err := fileutil.MoveFile(src, dst); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s: %v", ErrRelocateExport, filepath.Dir(dst), err)
		}
		return fmt.Errorf("%w: %v", ErrRelocateExport, err)
	}
	return nil
}
