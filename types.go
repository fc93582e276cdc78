package drill2exc

import (
	"log/slog"
	"time"
)

// Result describes a completed pipeline run.
type Result struct {
	Artifacts Artifacts
	Board     *BoardInfo    // nil when validation is disabled
	Export    *ExportResult // exporter invocation details
	Stats     Stats         // converter counters
	Duration  time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// pipelineConfig holds internal configuration for Pipeline.
type pipelineConfig struct {
	exporterPath  string
	exportOptions ExportOptions
	timeout       time.Duration
	workDir       string
	rawExt        string
	convertedExt  string
	keepRaw       bool
	validate      bool
	converterOpts []ConverterOption
}

// DefaultTimeout bounds a single kicad-cli run.
const DefaultTimeout = 2 * time.Minute

// WithExporterPath sets the kicad-cli executable.
// Without it, NewPipeline searches well-known locations and PATH.
func WithExporterPath(path string) Option {
	return func(p *Pipeline) { p.cfg.exporterPath = path }
}

// WithExportOptions overrides the kicad-cli drill export flags.
func WithExportOptions(o ExportOptions) Option {
	return func(p *Pipeline) { p.cfg.exportOptions = o }
}

// WithTimeout sets the exporter timeout. Zero waits indefinitely.
// Panics if d < 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d < 0 {
		panic("drill2exc: WithTimeout duration must not be negative")
	}
	return func(p *Pipeline) { p.cfg.timeout = d }
}

// WithWorkDir sets the directory the exporter runs in.
// Empty means a fresh temporary directory per run, removed afterwards.
func WithWorkDir(dir string) Option {
	return func(p *Pipeline) { p.cfg.workDir = dir }
}

// WithExtensions overrides the raw and converted file extensions.
func WithExtensions(raw, converted string) Option {
	return func(p *Pipeline) {
		p.cfg.rawExt = raw
		p.cfg.convertedExt = converted
	}
}

// WithKeepRaw keeps the relocated raw drill file after conversion.
func WithKeepRaw(keep bool) Option {
	return func(p *Pipeline) { p.cfg.keepRaw = keep }
}

// WithValidation enables or disables the board header check.
func WithValidation(enabled bool) Option {
	return func(p *Pipeline) { p.cfg.validate = enabled }
}

// WithConverterOptions passes options to the pipeline's Converter.
func WithConverterOptions(opts ...ConverterOption) Option {
	return func(p *Pipeline) { p.cfg.converterOpts = append(p.cfg.converterOpts, opts...) }
}

// WithRunner replaces the command runner used to spawn kicad-cli.
func WithRunner(r CommandRunner) Option {
	return func(p *Pipeline) { p.runner = r }
}

// WithLogger sets the logger for pipeline diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
