package drill2exc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-drill2exc/internal/fileutil"
	"github.com/alnah/go-drill2exc/internal/process"
)

// Export option defaults matching the EAGLE CAM job.
const (
	DefaultDrillOrigin = "plot"
	DefaultZerosFormat = "suppressleading"
	DefaultUnits       = "in"
)

// ExportOptions selects the kicad-cli drill export flags.
type ExportOptions struct {
	DrillOrigin   string // "plot" or "absolute"
	ZerosFormat   string // "decimal", "suppressleading", "suppresstrailing", "keep"
	Units         string // "in" or "mm"
	MinimalHeader bool
}

// DefaultExportOptions returns the options the converter expects.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		DrillOrigin:   DefaultDrillOrigin,
		ZerosFormat:   DefaultZerosFormat,
		Units:         DefaultUnits,
		MinimalHeader: true,
	}
}

// args returns the kicad-cli arguments for exporting board.
func (o ExportOptions) args(board string) []string {
	args := []string{
		"pcb", "export", "drill",
		"--drill-origin", o.DrillOrigin,
		"--excellon-zeros-format", o.ZerosFormat,
		"-u", o.Units,
	}
	if o.MinimalHeader {
		args = append(args, "--excellon-min-header")
	}
	return append(args, board)
}

// RunResult is the outcome of a finished child process.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
// A non-zero exit is reported through RunResult.ExitCode, not as an error.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (RunResult, error)
}

// ExecRunner implements CommandRunner using os/exec.
// The child runs in its own process group, which is killed on cancellation.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- exporter path is user-configured
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	process.SetProcessGroup(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}

	if err := cmd.Start(); err != nil {
		return RunResult{}, fmt.Errorf("starting command: %w", err)
	}

	err := cmd.Wait()
	result := RunResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return result, fmt.Errorf("waiting for command: %w", err)
	}
	return result, nil
}

// ExportResult describes one exporter invocation.
type ExportResult struct {
	CommandLine string
	ExitCode    int
	Stdout      string
	Stderr      string
	Duration    time.Duration
}

// Exporter drives kicad-cli to produce a drill file.
type Exporter struct {
	Path    string
	Options ExportOptions
	Timeout time.Duration // 0 = wait indefinitely
	Runner  CommandRunner
}

// NewExporter creates an Exporter for the kicad-cli at path with a real command runner.
func NewExporter(path string, opts ExportOptions, timeout time.Duration) *Exporter {
	return &Exporter{
		Path:    path,
		Options: opts,
		Timeout: timeout,
		Runner:  &ExecRunner{},
	}
}

// CommandLine renders the invocation as a single string with every component
// quote-wrapped and the whole line wrapped once more, the form cmd.exe expects.
func (e *Exporter) CommandLine(board string) string {
	parts := make([]string, 0, 12)
	parts = append(parts, quote(e.Path))
	for _, a := range e.Options.args(board) {
		parts = append(parts, quote(a))
	}
	return quote(strings.Join(parts, " "))
}

// Export runs kicad-cli in workDir, where the drill file is written.
// A non-zero exit status is returned as ErrExporterFailed.
func (e *Exporter) Export(ctx context.Context, board, workDir string) (*ExportResult, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	absBoard, err := filepath.Abs(board)
	if err != nil {
		return nil, fmt.Errorf("resolving board path: %w", err)
	}

	result := &ExportResult{CommandLine: e.CommandLine(absBoard)}
	start := time.Now()
	run, err := e.Runner.Run(ctx, workDir, e.Path, e.Options.args(absBoard)...)
	result.Duration = time.Since(start)
	result.ExitCode = run.ExitCode
	result.Stdout = run.Stdout
	result.Stderr = run.Stderr

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return result, fmt.Errorf("%w after %s", ErrExporterTimeout, e.Timeout)
	case errors.Is(err, context.Canceled):
		return result, fmt.Errorf("exporter interrupted: %w", err)
	case err != nil:
		return result, fmt.Errorf("%w: %v", ErrExporterStart, err)
	case run.ExitCode != 0:
		return result, fmt.Errorf("%w: exit code %d: %s", ErrExporterFailed, run.ExitCode, strings.TrimSpace(run.Stderr))
	}
	return result, nil
}

// Version asks kicad-cli for its version string.
func (e *Exporter) Version(ctx context.Context) (string, error) {
	run, err := e.Runner.Run(ctx, "", e.Path, "version")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExporterStart, err)
	}
	if run.ExitCode != 0 {
		return "", fmt.Errorf("%w: exit code %d", ErrExporterFailed, run.ExitCode)
	}
	return strings.TrimSpace(run.Stdout), nil
}

// quote wraps s in double quotes.
func quote(s string) string {
	return `"` + s + `"`
}

// exporterBinary is the kicad-cli executable name on this platform.
func exporterBinary() string {
	if runtime.GOOS == "windows" {
		return "kicad-cli.exe"
	}
	return "kicad-cli"
}

// WellKnownExporterPaths lists default kicad-cli install locations for the
// current platform, newest KiCad release first.
func WellKnownExporterPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\KiCad\9.0\bin\kicad-cli.exe`,
			`C:\Program Files\KiCad\8.0\bin\kicad-cli.exe`,
			`C:\Program Files\KiCad\7.0\bin\kicad-cli.exe`,
		}
	case "darwin":
		return []string{
			"/Applications/KiCad/KiCad.app/Contents/MacOS/kicad-cli",
		}
	default:
		return []string{
			"/usr/bin/kicad-cli",
			"/usr/local/bin/kicad-cli",
		}
	}
}

// LocateExporter returns the first candidate that names an existing file,
// falling back to a PATH lookup. Empty candidates are skipped.
func LocateExporter(candidates ...string) (string, error) {
	tried := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		c = fileutil.TrimQuotes(c)
		if c == "" {
			continue
		}
		if fileutil.FileExists(c) {
			return c, nil
		}
		tried = append(tried, c)
	}

	if p, err := exec.LookPath(exporterBinary()); err == nil {
		return p, nil
	}
	tried = append(tried, "$PATH/"+exporterBinary())

	return "", fmt.Errorf("%w: tried %s", ErrExporterNotFound, strings.Join(tried, ", "))
}
