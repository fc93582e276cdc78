package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	drill2exc "github.com/alnah/go-drill2exc"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake exporter, prompter and environment
// ---------------------------------------------------------------------------

const testBoard = `(kicad_pcb
	(version 20240108)
	(generator "pcbnew")
	(generator_version "8.0")
	(general (thickness 1.6))
)
`

const testDrill = "M48\n" +
	"; DRILL file {KiCad 8.0.4}\n" +
	"FMAT,2\n" +
	"INCH\n" +
	"T1C0.0315\n" +
	"%\n" +
	"G90\n" +
	"G05\n" +
	"T1\n" +
	"X-1.2Y3.4\n" +
	"X-5.6Y-7.8\n" +
	"T0\n" +
	"M30\n"

const testConverted = "X1.2Y3.4\n" +
	"X5.6Y-7.8\n" +
	"T0\n" +
	"M30\n"

// fakeExporter stands in for kicad-cli. Export writes drill into the work
// directory; "version" answers with version.
type fakeExporter struct {
	drill    string
	version  string
	exitCode int
	stderr   string

	mu    sync.Mutex
	calls [][]string
}

func (f *fakeExporter) Run(_ context.Context, dir, _ string, args ...string) (drill2exc.RunResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()

	if len(args) == 1 && args[0] == "version" {
		return drill2exc.RunResult{Stdout: f.version + "\n"}, nil
	}
	if f.exitCode != 0 {
		return drill2exc.RunResult{ExitCode: f.exitCode, Stderr: f.stderr}, nil
	}
	board := args[len(args)-1]
	name := strings.TrimSuffix(filepath.Base(board), filepath.Ext(board)) + ".drl"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(f.drill), 0644); err != nil {
		return drill2exc.RunResult{}, err
	}
	return drill2exc.RunResult{}, nil
}

func (f *fakeExporter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// scriptPrompter returns queued lines, then io.EOF.
type scriptPrompter struct {
	lines   []string
	prompts []string
	closed  bool
}

func (p *scriptPrompter) Readline() (string, error) {
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *scriptPrompter) SetPrompt(prompt string) { p.prompts = append(p.prompts, prompt) }

func (p *scriptPrompter) Close() error {
	p.closed = true
	return nil
}

// testEnv returns an Environment rooted at dir with the given variables.
func testEnv(dir string, vars map[string]string, runner drill2exc.CommandRunner) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		LookupEnv: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		Dir:    dir,
		Runner: runner,
	}
	return env, &stdout, &stderr
}

// withPrompter makes env interactive with p.
func withPrompter(env *Environment, p *scriptPrompter) {
	env.NewPrompter = func(io.Writer) (prompter, error) { return p, nil }
}

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// fakeKicadCLI creates an empty executable stand-in so exporter lookup
// succeeds; the fake runner does the actual work.
func fakeKicadCLI(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "kicad-cli", "")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
