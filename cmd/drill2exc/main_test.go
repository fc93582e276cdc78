package main

// Notes:
// - runMain: every conversion runs against fakeExporter through
//   Environment.Runner; the --exporter path is an empty file so lookup succeeds
//   without KiCad installed.
// - configureMaxProcs and main are not tested; they only touch process globals.
// - pterm styling is left enabled; assertions match message text, which the
//   escape sequences surround but do not split.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	drill2exc "github.com/alnah/go-drill2exc"
	"github.com/alnah/go-drill2exc/internal/resolve"
)

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch, conversion scenarios and exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		// setup prepares dir and returns the arguments after the program name.
		setup        func(t *testing.T, dir, exporter string) []string
		vars         map[string]string
		runner       *fakeExporter
		wantCode     int
		wantInStdout []string
		wantInStderr []string
		check        func(t *testing.T, dir string, runner *fakeExporter)
	}{
		{
			name: "explicit board is converted",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"--exporter", exporter, board}
			},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"board.exc"},
			check: func(t *testing.T, dir string, _ *fakeExporter) {
				if got := readFile(t, filepath.Join(dir, "board.exc")); got != testConverted {
					t.Errorf("board.exc = %q, want %q", got, testConverted)
				}
				if exists(filepath.Join(dir, "board.drl")) {
					t.Error("board.drl should be removed after conversion")
				}
			},
		},
		{
			name: "single board found by scan",
			setup: func(t *testing.T, dir, exporter string) []string {
				writeFile(t, dir, "only.kicad_pcb", testBoard)
				writeFile(t, dir, "notes.txt", "ignored")
				return []string{"--exporter", exporter}
			},
			wantCode: ExitSuccess,
			check: func(t *testing.T, dir string, _ *fakeExporter) {
				if !exists(filepath.Join(dir, "only.exc")) {
					t.Error("only.exc should exist")
				}
			},
		},
		{
			name: "convert command name is accepted",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"convert", "--exporter", exporter, board}
			},
			wantCode: ExitSuccess,
		},
		{
			name: "keep raw leaves the drill file",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"--exporter", exporter, "--keep-raw", board}
			},
			wantCode: ExitSuccess,
			check: func(t *testing.T, dir string, _ *fakeExporter) {
				if got := readFile(t, filepath.Join(dir, "board.drl")); got != testDrill {
					t.Errorf("board.drl = %q, want the exported drill file", got)
				}
			},
		},
		{
			name: "keep raw from environment",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"--exporter", exporter, board}
			},
			vars:     map[string]string{"DRILL2EXC_KEEP_RAW": "true"},
			wantCode: ExitSuccess,
			check: func(t *testing.T, dir string, _ *fakeExporter) {
				if !exists(filepath.Join(dir, "board.drl")) {
					t.Error("board.drl should be kept")
				}
			},
		},
		{
			name: "verbose prints counters",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"-v", "--exporter", exporter, board}
			},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"board format 20240108", "header lines dropped: 9", "lines rewritten: 2"},
		},
		{
			name: "quiet still converts",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"-q", "--exporter", exporter, board}
			},
			wantCode: ExitSuccess,
			check: func(t *testing.T, dir string, _ *fakeExporter) {
				if !exists(filepath.Join(dir, "board.exc")) {
					t.Error("board.exc should exist")
				}
			},
		},
		{
			name: "config file changes output extension",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				cfg := writeFile(t, dir, "eagle.yaml", "convert:\n  outputExtension: eagle\n")
				return []string{"--config", cfg, "--exporter", exporter, board}
			},
			wantCode: ExitSuccess,
			check: func(t *testing.T, dir string, _ *fakeExporter) {
				if !exists(filepath.Join(dir, "board.eagle")) {
					t.Error("board.eagle should exist")
				}
			},
		},
		{
			name: "dry run does not export",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"--dry-run", "--exporter", exporter, board}
			},
			wantCode:     ExitSuccess,
			wantInStdout: []string{`"pcb" "export" "drill"`, "board.drl", "board.exc"},
			check: func(t *testing.T, dir string, runner *fakeExporter) {
				if runner.callCount() != 0 {
					t.Errorf("exporter ran %d times, want 0", runner.callCount())
				}
				if exists(filepath.Join(dir, "board.exc")) {
					t.Error("board.exc should not exist after a dry run")
				}
			},
		},
		{
			name: "invalid board is rejected",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", "(kicad_sch (version 20231120))")
				return []string{"--exporter", exporter, board}
			},
			wantCode:     ExitUsage,
			wantInStderr: []string{"invalid board file"},
		},
		{
			name: "invalid board accepted with --no-validate",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", "garbage")
				return []string{"--no-validate", "--exporter", exporter, board}
			},
			wantCode: ExitSuccess,
		},
		{
			name: "exporter failure",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"--exporter", exporter, board}
			},
			runner:       &fakeExporter{exitCode: 1, stderr: "Failed to load board"},
			wantCode:     ExitExporter,
			wantInStderr: []string{"exporter exited with non-zero status", "hint:"},
		},
		{
			name: "drill file without sentinel",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"--exporter", exporter, board}
			},
			runner:       &fakeExporter{drill: "M48\nINCH\nM30\n"},
			wantCode:     ExitConversion,
			wantInStderr: []string{"header sentinel not found", "hint:"},
			check: func(t *testing.T, dir string, _ *fakeExporter) {
				if exists(filepath.Join(dir, "board.exc")) {
					t.Error("board.exc should not exist after a failed conversion")
				}
				if !exists(filepath.Join(dir, "board.drl")) {
					t.Error("board.drl should be kept for inspection")
				}
			},
		},
		{
			name: "no board without prompt",
			setup: func(t *testing.T, _, exporter string) []string {
				return []string{"--exporter", exporter}
			},
			wantCode:     ExitIO,
			wantInStderr: []string{"no board file found"},
		},
		{
			name: "several boards without prompt",
			setup: func(t *testing.T, dir, exporter string) []string {
				writeFile(t, dir, "a.kicad_pcb", testBoard)
				writeFile(t, dir, "b.kicad_pcb", testBoard)
				return []string{"--exporter", exporter}
			},
			wantCode:     ExitUsage,
			wantInStderr: []string{"several board files found"},
		},
		{
			name: "missing explicit board without prompt",
			setup: func(t *testing.T, dir, exporter string) []string {
				return []string{"--exporter", exporter, filepath.Join(dir, "missing.kicad_pcb")}
			},
			wantCode:     ExitIO,
			wantInStderr: []string{"missing.kicad_pcb"},
		},
		{
			name: "unknown flag",
			setup: func(*testing.T, string, string) []string {
				return []string{"--bogus"}
			},
			wantCode: ExitUsage,
		},
		{
			name: "more than one board argument",
			setup: func(*testing.T, string, string) []string {
				return []string{"a.kicad_pcb", "b.kicad_pcb"}
			},
			wantCode:     ExitUsage,
			wantInStderr: []string{"at most one board file"},
		},
		{
			name: "invalid timeout",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"--timeout", "soon", "--exporter", exporter, board}
			},
			wantCode:     ExitUsage,
			wantInStderr: []string{"exporter.timeout"},
		},
		{
			name: "invalid boolean variable",
			setup: func(*testing.T, string, string) []string {
				return nil
			},
			vars:         map[string]string{"DRILL2EXC_KEEP_RAW": "maybe"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"DRILL2EXC_KEEP_RAW"},
		},
		{
			name: "unknown variable warns",
			setup: func(t *testing.T, dir, exporter string) []string {
				board := writeFile(t, dir, "board.kicad_pcb", testBoard)
				return []string{"--exporter", exporter, board}
			},
			vars:         map[string]string{"DRILL2EXC_EXPORTR": "/typo"},
			wantCode:     ExitSuccess,
			wantInStderr: []string{"unknown environment variable DRILL2EXC_EXPORTR"},
		},
		{
			name: "missing named config",
			setup: func(*testing.T, string, string) []string {
				return []string{"--config", "drill2exc-test-missing"}
			},
			wantCode:     ExitUsage,
			wantInStderr: []string{"config file not found", "hint:"},
		},
		{
			name: "version",
			setup: func(*testing.T, string, string) []string {
				return []string{"version"}
			},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"drill2exc " + Version},
		},
		{
			name: "help",
			setup: func(*testing.T, string, string) []string {
				return []string{"help"}
			},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: drill2exc", "Commands:"},
		},
		{
			name: "help rewrite",
			setup: func(*testing.T, string, string) []string {
				return []string{"help", "rewrite"}
			},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: drill2exc rewrite"},
		},
		{
			name: "help unknown command",
			setup: func(*testing.T, string, string) []string {
				return []string{"help", "bogus"}
			},
			wantCode:     ExitUsage,
			wantInStderr: []string{"Unknown command: bogus"},
		},
		{
			name: "--help prints main usage",
			setup: func(*testing.T, string, string) []string {
				return []string{"--help"}
			},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Commands:"},
		},
		{
			name: "convert --help prints convert usage",
			setup: func(*testing.T, string, string) []string {
				return []string{"convert", "--help"}
			},
			wantCode:     ExitSuccess,
			wantInStderr: []string{"--keep-raw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			runner := tt.runner
			if runner == nil {
				runner = &fakeExporter{drill: testDrill, version: "8.0.4"}
			}
			env, stdout, stderr := testEnv(dir, tt.vars, runner)
			args := append([]string{"drill2exc"}, tt.setup(t, dir, fakeKicadCLI(t))...)

			code := runMain(args, env)

			if code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", args[1:], code, tt.wantCode, stderr.String())
			}
			for _, want := range tt.wantInStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout should contain %q, got %q", want, stdout.String())
				}
			}
			for _, want := range tt.wantInStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr should contain %q, got %q", want, stderr.String())
				}
			}
			if tt.check != nil {
				tt.check(t, dir, runner)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Prompts - Interactive board selection
// ---------------------------------------------------------------------------

func TestRunMain_Prompts(t *testing.T) {
	t.Parallel()

	t.Run("several boards choose by number", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "a.kicad_pcb", testBoard)
		writeFile(t, dir, "b.kicad_pcb", testBoard)
		env, _, stderr := testEnv(dir, nil, &fakeExporter{drill: testDrill})
		p := &scriptPrompter{lines: []string{"9", "two", "2"}}
		withPrompter(env, p)

		code := runMain([]string{"drill2exc", "--exporter", fakeKicadCLI(t)}, env)

		if code != ExitSuccess {
			t.Fatalf("runMain() = %d, want %d\nstderr: %s", code, ExitSuccess, stderr.String())
		}
		if !exists(filepath.Join(dir, "b.exc")) || exists(filepath.Join(dir, "a.exc")) {
			t.Error("only b.exc should be written")
		}
		if !slices.Contains(p.prompts, resolve.PromptSelection) {
			t.Errorf("prompts = %q, want %q", p.prompts, resolve.PromptSelection)
		}
		if !p.closed {
			t.Error("prompter should be closed")
		}
	})

	t.Run("missing board asks for a path", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		board := writeFile(t, dir, "real.kicad_pcb", testBoard)
		env, _, stderr := testEnv(dir, nil, &fakeExporter{drill: testDrill})
		p := &scriptPrompter{lines: []string{board}}
		withPrompter(env, p)

		code := runMain([]string{"drill2exc", "--exporter", fakeKicadCLI(t), filepath.Join(dir, "typo.kicad_pcb")}, env)

		if code != ExitSuccess {
			t.Fatalf("runMain() = %d, want %d\nstderr: %s", code, ExitSuccess, stderr.String())
		}
		if !strings.Contains(stderr.String(), "not found") {
			t.Errorf("stderr should report the missing board, got %q", stderr.String())
		}
		if !exists(filepath.Join(dir, "real.exc")) {
			t.Error("real.exc should exist")
		}
	})

	t.Run("end of input aborts", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		env, _, stderr := testEnv(dir, nil, &fakeExporter{drill: testDrill})
		withPrompter(env, &scriptPrompter{})

		code := runMain([]string{"drill2exc", "--exporter", fakeKicadCLI(t)}, env)

		if code != ExitGeneral {
			t.Errorf("runMain() = %d, want %d", code, ExitGeneral)
		}
		if !strings.Contains(stderr.String(), "prompt aborted") {
			t.Errorf("stderr should contain %q, got %q", "prompt aborted", stderr.String())
		}
	})

	t.Run("no-prompt variable disables prompts", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "a.kicad_pcb", testBoard)
		writeFile(t, dir, "b.kicad_pcb", testBoard)
		env, _, _ := testEnv(dir, map[string]string{"DRILL2EXC_NO_PROMPT": "1"}, &fakeExporter{drill: testDrill})
		p := &scriptPrompter{lines: []string{"1"}}
		withPrompter(env, p)

		code := runMain([]string{"drill2exc", "--exporter", fakeKicadCLI(t)}, env)

		if code != ExitUsage {
			t.Errorf("runMain() = %d, want %d", code, ExitUsage)
		}
		if len(p.prompts) != 0 {
			t.Errorf("prompts = %q, want none", p.prompts)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunMain_ExporterFromEnvironment - DRILL2EXC_EXPORTER
// ---------------------------------------------------------------------------

func TestRunMain_ExporterFromEnvironment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	board := writeFile(t, dir, "board.kicad_pcb", testBoard)
	exporter := fakeKicadCLI(t)
	runner := &fakeExporter{drill: testDrill}
	env, stdout, stderr := testEnv(dir, map[string]string{"DRILL2EXC_EXPORTER": exporter}, runner)

	code := runMain([]string{"drill2exc", "--dry-run", board}, env)

	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", code, ExitSuccess, stderr.String())
	}
	if !strings.Contains(stdout.String(), exporter) {
		t.Errorf("dry run should show exporter %s, got %q", exporter, stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_ExporterNotFound - Exit code and hint when kicad-cli is missing
// ---------------------------------------------------------------------------

func TestRunMain_ExporterNotFound(t *testing.T) {
	// NO t.Parallel() - modifies PATH
	t.Setenv("PATH", t.TempDir())
	t.Setenv("DRILL2EXC_EXPORTER", "")
	if _, err := drill2exc.LocateExporter(drill2exc.WellKnownExporterPaths()...); err == nil {
		t.Skip("kicad-cli is installed on this host")
	}

	dir := t.TempDir()
	board := writeFile(t, dir, "board.kicad_pcb", testBoard)
	env, _, stderr := testEnv(dir, nil, &fakeExporter{drill: testDrill})

	code := runMain([]string{"drill2exc", "--exporter", filepath.Join(dir, "nope"), board}, env)

	if code != ExitExporter {
		t.Errorf("runMain() = %d, want %d", code, ExitExporter)
	}
	for _, want := range []string{"not found, searching default locations", "exporter executable not found", "hint:"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr should contain %q, got %q", want, stderr.String())
		}
	}
	if exists(filepath.Join(dir, "board.exc")) {
		t.Error("board.exc should not exist")
	}
}
