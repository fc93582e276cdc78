package main

import (
	"io"

	"github.com/pterm/pterm"
)

// ui prints user-facing status lines. Diagnostics go through slog instead.
type ui struct {
	out     io.Writer
	err     io.Writer
	quiet   bool
	verbose bool
}

func newUI(env *Environment, f commonFlags) *ui {
	return &ui{out: env.Stdout, err: env.Stderr, quiet: f.quiet, verbose: f.verbose}
}

// success reports a completed step. Suppressed by --quiet.
func (u *ui) success(format string, args ...any) {
	if u.quiet {
		return
	}
	pterm.Success.WithWriter(u.out).Printfln(format, args...)
}

// info reports progress. Suppressed by --quiet.
func (u *ui) info(format string, args ...any) {
	if u.quiet {
		return
	}
	pterm.Info.WithWriter(u.out).Printfln(format, args...)
}

// detail reports extra information shown only with --verbose.
func (u *ui) detail(format string, args ...any) {
	if !u.verbose || u.quiet {
		return
	}
	pterm.Info.WithWriter(u.out).Printfln(format, args...)
}

// warn reports a recoverable problem. Always shown.
func (u *ui) warn(format string, args ...any) {
	pterm.Warning.WithWriter(u.err).Printfln(format, args...)
}

// configureColor disables styling when asked to or when NO_COLOR is set.
func configureColor(noColor bool, env *Environment) {
	set := false
	if env.LookupEnv != nil {
		_, set = env.LookupEnv("NO_COLOR")
	}
	if noColor || set {
		pterm.DisableStyling()
	}
}

// printError reports a fatal error. Hints are already part of its message.
func printError(w io.Writer, err error) {
	pterm.Error.WithWriter(w).Println(err.Error())
}
