package main

import (
	"io"
	"os"
	"time"

	"github.com/chzyer/readline"

	drill2exc "github.com/alnah/go-drill2exc"
	"github.com/alnah/go-drill2exc/internal/resolve"
)

// prompter is an interactive line reader that must be released after use.
type prompter interface {
	resolve.Prompter
	Close() error
}

// Environment holds injectable dependencies for testability.
// Includes I/O, time, process environment, and the exporter runner.
type Environment struct {
	Now       func() time.Time
	Stdout    io.Writer
	Stderr    io.Writer
	LookupEnv func(key string) (string, bool)
	Environ   func() []string

	// Dir is scanned for boards when none is given ("" = current directory).
	Dir string

	// Runner spawns kicad-cli. nil means real processes.
	Runner drill2exc.CommandRunner

	// NewPrompter opens an interactive prompt writing to w.
	// nil means the session is not interactive.
	NewPrompter func(w io.Writer) (prompter, error)
}

// DefaultEnv returns the production environment. Prompts are only offered
// when stdin is a terminal.
func DefaultEnv() *Environment {
	env := &Environment{
		Now:       time.Now,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		LookupEnv: os.LookupEnv,
		Environ:   os.Environ,
	}
	if readline.DefaultIsTerminal() {
		env.NewPrompter = newReadlinePrompter
	}
	return env
}

// newReadlinePrompter opens a readline instance without history.
func newReadlinePrompter(w io.Writer) (prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdout:                 w,
		Stderr:                 w,
		HistoryLimit:           -1,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return nil, err
	}
	return rl, nil
}

// now returns the current time from the injected clock.
func (e *Environment) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// getenv returns the value of key, or "" when unset.
func (e *Environment) getenv(key string) string {
	if e.LookupEnv == nil {
		return ""
	}
	v, _ := e.LookupEnv(key)
	return v
}
