// Package resolve finds the board to convert and the kicad-cli to run,
// asking the user through a Prompter when neither can be determined.
package resolve

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	drill2exc "github.com/alnah/go-drill2exc"
	"github.com/alnah/go-drill2exc/internal/fileutil"
)

// Sentinel errors for resolution.
var (
	ErrNoInput        = errors.New("no board file found")
	ErrAmbiguousInput = errors.New("several board files found")
	ErrPromptAborted  = errors.New("prompt aborted")
)

// Prompts shown while resolving.
const (
	PromptSelection = "Board number: "
	PromptBoard     = "Path to .kicad_pcb file: "
	PromptExporter  = "Path to kicad-cli: "
)

// Prompter reads one line of user input. *readline.Instance satisfies it.
type Prompter interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Resolver resolves inputs. A nil Prompter makes it non-interactive:
// every case that would prompt returns an error instead.
type Resolver struct {
	Dir       string   // directory scanned for boards (default ".")
	Extension string   // board extension without dot (default "kicad_pcb")
	Prompter  Prompter // nil = non-interactive
	Out       io.Writer
}

// Board returns the board path to convert.
//
// An explicit argument is used when it names an existing file. Otherwise
// a bad argument leads straight to a path prompt, and an empty one scans
// Dir: one candidate is taken, several are listed for a numbered choice,
// none leads to the path prompt.
func (r *Resolver) Board(arg string) (string, error) {
	if arg != "" {
		path := fileutil.TrimQuotes(arg)
		if fileutil.FileExists(path) {
			return path, nil
		}
		if r.Prompter == nil {
			return "", fmt.Errorf("%w: %s", ErrNoInput, path)
		}
		r.printf("%s not found\n", path)
		return r.promptPath(PromptBoard)
	}

	candidates, err := Candidates(r.dir(), r.extension())
	if err != nil {
		return "", err
	}

	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		if r.Prompter == nil {
			return "", fmt.Errorf("%w in %s", ErrNoInput, r.dir())
		}
		return r.promptPath(PromptBoard)
	default:
		if r.Prompter == nil {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousInput, strings.Join(candidates, ", "))
		}
		if err := r.list(candidates); err != nil {
			return "", err
		}
		return r.promptSelection(candidates)
	}
}

// Exporter locates kicad-cli among candidates, then well-known locations
// and PATH. When nothing is found it prompts for a path.
func (r *Resolver) Exporter(candidates ...string) (string, error) {
	path, err := drill2exc.LocateExporter(slices.Concat(candidates, drill2exc.WellKnownExporterPaths())...)
	if err == nil {
		return path, nil
	}
	if !errors.Is(err, drill2exc.ErrExporterNotFound) || r.Prompter == nil {
		return "", err
	}
	r.printf("kicad-cli not found\n")
	return r.promptPath(PromptExporter)
}

// Candidates lists regular files in dir ending in "."+ext, sorted by name.
// A file named only ".<ext>" has no base name and is skipped.
func Candidates(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	suffix := "." + ext
	var found []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasSuffix(name, suffix) || len(name) == len(suffix) {
			continue
		}
		found = append(found, filepath.Join(dir, name))
	}
	return found, nil
}

// ParseSelection converts input into a zero-based index into n candidates.
// Only plain decimal digits in [1, n] are accepted.
func ParseSelection(input string, n int) (int, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, false
	}
	for _, c := range input {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(input)
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}

// promptSelection repeats until a valid number is entered.
func (r *Resolver) promptSelection(candidates []string) (string, error) {
	r.Prompter.SetPrompt(PromptSelection)
	for {
		line, err := r.Prompter.Readline()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPromptAborted, err)
		}
		if i, ok := ParseSelection(line, len(candidates)); ok {
			return candidates[i], nil
		}
		r.printf("enter a number between 1 and %d\n", len(candidates))
	}
}

// promptPath repeats until an existing file is entered.
func (r *Resolver) promptPath(prompt string) (string, error) {
	r.Prompter.SetPrompt(prompt)
	for {
		line, err := r.Prompter.Readline()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPromptAborted, err)
		}
		path := fileutil.TrimQuotes(line)
		if path != "" && fileutil.FileExists(path) {
			return path, nil
		}
		if path != "" {
			r.printf("%s not found\n", path)
		}
	}
}

// list renders the numbered candidate table.
func (r *Resolver) list(candidates []string) error {
	data := pterm.TableData{{"#", "Board"}}
	for i, c := range candidates {
		data = append(data, []string{strconv.Itoa(i + 1), filepath.Base(c)})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(r.out()).Render(); err != nil {
		return fmt.Errorf("listing boards: %w", err)
	}
	return nil
}

func (r *Resolver) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out(), format, args...)
}

func (r *Resolver) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

func (r *Resolver) dir() string {
	if r.Dir == "" {
		return "."
	}
	return r.Dir
}

func (r *Resolver) extension() string {
	if r.Extension == "" {
		return drill2exc.BoardExtension
	}
	return r.Extension
}
