// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-drill2exc/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForExporterNotFound returns hints for a missing kicad-cli.
// Suggests DRILL2EXC_EXPORTER when unset and a KiCad install inside containers.
func ForExporterNotFound() string {
	var hints []string

	if IsInContainer() {
		hints = append(hints, "install KiCad 7 or newer in the image (kicad-cli ships with it)")
	}
	if os.Getenv("DRILL2EXC_EXPORTER") == "" {
		hints = append(hints, "set DRILL2EXC_EXPORTER or use --exporter /path/to/kicad-cli")
	}

	return formatHints(hints)
}

// ForExporterFailed returns hints derived from kicad-cli's stderr.
func ForExporterFailed(stderr string) string {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "failed to load board"), strings.Contains(lower, "unable to load"):
		return format("the board may come from a newer KiCad than the exporter; check `kicad-cli version`")
	case strings.Contains(lower, "unknown"), strings.Contains(lower, "unrecognized"):
		return format("this kicad-cli may not support every export flag; set export.minimalHeader: false or upgrade KiCad")
	case stderr == "":
		return format("rerun with --log-level debug to see the exporter command line")
	default:
		return ""
	}
}

// ForSentinelMissing returns a hint when the header terminator never appeared.
func ForSentinelMissing(sentinel string) string {
	return format("no line equal to " + sentinel + " found; the file may not be a kicad-cli Excellon export, or use --sentinel")
}

// ForLineTooLong returns a hint for oversized drill file lines.
func ForLineTooLong() string {
	return format("raise convert.maxLineLength or use --max-line")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large boards, use --timeout flag (0 disables it)")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config dir.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	marker := string(filepath.Separator) + "go-drill2exc" + string(filepath.Separator)
	for _, p := range searchedPaths {
		if strings.Contains(p, marker) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for errors writing next to the board.
func ForOutputDirectory() string {
	return format("check the board's directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
