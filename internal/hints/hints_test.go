package hints

// Notes:
// - ForExporterNotFound tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestForExporterNotFound_InDocker(t *testing.T) {
	// Save and restore IsInContainer (not parallel-safe, see package notes)
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("DRILL2EXC_EXPORTER", "")

	hint := ForExporterNotFound()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "install KiCad") {
		t.Error("expected install suggestion in Docker")
	}
	if !strings.Contains(hint, "DRILL2EXC_EXPORTER") {
		t.Error("expected DRILL2EXC_EXPORTER suggestion")
	}
}

func TestForExporterNotFound_EnvAlreadySet(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("DRILL2EXC_EXPORTER", "/opt/kicad/bin/kicad-cli")

	hint := ForExporterNotFound()

	if hint != "" {
		t.Errorf("expected empty hint when configured outside a container, got %q", hint)
	}
}

func TestForExporterFailed(t *testing.T) {
	tests := []struct {
		name      string
		stderr    string
		wantEmpty bool
		contains  string
	}{
		{
			name:     "load failure",
			stderr:   "Failed to load board\n",
			contains: "newer KiCad",
		},
		{
			name:     "unknown argument",
			stderr:   "Unknown argument: --excellon-min-header",
			contains: "minimalHeader",
		},
		{
			name:     "silent failure",
			stderr:   "",
			contains: "--log-level debug",
		},
		{
			name:      "unrelated message",
			stderr:    "segmentation fault",
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForExporterFailed(tt.stderr)

			if tt.wantEmpty {
				if hint != "" {
					t.Errorf("expected empty hint, got %q", hint)
				}
				return
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForSentinelMissing(t *testing.T) {
	hint := ForSentinelMissing("T1")

	if !strings.Contains(hint, "T1") {
		t.Error("expected sentinel in hint")
	}
	if !strings.Contains(hint, "--sentinel") {
		t.Error("expected --sentinel flag mention")
	}
}

func TestForTimeout(t *testing.T) {
	hint := ForTimeout()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "--timeout") {
		t.Error("expected --timeout flag mention")
	}
}

func TestForConfigNotFound(t *testing.T) {
	userPath := filepath.Join("home", "u", ".config", "go-drill2exc", "eagle.yaml")

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{
			name:     "empty paths",
			paths:    []string{},
			contains: "--config",
		},
		{
			name:     "with user config path",
			paths:    []string{"eagle.yaml", userPath},
			contains: "create " + userPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForConfigNotFound(tt.paths)

			if !strings.Contains(hint, "hint:") {
				t.Error("expected hint prefix")
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestFormat_Consistency(t *testing.T) {
	// All hints should start with newline, spaces, and "hint:"
	hints := []string{
		ForTimeout(),
		ForOutputDirectory(),
		ForLineTooLong(),
		ForSentinelMissing("T1"),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
