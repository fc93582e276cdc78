package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	drill2exc "github.com/alnah/go-drill2exc"
	"github.com/alnah/go-drill2exc/internal/config"
	"github.com/alnah/go-drill2exc/internal/hints"
	"github.com/alnah/go-drill2exc/internal/resolve"
)

// versionTimeout bounds `kicad-cli version`.
const versionTimeout = 10 * time.Second

// minExporterMajor is the first KiCad release shipping `pcb export drill`.
const minExporterMajor = 7

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Exporter exporterInfo `json:"exporter"`
	Config   configInfo   `json:"config"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// exporterInfo holds kicad-cli detection results.
type exporterInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// configInfo describes the configuration in effect.
type configInfo struct {
	Source   string `json:"source"` // file name, or "defaults"
	Timeout  string `json:"timeout"`
	Sentinel string `json:"sentinel"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	Interactive   bool   `json:"interactive"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, errHelp) {
			return ExitSuccess
		}
		printError(env.Stderr, usageError(err))
		return ExitUsage
	}

	result := runDoctor(ctx, flags, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, flags *doctorFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			Interactive: env.NewPrompter != nil,
		},
	}

	cfg := checkConfig(result, flags, env)
	checkExporter(ctx, result, cfg, env)
	checkEnvironment(result, env)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConfig loads the configuration the converter would use.
// A broken config is an error; the remaining checks run on defaults.
func checkConfig(result *doctorResult, flags *doctorFlags, env *Environment) *config.Config {
	result.Config.Source = "defaults"
	if name := flags.common.config; name != "" {
		result.Config.Source = name
	} else if name := env.getenv("DRILL2EXC_CONFIG"); name != "" {
		result.Config.Source = name
	}

	cfg, _, err := loadSettings(env, flags.common)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		cfg = config.DefaultConfig()
	}
	if flags.exporter.path != "" {
		cfg.Exporter.Path = flags.exporter.path
	}
	if flags.exporter.timeout != "" {
		cfg.Exporter.Timeout = flags.exporter.timeout
	}

	result.Config.Timeout = cfg.Exporter.Timeout
	result.Config.Sentinel = cfg.Convert.Sentinel
	return cfg
}

// checkExporter locates kicad-cli and asks for its version.
func checkExporter(ctx context.Context, result *doctorResult, cfg *config.Config, env *Environment) {
	r := &resolve.Resolver{}
	path, err := r.Exporter(append([]string{cfg.Exporter.Path}, cfg.Exporter.SearchPaths...)...)
	if err != nil {
		result.Errors = append(result.Errors, err.Error()+hints.ForExporterNotFound())
		return
	}
	result.Exporter.Found = true
	result.Exporter.Path = path

	exp := drill2exc.NewExporter(path, drill2exc.DefaultExportOptions(), 0)
	if env.Runner != nil {
		exp.Runner = env.Runner
	}
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	version, err := exp.Version(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get kicad-cli version: %v", err))
		return
	}
	result.Exporter.Version = version

	if major, ok := majorVersion(version); ok && major < minExporterMajor {
		result.Errors = append(result.Errors,
			fmt.Sprintf("kicad-cli %s cannot export drill files; KiCad %d or newer is required", version, minExporterMajor))
	}
}

// majorVersion extracts the leading number of a version like "8.0.4".
func majorVersion(v string) (int, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(v), ".")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return n, true
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env)

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if env.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Env.CI && result.Env.Interactive && env.getenv("DRILL2EXC_NO_PROMPT") == "" {
		result.Warnings = append(result.Warnings,
			"CI detected with a terminal attached; set DRILL2EXC_NO_PROMPT=1 to never wait for input")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(env *Environment) (bool, string) {
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := env.getenv("container"); v != "" {
		return true, "container=" + v
	}
	if env.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the exporter's temporary working directory can be created.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	dir, err := os.MkdirTemp(tmpDir, "drill2exc-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	probe := filepath.Join(dir, "probe."+drill2exc.RawExtension)
	if err := os.WriteFile(probe, []byte("M48\n"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		result.System.TempWritable = true
	}
	_ = os.RemoveAll(dir)
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "drill2exc doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "kicad-cli")
	if r.Exporter.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Exporter.Path)
		if r.Exporter.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Exporter.Version)
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
	fmt.Fprintf(w, "  [OK] Timeout: %s\n", r.Config.Timeout)
	fmt.Fprintf(w, "  [OK] Sentinel: %s\n", r.Config.Sentinel)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.Env.Interactive {
		fmt.Fprintln(w, "  [OK] Prompts: enabled")
	} else {
		fmt.Fprintln(w, "  [OK] Prompts: disabled (no terminal)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
