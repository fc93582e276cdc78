package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// errHelp is returned by the parsers when -h or --help is given.
var errHelp = flag.ErrHelp

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logLevel  string
	logFormat string
	noColor   bool
}

// exporterFlags holds kicad-cli related flags.
type exporterFlags struct {
	path    string
	timeout string
	workDir string
}

// convertFlags holds all flags for the default board conversion.
type convertFlags struct {
	common     commonFlags
	exporter   exporterFlags
	keepRaw    bool
	noValidate bool
	noPrompt   bool
	dryRun     bool
}

// rewriteFlags holds flags for the rewrite command.
type rewriteFlags struct {
	common   commonFlags
	output   string
	sentinel string
	maxLine  int
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common   commonFlags
	exporter exporterFlags
	json     bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show exporter command and counters")
	fs.StringVar(&f.logLevel, "log-level", "", "diagnostic log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "diagnostic log format: text, json")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// addExporterFlags adds kicad-cli flags to a FlagSet.
func addExporterFlags(fs *flag.FlagSet, f *exporterFlags) {
	fs.StringVar(&f.path, "exporter", "", "path to kicad-cli")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "exporter timeout (e.g., 30s, 2m; 0 = none)")
	fs.StringVar(&f.workDir, "work-dir", "", "directory kicad-cli runs in (default: temporary)")
}

// parseConvertFlags parses flags for the default command and returns positional args.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("drill2exc", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &convertFlags{}

	addCommonFlags(fs, &f.common)
	addExporterFlags(fs, &f.exporter)
	fs.BoolVar(&f.keepRaw, "keep-raw", false, "keep the exported .drl next to the board")
	fs.BoolVar(&f.noValidate, "no-validate", false, "skip the board header check")
	fs.BoolVar(&f.noPrompt, "no-prompt", false, "never prompt; fail when input is ambiguous")
	fs.BoolVar(&f.dryRun, "dry-run", false, "print what would run without running it")

	fs.Usage = func() { printConvertUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseRewriteFlags parses flags for the rewrite command.
func parseRewriteFlags(args []string, w io.Writer) (*rewriteFlags, []string, error) {
	fs := flag.NewFlagSet("rewrite", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &rewriteFlags{}

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: input with .exc)")
	fs.StringVar(&f.sentinel, "sentinel", "", "line ending the header (default: T1)")
	fs.IntVar(&f.maxLine, "max-line", 0, "maximum line length in bytes (default: 4096)")

	fs.Usage = func() { printRewriteUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses flags for the doctor command.
func parseDoctorFlags(args []string, w io.Writer) (*doctorFlags, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &doctorFlags{}

	addCommonFlags(fs, &f.common)
	addExporterFlags(fs, &f.exporter)
	fs.BoolVar(&f.json, "json", false, "output as JSON")

	fs.Usage = func() { printDoctorUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// parseConfigFlags parses flags for the config command.
func parseConfigFlags(args []string, w io.Writer) (*commonFlags, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &commonFlags{}

	addCommonFlags(fs, f)

	fs.Usage = func() { printConfigUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
