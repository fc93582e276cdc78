package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: drill2exc [flags] [board.kicad_pcb]")
	fmt.Fprintln(w, "       drill2exc <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export a KiCad board's drill file and rewrite it for EAGLE CAM (.exc).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  rewrite    Rewrite an existing .drl file without running kicad-cli")
	fmt.Fprintln(w, "  doctor     Check kicad-cli and system setup")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'drill2exc help <command>' for details on a specific command.")
	fmt.Fprintln(w, "Run 'drill2exc help convert' for the default command's flags.")
}

// printConvertUsage prints usage for the default conversion.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: drill2exc [flags] [board.kicad_pcb]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export the drill file with kicad-cli and write <board>.exc next to the board.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  board    .kicad_pcb file (default: the one in the current directory;")
	fmt.Fprintln(w, "           prompts when there are several or none)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exporter:")
	fmt.Fprintln(w, "      --exporter <path>     Path to kicad-cli")
	fmt.Fprintln(w, "  -t, --timeout <d>         Exporter timeout (e.g., 30s, 2m; 0 = none)")
	fmt.Fprintln(w, "      --work-dir <dir>      Directory kicad-cli runs in (default: temporary)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "      --keep-raw            Keep the exported .drl next to the board")
	fmt.Fprintln(w, "      --no-validate         Skip the board header check")
	fmt.Fprintln(w, "      --no-prompt           Never prompt; fail when input is ambiguous")
	fmt.Fprintln(w, "      --dry-run             Print what would run without running it")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printRewriteUsage prints usage for the rewrite command.
func printRewriteUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: drill2exc rewrite [flags] <file.drl>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Drop the header up to the sentinel line and rewrite X- to X on each line.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rewrite:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: input with .exc)")
	fmt.Fprintln(w, "      --sentinel <s>        Line ending the header (default: T1)")
	fmt.Fprintln(w, "      --max-line <n>        Maximum line length in bytes (default: 4096)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: drill2exc doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that kicad-cli can be found and run.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output as JSON")
	fmt.Fprintln(w, "      --exporter <path>     Path to kicad-cli")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: drill2exc config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after applying the config file and DRILL2EXC_* variables.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

// printCommonUsage prints the flags shared by conversion commands.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show exporter command and counters")
	fmt.Fprintln(w, "      --log-level <s>       Diagnostics: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      Diagnostics format: text, json")
	fmt.Fprintln(w, "      --no-color            Disable colored output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DRILL2EXC_CONFIG, DRILL2EXC_EXPORTER, DRILL2EXC_TIMEOUT, DRILL2EXC_WORK_DIR,")
	fmt.Fprintln(w, "  DRILL2EXC_KEEP_RAW, DRILL2EXC_NO_PROMPT, DRILL2EXC_LOG_LEVEL, DRILL2EXC_LOG_FORMAT")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "rewrite":
		printRewriteUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: drill2exc version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: drill2exc help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
