package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configureMaxProcs(os.Args, os.Stderr)
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// configureMaxProcs matches GOMAXPROCS to the container CPU quota, logging
// the adjustment only with --verbose.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func configureMaxProcs(args []string, w io.Writer) {
	if slices.Contains(args, "-v") || slices.Contains(args, "--verbose") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}

// runMain dispatches to a command and returns the process exit code.
// Without a known command name the arguments go to the conversion.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	if len(args) < 2 {
		return finish(env, runConvert(ctx, nil, env))
	}

	switch args[1] {
	case "convert":
		return finish(env, runConvert(ctx, args[2:], env))
	case "rewrite":
		return finish(env, runRewrite(ctx, args[2:], env))
	case "doctor":
		return runDoctorCmd(ctx, args[2:], env)
	case "config":
		return finish(env, runConfigCmd(args[2:], env))
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "drill2exc %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(args[2:], env)
	case "-h", "--help":
		printUsage(env.Stdout)
		return ExitSuccess
	default:
		return finish(env, runConvert(ctx, args[1:], env))
	}
}

// finish reports err and maps it to an exit code.
func finish(env *Environment, err error) int {
	if err == nil || errors.Is(err, errHelp) {
		return ExitSuccess
	}
	printError(env.Stderr, err)
	return exitCodeFor(err)
}
