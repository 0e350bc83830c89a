package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], DefaultEnv()))
}

// run dispatches to a subcommand and returns the process exit code.
func run(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	switch args[0] {
	case "run":
		flags, err := parseRunFlags(args[1:])
		if err != nil {
			return ExitUsage
		}
		env.configureLogging(flags.common.quiet, flags.common.verbose)
		if err := runQuizCmd(context.Background(), flags, env); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess

	case "zip":
		flags, err := parseZipFlags(args[1:])
		if err != nil {
			return ExitUsage
		}
		env.configureLogging(flags.common.quiet, flags.common.verbose)
		if err := runZipCmd(flags, env); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess

	case "doctor":
		return runDoctorCmd(args[1:], env)

	case "version":
		fmt.Fprintf(env.Stdout, "quiz2pdf %s\n", Version)
		return ExitSuccess

	case "help", "--help", "-h":
		runHelp(args[1:], env)
		return ExitSuccess

	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
}
