package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerbose(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches subcommands and returns the process exit code.
// args includes the program name.
func runMain(ctx context.Context, args []string, env *Environment) int {
	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}

	var err error
	switch {
	case len(rest) == 0:
		err = runView(ctx, nil, env)
	case rest[0] == "version" || rest[0] == "--version":
		fmt.Fprintf(env.Stdout, "mdnarrate %s\n", Version)
		return ExitSuccess
	case rest[0] == "help" || rest[0] == "-h" || rest[0] == "--help":
		runHelp(rest[1:], env)
		return ExitSuccess
	case rest[0] == "voices":
		err = runVoices(ctx, rest[1:], env)
	case rest[0] == "doctor":
		return runDoctorCmd(ctx, rest[1:], env)
	case rest[0] == "completion":
		err = runCompletion(rest[1:], env)
	default:
		err = runView(ctx, rest, env)
	}

	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}

// hasVerbose reports whether -v or --verbose appears before any "--".
func hasVerbose(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
