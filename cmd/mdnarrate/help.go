package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnarrate [flags] [file.md]")
	fmt.Fprintln(w, "       mdnarrate <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show a Markdown file and read it aloud, scrolling along with the voice.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  voices       List the voices of a speech engine")
	fmt.Fprintln(w, "  doctor       Check browser, audio, and speech engines")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdnarrate help view' for viewer flags and console commands.")
}

// printViewUsage prints usage for the viewer.
func printViewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnarrate [flags] [file.md]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open the viewer on file.md (or the welcome page) and read commands")
	fmt.Fprintln(w, "from the console.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Speech:")
	fmt.Fprintln(w, "  -e, --engine <s>          Engine: espeak, google, yandex, silent")
	fmt.Fprintln(w, "  -l, --lang <code>         Voice language (es, en, ...)")
	fmt.Fprintln(w, "      --voice <name>        Exact voice name")
	fmt.Fprintln(w, "  -r, --rate <n>            Rate (-10 to 10)")
	fmt.Fprintln(w, "      --volume <n>          Volume (0 to 100)")
	fmt.Fprintln(w, "      --espeak-bin <path>   espeak binary")
	fmt.Fprintln(w, "      --speak               Start narrating once loaded")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Display:")
	fmt.Fprintln(w, "  -s, --surface <s>         Surface: browser, web, none")
	fmt.Fprintln(w, "      --addr <host:port>    Web remote address (default 127.0.0.1:8765)")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome/Chromium binary")
	fmt.Fprintln(w, "      --width <n>           Window width")
	fmt.Fprintln(w, "      --height <n>          Window height")
	fmt.Fprintln(w, "      --headless            Run the browser without a window")
	fmt.Fprintln(w, "  -z, --zoom <f>            Initial zoom (0.5 to 3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <s>           Style name (dark, light) or CSS file")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles/ and templates/")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --env-file <path>     MDNARRATE_* variables (default: .env)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w)
	printConsoleHelp(w)
}

// printConsoleHelp lists the console commands.
func printConsoleHelp(w io.Writer) {
	fmt.Fprintln(w, "Console commands:")
	fmt.Fprintln(w, "  start | pause | resume | stop      Control narration")
	fmt.Fprintln(w, "  open <path>                        Load a Markdown file")
	fmt.Fprintln(w, "  drop <paths...>                    Load the first path if it is .md (quote paths with spaces)")
	fmt.Fprintln(w, "  reload                             Load the current file again")
	fmt.Fprintln(w, "  rate <n> | volume <n>              Voice rate and volume")
	fmt.Fprintln(w, "  lang <code> | voice <name>         Voice selection")
	fmt.Fprintln(w, "  voices                             List voices for the language")
	fmt.Fprintln(w, "  zoom in | out | reset              Page zoom")
	fmt.Fprintln(w, "  status | help | quit")
}

// printVoicesUsage prints usage for the voices command.
func printVoicesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnarrate voices [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List the voices of a speech engine. The current voice is marked with *.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -e, --engine <s>          Engine: espeak, google, yandex, silent")
	fmt.Fprintln(w, "  -l, --lang <code>         Only voices whose culture starts with code")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "view":
		printViewUsage(env.Stdout)
	case "voices":
		printVoicesUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: mdnarrate doctor [--json] [--config <name>]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check the browser, audio output, and speech engines.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdnarrate version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdnarrate help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
