package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	mdnarrate "github.com/alnah/go-mdnarrate"
	"github.com/alnah/go-mdnarrate/internal/config"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --engine
	Short    string   // -e (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed positional values (e.g. shells)
	TakesFiles  bool     // accepts file arguments
	FilePattern string   // glob for file arguments (e.g., "*.md")
}

// completionMeta holds completion-specific metadata for flags.
// This is the ONLY place where completion hints are defined.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"engine":  {Values: mdnarrate.EngineNames},
	"surface": {Values: config.Surfaces},
	"lang":    {Values: mdnarrate.DefaultLanguages},

	// File flags with glob patterns
	"config":   {FileGlob: "*.yaml,*.yml"},
	"env-file": {FileGlob: "*.env,.env"},
	"style":    {FileGlob: "*.css"},

	// Directory flags
	"asset-path": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		// Determine base type from pflag type
		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		// Override type based on completion metadata
		if meta, ok := flagCompletionMeta[f.Name]; ok {
			if len(meta.Values) > 0 {
				fd.Type = flagEnum
				fd.Values = meta.Values
			} else if meta.FileGlob != "" {
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			} else if meta.IsDir {
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// viewCommand describes the root viewer invocation (no command word).
func viewCommand() commandDef {
	return commandDef{
		Name:        "",
		Desc:        "Open the viewer",
		Flags:       extractFlagsFromFlagSet(buildViewFlagSet(&viewFlags{})),
		TakesFiles:  true,
		FilePattern: "*.md",
	}
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSet - single source of truth.
func getCommands() []commandDef {
	voicesFS := flag.NewFlagSet("voices", flag.ContinueOnError)
	vf := &viewFlags{}
	addCommonFlags(voicesFS, &vf.common)
	addSpeechFlags(voicesFS, &vf.speech)

	return []commandDef{
		{Name: "voices", Desc: "List the voices of a speech engine", Flags: extractFlagsFromFlagSet(voicesFS)},
		{Name: "doctor", Desc: "Check browser, audio, and speech engines", Flags: []flagDef{
			{Long: "json", Type: flagBool, Desc: "print results as JSON"},
			{Long: "config", Short: "c", Type: flagFile, FileGlob: "*.yaml,*.yml", Desc: "config file name or path"},
		}},
		{Name: "completion", Desc: "Generate shell completion script",
			Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: []string{"view", "voices", "doctor", "completion", "version"}},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer) error {
	var b strings.Builder
	view := viewCommand()
	cmds := getCommands()

	b.WriteString("# bash completion for mdnarrate\n")
	b.WriteString("_mdnarrate_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")

	// Flag values
	b.WriteString("    case \"$prev\" in\n")
	for _, f := range view.Flags {
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n",
				bashFlagPattern(f), strings.Join(f.Values, " "))
		case flagFile:
			fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n", bashFlagPattern(f))
		case flagDir:
			fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", bashFlagPattern(f))
		}
	}
	b.WriteString("    esac\n\n")

	// Subcommands
	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		words := append(longFlags(c.Flags), c.Args...)
		fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", c.Name, strings.Join(words, " "))
	}
	b.WriteString("    esac\n\n")

	// Viewer: flags, commands, or Markdown files
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	b.WriteString("    if [[ \"$cur\" == -* ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(longFlags(view.Flags), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n")
	b.WriteString("    if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(names, " "))
	b.WriteString("    fi\n")
	if view.TakesFiles {
		fmt.Fprintf(&b, "    COMPREPLY+=($(compgen -f -X '!%s' -- \"$cur\") $(compgen -d -- \"$cur\"))\n", view.FilePattern)
	}
	b.WriteString("}\n")
	b.WriteString("complete -F _mdnarrate_completions mdnarrate\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func bashFlagPattern(f flagDef) string {
	if f.Short != "" {
		return "--" + f.Long + "|-" + f.Short
	}
	return "--" + f.Long
}

func longFlags(flags []flagDef) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, "--"+f.Long)
	}
	return out
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(w io.Writer) error {
	var b strings.Builder
	view := viewCommand()
	cmds := getCommands()

	b.WriteString("#compdef mdnarrate\n\n")
	b.WriteString("_mdnarrate() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")

	b.WriteString("    if (( CURRENT == 2 )) && [[ \"${words[2]}\" != -* ]]; then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n            _arguments \\\n", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "                %s \\\n", zshFlagSpec(f))
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "                '1:arg:(%s)'\n", strings.Join(c.Args, " "))
		} else {
			b.WriteString("                '*::'\n")
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("        *)\n            _arguments \\\n")
	for _, f := range view.Flags {
		fmt.Fprintf(&b, "                %s \\\n", zshFlagSpec(f))
	}
	fmt.Fprintf(&b, "                '*:markdown file:_files -g \"%s\"'\n", view.FilePattern)
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _mdnarrate mdnarrate\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func zshFlagSpec(f flagDef) string {
	// Brace expansion must stay outside the quotes.
	names := "--" + f.Long
	if f.Short != "" {
		names = "'(-" + f.Short + " --" + f.Long + ")'{-" + f.Short + ",--" + f.Long + "}"
	}
	desc := "[" + zshEscape(f.Desc) + "]"
	switch f.Type {
	case flagBool:
		return names + "'" + desc + "'"
	case flagEnum:
		return names + "'" + desc + ":value:(" + strings.Join(f.Values, " ") + ")'"
	case flagFile:
		return names + "'" + desc + ":file:_files'"
	case flagDir:
		return names + "'" + desc + ":directory:_files -/'"
	default:
		return names + "'" + desc + ":value:'"
	}
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", "", "[", "(", "]", ")", ":", "\\:")
	return r.Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(w io.Writer) error {
	var b strings.Builder
	view := viewCommand()
	cmds := getCommands()

	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}

	b.WriteString("# fish completion for mdnarrate\n")
	b.WriteString("function __fish_mdnarrate_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_mdnarrate_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mdnarrate -n __fish_mdnarrate_needs_command -a %s -d %q\n", c.Name, c.Desc)
	}
	b.WriteString("\n")

	viewCond := "not __fish_seen_subcommand_from " + strings.Join(names, " ")
	for _, f := range view.Flags {
		fmt.Fprintf(&b, "complete -c mdnarrate -n '%s' %s\n", viewCond, fishFlag(f))
	}
	fmt.Fprintf(&b, "complete -c mdnarrate -n '%s' -k -a '(__fish_complete_suffix %s)'\n\n",
		viewCond, strings.TrimPrefix(view.FilePattern, "*"))

	for _, c := range cmds {
		cond := "__fish_mdnarrate_using_command " + c.Name
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c mdnarrate -n '%s' %s\n", cond, fishFlag(f))
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c mdnarrate -n '%s' -f -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func fishFlag(f flagDef) string {
	parts := []string{"-l " + f.Long}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	switch f.Type {
	case flagBool:
	case flagEnum:
		parts = append(parts, "-x -a '"+strings.Join(f.Values, " ")+"'")
	case flagFile, flagDir:
		parts = append(parts, "-r -F")
	default:
		parts = append(parts, "-x")
	}
	parts = append(parts, fmt.Sprintf("-d %q", f.Desc))
	return strings.Join(parts, " ")
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(w io.Writer) error {
	var b strings.Builder
	view := viewCommand()
	cmds := getCommands()

	b.WriteString("# PowerShell completion for mdnarrate\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName mdnarrate -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $words = $commandAst.CommandElements | ForEach-Object { $_.ToString() }\n")
	b.WriteString("    $sub = if ($words.Count -gt 1) { $words[1] } else { '' }\n\n")
	b.WriteString("    $completions = switch ($sub) {\n")
	for _, c := range cmds {
		items := append(longFlags(c.Flags), c.Args...)
		fmt.Fprintf(&b, "        '%s' { @(%s) }\n", c.Name, psList(items))
	}
	items := longFlags(view.Flags)
	for _, c := range cmds {
		items = append(items, c.Name)
	}
	fmt.Fprintf(&b, "        default { @(%s) }\n", psList(items))
	b.WriteString("    }\n\n")
	b.WriteString("    $completions | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func psList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, ", ")
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdnarrate completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mdnarrate completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(mdnarrate completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mdnarrate completion fish > ~/.config/fish/completions/mdnarrate.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    mdnarrate completion powershell | Out-String | Invoke-Expression")
}
