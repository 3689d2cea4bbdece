package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	mdnarrate "github.com/alnah/go-mdnarrate"
)

// runVoices lists the voices of the configured engine, optionally filtered
// by language prefix.
func runVoices(ctx context.Context, args []string, env *Environment) error {
	f := &viewFlags{}
	fs := flag.NewFlagSet("voices", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printVoicesUsage(env.Stderr) }
	addCommonFlags(fs, &f.common)
	addSpeechFlags(fs, &f.speech)
	if err := parseFlagSet(fs, args); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, f.common.quiet, f.common.verbose)
	cfg, err := resolveConfig(fs, f, logger)
	if err != nil {
		return err
	}

	engine, err := newEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	narrator := mdnarrate.NewNarrator(engine)
	defer narrator.Close()

	// Only an explicit --lang filters; the configured default does not.
	lang := ""
	if fs.Changed("lang") {
		lang = f.speech.lang
	}
	voices := narrator.VoicesByLanguage(lang)
	if len(voices) == 0 {
		fmt.Fprintf(env.Stderr, "no %s voices for language %q\n", engine.Name(), lang)
		return nil
	}

	current := narrator.CurrentVoice().Name
	tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNAME\tCULTURE\tGENDER")
	for _, v := range voices {
		marker := ""
		if v.Name == current {
			marker = "*"
		}
		gender := v.Gender
		if gender == "" {
			gender = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, v.Name, v.Culture, gender)
	}
	return tw.Flush()
}
