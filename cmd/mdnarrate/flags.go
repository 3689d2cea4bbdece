package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdnarrate/internal/config"
)

// ErrUsage wraps flag parsing and argument errors.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	envFile string
	quiet   bool
	verbose bool
}

// speechFlags holds narration flags.
type speechFlags struct {
	engine    string
	lang      string
	voice     string
	rate      int
	volume    int
	espeakBin string
}

// displayFlags holds surface flags.
type displayFlags struct {
	surface    string
	addr       string
	browserBin string
	width      int
	height     int
	headless   bool
	zoom       float64
}

// assetFlags holds asset-related flags (CSS, custom asset path).
type assetFlags struct {
	style     string // Name, path, or CSS content
	assetPath string // Override asset directory
}

// viewFlags holds all flags for the viewer.
type viewFlags struct {
	common  commonFlags
	speech  speechFlags
	display displayFlags
	assets  assetFlags
	speak   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.envFile, "env-file", "", "load MDNARRATE_* variables from this file (default: .env if present)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addSpeechFlags adds narration flags to a FlagSet.
func addSpeechFlags(fs *flag.FlagSet, f *speechFlags) {
	fs.StringVarP(&f.engine, "engine", "e", "", "speech engine: espeak, google, yandex, silent")
	fs.StringVarP(&f.lang, "lang", "l", "", "voice language code (es, en, ...)")
	fs.StringVar(&f.voice, "voice", "", "exact voice name")
	fs.IntVarP(&f.rate, "rate", "r", 0, "speech rate (-10 to 10)")
	fs.IntVar(&f.volume, "volume", 100, "speech volume (0 to 100)")
	fs.StringVar(&f.espeakBin, "espeak-bin", "", "espeak binary")
}

// addDisplayFlags adds surface flags to a FlagSet.
func addDisplayFlags(fs *flag.FlagSet, f *displayFlags) {
	fs.StringVarP(&f.surface, "surface", "s", "", "display surface: browser, web, none")
	fs.StringVar(&f.addr, "addr", "", "listen address of the web remote")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary")
	fs.IntVar(&f.width, "width", 0, "window width in pixels")
	fs.IntVar(&f.height, "height", 0, "window height in pixels")
	fs.BoolVar(&f.headless, "headless", false, "run the browser without a window")
	fs.Float64VarP(&f.zoom, "zoom", "z", 0, "initial zoom (0.5 to 3.0)")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// buildViewFlagSet registers every viewer flag on a new FlagSet.
// Shared by parsing and shell completion.
func buildViewFlagSet(f *viewFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("mdnarrate", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addSpeechFlags(fs, &f.speech)
	addDisplayFlags(fs, &f.display)
	addAssetFlags(fs, &f.assets)
	fs.BoolVar(&f.speak, "speak", false, "start narrating once the document is loaded")
	return fs
}

// parseViewFlags parses viewer flags and returns positional args.
func parseViewFlags(args []string, stderr io.Writer) (*viewFlags, *flag.FlagSet, []string, error) {
	f := &viewFlags{}
	fs := buildViewFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printViewUsage(stderr) }
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, nil, err
	}
	if fs.NArg() > 1 {
		return nil, nil, nil, fmt.Errorf("%w: expected at most one file, got %d", ErrUsage, fs.NArg())
	}
	return f, fs, fs.Args(), nil
}

// parseFlagSet parses args, wrapping errors with ErrUsage except --help.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// mergeFlags applies explicitly set flags onto cfg (flags win).
// Flags not registered on fs are never Changed.
func mergeFlags(fs *flag.FlagSet, f *viewFlags, cfg *config.Config) {
	// Speech
	if fs.Changed("engine") {
		cfg.Speech.Engine = f.speech.engine
	}
	if fs.Changed("lang") {
		cfg.Speech.Language = f.speech.lang
	}
	if fs.Changed("voice") {
		cfg.Speech.Voice = f.speech.voice
	}
	if fs.Changed("rate") {
		cfg.Speech.Rate = f.speech.rate
	}
	if fs.Changed("volume") {
		v := f.speech.volume
		cfg.Speech.Volume = &v
	}
	if fs.Changed("espeak-bin") {
		cfg.Speech.Espeak.Binary = f.speech.espeakBin
	}

	// Display
	if fs.Changed("surface") {
		cfg.Display.Surface = f.display.surface
	}
	if fs.Changed("addr") {
		cfg.Display.Addr = f.display.addr
	}
	if fs.Changed("browser-bin") {
		cfg.Display.BrowserBin = f.display.browserBin
	}
	if fs.Changed("width") {
		cfg.Display.Width = f.display.width
	}
	if fs.Changed("height") {
		cfg.Display.Height = f.display.height
	}
	if fs.Changed("zoom") {
		cfg.Display.Zoom = f.display.zoom
	}

	// Assets
	if fs.Changed("style") {
		cfg.Display.Style = f.assets.style
	}
	if fs.Changed("asset-path") {
		cfg.Assets.BasePath = f.assets.assetPath
	}
}
