package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	mdnarrate "github.com/alnah/go-mdnarrate"
	"github.com/alnah/go-mdnarrate/internal/config"
)

// newLogger builds the CLI logger on w. Quiet keeps errors only; verbose
// adds debug output.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// runView opens the viewer, loads the document, and runs the console until
// quit, end of input, or a signal.
func runView(ctx context.Context, args []string, env *Environment) error {
	f, fs, positional, err := parseViewFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	logger := newLogger(env.Stderr, f.common.quiet, f.common.verbose)

	cfg, err := resolveConfig(fs, f, logger)
	if err != nil {
		return err
	}

	conv, err := newConverter(cfg)
	if err != nil {
		return err
	}

	engine, err := newEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	narrator := mdnarrate.NewNarrator(engine, mdnarrate.WithNarratorLogger(logger))
	defer narrator.Close()

	surface, web, closeSurface, err := openSurface(cfg, f.display.headless, conv, logger)
	if err != nil {
		return err
	}
	defer closeSurface()

	ctrl, err := mdnarrate.NewController(conv, narrator, surface,
		mdnarrate.WithControllerLogger(logger),
		mdnarrate.WithLanguages(cfg.Speech.Languages),
		mdnarrate.WithLanguage(cfg.Speech.Language),
		mdnarrate.WithZoom(cfg.Display.Zoom),
	)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if web != nil {
		web.Attach(ctrl)
		if err := web.Start(); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "remote: %s\n", web.URL())
	}

	if err := applyVoiceSettings(ctrl, cfg, logger); err != nil {
		return err
	}

	path := cfg.Input.DefaultFile
	if len(positional) > 0 {
		path = positional[0]
	}
	if path != "" {
		// A failed load shows the error page; the viewer keeps running.
		if _, err := ctrl.LoadFile(ctx, path); err != nil {
			logger.Error("load failed", "path", path, "error", err)
		}
	}
	if f.speak {
		if _, err := ctrl.Start(); err != nil {
			return err
		}
	}

	console := &console{
		ctrl:      ctrl,
		out:       env.Stdout,
		logger:    logger,
		keepAlive: web != nil,
	}
	return console.run(ctx, env.Stdin)
}

// newConverter builds the document converter from cfg.
func newConverter(cfg *config.Config) (*mdnarrate.DocumentConverter, error) {
	opts := []mdnarrate.DocumentOption{mdnarrate.WithStyle(cfg.Display.Style)}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, mdnarrate.WithAssetPath(cfg.Assets.BasePath))
	}
	return mdnarrate.NewDocumentConverter(opts...)
}

// newEngine creates the configured speech engine.
func newEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (mdnarrate.SpeechEngine, error) {
	name := cfg.Speech.Engine
	engine, err := mdnarrate.NewEngine(ctx, engineConfig(cfg, logger))
	if err != nil {
		return nil, &engineError{name: name, err: err}
	}
	logger.Debug("speech engine ready", "engine", engine.Name(), "voices", len(engine.Voices()))
	return engine, nil
}

func engineConfig(cfg *config.Config, logger *slog.Logger) mdnarrate.EngineConfig {
	return mdnarrate.EngineConfig{
		Name:           cfg.Speech.Engine,
		EspeakBinary:   cfg.Speech.Espeak.Binary,
		YandexAPIKey:   cfg.Speech.Yandex.APIKey,
		YandexFolderID: cfg.Speech.Yandex.FolderID,
		YandexEndpoint: cfg.Speech.Yandex.Endpoint,
		Logger:         logger,
	}
}

// openSurface creates the configured surface. The returned close function
// is always safe to call. web is set for the web surface only.
func openSurface(cfg *config.Config, headless bool, conv *mdnarrate.DocumentConverter, logger *slog.Logger) (mdnarrate.Surface, *mdnarrate.WebSurface, func(), error) {
	switch cfg.Display.Surface {
	case "none":
		return mdnarrate.NopSurface{}, nil, func() {}, nil

	case "web":
		var opts []mdnarrate.WebOption
		opts = append(opts, mdnarrate.WithWebLogger(logger))
		// A custom asset path may override the remote template.
		if tmpl, err := conv.LoadTemplate(mdnarrate.RemoteTemplate); err == nil {
			opts = append(opts, mdnarrate.WithRemoteTemplate(tmpl))
		}
		web, err := mdnarrate.NewWebSurface(cfg.Display.Addr, opts...)
		if err != nil {
			return nil, nil, nil, err
		}
		return web, web, func() {
			if err := web.Close(); err != nil {
				logger.Debug("closing web surface", "error", err)
			}
		}, nil

	default:
		browser := mdnarrate.NewBrowserSurface(mdnarrate.BrowserConfig{
			Bin:      cfg.Display.BrowserBin,
			Width:    cfg.Display.Width,
			Height:   cfg.Display.Height,
			Headless: headless,
		})
		if err := browser.Launch(); err != nil {
			return nil, nil, nil, err
		}
		return browser, nil, func() {
			if err := browser.Close(); err != nil {
				logger.Debug("closing browser", "error", err)
			}
		}, nil
	}
}

// applyVoiceSettings pushes rate, volume, and an explicit voice to ctrl.
func applyVoiceSettings(ctrl *mdnarrate.Controller, cfg *config.Config, logger *slog.Logger) error {
	if err := ctrl.SetRate(cfg.Speech.Rate); err != nil {
		return err
	}
	if err := ctrl.SetVolume(cfg.Speech.VolumeOrDefault()); err != nil {
		return err
	}
	if cfg.Speech.Voice == "" {
		return nil
	}
	ok, err := ctrl.SelectVoice(cfg.Speech.Voice)
	if err != nil {
		return err
	}
	if !ok {
		logger.Warn("voice not found, keeping default", "voice", cfg.Speech.Voice)
	}
	return nil
}
