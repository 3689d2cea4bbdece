package mdnarrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alnah/go-mdnarrate/internal/audio"
	"github.com/alnah/go-mdnarrate/internal/speech"
)

// Engine names accepted by NewEngine.
const (
	EngineEspeak = "espeak"
	EngineGoogle = "google"
	EngineYandex = "yandex"
	EngineSilent = "silent"
)

// EngineNames lists the engines in the order "doctor" checks them.
var EngineNames = []string{EngineEspeak, EngineGoogle, EngineYandex, EngineSilent}

// EngineConfig selects and configures a speech engine.
type EngineConfig struct {
	Name string // One of EngineNames; empty means espeak

	EspeakBinary string // Defaults to espeak-ng, then espeak, from PATH

	YandexAPIKey   string
	YandexFolderID string
	YandexEndpoint string

	// SilentRuneDuration paces the silent engine; zero uses about 14 runes per second.
	SilentRuneDuration time.Duration

	Logger *slog.Logger
}

// NewEngine creates the configured speech engine and loads its voices.
// Returns ErrUnknownEngine for an unknown name and ErrEngineUnavailable when
// the engine's binary, credentials, or audio device are missing.
func NewEngine(ctx context.Context, cfg EngineConfig) (SpeechEngine, error) {
	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	var opts []speech.Option
	if cfg.Logger != nil {
		opts = append(opts, speech.WithLogger(cfg.Logger))
	}
	eng, err := speech.NewEngine(ctx, backend, opts...)
	if err != nil {
		if c, ok := backend.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, engineError(err)
	}
	return &engineAdapter{eng: eng}, nil
}

func newBackend(cfg EngineConfig) (speech.Backend, error) {
	switch cfg.Name {
	case EngineEspeak, "":
		b, err := speech.NewEspeak(cfg.EspeakBinary)
		if err != nil {
			return nil, engineError(err)
		}
		return b, nil

	case EngineGoogle:
		if err := checkAudio(); err != nil {
			return nil, err
		}
		return speech.NewGoogle(), nil

	case EngineYandex:
		b, err := speech.NewYandex(speech.YandexConfig{
			APIKey:   cfg.YandexAPIKey,
			FolderID: cfg.YandexFolderID,
			Endpoint: cfg.YandexEndpoint,
		})
		if err != nil {
			return nil, engineError(err)
		}
		if err := checkAudio(); err != nil {
			_ = b.Close()
			return nil, err
		}
		return b, nil

	case EngineSilent:
		return speech.NewSilent(cfg.SilentRuneDuration), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Name)
}

// checkAudio opens the shared audio device used by streamed engines.
func checkAudio() error {
	if _, err := audio.Default(); err != nil {
		return fmt.Errorf("%w: audio output: %v", ErrEngineUnavailable, err)
	}
	return nil
}

// engineError maps speech errors to public errors.
func engineError(err error) error {
	if errors.Is(err, speech.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return err
}

// engineAdapter exposes speech.Engine as a SpeechEngine with public types.
type engineAdapter struct {
	eng *speech.Engine
}

func (a *engineAdapter) Name() string { return a.eng.Name() }

func (a *engineAdapter) Speak(text string, onProgress func(int), onDone func(error)) {
	a.eng.Speak(text, onProgress, onDone)
}

func (a *engineAdapter) Pause()               { a.eng.Pause() }
func (a *engineAdapter) Resume()              { a.eng.Resume() }
func (a *engineAdapter) Cancel()              { a.eng.Cancel() }
func (a *engineAdapter) SetRate(rate int)     { a.eng.SetRate(rate) }
func (a *engineAdapter) SetVolume(volume int) { a.eng.SetVolume(volume) }
func (a *engineAdapter) Close() error         { return a.eng.Close() }

func (a *engineAdapter) Voices() []Voice {
	vs := a.eng.Voices()
	out := make([]Voice, len(vs))
	for i, v := range vs {
		out[i] = toVoice(v)
	}
	return out
}

func (a *engineAdapter) SelectVoice(name string) error {
	return a.eng.SelectVoice(name)
}

func (a *engineAdapter) CurrentVoice() Voice {
	return toVoice(a.eng.Voice())
}

// toVoice converts the internal speech.Voice to the public Voice.
func toVoice(v speech.Voice) Voice {
	return Voice{Name: v.Name, Culture: v.Culture, Gender: v.Gender, Age: v.Age}
}

var _ SpeechEngine = (*engineAdapter)(nil)
