package speech

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/hegedustibor/htgo-tts/voices"
)

// Google translate TTS endpoint and request limits.
const (
	GoogleBaseURL      = "https://translate.google.com/translate_tts"
	googleTimeout      = 15 * time.Second
	googleMaxBody      = 10 << 20
	googleErrBodyLimit = 512
)

// googleVoices are the languages offered; the ID is the "tl" code.
var googleVoices = []Voice{
	{ID: voices.Spanish, Name: "Google Español", Culture: "es-ES"},
	{ID: voices.English, Name: "Google English", Culture: "en-US"},
	{ID: voices.EnglishUK, Name: "Google English UK", Culture: "en-GB"},
	{ID: voices.Portuguese, Name: "Google Português", Culture: "pt-BR"},
	{ID: voices.French, Name: "Google Français", Culture: "fr-FR"},
	{ID: voices.German, Name: "Google Deutsch", Culture: "de-DE"},
}

// Google fetches MP3 segments from Google translate TTS and plays them locally.
type Google struct {
	baseURL string
	client  *http.Client
	play    clipPlayer
}

// GoogleOption configures a Google backend.
type GoogleOption func(*Google)

// WithGoogleBaseURL overrides the endpoint.
func WithGoogleBaseURL(u string) GoogleOption {
	return func(g *Google) {
		if u != "" {
			g.baseURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *Google) {
		if c != nil {
			g.client = c
		}
	}
}

// NewGoogle creates the Google backend.
func NewGoogle(opts ...GoogleOption) *Google {
	g := &Google{
		baseURL: GoogleBaseURL,
		client:  &http.Client{Timeout: googleTimeout},
		play:    playOnDefault,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name implements Backend.
func (g *Google) Name() string { return "google" }

// Voices implements Backend.
func (g *Google) Voices(context.Context) ([]Voice, error) {
	return append([]Voice(nil), googleVoices...), nil
}

// Utter implements Backend.
func (g *Google) Utter(ctx context.Context, text string, voice Voice, prosody Prosody) (Utterance, error) {
	lang := voice.ID
	if lang == "" {
		lang = voices.Spanish
	}
	data, err := g.fetch(ctx, text, lang, googleSpeed(prosody))
	if err != nil {
		return nil, err
	}
	return playMP3(ctx, g.play, data, prosody.Gain())
}

// googleSpeed maps the rate to ttsspeed. The service only slows down, so
// faster rates play at normal speed; the slowest rate gives one third.
func googleSpeed(p Prosody) float64 {
	return math.Min(p.SpeedFactor(), 1)
}

func (g *Google) fetch(ctx context.Context, text, lang string, speed float64) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("q", text)
	params.Set("tl", lang)
	params.Set("total", "1")
	params.Set("idx", "0")
	params.Set("textlen", strconv.Itoa(utf8.RuneCountInString(text)))
	params.Set("ttsspeed", strconv.FormatFloat(speed, 'f', 2, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building google tts request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google tts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, googleErrBodyLimit))
		return nil, fmt.Errorf("google tts status %d: %s", resp.StatusCode, string(body))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, googleMaxBody))
	if err != nil {
		return nil, fmt.Errorf("reading google tts response: %w", err)
	}
	return data, nil
}

var _ Backend = (*Google)(nil)
