package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-mdnarrate/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// MaxFileSize limits config input to prevent memory exhaustion (1MB).
const MaxFileSize = 1 << 20

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxLanguageLength = 16  // "es", "en-GB", "pt-BR"
	MaxVoiceLength    = 200 // Engine voice names can be verbose
	MaxAddrLength     = 255 // host:port
	MaxSecretLength   = 512 // API keys, folder ids
	MaxStyleLength    = 100
)

// Engine names accepted in speech.engine.
var Engines = []string{"espeak", "google", "yandex", "silent"}

// Surface names accepted in display.surface.
var Surfaces = []string{"browser", "web", "none"}

// Config holds all configuration for the viewer.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Speech  SpeechConfig  `yaml:"speech"`
	Display DisplayConfig `yaml:"display"`
	Assets  AssetsConfig  `yaml:"assets"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultFile string `yaml:"defaultFile"` // Opened when no file argument is given (empty = welcome page)
}

// SpeechConfig defines narration options.
type SpeechConfig struct {
	Engine    string       `yaml:"engine"`    // espeak, google, yandex, silent
	Language  string       `yaml:"language"`  // Initial language code (default: "es")
	Languages []string     `yaml:"languages"` // Offered languages (default: es, en)
	Voice     string       `yaml:"voice"`     // Exact voice name, overrides language default
	Rate      int          `yaml:"rate"`      // -10..10
	Volume    *int         `yaml:"volume"`    // 0..100 (nil = 100)
	Espeak    EspeakConfig `yaml:"espeak"`
	Yandex    YandexConfig `yaml:"yandex"`
}

// EspeakConfig configures the espeak backend.
type EspeakConfig struct {
	Binary string `yaml:"binary"` // Empty = espeak-ng, then espeak, from PATH
}

// YandexConfig configures the SpeechKit backend.
type YandexConfig struct {
	APIKey   string `yaml:"apiKey"`
	FolderID string `yaml:"folderId"`
	Endpoint string `yaml:"endpoint"` // Empty = tts.api.cloud.yandex.net:443
}

// DisplayConfig defines the display surface.
type DisplayConfig struct {
	Surface    string  `yaml:"surface"`    // browser, web, none
	Addr       string  `yaml:"addr"`       // Listen address of the web remote
	BrowserBin string  `yaml:"browserBin"` // Chrome binary (empty = ROD_BROWSER_BIN or managed download)
	Width      int     `yaml:"width"`      // Window width in pixels
	Height     int     `yaml:"height"`     // Window height in pixels
	Style      string  `yaml:"style"`      // Style name, CSS file path (empty = dark)
	Zoom       float64 `yaml:"zoom"`       // 0.5..3.0 (0 = 1.0)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// VolumeOrDefault returns the configured volume, 100 when unset.
func (s SpeechConfig) VolumeOrDefault() int {
	if s.Volume == nil {
		return 100
	}
	return *s.Volume
}

// Validate checks enumerations, ranges, and field lengths.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.defaultFile", c.Input.DefaultFile, MaxPathLength); err != nil {
		return err
	}

	// Speech
	if c.Speech.Engine != "" && !contains(Engines, c.Speech.Engine) {
		return fmt.Errorf("%w: speech.engine %q (must be one of %s)", ErrInvalidValue, c.Speech.Engine, strings.Join(Engines, ", "))
	}
	if err := validateFieldLength("speech.language", c.Speech.Language, MaxLanguageLength); err != nil {
		return err
	}
	for i, lang := range c.Speech.Languages {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("%w: speech.languages[%d] is empty", ErrInvalidValue, i)
		}
		if err := validateFieldLength(fmt.Sprintf("speech.languages[%d]", i), lang, MaxLanguageLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("speech.voice", c.Speech.Voice, MaxVoiceLength); err != nil {
		return err
	}
	if c.Speech.Rate < -10 || c.Speech.Rate > 10 {
		return fmt.Errorf("%w: speech.rate must be between -10 and 10, got %d", ErrInvalidValue, c.Speech.Rate)
	}
	if v := c.Speech.VolumeOrDefault(); v < 0 || v > 100 {
		return fmt.Errorf("%w: speech.volume must be between 0 and 100, got %d", ErrInvalidValue, v)
	}
	if err := validateFieldLength("speech.espeak.binary", c.Speech.Espeak.Binary, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("speech.yandex.apiKey", c.Speech.Yandex.APIKey, MaxSecretLength); err != nil {
		return err
	}
	if err := validateFieldLength("speech.yandex.folderId", c.Speech.Yandex.FolderID, MaxSecretLength); err != nil {
		return err
	}
	if err := validateFieldLength("speech.yandex.endpoint", c.Speech.Yandex.Endpoint, MaxAddrLength); err != nil {
		return err
	}

	// Display
	if c.Display.Surface != "" && !contains(Surfaces, c.Display.Surface) {
		return fmt.Errorf("%w: display.surface %q (must be one of %s)", ErrInvalidValue, c.Display.Surface, strings.Join(Surfaces, ", "))
	}
	if err := validateFieldLength("display.addr", c.Display.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateFieldLength("display.browserBin", c.Display.BrowserBin, MaxPathLength); err != nil {
		return err
	}
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return fmt.Errorf("%w: display.width and display.height must not be negative", ErrInvalidValue)
	}
	if err := validateFieldLength("display.style", c.Display.Style, MaxPathLength); err != nil {
		return err
	}
	if c.Display.Zoom != 0 && (c.Display.Zoom < 0.5 || c.Display.Zoom > 3.0) {
		return fmt.Errorf("%w: display.zoom must be between 0.5 and 3.0, got %.2f", ErrInvalidValue, c.Display.Zoom)
	}

	return validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	volume := 100
	return &Config{
		Speech: SpeechConfig{
			Engine:    "espeak",
			Language:  "es",
			Languages: []string{"es", "en"},
			Volume:    &volume,
		},
		Display: DisplayConfig{
			Surface: "browser",
			Addr:    "127.0.0.1:8765",
			Width:   1200,
			Height:  800,
			Style:   "dark",
			Zoom:    1.0,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values present in the file override DefaultConfig; unknown keys are rejected.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML onto DefaultConfig in strict mode and validates the result.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxFileSize)
	}

	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdnarrate/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-mdnarrate", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Tried: triedPaths}
}

// NotFoundError lists the paths searched for a named config.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: tried %s", ErrConfigNotFound, strings.Join(e.Tried, ", "))
}

// Unwrap allows errors.Is(err, ErrConfigNotFound).
func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }
