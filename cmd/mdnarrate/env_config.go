package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdnarrate/internal/config"
)

// defaultEnvFile is loaded when present and --env-file is not given.
const defaultEnvFile = ".env"

// envConfig holds configuration from environment variables.
// Keeps secrets such as API keys out of YAML files and shell history.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // MDNARRATE_CONFIG: config file name or path
	Engine     string // MDNARRATE_ENGINE: speech engine
	Surface    string // MDNARRATE_SURFACE: display surface

	// Tier 2 - Voice
	Language string // MDNARRATE_LANG: initial language
	Voice    string // MDNARRATE_VOICE: exact voice name
	Rate     *int   // MDNARRATE_RATE: -10..10
	Volume   *int   // MDNARRATE_VOLUME: 0..100

	// Tier 3 - Engines and display
	EspeakBin      string // MDNARRATE_ESPEAK_BIN: espeak binary
	YandexAPIKey   string // MDNARRATE_YANDEX_API_KEY: SpeechKit API key
	YandexFolderID string // MDNARRATE_YANDEX_FOLDER_ID: SpeechKit folder
	YandexEndpoint string // MDNARRATE_YANDEX_ENDPOINT: SpeechKit endpoint
	Addr           string // MDNARRATE_ADDR: web remote address
	Style          string // MDNARRATE_STYLE: CSS style name or path
}

// knownEnvVars lists valid MDNARRATE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"MDNARRATE_CONFIG":  true,
	"MDNARRATE_ENGINE":  true,
	"MDNARRATE_SURFACE": true,
	// Tier 2 - Voice
	"MDNARRATE_LANG":   true,
	"MDNARRATE_VOICE":  true,
	"MDNARRATE_RATE":   true,
	"MDNARRATE_VOLUME": true,
	// Tier 3 - Engines and display
	"MDNARRATE_ESPEAK_BIN":       true,
	"MDNARRATE_YANDEX_API_KEY":   true,
	"MDNARRATE_YANDEX_FOLDER_ID": true,
	"MDNARRATE_YANDEX_ENDPOINT":  true,
	"MDNARRATE_ADDR":             true,
	"MDNARRATE_STYLE":            true,
	"MDNARRATE_CONTAINER":        true, // read by doctor
}

// loadDotEnv loads variables from path into the process environment.
// Variables already set win. An empty path loads .env when it exists.
func loadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			return nil
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("env file %s: %w", path, err)
		}
		return fmt.Errorf("%w: env file %s: %v", config.ErrConfigParse, path, err)
	}
	return nil
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized MDNARRATE_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		// Tier 1
		ConfigPath: os.Getenv("MDNARRATE_CONFIG"),
		Engine:     os.Getenv("MDNARRATE_ENGINE"),
		Surface:    os.Getenv("MDNARRATE_SURFACE"),
		// Tier 2
		Language: os.Getenv("MDNARRATE_LANG"),
		Voice:    os.Getenv("MDNARRATE_VOICE"),
		// Tier 3
		EspeakBin:      os.Getenv("MDNARRATE_ESPEAK_BIN"),
		YandexAPIKey:   os.Getenv("MDNARRATE_YANDEX_API_KEY"),
		YandexFolderID: os.Getenv("MDNARRATE_YANDEX_FOLDER_ID"),
		YandexEndpoint: os.Getenv("MDNARRATE_YANDEX_ENDPOINT"),
		Addr:           os.Getenv("MDNARRATE_ADDR"),
		Style:          os.Getenv("MDNARRATE_STYLE"),
	}

	// Invalid numbers are ignored like unset ones
	cfg.Rate = envInt("MDNARRATE_RATE")
	cfg.Volume = envInt("MDNARRATE_VOLUME")

	return cfg
}

func envInt(key string) *int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// warnUnknownEnvVars logs warnings for unrecognized MDNARRATE_* variables.
// Helps catch typos like MDNARRATE_VOLUMEN instead of MDNARRATE_VOLUME.
func warnUnknownEnvVars(logger *slog.Logger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDNARRATE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				logger.Warn("unknown environment variable (typo?)", "name", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; CLI flags are applied later via
// mergeFlags. This ensures: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1
	if env.Engine != "" {
		cfg.Speech.Engine = env.Engine
	}
	if env.Surface != "" {
		cfg.Display.Surface = env.Surface
	}

	// Tier 2
	if env.Language != "" {
		cfg.Speech.Language = env.Language
	}
	if env.Voice != "" {
		cfg.Speech.Voice = env.Voice
	}
	if env.Rate != nil {
		cfg.Speech.Rate = *env.Rate
	}
	if env.Volume != nil {
		v := *env.Volume
		cfg.Speech.Volume = &v
	}

	// Tier 3
	if env.EspeakBin != "" {
		cfg.Speech.Espeak.Binary = env.EspeakBin
	}
	if env.YandexAPIKey != "" {
		cfg.Speech.Yandex.APIKey = env.YandexAPIKey
	}
	if env.YandexFolderID != "" {
		cfg.Speech.Yandex.FolderID = env.YandexFolderID
	}
	if env.YandexEndpoint != "" {
		cfg.Speech.Yandex.Endpoint = env.YandexEndpoint
	}
	if env.Addr != "" {
		cfg.Display.Addr = env.Addr
	}
	if env.Style != "" {
		cfg.Display.Style = env.Style
	}
}

// resolveConfig builds the effective configuration:
// CLI flags > env vars (.env included) > config file > defaults.
func resolveConfig(fs *flag.FlagSet, f *viewFlags, logger *slog.Logger) (*config.Config, error) {
	if err := loadDotEnv(f.common.envFile); err != nil {
		return nil, err
	}
	warnUnknownEnvVars(logger)
	env := loadEnvConfig()

	cfg := config.DefaultConfig()
	name := f.common.config
	if name == "" {
		name = env.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	mergeFlags(fs, f, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
