package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	mdnarrate "github.com/alnah/go-mdnarrate"
	"github.com/alnah/go-mdnarrate/internal/audio"
	"github.com/alnah/go-mdnarrate/internal/config"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo   `json:"chrome"`
	Speech   speechInfo   `json:"speech"`
	Engines  []engineInfo `json:"engines"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Checked bool   `json:"checked"` // Only for the browser surface
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// speechInfo holds the configured engine and audio output state.
type speechInfo struct {
	Engine     string `json:"engine"`
	Audio      bool   `json:"audio"`
	AudioError string `json:"audio_error,omitempty"`
}

// engineInfo holds one engine's availability.
type engineInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Voices    int    `json:"voices"`
	Error     string `json:"error,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctorProbes are the checks that touch devices or the network.
// Replaced in tests.
type doctorProbes struct {
	audio  func() error
	engine func(ctx context.Context, cfg mdnarrate.EngineConfig) (mdnarrate.SpeechEngine, error)
}

var defaultProbes = doctorProbes{
	audio: func() error {
		_, err := audio.Default()
		return err
	},
	engine: mdnarrate.NewEngine,
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fset := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fset.SetOutput(env.Stderr)
	jsonOutput := fset.Bool("json", false, "print results as JSON")
	f := &viewFlags{}
	fset.StringVarP(&f.common.config, "config", "c", "", "config file name or path")
	fset.StringVar(&f.common.envFile, "env-file", "", "env file")
	if err := parseFlagSet(fset, args); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	cfg, err := resolveConfig(fset, f, newLogger(io.Discard, true, false))
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}

	result := runDoctor(ctx, cfg, defaultProbes)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, probes doctorProbes) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}
	if cfg.Display.BrowserBin != "" {
		result.Env.BrowserBin = cfg.Display.BrowserBin
	}

	if cfg.Display.Surface == "browser" {
		checkChrome(result)
	}
	checkSpeech(ctx, result, cfg, probes)
	checkEnvironment(result)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	result.Chrome.Checked = true
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		// Use rod's launcher to locate Chrome
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome, set ROD_BROWSER_BIN, or use --surface web")
			return
		}
	}

	// Verify it exists
	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	// Get version by running chrome --version
	cmd := exec.Command(chromePath, "--version") // #nosec G204 -- user-configured browser path
	out, err := cmd.Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// Sandbox status: disabled if ROD_NO_SANDBOX=1
	result.Chrome.Sandbox = result.Env.NoSandbox != "1" && result.Env.NoSandbox != "true"
}

// checkSpeech probes audio output and every engine. Only the configured
// engine being unavailable is an error.
func checkSpeech(ctx context.Context, result *doctorResult, cfg *config.Config, probes doctorProbes) {
	configured := cfg.Speech.Engine
	if configured == "" {
		configured = mdnarrate.EngineEspeak
	}
	result.Speech.Engine = configured

	if err := probes.audio(); err != nil {
		result.Speech.AudioError = err.Error()
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No audio output: %v (google and yandex engines need one)", err))
	} else {
		result.Speech.Audio = true
	}

	for _, name := range mdnarrate.EngineNames {
		info := engineInfo{Name: name}
		ecfg := engineConfig(cfg, nil)
		ecfg.Name = name
		engine, err := probes.engine(ctx, ecfg)
		if err != nil {
			info.Error = err.Error()
			if name == configured {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Configured engine %s unavailable: %v", name, err))
			}
		} else {
			info.Available = true
			info.Voices = len(engine.Voices())
			_ = engine.Close()
		}
		result.Engines = append(result.Engines, info)
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	// Detect container (multi-signal approach)
	result.Env.Container, result.Env.ContainerHint = isContainer()

	// Detect CI environments
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	// Warn if container/CI without sandbox disabled
	if result.Chrome.Found && (result.Env.Container || result.Env.CI) && result.Chrome.Sandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("MDNARRATE_CONTAINER") == "1" {
		return true, "MDNARRATE_CONTAINER=1"
	}
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the browser surface can write its page files.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "mdnarrate-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), fs.FileMode(0o600)); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdnarrate doctor")
	fmt.Fprintln(w)

	// Chrome section
	fmt.Fprintln(w, "Chrome/Chromium")
	switch {
	case r.Chrome.Found:
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	case r.Chrome.Checked:
		fmt.Fprintln(w, "  [ERROR] Not found")
	default:
		fmt.Fprintln(w, "  [--] Not checked (browser surface not selected)")
	}
	fmt.Fprintln(w)

	// Speech section
	fmt.Fprintln(w, "Speech")
	if r.Speech.Audio {
		fmt.Fprintln(w, "  [OK] Audio output: available")
	} else {
		fmt.Fprintln(w, "  [WARN] Audio output: unavailable")
	}
	for _, e := range r.Engines {
		marker := ""
		if e.Name == r.Speech.Engine {
			marker = " (configured)"
		}
		if e.Available {
			fmt.Fprintf(w, "  [OK] %s%s: %d voices\n", e.Name, marker, e.Voices)
		} else {
			fmt.Fprintf(w, "  [--] %s%s: %s\n", e.Name, marker, e.Error)
		}
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to narrate")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
