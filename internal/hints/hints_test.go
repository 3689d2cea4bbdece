package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel(): they call t.Setenv and
//   swap the package-level IsInContainer variable.

import (
	"strings"
	"testing"
)

func TestForBrowserConnect_InCI(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	for _, want := range []string{"hint:", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN", "--surface"} {
		if !strings.Contains(hint, want) {
			t.Errorf("ForBrowserConnect() = %q, should contain %q", hint, want)
		}
	}
}

func TestForBrowserConnect_SandboxAlreadySet(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chromium")

	hint := ForBrowserConnect()

	if strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("should not suggest ROD_NO_SANDBOX when already set")
	}
	if strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("should not suggest ROD_BROWSER_BIN when already set")
	}
}

func TestForEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		engine string
		want   string
	}{
		{"espeak", "espeak-ng"},
		{"ESPEAK", "espeak-ng"},
		{"yandex", "MDNARRATE_YANDEX_API_KEY"},
		{"google", "network"},
		{"bogus", "available engines"},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			t.Parallel()

			got := ForEngine(tt.engine)
			if !strings.HasPrefix(got, "\n  hint: ") {
				t.Errorf("ForEngine(%q) = %q, want hint prefix", tt.engine, got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ForEngine(%q) = %q, should contain %q", tt.engine, got, tt.want)
			}
		})
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	got := ForConfigNotFound([]string{"narrate.yaml", "/home/u/.config/go-mdnarrate/narrate.yaml"})
	if !strings.Contains(got, "--config") {
		t.Errorf("hint %q should mention --config", got)
	}
	if !strings.Contains(got, "create /home/u/.config/go-mdnarrate/narrate.yaml") {
		t.Errorf("hint %q should suggest the user config path", got)
	}
}

func TestForStyleNotFound(t *testing.T) {
	t.Parallel()

	if got := ForStyleNotFound(nil); got != "" {
		t.Errorf("ForStyleNotFound(nil) = %q, want empty", got)
	}
	if got := ForStyleNotFound([]string{"dark", "light"}); !strings.Contains(got, "dark, light") {
		t.Errorf("ForStyleNotFound() = %q, should list styles", got)
	}
}
