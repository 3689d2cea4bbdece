package mdnarrate

import (
	"context"
	"testing"
	"time"
)

func TestNewBrowserSurface_Defaults(t *testing.T) {
	t.Parallel()

	s := NewBrowserSurface(BrowserConfig{})
	if s.cfg.Width != DefaultWindowWidth || s.cfg.Height != DefaultWindowHeight {
		t.Errorf("size = %dx%d, want %dx%d", s.cfg.Width, s.cfg.Height, DefaultWindowWidth, DefaultWindowHeight)
	}
	if s.cfg.Timeout != defaultLoadTimeout {
		t.Errorf("timeout = %v, want %v", s.cfg.Timeout, defaultLoadTimeout)
	}

	custom := NewBrowserSurface(BrowserConfig{Width: 800, Height: 600, Timeout: time.Second})
	if custom.cfg.Width != 800 || custom.cfg.Height != 600 || custom.cfg.Timeout != time.Second {
		t.Errorf("custom config not kept: %+v", custom.cfg)
	}
}

func TestBrowserSurface_NoPageYet(t *testing.T) {
	t.Parallel()

	s := NewBrowserSurface(BrowserConfig{})
	ctx := context.Background()

	if err := s.ScrollTo(ctx, 50); err != nil {
		t.Errorf("ScrollTo() before Show error = %v", err)
	}
	if err := s.SetZoom(ctx, 1.5); err != nil {
		t.Errorf("SetZoom() before Show error = %v", err)
	}
	if s.zoom != 1.5 {
		t.Errorf("zoom = %v, want 1.5 kept for the first page", s.zoom)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestBrowserSurface_ShowCancelled(t *testing.T) {
	t.Parallel()

	s := NewBrowserSurface(BrowserConfig{Headless: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Show(ctx, "<html></html>"); err == nil {
		t.Error("Show() with cancelled context succeeded")
	}
}

func TestEnvTrue(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"", false},
		{"0", false},
		{"yes", false},
	}
	for _, tt := range tests {
		t.Setenv("MDNARRATE_TEST_FLAG", tt.value)
		if got := envTrue("MDNARRATE_TEST_FLAG"); got != tt.want {
			t.Errorf("envTrue(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
