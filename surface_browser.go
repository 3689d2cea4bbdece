package mdnarrate

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdnarrate/internal/fileutil"
)

// Browser window defaults.
const (
	DefaultWindowWidth  = 1200
	DefaultWindowHeight = 800
	defaultLoadTimeout  = 30 * time.Second
)

// Scripts evaluated in the page.
const (
	scrollScript = `(p) => {
  const el = document.documentElement;
  const max = el.scrollHeight - el.clientHeight;
  if (max > 0) { window.scrollTo({ top: max * p / 100, behavior: "smooth" }); }
}`
	zoomScript = `(z) => { document.body.style.zoom = z; }`
)

// BrowserConfig configures the browser window.
type BrowserConfig struct {
	Bin      string // Chromium binary; empty uses ROD_BROWSER_BIN or rod's managed download
	Width    int
	Height   int
	Headless bool // For tests and CI
	Timeout  time.Duration
}

// BrowserSurface shows documents in a Chromium window driven over the
// DevTools protocol. Each document is written to a temp file and navigated
// to, so relative file:// images load.
type BrowserSurface struct {
	cfg BrowserConfig

	mu      sync.Mutex
	browser *rod.Browser
	page    *rod.Page
	cleanup func()
	zoom    float64
}

// NewBrowserSurface creates a BrowserSurface. The browser starts on first use.
func NewBrowserSurface(cfg BrowserConfig) *BrowserSurface {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWindowWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultWindowHeight
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLoadTimeout
	}
	return &BrowserSurface{cfg: cfg, zoom: DefaultZoom}
}

// Launch starts the browser now instead of on the first Show.
func (s *BrowserSurface) Launch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureBrowser()
}

// ensureBrowser lazily launches and connects to the browser. Caller holds mu.
func (s *BrowserSurface) ensureBrowser() error {
	if s.browser != nil {
		return nil
	}

	l := launcher.New().
		Headless(s.cfg.Headless).
		Set("window-size", fmt.Sprintf("%d,%d", s.cfg.Width, s.cfg.Height))

	bin := s.cfg.Bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || envTrue("ROD_NO_SANDBOX") || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u).NoDefaultDevice()
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	s.browser = browser
	return nil
}

// Show implements Surface.
func (s *BrowserSurface) Show(ctx context.Context, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureBrowser(); err != nil {
		cleanup()
		return err
	}

	url := "file://" + path
	if s.page == nil {
		page, err := s.browser.Page(proto.TargetCreateTarget{URL: url})
		if err != nil {
			cleanup()
			return fmt.Errorf("%w: %v", ErrPageCreate, err)
		}
		s.page = page
	} else if err := s.page.Context(ctx).Navigate(url); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := s.page.Context(ctx).Timeout(s.cfg.Timeout).WaitLoad(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if s.cleanup != nil {
		s.cleanup()
	}
	s.cleanup = cleanup

	if s.zoom != DefaultZoom {
		return s.eval(ctx, zoomScript, s.zoom)
	}
	return nil
}

// ScrollTo implements Surface.
func (s *BrowserSurface) ScrollTo(ctx context.Context, percent int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return nil
	}
	return s.eval(ctx, scrollScript, percent)
}

// SetZoom implements Zoomer. The factor is kept across navigations.
func (s *BrowserSurface) SetZoom(ctx context.Context, factor float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = factor
	if s.page == nil {
		return nil
	}
	return s.eval(ctx, zoomScript, factor)
}

// eval runs a script on the page. Caller holds mu.
func (s *BrowserSurface) eval(ctx context.Context, js string, arg any) error {
	if _, err := s.page.Context(ctx).Timeout(s.cfg.Timeout).Eval(js, arg); err != nil {
		return fmt.Errorf("%w: %v", ErrScript, err)
	}
	return nil
}

// Close closes the browser and removes the last temp file.
func (s *BrowserSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	s.page = nil
	if s.browser != nil {
		err := s.browser.Close()
		s.browser = nil
		return err
	}
	return nil
}

func envTrue(key string) bool {
	v := os.Getenv(key)
	return v == "1" || v == "true"
}

var (
	_ Surface = (*BrowserSurface)(nil)
	_ Zoomer  = (*BrowserSurface)(nil)
)
