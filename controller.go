package mdnarrate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/alnah/go-mdnarrate/internal/fileutil"
)

// Zoom limits.
const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	ZoomStep    = 0.1
	DefaultZoom = 1.0
)

// DefaultLanguages are offered when none are configured.
var DefaultLanguages = []string{"es", "en"}

// Controller keeps the displayed document, narration, and scroll position
// in step. All state lives on one goroutine; public methods post work to it
// and wait for the result.
type Controller struct {
	conv     *DocumentConverter
	narrator *Narrator
	surface  Surface
	logger   *slog.Logger

	ops      chan func()
	quit     chan struct{}
	loopDone chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once

	// Owned by the loop goroutine.
	doc       *Document
	path      string
	loading   bool
	loadSeq   uint64
	reading   bool
	paused    bool
	progress  int
	utterance uint64
	zoom      float64
	language  string
	languages []string
	lastErr   string
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the logger for surface and narration failures.
func WithControllerLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLanguages sets the language codes offered for voice filtering.
func WithLanguages(codes []string) ControllerOption {
	return func(c *Controller) {
		if len(codes) > 0 {
			c.languages = append([]string(nil), codes...)
		}
	}
}

// WithLanguage sets the initial language. Defaults to the first language.
func WithLanguage(code string) ControllerOption {
	return func(c *Controller) {
		c.language = code
	}
}

// WithZoom sets the initial zoom factor, clamped to [0.5, 3.0].
func WithZoom(factor float64) ControllerOption {
	return func(c *Controller) {
		if factor > 0 {
			c.zoom = clampZoom(factor)
		}
	}
}

// NewController shows the welcome document on surface and starts the
// controller loop. Close stops it.
func NewController(conv *DocumentConverter, narrator *Narrator, surface Surface, opts ...ControllerOption) (*Controller, error) {
	if surface == nil {
		surface = NopSurface{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		conv:      conv,
		narrator:  narrator,
		surface:   surface,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ops:       make(chan func()),
		quit:      make(chan struct{}),
		loopDone:  make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		zoom:      DefaultZoom,
		languages: append([]string(nil), DefaultLanguages...),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.language == "" {
		c.language = c.languages[0]
	}

	welcome, err := conv.Build(ctx, "", WelcomeMarkdown)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("building welcome document: %w", err)
	}

	go c.loop()

	err = c.do(func() {
		c.applyLanguage(c.language)
		c.doc = welcome
		c.show(welcome.HTML)
		c.publish()
	})
	if err != nil {
		cancel()
		return nil, err
	}
	return c, nil
}

func (c *Controller) loop() {
	defer close(c.loopDone)
	events := c.narrator.Events()
	for {
		select {
		case op := <-c.ops:
			op()
		case ev := <-events:
			c.handleEvent(ev)
		case <-c.quit:
			return
		}
	}
}

// do runs fn on the loop and waits for it.
func (c *Controller) do(fn func()) error {
	done := make(chan struct{})
	select {
	case c.ops <- func() { fn(); close(done) }:
	case <-c.quit:
		return ErrControllerClosed
	}
	select {
	case <-done:
		return nil
	case <-c.loopDone:
		return ErrControllerClosed
	}
}

// post queues fn on the loop without waiting.
func (c *Controller) post(fn func()) {
	select {
	case c.ops <- fn:
	case <-c.quit:
	}
}

// ---------------------------------------------------------------------------
// Narration commands
// ---------------------------------------------------------------------------

// Start narrates the loaded document from the beginning. No-op unless
// CanStart; aborts silently when the document has no text.
func (c *Controller) Start() (Flags, error) {
	return c.transition(func() {
		if !c.flags().CanStart || c.doc == nil {
			return
		}
		id := c.narrator.Speak(c.doc.PlainText)
		if id == 0 {
			return
		}
		c.utterance = id
		c.reading = true
		c.paused = false
		c.progress = 0
	})
}

// Pause holds narration. No-op unless CanPause.
func (c *Controller) Pause() (Flags, error) {
	return c.transition(func() {
		if !c.flags().CanPause {
			return
		}
		c.narrator.Pause()
		c.paused = true
	})
}

// Resume continues a paused narration. No-op unless CanResume.
func (c *Controller) Resume() (Flags, error) {
	return c.transition(func() {
		if !c.flags().CanResume {
			return
		}
		c.narrator.Resume()
		c.paused = false
	})
}

// Stop ends narration and resets progress. No-op unless CanStop.
func (c *Controller) Stop() (Flags, error) {
	return c.transition(func() {
		if c.flags().CanStop {
			c.stopReading()
		}
	})
}

// transition runs fn on the loop, publishes state, and returns the new flags.
func (c *Controller) transition(fn func()) (Flags, error) {
	var flags Flags
	err := c.do(func() {
		fn()
		flags = c.flags()
		c.publish()
	})
	return flags, err
}

func (c *Controller) stopReading() {
	c.narrator.Stop()
	c.reading = false
	c.paused = false
	c.progress = 0
	c.utterance = 0
}

func (c *Controller) flags() Flags {
	loaded := c.doc != nil
	return Flags{
		CanStart:  !c.reading && loaded && !c.loading,
		CanPause:  c.reading && !c.paused,
		CanResume: c.reading && c.paused,
		CanStop:   c.reading,
	}
}

func (c *Controller) handleEvent(ev NarrationEvent) {
	if !c.reading || ev.UtteranceID != c.utterance {
		return
	}
	switch ev.Kind {
	case EventProgress:
		c.progress = ev.Progress
		if err := c.surface.ScrollTo(c.ctx, ev.Progress); err != nil {
			c.logger.Warn("scroll failed", "percent", ev.Progress, "error", err)
		}
	case EventCompleted:
		c.reading = false
		c.paused = false
		c.progress = 0
		c.utterance = 0
		if ev.Err != nil {
			c.lastErr = ev.Err.Error()
		}
	}
	c.publish()
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

// LoadFile stops narration and loads path. The file is read and converted
// off the loop; LoadFile waits until the result is shown. A missing or
// unreadable file shows an error document, clears the loaded document, and
// is returned.
func (c *Controller) LoadFile(ctx context.Context, path string) (Flags, error) {
	result := make(chan error, 1)
	err := c.do(func() {
		if c.reading {
			c.stopReading()
		}
		c.loading = true
		c.loadSeq++
		seq := c.loadSeq
		c.path = path
		c.lastErr = ""
		c.publish()

		go c.readDocument(seq, path, result)
	})
	if err != nil {
		return Flags{}, err
	}

	select {
	case err = <-result:
	case <-ctx.Done():
		return Flags{}, ctx.Err()
	case <-c.loopDone:
		return Flags{}, ErrControllerClosed
	}
	flags, snapErr := c.currentFlags()
	if err == nil {
		err = snapErr
	}
	return flags, err
}

// readDocument runs off the loop and posts the result back.
func (c *Controller) readDocument(seq uint64, path string, result chan<- error) {
	doc, err := c.buildDocument(path)
	c.post(func() {
		if seq != c.loadSeq {
			result <- nil // superseded by a newer load
			return
		}
		c.loading = false
		if err != nil {
			c.showError(err)
		} else {
			c.doc = doc
			c.show(doc.HTML)
		}
		c.publish()
		result <- err
	})
}

func (c *Controller) buildDocument(path string) (*Document, error) {
	source, err := c.conv.LoadFile(c.ctx, path)
	if err != nil {
		return nil, err
	}
	return c.conv.Build(c.ctx, path, source)
}

// showError replaces the document with an error page. Runs on the loop.
func (c *Controller) showError(err error) {
	c.doc = nil
	c.lastErr = err.Error()
	c.logger.Warn("load failed", "error", err)

	page, renderErr := c.conv.ErrorHTML(c.ctx, err.Error())
	if renderErr != nil {
		c.logger.Error("rendering error page", "error", renderErr)
		return
	}
	c.show(page)
}

// show displays html and re-applies zoom. Runs on the loop.
func (c *Controller) show(html string) {
	if err := c.surface.Show(c.ctx, html); err != nil {
		c.logger.Warn("show failed", "error", err)
		return
	}
	if c.zoom != DefaultZoom {
		c.applyZoom()
	}
}

// Reload loads the current path again if it still exists.
func (c *Controller) Reload(ctx context.Context) (Flags, error) {
	var path string
	if err := c.do(func() { path = c.path }); err != nil {
		return Flags{}, err
	}
	if path == "" || !fileutil.FileExists(path) {
		return c.currentFlags()
	}
	return c.LoadFile(ctx, path)
}

// Drop loads the first path if it is a Markdown file (".md", any case).
// Other drops are ignored. Reports whether the drop was accepted.
func (c *Controller) Drop(ctx context.Context, paths []string) (bool, error) {
	path, ok := fileutil.FirstMarkdownPath(paths)
	if !ok {
		return false, nil
	}
	_, err := c.LoadFile(ctx, path)
	return true, err
}

func (c *Controller) currentFlags() (Flags, error) {
	var flags Flags
	err := c.do(func() { flags = c.flags() })
	return flags, err
}

// ---------------------------------------------------------------------------
// Voice settings
// ---------------------------------------------------------------------------

// SetRate sets the narration rate, clamped to [-10, 10].
func (c *Controller) SetRate(rate int) error {
	return c.do(func() {
		c.narrator.SetRate(rate)
		c.publish()
	})
}

// SetVolume sets the narration volume, clamped to [0, 100].
func (c *Controller) SetVolume(volume int) error {
	return c.do(func() {
		c.narrator.SetVolume(volume)
		c.publish()
	})
}

// SelectLanguage lists the voices for code and selects the first one, or
// the first voice of the engine when none match.
func (c *Controller) SelectLanguage(code string) error {
	return c.do(func() {
		c.applyLanguage(code)
		c.publish()
	})
}

func (c *Controller) applyLanguage(code string) {
	c.language = code
	if voices := c.voices(); len(voices) > 0 {
		c.narrator.SelectVoice(voices[0].Name)
	}
}

// SelectVoice switches voice by exact name. Unknown names are ignored.
// Reports whether the voice changed.
func (c *Controller) SelectVoice(name string) (bool, error) {
	var ok bool
	err := c.do(func() {
		ok = c.narrator.SelectVoice(name)
		c.publish()
	})
	return ok, err
}

// Languages returns the offered language codes.
func (c *Controller) Languages() []string {
	return append([]string(nil), c.languages...)
}

// Voices returns the voices for the current language.
func (c *Controller) Voices() ([]Voice, error) {
	var voices []Voice
	err := c.do(func() { voices = c.voices() })
	return voices, err
}

// voices filters by language, falling back to the first voice overall.
func (c *Controller) voices() []Voice {
	if vs := c.narrator.VoicesByLanguage(c.language); len(vs) > 0 {
		return vs
	}
	if all := c.narrator.Voices(); len(all) > 0 {
		return all[:1]
	}
	return nil
}

// ---------------------------------------------------------------------------
// Zoom
// ---------------------------------------------------------------------------

// ZoomIn enlarges the page by one step, up to 3.0.
func (c *Controller) ZoomIn() (float64, error) {
	return c.setZoom(func(z float64) float64 { return z + ZoomStep })
}

// ZoomOut shrinks the page by one step, down to 0.5.
func (c *Controller) ZoomOut() (float64, error) {
	return c.setZoom(func(z float64) float64 { return z - ZoomStep })
}

// ResetZoom restores 1.0.
func (c *Controller) ResetZoom() (float64, error) {
	return c.setZoom(func(float64) float64 { return DefaultZoom })
}

func (c *Controller) setZoom(next func(float64) float64) (float64, error) {
	var zoom float64
	err := c.do(func() {
		c.zoom = clampZoom(next(c.zoom))
		c.applyZoom()
		zoom = c.zoom
		c.publish()
	})
	return zoom, err
}

func (c *Controller) applyZoom() {
	z, ok := c.surface.(Zoomer)
	if !ok {
		return
	}
	if err := z.SetZoom(c.ctx, c.zoom); err != nil {
		c.logger.Warn("zoom failed", "zoom", c.zoom, "error", err)
	}
}

// clampZoom rounds to one decimal and clamps to [0.5, 3.0].
func clampZoom(z float64) float64 {
	z = math.Round(z*10) / 10
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// ---------------------------------------------------------------------------
// Commands and state
// ---------------------------------------------------------------------------

// Dispatch runs a console or remote command.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	var err error
	switch cmd.Name {
	case CmdStart:
		_, err = c.Start()
	case CmdPause:
		_, err = c.Pause()
	case CmdResume:
		_, err = c.Resume()
	case CmdStop:
		_, err = c.Stop()
	case CmdReload:
		_, err = c.Reload(ctx)
	case CmdOpen:
		path := strings.TrimSpace(cmd.Value)
		if path == "" {
			return fmt.Errorf("%w: open needs a path", ErrInvalidArgument)
		}
		_, err = c.LoadFile(ctx, path)
	case CmdDrop:
		paths := cmd.Args
		if len(paths) == 0 && cmd.Value != "" {
			paths = []string{cmd.Value}
		}
		var accepted bool
		accepted, err = c.Drop(ctx, paths)
		if err == nil && !accepted {
			return fmt.Errorf("%w: only %s files can be dropped", ErrInvalidArgument, fileutil.MarkdownExtension)
		}
	case CmdRate, CmdVolume:
		n, convErr := strconv.Atoi(strings.TrimSpace(cmd.Value))
		if convErr != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidArgument, cmd.Name, cmd.Value)
		}
		if cmd.Name == CmdRate {
			err = c.SetRate(n)
		} else {
			err = c.SetVolume(n)
		}
	case CmdLang:
		err = c.SelectLanguage(strings.TrimSpace(cmd.Value))
	case CmdVoice:
		_, err = c.SelectVoice(strings.TrimSpace(cmd.Value))
	case CmdZoom:
		switch cmd.Value {
		case ZoomIn:
			_, err = c.ZoomIn()
		case ZoomOut:
			_, err = c.ZoomOut()
		case ZoomReset, "":
			_, err = c.ResetZoom()
		default:
			return fmt.Errorf("%w: zoom %q", ErrInvalidArgument, cmd.Value)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	return err
}

// Snapshot returns a copy of the controller state.
func (c *Controller) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := c.do(func() { snap = c.snapshot() })
	return snap, err
}

func (c *Controller) snapshot() Snapshot {
	voice := c.narrator.CurrentVoice()
	var names []string
	for _, v := range c.voices() {
		names = append(names, v.Name)
	}
	snap := Snapshot{
		Path:      c.path,
		Loaded:    c.doc != nil,
		Loading:   c.loading,
		Reading:   c.reading,
		Paused:    c.paused,
		Progress:  c.progress,
		Rate:      c.narrator.Rate(),
		Volume:    c.narrator.Volume(),
		Zoom:      c.zoom,
		Language:  c.language,
		Languages: append([]string(nil), c.languages...),
		Voice:     voice.Name,
		Voices:    names,
		Flags:     c.flags(),
		Error:     c.lastErr,
	}
	if c.path != "" {
		snap.FileName = filepath.Base(c.path)
	}
	return snap
}

// publish pushes state to a surface that renders it. Runs on the loop.
func (c *Controller) publish() {
	if l, ok := c.surface.(StateListener); ok {
		l.StateChanged(c.ctx, c.snapshot())
	}
}

// Close stops narration and the loop. The narrator and surface stay open;
// their owners close them.
func (c *Controller) Close() error {
	c.once.Do(func() {
		_ = c.do(func() {
			if c.reading {
				c.stopReading()
			}
		})
		close(c.quit)
		<-c.loopDone
		c.cancel()
	})
	return nil
}

var _ Dispatcher = (*Controller)(nil)
