package mdnarrate

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// fakeEngine
// ---------------------------------------------------------------------------

// speakCall captures one Speak so tests can fire its callbacks.
type speakCall struct {
	text       string
	onProgress func(int)
	onDone     func(error)
}

type fakeEngine struct {
	mu        sync.Mutex
	voices    []Voice
	current   Voice
	calls     []*speakCall
	paused    int
	resumed   int
	cancelled int
	rate      int
	volume    int
	closed    bool
	spoke     chan *speakCall
}

func newFakeEngine() *fakeEngine {
	voices := []Voice{
		{Name: "Helena", Culture: "es-ES", Gender: "Female"},
		{Name: "Pablo", Culture: "es-ES", Gender: "Male"},
		{Name: "Zira", Culture: "en-US", Gender: "Female"},
	}
	return &fakeEngine{voices: voices, current: voices[0], spoke: make(chan *speakCall, 16)}
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Speak(text string, onProgress func(int), onDone func(error)) {
	call := &speakCall{text: text, onProgress: onProgress, onDone: onDone}
	e.mu.Lock()
	e.calls = append(e.calls, call)
	e.mu.Unlock()
	e.spoke <- call
}

func (e *fakeEngine) Pause()  { e.mu.Lock(); e.paused++; e.mu.Unlock() }
func (e *fakeEngine) Resume() { e.mu.Lock(); e.resumed++; e.mu.Unlock() }
func (e *fakeEngine) Cancel() { e.mu.Lock(); e.cancelled++; e.mu.Unlock() }

func (e *fakeEngine) SetRate(rate int)     { e.mu.Lock(); e.rate = rate; e.mu.Unlock() }
func (e *fakeEngine) SetVolume(volume int) { e.mu.Lock(); e.volume = volume; e.mu.Unlock() }

func (e *fakeEngine) Voices() []Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Voice(nil), e.voices...)
}

func (e *fakeEngine) SelectVoice(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, v := range e.voices {
		if v.Name == name {
			e.current = v
			return nil
		}
	}
	return fmt.Errorf("unknown voice %q", name)
}

func (e *fakeEngine) CurrentVoice() Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *fakeEngine) Close() error { e.mu.Lock(); e.closed = true; e.mu.Unlock(); return nil }

func (e *fakeEngine) lastSpeak(t *testing.T) *speakCall {
	t.Helper()
	select {
	case c := <-e.spoke:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("engine Speak not called")
		return nil
	}
}

func (e *fakeEngine) settings() (rate, volume int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate, e.volume
}

// ---------------------------------------------------------------------------
// fakeSurface
// ---------------------------------------------------------------------------

type fakeSurface struct {
	mu       sync.Mutex
	shown    []string
	scrolls  []int
	zooms    []float64
	states   []Snapshot
	showErr  error
	scrolled chan int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{scrolled: make(chan int, 64)}
}

func (s *fakeSurface) Show(_ context.Context, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.showErr != nil {
		return s.showErr
	}
	s.shown = append(s.shown, html)
	return nil
}

func (s *fakeSurface) ScrollTo(_ context.Context, percent int) error {
	s.mu.Lock()
	s.scrolls = append(s.scrolls, percent)
	s.mu.Unlock()
	s.scrolled <- percent
	return nil
}

func (s *fakeSurface) SetZoom(_ context.Context, factor float64) error {
	s.mu.Lock()
	s.zooms = append(s.zooms, factor)
	s.mu.Unlock()
	return nil
}

func (s *fakeSurface) StateChanged(_ context.Context, snap Snapshot) {
	s.mu.Lock()
	s.states = append(s.states, snap)
	s.mu.Unlock()
}

func (s *fakeSurface) lastShown() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.shown) == 0 {
		return ""
	}
	return s.shown[len(s.shown)-1]
}

func (s *fakeSurface) scrollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scrolls)
}

var (
	_ SpeechEngine  = (*fakeEngine)(nil)
	_ Surface       = (*fakeSurface)(nil)
	_ Zoomer        = (*fakeSurface)(nil)
	_ StateListener = (*fakeSurface)(nil)
)
