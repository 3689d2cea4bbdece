package speech

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultRuneDuration approximates normal speaking speed (about 14 characters per second).
const DefaultRuneDuration = 70 * time.Millisecond

// Silent paces segments by an estimated speaking time without producing audio.
type Silent struct {
	perRune time.Duration
	voices  []Voice
}

// NewSilent creates a Silent backend. perRune <= 0 uses DefaultRuneDuration.
func NewSilent(perRune time.Duration) *Silent {
	if perRune <= 0 {
		perRune = DefaultRuneDuration
	}
	return &Silent{
		perRune: perRune,
		voices: []Voice{
			{ID: "es", Name: "Silent Spanish", Culture: "es-ES"},
			{ID: "en", Name: "Silent English", Culture: "en-US"},
		},
	}
}

// Name implements Backend.
func (s *Silent) Name() string { return "silent" }

// Voices implements Backend.
func (s *Silent) Voices(context.Context) ([]Voice, error) {
	return append([]Voice(nil), s.voices...), nil
}

// Utter implements Backend.
func (s *Silent) Utter(ctx context.Context, text string, _ Voice, prosody Prosody) (Utterance, error) {
	d := time.Duration(float64(s.perRune) * float64(utf8.RuneCountInString(text)) / prosody.SpeedFactor())
	return startTimed(ctx, d), nil
}

// timedUtterance completes after a duration that stops counting while paused.
type timedUtterance struct {
	mu        sync.Mutex
	remaining time.Duration
	started   time.Time
	timer     *time.Timer
	paused    bool
	done      chan struct{}
	err       error
	closed    bool
	stop      func() bool
}

func startTimed(ctx context.Context, d time.Duration) *timedUtterance {
	u := &timedUtterance{remaining: d, done: make(chan struct{})}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.started = time.Now()
	u.timer = time.AfterFunc(d, func() { u.finish(nil) })
	u.stop = context.AfterFunc(ctx, func() { u.finish(ErrCancelled) })
	return u
}

func (u *timedUtterance) finish(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return
	}
	u.closed = true
	u.err = err
	u.timer.Stop()
	close(u.done)
}

// Wait implements Utterance.
func (u *timedUtterance) Wait() error {
	<-u.done
	u.stop()
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

// Pause implements Utterance.
func (u *timedUtterance) Pause() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed || u.paused {
		return nil
	}
	if u.timer.Stop() {
		u.remaining -= time.Since(u.started)
		u.paused = true
	}
	return nil
}

// Resume implements Utterance.
func (u *timedUtterance) Resume() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed || !u.paused {
		return nil
	}
	u.paused = false
	u.started = time.Now()
	if u.remaining < 0 {
		u.remaining = 0
	}
	u.timer = time.AfterFunc(u.remaining, func() { u.finish(nil) })
	return nil
}

// Cancel implements Utterance.
func (u *timedUtterance) Cancel() {
	u.finish(ErrCancelled)
}

var _ Backend = (*Silent)(nil)
