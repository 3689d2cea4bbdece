package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"unicode/utf8"
)

// Engine narrates whole texts on top of a Backend.
// All methods are safe for concurrent use.
type Engine struct {
	backend Backend
	logger  *slog.Logger
	maxSeg  int

	mu      sync.Mutex
	voices  []Voice
	voice   Voice
	prosody Prosody
	current *run
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for backend diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxSegment overrides MaxSegmentRunes.
func WithMaxSegment(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSeg = n
		}
	}
}

// NewEngine creates an Engine and loads the backend's voice list.
// The first voice becomes the current voice.
func NewEngine(ctx context.Context, backend Backend, opts ...Option) (*Engine, error) {
	e := &Engine{
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxSeg:  MaxSegmentRunes,
		prosody: Prosody{Rate: 0, Volume: MaxVolume},
	}
	for _, opt := range opts {
		opt(e)
	}

	voices, err := backend.Voices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing %s voices: %w", backend.Name(), err)
	}
	e.voices = voices
	if len(voices) > 0 {
		e.voice = voices[0]
	}
	return e, nil
}

// Name returns the backend name.
func (e *Engine) Name() string {
	return e.backend.Name()
}

// Voices returns a copy of the voice list.
func (e *Engine) Voices() []Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Voice(nil), e.voices...)
}

// Voice returns the current voice.
func (e *Engine) Voice() Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.voice
}

// SelectVoice switches to the voice with the exact name.
// Returns ErrUnknownVoice and keeps the current voice if there is none.
func (e *Engine) SelectVoice(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, v := range e.voices {
		if v.Name == name {
			e.voice = v
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownVoice, name)
}

// SetRate sets the rate, clamped to [-10, 10]. Applies from the next segment.
func (e *Engine) SetRate(rate int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prosody.Rate = clampInt(rate, MinRate, MaxRate)
}

// SetVolume sets the volume, clamped to [0, 100]. Applies from the next segment.
func (e *Engine) SetVolume(volume int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prosody.Volume = clampInt(volume, MinVolume, MaxVolume)
}

// Prosody returns the current rate and volume.
func (e *Engine) Prosody() Prosody {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prosody
}

// Speak cancels any narration in progress and starts narrating text.
// onProgress receives the rune offset of each segment as it starts and the
// rune length of text once the last segment ends; onDone
// is called once when the text is finished (nil) or a segment failed. Neither
// is called after the narration is cancelled.
func (e *Engine) Speak(text string, onProgress func(offset int), onDone func(err error)) {
	e.mu.Lock()
	if e.current != nil {
		e.current.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		ctx:        ctx,
		cancelFunc: cancel,
		gate:       closedGate(),
	}
	e.current = r
	segments := Split(text, e.maxSeg)
	e.mu.Unlock()

	go e.narrate(r, segments, utf8.RuneCountInString(text), onProgress, onDone)
}

// Pause holds the narration in progress, if any.
func (e *Engine) Pause() {
	if r := e.currentRun(); r != nil {
		r.pause(e.logger)
	}
}

// Resume continues a paused narration, if any.
func (e *Engine) Resume() {
	if r := e.currentRun(); r != nil {
		r.resume(e.logger)
	}
}

// Cancel stops the narration in progress, if any.
func (e *Engine) Cancel() {
	e.mu.Lock()
	r := e.current
	e.current = nil
	e.mu.Unlock()
	if r != nil {
		r.cancel()
	}
}

// Close cancels narration and releases the backend if it holds resources.
func (e *Engine) Close() error {
	e.Cancel()
	if c, ok := e.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (e *Engine) currentRun() *run {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Engine) snapshot() (Voice, Prosody) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.voice, e.prosody
}

// finish clears r as the current run when it ends on its own.
func (e *Engine) finish(r *run) {
	e.mu.Lock()
	if e.current == r {
		e.current = nil
	}
	e.mu.Unlock()
}

// narrate plays segments in order. After the last one it reports the end of
// the text so listeners reach 100% before the completion.
func (e *Engine) narrate(r *run, segments []Segment, length int, onProgress func(int), onDone func(error)) {
	for _, seg := range segments {
		if !r.waitGate() {
			return
		}
		onProgressIfLive(r, onProgress, seg.Offset)

		voice, prosody := e.snapshot()
		u, err := e.backend.Utter(r.ctx, seg.Text, voice, prosody)
		if err != nil {
			if r.ctx.Err() != nil {
				return
			}
			e.finish(r)
			e.logger.Warn("speech: segment failed", "backend", e.backend.Name(), "offset", seg.Offset, "error", err)
			onDone(fmt.Errorf("%w: %v", ErrSynthesis, err))
			return
		}

		r.attach(u, e.logger)
		err = u.Wait()
		r.detach()

		if r.ctx.Err() != nil {
			return
		}
		if err != nil {
			e.finish(r)
			e.logger.Warn("speech: segment failed", "backend", e.backend.Name(), "offset", seg.Offset, "error", err)
			onDone(fmt.Errorf("%w: %v", ErrSynthesis, err))
			return
		}
	}

	if length > 0 {
		onProgressIfLive(r, onProgress, length)
	}
	if r.ctx.Err() != nil {
		return
	}
	e.finish(r)
	onDone(nil)
}

func onProgressIfLive(r *run, onProgress func(int), offset int) {
	if r.ctx.Err() == nil && onProgress != nil {
		onProgress(offset)
	}
}

// run is one narration. The gate channel is closed while not paused.
type run struct {
	ctx        context.Context
	cancelFunc context.CancelFunc

	mu      sync.Mutex
	paused  bool
	gate    chan struct{}
	current Utterance
}

func closedGate() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// waitGate blocks while paused; false once the run is cancelled.
func (r *run) waitGate() bool {
	r.mu.Lock()
	gate := r.gate
	r.mu.Unlock()
	select {
	case <-gate:
		return r.ctx.Err() == nil
	case <-r.ctx.Done():
		return false
	}
}

func (r *run) attach(u Utterance, logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = u
	if r.paused {
		if err := u.Pause(); err != nil {
			logger.Debug("speech: pause deferred to segment end", "error", err)
		}
	}
}

func (r *run) detach() {
	r.mu.Lock()
	r.current = nil
	r.mu.Unlock()
}

func (r *run) pause(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused {
		return
	}
	r.paused = true
	r.gate = make(chan struct{})
	if r.current != nil {
		if err := r.current.Pause(); err != nil {
			logger.Debug("speech: pause deferred to segment end", "error", err)
		}
	}
}

func (r *run) resume(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.paused {
		return
	}
	r.paused = false
	close(r.gate)
	if r.current != nil {
		if err := r.current.Resume(); err != nil {
			logger.Debug("speech: resume failed", "error", err)
		}
	}
}

func (r *run) cancel() {
	r.cancelFunc()
	r.mu.Lock()
	u := r.current
	r.mu.Unlock()
	if u != nil {
		u.Cancel()
	}
}
