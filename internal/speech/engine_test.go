package speech

// Notes:
// - The fake backend hands out utterances that finish only when the test
//   releases them (or immediately with autoFinish), so ordering is explicit.
// - "No callback" assertions wait a short grace period; they cannot prove a
//   negative, only catch the common regressions.

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeUtterance struct {
	text      string
	prosody   Prosody
	done      chan struct{}
	once      sync.Once
	mu        sync.Mutex
	cancelled bool
	paused    bool
	pauseErr  error
}

func newFakeUtterance(text string, p Prosody, pauseErr error) *fakeUtterance {
	return &fakeUtterance{text: text, prosody: p, done: make(chan struct{}), pauseErr: pauseErr}
}

func (u *fakeUtterance) release() { u.once.Do(func() { close(u.done) }) }

func (u *fakeUtterance) Wait() error {
	<-u.done
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.cancelled {
		return ErrCancelled
	}
	return nil
}

func (u *fakeUtterance) Pause() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pauseErr != nil {
		return u.pauseErr
	}
	u.paused = true
	return nil
}

func (u *fakeUtterance) Resume() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.paused = false
	return nil
}

func (u *fakeUtterance) Cancel() {
	u.mu.Lock()
	u.cancelled = true
	u.mu.Unlock()
	u.release()
}

func (u *fakeUtterance) isPaused() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.paused
}

type fakeBackend struct {
	voices     []Voice
	voicesErr  error
	utterErr   error
	pauseErr   error
	autoFinish bool
	utters     chan *fakeUtterance

	mu     sync.Mutex
	closed bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		voices: []Voice{{ID: "a", Name: "Alpha", Culture: "es-ES"}, {ID: "b", Name: "Beta", Culture: "en-US"}},
		utters: make(chan *fakeUtterance, 32),
	}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Voices(context.Context) ([]Voice, error) {
	return b.voices, b.voicesErr
}

func (b *fakeBackend) Utter(ctx context.Context, text string, _ Voice, p Prosody) (Utterance, error) {
	if b.utterErr != nil {
		return nil, b.utterErr
	}
	u := newFakeUtterance(text, p, b.pauseErr)
	if b.autoFinish {
		u.release()
	}
	context.AfterFunc(ctx, u.Cancel)
	b.utters <- u
	return u, nil
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) next(t *testing.T) *fakeUtterance {
	t.Helper()
	select {
	case u := <-b.utters:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("no utterance started")
		return nil
	}
}

func (b *fakeBackend) expectIdle(t *testing.T) {
	t.Helper()
	select {
	case u := <-b.utters:
		t.Fatalf("unexpected utterance %q", u.text)
	case <-time.After(100 * time.Millisecond):
	}
}

// recorder collects engine callbacks.
type recorder struct {
	progress chan int
	done     chan error
}

func newRecorder() *recorder {
	return &recorder{progress: make(chan int, 32), done: make(chan error, 4)}
}

func (r *recorder) onProgress(off int) { r.progress <- off }
func (r *recorder) onDone(err error)   { r.done <- err }

func (r *recorder) waitDone(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("onDone not called")
		return nil
	}
}

func (r *recorder) expectNoDone(t *testing.T) {
	t.Helper()
	select {
	case err := <-r.done:
		t.Fatalf("unexpected onDone(%v)", err)
	case <-time.After(100 * time.Millisecond):
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newTestEngine(t *testing.T, b *fakeBackend) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), b)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// ---------------------------------------------------------------------------
// Construction and settings
// ---------------------------------------------------------------------------

func TestNewEngine_SelectsFirstVoice(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newFakeBackend())
	if got := e.Voice().Name; got != "Alpha" {
		t.Errorf("Voice() = %q, want Alpha", got)
	}
	if got := len(e.Voices()); got != 2 {
		t.Errorf("len(Voices()) = %d, want 2", got)
	}
	if got := e.Prosody(); got != (Prosody{Rate: 0, Volume: 100}) {
		t.Errorf("Prosody() = %+v, want rate 0 volume 100", got)
	}
}

func TestNewEngine_VoicesError(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.voicesErr = ErrUnavailable
	if _, err := NewEngine(context.Background(), b); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("NewEngine() error = %v, want ErrUnavailable", err)
	}
}

func TestEngine_SelectVoice(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newFakeBackend())

	if err := e.SelectVoice("Beta"); err != nil {
		t.Fatalf("SelectVoice(Beta) error = %v", err)
	}
	if got := e.Voice().Name; got != "Beta" {
		t.Errorf("Voice() = %q, want Beta", got)
	}

	if err := e.SelectVoice("Nonexistent Voice"); !errors.Is(err, ErrUnknownVoice) {
		t.Fatalf("SelectVoice(unknown) error = %v, want ErrUnknownVoice", err)
	}
	if got := e.Voice().Name; got != "Beta" {
		t.Errorf("Voice() after unknown = %q, want Beta unchanged", got)
	}
}

func TestEngine_SettingsAreClamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rate       int
		volume     int
		wantRate   int
		wantVolume int
	}{
		{"in range", 3, 40, 3, 40},
		{"rate too high", 15, 50, 10, 50},
		{"rate too low", -25, 50, -10, 50},
		{"volume too high", 0, 150, 0, 100},
		{"volume negative", 0, -5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(t, newFakeBackend())
			e.SetRate(tt.rate)
			e.SetVolume(tt.volume)
			got := e.Prosody()
			if got.Rate != tt.wantRate || got.Volume != tt.wantVolume {
				t.Errorf("Prosody() = %+v, want rate %d volume %d", got, tt.wantRate, tt.wantVolume)
			}
		})
	}
}

func TestEngine_CloseClosesBackend(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	e, err := NewEngine(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		t.Error("backend not closed")
	}
}

// ---------------------------------------------------------------------------
// Narration
// ---------------------------------------------------------------------------

func TestEngine_SpeakReportsSegmentOffsets(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.autoFinish = true
	e := newTestEngine(t, b)
	rec := newRecorder()

	e.Speak("One. Two. Three.", rec.onProgress, rec.onDone)

	if err := rec.waitDone(t); err != nil {
		t.Fatalf("onDone(%v), want nil", err)
	}
	close(rec.progress)
	var offsets []int
	for off := range rec.progress {
		offsets = append(offsets, off)
	}
	want := []int{0, 5, 10, 16}
	if len(offsets) != len(want) {
		t.Fatalf("offsets = %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("offsets = %v, want %v", offsets, want)
		}
	}
	rec.expectNoDone(t)
}

func TestEngine_SpeakEmptyTextCompletes(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	e := newTestEngine(t, b)
	rec := newRecorder()

	e.Speak("   ", rec.onProgress, rec.onDone)
	if err := rec.waitDone(t); err != nil {
		t.Fatalf("onDone(%v), want nil", err)
	}
	b.expectIdle(t)
}

func TestEngine_SegmentUsesCurrentProsody(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	e := newTestEngine(t, b)
	rec := newRecorder()

	e.Speak("One. Two.", rec.onProgress, rec.onDone)
	first := b.next(t)
	e.SetRate(4)
	e.SetVolume(30)
	first.release()

	second := b.next(t)
	if second.prosody != (Prosody{Rate: 4, Volume: 30}) {
		t.Errorf("second segment prosody = %+v, want rate 4 volume 30", second.prosody)
	}
	second.release()
	if err := rec.waitDone(t); err != nil {
		t.Fatal(err)
	}
}

func TestEngine_CancelSuppressesCallbacks(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	e := newTestEngine(t, b)
	rec := newRecorder()

	e.Speak("One. Two.", rec.onProgress, rec.onDone)
	u := b.next(t)
	e.Cancel()

	if err := u.Wait(); !errors.Is(err, ErrCancelled) {
		t.Errorf("utterance Wait() = %v, want ErrCancelled", err)
	}
	rec.expectNoDone(t)
	b.expectIdle(t)
}

func TestEngine_SpeakReplacesPrevious(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	e := newTestEngine(t, b)
	first, second := newRecorder(), newRecorder()

	e.Speak("Old text.", first.onProgress, first.onDone)
	old := b.next(t)

	e.Speak("New text.", second.onProgress, second.onDone)
	fresh := b.next(t)
	fresh.release()

	if err := second.waitDone(t); err != nil {
		t.Fatalf("second onDone(%v), want nil", err)
	}
	if err := old.Wait(); !errors.Is(err, ErrCancelled) {
		t.Errorf("old utterance Wait() = %v, want ErrCancelled", err)
	}
	first.expectNoDone(t)
}

func TestEngine_UtterErrorReportsSynthesis(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.utterErr = errors.New("network down")
	e := newTestEngine(t, b)
	rec := newRecorder()

	e.Speak("Hello.", rec.onProgress, rec.onDone)
	if err := rec.waitDone(t); !errors.Is(err, ErrSynthesis) {
		t.Fatalf("onDone(%v), want ErrSynthesis", err)
	}
}

func TestEngine_PauseResumeMidSegment(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	e := newTestEngine(t, b)
	rec := newRecorder()

	e.Speak("One. Two.", rec.onProgress, rec.onDone)
	u := b.next(t)

	e.Pause()
	eventually(t, u.isPaused, "utterance not paused")
	e.Resume()
	if u.isPaused() {
		t.Fatal("utterance still paused after Resume")
	}
	u.release()
	b.next(t).release()
	if err := rec.waitDone(t); err != nil {
		t.Fatal(err)
	}
}

func TestEngine_PauseHoldsNextSegment(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.pauseErr = errors.New("cannot pause")
	e := newTestEngine(t, b)
	rec := newRecorder()

	e.Speak("One. Two.", rec.onProgress, rec.onDone)
	first := b.next(t)
	e.Pause()
	first.release()

	// The second segment must wait for Resume.
	b.expectIdle(t)
	rec.expectNoDone(t)

	e.Resume()
	b.next(t).release()
	if err := rec.waitDone(t); err != nil {
		t.Fatal(err)
	}
}

func TestEngine_CancelWhilePaused(t *testing.T) {
	t.Parallel()

	b := newFakeBackend()
	b.pauseErr = errors.New("cannot pause")
	e := newTestEngine(t, b)
	rec := newRecorder()

	e.Speak("One. Two.", rec.onProgress, rec.onDone)
	first := b.next(t)
	e.Pause()
	first.release()
	e.Cancel()

	b.expectIdle(t)
	rec.expectNoDone(t)
}

func TestEngine_PauseWithoutNarrationIsNoop(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newFakeBackend())
	e.Pause()
	e.Resume()
	e.Cancel()
}
