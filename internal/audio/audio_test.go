package audio

// Notes:
// - Default/Output.Play need a real audio device and are exercised by the
//   doctor command, not here. Playback logic is tested with a fake player.

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakePlayer drains after a fixed number of IsPlaying polls while playing.
type fakePlayer struct {
	mu        sync.Mutex
	playing   bool
	remaining int
	volume    float64
	closed    bool
	err       error
}

func (f *fakePlayer) Play()  { f.mu.Lock(); f.playing = true; f.mu.Unlock() }
func (f *fakePlayer) Pause() { f.mu.Lock(); f.playing = false; f.mu.Unlock() }
func (f *fakePlayer) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playing {
		f.remaining--
		if f.remaining <= 0 {
			f.playing = false
		}
	}
	return f.playing
}
func (f *fakePlayer) SetVolume(v float64) { f.mu.Lock(); f.volume = v; f.mu.Unlock() }
func (f *fakePlayer) Err() error          { return f.err }
func (f *fakePlayer) Close() error        { f.mu.Lock(); f.closed = true; f.mu.Unlock(); return nil }

func waitTimeout(t *testing.T, pb *Playback) error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- pb.Wait() }()
	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Wait() did not return")
		return nil
	}
}

func TestPlayback_CompletesWhenDrained(t *testing.T) {
	t.Parallel()

	fp := &fakePlayer{remaining: 3}
	pb := startPlayback(fp, 1.7)

	if err := waitTimeout(t, pb); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if !fp.closed {
		t.Error("player should be closed after completion")
	}
	if fp.volume != 1 {
		t.Errorf("volume = %v, want clamped to 1", fp.volume)
	}
}

func TestPlayback_ReportsPlayerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("device lost")
	pb := startPlayback(&fakePlayer{remaining: 1, err: boom}, 0.5)

	if err := waitTimeout(t, pb); !errors.Is(err, boom) {
		t.Errorf("Wait() = %v, want %v", err, boom)
	}
}

func TestPlayback_Cancel(t *testing.T) {
	t.Parallel()

	pb := startPlayback(&fakePlayer{remaining: 1 << 30}, 1)
	pb.Cancel()

	if err := waitTimeout(t, pb); !errors.Is(err, ErrCancelled) {
		t.Errorf("Wait() = %v, want ErrCancelled", err)
	}
	// Calls after completion are no-ops.
	pb.Cancel()
	if err := pb.Pause(); err != nil {
		t.Errorf("Pause() after cancel = %v", err)
	}
}

func TestPlayback_PausedDoesNotComplete(t *testing.T) {
	t.Parallel()

	fp := &fakePlayer{remaining: 5}
	pb := startPlayback(fp, 1)
	if err := pb.Pause(); err != nil {
		t.Fatalf("Pause() = %v", err)
	}

	select {
	case <-pb.done:
		t.Fatal("paused playback completed")
	case <-time.After(10 * pollInterval):
	}

	if err := pb.Resume(); err != nil {
		t.Fatalf("Resume() = %v", err)
	}
	if err := waitTimeout(t, pb); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
}

// ---------------------------------------------------------------------------
// Decoding and resampling
// ---------------------------------------------------------------------------

func TestDecodeMP3_Errors(t *testing.T) {
	t.Parallel()

	if _, err := DecodeMP3(nil); !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("DecodeMP3(nil) = %v, want ErrEmptyAudio", err)
	}
	if _, err := DecodeMP3([]byte("definitely not an mp3 stream")); err == nil {
		t.Error("DecodeMP3(garbage) should fail")
	}
}

// frames builds stereo PCM where both channels carry the given samples.
func frames(samples ...int16) []byte {
	pcm := make([]byte, len(samples)*bytesPerFrame)
	for i, s := range samples {
		putSample(pcm, i, 0, s)
		putSample(pcm, i, 1, s)
	}
	return pcm
}

func TestResample(t *testing.T) {
	t.Parallel()

	in := frames(0, 100, 200, 300)

	if got := Resample(in, 48000, 48000); &got[0] != &in[0] {
		t.Error("same rate should return input unchanged")
	}

	up := Resample(in, 24000, 48000)
	if len(up) != 8*bytesPerFrame {
		t.Fatalf("upsampled frames = %d, want 8", len(up)/bytesPerFrame)
	}
	want := []int16{0, 50, 100, 150, 200, 250, 300, 300}
	for i, w := range want {
		if got := sampleAt(up, i, 0); got != w {
			t.Errorf("frame %d left = %d, want %d", i, got, w)
		}
		if got := sampleAt(up, i, 1); got != w {
			t.Errorf("frame %d right = %d, want %d", i, got, w)
		}
	}

	down := Resample(in, 48000, 24000)
	if len(down) != 2*bytesPerFrame {
		t.Fatalf("downsampled frames = %d, want 2", len(down)/bytesPerFrame)
	}
	if sampleAt(down, 1, 0) != 200 {
		t.Errorf("downsampled frame 1 = %d, want 200", sampleAt(down, 1, 0))
	}
}

func TestSampleRoundTripNegative(t *testing.T) {
	t.Parallel()

	pcm := frames(-32768, -1, 32767)
	for i, want := range []int16{-32768, -1, 32767} {
		if got := sampleAt(pcm, i, 0); got != want {
			t.Errorf("sampleAt(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()

	if got := Duration(make([]byte, 48000*bytesPerFrame), 48000); got != 1000 {
		t.Errorf("Duration() = %d, want 1000", got)
	}
	if got := Duration(make([]byte, 16), 0); got != 0 {
		t.Errorf("Duration() with zero rate = %d, want 0", got)
	}
}
