package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

// SampleRate is the rate of the shared output context.
const SampleRate = 48000

// ErrCancelled is returned by Wait when playback was cancelled.
var ErrCancelled = errors.New("playback cancelled")

// pollInterval matches how often playback completion is checked.
const pollInterval = 15 * time.Millisecond

// player is the subset of oto.Player used here.
type player interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	Err() error
	Close() error
}

// Output plays clips on the shared audio context.
type Output struct {
	ctx *oto.Context
}

var (
	sharedOnce sync.Once
	shared     *Output
	sharedErr  error
)

// Default returns the process-wide Output, opening the audio device on first use.
func Default() (*Output, error) {
	sharedOnce.Do(func() {
		ctx, ready, err := oto.NewContext(SampleRate, 2, 2)
		if err != nil {
			sharedErr = fmt.Errorf("oto context: %w", err)
			return
		}
		<-ready
		shared = &Output{ctx: ctx}
	})
	return shared, sharedErr
}

// Play starts playing clip at volume (0..1) and returns immediately.
func (o *Output) Play(clip *Clip, volume float64) (*Playback, error) {
	if clip == nil || len(clip.PCM) == 0 {
		return nil, ErrEmptyAudio
	}
	pcm := Resample(clip.PCM, clip.SampleRate, SampleRate)
	p := o.ctx.NewPlayer(bytes.NewReader(pcm))
	return startPlayback(p, volume), nil
}

// Playback is a handle on one playing clip.
type Playback struct {
	player player

	mu        sync.Mutex
	paused    bool
	cancelled bool
	finished  bool
	err       error
	done      chan struct{}
}

func startPlayback(p player, volume float64) *Playback {
	pb := &Playback{player: p, done: make(chan struct{})}
	p.SetVolume(clampUnit(volume))
	p.Play()
	go pb.watch()
	return pb
}

// watch polls the player until it drains or playback is cancelled.
func (pb *Playback) watch() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for range ticker.C {
		pb.mu.Lock()
		switch {
		case pb.cancelled:
			pb.err = ErrCancelled
		case !pb.paused && !pb.player.IsPlaying():
			pb.err = pb.player.Err()
		default:
			pb.mu.Unlock()
			continue
		}
		pb.finished = true
		pb.mu.Unlock()
		_ = pb.player.Close()
		close(pb.done)
		return
	}
}

// Wait blocks until the clip finished. Returns ErrCancelled after Cancel.
func (pb *Playback) Wait() error {
	<-pb.done
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.err
}

// Pause halts output, keeping the position.
func (pb *Playback) Pause() error {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.finished || pb.cancelled || pb.paused {
		return nil
	}
	pb.paused = true
	pb.player.Pause()
	return nil
}

// Resume continues a paused clip.
func (pb *Playback) Resume() error {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.finished || pb.cancelled || !pb.paused {
		return nil
	}
	pb.paused = false
	pb.player.Play()
	return nil
}

// Cancel stops the clip; Wait returns ErrCancelled.
func (pb *Playback) Cancel() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if !pb.finished && !pb.cancelled {
		pb.cancelled = true
		pb.player.Pause()
	}
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
