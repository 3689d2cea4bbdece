package speech

import (
	"context"
	"fmt"

	"github.com/alnah/go-mdnarrate/internal/audio"
)

// clipPlayer starts a decoded clip at the given gain.
type clipPlayer func(clip *audio.Clip, gain float64) (Utterance, error)

// playOnDefault plays on the shared audio device.
func playOnDefault(clip *audio.Clip, gain float64) (Utterance, error) {
	out, err := audio.Default()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out.Play(clip, gain)
}

// playMP3 decodes data and starts it through play. The returned utterance
// is cancelled when ctx is.
func playMP3(ctx context.Context, play clipPlayer, data []byte, gain float64) (Utterance, error) {
	clip, err := audio.DecodeMP3(data)
	if err != nil {
		return nil, err
	}
	u, err := play(clip, gain)
	if err != nil {
		return nil, err
	}
	return &boundUtterance{Utterance: u, stop: context.AfterFunc(ctx, u.Cancel)}, nil
}

// boundUtterance releases its context hook once finished.
type boundUtterance struct {
	Utterance
	stop func() bool
}

func (b *boundUtterance) Wait() error {
	err := b.Utterance.Wait()
	b.stop()
	return err
}
