package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// ErrEmptyAudio indicates a synthesizer returned no audio.
var ErrEmptyAudio = errors.New("empty audio")

// bytesPerFrame is one 16-bit little-endian stereo frame.
const bytesPerFrame = 4

// Clip is decoded 16-bit stereo PCM.
type Clip struct {
	PCM        []byte
	SampleRate int
}

// DecodeMP3 decodes a complete MP3 stream into a Clip.
func DecodeMP3(data []byte) (*Clip, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode: %w", err)
	}
	if len(pcm) == 0 {
		return nil, ErrEmptyAudio
	}

	return &Clip{PCM: pcm, SampleRate: decoder.SampleRate()}, nil
}

// Resample converts 16-bit stereo PCM from one rate to another by linear
// interpolation. Returns pcm unchanged when the rates match.
func Resample(pcm []byte, from, to int) []byte {
	if from == to || from <= 0 || to <= 0 || len(pcm) < bytesPerFrame {
		return pcm
	}

	inFrames := len(pcm) / bytesPerFrame
	outFrames := int(int64(inFrames) * int64(to) / int64(from))
	if outFrames == 0 {
		return nil
	}
	out := make([]byte, outFrames*bytesPerFrame)

	step := float64(from) / float64(to)
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)
		next := j + 1
		if next >= inFrames {
			next = inFrames - 1
		}
		for ch := 0; ch < 2; ch++ {
			a := sampleAt(pcm, j, ch)
			b := sampleAt(pcm, next, ch)
			v := float64(a) + (float64(b)-float64(a))*frac
			putSample(out, i, ch, int16(v))
		}
	}
	return out
}

func sampleAt(pcm []byte, frame, ch int) int16 {
	i := frame*bytesPerFrame + ch*2
	return int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
}

func putSample(pcm []byte, frame, ch int, v int16) {
	i := frame*bytesPerFrame + ch*2
	pcm[i] = byte(uint16(v))
	pcm[i+1] = byte(uint16(v) >> 8)
}

// Duration returns the playing time of 16-bit stereo PCM in milliseconds.
func Duration(pcm []byte, sampleRate int) int64 {
	if sampleRate <= 0 {
		return 0
	}
	return int64(len(pcm)/bytesPerFrame) * 1000 / int64(sampleRate)
}
