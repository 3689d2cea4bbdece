package speech

import "errors"

// Sentinel errors for speech operations.
var (
	// ErrUnknownVoice indicates a voice name that the backend does not offer.
	ErrUnknownVoice = errors.New("unknown voice")

	// ErrUnavailable indicates a backend's prerequisites are missing
	// (binary not installed, credentials not set, no audio device).
	ErrUnavailable = errors.New("speech backend unavailable")

	// ErrSynthesis indicates the backend failed to voice a segment.
	ErrSynthesis = errors.New("speech synthesis failed")

	// ErrCancelled is returned by Utterance.Wait after Cancel.
	ErrCancelled = errors.New("utterance cancelled")

	// errNoVoices is wrapped with ErrUnavailable when a backend lists nothing.
	errNoVoices = errors.New("no voices installed")
)
