package speech

import "context"

// Backend voices single segments.
type Backend interface {
	// Name identifies the backend ("espeak", "google", ...).
	Name() string

	// Voices lists the voices the backend can use.
	Voices(ctx context.Context) ([]Voice, error)

	// Utter starts speaking text and returns without waiting for it to finish.
	// Cancelling ctx stops the utterance.
	Utter(ctx context.Context, text string, voice Voice, prosody Prosody) (Utterance, error)
}

// Utterance is a handle on one segment being spoken.
type Utterance interface {
	// Wait blocks until the segment finished or was cancelled.
	Wait() error
	// Pause holds output where it is. Backends that cannot pause mid-segment
	// return an error; the Engine then pauses at the next segment boundary.
	Pause() error
	Resume() error
	Cancel()
}
