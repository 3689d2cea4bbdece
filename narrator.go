package mdnarrate

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"
)

// Rate and volume ranges accepted by SetRate and SetVolume.
const (
	MinRate   = -10
	MaxRate   = 10
	MinVolume = 0
	MaxVolume = 100
)

// defaultEventBuffer sizes the narration event channel.
const defaultEventBuffer = 64

// SpeechEngine is the text-to-speech engine driven by a Narrator.
//
// Speak returns immediately. onProgress receives rune offsets into text as
// narration advances and onDone fires once when the text is finished; both
// may be called from any goroutine and neither is called after Cancel or a
// newer Speak.
type SpeechEngine interface {
	Name() string
	Speak(text string, onProgress func(offset int), onDone func(err error))
	Pause()
	Resume()
	Cancel()
	SetRate(rate int)     // -10..10
	SetVolume(volume int) // 0..100
	Voices() []Voice
	SelectVoice(name string) error
	CurrentVoice() Voice
	Close() error
}

// Narrator owns narration state over a SpeechEngine and turns engine
// callbacks into events on a single channel.
type Narrator struct {
	engine SpeechEngine
	logger *slog.Logger
	events chan NarrationEvent
	closed chan struct{}

	mu        sync.Mutex
	status    Status
	offset    int
	length    int
	rate      int
	volume    int
	utterance uint64
	closeOnce sync.Once
}

// NarratorOption configures a Narrator.
type NarratorOption func(*Narrator)

// WithNarratorLogger sets the logger for swallowed failures.
func WithNarratorLogger(l *slog.Logger) NarratorOption {
	return func(n *Narrator) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithEventBuffer sets the event channel capacity.
func WithEventBuffer(size int) NarratorOption {
	return func(n *Narrator) {
		if size > 0 {
			n.events = make(chan NarrationEvent, size)
		}
	}
}

// NewNarrator creates a Narrator with rate 0 and volume 100.
func NewNarrator(engine SpeechEngine, opts ...NarratorOption) *Narrator {
	n := &Narrator{
		engine: engine,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		events: make(chan NarrationEvent, defaultEventBuffer),
		closed: make(chan struct{}),
		volume: MaxVolume,
	}
	for _, opt := range opts {
		opt(n)
	}
	engine.SetRate(n.rate)
	engine.SetVolume(n.volume)
	return n
}

// Events delivers progress and completion events. Progress events are
// dropped when the channel is full; completion events wait for a reader.
func (n *Narrator) Events() <-chan NarrationEvent {
	return n.events
}

// Speak cancels any narration and starts narrating text. Returns the
// utterance id carried by its events, or 0 when text is blank.
func (n *Narrator) Speak(text string) uint64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	n.mu.Lock()
	n.utterance++
	id := n.utterance
	n.status = StatusSpeaking
	n.offset = 0
	n.length = utf8.RuneCountInString(text)
	n.mu.Unlock()

	n.engine.Speak(text,
		func(offset int) { n.onProgress(id, offset) },
		func(err error) { n.onDone(id, err) },
	)
	return id
}

// Pause suspends narration. Only valid while speaking.
func (n *Narrator) Pause() {
	n.mu.Lock()
	if n.status != StatusSpeaking {
		n.mu.Unlock()
		return
	}
	n.status = StatusPaused
	n.mu.Unlock()
	n.engine.Pause()
}

// Resume continues a paused narration.
func (n *Narrator) Resume() {
	n.mu.Lock()
	if n.status != StatusPaused {
		n.mu.Unlock()
		return
	}
	n.status = StatusSpeaking
	n.mu.Unlock()
	n.engine.Resume()
}

// Stop cancels narration and resets the offset. No-op while idle.
func (n *Narrator) Stop() {
	n.mu.Lock()
	if n.status == StatusIdle {
		n.mu.Unlock()
		return
	}
	n.utterance++ // Invalidates callbacks of the cancelled utterance.
	n.status = StatusIdle
	n.offset = 0
	n.mu.Unlock()
	n.engine.Cancel()
}

// Status returns the playback state.
func (n *Narrator) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

// Offset returns the last reported rune offset.
func (n *Narrator) Offset() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.offset
}

// Progress returns floor(offset/length*100), or 0 when no text is loaded.
func (n *Narrator) Progress() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return percent(n.offset, n.length)
}

// SetRate sets the speaking rate, clamped to [-10, 10].
func (n *Narrator) SetRate(rate int) {
	rate = clamp(rate, MinRate, MaxRate)
	n.mu.Lock()
	n.rate = rate
	n.mu.Unlock()
	n.engine.SetRate(rate)
}

// SetVolume sets the volume, clamped to [0, 100].
func (n *Narrator) SetVolume(volume int) {
	volume = clamp(volume, MinVolume, MaxVolume)
	n.mu.Lock()
	n.volume = volume
	n.mu.Unlock()
	n.engine.SetVolume(volume)
}

// Rate returns the current rate.
func (n *Narrator) Rate() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rate
}

// Volume returns the current volume.
func (n *Narrator) Volume() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.volume
}

// Voices lists every voice of the engine.
func (n *Narrator) Voices() []Voice {
	return n.engine.Voices()
}

// VoicesByLanguage lists the voices whose culture tag starts with prefix,
// ignoring case. An empty prefix lists every voice.
func (n *Narrator) VoicesByLanguage(prefix string) []Voice {
	all := n.engine.Voices()
	if prefix == "" {
		return all
	}
	prefix = strings.ToLower(prefix)
	var out []Voice
	for _, v := range all {
		if strings.HasPrefix(strings.ToLower(v.Culture), prefix) {
			out = append(out, v)
		}
	}
	return out
}

// SelectVoice switches to the voice with the exact name. An unknown name is
// logged and ignored; the current voice stays. Reports whether it switched.
func (n *Narrator) SelectVoice(name string) bool {
	if err := n.engine.SelectVoice(name); err != nil {
		n.logger.Debug("voice not selected", "voice", name, "error", err)
		return false
	}
	return true
}

// CurrentVoice returns the active voice, or the zero Voice if none.
func (n *Narrator) CurrentVoice() Voice {
	return n.engine.CurrentVoice()
}

// EngineName returns the engine name.
func (n *Narrator) EngineName() string {
	return n.engine.Name()
}

// Close stops narration and closes the engine.
func (n *Narrator) Close() error {
	n.Stop()
	var err error
	n.closeOnce.Do(func() {
		close(n.closed)
		err = n.engine.Close()
	})
	return err
}

func (n *Narrator) onProgress(id uint64, offset int) {
	n.mu.Lock()
	if id != n.utterance || n.status == StatusIdle {
		n.mu.Unlock()
		return
	}
	n.offset = clamp(offset, 0, n.length)
	ev := NarrationEvent{
		Kind:        EventProgress,
		UtteranceID: id,
		Offset:      n.offset,
		Progress:    percent(n.offset, n.length),
	}
	n.mu.Unlock()

	select {
	case n.events <- ev:
	default:
		// A later progress event supersedes this one.
	}
}

func (n *Narrator) onDone(id uint64, err error) {
	n.mu.Lock()
	if id != n.utterance || n.status == StatusIdle {
		n.mu.Unlock()
		return
	}
	n.status = StatusIdle
	n.offset = 0
	n.mu.Unlock()

	if err != nil {
		n.logger.Warn("narration ended early", "engine", n.engine.Name(), "error", err)
	}
	select {
	case n.events <- NarrationEvent{Kind: EventCompleted, UtteranceID: id, Err: err}:
	case <-n.closed:
	}
}

// percent returns floor(offset/length*100) within [0, 100].
func percent(offset, length int) int {
	if length <= 0 {
		return 0
	}
	return clamp(offset*100/length, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
