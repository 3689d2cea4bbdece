package mdnarrate

import "fmt"

// Status is the narration playback state.
type Status int

// Narration states. Paused is only reachable from Speaking.
const (
	StatusIdle Status = iota
	StatusSpeaking
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSpeaking:
		return "speaking"
	case StatusPaused:
		return "paused"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Voice describes a synthesis voice. Read-only metadata from the engine.
type Voice struct {
	Name    string `json:"name"`
	Culture string `json:"culture"`
	Gender  string `json:"gender,omitempty"`
	Age     int    `json:"age,omitempty"`
}

// DisplayName returns "Name (Gender, Culture)", leaving out unknown parts.
func (v Voice) DisplayName() string {
	switch {
	case v.Name == "":
		return ""
	case v.Gender != "" && v.Culture != "":
		return fmt.Sprintf("%s (%s, %s)", v.Name, v.Gender, v.Culture)
	case v.Culture != "":
		return fmt.Sprintf("%s (%s)", v.Name, v.Culture)
	case v.Gender != "":
		return fmt.Sprintf("%s (%s)", v.Name, v.Gender)
	}
	return v.Name
}

// Flags tells which narration commands are currently allowed.
// Recomputed and returned after every controller transition.
type Flags struct {
	CanStart  bool `json:"canStart"`
	CanPause  bool `json:"canPause"`
	CanResume bool `json:"canResume"`
	CanStop   bool `json:"canStop"`
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	Path      string   `json:"path,omitempty"`
	FileName  string   `json:"fileName,omitempty"`
	Loaded    bool     `json:"loaded"`
	Loading   bool     `json:"loading"`
	Reading   bool     `json:"reading"`
	Paused    bool     `json:"paused"`
	Progress  int      `json:"progress"`
	Rate      int      `json:"rate"`
	Volume    int      `json:"volume"`
	Zoom      float64  `json:"zoom"`
	Language  string   `json:"language"`
	Languages []string `json:"languages"`
	Voice     string   `json:"voice"`
	Voices    []string `json:"voices"`
	Flags     Flags    `json:"flags"`
	Error     string   `json:"error,omitempty"`
}

// EventKind distinguishes narration events.
type EventKind int

// Narration event kinds.
const (
	EventProgress EventKind = iota + 1
	EventCompleted
)

// NarrationEvent is delivered on Narrator.Events.
type NarrationEvent struct {
	Kind        EventKind
	UtteranceID uint64
	Offset      int   // Rune offset, EventProgress only
	Progress    int   // 0..100 at the time of the event
	Err         error // Engine failure that ended the utterance, EventCompleted only
}

// CommandName identifies a controller command.
type CommandName string

// Commands shared by the console and the web remote.
const (
	CmdStart  CommandName = "start"
	CmdPause  CommandName = "pause"
	CmdResume CommandName = "resume"
	CmdStop   CommandName = "stop"
	CmdReload CommandName = "reload"
	CmdOpen   CommandName = "open"
	CmdDrop   CommandName = "drop"
	CmdRate   CommandName = "rate"
	CmdVolume CommandName = "volume"
	CmdLang   CommandName = "lang"
	CmdVoice  CommandName = "voice"
	CmdZoom   CommandName = "zoom"
)

// Zoom command values.
const (
	ZoomIn    = "in"
	ZoomOut   = "out"
	ZoomReset = "reset"
)

// Command is a controller command with its optional argument.
// Drop carries its paths in Args; the other commands use Value.
type Command struct {
	Name  CommandName `json:"command"`
	Value string      `json:"value,omitempty"`
	Args  []string    `json:"args,omitempty"`
}
