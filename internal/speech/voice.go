package speech

import "math"

// Voice describes one voice offered by a backend.
type Voice struct {
	ID      string // Backend-specific identifier passed back to Utter
	Name    string
	Culture string // Locale tag, e.g. "es-ES"
	Gender  string // "Male", "Female", or empty
	Age     int    // 0 when unknown
}

// Prosody carries the narration settings applied to a segment.
type Prosody struct {
	Rate   int // -10..10, 0 is normal speed
	Volume int // 0..100
}

// Rate and volume ranges.
const (
	MinRate   = -10
	MaxRate   = 10
	MinVolume = 0
	MaxVolume = 100
)

// Clamp returns p with rate and volume forced into range.
func (p Prosody) Clamp() Prosody {
	return Prosody{
		Rate:   clampInt(p.Rate, MinRate, MaxRate),
		Volume: clampInt(p.Volume, MinVolume, MaxVolume),
	}
}

// SpeedFactor maps the rate to a speed multiplier: 1/3 at -10, 1 at 0, 3 at 10.
func (p Prosody) SpeedFactor() float64 {
	return math.Pow(3, float64(clampInt(p.Rate, MinRate, MaxRate))/10)
}

// Gain maps the volume to 0..1.
func (p Prosody) Gain() float64 {
	return float64(clampInt(p.Volume, MinVolume, MaxVolume)) / 100
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
