// internal/player/state.go
package player

import "time"

// State is the canonical playback state every backend reports.
//
//	Idle ──load──▶ Loading ──▶ Paused ◀──pause/play──▶ Playing ──end──▶ Stopped
//	                 │                                    ▲
//	                 └──▶ Buffering ──ready──────────────┘
//
// Idle and Stopped are terminal: the sampler stops polling until a new
// track is loaded.
type State int

const (
	Idle State = iota
	Loading
	Buffering
	Playing
	Paused
	Stopped
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case Buffering:
		return "Buffering"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// IsTerminal returns true for states that end sampling of the current track.
func (s State) IsTerminal() bool {
	return s == Idle || s == Stopped
}

// IsActive returns true if a track is loaded and not finished.
func (s State) IsActive() bool {
	return !s.IsTerminal()
}

// Snapshot is the normalized, point-in-time playback state of a backend.
type Snapshot struct {
	Position time.Duration
	Duration time.Duration // 0 when unknown
	Buffered time.Duration
	State    State
}

// PositionSeconds returns the position in fractional seconds.
func (s Snapshot) PositionSeconds() float64 { return s.Position.Seconds() }

// DurationSeconds returns the duration in fractional seconds.
func (s Snapshot) DurationSeconds() float64 { return s.Duration.Seconds() }

// BufferedSeconds returns the buffered amount in fractional seconds.
func (s Snapshot) BufferedSeconds() float64 { return s.Buffered.Seconds() }

// Normalize clamps negative values to zero and the position and buffered
// amount to the duration once it is known.
func (s Snapshot) Normalize() Snapshot {
	s.Position = max(s.Position, 0)
	s.Duration = max(s.Duration, 0)
	s.Buffered = max(s.Buffered, 0)
	if s.Duration > 0 {
		s.Position = min(s.Position, s.Duration)
		s.Buffered = min(s.Buffered, s.Duration)
	}
	return s
}
