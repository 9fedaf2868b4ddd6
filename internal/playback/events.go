package playback

import (
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/wavesplay/internal/player"
)

// StateChange is emitted when the backend's canonical state changes.
type StateChange struct {
	Previous player.State
	Current  player.State
}

// TrackChange is emitted whenever a new track session starts.
//
// Emitted by:
//   - Load, SkipNext, SkipPrevious
//   - the tick loop, when a track ends and the next one is started
//   - Play, when it restarts a track that had ended or been stopped
//
// Consumers should treat it as "progress starts from zero".
type TrackChange struct {
	Previous *Track
	Current  *Track
}

// PositionChange is emitted when a seek succeeds.
type PositionChange struct {
	Position time.Duration
}

// PreviewEnded is emitted once when an unauthenticated session has used up
// its preview. The engine keeps playing; consumers are expected to pause
// and prompt for sign-up.
type PreviewEnded struct {
	TrackID   string
	Track     *Track
	Timestamp time.Time
	Accrued   time.Duration
}

// QualifyingPlayRecorded is emitted once when an authenticated session has
// accrued enough playing time to pay the artist. ID is unique per event and
// is used as the idempotency key when recording it.
type QualifyingPlayRecorded struct {
	ID        uuid.UUID
	TrackID   string
	Track     *Track
	Timestamp time.Time
	Accrued   time.Duration
}

// ErrorEvent is emitted when a control operation fails or the backend is
// lost.
type ErrorEvent struct {
	Operation string // e.g. "play", "seek"
	Source    string // track source if applicable
	Err       error
}
