// Package session holds what is currently playing and what has already
// happened for it.
//
// Writes follow a single-writer-per-field rule: the snapshot is written
// only by the progress sampler (WriteSnapshot) and the accrual and latch
// fields of a TrackSession only by the monetization evaluator (Commit).
// Every write carries the generation it was computed for, so work done for
// a track that has since been replaced is discarded.
package session

import (
	"sync"
	"time"

	"github.com/llehouerou/wavesplay/internal/player"
)

// Phase is the monetization progress of a session.
type Phase int

const (
	NotStarted Phase = iota // no playing time observed
	Armed                   // accruing toward the threshold
	Fired                   // the session's event has been emitted
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "NotStarted"
	case Armed:
		return "Armed"
	case Fired:
		return "Fired"
	default:
		return "Unknown"
	}
}

// TrackSession is the per-track record of accrued playing time and
// emitted events.
type TrackSession struct {
	TrackID       string
	IsPreviewMode bool
	LoadedAt      time.Time
	Generation    uint64

	// Evaluator-owned.
	PlayStartedAt             *time.Time    // start of the open Playing interval
	Accrued                   time.Duration // closed Playing intervals
	LastSampleAt              time.Time     // previous evaluated tick
	HasRecordedQualifyingPlay bool
	HasFiredPreviewCutoff     bool
}

// Phase derives the session's monetization phase.
func (s TrackSession) Phase() Phase {
	if s.IsPreviewMode && s.HasFiredPreviewCutoff || !s.IsPreviewMode && s.HasRecordedQualifyingPlay {
		return Fired
	}
	if s.Accrued > 0 || s.PlayStartedAt != nil {
		return Armed
	}
	return NotStarted
}

// clone returns a copy that shares no pointers with s.
func (s TrackSession) clone() TrackSession {
	if s.PlayStartedAt != nil {
		t := *s.PlayStartedAt
		s.PlayStartedAt = &t
	}
	return s
}

// Store is the shared record of the loaded track's session and its latest
// snapshot. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	snapshot   player.Snapshot
	session    *TrackSession
	generation uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{snapshot: player.Snapshot{State: player.Idle}}
}

// Load replaces the session with a fresh one for trackID. Nothing carries
// over from the previous session.
func (s *Store) Load(trackID string, preview bool, now time.Time) TrackSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.session = &TrackSession{
		TrackID:       trackID,
		IsPreviewMode: preview,
		LoadedAt:      now,
		Generation:    s.generation,
		LastSampleAt:  now,
	}
	s.snapshot = player.Snapshot{State: player.Loading}
	return s.session.clone()
}

// Clear drops the session after an explicit stop.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.session = nil
	s.snapshot = player.Snapshot{State: player.Idle}
}

// WriteSnapshot replaces the snapshot. It reports false and changes
// nothing if gen is not the current generation.
func (s *Store) WriteSnapshot(gen uint64, snap player.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || gen != s.generation {
		return false
	}
	s.snapshot = snap
	return true
}

// Commit stores the evaluator-owned fields of ts. Identity fields are
// ignored and latches never go back to false. It reports false and changes
// nothing if ts belongs to a replaced session.
func (s *Store) Commit(ts TrackSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || ts.Generation != s.generation {
		return false
	}
	cur := s.session
	next := ts.clone()
	cur.PlayStartedAt = next.PlayStartedAt
	cur.Accrued = next.Accrued
	cur.LastSampleAt = next.LastSampleAt
	cur.HasRecordedQualifyingPlay = cur.HasRecordedQualifyingPlay || next.HasRecordedQualifyingPlay
	cur.HasFiredPreviewCutoff = cur.HasFiredPreviewCutoff || next.HasFiredPreviewCutoff
	return true
}

// Snapshot returns the latest snapshot.
func (s *Store) Snapshot() player.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Session returns a copy of the current session, or false if none.
func (s *Store) Session() (TrackSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return TrackSession{}, false
	}
	return s.session.clone(), true
}

// Generation returns the current generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}
