// Package sampler polls the active backend once per tick and writes the
// normalized snapshot into the session store.
package sampler

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesplay/internal/capability"
	"github.com/llehouerou/wavesplay/internal/metrics"
	"github.com/llehouerou/wavesplay/internal/player"
	"github.com/llehouerou/wavesplay/internal/session"
)

// advancer is implemented by backends whose clock is driven by the
// sampler rather than by real audio output.
type advancer interface {
	Advance(d time.Duration)
}

// Sampler is not safe for concurrent use; the engine calls it under its
// own lock.
type Sampler struct {
	backend player.Interface
	adv     advancer
	store   *session.Store
	log     zerolog.Logger

	gen       uint64
	lastTick  time.Time
	suspended bool
	lostErr   error
}

// New creates a sampler for backend. In Simulated mode the backend's
// position is advanced by the wall-clock time between ticks. The sampler
// stays suspended until the first Reset.
func New(backend player.Interface, mode capability.Mode, store *session.Store, log zerolog.Logger) *Sampler {
	s := &Sampler{
		backend:   backend,
		store:     store,
		log:       log,
		suspended: true,
	}
	if mode == capability.Simulated {
		if adv, ok := backend.(advancer); ok {
			s.adv = adv
		}
	}
	return s
}

// Reset starts sampling the session of generation gen, loaded at now.
func (s *Sampler) Reset(gen uint64, now time.Time) {
	s.gen = gen
	s.lastTick = now
	s.suspended = false
	s.lostErr = nil
}

// Suspend stops sampling until the next Reset.
func (s *Sampler) Suspend() {
	s.suspended = true
}

// Err returns the error that lost the backend for the current session,
// or nil.
func (s *Sampler) Err() error {
	return s.lostErr
}

// Suspended reports whether sampling is paused until the next Reset.
func (s *Sampler) Suspended() bool {
	return s.suspended
}

// Sample runs one tick at now. It returns the snapshot written to the store
// and true, or false if nothing was written: the sampler is suspended, the
// backend query failed transiently, or the session was replaced.
//
// A terminal state suspends sampling after it has been written. A lost
// backend is written as Idle at the last known position.
func (s *Sampler) Sample(now time.Time) (player.Snapshot, bool) {
	if s.suspended {
		metrics.RecordSample(metrics.SampleSuspended)
		return player.Snapshot{}, false
	}

	elapsed := now.Sub(s.lastTick)
	if now.After(s.lastTick) {
		s.lastTick = now
	}

	snap, err := s.backend.Query()
	if err == nil && s.adv != nil && snap.State == player.Playing && elapsed > 0 {
		s.adv.Advance(elapsed)
		snap, err = s.backend.Query()
	}

	if err != nil {
		if errors.Is(err, player.ErrBackendLost) {
			return s.lost(err)
		}
		s.log.Debug().Err(err).Msg("query failed, skipping tick")
		metrics.RecordSample(metrics.SampleSkipped)
		return player.Snapshot{}, false
	}

	snap = snap.Normalize()
	if !s.store.WriteSnapshot(s.gen, snap) {
		s.suspended = true
		metrics.RecordSample(metrics.SampleSkipped)
		return player.Snapshot{}, false
	}
	if snap.State.IsTerminal() {
		s.log.Debug().Stringer("state", snap.State).Msg("terminal state, suspending")
		s.suspended = true
	}
	metrics.RecordSample(metrics.SampleOK)
	return snap, true
}

func (s *Sampler) lost(err error) (player.Snapshot, bool) {
	s.suspended = true
	s.lostErr = err
	metrics.RecordSample(metrics.SampleLost)
	s.log.Error().Err(err).Msg("playback backend lost")

	prev := s.store.Snapshot()
	snap := player.Snapshot{
		Position: prev.Position,
		Duration: prev.Duration,
		State:    player.Idle,
	}
	if !s.store.WriteSnapshot(s.gen, snap) {
		return player.Snapshot{}, false
	}
	return snap, true
}
