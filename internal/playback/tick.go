package playback

import (
	"errors"
	"time"

	"github.com/llehouerou/wavesplay/internal/monetize"
	"github.com/llehouerou/wavesplay/internal/player"
)

// opQuery labels backend loss detected while sampling.
const opQuery player.Op = "query"

// Tick samples the backend, evaluates the session and publishes any
// resulting events, all under the engine lock.
func (s *serviceImpl) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.tickLocked(s.clock.Now())
}

func (s *serviceImpl) tickLocked(now time.Time) {
	snap, ok := s.sampler.Sample(now)
	if !ok {
		return
	}

	if ts, ok := s.store.Session(); ok {
		d := monetize.Evaluate(snap, ts, now, s.th)
		if s.store.Commit(d.Session) {
			if from, to := ts.Phase(), d.Session.Phase(); from != to {
				s.log.Debug().
					Str("track_id", ts.TrackID).
					Stringer("from", from).
					Stringer("phase", to).
					Dur("accrued", monetize.Elapsed(d.Session, now)).
					Msg("session phase changed")
			}
			if d.Event != nil {
				s.publishLocked(*d.Event)
			}
		}
	}

	if err := s.sampler.Err(); err != nil {
		s.failLocked(opQuery, s.currentSource(), err)
	}
	if snap.State == player.Stopped && s.advanceLocked() {
		return
	}
	s.observeStateLocked(snap.State)
}

// advanceLocked starts the next queued track after the current one played
// to its end. It reports false when the queue is exhausted.
func (s *serviceImpl) advanceLocked() bool {
	t, err := s.backend.SkipNext()
	if err != nil {
		if !errors.Is(err, player.ErrNoNext) {
			s.failLocked(player.OpSkipNext, s.currentSource(), err)
		}
		return false
	}
	s.startSessionLocked(t)
	if err := s.backend.Play(); err != nil {
		s.failLocked(player.OpPlay, s.currentSource(), err)
	}
	s.syncStateLocked()
	return true
}
