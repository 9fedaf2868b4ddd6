package playback

import (
	"time"

	"github.com/llehouerou/wavesplay/internal/player"
	"github.com/llehouerou/wavesplay/internal/playlist"
)

// Load replaces the backend queue and starts a session for its first
// track. Progress of the previous session is discarded.
func (s *serviceImpl) Load(tracks ...Track) (*Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	t, err := s.backend.Load(toPlaylist(tracks)...)
	if err != nil {
		source := ""
		if t != nil {
			source = t.Source
		}
		s.clearSessionLocked()
		s.current = nil
		s.failLocked(player.OpLoad, source, err)
		s.syncStateLocked()
		return nil, err
	}
	s.startSessionLocked(t)
	s.syncStateLocked()
	return s.current.clone(), nil
}

// Play starts or resumes playback. Playing a track that has ended or was
// stopped starts a new session for it.
func (s *serviceImpl) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.backend.Play(); err != nil {
		s.failLocked(player.OpPlay, s.currentSource(), err)
		return err
	}
	if s.sampler.Suspended() && s.current != nil {
		s.restartSessionLocked()
	}
	s.syncStateLocked()
	return nil
}

func (s *serviceImpl) restartSessionLocked() {
	t := s.current
	s.startSessionLocked(&playlist.Track{
		ID:       t.ID,
		Source:   t.Source,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    t.Album,
		Duration: t.Duration,
	})
}

// Pause pauses playback.
func (s *serviceImpl) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.backend.Pause(); err != nil {
		s.failLocked(player.OpPause, s.currentSource(), err)
		return err
	}
	s.syncStateLocked()
	return nil
}

// Toggle pauses when playing and plays otherwise.
func (s *serviceImpl) Toggle() error {
	if s.IsPlaying() {
		return s.Pause()
	}
	return s.Play()
}

// Stop halts playback and clears the session.
func (s *serviceImpl) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.backend.Stop(); err != nil {
		s.failLocked(player.OpStop, s.currentSource(), err)
		return err
	}
	s.clearSessionLocked()
	s.syncStateLocked()
	return nil
}

// SeekTo moves to an absolute position. Seeking does not change accrued
// playing time.
func (s *serviceImpl) SeekTo(position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.backend.SeekTo(position); err != nil {
		s.failLocked(player.OpSeek, s.currentSource(), err)
		return err
	}
	if snap, err := s.backend.Query(); err == nil {
		s.emitPosition(snap.Position)
		s.observeStateLocked(snap.State)
	}
	return nil
}

// SkipNext moves to the next queued track and starts a session for it.
func (s *serviceImpl) SkipNext() (*Track, error) {
	return s.skip(player.OpSkipNext, s.backend.SkipNext)
}

// SkipPrevious moves to the previous queued track and starts a session
// for it.
func (s *serviceImpl) SkipPrevious() (*Track, error) {
	return s.skip(player.OpSkipPrevious, s.backend.SkipPrevious)
}

func (s *serviceImpl) skip(op player.Op, move func() (*playlist.Track, error)) (*Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	t, err := move()
	if err != nil {
		s.failLocked(op, s.currentSource(), err)
		return nil, err
	}
	s.startSessionLocked(t)
	s.syncStateLocked()
	return s.current.clone(), nil
}
