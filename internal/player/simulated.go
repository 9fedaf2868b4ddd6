package player

import (
	"sync"
	"time"

	"github.com/llehouerou/wavesplay/internal/playlist"
)

// Simulated keeps playback state purely in memory. It stands in for the
// hardware backend when no audio device can be acquired, so the engine
// behaves the same with or without one. Position only moves through
// SeekTo and Advance.
type Simulated struct {
	mu       sync.Mutex
	queue    *playlist.PlayingQueue
	state    State
	position time.Duration
	duration time.Duration
}

// NewSimulated creates an idle simulated backend.
func NewSimulated() *Simulated {
	return &Simulated{
		queue: playlist.NewQueue(),
		state: Idle,
	}
}

func (s *Simulated) Load(tracks ...playlist.Track) (*playlist.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := s.queue.Replace(tracks...)
	if first == nil {
		s.state = Idle
		s.position, s.duration = 0, 0
		return nil, controlErr(OpLoad, ErrNoTrack)
	}
	s.loadLocked(*first)
	return first, nil
}

func (s *Simulated) loadLocked(t playlist.Track) {
	s.position = 0
	s.duration = max(t.Duration, 0)
	s.state = Paused
}

func (s *Simulated) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Idle:
		return controlErr(OpPlay, ErrNoTrack)
	case Stopped:
		if s.duration > 0 && s.position >= s.duration {
			s.position = 0
		}
	case Loading, Buffering, Playing, Paused:
	}
	s.state = Playing
	return nil
}

func (s *Simulated) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Idle {
		return controlErr(OpPause, ErrNoTrack)
	}
	if s.state == Playing {
		s.state = Paused
	}
	return nil
}

func (s *Simulated) SeekTo(position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Idle {
		return controlErr(OpSeek, ErrNoTrack)
	}
	position = max(position, 0)
	if s.duration > 0 {
		position = min(position, s.duration)
	}
	s.position = position
	if s.state == Stopped && (s.duration == 0 || position < s.duration) {
		s.state = Paused
	}
	return nil
}

func (s *Simulated) SkipNext() (*playlist.Track, error) {
	return s.skip(OpSkipNext, s.queue.Next, ErrNoNext)
}

func (s *Simulated) SkipPrevious() (*playlist.Track, error) {
	return s.skip(OpSkipPrevious, s.queue.Previous, ErrNoPrevious)
}

func (s *Simulated) skip(op Op, move func() *playlist.Track, none error) (*playlist.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.IsEmpty() {
		return nil, controlErr(op, ErrNoTrack)
	}
	wasPlaying := s.state == Playing
	t := move()
	if t == nil {
		return nil, controlErr(op, none)
	}
	s.loadLocked(*t)
	if wasPlaying {
		s.state = Playing
	}
	return t, nil
}

func (s *Simulated) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		s.state = Stopped
	}
	return nil
}

// Advance moves the position forward by d while playing, clamped to the
// duration. Reaching the end of a track with a known duration stops it.
func (s *Simulated) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Playing || d <= 0 {
		return
	}
	s.position += d
	if s.duration > 0 && s.position >= s.duration {
		s.position = s.duration
		s.state = Stopped
	}
}

func (s *Simulated) Query() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Position: s.position,
		Duration: s.duration,
		Buffered: s.duration,
		State:    s.state,
	}, nil
}

// Current returns the loaded track, or nil if none.
func (s *Simulated) Current() *playlist.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Current()
}

func (s *Simulated) Close() error { return nil }
