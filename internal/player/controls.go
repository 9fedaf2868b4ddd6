package player

import (
	"time"

	"github.com/llehouerou/wavesplay/internal/playlist"
)

// Load replaces the queue and loads its first track. Remote tracks return
// immediately and report Buffering until downloaded.
func (p *Player) Load(tracks ...playlist.Track) (*playlist.Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	first := p.queue.Replace(tracks...)
	if first == nil {
		p.releaseLocked()
		p.state = engineEmpty
		return nil, controlErr(OpLoad, ErrNoTrack)
	}
	if err := p.openLocked(*first); err != nil {
		return first, err
	}
	return p.queue.Current(), nil
}

// Play starts or resumes playback. While a remote track is still fetching
// the request is remembered and honored once it is ready.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.syncLocked()
	switch p.state {
	case engineEmpty, engineFaulted:
		return controlErr(OpPlay, ErrNoTrack)
	case engineOpening, engineFetching:
		p.wantPlay = true
	case engineReady, engineHeld:
		p.startLocked()
	case engineRunning:
	case engineDrained:
		if err := p.rewindLocked(); err != nil {
			return controlErr(OpPlay, err)
		}
		p.startLocked()
	case engineHalted:
		t := p.queue.Current()
		if t == nil {
			return controlErr(OpPlay, ErrNoTrack)
		}
		if err := p.openLocked(*t); err != nil {
			return err
		}
		if p.state == engineFetching {
			p.wantPlay = true
		} else {
			p.startLocked()
		}
	}
	return nil
}

// Pause holds playback. Pausing a fetching track cancels a pending play.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.syncLocked()
	switch p.state {
	case engineEmpty, engineFaulted:
		return controlErr(OpPause, ErrNoTrack)
	case engineOpening, engineFetching:
		p.wantPlay = false
	case engineRunning:
		p.out.Lock()
		p.ctrl.Paused = true
		p.out.Unlock()
		p.state = engineHeld
	case engineReady, engineHeld, engineDrained, engineHalted:
	}
	return nil
}

// SeekTo moves to an absolute position, clamped to the track.
func (p *Player) SeekTo(position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.syncLocked()
	switch p.state {
	case engineEmpty, engineFaulted, engineHalted:
		return controlErr(OpSeek, ErrNoTrack)
	case engineOpening, engineFetching:
		return controlErr(OpSeek, ErrNotReady)
	case engineReady, engineRunning, engineHeld, engineDrained:
	}

	n := p.format.SampleRate.N(max(position, 0))
	n = min(n, p.streamer.Len())

	p.out.Lock()
	err := p.streamer.Seek(n)
	p.out.Unlock()
	if err != nil {
		return controlErr(OpSeek, err)
	}
	if p.state == engineDrained && n < p.streamer.Len() {
		p.state = engineHeld
	}
	return nil
}

func (p *Player) rewindLocked() error {
	p.out.Lock()
	defer p.out.Unlock()
	return p.streamer.Seek(0)
}

// SkipNext loads the next queued track, keeping playback going if it was.
func (p *Player) SkipNext() (*playlist.Track, error) {
	return p.skip(OpSkipNext, p.queue.Next, ErrNoNext)
}

// SkipPrevious loads the previous queued track, keeping playback going if
// it was.
func (p *Player) SkipPrevious() (*playlist.Track, error) {
	return p.skip(OpSkipPrevious, p.queue.Previous, ErrNoPrevious)
}

func (p *Player) skip(op Op, move func() *playlist.Track, none error) (*playlist.Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queue.IsEmpty() {
		return nil, controlErr(op, ErrNoTrack)
	}
	p.syncLocked()
	wasPlaying := p.state == engineRunning || p.wantPlay

	t := move()
	if t == nil {
		return nil, controlErr(op, none)
	}
	if err := p.openLocked(*t); err != nil {
		return t, &ControlError{Op: op, Err: err}
	}
	if wasPlaying {
		if p.state == engineFetching {
			p.wantPlay = true
		} else {
			p.startLocked()
		}
	}
	return p.queue.Current(), nil
}

// Stop halts playback and releases the stream. Play reloads the current
// track from the start.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == engineEmpty {
		return nil
	}
	p.releaseLocked()
	p.state = engineHalted
	return nil
}
