// internal/player/interface.go
package player

import (
	"time"

	"github.com/llehouerou/wavesplay/internal/playlist"
)

// Interface is the playback capability set shared by the hardware and
// simulated backends. Control operations return *ControlError on failure.
type Interface interface {
	// Load replaces the queue and loads its first track.
	Load(tracks ...playlist.Track) (*playlist.Track, error)
	Play() error
	Pause() error
	SeekTo(position time.Duration) error
	SkipNext() (*playlist.Track, error)
	SkipPrevious() (*playlist.Track, error)
	Stop() error
	Query() (Snapshot, error)
	Close() error
}

// Verify backends implement Interface at compile time.
var (
	_ Interface = (*Player)(nil)
	_ Interface = (*Simulated)(nil)
)
