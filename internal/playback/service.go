package playback

import (
	"context"
	"time"

	"github.com/llehouerou/wavesplay/internal/capability"
	"github.com/llehouerou/wavesplay/internal/player"
	"github.com/llehouerou/wavesplay/internal/session"
)

// Service defines the playback engine contract.
type Service interface {
	// Playback control
	Load(tracks ...Track) (*Track, error) // Replace the queue and load its first track
	Play() error
	Pause() error
	Toggle() error
	Stop() error
	SeekTo(position time.Duration) error
	SkipNext() (*Track, error)
	SkipPrevious() (*Track, error)

	// Sampling
	Tick()                        // Sample, evaluate and publish once
	Run(ctx context.Context) error // Tick on the configured interval

	// State queries
	State() player.State // Live backend state
	IsPlaying() bool
	Snapshot() player.Snapshot // Last sampled snapshot
	Session() (session.TrackSession, bool)
	CurrentTrack() *Track
	Mode() capability.Mode

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// AuthSource tells whether the listener is unauthenticated. It is read
// once per track load.
type AuthSource interface {
	IsPreviewMode() (bool, error)
}

// AuthFunc adapts a function to AuthSource.
type AuthFunc func() (bool, error)

func (f AuthFunc) IsPreviewMode() (bool, error) { return f() }
