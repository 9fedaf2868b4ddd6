//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesplay/internal/capability"
	"github.com/llehouerou/wavesplay/internal/playback"
	"github.com/llehouerou/wavesplay/internal/player"
)

func newAdapter(t *testing.T) (*playerAdapter, playback.Service, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	nop := zerolog.Nop()
	svc := playback.New(player.NewSimulated(), capability.Simulated, playback.Options{Clock: clock, Logger: &nop})
	t.Cleanup(func() { _ = svc.Close() })
	return &playerAdapter{service: svc}, svc, clock
}

func TestPlayerAdapter_PlaybackStatus(t *testing.T) {
	p, svc, _ := newAdapter(t)

	status, _ := p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusStopped, status)
	ok, _ := p.CanPlay()
	assert.False(t, ok)

	_, err := svc.Load(playback.Track{ID: "a", Source: "/music/a.mp3", Duration: time.Minute})
	require.NoError(t, err)
	status, _ = p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusPaused, status)

	require.NoError(t, p.PlayPause())
	status, _ = p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusPlaying, status)

	require.NoError(t, p.Stop())
	status, _ = p.PlaybackStatus()
	assert.Equal(t, types.PlaybackStatusStopped, status)
}

func TestPlayerAdapter_SeekIsRelative(t *testing.T) {
	p, svc, clock := newAdapter(t)
	_, err := svc.Load(playback.Track{ID: "a", Source: "/music/a.mp3", Duration: time.Minute})
	require.NoError(t, err)
	require.NoError(t, p.Play())

	for range 10 {
		clock.Advance(time.Second)
		svc.Tick()
	}
	require.NoError(t, p.Seek(types.Microseconds(5*time.Second/time.Microsecond)))
	svc.Tick()
	assert.Equal(t, 15*time.Second, svc.Snapshot().Position)

	require.NoError(t, p.Seek(types.Microseconds(-time.Minute/time.Microsecond)))
	svc.Tick()
	assert.Zero(t, svc.Snapshot().Position)

	require.NoError(t, p.SetPosition("", types.Microseconds(40*time.Second/time.Microsecond)))
	svc.Tick()
	pos, _ := p.Position()
	assert.Equal(t, (40 * time.Second).Microseconds(), pos)
}

func TestPlayerAdapter_Metadata(t *testing.T) {
	p, svc, _ := newAdapter(t)

	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Empty(t, meta.Title)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.png"), []byte("fake"), 0o600))
	_, err = svc.Load(playback.Track{
		ID:       "cat-42",
		Source:   filepath.Join(dir, "a.mp3"),
		Title:    "Song",
		Artist:   "Band",
		Album:    "LP",
		Duration: 3 * time.Minute,
	})
	require.NoError(t, err)

	meta, err = p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "Song", meta.Title)
	assert.Equal(t, []string{"Band"}, meta.Artist)
	assert.Equal(t, "LP", meta.Album)
	assert.Equal(t, types.Microseconds((3 * time.Minute).Microseconds()), meta.Length)
	assert.Equal(t, "file://"+filepath.Join(dir, "cover.png"), meta.ArtUrl)
	assert.Equal(t, formatTrackID("cat-42"), string(meta.TrackId))
}

func TestPlayerAdapter_SkipAtEndOfQueue(t *testing.T) {
	p, svc, _ := newAdapter(t)
	_, err := svc.Load(
		playback.Track{ID: "a", Source: "/music/a.mp3", Duration: time.Minute},
		playback.Track{ID: "b", Source: "/music/b.mp3", Duration: time.Minute},
	)
	require.NoError(t, err)

	require.NoError(t, p.Next())
	assert.Equal(t, "b", svc.CurrentTrack().ID)
	assert.ErrorIs(t, p.Next(), player.ErrNoNext)
	require.NoError(t, p.Previous())
	assert.Equal(t, "a", svc.CurrentTrack().ID)
}
