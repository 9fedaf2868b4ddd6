package player

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavesplay/internal/playlist"
)

func loadedSimulated(t *testing.T, tracks ...playlist.Track) *Simulated {
	t.Helper()
	s := NewSimulated()
	_, err := s.Load(tracks...)
	require.NoError(t, err)
	return s
}

func TestSimulated_ControlsWithoutTrack(t *testing.T) {
	s := NewSimulated()

	ops := map[Op]func() error{
		OpPlay:  s.Play,
		OpPause: s.Pause,
		OpSeek:  func() error { return s.SeekTo(time.Second) },
	}
	for op, fn := range ops {
		err := fn()
		var ce *ControlError
		require.ErrorAs(t, err, &ce, "op %s", op)
		assert.Equal(t, op, ce.Op)
		assert.ErrorIs(t, err, ErrNoTrack)
	}

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNoTrack)
	assert.NoError(t, s.Stop())
}

func TestSimulated_LoadSetsDuration(t *testing.T) {
	s := loadedSimulated(t, playlist.Track{ID: "a", Duration: 3 * time.Minute})

	snap, err := s.Query()
	require.NoError(t, err)
	assert.Equal(t, Paused, snap.State)
	assert.Equal(t, 3*time.Minute, snap.Duration)
	assert.Equal(t, 3*time.Minute, snap.Buffered)
	assert.Zero(t, snap.Position)
}

func TestSimulated_AdvanceClampsToDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		ticks    int
		want     time.Duration
		state    State
	}{
		{"before end", 10 * time.Second, 4, 4 * time.Second, Playing},
		{"exactly at end", 10 * time.Second, 10, 10 * time.Second, Stopped},
		{"past end", 10 * time.Second, 25, 10 * time.Second, Stopped},
		{"unknown duration", 0, 25, 25 * time.Second, Playing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadedSimulated(t, playlist.Track{ID: "a", Duration: tt.duration})
			require.NoError(t, s.Play())

			for range tt.ticks {
				s.Advance(time.Second)
			}

			snap, _ := s.Query()
			assert.Equal(t, tt.want, snap.Position)
			assert.Equal(t, tt.state, snap.State)
		})
	}
}

func TestSimulated_AdvanceIgnoredWhenNotPlaying(t *testing.T) {
	s := loadedSimulated(t, playlist.Track{ID: "a", Duration: time.Minute})

	s.Advance(5 * time.Second)
	require.NoError(t, s.Play())
	s.Advance(5 * time.Second)
	require.NoError(t, s.Pause())
	s.Advance(5 * time.Second)

	snap, _ := s.Query()
	assert.Equal(t, 5*time.Second, snap.Position)
	assert.Equal(t, Paused, snap.State)
}

func TestSimulated_SeekTo(t *testing.T) {
	s := loadedSimulated(t, playlist.Track{ID: "a", Duration: time.Minute})

	require.NoError(t, s.SeekTo(20*time.Second))
	snap, _ := s.Query()
	assert.Equal(t, 20*time.Second, snap.Position)

	require.NoError(t, s.SeekTo(2*time.Minute))
	snap, _ = s.Query()
	assert.Equal(t, time.Minute, snap.Position)

	require.NoError(t, s.SeekTo(-time.Second))
	snap, _ = s.Query()
	assert.Zero(t, snap.Position)
}

func TestSimulated_PlayAfterEndRestarts(t *testing.T) {
	s := loadedSimulated(t, playlist.Track{ID: "a", Duration: 2 * time.Second})
	require.NoError(t, s.Play())
	s.Advance(3 * time.Second)

	require.NoError(t, s.Play())

	snap, _ := s.Query()
	assert.Equal(t, Playing, snap.State)
	assert.Zero(t, snap.Position)
}

func TestSimulated_Skip(t *testing.T) {
	s := loadedSimulated(t,
		playlist.Track{ID: "a", Duration: time.Minute},
		playlist.Track{ID: "b", Duration: 2 * time.Minute},
	)
	require.NoError(t, s.Play())
	s.Advance(10 * time.Second)

	next, err := s.SkipNext()
	require.NoError(t, err)
	assert.Equal(t, "b", next.ID)

	snap, _ := s.Query()
	assert.Equal(t, Playing, snap.State, "skip keeps playing")
	assert.Zero(t, snap.Position)
	assert.Equal(t, 2*time.Minute, snap.Duration)

	_, err = s.SkipNext()
	assert.ErrorIs(t, err, ErrNoNext)

	prev, err := s.SkipPrevious()
	require.NoError(t, err)
	assert.Equal(t, "a", prev.ID)

	_, err = s.SkipPrevious()
	var ce *ControlError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, OpSkipPrevious, ce.Op)
	assert.ErrorIs(t, err, ErrNoPrevious)
}

func TestSimulated_Stop(t *testing.T) {
	s := loadedSimulated(t, playlist.Track{ID: "a", Duration: time.Minute})
	require.NoError(t, s.Play())

	require.NoError(t, s.Stop())

	snap, _ := s.Query()
	assert.Equal(t, Stopped, snap.State)
	assert.True(t, snap.State.IsTerminal())
}
