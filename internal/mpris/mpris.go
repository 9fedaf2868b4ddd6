//go:build linux

// Package mpris exposes the playback engine on the session bus so desktop
// media keys and applets can control it.
package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/wavesplay/internal/playback"
	"github.com/llehouerou/wavesplay/internal/player"
)

// Adapter connects a playback.Service to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts an MPRIS adapter for service.
func New(service playback.Service) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer("wavesplay", &rootAdapter{}, &playerAdapter{service: service}),
	}

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close releases the bus name.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error { return nil }

func (r *rootAdapter) Quit() error { return nil }

func (r *rootAdapter) CanQuit() (bool, error) { return false, nil }

func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }

func (r *rootAdapter) Identity() (string, error) { return "wavesplay", nil }

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav", "audio/ogg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter. Every control
// goes through the engine, so media keys are subject to the same session
// rules as the CLI.
type playerAdapter struct {
	service playback.Service
}

func (p *playerAdapter) Next() error {
	_, err := p.service.SkipNext()
	return err
}

func (p *playerAdapter) Previous() error {
	_, err := p.service.SkipPrevious()
	return err
}

func (p *playerAdapter) Pause() error { return p.service.Pause() }

func (p *playerAdapter) PlayPause() error { return p.service.Toggle() }

func (p *playerAdapter) Stop() error { return p.service.Stop() }

func (p *playerAdapter) Play() error { return p.service.Play() }

// Seek moves relative to the last sampled position.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	pos := p.service.Snapshot().Position + time.Duration(offset)*time.Microsecond
	return p.service.SeekTo(max(pos, 0))
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.service.SeekTo(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.service.State() {
	case player.Playing:
		return types.PlaybackStatusPlaying, nil
	case player.Paused, player.Loading, player.Buffering:
		return types.PlaybackStatusPaused, nil
	case player.Idle, player.Stopped:
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) SetRate(_ float64) error { return nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.service.CurrentTrack()
	if track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(track.ID)),
		Length:  types.Microseconds(track.Duration.Microseconds()),
		Title:   track.Title,
		Album:   track.Album,
	}
	if track.Artist != "" {
		meta.Artist = []string{track.Artist}
	}
	if art := FindAlbumArt(track.Source); art != "" {
		meta.ArtUrl = "file://" + art
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) { return 1.0, nil }

func (p *playerAdapter) SetVolume(_ float64) error { return nil }

func (p *playerAdapter) Position() (int64, error) {
	return p.service.Snapshot().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.service.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.service.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.service.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) { return true, nil }

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.service.Snapshot().Duration > 0, nil
}

func (p *playerAdapter) CanControl() (bool, error) { return true, nil }

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
