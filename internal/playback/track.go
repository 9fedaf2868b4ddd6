package playback

import (
	"time"

	"github.com/llehouerou/wavesplay/internal/playlist"
)

// Track represents a track handed to or reported by the engine.
// This is a copy of the data, not a reference to playlist.Track.
type Track struct {
	ID       string
	Source   string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

func fromPlaylist(t *playlist.Track) *Track {
	if t == nil {
		return nil
	}
	return &Track{
		ID:       t.ID,
		Source:   t.Source,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    t.Album,
		Duration: t.Duration,
	}
}

func toPlaylist(tracks []Track) []playlist.Track {
	out := make([]playlist.Track, len(tracks))
	for i, t := range tracks {
		out[i] = playlist.Track{
			ID:       t.ID,
			Source:   t.Source,
			Title:    t.Title,
			Artist:   t.Artist,
			Album:    t.Album,
			Duration: t.Duration,
		}
	}
	return out
}

func (t *Track) clone() *Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
