package player

import (
	"io"

	"github.com/dhowden/tag"

	"github.com/llehouerou/wavesplay/internal/playlist"
)

// readTags reads title, artist and album from embedded tags.
// Source and Duration are left for the caller.
func readTags(r io.ReadSeeker) (playlist.Track, error) {
	m, err := tag.ReadFrom(r)
	if err != nil {
		return playlist.Track{}, err
	}

	artist := m.Artist()
	if artist == "" {
		artist = m.AlbumArtist()
	}

	return playlist.Track{
		Title:  m.Title(),
		Artist: artist,
		Album:  m.Album(),
	}, nil
}
