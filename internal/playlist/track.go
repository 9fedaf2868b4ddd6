// Package playlist holds the queue a backend walks when skipping.
package playlist

import "time"

// Track is a single queue entry.
type Track struct {
	ID       string // catalog identifier, opaque to the engine
	Source   string // local file path or http(s) URL
	Title    string
	Artist   string
	Album    string
	Duration time.Duration // 0 when unknown until the backend loads it
}

// merge fills t's empty tag fields from meta. A known duration always
// replaces t's.
func (t *Track) merge(meta Track) {
	if meta.Duration > 0 {
		t.Duration = meta.Duration
	}
	if t.Title == "" {
		t.Title = meta.Title
	}
	if t.Artist == "" {
		t.Artist = meta.Artist
	}
	if t.Album == "" {
		t.Album = meta.Album
	}
}
