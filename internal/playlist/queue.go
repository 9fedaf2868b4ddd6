package playlist

// PlayingQueue is an ordered list of tracks with a cursor on the loaded
// one. It is not safe for concurrent use; backends guard it with their own
// lock.
type PlayingQueue struct {
	tracks []Track
	pos    int // -1 when nothing is loaded
}

// NewQueue returns an empty queue.
func NewQueue() *PlayingQueue {
	return &PlayingQueue{pos: -1}
}

// Replace swaps the queue contents for tracks and puts the cursor on the
// first one, which it returns. An empty call clears the queue.
func (q *PlayingQueue) Replace(tracks ...Track) *Track {
	q.tracks = append(q.tracks[:0], tracks...)
	q.pos = -1
	if len(q.tracks) > 0 {
		q.pos = 0
	}
	return q.Current()
}

// Current returns a copy of the track under the cursor, or nil.
func (q *PlayingQueue) Current() *Track {
	if q.pos < 0 || q.pos >= len(q.tracks) {
		return nil
	}
	t := q.tracks[q.pos]
	return &t
}

// Next moves the cursor forward. At the end of the queue it returns nil
// and the cursor stays put.
func (q *PlayingQueue) Next() *Track {
	return q.move(1)
}

// Previous moves the cursor back. At the start of the queue it returns
// nil and the cursor stays put.
func (q *PlayingQueue) Previous() *Track {
	return q.move(-1)
}

func (q *PlayingQueue) move(step int) *Track {
	to := q.pos + step
	if q.pos < 0 || to < 0 || to >= len(q.tracks) {
		return nil
	}
	q.pos = to
	return q.Current()
}

// UpdateCurrent merges metadata read while loading into the current track.
// Fields the caller already set win, except Duration. meta is ignored when
// it describes another source.
func (q *PlayingQueue) UpdateCurrent(meta Track) {
	if q.pos < 0 || q.pos >= len(q.tracks) || q.tracks[q.pos].Source != meta.Source {
		return
	}
	q.tracks[q.pos].merge(meta)
}

// Len returns the number of queued tracks.
func (q *PlayingQueue) Len() int {
	return len(q.tracks)
}

// IsEmpty reports whether nothing is queued.
func (q *PlayingQueue) IsEmpty() bool {
	return len(q.tracks) == 0
}
