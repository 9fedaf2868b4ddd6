package lastfm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesplay/internal/metrics"
	"github.com/llehouerou/wavesplay/internal/playback"
	"github.com/llehouerou/wavesplay/internal/state"
)

// maxAttempts caps retries of a pending scrobble.
const maxAttempts = 10

// Scrobbler is the part of Client the Forwarder needs.
type Scrobbler interface {
	IsAuthenticated() bool
	Scrobble(track ScrobbleTrack) error
}

// PendingStore persists scrobbles that could not be submitted.
type PendingStore interface {
	AddPendingScrobble(s state.PendingScrobble) error
	GetPendingScrobbles() ([]state.PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
}

// Forwarder scrobbles qualifying plays. Failed submissions are queued in
// the store and retried by RetryPending.
type Forwarder struct {
	client Scrobbler
	store  PendingStore
	log    zerolog.Logger
}

// NewForwarder creates a forwarder.
func NewForwarder(client Scrobbler, store PendingStore, log zerolog.Logger) *Forwarder {
	return &Forwarder{client: client, store: store, log: log}
}

// Run consumes qualifying plays from sub until ctx is canceled or the
// subscription closes.
func (f *Forwarder) Run(ctx context.Context, sub *playback.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.QualifyingPlay:
			f.Handle(e)
		}
	}
}

// Handle scrobbles one qualifying play.
func (f *Forwarder) Handle(e playback.QualifyingPlayRecorded) {
	if !f.client.IsAuthenticated() {
		return
	}
	track, ok := scrobbleTrack(e)
	if !ok {
		f.log.Debug().Str("track_id", e.TrackID).Msg("missing artist or title, not scrobbling")
		return
	}

	err := f.client.Scrobble(track)
	metrics.RecordScrobble(err == nil)
	if err == nil {
		return
	}
	f.log.Warn().Err(err).Str("track_id", e.TrackID).Msg("scrobble failed, queued for retry")
	if qerr := f.store.AddPendingScrobble(state.PendingScrobble{
		Artist:       track.Artist,
		Track:        track.Track,
		Album:        track.Album,
		DurationSecs: int(track.Duration.Seconds()),
		Timestamp:    track.Timestamp,
		LastError:    err.Error(),
	}); qerr != nil {
		f.log.Error().Err(qerr).Msg("queue scrobble")
	}
}

// RetryPending resubmits queued scrobbles that have not exhausted their
// attempts.
func (f *Forwarder) RetryPending() (succeeded, failed int, err error) {
	if !f.client.IsAuthenticated() {
		return 0, 0, nil
	}
	pending, err := f.store.GetPendingScrobbles()
	if err != nil {
		return 0, 0, err
	}

	for _, p := range pending {
		if p.Attempts >= maxAttempts {
			continue
		}
		serr := f.client.Scrobble(ScrobbleTrack{
			Artist:    p.Artist,
			Track:     p.Track,
			Album:     p.Album,
			Duration:  time.Duration(p.DurationSecs) * time.Second,
			Timestamp: p.Timestamp,
		})
		metrics.RecordScrobble(serr == nil)
		if serr != nil {
			failed++
			if uerr := f.store.UpdatePendingScrobbleAttempt(p.ID, serr.Error()); uerr != nil {
				f.log.Warn().Err(uerr).Int64("pending_id", p.ID).Msg("record scrobble attempt")
			}
			continue
		}
		succeeded++
		// A row left behind here is submitted again on the next retry.
		if derr := f.store.DeletePendingScrobble(p.ID); derr != nil {
			f.log.Warn().Err(derr).Int64("pending_id", p.ID).Msg("delete submitted scrobble")
		}
	}
	return succeeded, failed, nil
}

// scrobbleTrack builds the submission for e. The timestamp is when the
// listener started playing, approximated from the accrued time.
func scrobbleTrack(e playback.QualifyingPlayRecorded) (ScrobbleTrack, bool) {
	if e.Track == nil {
		return ScrobbleTrack{}, false
	}
	t := ScrobbleTrack{
		Artist:    e.Track.Artist,
		Track:     e.Track.Title,
		Album:     e.Track.Album,
		Duration:  e.Track.Duration,
		Timestamp: e.Timestamp.Add(-e.Accrued),
	}
	return t, t.Valid()
}
