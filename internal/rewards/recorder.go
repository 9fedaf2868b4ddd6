package rewards

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesplay/internal/metrics"
	"github.com/llehouerou/wavesplay/internal/playback"
)

// PlayRecorder is the part of Client the Recorder needs.
type PlayRecorder interface {
	RecordPlay(ctx context.Context, p Play) error
}

// Recorder forwards qualifying plays from the engine to the API. Each
// event is submitted exactly once; a failed submission is logged and not
// retried.
type Recorder struct {
	client PlayRecorder
	log    zerolog.Logger
}

// NewRecorder creates a recorder submitting through client.
func NewRecorder(client PlayRecorder, log zerolog.Logger) *Recorder {
	return &Recorder{client: client, log: log}
}

// Run consumes sub until ctx is canceled or the subscription closes.
func (r *Recorder) Run(ctx context.Context, sub *playback.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.QualifyingPlay:
			r.Record(ctx, e)
		}
	}
}

// Record submits one event.
func (r *Recorder) Record(ctx context.Context, e playback.QualifyingPlayRecorded) {
	err := r.client.RecordPlay(ctx, Play{
		ID:       e.ID,
		TrackID:  e.TrackID,
		PlayedAt: e.Timestamp,
		Accrued:  e.Accrued,
	})
	metrics.RecordPlayRecording(err == nil)
	if err != nil {
		r.log.Error().Err(err).
			Str("event_id", e.ID.String()).
			Str("track_id", e.TrackID).
			Msg("recording qualifying play failed")
		return
	}
	r.log.Info().
		Str("event_id", e.ID.String()).
		Str("track_id", e.TrackID).
		Msg("qualifying play recorded")
}
