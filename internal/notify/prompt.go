package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesplay/internal/metrics"
	"github.com/llehouerou/wavesplay/internal/playback"
)

// ActionSignUp is the key of the prompt's sign-up button.
const ActionSignUp = "signup"

// Pauser pauses playback.
type Pauser interface {
	Pause() error
}

// PreviewPrompt enforces the end of a preview: it pauses playback and asks
// the listener to sign up.
type PreviewPrompt struct {
	notifier Notifier
	pauser   Pauser
	log      zerolog.Logger

	lastID uint32
}

// NewPreviewPrompt creates a prompt that pauses through p and notifies
// through n.
func NewPreviewPrompt(n Notifier, p Pauser, log zerolog.Logger) *PreviewPrompt {
	return &PreviewPrompt{notifier: n, pauser: p, log: log}
}

// Run handles preview endings from sub until ctx is canceled or the
// subscription closes. It runs on the caller's goroutine.
func (p *PreviewPrompt) Run(ctx context.Context, sub *playback.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.PreviewEnded:
			if err := p.Handle(e); err != nil {
				p.log.Warn().Err(err).Str("track_id", e.TrackID).Msg("preview prompt failed")
			}
		}
	}
}

// Handle pauses playback and shows the sign-up notification, replacing
// the previous one. Both steps are attempted even if one fails.
func (p *PreviewPrompt) Handle(e playback.PreviewEnded) error {
	pauseErr := p.pauser.Pause()
	if pauseErr != nil {
		pauseErr = fmt.Errorf("pause: %w", pauseErr)
	}

	id, notifyErr := p.notifier.Notify(Notification{
		Title:      "Preview ended",
		Body:       fmt.Sprintf("Sign up to keep listening to %s.", previewLabel(e)),
		Timeout:    -1,
		ReplacesID: p.lastID,
		Urgency:    UrgencyNormal,
		Actions:    []Action{{Key: ActionSignUp, Label: "Sign up"}},
	})
	if notifyErr != nil {
		notifyErr = fmt.Errorf("notify: %w", notifyErr)
	} else {
		p.lastID = id
		metrics.RecordPreviewPrompt()
	}

	p.log.Info().Str("track_id", e.TrackID).Msg("preview ended, playback paused")
	return errors.Join(pauseErr, notifyErr)
}

func previewLabel(e playback.PreviewEnded) string {
	if e.Track != nil && e.Track.Title != "" {
		if e.Track.Artist != "" {
			return e.Track.Artist + " - " + e.Track.Title
		}
		return e.Track.Title
	}
	return "this track"
}
