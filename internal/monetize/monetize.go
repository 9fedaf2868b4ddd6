// Package monetize decides, once per sample tick, whether the current
// track session has earned a preview cutoff or a qualifying play.
package monetize

import (
	"time"

	"github.com/llehouerou/wavesplay/internal/player"
	"github.com/llehouerou/wavesplay/internal/session"
)

const (
	DefaultPreviewLength  = 15 * time.Second
	DefaultQualifyingPlay = 30 * time.Second
)

// Thresholds are the accrued playing times that trigger events.
type Thresholds struct {
	Preview    time.Duration // unauthenticated cutoff
	Qualifying time.Duration // authenticated paid play
}

// DefaultThresholds returns the production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Preview: DefaultPreviewLength, Qualifying: DefaultQualifyingPlay}
}

// withDefaults fills zero or negative thresholds.
func (th Thresholds) withDefaults() Thresholds {
	if th.Preview <= 0 {
		th.Preview = DefaultPreviewLength
	}
	if th.Qualifying <= 0 {
		th.Qualifying = DefaultQualifyingPlay
	}
	return th
}

// Kind identifies a monetization event.
type Kind int

const (
	PreviewEnded Kind = iota + 1
	QualifyingPlayRecorded
)

func (k Kind) String() string {
	switch k {
	case PreviewEnded:
		return "preview_ended"
	case QualifyingPlayRecorded:
		return "qualifying_play"
	default:
		return "unknown"
	}
}

// Event is emitted at most once per track session.
type Event struct {
	Kind      Kind
	TrackID   string
	Timestamp time.Time     // tick that crossed the threshold
	Accrued   time.Duration // playing time at that tick
}

// Decision is the outcome of one evaluation: the session to commit and the
// event to publish, if any.
type Decision struct {
	Session session.TrackSession
	Event   *Event
}

// Evaluate folds snap, observed at now, into ts.
//
// Playing time accrues per tick: the interval since the previous tick is
// counted as playing when snap reports Playing. Pausing closes the current
// interval and keeps what was accrued, so elapsed time is the sum of every
// Playing interval of the session. Reaching Stopped from Playing means the
// track played to its end, so that last interval still counts. A late tick fires on the first
// observation at or over the threshold and never fires again.
func Evaluate(snap player.Snapshot, ts session.TrackSession, now time.Time, th Thresholds) Decision {
	th = th.withDefaults()
	if now.Before(ts.LastSampleAt) {
		now = ts.LastSampleAt
	}

	playing := snap.State == player.Playing
	switch {
	case playing && ts.PlayStartedAt == nil:
		start := ts.LastSampleAt
		ts.PlayStartedAt = &start
	case !playing && ts.PlayStartedAt != nil:
		end := ts.LastSampleAt
		if snap.State == player.Stopped {
			// The track ran out during this interval, so it was played.
			end = now
		}
		ts.Accrued += end.Sub(*ts.PlayStartedAt)
		ts.PlayStartedAt = nil
	}
	ts.LastSampleAt = now

	elapsed := Elapsed(ts, now)
	d := Decision{Session: ts}

	if ts.IsPreviewMode {
		if !ts.HasFiredPreviewCutoff && elapsed >= th.Preview {
			d.Session.HasFiredPreviewCutoff = true
			d.Event = &Event{Kind: PreviewEnded, TrackID: ts.TrackID, Timestamp: now, Accrued: elapsed}
		}
		return d
	}

	if !ts.HasRecordedQualifyingPlay && elapsed >= th.Qualifying {
		d.Session.HasRecordedQualifyingPlay = true
		d.Event = &Event{Kind: QualifyingPlayRecorded, TrackID: ts.TrackID, Timestamp: now, Accrued: elapsed}
	}
	return d
}

// Elapsed returns the playing time accrued by ts as of now.
func Elapsed(ts session.TrackSession, now time.Time) time.Duration {
	elapsed := ts.Accrued
	if ts.PlayStartedAt != nil && now.After(*ts.PlayStartedAt) {
		elapsed += now.Sub(*ts.PlayStartedAt)
	}
	return elapsed
}
