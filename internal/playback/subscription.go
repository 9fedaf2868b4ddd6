package playback

import "time"

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged    <-chan StateChange
	TrackChanged    <-chan TrackChange
	PositionChanged <-chan PositionChange
	PreviewEnded    <-chan PreviewEnded
	QualifyingPlay  <-chan QualifyingPlayRecorded
	Error           <-chan ErrorEvent
	Done            <-chan struct{}

	// Internal write channels
	stateCh      chan StateChange
	trackCh      chan TrackChange
	positionCh   chan PositionChange
	previewCh    chan PreviewEnded
	qualifyingCh chan QualifyingPlayRecorded
	errorCh      chan ErrorEvent
	doneCh       chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:      make(chan StateChange, eventBufferSize),
		trackCh:      make(chan TrackChange, eventBufferSize),
		positionCh:   make(chan PositionChange, eventBufferSize),
		previewCh:    make(chan PreviewEnded, eventBufferSize),
		qualifyingCh: make(chan QualifyingPlayRecorded, eventBufferSize),
		errorCh:      make(chan ErrorEvent, eventBufferSize),
		doneCh:       make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.TrackChanged = s.trackCh
	s.PositionChanged = s.positionCh
	s.PreviewEnded = s.previewCh
	s.QualifyingPlay = s.qualifyingCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// send delivers e without blocking and reports whether it was accepted.
func send[T any](ch chan T, e T) bool {
	select {
	case ch <- e:
		return true
	default:
		return false
	}
}

func (s *Subscription) sendState(e StateChange) bool { return send(s.stateCh, e) }

func (s *Subscription) sendTrack(e TrackChange) bool { return send(s.trackCh, e) }

func (s *Subscription) sendPosition(pos time.Duration) bool {
	return send(s.positionCh, PositionChange{Position: pos})
}

func (s *Subscription) sendPreviewEnded(e PreviewEnded) bool { return send(s.previewCh, e) }

func (s *Subscription) sendQualifyingPlay(e QualifyingPlayRecorded) bool {
	return send(s.qualifyingCh, e)
}

func (s *Subscription) sendError(e ErrorEvent) bool { return send(s.errorCh, e) }
