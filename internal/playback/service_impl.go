// internal/playback/service_impl.go
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesplay/internal/capability"
	"github.com/llehouerou/wavesplay/internal/log"
	"github.com/llehouerou/wavesplay/internal/metrics"
	"github.com/llehouerou/wavesplay/internal/monetize"
	"github.com/llehouerou/wavesplay/internal/player"
	"github.com/llehouerou/wavesplay/internal/playlist"
	"github.com/llehouerou/wavesplay/internal/sampler"
	"github.com/llehouerou/wavesplay/internal/session"
)

// DefaultTickInterval is the sampling period when none is configured.
const DefaultTickInterval = time.Second

// ErrClosed is returned by control operations after Close.
var ErrClosed = errors.New("playback service closed")

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

// Options configures a Service. Zero values select defaults.
type Options struct {
	Clock        clockwork.Clock
	TickInterval time.Duration
	Thresholds   monetize.Thresholds
	Auth         AuthSource // nil means unauthenticated
	Logger       *zerolog.Logger
}

type serviceImpl struct {
	// mu is the engine lock. Ticks and every operation that replaces the
	// session hold it, so an evaluation never straddles a track change.
	mu sync.Mutex

	backend  player.Interface
	mode     capability.Mode
	store    *session.Store
	sampler  *sampler.Sampler
	clock    clockwork.Clock
	interval time.Duration
	th       monetize.Thresholds
	auth     AuthSource
	log      zerolog.Logger

	current   *Track
	lastState player.State

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// New creates a playback engine driving backend.
func New(backend player.Interface, mode capability.Mode, opts Options) Service {
	s := &serviceImpl{
		backend:   backend,
		mode:      mode,
		store:     session.NewStore(),
		clock:     opts.Clock,
		interval:  opts.TickInterval,
		th:        opts.Thresholds,
		auth:      opts.Auth,
		lastState: player.Idle,
		done:      make(chan struct{}),
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.interval <= 0 {
		s.interval = DefaultTickInterval
	}
	if s.th.Preview <= 0 {
		s.th.Preview = monetize.DefaultPreviewLength
	}
	if s.th.Qualifying <= 0 {
		s.th.Qualifying = monetize.DefaultQualifyingPlay
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	} else {
		s.log = log.WithComponent("playback")
	}
	s.log = s.log.With().Stringer("mode", mode).Logger()
	s.sampler = sampler.New(backend, mode, s.store, s.log.With().Str("component", "sampler").Logger())
	return s
}

// State returns the live backend state.
func (s *serviceImpl) State() player.State {
	snap, err := s.backend.Query()
	if err != nil {
		return s.store.Snapshot().State
	}
	return snap.State
}

// IsPlaying reports whether the backend is playing.
func (s *serviceImpl) IsPlaying() bool {
	return s.State() == player.Playing
}

// Snapshot returns the snapshot written by the last tick.
func (s *serviceImpl) Snapshot() player.Snapshot {
	return s.store.Snapshot()
}

// Session returns the current track session.
func (s *serviceImpl) Session() (session.TrackSession, bool) {
	return s.store.Session()
}

// CurrentTrack returns the track of the current session, or nil if none.
func (s *serviceImpl) CurrentTrack() *Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// Mode returns the backend mode selected at startup.
func (s *serviceImpl) Mode() capability.Mode {
	return s.mode
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	if s.isClosed() {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

func (s *serviceImpl) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Run ticks every interval until ctx is canceled or the service is
// closed.
func (s *serviceImpl) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.Chan():
			s.Tick()
		}
	}
}

// Close shuts down the service and releases the backend.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	err := s.backend.Close()
	s.mu.Unlock()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return err
}

// startSessionLocked replaces the session with a fresh one for t.
func (s *serviceImpl) startSessionLocked(t *playlist.Track) {
	now := s.clock.Now()
	preview := s.previewMode()
	ts := s.store.Load(t.ID, preview, now)
	s.sampler.Reset(ts.Generation, now)

	prev := s.current
	s.current = fromPlaylist(t)
	s.log.Info().
		Str("track_id", t.ID).
		Bool("preview", preview).
		Uint64("generation", ts.Generation).
		Msg("track session started")
	s.emitTrack(TrackChange{Previous: prev.clone(), Current: s.current.clone()})
}

// clearSessionLocked drops the session after an explicit stop or a failed
// load.
func (s *serviceImpl) clearSessionLocked() {
	s.store.Clear()
	s.sampler.Suspend()
}

// previewMode reads the auth state. Any failure is treated as
// unauthenticated so no payment is ever triggered by mistake.
func (s *serviceImpl) previewMode() bool {
	if s.auth == nil {
		return true
	}
	preview, err := s.auth.IsPreviewMode()
	if err != nil {
		s.log.Warn().Err(err).Msg("auth state unavailable, using preview mode")
		return true
	}
	return preview
}

// syncStateLocked emits a StateChange if the backend state moved since it
// was last observed.
func (s *serviceImpl) syncStateLocked() {
	snap, err := s.backend.Query()
	if err != nil {
		return
	}
	s.observeStateLocked(snap.State)
}

func (s *serviceImpl) observeStateLocked(st player.State) {
	if st == s.lastState {
		return
	}
	prev := s.lastState
	s.lastState = st
	s.emitState(StateChange{Previous: prev, Current: st})
}

// failLocked reports a failed control operation.
func (s *serviceImpl) failLocked(op player.Op, source string, err error) {
	var ce *player.ControlError
	if errors.As(err, &ce) {
		op = ce.Op
	}
	metrics.RecordControlError(string(op))
	s.log.Warn().Err(err).Str("op", string(op)).Msg("control operation failed")
	s.emitError(ErrorEvent{Operation: string(op), Source: source, Err: err})
}

func (s *serviceImpl) currentSource() string {
	if s.current == nil {
		return ""
	}
	return s.current.Source
}

func (s *serviceImpl) forEachSub(fn func(sub *Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		fn(sub)
	}
}

func (s *serviceImpl) emitState(e StateChange) {
	s.forEachSub(func(sub *Subscription) { sub.sendState(e) })
}

func (s *serviceImpl) emitTrack(e TrackChange) {
	s.forEachSub(func(sub *Subscription) { sub.sendTrack(e) })
}

func (s *serviceImpl) emitPosition(pos time.Duration) {
	s.forEachSub(func(sub *Subscription) { sub.sendPosition(pos) })
}

func (s *serviceImpl) emitError(e ErrorEvent) {
	s.forEachSub(func(sub *Subscription) { sub.sendError(e) })
}

// publishLocked fans a monetization event out to subscribers. A subscriber
// with a full buffer loses the event; that is logged and counted.
func (s *serviceImpl) publishLocked(e monetize.Event) {
	kind := e.Kind.String()
	metrics.RecordMonetizationEvent(kind)
	logEvt := s.log.Info().
		Str("event", kind).
		Str("track_id", e.TrackID).
		Dur("accrued", e.Accrued)

	var dropped int
	switch e.Kind {
	case monetize.PreviewEnded:
		logEvt.Msg("preview ended")
		s.forEachSub(func(sub *Subscription) {
			if !sub.sendPreviewEnded(PreviewEnded{
				TrackID:   e.TrackID,
				Track:     s.current.clone(),
				Timestamp: e.Timestamp,
				Accrued:   e.Accrued,
			}) {
				dropped++
			}
		})
	case monetize.QualifyingPlayRecorded:
		id := uuid.New()
		logEvt.Str("event_id", id.String()).Msg("qualifying play")
		s.forEachSub(func(sub *Subscription) {
			if !sub.sendQualifyingPlay(QualifyingPlayRecorded{
				ID:        id,
				TrackID:   e.TrackID,
				Track:     s.current.clone(),
				Timestamp: e.Timestamp,
				Accrued:   e.Accrued,
			}) {
				dropped++
			}
		})
	}

	for range dropped {
		metrics.RecordDroppedEvent(kind)
	}
	if dropped > 0 {
		s.log.Error().Str("event", kind).Int("subscribers", dropped).Msg("monetization event dropped, subscriber buffer full")
	}
}
