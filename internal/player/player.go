package player

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/wavesplay/internal/playlist"
)

// outputRate is the fixed rate the speaker is opened at. Tracks with a
// different rate are resampled.
const outputRate beep.SampleRate = 44100

// engineState is the audio engine's own lifecycle. It is finer-grained than
// State and never leaves this package; Query translates it through
// engineStates.
type engineState int

const (
	engineEmpty    engineState = iota // nothing loaded
	engineOpening                     // local file being opened and decoded
	engineFetching                    // remote source downloading
	engineReady                       // decoded, never started
	engineRunning                     // streaming to the speaker
	engineHeld                        // paused by the user
	engineDrained                     // reached the end of the stream
	engineHalted                      // stopped by the user, resources released
	engineFaulted                     // decode or fetch failure, unusable
)

var engineStates = map[engineState]State{
	engineEmpty:    Idle,
	engineOpening:  Loading,
	engineFetching: Buffering,
	engineReady:    Paused,
	engineRunning:  Playing,
	engineHeld:     Paused,
	engineDrained:  Stopped,
	engineHalted:   Stopped,
	engineFaulted:  Idle,
}

func (s engineState) canonical() State {
	if st, ok := engineStates[s]; ok {
		return st
	}
	return Idle
}

// Output is the audio sink driven by Player. The default implementation is
// the beep speaker.
type Output interface {
	Play(s ...beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Clear()                  { speaker.Clear() }
func (speakerOutput) Lock()                   { speaker.Lock() }
func (speakerOutput) Unlock()                 { speaker.Unlock() }

var (
	speakerOnce sync.Once
	speakerErr  error
)

// AcquireHardware opens the system audio device and returns a Player bound
// to it. The device is opened at most once per process; a failure is
// returned on every call.
func AcquireHardware() (Interface, error) {
	speakerOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				speakerErr = fmt.Errorf("speaker init panicked: %v", r)
			}
		}()
		speakerErr = speaker.Init(outputRate, outputRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return nil, fmt.Errorf("init speaker: %w", speakerErr)
	}
	return New(speakerOutput{}, nil), nil
}

// Player is the hardware backend. It decodes tracks with beep and streams
// them to an Output.
type Player struct {
	mu     sync.Mutex
	out    Output
	client *http.Client
	queue  *playlist.PlayingQueue

	state    engineState
	wantPlay bool // play requested before the stream was ready
	queued   bool // ctrl is currently handed to the output
	fault    error

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	duration time.Duration
	drained  *atomic.Bool

	loadSeq     uint64
	cancelFetch context.CancelFunc
}

// New creates a hardware player writing to out. A nil client uses
// http.DefaultClient for remote sources.
func New(out Output, client *http.Client) *Player {
	if client == nil {
		client = http.DefaultClient
	}
	return &Player{
		out:     out,
		client:  client,
		queue:   playlist.NewQueue(),
		state:   engineEmpty,
		drained: new(atomic.Bool),
	}
}

// Current returns the loaded track, or nil if none.
func (p *Player) Current() *playlist.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Current()
}

// Query reports the engine's position, duration and state. A faulted
// engine returns an error wrapping ErrBackendLost.
func (p *Player) Query() (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.syncLocked()
	if p.state == engineFaulted {
		return Snapshot{State: Idle, Duration: p.duration}, fmt.Errorf("%w: %w", ErrBackendLost, p.fault)
	}

	snap := Snapshot{
		State:    p.state.canonical(),
		Duration: p.duration,
	}
	if p.streamer != nil {
		p.out.Lock()
		snap.Position = p.format.SampleRate.D(p.streamer.Position())
		p.out.Unlock()
		snap.Buffered = p.duration
	}
	return snap, nil
}

// syncLocked folds asynchronous signals from the output into state.
func (p *Player) syncLocked() {
	if p.streamer != nil {
		if err := p.streamer.Err(); err != nil {
			p.faultLocked(err)
			return
		}
	}
	if p.state == engineRunning && p.drained.Load() {
		p.state = engineDrained
		p.queued = false
	}
}

func (p *Player) faultLocked(err error) {
	p.releaseLocked()
	p.state = engineFaulted
	p.fault = err
}

// Close releases the loaded stream.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.releaseLocked()
	p.state = engineEmpty
	return nil
}
