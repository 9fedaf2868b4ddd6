// Package capability decides once per process whether the hardware
// playback backend is usable.
package capability

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesplay/internal/metrics"
	"github.com/llehouerou/wavesplay/internal/player"
)

// Mode is the playback backend selected for the process lifetime.
type Mode int

const (
	Simulated Mode = iota
	Hardware
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Hardware:
		return "hardware"
	case Simulated:
		return "simulated"
	default:
		return "unknown"
	}
}

// AcquireFunc attempts to open the hardware backend.
type AcquireFunc func() (player.Interface, error)

// Detector runs an AcquireFunc at most once and remembers the outcome.
type Detector struct {
	acquire AcquireFunc
	log     zerolog.Logger

	once    sync.Once
	mode    Mode
	backend player.Interface
}

// NewDetector creates a detector. Nothing is attempted until Detect or
// Backend is first called.
func NewDetector(acquire AcquireFunc, log zerolog.Logger) *Detector {
	return &Detector{acquire: acquire, log: log}
}

// Detect returns the capability mode, acquiring the hardware backend on
// the first call. Failures, including panics in acquire, select Simulated.
func (d *Detector) Detect() Mode {
	d.once.Do(d.detect)
	return d.mode
}

// Backend returns the backend for the detected mode. Repeated calls return
// the same instance.
func (d *Detector) Backend() player.Interface {
	d.once.Do(d.detect)
	return d.backend
}

func (d *Detector) detect() {
	backend, err := d.tryAcquire()
	if err != nil || backend == nil {
		if err == nil {
			err = errors.New("acquire returned no backend")
		}
		d.log.Warn().Err(err).Msg("hardware playback unavailable, using simulated backend")
		d.mode = Simulated
		d.backend = player.NewSimulated()
	} else {
		d.log.Info().Msg("hardware playback backend acquired")
		d.mode = Hardware
		d.backend = backend
	}
	metrics.SetCapabilityMode(d.mode == Hardware)
}

func (d *Detector) tryAcquire() (backend player.Interface, err error) {
	defer func() {
		if r := recover(); r != nil {
			backend, err = nil, fmt.Errorf("acquire panicked: %v", r)
		}
	}()
	if d.acquire == nil {
		return nil, errors.New("no hardware acquirer")
	}
	return d.acquire()
}
