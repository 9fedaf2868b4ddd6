package capability

import (
	"sync"

	"github.com/llehouerou/wavesplay/internal/log"
	"github.com/llehouerou/wavesplay/internal/metrics"
	"github.com/llehouerou/wavesplay/internal/player"
)

var defaultDetector = sync.OnceValue(func() *Detector {
	return NewDetector(player.AcquireHardware, log.WithComponent("capability"))
})

// Detect returns the process-wide capability mode, opening the system
// audio device on first use.
func Detect() Mode {
	return defaultDetector().Detect()
}

// Backend returns the process-wide backend matching Detect.
func Backend() player.Interface {
	return defaultDetector().Backend()
}

// Simulate returns a detector that never tries the hardware, for runs
// where audio output is explicitly disabled.
func Simulate() *Detector {
	d := NewDetector(nil, log.WithComponent("capability"))
	d.once.Do(func() {
		d.mode = Simulated
		d.backend = player.NewSimulated()
		metrics.SetCapabilityMode(false)
	})
	return d
}
