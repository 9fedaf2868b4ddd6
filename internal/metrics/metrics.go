// Package metrics exposes engine counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sample outcomes.
const (
	SampleOK        = "ok"
	SampleSkipped   = "skipped"
	SampleSuspended = "suspended"
	SampleLost      = "lost"
)

var (
	capabilityHardware = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavesplay_capability_hardware",
		Help: "Whether the hardware playback backend is active (1) or simulated (0)",
	})

	samplerTicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavesplay_sampler_ticks_total",
		Help: "Progress sampler ticks by outcome",
	}, []string{"outcome"}) // outcome=ok|skipped|suspended|lost

	monetizationEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavesplay_monetization_events_total",
		Help: "Monetization events emitted by kind",
	}, []string{"kind"}) // kind=preview_ended|qualifying_play

	eventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavesplay_events_dropped_total",
		Help: "Events dropped because a subscriber buffer was full",
	}, []string{"channel"})

	controlErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavesplay_control_errors_total",
		Help: "Failed playback control operations by operation",
	}, []string{"op"})

	playRecordingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavesplay_play_recordings_total",
		Help: "Qualifying play submissions to the rewards API by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	scrobblesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavesplay_scrobbles_total",
		Help: "Last.fm scrobbles of qualifying plays by outcome",
	}, []string{"outcome"})

	previewPromptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavesplay_preview_prompts_total",
		Help: "Sign-up prompts shown after a preview ended",
	})
)

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// SetCapabilityMode records the selected backend.
func SetCapabilityMode(hardware bool) {
	if hardware {
		capabilityHardware.Set(1)
	} else {
		capabilityHardware.Set(0)
	}
}

// RecordSample counts one sampler tick.
func RecordSample(result string) {
	samplerTicksTotal.WithLabelValues(result).Inc()
}

// RecordMonetizationEvent counts an emitted event.
func RecordMonetizationEvent(kind string) {
	monetizationEventsTotal.WithLabelValues(kind).Inc()
}

// RecordDroppedEvent counts an event a subscriber could not take.
func RecordDroppedEvent(channel string) {
	eventsDroppedTotal.WithLabelValues(channel).Inc()
}

// RecordControlError counts a failed control operation.
func RecordControlError(op string) {
	controlErrorsTotal.WithLabelValues(op).Inc()
}

// RecordPlayRecording counts a rewards API submission.
func RecordPlayRecording(ok bool) {
	playRecordingsTotal.WithLabelValues(outcome(ok)).Inc()
}

// RecordScrobble counts a Last.fm submission.
func RecordScrobble(ok bool) {
	scrobblesTotal.WithLabelValues(outcome(ok)).Inc()
}

// RecordPreviewPrompt counts a sign-up prompt.
func RecordPreviewPrompt() {
	previewPromptsTotal.Inc()
}
