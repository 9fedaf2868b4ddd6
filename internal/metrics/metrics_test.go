package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetCapabilityMode(t *testing.T) {
	SetCapabilityMode(true)
	if got := testutil.ToFloat64(capabilityHardware); got != 1 {
		t.Errorf("hardware gauge = %v, want 1", got)
	}
	SetCapabilityMode(false)
	if got := testutil.ToFloat64(capabilityHardware); got != 0 {
		t.Errorf("hardware gauge = %v, want 0", got)
	}
}

func TestCounters(t *testing.T) {
	tests := []struct {
		name   string
		record func()
		read   func() float64
	}{
		{
			name:   "sample",
			record: func() { RecordSample(SampleLost) },
			read:   func() float64 { return testutil.ToFloat64(samplerTicksTotal.WithLabelValues(SampleLost)) },
		},
		{
			name:   "monetization event",
			record: func() { RecordMonetizationEvent("qualifying_play") },
			read: func() float64 {
				return testutil.ToFloat64(monetizationEventsTotal.WithLabelValues("qualifying_play"))
			},
		},
		{
			name:   "play recording failure",
			record: func() { RecordPlayRecording(false) },
			read:   func() float64 { return testutil.ToFloat64(playRecordingsTotal.WithLabelValues("failure")) },
		},
		{
			name:   "scrobble success",
			record: func() { RecordScrobble(true) },
			read:   func() float64 { return testutil.ToFloat64(scrobblesTotal.WithLabelValues("success")) },
		},
		{
			name:   "preview prompt",
			record: RecordPreviewPrompt,
			read:   func() float64 { return testutil.ToFloat64(previewPromptsTotal) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.read()
			tt.record()
			if got := tt.read(); got != before+1 {
				t.Errorf("counter = %v, want %v", got, before+1)
			}
		})
	}
}
