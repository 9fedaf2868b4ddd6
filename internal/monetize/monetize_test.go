package monetize

import (
	"testing"
	"time"

	"github.com/llehouerou/wavesplay/internal/player"
	"github.com/llehouerou/wavesplay/internal/session"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// run evaluates one tick per state, one second apart, and returns the
// 1-based tick numbers at which events fired.
func run(ts session.TrackSession, th Thresholds, states []player.State) (session.TrackSession, map[Kind][]int) {
	fired := make(map[Kind][]int)
	for i, st := range states {
		now := t0.Add(time.Duration(i+1) * time.Second)
		d := Evaluate(player.Snapshot{State: st}, ts, now, th)
		ts = d.Session
		if d.Event != nil {
			fired[d.Event.Kind] = append(fired[d.Event.Kind], i+1)
		}
	}
	return ts, fired
}

func repeat(st player.State, n int) []player.State {
	out := make([]player.State, n)
	for i := range out {
		out[i] = st
	}
	return out
}

func concat(parts ...[]player.State) []player.State {
	var out []player.State
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func newSession(preview bool) session.TrackSession {
	return session.TrackSession{TrackID: "trk", IsPreviewMode: preview, LastSampleAt: t0, LoadedAt: t0}
}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		preview bool
		states  []player.State
		want    map[Kind][]int
	}{
		{
			name:    "preview fires at tick 15 only",
			preview: true,
			states:  repeat(player.Playing, 20),
			want:    map[Kind][]int{PreviewEnded: {15}},
		},
		{
			name:   "buffering does not accrue",
			states: concat(repeat(player.Buffering, 5), repeat(player.Playing, 35)),
			want:   map[Kind][]int{QualifyingPlayRecorded: {35}},
		},
		{
			name:   "pause keeps accrued time",
			states: concat(repeat(player.Playing, 10), repeat(player.Paused, 5), repeat(player.Playing, 25)),
			want:   map[Kind][]int{QualifyingPlayRecorded: {35}},
		},
		{
			name:   "short of threshold",
			states: concat(repeat(player.Playing, 29), repeat(player.Paused, 30)),
			want:   map[Kind][]int{},
		},
		{
			name:    "preview session never qualifies",
			preview: true,
			states:  repeat(player.Playing, 60),
			want:    map[Kind][]int{PreviewEnded: {15}},
		},
		{
			name:   "authenticated session never previews",
			states: repeat(player.Playing, 14),
			want:   map[Kind][]int{},
		},
		{
			name:   "track ending at the threshold qualifies",
			states: concat(repeat(player.Playing, 29), repeat(player.Stopped, 5)),
			want:   map[Kind][]int{QualifyingPlayRecorded: {30}},
		},
		{
			name:    "preview ending with the track",
			preview: true,
			states:  concat(repeat(player.Playing, 14), repeat(player.Stopped, 5)),
			want:    map[Kind][]int{PreviewEnded: {15}},
		},
		{
			name:   "track ending before the threshold",
			states: concat(repeat(player.Playing, 28), repeat(player.Stopped, 5)),
			want:   map[Kind][]int{},
		},
		{
			name:   "pause does not count the closing tick",
			states: concat(repeat(player.Playing, 29), repeat(player.Paused, 5)),
			want:   map[Kind][]int{},
		},
		{
			name:   "stopped closes the interval",
			states: concat(repeat(player.Playing, 20), repeat(player.Stopped, 20)),
			want:   map[Kind][]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := run(newSession(tt.preview), DefaultThresholds(), tt.states)
			if len(got) != len(tt.want) {
				t.Fatalf("fired = %v, want %v", got, tt.want)
			}
			for k, ticks := range tt.want {
				if len(got[k]) != len(ticks) {
					t.Fatalf("%v fired at %v, want %v", k, got[k], ticks)
				}
				for i := range ticks {
					if got[k][i] != ticks[i] {
						t.Errorf("%v fired at %v, want %v", k, got[k], ticks)
					}
				}
			}
		})
	}
}

func TestEvaluate_LatchesOnce(t *testing.T) {
	ts, _ := run(newSession(false), DefaultThresholds(), repeat(player.Playing, 31))
	if !ts.HasRecordedQualifyingPlay {
		t.Fatal("HasRecordedQualifyingPlay = false after 31s of play")
	}
	if ts.HasFiredPreviewCutoff {
		t.Error("HasFiredPreviewCutoff set on authenticated session")
	}

	d := Evaluate(player.Snapshot{State: player.Playing}, ts, t0.Add(time.Hour), DefaultThresholds())
	if d.Event != nil {
		t.Errorf("event after latch: %+v", d.Event)
	}
	if !d.Session.HasRecordedQualifyingPlay {
		t.Error("latch reset")
	}
}

func TestEvaluate_LateTickFiresOnce(t *testing.T) {
	ts := newSession(false)
	th := DefaultThresholds()

	d := Evaluate(player.Snapshot{State: player.Playing}, ts, t0.Add(time.Second), th)
	if d.Event != nil {
		t.Fatalf("fired on first tick: %+v", d.Event)
	}

	// Backgrounded: the next tick arrives 90s later.
	late := t0.Add(91 * time.Second)
	d = Evaluate(player.Snapshot{State: player.Playing}, d.Session, late, th)
	if d.Event == nil {
		t.Fatal("no event on late tick")
	}
	if d.Event.Kind != QualifyingPlayRecorded || d.Event.TrackID != "trk" {
		t.Errorf("event = %+v", d.Event)
	}
	if !d.Event.Timestamp.Equal(late) {
		t.Errorf("Timestamp = %v, want %v", d.Event.Timestamp, late)
	}
	if d.Event.Accrued != 91*time.Second {
		t.Errorf("Accrued = %v, want 91s", d.Event.Accrued)
	}

	d = Evaluate(player.Snapshot{State: player.Playing}, d.Session, late.Add(time.Second), th)
	if d.Event != nil {
		t.Errorf("second event: %+v", d.Event)
	}
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	th := Thresholds{Preview: 3 * time.Second, Qualifying: 5 * time.Second}

	_, got := run(newSession(true), th, repeat(player.Playing, 10))
	if len(got[PreviewEnded]) != 1 || got[PreviewEnded][0] != 3 {
		t.Errorf("preview fired at %v, want [3]", got[PreviewEnded])
	}

	_, got = run(newSession(false), th, repeat(player.Playing, 10))
	if len(got[QualifyingPlayRecorded]) != 1 || got[QualifyingPlayRecorded][0] != 5 {
		t.Errorf("qualifying fired at %v, want [5]", got[QualifyingPlayRecorded])
	}
}

func TestEvaluate_ClockGoingBackwards(t *testing.T) {
	ts := newSession(false)
	ts.LastSampleAt = t0.Add(10 * time.Second)

	d := Evaluate(player.Snapshot{State: player.Playing}, ts, t0, DefaultThresholds())
	if got := Elapsed(d.Session, d.Session.LastSampleAt); got != 0 {
		t.Errorf("Elapsed = %v, want 0", got)
	}
	if !d.Session.LastSampleAt.Equal(ts.LastSampleAt) {
		t.Errorf("LastSampleAt moved backwards to %v", d.Session.LastSampleAt)
	}
}

func TestElapsed(t *testing.T) {
	start := t0.Add(5 * time.Second)
	tests := []struct {
		name string
		ts   session.TrackSession
		now  time.Time
		want time.Duration
	}{
		{"nothing", session.TrackSession{}, t0, 0},
		{"closed only", session.TrackSession{Accrued: 7 * time.Second}, t0, 7 * time.Second},
		{"open interval", session.TrackSession{Accrued: 7 * time.Second, PlayStartedAt: &start}, t0.Add(8 * time.Second), 10 * time.Second},
		{"now before start", session.TrackSession{PlayStartedAt: &start}, t0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Elapsed(tt.ts, tt.now); got != tt.want {
				t.Errorf("Elapsed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	if PreviewEnded.String() != "preview_ended" || QualifyingPlayRecorded.String() != "qualifying_play" {
		t.Errorf("unexpected kind names %q %q", PreviewEnded, QualifyingPlayRecorded)
	}
	if Kind(0).String() != "unknown" {
		t.Errorf("Kind(0) = %q", Kind(0))
	}
}
