package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/llehouerou/wavesplay/internal/errmsg"
	"github.com/llehouerou/wavesplay/internal/playback"
	"github.com/llehouerou/wavesplay/internal/player"
)

// reporter prints engine events for the play command. finished is closed
// once the queue has played out or the backend is gone.
type reporter struct {
	mu  sync.Mutex
	out io.Writer

	finished chan struct{}
	once     sync.Once
}

func newReporter(out io.Writer) *reporter {
	return &reporter{out: out, finished: make(chan struct{})}
}

func (r *reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func (r *reporter) finish() {
	r.once.Do(func() { close(r.finished) })
}

func (r *reporter) run(ctx context.Context, sub *playback.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			r.finish()
			return
		case e := <-sub.TrackChanged:
			if e.Current != nil {
				r.printf("Now playing: %s\n", trackLabel(e.Current))
			}
		case e := <-sub.StateChanged:
			// Auto-advance never reports Stopped, so this is an
			// explicit stop or the end of the queue.
			if e.Current == player.Stopped {
				r.finish()
			}
		case e := <-sub.PreviewEnded:
			r.printf("Preview of %s is over. Run `wavesplay login` to hear full tracks.\n", trackLabel(e.Track))
		case e := <-sub.QualifyingPlay:
			r.printf("Play of %s counted\n", trackLabel(e.Track))
		case e := <-sub.Error:
			r.printf("%s\n", errmsg.FormatWith(playbackOp(e.Operation), e.Source, e.Err))
			if errors.Is(e.Err, player.ErrBackendLost) {
				r.finish()
			}
		}
	}
}

func trackLabel(t *playback.Track) string {
	switch {
	case t == nil:
		return "track"
	case t.Artist != "" && t.Title != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	default:
		return t.Source
	}
}
