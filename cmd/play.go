package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llehouerou/wavesplay/internal/capability"
	"github.com/llehouerou/wavesplay/internal/errmsg"
	"github.com/llehouerou/wavesplay/internal/log"
	"github.com/llehouerou/wavesplay/internal/monetize"
	"github.com/llehouerou/wavesplay/internal/mpris"
	"github.com/llehouerou/wavesplay/internal/notify"
	"github.com/llehouerou/wavesplay/internal/playback"
	"github.com/llehouerou/wavesplay/internal/player"
)

func init() {
	playCmd.Flags().Duration("start-at", 0, "Seek to this position before playing")
	playCmd.Flags().Bool("simulate", false, "Do not open the audio device")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <source>...",
	Short: "Play files or URLs in order",
	Long: "Play files or URLs in order. Logged-in listeners have qualifying plays " +
		"recorded; everyone else gets a preview of each track.",
	Args: cobra.MinimumNArgs(1),
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	startAt, _ := cmd.Flags().GetDuration("start-at")
	simulate, _ := cmd.Flags().GetBool("simulate")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openState()
	if err != nil {
		return err
	}
	defer st.Close()

	var wg sync.WaitGroup
	defer wg.Wait()

	l := log.WithComponent("play")
	ec := cfg.GetEngineConfig()
	backend, mode := detectBackend(simulate || ec.ForceSimulated)
	svc := playback.New(backend, mode, playback.Options{
		TickInterval: ec.TickInterval,
		Thresholds: monetize.Thresholds{
			Preview:    ec.PreviewLength,
			Qualifying: ec.QualifyingPlay,
		},
		Auth: st,
	})
	defer svc.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consume := func(fn func(context.Context, *playback.Subscription)) {
		sub := svc.Subscribe()
		wg.Go(func() { fn(ctx, sub) })
	}

	rep := newReporter(cmd.OutOrStdout())
	consume(rep.run)
	if rec := newRecorder(st); rec != nil {
		consume(rec.Run)
	}
	prompt := notify.NewPreviewPrompt(newNotifier(l), svc, log.WithComponent("notify"))
	consume(prompt.Run)

	fw, err := newForwarder(st)
	if err != nil {
		l.Warn().Err(err).Msg("scrobbling disabled")
	} else if fw != nil {
		consume(func(ctx context.Context, sub *playback.Subscription) {
			if ok, failed, err := fw.RetryPending(); err != nil {
				l.Warn().Err(err).Msg("resubmit pending scrobbles")
			} else if ok+failed > 0 {
				l.Info().Int("ok", ok).Int("failed", failed).Msg("resubmitted pending scrobbles")
			}
			fw.Run(ctx, sub)
		})
	}

	if media, err := mpris.New(svc); err != nil {
		l.Warn().Err(err).Msg("media keys unavailable")
	} else {
		defer media.Close()
	}

	if addr := cfg.Metrics.Addr; addr != "" {
		wg.Go(func() { serveMetrics(ctx, addr, l) })
	}

	if mode == capability.Simulated {
		rep.printf("No audio output, playing silently\n")
	}

	tracks := tracksFromArgs(args)
	if _, err := svc.Load(tracks...); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaybackLoad, args[0], err))
	}
	if startAt > 0 {
		if err := svc.SeekTo(startAt); err != nil {
			rep.printf("%s\n", errmsg.Format(errmsg.OpPlaybackSeek, err))
		}
	}
	if err := svc.Play(); err != nil {
		return errors.New(errmsg.Format(errmsg.OpPlaybackStart, err))
	}

	wg.Go(func() { _ = svc.Run(ctx) })

	select {
	case <-ctx.Done():
	case <-rep.finished:
	}
	return nil
}

// tracksFromArgs builds the queue. The source doubles as the catalog ID.
func tracksFromArgs(args []string) []playback.Track {
	tracks := make([]playback.Track, 0, len(args))
	for _, src := range args {
		tracks = append(tracks, playback.Track{ID: src, Source: src})
	}
	return tracks
}

// playbackOps maps backend operation names to user-facing operations.
var playbackOps = map[player.Op]errmsg.Op{
	player.OpLoad:         errmsg.OpPlaybackLoad,
	player.OpPlay:         errmsg.OpPlaybackStart,
	player.OpPause:        errmsg.OpPlaybackPause,
	player.OpSeek:         errmsg.OpPlaybackSeek,
	player.OpSkipNext:     errmsg.OpPlaybackSkip,
	player.OpSkipPrevious: errmsg.OpPlaybackSkip,
	player.OpStop:         errmsg.OpPlaybackStop,
}

func playbackOp(name string) errmsg.Op {
	if op, ok := playbackOps[player.Op(name)]; ok {
		return op
	}
	return errmsg.OpPlaybackStart
}
