package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavesplay/internal/capability"
	"github.com/llehouerou/wavesplay/internal/lastfm"
	"github.com/llehouerou/wavesplay/internal/log"
	"github.com/llehouerou/wavesplay/internal/notify"
	"github.com/llehouerou/wavesplay/internal/player"
	"github.com/llehouerou/wavesplay/internal/rewards"
	"github.com/llehouerou/wavesplay/internal/state"
)

// detectBackend picks the backend for this run. Simulated runs never touch
// the audio device.
func detectBackend(simulate bool) (player.Interface, capability.Mode) {
	if simulate {
		d := capability.Simulate()
		return d.Backend(), d.Detect()
	}
	return capability.Backend(), capability.Detect()
}

// newRecorder returns nil when the rewards API is not configured.
func newRecorder(st state.Interface) *rewards.Recorder {
	if !cfg.HasRewardsConfig() {
		return nil
	}
	rc := cfg.GetRewardsConfig()
	client := rewards.NewClient(rc.URL, st, rc.Timeout)
	return rewards.NewRecorder(client, log.WithComponent("rewards"))
}

// newForwarder returns nil when Last.fm is not configured or not linked.
func newForwarder(st state.Interface) (*lastfm.Forwarder, error) {
	if !cfg.HasLastfmConfig() {
		return nil, nil //nolint:nilnil // nil forwarder means scrobbling is off
	}
	sess, err := st.GetLastfmSession()
	if err != nil || sess == nil {
		return nil, err
	}
	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	client.SetSessionKey(sess.SessionKey)
	return lastfm.NewForwarder(client, st, log.WithComponent("lastfm")), nil
}

// newNotifier falls back to a no-op notifier when notifications are off
// or the session bus is unavailable.
func newNotifier(l zerolog.Logger) notify.Notifier {
	if !cfg.NotifyEnabled() {
		return notify.Disabled()
	}
	n, err := notify.New()
	if err != nil {
		l.Warn().Err(err).Msg("desktop notifications unavailable")
		return notify.Disabled()
	}
	return n
}

// serveMetrics exposes Prometheus metrics on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, l zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	l.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error().Err(err).Msg("metrics server stopped")
	}
}
