package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/wavesplay/internal/errmsg"
	"github.com/llehouerou/wavesplay/internal/lastfm"
	"github.com/llehouerou/wavesplay/internal/log"
)

const (
	// authTimeout bounds how long link waits for the browser callback.
	authTimeout = 5 * time.Minute

	// Last.fm rejects scrobbles older than two weeks.
	maxScrobbleAge = 14 * 24 * time.Hour
)

var errLastfmNotConfigured = errors.New("set [lastfm] api_key and api_secret in config.toml")

func init() {
	lastfmCmd.AddCommand(lastfmLinkCmd, lastfmUnlinkCmd, lastfmRetryCmd)
	rootCmd.AddCommand(lastfmCmd)
}

var lastfmCmd = &cobra.Command{
	Use:   "lastfm",
	Short: "Manage Last.fm scrobbling",
}

var lastfmLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Authorize wavesplay to scrobble to your Last.fm account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cfg.HasLastfmConfig() {
			return errors.New(errmsg.Format(errmsg.OpLastfmLink, errLastfmNotConfigured))
		}
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Close()

		client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
		srv, err := lastfm.StartAuthServer()
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmLink, err))
		}
		defer srv.Shutdown()

		token, err := client.GetToken()
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmLink, err))
		}
		url := client.GetAuthURL(token, lastfm.CallbackURL())
		fmt.Fprintf(cmd.OutOrStdout(), "Authorize wavesplay in your browser:\n  %s\n", url)
		if err := lastfm.OpenBrowser(url); err != nil {
			l := log.WithComponent("lastfm")
			l.Debug().Err(err).Msg("open browser")
		}

		authorized := lastfm.WaitForToken(cmd.Context(), srv.TokenChan(), authTimeout)
		if authorized == "" {
			return errors.New(errmsg.Format(errmsg.OpLastfmLink, errors.New("authorization timed out")))
		}
		username, key, err := client.GetSession(authorized)
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmLink, err))
		}
		if err := st.SaveLastfmSession(username, key); err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmLink, err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Linked Last.fm account %s\n", username)
		return nil
	},
}

var lastfmUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Stop scrobbling and forget the Last.fm session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteLastfmSession(); err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmUnlink, err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Last.fm unlinked")
		return nil
	},
}

var lastfmRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Resubmit scrobbles that failed earlier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Close()

		fw, err := newForwarder(st)
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmRetry, err))
		}
		if fw == nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmRetry, errors.New("not linked, run wavesplay lastfm link first")))
		}
		if err := st.DeleteOldPendingScrobbles(maxScrobbleAge); err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmRetry, err))
		}
		ok, failed, err := fw.RetryPending()
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmRetry, err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Resubmitted %d scrobbles, %d still pending\n", ok, failed)
		return nil
	},
}
