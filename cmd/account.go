package cmd

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavesplay/internal/errmsg"
)

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login <user-id> <token>",
	Short: "Store credentials so plays are recorded",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SaveAuthSession(args[0], args[1]); err != nil {
			return errors.New(errmsg.Format(errmsg.OpLogin, err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget credentials; playback falls back to previews",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteAuthSession(); err != nil {
			return errors.New(errmsg.Format(errmsg.OpLogout, err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show account, Last.fm and integration status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Close()

		out := cmd.OutOrStdout()
		auth, err := st.GetAuthSession()
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpStatus, err))
		}
		if auth == nil {
			fmt.Fprintln(out, "Account:  not logged in (previews only)")
		} else {
			fmt.Fprintf(out, "Account:  %s (logged in %s)\n", auth.UserID, humanize.Time(auth.CreatedAt))
		}

		lf, err := st.GetLastfmSession()
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpStatus, err))
		}
		switch {
		case !cfg.HasLastfmConfig():
			fmt.Fprintln(out, "Last.fm:  not configured")
		case lf == nil:
			fmt.Fprintln(out, "Last.fm:  not linked")
		default:
			pending, _ := st.GetPendingScrobbles()
			fmt.Fprintf(out, "Last.fm:  %s (linked %s, %d pending)\n", lf.Username, humanize.Time(lf.LinkedAt), len(pending))
		}

		if cfg.HasRewardsConfig() {
			fmt.Fprintf(out, "Rewards:  %s\n", cfg.Rewards.URL)
		} else {
			fmt.Fprintln(out, "Rewards:  not configured")
		}
		return nil
	},
}
