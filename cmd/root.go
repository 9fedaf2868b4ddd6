// Package cmd implements the wavesplay command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/llehouerou/wavesplay/internal/config"
	"github.com/llehouerou/wavesplay/internal/errmsg"
	"github.com/llehouerou/wavesplay/internal/log"
	"github.com/llehouerou/wavesplay/internal/state"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "wavesplay",
	Short:         "Play tracks and report qualifying plays",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
		}
		cfg = c
		log.Configure(log.Config{Level: cfg.Log.Level, Output: cmd.ErrOrStderr(), Console: true})
		return nil
	},
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openState opens the configured database, or the default one.
func openState() (*state.Manager, error) {
	var (
		st  *state.Manager
		err error
	)
	if cfg != nil && cfg.State.Path != "" {
		st, err = state.OpenPath(cfg.State.Path)
	} else {
		st, err = state.Open()
	}
	if err != nil {
		return nil, errors.New(errmsg.Format(errmsg.OpStateOpen, err))
	}
	return st, nil
}
