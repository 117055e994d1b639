// Package cli holds the nebula command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llehouerou/nebula/internal/config"
	"github.com/llehouerou/nebula/internal/errmsg"
	"github.com/llehouerou/nebula/internal/logging"
)

type rootOptions struct {
	configFile string
	userID     string

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "nebula [paths...]",
		Short: "Terminal music player",
		Long: `Nebula plays local music files in the terminal.

Paths may be audio files or directories; with none, the library_sources from
the config are scanned. Without any source the saved queue is restored.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := o.loadConfig(); err != nil {
				return err
			}
			return logging.Console(o.cfg.GetLogLevel())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayer(cmd, o, args)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&o.configFile, "config", "c", "", "extra config file, read after the defaults")
	cmd.Flags().StringVarP(&o.userID, "user", "u", "", "log in to the profile server as this user")

	cmd.AddCommand(
		newHistoryCmd(o),
		newQueueCmd(o),
		newLyricsCmd(o),
		newLastfmCmd(o),
	)
	return cmd
}

func (o *rootOptions) loadConfig() error {
	var extra []string
	if o.configFile != "" {
		if _, err := os.Stat(o.configFile); err != nil {
			return fmt.Errorf("%s", errmsg.FormatWith(errmsg.OpConfigLoad, o.configFile, err))
		}
		extra = append(extra, o.configFile)
	}
	cfg, err := config.Load(extra...)
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpConfigLoad, err))
	}
	o.cfg = cfg
	return nil
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
