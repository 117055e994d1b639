package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/nebula/internal/errmsg"
	"github.com/llehouerou/nebula/internal/lastfm"
)

const authTimeout = 5 * time.Minute

var (
	errLastfmNotConfigured = errors.New("set [lastfm] api_key and api_secret in the config")
	errAuthTimeout         = errors.New("timed out waiting for authorization")
)

func newLastfmCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lastfm",
		Short: "Manage Last.fm scrobbling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(o)
			if err != nil {
				return err
			}
			defer store.Close()

			linked, err := store.GetLastfmSession()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if linked == nil {
				fmt.Fprintln(out, "Last.fm is not linked. Run 'nebula lastfm login'.")
				return nil
			}
			fmt.Fprintf(out, "Linked to %s (%s)\n", linked.Username, humanize.Time(linked.LinkedAt))

			pending, err := store.GetPendingScrobbles()
			if err != nil {
				return err
			}
			if len(pending) > 0 {
				fmt.Fprintf(out, "%d scrobbles waiting to be sent\n", len(pending))
			}
			return nil
		},
	}
	cmd.AddCommand(newLastfmLoginCmd(o), newLastfmLogoutCmd(o))
	return cmd
}

func newLastfmLoginCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Link a Last.fm account through the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !o.cfg.HasLastfmConfig() {
				return fmt.Errorf("%s", errmsg.Format(errmsg.OpLastfmAuth, errLastfmNotConfigured))
			}
			store, err := openStore(o)
			if err != nil {
				return err
			}
			defer store.Close()

			client := lastfm.New(o.cfg.Lastfm.APIKey, o.cfg.Lastfm.APISecret)
			link, err := lastfm.StartLink(client, store, lastfm.AuthCallbackAddr)
			if err != nil {
				return fmt.Errorf("%s", errmsg.Format(errmsg.OpLastfmAuth, err))
			}
			defer link.Close()

			authURL := link.AuthURL()
			out := cmd.OutOrStdout()
			if err := lastfm.OpenBrowser(authURL); err != nil {
				fmt.Fprintf(out, "Open this URL to authorize Nebula:\n\n  %s\n\n", authURL)
			} else {
				fmt.Fprintln(out, "Waiting for authorization in the browser...")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
			defer cancel()
			username, err := link.Wait(ctx)
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				return fmt.Errorf("%s", errmsg.Format(errmsg.OpLastfmAuth, errAuthTimeout))
			case err != nil:
				return fmt.Errorf("%s", errmsg.Format(errmsg.OpLastfmAuth, err))
			}
			fmt.Fprintf(out, "Linked to %s.\n", username)
			return nil
		},
	}
}

func newLastfmLogoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Unlink the Last.fm account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(o)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteLastfmSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Last.fm unlinked.")
			return nil
		},
	}
}
