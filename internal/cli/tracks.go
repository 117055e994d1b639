package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/llehouerou/nebula/internal/errmsg"
	"github.com/llehouerou/nebula/internal/playlist"
	"github.com/llehouerou/nebula/internal/state"
)

const currentMarker = "▶"

func newHistoryCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the local play history, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(o)
			if err != nil {
				return err
			}
			defer store.Close()

			tracks, err := store.LoadHistory()
			if err != nil {
				return fmt.Errorf("%s", errmsg.Format(errmsg.OpStateLoad, err))
			}
			renderTracks(cmd.OutOrStdout(), tracks, "")
			return nil
		},
	}
}

func newQueueCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the saved play queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(o)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.Load()
			if err != nil {
				return fmt.Errorf("%s", errmsg.Format(errmsg.OpStateLoad, err))
			}
			current := ""
			if snap.Current != nil {
				current = snap.Current.ID
			}
			renderTracks(cmd.OutOrStdout(), snap.Queue, current)
			if len(snap.Queue) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nMode: %s\n", snap.Mode)
			}
			return nil
		},
	}
}

func openStore(o *rootOptions) (*state.Manager, error) {
	store, err := state.Open(o.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("%s", errmsg.Format(errmsg.OpStateLoad, err))
	}
	return store, nil
}

// renderTracks prints tracks as a table, marking currentID.
func renderTracks(w io.Writer, tracks []playlist.Track, currentID string) {
	if len(tracks) == 0 {
		fmt.Fprintln(w, "No tracks.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "#", "Title", "Artist", "Album", "Length"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, WidthMax: 40},
		{Number: 6, Align: text.AlignRight},
	})

	for i, tr := range tracks {
		marker := ""
		if tr.ID == currentID {
			marker = text.FgGreen.Sprint(currentMarker)
		}
		t.AppendRow(table.Row{marker, i + 1, tr.Title, tr.Artist, tr.Album, formatLength(tr.Duration)})
	}
	t.Render()
}

func formatLength(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
