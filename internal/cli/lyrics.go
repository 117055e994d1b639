package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/nebula/internal/catalog"
	"github.com/llehouerou/nebula/internal/errmsg"
	"github.com/llehouerou/nebula/internal/lrclib"
	"github.com/llehouerou/nebula/internal/lyrics"
)

func newLyricsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lyrics <file>",
		Short: "Print the lyrics of an audio or .lrc file",
		Long: `Print a parsed lyric document. For audio files the embedded lyrics or a
sidecar .lrc are used, then lrclib.net when lyric fetching is enabled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var client *lrclib.Client
			if o.cfg.FetchLyrics() {
				client = lrclib.New(o.cfg.Lyrics.LrclibURL)
			}
			doc, err := loadDocument(cmd.Context(), args[0], lyrics.NewSource(client))
			if err != nil {
				return fmt.Errorf("%s", errmsg.FormatWith(errmsg.OpLyricsLoad, args[0], err))
			}
			printDocument(cmd.OutOrStdout(), doc)
			return nil
		},
	}
}

func loadDocument(ctx context.Context, path string, fetcher lyrics.Fetcher) (*lyrics.Document, error) {
	if !catalog.IsAudioFile(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return lyrics.Parse(string(data)), nil
	}

	t, err := catalog.ReadTrack(path)
	if err != nil {
		return nil, err
	}
	if t.HasLyrics() {
		return lyrics.Parse(t.Lyrics), nil
	}
	doc, err := fetcher.Fetch(ctx, t)
	if errors.Is(err, lyrics.ErrNotFound) {
		return &lyrics.Document{}, nil
	}
	return doc, err
}

func printDocument(w io.Writer, doc *lyrics.Document) {
	if doc.Title != "" || doc.Artist != "" {
		fmt.Fprintf(w, "%s - %s\n\n", doc.Artist, doc.Title)
	}
	if doc.Len() == 0 {
		fmt.Fprintln(w, "No lyrics.")
		return
	}
	for _, l := range doc.All() {
		if l.Time == lyrics.Unsynced {
			fmt.Fprintln(w, l.Text)
			continue
		}
		fmt.Fprintf(w, "[%s] %s\n", formatStamp(l.Time), l.Text)
	}
}

func formatStamp(d time.Duration) string {
	cs := d.Milliseconds() / 10
	return fmt.Sprintf("%02d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}
