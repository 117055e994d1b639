// Package catalog builds playable tracks from audio files on disk.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/playlist"
)

const numWorkers = 8

// ErrNotAudio is returned for files the player cannot decode.
var ErrNotAudio = errors.New("not an audio file")

var audioExts = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
	".oga":  true,
}

// IsAudioFile reports whether path has an extension the player decodes.
func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

// TrackID returns the stable id of the file at abs.
func TrackID(abs string) string {
	h := fnv.New64a()
	h.Write([]byte(abs))
	return fmt.Sprintf("file:%016x", h.Sum64())
}

// FileURL returns the file:// url of abs.
func FileURL(abs string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// Scan resolves paths (files or directories, walked recursively) into
// tracks, in path order. Unreadable entries are skipped.
func Scan(ctx context.Context, paths ...string) ([]playlist.Track, error) {
	files, err := discover(ctx, paths)
	if err != nil {
		return nil, err
	}

	results := make([]*playlist.Track, len(files))
	work := make(chan int)
	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for i := range work {
				t, err := ReadTrack(files[i])
				if err != nil {
					log.Debug().Err(err).Str("path", files[i]).Msg("catalog: skipping file")
					continue
				}
				results[i] = &t
			}
		})
	}

feed:
	for i := range files {
		select {
		case work <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracks := make([]playlist.Track, 0, len(files))
	for _, t := range results {
		if t != nil {
			tracks = append(tracks, *t)
		}
	}
	return tracks, nil
}

// discover lists the audio files under paths. Missing roots are an error;
// problems below a root are skipped.
func discover(ctx context.Context, paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if IsAudioFile(abs) {
				files = append(files, abs)
			}
			continue
		}
		err = filepath.WalkDir(abs, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil //nolint:nilerr // keep scanning siblings
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !d.IsDir() && IsAudioFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// ReadTrack builds the track for one audio file. Files without readable tags
// still load, titled after the file name.
func ReadTrack(path string) (playlist.Track, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return playlist.Track{}, err
	}
	if !IsAudioFile(abs) {
		return playlist.Track{}, fmt.Errorf("%w: %s", ErrNotAudio, abs)
	}

	t := playlist.Track{
		ID:       TrackID(abs),
		Title:    strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		AudioURL: FileURL(abs),
	}

	f, err := os.Open(abs)
	if err != nil {
		return playlist.Track{}, err
	}
	defer f.Close()

	var embeddedLyrics string
	if m, err := tag.ReadFrom(f); err == nil {
		if m.Title() != "" {
			t.Title = m.Title()
		}
		t.Artist = m.Artist()
		if t.Artist == "" {
			t.Artist = m.AlbumArtist()
		}
		t.Album = m.Album()
		if g := m.Genre(); g != "" {
			t.Tags = []string{g}
		}
		embeddedLyrics = m.Lyrics()
	}

	t.Lyrics = sidecarLyrics(abs)
	if t.Lyrics == "" {
		t.Lyrics = embeddedLyrics
	}
	if art := FindAlbumArt(abs); art != "" {
		t.CoverURL = FileURL(art)
	}
	return t, nil
}

func sidecarLyrics(abs string) string {
	data, err := os.ReadFile(strings.TrimSuffix(abs, filepath.Ext(abs)) + ".lrc")
	if err != nil {
		return ""
	}
	return string(data)
}
