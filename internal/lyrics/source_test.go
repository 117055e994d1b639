package lyrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/nebula/internal/lrclib"
	"github.com/llehouerou/nebula/internal/playlist"
)

func TestSource_LocalFileWins(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "song.flac")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.lrc"), []byte("[00:01.00]local"), 0o644))

	src := NewSource(nil).WithCacheDir("")
	doc, err := src.Fetch(t.Context(), playlist.Track{ID: "x", AudioURL: "file://" + audio})

	require.NoError(t, err)
	assert.Equal(t, "local", doc.Text(0))
}

func TestSource_APIThenCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"syncedLyrics":"[00:01.00]remote"}`))
	}))
	defer srv.Close()

	src := NewSource(lrclib.New(srv.URL)).WithCacheDir(t.TempDir())
	track := playlist.Track{ID: "x", Artist: "AC/DC", Title: "Song?", AudioURL: "https://cdn/x.mp3"}

	doc, err := src.Fetch(t.Context(), track)
	require.NoError(t, err)
	assert.Equal(t, "remote", doc.Text(0))

	doc, err = src.Fetch(t.Context(), track)
	require.NoError(t, err)
	assert.Equal(t, "remote", doc.Text(0))
	assert.Equal(t, int32(1), hits.Load(), "second fetch should come from cache")
}

func TestSource_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewSource(lrclib.New(srv.URL)).WithCacheDir("")

	_, err := src.Fetch(t.Context(), playlist.Track{ID: "x", Artist: "a", Title: "b"})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = src.Fetch(t.Context(), playlist.Track{ID: "y"})
	assert.True(t, errors.Is(err, ErrNotFound), "no artist/title cannot be looked up")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "AC_DC", sanitizeFilename("AC/DC"))
	assert.Equal(t, "_", sanitizeFilename(" .. "))
}
