package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates path (and its parents) with junk content. The files have
// no tags, which exercises the file-name fallback.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.mp3", true},
		{"a.FLAC", true},
		{"a.wav", true},
		{"a.ogg", true},
		{"a.m4a", false},
		{"cover.jpg", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsAudioFile(tt.path); got != tt.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestReadTrack_Untagged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Intro.mp3")
	writeFile(t, path, "not really audio")

	tr, err := ReadTrack(path)
	require.NoError(t, err)

	assert.Equal(t, "Intro", tr.Title)
	assert.Equal(t, TrackID(path), tr.ID)
	assert.Equal(t, "file://"+filepath.ToSlash(path), tr.AudioURL)
	assert.Empty(t, tr.CoverURL)
	assert.Empty(t, tr.Lyrics)
}

func TestReadTrack_SidecarAndCover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.flac")
	writeFile(t, path, "x")
	writeFile(t, filepath.Join(dir, "song.lrc"), "[00:01.00]hello")
	writeFile(t, filepath.Join(dir, "folder.jpg"), "img")
	writeFile(t, filepath.Join(dir, "cover.png"), "img")

	tr, err := ReadTrack(path)
	require.NoError(t, err)

	assert.Equal(t, "[00:01.00]hello", tr.Lyrics)
	assert.Equal(t, FileURL(filepath.Join(dir, "cover.png")), tr.CoverURL)
}

func TestReadTrack_NotAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, "x")

	_, err := ReadTrack(path)
	assert.ErrorIs(t, err, ErrNotAudio)
}

func TestTrackID_Stable(t *testing.T) {
	assert.Equal(t, TrackID("/music/a.mp3"), TrackID("/music/a.mp3"))
	assert.NotEqual(t, TrackID("/music/a.mp3"), TrackID("/music/b.mp3"))
	assert.Len(t, TrackID("/music/a.mp3"), len("file:")+16)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "2.mp3"), "x")
	writeFile(t, filepath.Join(dir, "a", "1.ogg"), "x")
	writeFile(t, filepath.Join(dir, "a", "cover.jpg"), "x")
	writeFile(t, filepath.Join(dir, "a", "readme.txt"), "x")
	single := filepath.Join(t.TempDir(), "single.wav")
	writeFile(t, single, "x")

	tracks, err := Scan(t.Context(), dir, single)
	require.NoError(t, err)

	titles := make([]string, len(tracks))
	for i, tr := range tracks {
		titles[i] = tr.Title
	}
	assert.Equal(t, []string{"1", "2", "single"}, titles)
	assert.NotEmpty(t, tracks[0].CoverURL)
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := Scan(t.Context(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestScan_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "1.mp3"), "x")
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Scan(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindAlbumArt_NotFound(t *testing.T) {
	got := FindAlbumArt(filepath.Join(t.TempDir(), "track.mp3"))
	if got != "" {
		t.Errorf("FindAlbumArt() = %q, want empty string", got)
	}
}
