package lyrics

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"

	"github.com/llehouerou/nebula/internal/lrclib"
	"github.com/llehouerou/nebula/internal/playlist"
)

// ErrNotFound is returned when no source has lyrics for a track.
var ErrNotFound = errors.New("lyrics not found")

// Fetcher finds lyrics for tracks that carry none.
type Fetcher interface {
	Fetch(ctx context.Context, t playlist.Track) (*Document, error)
}

// Source finds lyrics in, by priority: a .lrc file next to a local audio
// file, the on-disk cache, then the lrclib API (caching what it returns).
type Source struct {
	client   *lrclib.Client
	cacheDir string
}

var _ Fetcher = (*Source)(nil)

// NewSource creates a source caching under the XDG cache directory.
func NewSource(client *lrclib.Client) *Source {
	return &Source{
		client:   client,
		cacheDir: filepath.Join(xdg.CacheHome, "nebula", "lyrics"),
	}
}

// WithCacheDir returns a copy of s caching under dir ("" disables caching).
func (s *Source) WithCacheDir(dir string) *Source {
	c := *s
	c.cacheDir = dir
	return &c
}

// Fetch returns the lyrics for t.
func (s *Source) Fetch(ctx context.Context, t playlist.Track) (*Document, error) {
	if p := localPath(t.AudioURL); p != "" {
		if doc, err := loadFile(lrcPathForAudio(p)); err == nil {
			return doc, nil
		}
	}

	if t.Artist == "" || t.Title == "" {
		return nil, ErrNotFound
	}

	if path := s.cachePath(t.Artist, t.Title); path != "" {
		if doc, err := loadFile(path); err == nil {
			return doc, nil
		}
	}

	if s.client == nil {
		return nil, ErrNotFound
	}
	res, err := s.client.Get(ctx, t.Artist, t.Title, t.Album, t.Duration)
	if err != nil {
		if errors.Is(err, lrclib.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	text := res.Text()
	doc := Parse(text)
	if doc.Len() == 0 {
		return nil, ErrNotFound
	}
	_ = s.saveToCache(t.Artist, t.Title, text)
	return doc, nil
}

// localPath returns the filesystem path of a file:// or bare-path url.
func localPath(audioURL string) string {
	u, err := url.Parse(audioURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "file":
		return u.Path
	case "":
		return audioURL
	}
	return ""
}

// lrcPathForAudio returns the expected .lrc file path for an audio file.
func lrcPathForAudio(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return audioPath[:len(audioPath)-len(ext)] + ".lrc"
}

func loadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := Parse(string(data))
	if doc.Len() == 0 {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *Source) cachePath(artist, title string) string {
	if s.cacheDir == "" {
		return ""
	}
	return filepath.Join(s.cacheDir, sanitizeFilename(artist), sanitizeFilename(title)+".lrc")
}

func (s *Source) saveToCache(artist, title, content string) error {
	path := s.cachePath(artist, title)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

func sanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		name = "_"
	}
	return name
}
