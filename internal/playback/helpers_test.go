package playback

import (
	"sync"
	"testing"

	"github.com/llehouerou/nebula/internal/player"
	"github.com/llehouerou/nebula/internal/playlist"
)

func tr(id string) playlist.Track {
	return playlist.Track{ID: id, Title: "Song " + id, Artist: "Artist", AudioURL: "file:///music/" + id + ".mp3"}
}

func trackIDs(tracks []playlist.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

// fakeStore records the last value written for each key.
type fakeStore struct {
	mu        sync.Mutex
	volume    float64
	muted     bool
	quality   playlist.Quality
	rate      float64
	mode      playlist.PlayMode
	queue     []playlist.Track
	current   *playlist.Track
	history   []playlist.Track
	histories int
}

func (s *fakeStore) SaveVolume(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
	return nil
}

func (s *fakeStore) SaveMuted(m bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = m
	return nil
}

func (s *fakeStore) SaveQuality(q playlist.Quality) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quality = q
	return nil
}

func (s *fakeStore) SaveRate(r float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = r
	return nil
}

func (s *fakeStore) SavePlayMode(m playlist.PlayMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	return nil
}

func (s *fakeStore) SaveQueue(tracks []playlist.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = tracks
	return nil
}

func (s *fakeStore) SaveCurrentTrack(t *playlist.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = t
	return nil
}

func (s *fakeStore) SaveHistory(tracks []playlist.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = tracks
	s.histories++
	return nil
}

// fakeSyncer records history forwarded for a logged-in user.
type fakeSyncer struct {
	mu    sync.Mutex
	calls [][]playlist.Track
}

func (f *fakeSyncer) SyncHistory(tracks []playlist.Track) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tracks)
}

func (f *fakeSyncer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestEngine(t *testing.T) (*Engine, *player.Mock, *fakeStore) {
	t.Helper()
	dev := player.NewMock()
	store := &fakeStore{}
	e := New(dev, store, DefaultRestore())
	t.Cleanup(func() { _ = e.Close() })
	return e, dev, store
}

// drain returns how many events are buffered on ch without blocking.
func drain[E any](ch <-chan E) int {
	n := 0
	for {
		select {
		case <-ch:
			n++
		default:
			return n
		}
	}
}
