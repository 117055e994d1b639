package state

import (
	"slices"
	"sync"

	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	mu       sync.Mutex
	snapshot Snapshot
	closed   bool
	err      error
}

// NewMock creates a mock holding a first-run snapshot.
func NewMock() *Mock {
	d := playback.DefaultRestore()
	return &Mock{snapshot: Snapshot{Volume: d.Volume, Quality: d.Quality, Rate: d.Rate, Mode: d.Mode}}
}

func (m *Mock) save(fn func(s *Snapshot)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	fn(&m.snapshot)
	return nil
}

func (m *Mock) SaveVolume(v float64) error {
	return m.save(func(s *Snapshot) { s.Volume = v })
}

func (m *Mock) SaveMuted(muted bool) error {
	return m.save(func(s *Snapshot) { s.Muted = muted })
}

func (m *Mock) SaveQuality(q playlist.Quality) error {
	return m.save(func(s *Snapshot) { s.Quality = q })
}

func (m *Mock) SaveRate(r float64) error {
	return m.save(func(s *Snapshot) { s.Rate = r })
}

func (m *Mock) SavePlayMode(mode playlist.PlayMode) error {
	return m.save(func(s *Snapshot) { s.Mode = mode })
}

func (m *Mock) SaveQueue(tracks []playlist.Track) error {
	return m.save(func(s *Snapshot) { s.Queue = slices.Clone(tracks) })
}

func (m *Mock) SaveCurrentTrack(t *playlist.Track) error {
	return m.save(func(s *Snapshot) {
		if t == nil {
			s.Current = nil
			return
		}
		c := *t
		s.Current = &c
	})
}

func (m *Mock) SaveHistory(tracks []playlist.Track) error {
	return m.save(func(s *Snapshot) { s.History = slices.Clone(tracks) })
}

func (m *Mock) Load() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.snapshot
	s.Queue = slices.Clone(s.Queue)
	s.History = slices.Clone(s.History)
	return &s, nil
}

func (m *Mock) LoadHistory() ([]playlist.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.snapshot.History), nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// SetSnapshot replaces the stored state.
func (m *Mock) SetSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = s
}

// SetError makes every save fail with err.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
