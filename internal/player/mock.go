package player

import (
	"sync"
	"time"
)

// Mock is a test double for Device. It records calls and lets tests inject
// device events.
type Mock struct {
	mu       sync.Mutex
	events   chan Event
	source   string
	sources  []string
	playing  bool
	position time.Duration
	duration time.Duration
	volume   float64
	rate     float64
	muted    bool
	playErr  error
	plays    int
	pauses   int
	seeks    []time.Duration
	closed   bool
}

var _ Device = (*Mock)(nil)

// NewMock creates a new mock device for testing.
func NewMock() *Mock {
	return &Mock{
		events: make(chan Event, eventBuffer),
		volume: 1,
		rate:   1,
	}
}

func (m *Mock) SetSource(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source = url
	m.sources = append(m.sources, url)
	m.playing = false
	m.position = 0
	m.duration = 0
}

func (m *Mock) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays++
	if m.playErr != nil {
		return m.playErr
	}
	if m.source == "" {
		return ErrNoSource
	}
	m.playing = true
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauses++
	m.playing = false
}

func (m *Mock) CurrentTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) SetCurrentTime(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeks = append(m.seeks, d)
	m.position = max(d, 0)
	if m.duration > 0 {
		m.position = min(m.position, m.duration)
	}
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = v
}

func (m *Mock) SetPlaybackRate(r float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = r
}

func (m *Mock) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// Test helpers

// SetPlayError makes subsequent Play calls fail with err (nil to accept).
func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// Playing reports whether the device is currently playing.
func (m *Mock) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Sources returns every url passed to SetSource, in order.
func (m *Mock) Sources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sources))
	copy(out, m.sources)
	return out
}

// PlayCalls returns the number of Play calls.
func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

// PauseCalls returns the number of Pause calls.
func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauses
}

// Seeks returns every position passed to SetCurrentTime.
func (m *Mock) Seeks() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.seeks))
	copy(out, m.seeks)
	return out
}

// Volume returns the last volume set.
func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// Rate returns the last playback rate set.
func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

// Muted returns the last mute state set.
func (m *Mock) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Emit queues an event as if the device produced it.
func (m *Mock) Emit(ev Event) {
	m.events <- ev
}

// Event builds an event of type t for the current source.
func (m *Mock) Event(t EventType) Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Event{Type: t, Source: m.source, Position: m.position, Duration: m.duration}
}

// LoadedMetadata records d as the source duration and returns the matching event.
func (m *Mock) LoadedMetadata(d time.Duration) Event {
	m.mu.Lock()
	m.duration = d
	m.mu.Unlock()
	return m.Event(LoadedMetadata)
}

// TimeUpdate moves the position to d and returns the matching event.
func (m *Mock) TimeUpdate(d time.Duration) Event {
	m.mu.Lock()
	m.position = d
	m.mu.Unlock()
	return m.Event(TimeUpdate)
}

// Ended moves the position to the end, stops and returns the ended event.
func (m *Mock) Ended() Event {
	m.mu.Lock()
	m.position = m.duration
	m.playing = false
	m.mu.Unlock()
	return m.Event(Ended)
}
