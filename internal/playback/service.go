// Package playback is the playback engine. It owns the audio device and the
// queue/history model, turns user intents into device calls and turns device
// events back into state.
package playback

import (
	"time"

	"github.com/llehouerou/nebula/internal/playlist"
)

// Service defines the playback service contract. Intents never return errors;
// failures surface as state and ErrorEvent.
type Service interface {
	// Playback control
	Load(t playlist.Track)
	PlayTrack(t playlist.Track)
	PlayPlaylist(tracks []playlist.Track, start int)
	Play()
	Pause()
	TogglePlay()
	Next()
	Previous()
	Seek(position time.Duration)

	// Output settings
	SetVolume(v float64)
	SetMuted(muted bool)
	ToggleMute()
	SetPlaybackRate(r float64)
	SetQuality(q playlist.Quality)

	// Mode control
	PlayMode() playlist.PlayMode
	SetPlayMode(m playlist.PlayMode)
	CyclePlayMode() playlist.PlayMode

	// Queue manipulation
	AddToQueue(t playlist.Track)
	PlayNext(t playlist.Track)
	RemoveFromQueue(id string)
	ReorderQueue(newOrder []playlist.Track)
	MoveInQueue(from, to int)
	ClearQueue()
	UndoQueue() bool
	RedoQueue() bool

	// History
	RemoveFromHistory(id string)
	ClearHistory()
	ReorderHistory(newOrder []playlist.Track)
	MoveInHistory(from, to int)
	SwapHistory(tracks []playlist.Track, syncer HistorySyncer)

	// State queries
	State() State
	CurrentTrack() *playlist.Track
	QueueTracks() []playlist.Track
	HistoryTracks() []playlist.Track

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// Store is the persistence boundary. Every state change the engine mirrors is
// written through it; failures are logged and otherwise ignored.
type Store interface {
	SaveVolume(v float64) error
	SaveMuted(muted bool) error
	SaveQuality(q playlist.Quality) error
	SaveRate(r float64) error
	SavePlayMode(m playlist.PlayMode) error
	SaveQueue(tracks []playlist.Track) error
	SaveCurrentTrack(t *playlist.Track) error
	SaveHistory(tracks []playlist.Track) error
}

// HistorySyncer forwards history writes for a logged-in user. Calls are
// fire-and-forget.
type HistorySyncer interface {
	SyncHistory(tracks []playlist.Track)
}
