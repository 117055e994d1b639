package state

import (
	"time"

	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
)

// Interface is the state manager contract used by the rest of the app.
type Interface interface {
	playback.Store
	Load() (*Snapshot, error)
	LoadHistory() ([]playlist.Track, error)
	Close() error
}

// ScrobbleStore is the part of the state the last.fm scrobbler uses.
type ScrobbleStore interface {
	GetLastfmSession() (*LastfmSession, error)
	AddPendingScrobble(s PendingScrobble) error
	GetPendingScrobbles() ([]PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
	DeleteOldPendingScrobbles(maxAge time.Duration) error
}

var (
	_ Interface     = (*Manager)(nil)
	_ ScrobbleStore = (*Manager)(nil)
	_ Interface     = (*Mock)(nil)
)
