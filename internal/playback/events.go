package playback

import (
	"errors"
	"time"

	"github.com/llehouerou/nebula/internal/playlist"
)

// StateChange is emitted when the playing flag or the phase changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when the device source actually changes.
//
// Emitted by every real load: PlayTrack, PlayPlaylist, Next/Previous and the
// automatic advance on ended. NOT emitted when a load targets the url that is
// already loaded, nor on Loop replays. Consumers that must run once per track
// (history, media session metadata, scrobbling, lyrics) key off this event.
type TrackChange struct {
	Previous *playlist.Track
	Current  playlist.Track
	Playing  bool
}

// PositionChange is emitted on device time updates and seeks. TrackID and
// Source name the track the position belongs to; consumers that also follow
// TrackChange must drop positions of a track they are no longer on.
type PositionChange struct {
	TrackID  string
	Source   string
	Position time.Duration
	Duration time.Duration
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Tracks []playlist.Track
}

// HistoryChange is emitted when the history contents change.
type HistoryChange struct {
	Tracks []playlist.Track
}

// ModeChange is emitted when the play mode changes.
type ModeChange struct {
	Mode playlist.PlayMode
}

// ErrLoadFailed stands in for device errors that carry no cause.
var ErrLoadFailed = errors.New("playback: load failed")

// ErrorKind classifies playback failures.
type ErrorKind int

const (
	// PlaybackRejected means the device refused to start playing.
	PlaybackRejected ErrorKind = iota
	// LoadFailed means the device could not load the source.
	LoadFailed
)

func (k ErrorKind) String() string {
	switch k {
	case PlaybackRejected:
		return "playback rejected"
	case LoadFailed:
		return "load failed"
	default:
		return "unknown"
	}
}

// ErrorEvent is emitted when playback fails. The engine never retries.
type ErrorEvent struct {
	Kind   ErrorKind
	Source string
	Err    error
}
