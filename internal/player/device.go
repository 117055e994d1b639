// Package player is the audio output primitive. It is the only code that
// talks to the sound hardware.
package player

import (
	"errors"
	"time"
)

var (
	// ErrNoSource is returned by Play when no source has been set.
	ErrNoSource = errors.New("player: no source")
	// ErrUnsupportedFormat is reported when a source cannot be decoded.
	ErrUnsupportedFormat = errors.New("player: unsupported format")
)

// EventType identifies a device notification.
type EventType int

const (
	// TimeUpdate reports the playback position, periodically while playing.
	TimeUpdate EventType = iota
	// LoadedMetadata reports that a source was decoded and its duration is known.
	LoadedMetadata
	// Ended reports that playback reached the end of the source.
	Ended
	// Error reports that the source could not be loaded or decoded.
	Error
)

func (t EventType) String() string {
	switch t {
	case TimeUpdate:
		return "timeupdate"
	case LoadedMetadata:
		return "loadedmetadata"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a device notification. Source is the url the event belongs to so
// that consumers can drop events of a superseded load.
type Event struct {
	Type     EventType
	Source   string
	Position time.Duration
	Duration time.Duration
	Err      error
}

// Device is a single audio output. SetSource replaces whatever was loaded and
// leaves the device paused; loading completes asynchronously and is reported
// through Events.
type Device interface {
	SetSource(url string)
	Source() string
	// Play starts or resumes playback. A Play issued while the source is
	// still loading is honoured once it is ready. The device may reject it.
	Play() error
	Pause()
	CurrentTime() time.Duration
	// SetCurrentTime seeks. The device clamps to the source bounds.
	SetCurrentTime(d time.Duration)
	Duration() time.Duration
	SetVolume(v float64)
	SetPlaybackRate(r float64)
	SetMuted(muted bool)
	Events() <-chan Event
	Close() error
}
