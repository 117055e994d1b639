package lastfm

import (
	"time"

	"github.com/llehouerou/nebula/internal/playlist"
)

const (
	// minScrobbleLength is the shortest track last.fm accepts.
	minScrobbleLength = 30 * time.Second
	// maxScrobbleDelay caps the listening time needed before a scrobble.
	maxScrobbleDelay = 4 * time.Minute
)

// ScrobbleTrack contains track metadata for scrobbling.
type ScrobbleTrack struct {
	Artist    string
	Track     string
	Album     string
	Duration  time.Duration
	Timestamp time.Time // When playback started
}

// TrackFrom builds the scrobble payload for t started at startedAt.
func TrackFrom(t playlist.Track, duration time.Duration, startedAt time.Time) ScrobbleTrack {
	return ScrobbleTrack{
		Artist:    t.Artist,
		Track:     t.Title,
		Album:     t.Album,
		Duration:  duration,
		Timestamp: startedAt,
	}
}

// Scrobblable reports whether the track has what last.fm requires.
func (t ScrobbleTrack) Scrobblable() bool {
	return t.Artist != "" && t.Track != ""
}

// ScrobbleThreshold returns how far into a track of the given duration
// playback must get before it is scrobbled, and false if the track is too
// short to scrobble at all.
func ScrobbleThreshold(duration time.Duration) (time.Duration, bool) {
	if duration <= minScrobbleLength {
		return 0, false
	}
	return min(duration/2, maxScrobbleDelay), true
}
