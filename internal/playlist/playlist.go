// Package playlist holds the playback data model: tracks, the play queue,
// play history and the play-mode traversal rules. Everything here is a pure
// value type; nothing performs I/O.
package playlist

import (
	"encoding/json"
	"math"
	"slices"
	"time"
)

// Track is an immutable song value. Updates replace the value, they never
// mutate it in place. Tags must be treated as read-only.
type Track struct {
	ID       string // unique across all song sources
	Title    string
	Artist   string
	Album    string
	CoverURL string
	Duration time.Duration // authoritative only once the device reports it
	AudioURL string
	Lyrics   string // raw text, possibly LRC-timestamped
	Tags     []string
}

// HasLyrics returns true if the track carries any lyric text.
func (t Track) HasLyrics() bool {
	return t.Lyrics != ""
}

// WithDuration returns a copy of t with the given duration.
func (t Track) WithDuration(d time.Duration) Track {
	t.Tags = slices.Clone(t.Tags)
	t.Duration = d
	return t
}

// trackJSON is the wire form shared with the profile server and the state db.
type trackJSON struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Album    string   `json:"album"`
	CoverURL string   `json:"coverUrl"`
	Duration float64  `json:"duration"` // seconds
	AudioURL string   `json:"audioUrl"`
	Lyrics   string   `json:"lyrics,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// MarshalJSON encodes the track with its duration in seconds.
func (t Track) MarshalJSON() ([]byte, error) {
	return json.Marshal(trackJSON{
		ID:       t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    t.Album,
		CoverURL: t.CoverURL,
		Duration: t.Duration.Seconds(),
		AudioURL: t.AudioURL,
		Lyrics:   t.Lyrics,
		Tags:     t.Tags,
	})
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (t *Track) UnmarshalJSON(data []byte) error {
	var w trackJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	dur := time.Duration(0)
	if w.Duration > 0 && !math.IsInf(w.Duration, 0) && !math.IsNaN(w.Duration) {
		dur = time.Duration(w.Duration * float64(time.Second))
	}
	*t = Track{
		ID:       w.ID,
		Title:    w.Title,
		Artist:   w.Artist,
		Album:    w.Album,
		CoverURL: w.CoverURL,
		Duration: dur,
		AudioURL: w.AudioURL,
		Lyrics:   w.Lyrics,
		Tags:     w.Tags,
	}
	return nil
}

// move relocates the element at from to to. Out-of-range indices leave the
// slice unchanged and return false.
func move(tracks []Track, from, to int) ([]Track, bool) {
	if from < 0 || from >= len(tracks) || to < 0 || to >= len(tracks) {
		return tracks, false
	}
	result := slices.Clone(tracks)
	if from == to {
		return result, true
	}
	track := result[from]
	result = slices.Delete(result, from, from+1)
	result = slices.Insert(result, to, track)
	return result, true
}
