package playlist

import (
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"
)

// Queue is the ordered list of tracks eligible for automatic advance.
// Insertion order is playback order. Every operation returns a new Queue and
// leaves the receiver untouched. The zero value is an empty queue.
type Queue struct {
	tracks []Track
}

// NewQueue creates a queue holding a copy of tracks.
func NewQueue(tracks ...Track) Queue {
	return Queue{tracks: slices.Clone(tracks)}
}

// Tracks returns a copy of all tracks.
func (q Queue) Tracks() []Track {
	result := make([]Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Len returns the number of tracks.
func (q Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// At returns the track at index, or false if out of bounds.
func (q Queue) At(index int) (Track, bool) {
	if index < 0 || index >= len(q.tracks) {
		return Track{}, false
	}
	return q.tracks[index], true
}

// IndexOf returns the index of the first track with the given id, or -1.
func (q Queue) IndexOf(id string) int {
	_, idx, ok := lo.FindIndexOf(q.tracks, func(t Track) bool { return t.ID == id })
	if !ok {
		return -1
	}
	return idx
}

// Contains returns true if a track with the given id is queued.
func (q Queue) Contains(id string) bool {
	return q.IndexOf(id) >= 0
}

// Append adds t at the end. No deduplication.
func (q Queue) Append(t Track) Queue {
	return Queue{tracks: append(slices.Clone(q.tracks), t)}
}

// Prepend adds t at the front. No deduplication.
func (q Queue) Prepend(t Track) Queue {
	return Queue{tracks: slices.Insert(slices.Clone(q.tracks), 0, t)}
}

// PlayNext removes any prior occurrence of t and inserts it directly after
// current. With no current track, or one that is not queued, t goes first.
func (q Queue) PlayNext(t Track, current *Track) Queue {
	filtered := q.RemoveByID(t.ID).tracks
	at := 0
	if current != nil {
		if idx := (Queue{tracks: filtered}).IndexOf(current.ID); idx >= 0 {
			at = idx + 1
		}
	}
	return Queue{tracks: slices.Insert(filtered, at, t)}
}

// RemoveByID removes every track with the given id. Unknown ids are a no-op.
func (q Queue) RemoveByID(id string) Queue {
	return Queue{tracks: lo.Filter(q.tracks, func(t Track, _ int) bool { return t.ID != id })}
}

// Reorder replaces the whole order. Callers validate drag targets first.
func (q Queue) Reorder(newOrder []Track) Queue {
	return NewQueue(newOrder...)
}

// Move relocates the track at from to to. Out-of-range targets are ignored.
func (q Queue) Move(from, to int) Queue {
	tracks, _ := move(q.tracks, from, to)
	return Queue{tracks: tracks}
}

// Clear returns an empty queue.
func (q Queue) Clear() Queue {
	return Queue{}
}

// NextTrack resolves the track after current. An empty queue yields none; a
// nil current yields the first track, and so does a current track that is not
// queued (in either direction).
func NextTrack(q Queue, current *Track) (Track, bool) {
	return step(q, current, 1)
}

// PreviousTrack resolves the track before current, symmetric to NextTrack.
func PreviousTrack(q Queue, current *Track) (Track, bool) {
	return step(q, current, -1)
}

func step(q Queue, current *Track, delta int) (Track, bool) {
	n := q.Len()
	if n == 0 {
		return Track{}, false
	}
	if current == nil {
		return q.tracks[0], true
	}
	idx := q.IndexOf(current.ID)
	if idx < 0 {
		return q.tracks[0], true
	}
	return q.tracks[(idx+delta+n)%n], true
}

// ShuffleQueue returns the queue reordered for Shuffle mode: the current track (if
// queued) moves to the front and the rest is randomly permuted. Traversal over
// the result stays linear.
func ShuffleQueue(q Queue, current *Track, rng *rand.Rand) Queue {
	tracks := slices.Clone(q.tracks)
	start := 0
	if current != nil {
		if idx := q.IndexOf(current.ID); idx >= 0 {
			tracks[0], tracks[idx] = tracks[idx], tracks[0]
			start = 1
		}
	}
	rest := tracks[start:]
	rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	return Queue{tracks: tracks}
}
