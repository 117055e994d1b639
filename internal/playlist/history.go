package playlist

import (
	"slices"

	"github.com/samber/lo"
)

// HistoryLimit is the maximum number of entries kept in play history.
const HistoryLimit = 50

// History is the most-recent-first log of played tracks. It never holds two
// entries with the same id and never exceeds HistoryLimit entries.
type History struct {
	tracks []Track
}

// NewHistory builds a history from tracks ordered most-recent-first,
// dropping later duplicates and anything past HistoryLimit.
func NewHistory(tracks ...Track) History {
	return History{tracks: normalize(tracks)}
}

func normalize(tracks []Track) []Track {
	uniq := lo.UniqBy(tracks, func(t Track) string { return t.ID })
	if len(uniq) > HistoryLimit {
		uniq = uniq[:HistoryLimit]
	}
	return uniq
}

// Record puts t at the front, removing any previous entry with its id.
func (h History) Record(t Track) History {
	rest := lo.Filter(h.tracks, func(e Track, _ int) bool { return e.ID != t.ID })
	tracks := slices.Insert(rest, 0, t)
	if len(tracks) > HistoryLimit {
		tracks = tracks[:HistoryLimit]
	}
	return History{tracks: tracks}
}

// Remove drops the entry with the given id. Unknown ids are a no-op.
func (h History) Remove(id string) History {
	return History{tracks: lo.Filter(h.tracks, func(e Track, _ int) bool { return e.ID != id })}
}

// Clear returns an empty history.
func (h History) Clear() History {
	return History{}
}

// Reorder replaces the whole order. The result is normalized so the history
// invariants hold whatever the caller passes.
func (h History) Reorder(newOrder []Track) History {
	return NewHistory(newOrder...)
}

// Move relocates the entry at from to to. Out-of-range targets are ignored.
func (h History) Move(from, to int) History {
	tracks, _ := move(h.tracks, from, to)
	return History{tracks: tracks}
}

// Tracks returns a copy of the entries, most recent first.
func (h History) Tracks() []Track {
	result := make([]Track, len(h.tracks))
	copy(result, h.tracks)
	return result
}

// Len returns the number of entries.
func (h History) Len() int {
	return len(h.tracks)
}

// Latest returns the most recently played track.
func (h History) Latest() (Track, bool) {
	if len(h.tracks) == 0 {
		return Track{}, false
	}
	return h.tracks[0], true
}
