package playback

import "github.com/llehouerou/nebula/internal/playlist"

// recordHistoryLocked puts t at the front of the history.
func (e *Engine) recordHistoryLocked(t playlist.Track) {
	e.history = e.history.Record(t)
	e.commitHistoryLocked()
}

// commitHistoryLocked forwards the history to the user's syncer when logged
// in, or to the local store otherwise, then notifies subscribers.
func (e *Engine) commitHistoryLocked() {
	tracks := e.history.Tracks()
	if e.syncer != nil {
		e.syncer.SyncHistory(tracks)
	} else {
		e.persist("history", func(s Store) error { return s.SaveHistory(tracks) })
	}
	e.publishHistoryLocked(tracks)
}

func (e *Engine) publishHistoryLocked(tracks []playlist.Track) {
	ev := HistoryChange{Tracks: tracks}
	e.broadcast(func(s *Subscription) { send(s.historyCh, ev) })
}

func (e *Engine) updateHistory(fn func(playlist.History) playlist.History) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.history = fn(e.history)
	e.commitHistoryLocked()
}

// RemoveFromHistory drops the entry with id. Unknown ids are a no-op.
func (e *Engine) RemoveFromHistory(id string) {
	e.updateHistory(func(h playlist.History) playlist.History { return h.Remove(id) })
}

// ClearHistory empties the history.
func (e *Engine) ClearHistory() {
	e.updateHistory(func(h playlist.History) playlist.History { return h.Clear() })
}

// ReorderHistory replaces the history order wholesale.
func (e *Engine) ReorderHistory(newOrder []playlist.Track) {
	e.updateHistory(func(h playlist.History) playlist.History { return h.Reorder(newOrder) })
}

// MoveInHistory moves the entry at from to to. Out-of-range targets are
// ignored.
func (e *Engine) MoveInHistory(from, to int) {
	e.updateHistory(func(h playlist.History) playlist.History { return h.Move(from, to) })
}

// SwapHistory replaces the history wholesale, used on login and logout.
// syncer receives later writes; nil means the anonymous local store. The
// swap itself writes nothing.
func (e *Engine) SwapHistory(tracks []playlist.Track, syncer HistorySyncer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.history = playlist.NewHistory(tracks...)
	e.syncer = syncer
	e.publishHistoryLocked(e.history.Tracks())
}
