package playback

import "github.com/llehouerou/nebula/internal/playlist"

// AddToQueue appends t to the queue. No deduplication.
func (e *Engine) AddToQueue(t playlist.Track) {
	e.updateQueue(func(q playlist.Queue) playlist.Queue { return q.Append(t) })
}

// PlayNext queues t directly after the current track, moving it if it was
// already queued.
func (e *Engine) PlayNext(t playlist.Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.setQueueLocked(e.queue.PlayNext(t, e.current))
}

// RemoveFromQueue removes every queued track with id. Unknown ids are a no-op.
func (e *Engine) RemoveFromQueue(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.queue.Contains(id) {
		return
	}
	e.setQueueLocked(e.queue.RemoveByID(id))
}

// ReorderQueue replaces the queue order wholesale.
func (e *Engine) ReorderQueue(newOrder []playlist.Track) {
	e.updateQueue(func(q playlist.Queue) playlist.Queue { return q.Reorder(newOrder) })
}

// MoveInQueue moves the track at from to to. Out-of-range targets are ignored.
func (e *Engine) MoveInQueue(from, to int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || from == to || from < 0 || to < 0 || from >= e.queue.Len() || to >= e.queue.Len() {
		return
	}
	e.setQueueLocked(e.queue.Move(from, to))
}

// ClearQueue empties the queue. The current track keeps playing.
func (e *Engine) ClearQueue() {
	e.updateQueue(func(q playlist.Queue) playlist.Queue { return q.Clear() })
}

// UndoQueue restores the queue as it was before the last change.
func (e *Engine) UndoQueue() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.undo.Undo()
	if !ok || e.closed {
		return false
	}
	e.applyQueueLocked(q)
	return true
}

// RedoQueue reapplies the last undone queue change.
func (e *Engine) RedoQueue() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.undo.Redo()
	if !ok || e.closed {
		return false
	}
	e.applyQueueLocked(q)
	return true
}

func (e *Engine) updateQueue(fn func(playlist.Queue) playlist.Queue) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.setQueueLocked(fn(e.queue))
}

// setQueueLocked installs q as a new undoable queue state.
func (e *Engine) setQueueLocked(q playlist.Queue) {
	e.undo.Push(q)
	e.applyQueueLocked(q)
}

func (e *Engine) applyQueueLocked(q playlist.Queue) {
	e.queue = q
	tracks := q.Tracks()
	e.persist("queue", func(s Store) error { return s.SaveQueue(tracks) })
	ev := QueueChange{Tracks: tracks}
	e.broadcast(func(s *Subscription) { send(s.queueCh, ev) })
}
