package playlist

// QueueUndo keeps bounded snapshots of queue contents for undo/redo.
type QueueUndo struct {
	states  []Queue
	current int // index of current state (-1 = before any state)
	maxSize int
}

// NewQueueUndo creates an undo stack keeping at most maxSize snapshots.
func NewQueueUndo(maxSize int) *QueueUndo {
	return &QueueUndo{
		states:  make([]Queue, 0, maxSize),
		current: -1,
		maxSize: maxSize,
	}
}

// Push records q as the newest state, discarding any redo states.
func (u *QueueUndo) Push(q Queue) {
	if u.current < len(u.states)-1 {
		u.states = u.states[:u.current+1]
	}

	u.states = append(u.states, q)
	u.current = len(u.states) - 1

	if len(u.states) > u.maxSize {
		excess := len(u.states) - u.maxSize
		u.states = u.states[excess:]
		u.current -= excess
	}
}

// Undo steps back one state. Returns false if there is nothing to undo.
func (u *QueueUndo) Undo() (Queue, bool) {
	if !u.CanUndo() {
		return Queue{}, false
	}
	u.current--
	return u.states[u.current], true
}

// Redo steps forward one state. Returns false if there is nothing to redo.
func (u *QueueUndo) Redo() (Queue, bool) {
	if !u.CanRedo() {
		return Queue{}, false
	}
	u.current++
	return u.states[u.current], true
}

// CanUndo returns true if there is a previous state to undo to.
func (u *QueueUndo) CanUndo() bool {
	return u.current > 0
}

// CanRedo returns true if there is a next state to redo to.
func (u *QueueUndo) CanRedo() bool {
	return u.current < len(u.states)-1
}
