package playlist

import "testing"

func TestQueueUndo(t *testing.T) {
	u := NewQueueUndo(3)
	u.Push(queueOf("a"))
	u.Push(queueOf("a", "b"))

	if u.CanRedo() {
		t.Error("CanRedo() should be false at newest state")
	}
	q, ok := u.Undo()
	if !ok || q.Len() != 1 {
		t.Fatalf("Undo() = len %d, %v; want 1, true", q.Len(), ok)
	}
	if _, ok := u.Undo(); ok {
		t.Error("Undo() past oldest state should fail")
	}
	q, ok = u.Redo()
	if !ok || q.Len() != 2 {
		t.Errorf("Redo() = len %d, %v; want 2, true", q.Len(), ok)
	}
}

func TestQueueUndo_PushDropsRedoAndCaps(t *testing.T) {
	u := NewQueueUndo(2)
	u.Push(queueOf("a"))
	u.Push(queueOf("a", "b"))
	u.Undo()
	u.Push(queueOf("c"))

	if u.CanRedo() {
		t.Error("Push should discard redo states")
	}

	u.Push(queueOf("d"))
	q, _ := u.Undo()
	if first, _ := q.At(0); first.ID != "c" {
		t.Errorf("Undo() = %v, want [c]", ids(q.Tracks()))
	}
	if u.CanUndo() {
		t.Error("oldest state should have been evicted")
	}
}
