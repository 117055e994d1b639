package lyrics

import (
	"testing"
	"time"
)

func TestCursor_MatchesActiveLine(t *testing.T) {
	doc := Parse("[00:02.00]a\n[00:05.00]b\n[00:09.00]c")
	c := NewCursor(doc)

	for _, pos := range []time.Duration{0, sec(3), sec(9.5), sec(4), sec(1), sec(12)} {
		if got, want := c.Update(pos), doc.ActiveLine(pos); got != want {
			t.Errorf("Update(%v) = %d, want %d", pos, got, want)
		}
	}
}

func TestCursor_NeverSkipsWhileAdvancing(t *testing.T) {
	doc := Parse("[00:01.00]a\n[00:02.00]b\n[00:03.00]c\n[00:04.00]d")
	c := NewCursor(doc)

	prev := -1
	for pos := time.Duration(0); pos <= 5*time.Second; pos += 250 * time.Millisecond {
		idx := c.Update(pos)
		if idx < prev || idx > prev+1 {
			t.Fatalf("Update(%v) = %d after %d", pos, idx, prev)
		}
		prev = idx
	}
	if prev != 3 {
		t.Errorf("final index = %d, want 3", prev)
	}
}

func TestCursor_NilAndUnsynced(t *testing.T) {
	if NewCursor(nil).Update(time.Minute) != -1 {
		t.Error("nil document cursor should stay at -1")
	}
	if NewCursor(Parse("plain")).Update(time.Minute) != -1 {
		t.Error("unsynced document cursor should stay at -1")
	}
}
