package lyrics

import "time"

// Cursor resolves the active line incrementally. While the position moves
// forward it only scans past the lines actually crossed, so the index never
// decreases and never skips; a backwards jump re-resolves from scratch.
type Cursor struct {
	doc  *Document
	idx  int
	last time.Duration
}

// NewCursor creates a cursor positioned before the first line.
func NewCursor(doc *Document) *Cursor {
	return &Cursor{doc: doc, idx: -1}
}

// Document returns the document the cursor walks.
func (c *Cursor) Document() *Document { return c.doc }

// Index returns the last resolved line index.
func (c *Cursor) Index() int { return c.idx }

// Update moves the cursor to pos and returns the active line index.
func (c *Cursor) Update(pos time.Duration) int {
	if c.doc.Len() == 0 || !c.doc.Synced {
		return -1
	}
	if pos < c.last {
		c.idx = c.doc.ActiveLine(pos)
		c.last = pos
		return c.idx
	}
	c.last = pos
	lines := c.doc.Lines
	for c.idx+1 < len(lines) && lines[c.idx+1].Time <= pos {
		c.idx++
	}
	return c.idx
}
