// Package lyrics parses lyric text and keeps the active line in step with
// playback.
package lyrics

import (
	"bufio"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Unsynced is the time of a line that carries no timestamp.
const Unsynced time.Duration = -1

// Line is a single lyric line.
type Line struct {
	Time time.Duration // Unsynced for plain text
	Text string
}

// Document is a parsed lyric text. Lines keep source order.
type Document struct {
	Lines  []Line
	Synced bool
	Title  string
	Artist string
	Album  string
}

var (
	// Matches a leading timestamp like [01:02.34] or [01:02.345]
	timestampRe = regexp.MustCompile(`^\[(\d{2}):(\d{2})\.(\d{2,3})\]`)

	// Matches metadata tags like [ar:Artist Name]
	metadataRe = regexp.MustCompile(`^\[([a-z]+):(.+)\]$`)
)

// Parse parses raw lyric text. If any line starts with a timestamp the
// document is synced and only timestamped lines with text are kept;
// otherwise every non-empty line becomes an unsynced line. Parse never fails:
// malformed input degrades to plain text.
func Parse(raw string) *Document {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	synced := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if timestampRe.MatchString(line) {
			synced = true
		}
		lines = append(lines, line)
	}

	if !synced {
		doc := &Document{}
		for _, l := range lines {
			doc.Lines = append(doc.Lines, Line{Time: Unsynced, Text: l})
		}
		return doc
	}

	doc := &Document{Synced: true}
	for _, l := range lines {
		if m := metadataRe.FindStringSubmatch(l); m != nil {
			doc.setMetadata(m[1], strings.TrimSpace(m[2]))
			continue
		}
		m := timestampRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(l[len(m[0]):])
		if text == "" {
			continue
		}
		doc.Lines = append(doc.Lines, Line{Time: parseTimestamp(m[1], m[2], m[3]), Text: text})
	}
	return doc
}

func (d *Document) setMetadata(tag, value string) {
	switch strings.ToLower(tag) {
	case "ar":
		d.Artist = value
	case "ti":
		d.Title = value
	case "al":
		d.Album = value
	}
}

// parseTimestamp converts the regex groups of a timestamp to a duration.
// The groups are all digits, so conversion cannot fail.
func parseTimestamp(mm, ss, frac string) time.Duration {
	minutes, _ := strconv.Atoi(mm)
	seconds, _ := strconv.Atoi(ss)
	millis, _ := strconv.Atoi(frac)
	// Handle both .xx (centiseconds) and .xxx (milliseconds)
	if len(frac) == 2 {
		millis *= 10
	}
	return time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
}

// Len returns the number of lines.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Lines)
}

// All iterates over the lines lazily.
func (d *Document) All() iter.Seq2[int, Line] {
	return func(yield func(int, Line) bool) {
		if d == nil {
			return
		}
		for i, l := range d.Lines {
			if !yield(i, l) {
				return
			}
		}
	}
}

// ActiveLine returns the index of the line being sung at pos: the line just
// before the first one whose time is after pos, or the last line if none is.
// Returns -1 for empty or unsynced documents and before the first line.
func (d *Document) ActiveLine(pos time.Duration) int {
	if d.Len() == 0 || !d.Synced {
		return -1
	}
	for i, l := range d.Lines {
		if l.Time > pos {
			return i - 1
		}
	}
	return len(d.Lines) - 1
}

// Text returns the text of line i, or "" when out of range.
func (d *Document) Text(i int) string {
	if i < 0 || i >= d.Len() {
		return ""
	}
	return d.Lines[i].Text
}
