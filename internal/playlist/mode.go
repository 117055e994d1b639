package playlist

import "strings"

// PlayMode selects how playback proceeds when a track ends.
type PlayMode int

const (
	// Sequence advances linearly through the queue, wrapping at the end.
	Sequence PlayMode = iota
	// Loop replays the current track when it ends.
	Loop
	// Shuffle plays a queue that was randomized on mode entry, linearly.
	Shuffle
)

// Next returns the following mode in the fixed ring
// Sequence -> Loop -> Shuffle -> Sequence.
func (m PlayMode) Next() PlayMode {
	switch m {
	case Sequence:
		return Loop
	case Loop:
		return Shuffle
	default:
		return Sequence
	}
}

// String returns the persisted name of the mode.
func (m PlayMode) String() string {
	switch m {
	case Sequence:
		return "SEQUENCE"
	case Loop:
		return "LOOP"
	case Shuffle:
		return "SHUFFLE"
	default:
		return "UNKNOWN"
	}
}

// ParsePlayMode parses a mode name, case-insensitively.
func ParsePlayMode(s string) (PlayMode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SEQUENCE":
		return Sequence, true
	case "LOOP":
		return Loop, true
	case "SHUFFLE":
		return Shuffle, true
	}
	return Sequence, false
}

// Quality is the preferred sound quality.
type Quality string

const (
	// QualityStandard trades fidelity for bandwidth.
	QualityStandard Quality = "standard"
	// QualityHigh is the default lossy quality.
	QualityHigh Quality = "high"
	// QualityLossless requests lossless sources where available.
	QualityLossless Quality = "lossless"
)

// ParseQuality parses a quality name.
func ParseQuality(s string) (Quality, bool) {
	switch q := Quality(strings.ToLower(strings.TrimSpace(s))); q {
	case QualityStandard, QualityHigh, QualityLossless:
		return q, true
	}
	return QualityHigh, false
}
