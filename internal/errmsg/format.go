// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"fmt"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpInitialize Op = "initialize player"
	OpConfigLoad Op = "load configuration"
	OpStateLoad  Op = "load saved state"

	// Library
	OpLibraryScan Op = "scan music"
	OpFileLoad    Op = "load file"

	// Playback
	OpPlaybackStart Op = "start playback"
	OpTrackLoad     Op = "load track"
	OpPlaybackSeek  Op = "seek"

	// Lyrics
	OpLyricsLoad Op = "load lyrics"

	// Account
	OpLogin      Op = "log in"
	OpLikeToggle Op = "update likes"

	// Last.fm
	OpLastfmAuth     Op = "link Last.fm"
	OpLastfmScrobble Op = "scrobble to Last.fm"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
