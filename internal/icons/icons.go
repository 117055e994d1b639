// Package icons selects the glyphs used by the player bar.
package icons

import "github.com/llehouerou/nebula/internal/playlist"

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Play     string
	Pause    string
	Sequence string
	Loop     string
	Shuffle  string
	Favorite string
	Volume   string
	Muted    string
	Sleep    string
}

var (
	nerdIcons = Icons{
		Play:     "\uf04b", // nf-fa-play
		Pause:    "\uf04c", // nf-fa-pause
		Sequence: "󰑖",      // nf-md-repeat
		Loop:     "󰑘",      // nf-md-repeat_once
		Shuffle:  "󰒟",      // nf-md-shuffle
		Favorite: "󰣐",      // nf-md-heart
		Volume:   "󰕾",      // nf-md-volume_high
		Muted:    "󰖁",      // nf-md-volume_off
		Sleep:    "󰒲",      // nf-md-sleep
	}

	unicodeIcons = Icons{
		Play:     "▶",
		Pause:    "⏸",
		Sequence: "🔁",
		Loop:     "🔂",
		Shuffle:  "🔀",
		Favorite: "♥",
		Volume:   "🔊",
		Muted:    "🔇",
		Sleep:    "💤",
	}

	noneIcons = Icons{
		Play:     ">",
		Pause:    "||",
		Sequence: "[R]",
		Loop:     "[1]",
		Shuffle:  "[S]",
		Favorite: "*",
		Volume:   "vol",
		Muted:    "muted",
		Sleep:    "sleep",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init selects the icon set. Call this once at startup with the config value;
// unknown styles fall back to plain text.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	default:
		current = noneIcons
	}
}

// Status returns the play or pause glyph.
func Status(playing bool) string {
	if playing {
		return current.Play
	}
	return current.Pause
}

// Mode returns the glyph of a play mode.
func Mode(m playlist.PlayMode) string {
	switch m {
	case playlist.Loop:
		return current.Loop
	case playlist.Shuffle:
		return current.Shuffle
	default:
		return current.Sequence
	}
}

// Volume returns the volume or muted glyph.
func Volume(muted bool) string {
	if muted {
		return current.Muted
	}
	return current.Volume
}

// Favorite returns the favorite/heart icon.
func Favorite() string {
	return current.Favorite
}

// Sleep returns the sleep timer icon.
func Sleep() string {
	return current.Sleep
}
