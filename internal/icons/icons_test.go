package icons

import (
	"testing"

	"github.com/llehouerou/nebula/internal/playlist"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		style    string
		expected Icons
	}{
		{"nerd style", "nerd", nerdIcons},
		{"unicode style", "unicode", unicodeIcons},
		{"none style", "none", noneIcons},
		{"empty string defaults to none", "", noneIcons},
		{"unknown style defaults to none", "invalid", noneIcons},
		{"case sensitive - NERD defaults to none", "NERD", noneIcons},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.style)
			if current != tt.expected {
				t.Errorf("Init(%q) selected the wrong icon set", tt.style)
			}
		})
	}

	Init("none")
}

func TestMode(t *testing.T) {
	tests := []struct {
		style string
		mode  playlist.PlayMode
		want  string
	}{
		{"none", playlist.Sequence, "[R]"},
		{"none", playlist.Loop, "[1]"},
		{"none", playlist.Shuffle, "[S]"},
		{"unicode", playlist.Loop, "🔂"},
		{"unicode", playlist.Shuffle, "🔀"},
		{"nerd", playlist.Sequence, "󰑖"},
	}

	for _, tt := range tests {
		t.Run(tt.style+"_"+tt.mode.String(), func(t *testing.T) {
			Init(tt.style)
			if got := Mode(tt.mode); got != tt.want {
				t.Errorf("Mode(%v) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}

	Init("none")
}

func TestStatusAndVolume(t *testing.T) {
	Init("unicode")
	defer Init("none")

	if got := Status(true); got != "▶" {
		t.Errorf("Status(true) = %q", got)
	}
	if got := Status(false); got != "⏸" {
		t.Errorf("Status(false) = %q", got)
	}
	if got := Volume(true); got != "🔇" {
		t.Errorf("Volume(true) = %q", got)
	}
	if got := Favorite(); got != "♥" {
		t.Errorf("Favorite() = %q", got)
	}
}

func TestNoneIconsArePlainText(t *testing.T) {
	for _, s := range []string{
		noneIcons.Play, noneIcons.Pause, noneIcons.Sequence, noneIcons.Loop,
		noneIcons.Shuffle, noneIcons.Favorite, noneIcons.Volume, noneIcons.Muted, noneIcons.Sleep,
	} {
		for _, r := range s {
			if r > 0x7f {
				t.Errorf("none icon %q is not ASCII", s)
			}
		}
	}
}
