package keymap

import (
	"slices"
	"testing"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(All)

	tests := []struct {
		key      string
		expected Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{" ", ActionPlayPause},
		{"n", ActionNextTrack},
		{"p", ActionPrevTrack},
		{"left", ActionSeekBack},
		{"right", ActionSeekForward},
		{"+", ActionVolumeUp},
		{"-", ActionVolumeDown},
		{"m", ActionToggleMute},
		{"[", ActionRateDown},
		{"]", ActionRateUp},
		{"r", ActionCycleMode},
		{"s", ActionCycleSleep},
		{"unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := r.Resolve(tt.key); got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestResolver_KeysFor(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
		{ActionQuit, []string{"q", "esc"}, "Quit", "other"},
	})

	got := r.KeysFor(ActionQuit)
	want := []string{"q", "ctrl+c", "esc"}
	if !slices.Equal(got, want) {
		t.Errorf("KeysFor(ActionQuit) = %v, want %v", got, want)
	}
	if keys := r.KeysFor(ActionHelp); keys != nil {
		t.Errorf("KeysFor(unbound) = %v, want nil", keys)
	}
}
