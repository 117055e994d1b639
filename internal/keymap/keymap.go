// Package keymap defines key bindings and action dispatch for the player.
package keymap

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "output", "queue"
}

// All contains all key bindings, in help order.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionNextTrack, []string{"n"}, "Next track", "playback"},
	{ActionPrevTrack, []string{"p"}, "Previous track", "playback"},
	{ActionSeekForward, []string{"right", "l"}, "Seek +5s", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "Seek -5s", "playback"},
	{ActionCycleMode, []string{"r"}, "Cycle play mode", "playback"},
	{ActionCycleSleep, []string{"s"}, "Cycle sleep timer", "playback"},
	{ActionToggleLike, []string{"f"}, "Like/unlike track", "playback"},

	// Output
	{ActionVolumeUp, []string{"+", "="}, "Volume up", "output"},
	{ActionVolumeDown, []string{"-"}, "Volume down", "output"},
	{ActionToggleMute, []string{"m"}, "Mute", "output"},
	{ActionRateUp, []string{"]"}, "Faster", "output"},
	{ActionRateDown, []string{"["}, "Slower", "output"},

	// Queue
	{ActionUndo, []string{"ctrl+z", "u"}, "Undo queue change", "queue"},
	{ActionRedo, []string{"ctrl+y", "U"}, "Redo queue change", "queue"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
