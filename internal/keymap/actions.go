package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Playback actions
	ActionPlayPause   Action = "play_pause"
	ActionNextTrack   Action = "next_track"
	ActionPrevTrack   Action = "prev_track"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"
	ActionCycleMode   Action = "cycle_mode"

	// Output actions
	ActionVolumeUp   Action = "volume_up"
	ActionVolumeDown Action = "volume_down"
	ActionToggleMute Action = "toggle_mute"
	ActionRateUp     Action = "rate_up"
	ActionRateDown   Action = "rate_down"

	// Sleep timer
	ActionCycleSleep Action = "cycle_sleep"

	// Queue actions
	ActionUndo Action = "undo"
	ActionRedo Action = "redo"

	// Account
	ActionToggleLike Action = "toggle_like"
)
