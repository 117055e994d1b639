package playback

import (
	"time"

	"github.com/llehouerou/nebula/internal/playlist"
)

// Phase is the per-track lifecycle of the engine.
//
//	Idle ──load──▶ Loading ──loadedmetadata──▶ Ready ──play──▶ Playing ⇄ Paused
//	                                                              │
//	                                                 ended ───────┤
//	                                     Loop: replay ◀───────────┤
//	                                  Advance: Loading ◀──────────┤
//	                                        no next: Stopped ◀────┘
//
// An error at any point moves to Idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhasePlaying
	PhasePaused
	PhaseStopped
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseLoading:
		return "Loading"
	case PhaseReady:
		return "Ready"
	case PhasePlaying:
		return "Playing"
	case PhasePaused:
		return "Paused"
	case PhaseStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// State is a snapshot of the playback state.
type State struct {
	Track    *playlist.Track
	Playing  bool
	Volume   float64
	Muted    bool
	Progress time.Duration
	Duration time.Duration
	Mode     playlist.PlayMode
	Rate     float64
	Quality  playlist.Quality
	Phase    Phase
	Err      error // last load or playback failure, cleared on the next load
}

// Restore is the state the engine starts from.
type Restore struct {
	Volume  float64
	Muted   bool
	Quality playlist.Quality
	Rate    float64
	Mode    playlist.PlayMode
	Queue   []playlist.Track
	Current *playlist.Track
	History []playlist.Track
}

// DefaultRestore returns the state of a first run.
func DefaultRestore() Restore {
	return Restore{
		Volume:  0.5,
		Quality: playlist.QualityHigh,
		Rate:    1,
		Mode:    playlist.Sequence,
	}
}
