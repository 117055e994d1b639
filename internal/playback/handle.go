package playback

import (
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/player"
	"github.com/llehouerou/nebula/internal/playlist"
)

// HandleEvent applies a device event to the engine state. Events whose source
// is no longer loaded are dropped. It is called by the engine's event loop
// and is exported for tests.
func (e *Engine) HandleEvent(ev player.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if ev.Source != e.dev.Source() {
		log.Debug().
			Stringer("event", ev.Type).
			Str("source", ev.Source).
			Msg("dropping event of superseded source")
		return
	}

	switch ev.Type {
	case player.TimeUpdate:
		e.handleTimeUpdateLocked(ev)
	case player.LoadedMetadata:
		e.handleLoadedMetadataLocked(ev)
	case player.Ended:
		e.handleEndedLocked()
	case player.Error:
		e.handleErrorLocked(ev)
	}
}

func (e *Engine) handleTimeUpdateLocked(ev player.Event) {
	if e.duration == 0 && ev.Duration > 0 {
		e.duration = ev.Duration
	}
	e.progress = max(ev.Position, 0)
	if e.duration > 0 {
		e.progress = min(e.progress, e.duration)
	}
	e.publishPosition()
}

func (e *Engine) handleLoadedMetadataLocked(ev player.Event) {
	e.duration = ev.Duration
	if e.current != nil {
		t := e.current.WithDuration(ev.Duration)
		e.current = &t
	}
	e.setState(func() {
		if e.playing {
			e.phase = PhasePlaying
		} else {
			e.phase = PhaseReady
		}
	})
	e.publishPosition()
}

// handleEndedLocked reads mode, queue and current track at fire time.
func (e *Engine) handleEndedLocked() {
	if e.mode == playlist.Loop {
		e.restartLocked()
		return
	}

	next, ok := playlist.NextTrack(e.queue, e.current)
	if !ok {
		e.setState(func() {
			e.playing = false
			e.phase = PhaseStopped
		})
		return
	}
	e.setState(func() { e.playing = true })
	e.advanceLocked(next)
}

func (e *Engine) handleErrorLocked(ev player.Event) {
	if ev.Err == nil {
		ev.Err = ErrLoadFailed
	}
	log.Warn().Err(ev.Err).Str("source", ev.Source).Msg("loading source failed")
	e.setState(func() {
		e.playing = false
		e.phase = PhaseIdle
		e.lastErr = ev.Err
	})
	e.publishError(LoadFailed, ev.Source, ev.Err)
}
