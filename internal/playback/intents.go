package playback

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/playlist"
)

// Load makes t the current track and points the device at its audio url.
// Loading the url that is already loaded only replaces the current track
// value: it does not restart playback, record history or emit TrackChange.
// The playing flag is kept, so loading while playing keeps playing.
func (e *Engine) Load(t playlist.Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.loadLocked(t, true)
	if e.playing {
		e.startLocked()
	}
}

// loadLocked is the only place the device source changes, and with record set
// the only place history grows. Returns true if the source changed.
func (e *Engine) loadLocked(t playlist.Track, record bool) bool {
	prev := e.current
	e.current = &t
	e.persist("current_track", func(s Store) error { return s.SaveCurrentTrack(&t) })

	if t.AudioURL == e.dev.Source() {
		return false
	}

	log.Debug().Str("track", t.ID).Str("source", t.AudioURL).Msg("loading track")
	e.dev.SetSource(t.AudioURL)
	e.setState(func() {
		e.phase = PhaseLoading
		e.progress = 0
		e.duration = 0
		e.lastErr = nil
	})
	e.publishPosition()

	if record {
		e.recordHistoryLocked(t)
	}

	ev := TrackChange{Previous: cloneTrack(prev), Current: t, Playing: e.playing}
	e.broadcast(func(s *Subscription) { send(s.trackCh, ev) })
	return true
}

// startLocked asks the device to play. A rejection rolls the playing flag
// back and is reported as an ErrorEvent.
func (e *Engine) startLocked() {
	if e.current == nil {
		return
	}
	if e.phase == PhaseIdle && e.lastErr != nil {
		// Explicit retry after a load failure.
		e.dev.SetSource("")
		e.dev.SetSource(e.current.AudioURL)
		e.setState(func() {
			e.phase = PhaseLoading
			e.lastErr = nil
		})
	}

	e.setState(func() {
		e.playing = true
		if e.phase != PhaseLoading {
			e.phase = PhasePlaying
		}
	})

	if err := e.dev.Play(); err != nil {
		log.Warn().Err(err).Str("source", e.dev.Source()).Msg("playback rejected")
		e.setState(func() {
			e.playing = false
			if e.phase == PhasePlaying {
				e.phase = PhasePaused
			}
			e.lastErr = err
		})
		e.publishError(PlaybackRejected, e.dev.Source(), err)
	}
}

func (e *Engine) pauseLocked() {
	e.dev.Pause()
	e.setState(func() {
		e.playing = false
		if e.phase == PhasePlaying {
			e.phase = PhasePaused
		}
	})
}

// restartLocked replays the loaded source from the start.
func (e *Engine) restartLocked() {
	e.dev.SetCurrentTime(0)
	e.progress = 0
	e.publishPosition()
	e.startLocked()
}

// advanceLocked moves to t, keeping the playing flag. A target with the
// loaded url restarts in place instead of reloading.
func (e *Engine) advanceLocked(t playlist.Track) {
	if t.AudioURL == e.dev.Source() {
		e.current = &t
		if e.playing {
			e.restartLocked()
		} else {
			e.dev.SetCurrentTime(0)
			e.progress = 0
			e.publishPosition()
		}
		return
	}
	e.loadLocked(t, true)
	if e.playing {
		e.startLocked()
	}
}

// PlayTrack plays t. Playing the current track toggles play/pause instead.
// A track not yet queued is put at the front of the queue.
func (e *Engine) PlayTrack(t playlist.Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.current != nil && e.current.ID == t.ID {
		e.toggleLocked()
		return
	}

	if !e.queue.Contains(t.ID) {
		e.setQueueLocked(e.queue.Prepend(t))
	}
	e.playing = true
	e.loadLocked(t, true)
	e.startLocked()
}

// PlayPlaylist replaces the queue with tracks and plays the one at start
// (the first one if start is out of range). In Shuffle mode the new queue is
// shuffled around the starting track.
func (e *Engine) PlayPlaylist(tracks []playlist.Track, start int) {
	if len(tracks) == 0 {
		return
	}
	if start < 0 || start >= len(tracks) {
		start = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	first := tracks[start]
	q := playlist.NewQueue(tracks...)
	if e.mode == playlist.Shuffle {
		q = playlist.ShuffleQueue(q, &first, e.rng)
	}
	e.setQueueLocked(q)
	e.playing = true
	e.loadLocked(first, true)
	e.startLocked()
}

// Play resumes playback of the current track. No-op without a current track.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.startLocked()
}

// Pause pauses playback. Pausing while nothing plays is a no-op.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.pauseLocked()
}

// TogglePlay toggles between playing and paused.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.toggleLocked()
}

func (e *Engine) toggleLocked() {
	if e.current == nil {
		return
	}
	if e.playing {
		e.pauseLocked()
	} else {
		e.startLocked()
	}
}

// Next moves to the next queued track.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if next, ok := playlist.NextTrack(e.queue, e.current); ok {
		e.advanceLocked(next)
	}
}

// Previous moves to the previous queued track.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if prev, ok := playlist.PreviousTrack(e.queue, e.current); ok {
		e.advanceLocked(prev)
	}
}

// Seek moves to position. Ignored when no source is loaded; the device
// clamps out-of-range positions.
func (e *Engine) Seek(position time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.current == nil || e.dev.Source() == "" {
		return
	}
	position = max(position, 0)
	e.dev.SetCurrentTime(position)
	e.progress = position
	if e.duration > 0 {
		e.progress = min(e.progress, e.duration)
	}
	e.publishPosition()
}

// SetVolume sets the volume, clamped to [0, 1]. NaN and infinities are
// ignored.
func (e *Engine) SetVolume(v float64) {
	if !finite(v) {
		return
	}
	v = clampVolume(v)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.dev.SetVolume(v)
	e.setState(func() { e.volume = v })
	e.persist("volume", func(s Store) error { return s.SaveVolume(v) })
}

// SetMuted mutes or unmutes output without changing the volume.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.setMutedLocked(muted)
}

// ToggleMute flips the mute state.
func (e *Engine) ToggleMute() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.setMutedLocked(!e.muted)
}

func (e *Engine) setMutedLocked(muted bool) {
	e.dev.SetMuted(muted)
	e.setState(func() { e.muted = muted })
	e.persist("muted", func(s Store) error { return s.SaveMuted(muted) })
}

// SetPlaybackRate sets the speed multiplier. Non-positive and non-finite
// rates are ignored.
func (e *Engine) SetPlaybackRate(r float64) {
	if !finite(r) || r <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.dev.SetPlaybackRate(r)
	e.setState(func() { e.rate = r })
	e.persist("rate", func(s Store) error { return s.SaveRate(r) })
}

// SetQuality records the preferred sound quality. Unknown values are ignored.
func (e *Engine) SetQuality(q playlist.Quality) {
	if _, ok := playlist.ParseQuality(string(q)); !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.setState(func() { e.quality = q })
	e.persist("quality", func(s Store) error { return s.SaveQuality(q) })
}

// SetPlayMode switches mode. Entering Shuffle shuffles the queue with the
// current track first; leaving it keeps the shuffled order.
func (e *Engine) SetPlayMode(m playlist.PlayMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.setModeLocked(m)
}

// CyclePlayMode advances Sequence -> Loop -> Shuffle -> Sequence and returns
// the new mode.
func (e *Engine) CyclePlayMode() playlist.PlayMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.mode
	}
	e.setModeLocked(e.mode.Next())
	return e.mode
}

func (e *Engine) setModeLocked(m playlist.PlayMode) {
	if m == e.mode {
		return
	}
	if m == playlist.Shuffle {
		e.setQueueLocked(playlist.ShuffleQueue(e.queue, e.current, e.rng))
	}
	e.setState(func() { e.mode = m })
	e.persist("play_mode", func(s Store) error { return s.SavePlayMode(m) })
	ev := ModeChange{Mode: m}
	e.broadcast(func(s *Subscription) { send(s.modeCh, ev) })
}
