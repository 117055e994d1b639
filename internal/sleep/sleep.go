// Package sleep implements the sleep timer: a wall-clock countdown that
// pauses playback when it elapses.
package sleep

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Pauser is what the timer stops. The playback engine satisfies it.
type Pauser interface {
	Pause()
}

// Timer pauses playback after a delay. It counts wall-clock time, so it keeps
// running while playback is paused, and it never touches the queue, the
// current track or the position.
type Timer struct {
	mu       sync.Mutex
	target   Pauser
	timer    *time.Timer
	deadline time.Time
	gen      uint64
	onFire   func()
}

// New creates a disarmed timer pausing target.
func New(target Pauser) *Timer {
	return &Timer{target: target}
}

// OnFire registers fn to run after the timer has paused playback.
func (t *Timer) OnFire(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFire = fn
}

// Set arms the timer to fire after d, replacing any pending countdown.
// A non-positive d cancels.
func (t *Timer) Set(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	if d <= 0 {
		return
	}
	t.gen++
	gen := t.gen
	t.deadline = time.Now().Add(d)
	t.timer = time.AfterFunc(d, func() { t.fire(gen) })
	log.Debug().Dur("in", d).Msg("sleep timer armed")
}

// SetMinutes arms the timer for n minutes.
func (t *Timer) SetMinutes(n int) {
	t.Set(time.Duration(n) * time.Minute)
}

// Cancel disarms the timer.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Active reports whether a countdown is pending.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Remaining returns the time left, and false when disarmed.
func (t *Timer) Remaining() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		return 0, false
	}
	return max(time.Until(t.deadline), 0), true
}

// Deadline returns when the timer fires, and false when disarmed.
func (t *Timer) Deadline() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deadline, t.timer != nil
}

func (t *Timer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.deadline = time.Time{}
	t.gen++
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		// Re-armed or cancelled after this callback was already scheduled.
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.deadline = time.Time{}
	onFire := t.onFire
	t.mu.Unlock()

	log.Info().Msg("sleep timer elapsed, pausing playback")
	t.target.Pause()
	if onFire != nil {
		onFire()
	}
}
