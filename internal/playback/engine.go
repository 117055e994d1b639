package playback

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/player"
	"github.com/llehouerou/nebula/internal/playlist"
)

const queueUndoSize = 50

// Verify Engine implements Service at compile time.
var _ Service = (*Engine)(nil)

// Engine is the playback service. It owns its device for its whole lifetime;
// nothing else may call the device. All mutation happens under mu, and device
// events are applied by a single goroutine through HandleEvent, so callbacks
// always see live state rather than values captured earlier.
type Engine struct {
	mu sync.Mutex

	dev    player.Device
	store  Store
	syncer HistorySyncer // nil while anonymous
	rng    *rand.Rand

	current  *playlist.Track
	queue    playlist.Queue
	undo     *playlist.QueueUndo
	history  playlist.History
	playing  bool
	phase    Phase
	volume   float64
	muted    bool
	progress time.Duration
	duration time.Duration
	mode     playlist.PlayMode
	rate     float64
	quality  playlist.Quality
	lastErr  error

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used when entering Shuffle mode.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithHistorySyncer starts the engine with a logged-in history syncer.
func WithHistorySyncer(s HistorySyncer) Option {
	return func(e *Engine) { e.syncer = s }
}

// New creates an engine bound to dev and restores r. A restored current
// track is loaded but neither played nor recorded in history. store may be
// nil.
func New(dev player.Device, store Store, r Restore, opts ...Option) *Engine {
	e := &Engine{
		dev:     dev,
		store:   store,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		queue:   playlist.NewQueue(r.Queue...),
		undo:    playlist.NewQueueUndo(queueUndoSize),
		history: playlist.NewHistory(r.History...),
		volume:  clampVolume(r.Volume),
		muted:   r.Muted,
		mode:    r.Mode,
		rate:    r.Rate,
		quality: r.Quality,
		done:    make(chan struct{}),
	}
	if !finite(e.rate) || e.rate <= 0 {
		e.rate = 1
	}
	if !finite(r.Volume) {
		e.volume = DefaultRestore().Volume
	}
	if e.quality == "" {
		e.quality = playlist.QualityHigh
	}
	for _, opt := range opts {
		opt(e)
	}

	e.undo.Push(e.queue)
	dev.SetVolume(e.volume)
	dev.SetMuted(e.muted)
	dev.SetPlaybackRate(e.rate)

	if r.Current != nil {
		e.loadLocked(*r.Current, false)
	}

	go e.run()
	return e
}

// run drains device events until the engine is closed.
func (e *Engine) run() {
	events := e.dev.Events()
	for {
		select {
		case <-e.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.HandleEvent(ev)
		}
	}
}

// State returns a snapshot of the playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	return State{
		Track:    cloneTrack(e.current),
		Playing:  e.playing,
		Volume:   e.volume,
		Muted:    e.muted,
		Progress: e.progress,
		Duration: e.duration,
		Mode:     e.mode,
		Rate:     e.rate,
		Quality:  e.quality,
		Phase:    e.phase,
		Err:      e.lastErr,
	}
}

// CurrentTrack returns the current track, or nil if none.
func (e *Engine) CurrentTrack() *playlist.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneTrack(e.current)
}

// QueueTracks returns a copy of the queue.
func (e *Engine) QueueTracks() []playlist.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Tracks()
}

// HistoryTracks returns a copy of the history, most recent first.
func (e *Engine) HistoryTracks() []playlist.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Tracks()
}

// PlayMode returns the current play mode.
func (e *Engine) PlayMode() playlist.PlayMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	if e.closed {
		sub.close()
		return sub
	}
	e.subs = append(e.subs, sub)
	return sub
}

// Close stops event processing, pauses and releases the device and closes
// all subscriptions.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.done)
	e.dev.Pause()
	err := e.dev.Close()
	e.mu.Unlock()

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()
	return err
}

func (e *Engine) broadcast(fn func(*Subscription)) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		fn(sub)
	}
}

// setState applies fn and emits a StateChange if anything other than the
// position changed.
func (e *Engine) setState(fn func()) {
	prev := e.stateLocked()
	fn()
	cur := e.stateLocked()
	if stateChanged(prev, cur) {
		e.broadcast(func(s *Subscription) {
			send(s.stateCh, StateChange{Previous: prev, Current: cur})
		})
	}
}

func (e *Engine) publishPosition() {
	ev := PositionChange{Source: e.dev.Source(), Position: e.progress, Duration: e.duration}
	if e.current != nil {
		ev.TrackID = e.current.ID
	}
	e.broadcast(func(s *Subscription) { send(s.positionCh, ev) })
}

func (e *Engine) publishError(kind ErrorKind, src string, err error) {
	ev := ErrorEvent{Kind: kind, Source: src, Err: err}
	e.broadcast(func(s *Subscription) { send(s.errorCh, ev) })
}

// persist runs a store write and logs failures.
func (e *Engine) persist(what string, fn func(Store) error) {
	if e.store == nil {
		return
	}
	if err := fn(e.store); err != nil {
		log.Warn().Err(err).Str("key", what).Msg("saving playback state failed")
	}
}

func stateChanged(a, b State) bool {
	return a.Playing != b.Playing ||
		a.Phase != b.Phase ||
		a.Volume != b.Volume ||
		a.Muted != b.Muted ||
		a.Mode != b.Mode ||
		a.Rate != b.Rate ||
		a.Quality != b.Quality ||
		(a.Err == nil) != (b.Err == nil)
}

func cloneTrack(t *playlist.Track) *playlist.Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
