package lastfm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
	"github.com/llehouerou/nebula/internal/state"
)

const (
	retryInterval = 5 * time.Minute
	maxAttempts   = 10
	maxPendingAge = 14 * 24 * time.Hour
)

// Scrobbler follows the engine and reports what is played. Each track
// change sends "now playing" and arms one scrobble, submitted once playback
// passes ScrobbleThreshold. Failed scrobbles are queued in the state store
// and retried periodically.
type Scrobbler struct {
	api   API
	store state.ScrobbleStore

	mu        sync.Mutex
	track     *playlist.Track
	startedAt time.Time
	scrobbled bool

	wg sync.WaitGroup
}

// NewScrobbler creates a scrobbler. store may be nil, in which case failed
// scrobbles are dropped.
func NewScrobbler(api API, store state.ScrobbleStore) *Scrobbler {
	return &Scrobbler{api: api, store: store}
}

// Run consumes sub until ctx is done or the subscription closes, then waits
// for in-flight submissions.
func (s *Scrobbler) Run(ctx context.Context, sub *playback.Subscription) {
	defer s.wg.Wait()

	s.RetryPending()
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case ev := <-sub.TrackChanged:
			s.HandleTrackChange(ev)
		case ev := <-sub.PositionChanged:
			s.HandlePosition(ev)
		case <-ticker.C:
			s.RetryPending()
		}
	}
}

// HandleTrackChange starts tracking ev.Current.
func (s *Scrobbler) HandleTrackChange(ev playback.TrackChange) {
	t := ev.Current
	now := time.Now()
	s.mu.Lock()
	s.track = &t
	s.startedAt = now
	s.scrobbled = false
	s.mu.Unlock()

	st := TrackFrom(t, t.Duration, now)
	if !st.Scrobblable() {
		return
	}
	s.wg.Go(func() {
		if err := s.api.UpdateNowPlaying(st); err != nil {
			log.Debug().Err(err).Str("track", t.ID).Msg("lastfm: now playing")
		}
	})
}

// HandlePosition scrobbles the current track once it has played long enough.
// Positions reported for another track are ignored.
func (s *Scrobbler) HandlePosition(ev playback.PositionChange) {
	s.mu.Lock()
	if s.track == nil || s.scrobbled || ev.TrackID != s.track.ID {
		s.mu.Unlock()
		return
	}
	threshold, ok := ScrobbleThreshold(ev.Duration)
	if !ok || ev.Position < threshold {
		s.mu.Unlock()
		return
	}
	s.scrobbled = true
	st := TrackFrom(*s.track, ev.Duration, s.startedAt)
	s.mu.Unlock()

	if !st.Scrobblable() {
		return
	}
	s.wg.Go(func() { s.submit(st) })
}

func (s *Scrobbler) submit(st ScrobbleTrack) {
	err := s.api.Scrobble(st)
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("track", st.Track).Msg("lastfm: scrobble failed")
	if s.store == nil || errors.Is(err, ErrNotAuthenticated) {
		return
	}
	qerr := s.store.AddPendingScrobble(state.PendingScrobble{
		Artist:       st.Artist,
		Track:        st.Track,
		Album:        st.Album,
		DurationSecs: int(st.Duration.Seconds()),
		Timestamp:    st.Timestamp,
	})
	if qerr != nil {
		log.Error().Err(qerr).Msg("lastfm: queue scrobble")
	}
}

// RetryPending resubmits queued scrobbles and returns how many succeeded.
func (s *Scrobbler) RetryPending() int {
	if s.store == nil {
		return 0
	}
	if err := s.store.DeleteOldPendingScrobbles(maxPendingAge); err != nil {
		log.Warn().Err(err).Msg("lastfm: prune pending scrobbles")
	}
	pending, err := s.store.GetPendingScrobbles()
	if err != nil {
		log.Warn().Err(err).Msg("lastfm: load pending scrobbles")
		return 0
	}

	succeeded := 0
	for _, p := range pending {
		if p.Attempts >= maxAttempts {
			continue
		}
		err := s.api.Scrobble(ScrobbleTrack{
			Artist:    p.Artist,
			Track:     p.Track,
			Album:     p.Album,
			Duration:  time.Duration(p.DurationSecs) * time.Second,
			Timestamp: p.Timestamp,
		})
		if err != nil {
			_ = s.store.UpdatePendingScrobbleAttempt(p.ID, err.Error())
			continue
		}
		succeeded++
		_ = s.store.DeletePendingScrobble(p.ID)
	}
	if len(pending) > 0 {
		log.Debug().Int("pending", len(pending)).Int("sent", succeeded).Msg("lastfm: retried scrobbles")
	}
	return succeeded
}
