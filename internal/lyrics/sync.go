package lyrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
)

const fetchTimeout = 15 * time.Second

// Active describes the lyric state of the current track.
type Active struct {
	TrackID string
	Doc     *Document // nil when the track has no lyrics
	Index   int       // -1 when no line is active
	Text    string
}

// Synchronizer follows the playback engine and keeps the active lyric line
// of the current track.
type Synchronizer struct {
	mu      sync.Mutex
	fetcher Fetcher // may be nil
	trackID string
	cursor  *Cursor
	cancel  context.CancelFunc
	changes chan Active
}

// NewSynchronizer creates a synchronizer. fetcher may be nil to use only the
// lyrics carried by tracks.
func NewSynchronizer(fetcher Fetcher) *Synchronizer {
	return &Synchronizer{
		fetcher: fetcher,
		cursor:  NewCursor(nil),
		changes: make(chan Active, 16),
	}
}

// Changes delivers the new state whenever the document or active line
// changes. Updates are dropped when the reader falls behind.
func (s *Synchronizer) Changes() <-chan Active { return s.changes }

// Current returns the current state.
func (s *Synchronizer) Current() Active {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Synchronizer) activeLocked() Active {
	idx := s.cursor.Index()
	doc := s.cursor.Document()
	return Active{TrackID: s.trackID, Doc: doc, Index: idx, Text: doc.Text(idx)}
}

// Run applies engine events until ctx is done or the subscription closes.
func (s *Synchronizer) Run(ctx context.Context, sub *playback.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case ev := <-sub.TrackChanged:
			s.SetTrack(ctx, &ev.Current)
		case ev := <-sub.PositionChanged:
			s.SetPosition(ev.TrackID, ev.Position)
		}
	}
}

// SetTrack switches to t. Lyrics carried by the track win; otherwise they
// are fetched in the background.
func (s *Synchronizer) SetTrack(ctx context.Context, t *playlist.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if t == nil {
		s.trackID = ""
		s.cursor = NewCursor(nil)
		s.emitLocked()
		return
	}

	s.trackID = t.ID
	var doc *Document
	if t.HasLyrics() {
		doc = Parse(t.Lyrics)
	}
	s.cursor = NewCursor(doc)
	s.emitLocked()

	if doc != nil || s.fetcher == nil {
		return
	}
	fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	s.cancel = cancel
	go s.fetch(fctx, cancel, *t)
}

func (s *Synchronizer) fetch(ctx context.Context, cancel context.CancelFunc, t playlist.Track) {
	defer cancel()
	doc, err := s.fetcher.Fetch(ctx, t)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Str("track", t.ID).Msg("fetching lyrics failed")
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trackID != t.ID || ctx.Err() != nil {
		return
	}
	s.cursor = NewCursor(doc)
	s.emitLocked()
}

// SetPosition moves the active line to pos. Positions of any track other
// than the current one are dropped.
func (s *Synchronizer) SetPosition(trackID string, pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if trackID != s.trackID {
		return
	}
	before := s.cursor.Index()
	if s.cursor.Update(pos) != before {
		s.emitLocked()
	}
}

func (s *Synchronizer) emitLocked() {
	select {
	case s.changes <- s.activeLocked():
	default:
	}
}
