// Package session tracks who is listening: an anonymous local session by
// default, or a logged-in user whose likes and history live on the profile
// server.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
	"github.com/llehouerou/nebula/internal/profile"
)

var (
	// ErrNotLoggedIn is returned by operations that need a user.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrNoProfileServer is returned by Login when no server is configured.
	ErrNoProfileServer = errors.New("no profile server configured")
)

// HistorySwapper is the engine side of a session switch.
type HistorySwapper interface {
	SwapHistory(tracks []playlist.Track, syncer playback.HistorySyncer)
}

// HistoryLoader reads the anonymous session's local history.
type HistoryLoader interface {
	LoadHistory() ([]playlist.Track, error)
}

// Session is the current listener.
type Session struct {
	engine  HistorySwapper
	local   HistoryLoader
	profile *profile.Client

	mu          sync.Mutex
	anonymousID string
	user        *profile.User
	liked       []string
}

// New starts an anonymous session.
func New(engine HistorySwapper, local HistoryLoader, client *profile.Client) *Session {
	return &Session{
		engine:      engine,
		local:       local,
		profile:     client,
		anonymousID: uuid.NewString(),
	}
}

// ID returns the user id, or the anonymous session id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		return s.user.ID
	}
	return s.anonymousID
}

// User returns the logged-in user, or nil.
func (s *Session) User() *profile.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// LoggedIn reports whether a user is logged in.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Login fetches user id from the profile server and switches to it.
func (s *Session) Login(ctx context.Context, id string) error {
	if s.profile == nil {
		return ErrNoProfileServer
	}
	u, err := s.profile.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("login %s: %w", id, err)
	}
	s.LoginUser(u)
	return nil
}

// LoginUser switches to u. The engine's history is replaced wholesale by the
// user's, and further history writes go to the profile server.
func (s *Session) LoginUser(u *profile.User) {
	s.mu.Lock()
	user := *u
	s.user = &user
	s.liked = slices.Clone(u.LikedSongs)
	s.mu.Unlock()

	var syncer playback.HistorySyncer
	if s.profile != nil {
		syncer = s.profile.HistorySyncer(u.ID)
	}
	s.engine.SwapHistory(u.PlayHistory, syncer)
	log.Info().Str("user", u.ID).Msg("session: logged in")
}

// Logout returns to the anonymous session and its local history.
func (s *Session) Logout() {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	id := s.user.ID
	s.user = nil
	s.liked = nil
	s.mu.Unlock()

	history, err := s.local.LoadHistory()
	if err != nil {
		log.Warn().Err(err).Msg("session: load local history")
		history = nil
	}
	s.engine.SwapHistory(history, nil)
	log.Info().Str("user", id).Msg("session: logged out")
}

// ToggleLike likes or unlikes a song and returns the new state. The full
// like list is synced to the profile server.
func (s *Session) ToggleLike(songID string) (bool, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return false, ErrNotLoggedIn
	}
	liked := !slices.Contains(s.liked, songID)
	if liked {
		s.liked = append(slices.Clone(s.liked), songID)
	} else {
		s.liked = slices.DeleteFunc(slices.Clone(s.liked), func(id string) bool { return id == songID })
	}
	list := slices.Clone(s.liked)
	if list == nil {
		list = []string{}
	}
	userID := s.user.ID
	s.mu.Unlock()

	if s.profile != nil {
		s.profile.Sync(userID, profile.Update{LikedSongs: &list})
	}
	return liked, nil
}

// IsLiked reports whether the logged-in user likes songID.
func (s *Session) IsLiked(songID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.liked, songID)
}

// Liked returns the liked song ids.
func (s *Session) Liked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.liked)
}
