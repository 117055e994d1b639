// Package profile talks to the profile server that stores a logged-in user's
// likes and play history.
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/playlist"
)

// ErrUserNotFound is returned when the server has no such user.
var ErrUserNotFound = errors.New("user not found")

const (
	requestTimeout = 10 * time.Second
	userAgent      = "nebula-music-player/1.0"
)

// User is the server-side profile of a user.
type User struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	LikedSongs  []string         `json:"likedSongs"`
	PlayHistory []playlist.Track `json:"playHistory"`
}

// Update is a partial profile write. Nil fields are left untouched by the
// server; an empty non-nil list clears it.
type Update struct {
	LikedSongs  *[]string        `json:"likedSongs,omitempty"`
	PlayHistory []playlist.Track `json:"playHistory,omitzero"`
}

// Client is a profile server client.
type Client struct {
	httpClient *http.Client
	baseURL    string

	// Background writes run one at a time, in call order.
	mu      sync.Mutex
	pending []syncJob
	wake    chan struct{}
	done    chan struct{}
	start   sync.Once
	stop    sync.Once
}

type syncJob struct {
	userID string
	update Update
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// Close stops the background writer. Queued writes not yet started are
// dropped.
func (c *Client) Close() {
	c.stop.Do(func() { close(c.done) })
}

func (c *Client) userURL(id string) string {
	return c.baseURL + "/api/users/" + url.PathEscape(id)
}

// Fetch returns the profile of user id.
func (c *Client) Fetch(ctx context.Context, id string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL(id), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &u, nil
}

// Put writes u to the profile of user id.
func (c *Client) Put(ctx context.Context, id string, u Update) error {
	body, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.userURL(id), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrUserNotFound
	default:
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
}

// Sync queues u for the background writer and returns immediately. Writes
// reach the server in the order Sync was called. Failures are logged and
// dropped; the next write carries the full list again.
func (c *Client) Sync(id string, u Update) {
	c.start.Do(func() { go c.syncLoop() })

	c.mu.Lock()
	c.pending = append(c.pending, syncJob{userID: id, update: u})
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Client) syncLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
		}
		for {
			job, ok := c.nextJob()
			if !ok {
				break
			}
			c.send(job)
		}
	}
}

func (c *Client) nextJob() (syncJob, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return syncJob{}, false
	}
	job := c.pending[0]
	c.pending = c.pending[1:]
	return job, true
}

func (c *Client) send(job syncJob) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	if err := c.Put(ctx, job.userID, job.update); err != nil {
		log.Warn().Err(err).Str("user", job.userID).Msg("profile: sync failed")
	}
}

// HistorySyncer forwards history writes to one user's profile.
type HistorySyncer struct {
	client *Client
	userID string
}

// HistorySyncer returns a syncer bound to user id.
func (c *Client) HistorySyncer(id string) *HistorySyncer {
	return &HistorySyncer{client: c, userID: id}
}

// SyncHistory implements playback.HistorySyncer.
func (s *HistorySyncer) SyncHistory(tracks []playlist.Track) {
	if tracks == nil {
		tracks = []playlist.Track{}
	}
	s.client.Sync(s.userID, Update{PlayHistory: tracks})
}
