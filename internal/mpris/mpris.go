//go:build linux

// Package mpris exposes the player on the session bus as an MPRIS
// MediaPlayer2 service so desktop media keys and widgets can drive it.
package mpris

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/mediasession"
	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
)

const (
	minRate = 0.5
	maxRate = 2.0
)

// Player is the engine surface the adapter reads state from and sends the
// non-transport intents to. Transport commands go through the handlers
// registered by mediasession.Bind.
type Player interface {
	State() playback.State
	Seek(position time.Duration)
	SetVolume(v float64)
	SetPlaybackRate(r float64)
	PlayMode() playlist.PlayMode
	SetPlayMode(m playlist.PlayMode)
}

// Adapter is an MPRIS media surface.
type Adapter struct {
	server *server.Server
	player *playerAdapter
}

// New creates and starts an MPRIS adapter.
func New(p Player) (*Adapter, error) {
	pa := newPlayerAdapter(p)
	a := &Adapter{
		server: server.NewServer("nebula", &rootAdapter{}, pa),
		player: pa,
	}

	go func() {
		if err := a.server.Listen(); err != nil {
			log.Warn().Err(err).Msg("mpris: listen failed")
		}
	}()

	return a, nil
}

// SetMetadata implements mediasession.Surface.
func (a *Adapter) SetMetadata(m mediasession.Metadata) {
	a.player.setMetadata(m)
}

// SetActionHandler implements mediasession.Surface.
func (a *Adapter) SetActionHandler(action mediasession.Action, h func()) {
	a.player.setHandler(action, h)
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil
}

func (r *rootAdapter) Quit() error {
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Nebula", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav", "audio/ogg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and the loop and
// shuffle extensions.
type playerAdapter struct {
	player Player

	mu       sync.Mutex
	handlers map[mediasession.Action]func()
	meta     *mediasession.Metadata
}

func newPlayerAdapter(p Player) *playerAdapter {
	return &playerAdapter{
		player:   p,
		handlers: make(map[mediasession.Action]func()),
	}
}

func (p *playerAdapter) setHandler(a mediasession.Action, h func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[a] = h
}

func (p *playerAdapter) setMetadata(m mediasession.Metadata) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.meta = &m
}

func (p *playerAdapter) invoke(a mediasession.Action) error {
	p.mu.Lock()
	h := p.handlers[a]
	p.mu.Unlock()
	if h != nil {
		h()
	}
	return nil
}

func (p *playerAdapter) Next() error {
	return p.invoke(mediasession.ActionNextTrack)
}

func (p *playerAdapter) Previous() error {
	return p.invoke(mediasession.ActionPreviousTrack)
}

func (p *playerAdapter) Pause() error {
	return p.invoke(mediasession.ActionPause)
}

func (p *playerAdapter) PlayPause() error {
	if p.player.State().Playing {
		return p.invoke(mediasession.ActionPause)
	}
	return p.invoke(mediasession.ActionPlay)
}

// Stop pauses: the engine has no separate stopped transport state.
func (p *playerAdapter) Stop() error {
	return p.invoke(mediasession.ActionPause)
}

func (p *playerAdapter) Play() error {
	return p.invoke(mediasession.ActionPlay)
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	pos := p.player.State().Progress + time.Duration(offset)*time.Microsecond
	p.player.Seek(max(pos, 0))
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.player.Seek(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.player.State()), nil
}

func playbackStatus(s playback.State) types.PlaybackStatus {
	switch {
	case s.Playing:
		return types.PlaybackStatusPlaying
	case s.Track == nil, s.Phase == playback.PhaseStopped, s.Phase == playback.PhaseIdle:
		return types.PlaybackStatusStopped
	default:
		return types.PlaybackStatusPaused
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.player.State().Rate, nil
}

func (p *playerAdapter) SetRate(r float64) error {
	p.player.SetPlaybackRate(min(max(r, minRate), maxRate))
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	p.mu.Lock()
	meta := p.meta
	p.mu.Unlock()
	if meta == nil {
		return types.Metadata{}, nil
	}

	m := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(meta.TrackID)),
		Length:  types.Microseconds(p.player.State().Duration.Microseconds()),
		Title:   meta.Title,
		Album:   meta.Album,
	}
	if meta.Artist != "" {
		m.Artist = []string{meta.Artist}
	}
	if len(meta.Artwork) > 0 {
		m.ArtUrl = meta.Artwork[0].Src
	}
	return m, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.player.State().Volume, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.player.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.player.State().Progress.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return minRate, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return maxRate, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.player.State().Track != nil, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.player.State().Track != nil, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.player.State().Track != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.player.State().Duration > 0, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
// Sequence and Shuffle both wrap at the end of the queue.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	if p.player.PlayMode() == playlist.Loop {
		return types.LoopStatusTrack, nil
	}
	return types.LoopStatusPlaylist, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusTrack:
		p.player.SetPlayMode(playlist.Loop)
	case types.LoopStatusNone, types.LoopStatusPlaylist:
		if p.player.PlayMode() == playlist.Loop {
			p.player.SetPlayMode(playlist.Sequence)
		}
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.player.PlayMode() == playlist.Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	switch {
	case shuffle:
		p.player.SetPlayMode(playlist.Shuffle)
	case p.player.PlayMode() == playlist.Shuffle:
		p.player.SetPlayMode(playlist.Sequence)
	}
	return nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
