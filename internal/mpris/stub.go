//go:build !linux

package mpris

import (
	"time"

	"github.com/llehouerou/nebula/internal/mediasession"
	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
)

// Player is the engine surface the adapter drives.
type Player interface {
	State() playback.State
	Seek(position time.Duration)
	SetVolume(v float64)
	SetPlaybackRate(r float64)
	PlayMode() playlist.PlayMode
	SetPlayMode(m playlist.PlayMode)
}

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ Player) (*Adapter, error) {
	return &Adapter{}, nil
}

// SetMetadata is a no-op on non-Linux platforms.
func (a *Adapter) SetMetadata(_ mediasession.Metadata) {}

// SetActionHandler is a no-op on non-Linux platforms.
func (a *Adapter) SetActionHandler(_ mediasession.Action, _ func()) {}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
