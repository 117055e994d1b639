// Package mediasession publishes now-playing metadata to OS media surfaces
// and routes their transport commands into the playback engine.
package mediasession

import (
	"context"

	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
)

// Action is an external transport command.
type Action string

const (
	ActionPlay          Action = "play"
	ActionPause         Action = "pause"
	ActionPreviousTrack Action = "previoustrack"
	ActionNextTrack     Action = "nexttrack"
)

// Actions lists every action Bind registers.
var Actions = []Action{ActionPlay, ActionPause, ActionPreviousTrack, ActionNextTrack}

// Artwork is one cover image of the current track.
type Artwork struct {
	Src   string
	Sizes string
	Type  string
}

// Metadata is what a surface shows for the current track.
type Metadata struct {
	TrackID string
	Title   string
	Artist  string
	Album   string
	Artwork []Artwork
}

// MetadataFor builds the metadata published for t.
func MetadataFor(t playlist.Track) Metadata {
	m := Metadata{
		TrackID: t.ID,
		Title:   t.Title,
		Artist:  t.Artist,
		Album:   t.Album,
	}
	if t.CoverURL != "" {
		m.Artwork = []Artwork{{Src: t.CoverURL, Sizes: "512x512", Type: "image/jpeg"}}
	}
	return m
}

// Surface is an OS-level now-playing surface.
type Surface interface {
	SetMetadata(m Metadata)
	SetActionHandler(a Action, h func())
}

// Controller is the subset of engine intents surfaces can trigger.
type Controller interface {
	Play()
	Pause()
	Next()
	Previous()
}

// Bind wires surfaces to the engine. Each action handler is the engine's own
// intent method, so external commands share the UI's code path. Metadata is
// published for current (if any) and then on every track change until ctx
// is done or sub closes.
func Bind(ctx context.Context, ctrl Controller, sub *playback.Subscription, current *playlist.Track, surfaces ...Surface) {
	handlers := map[Action]func(){
		ActionPlay:          ctrl.Play,
		ActionPause:         ctrl.Pause,
		ActionPreviousTrack: ctrl.Previous,
		ActionNextTrack:     ctrl.Next,
	}
	for _, s := range surfaces {
		for _, a := range Actions {
			s.SetActionHandler(a, handlers[a])
		}
		if current != nil {
			s.SetMetadata(MetadataFor(*current))
		}
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.Done:
				return
			case ev := <-sub.TrackChanged:
				m := MetadataFor(ev.Current)
				for _, s := range surfaces {
					s.SetMetadata(m)
				}
			}
		}
	}()
}
