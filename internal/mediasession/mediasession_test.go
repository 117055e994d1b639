package mediasession

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/player"
	"github.com/llehouerou/nebula/internal/playlist"
)

type fakeSurface struct {
	mu       sync.Mutex
	metadata []Metadata
	handlers map[Action]func()
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{handlers: map[Action]func(){}}
}

func (f *fakeSurface) SetMetadata(m Metadata) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata = append(f.metadata, m)
}

func (f *fakeSurface) SetActionHandler(a Action, h func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[a] = h
}

func (f *fakeSurface) published() []Metadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Metadata(nil), f.metadata...)
}

func (f *fakeSurface) trigger(a Action) {
	f.mu.Lock()
	h := f.handlers[a]
	f.mu.Unlock()
	h()
}

func track(id string) playlist.Track {
	return playlist.Track{
		ID: id, Title: "Title " + id, Artist: "Artist", Album: "Album",
		CoverURL: "https://img/" + id + ".jpg", AudioURL: "file:///" + id + ".mp3",
	}
}

func TestMetadataFor(t *testing.T) {
	m := MetadataFor(track("a"))

	assert.Equal(t, "Title a", m.Title)
	require.Len(t, m.Artwork, 1)
	assert.Equal(t, Artwork{Src: "https://img/a.jpg", Sizes: "512x512", Type: "image/jpeg"}, m.Artwork[0])

	assert.Empty(t, MetadataFor(playlist.Track{ID: "x"}).Artwork)
}

func TestBind_PublishesOncePerTrackChange(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		dev := player.NewMock()
		e := playback.New(dev, nil, playback.DefaultRestore())
		defer e.Close()
		s := newFakeSurface()
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		Bind(ctx, e, e.Subscribe(), nil, s)
		e.Load(track("a"))
		e.Load(track("a"))
		e.Load(track("b"))
		synctest.Wait()

		got := s.published()
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].TrackID)
		assert.Equal(t, "b", got[1].TrackID)
	})
}

func TestBind_ActionsDriveEngineIntents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		dev := player.NewMock()
		e := playback.New(dev, nil, playback.DefaultRestore())
		defer e.Close()
		s := newFakeSurface()
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		e.PlayPlaylist([]playlist.Track{track("a"), track("b")}, 0)
		Bind(ctx, e, e.Subscribe(), e.CurrentTrack(), s)
		require.Len(t, s.published(), 1, "current track is published on bind")

		s.trigger(ActionPause)
		assert.False(t, e.State().Playing)
		s.trigger(ActionPlay)
		assert.True(t, e.State().Playing)
		s.trigger(ActionNextTrack)
		assert.Equal(t, "b", e.CurrentTrack().ID)
		s.trigger(ActionPreviousTrack)
		assert.Equal(t, "a", e.CurrentTrack().ID)
	})
}
