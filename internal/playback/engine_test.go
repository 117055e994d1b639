package playback

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/llehouerou/nebula/internal/player"
	"github.com/llehouerou/nebula/internal/playlist"
)

func TestEngine_NextThenLoopReplaysOnEnded(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	a, b, c := tr("a"), tr("b"), tr("c")

	e.PlayPlaylist([]playlist.Track{a, b, c}, 1)
	e.Next()

	if got := e.CurrentTrack(); got == nil || got.ID != "c" {
		t.Fatalf("after Next current = %v, want c", got)
	}

	e.SetPlayMode(playlist.Loop)
	e.HandleEvent(dev.LoadedMetadata(3 * time.Minute))
	sourcesBefore := len(dev.Sources())
	e.HandleEvent(dev.Ended())

	if got := e.CurrentTrack(); got.ID != "c" {
		t.Errorf("Loop ended advanced to %s, want c", got.ID)
	}
	if seeks := dev.Seeks(); len(seeks) == 0 || seeks[len(seeks)-1] != 0 {
		t.Errorf("Loop ended seeks = %v, want trailing 0", seeks)
	}
	if len(dev.Sources()) != sourcesBefore {
		t.Error("Loop replay must not reload the source")
	}
	if !dev.Playing() || !e.State().Playing {
		t.Error("Loop replay should keep playing")
	}
}

func TestEngine_EndedAdvancesInSequence(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.PlayPlaylist([]playlist.Track{tr("a"), tr("b")}, 0)

	e.HandleEvent(dev.Ended())

	if got := e.CurrentTrack(); got.ID != "b" {
		t.Errorf("current = %s, want b", got.ID)
	}
	if dev.Source() != tr("b").AudioURL {
		t.Errorf("device source = %s, want b", dev.Source())
	}
	if !e.State().Playing {
		t.Error("advance should keep playing")
	}
}

func TestEngine_EndedReadsLiveQueue(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.PlayPlaylist([]playlist.Track{tr("a"), tr("b")}, 0)

	// Queue changes long after playback started; ended must see the new queue.
	e.RemoveFromQueue("b")
	e.AddToQueue(tr("c"))
	e.HandleEvent(dev.Ended())

	if got := e.CurrentTrack(); got.ID != "c" {
		t.Errorf("current = %s, want c", got.ID)
	}
}

func TestEngine_EndedReadsLiveMode(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.PlayPlaylist([]playlist.Track{tr("a"), tr("b")}, 0)
	e.SetPlayMode(playlist.Loop)
	e.SetPlayMode(playlist.Sequence)

	e.HandleEvent(dev.Ended())

	if got := e.CurrentTrack(); got.ID != "b" {
		t.Errorf("current = %s, want b", got.ID)
	}
}

func TestEngine_EndedWithEmptyQueueStopsKeepingTrack(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.PlayTrack(tr("a"))
	e.ClearQueue()

	e.HandleEvent(dev.Ended())

	st := e.State()
	if st.Playing {
		t.Error("Playing should be false after ended with nothing next")
	}
	if st.Phase != PhaseStopped {
		t.Errorf("Phase = %v, want Stopped", st.Phase)
	}
	if st.Track == nil || st.Track.ID != "a" {
		t.Errorf("Track = %v, want a kept", st.Track)
	}
}

func TestEngine_EndedOnSingleTrackQueueRestartsInPlace(t *testing.T) {
	e, dev, store := newTestEngine(t)
	e.PlayTrack(tr("a"))
	historyWrites := store.histories

	e.HandleEvent(dev.Ended())

	if len(dev.Sources()) != 1 {
		t.Errorf("Sources = %v, want a single load", dev.Sources())
	}
	if store.histories != historyWrites {
		t.Error("restart in place must not record history")
	}
	if !dev.Playing() {
		t.Error("should be playing again")
	}
}

func TestEngine_LoadSameURLIsIdempotent(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	sub := e.Subscribe()
	a := tr("a")

	e.Load(a)
	e.Load(a)

	if n := drain(sub.TrackChanged); n != 1 {
		t.Errorf("TrackChanged events = %d, want 1", n)
	}
	if n := len(e.HistoryTracks()); n != 1 {
		t.Errorf("history len = %d, want 1", n)
	}
	if n := len(dev.Sources()); n != 1 {
		t.Errorf("device loads = %d, want 1", n)
	}
}

func TestEngine_PlayTrack(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.AddToQueue(tr("a"))

	e.PlayTrack(tr("b"))

	if got := trackIDs(e.QueueTracks()); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("queue = %v, want [b a]", got)
	}
	if !dev.Playing() {
		t.Error("device should be playing")
	}

	// Already queued: no duplicate.
	e.PlayTrack(tr("a"))
	if got := trackIDs(e.QueueTracks()); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("queue = %v, want [b a]", got)
	}

	// Same track toggles.
	e.PlayTrack(tr("a"))
	if e.State().Playing {
		t.Error("PlayTrack on current track should pause")
	}
}

func TestEngine_PlayWithoutTrackIsNoop(t *testing.T) {
	e, dev, _ := newTestEngine(t)

	e.Play()
	e.TogglePlay()

	if dev.PlayCalls() != 0 || e.State().Playing {
		t.Error("Play without current track should do nothing")
	}
}

func TestEngine_PlaybackRejectedRollsBack(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	sub := e.Subscribe()
	dev.SetPlayError(errors.New("autoplay blocked"))

	e.PlayTrack(tr("a"))

	st := e.State()
	if st.Playing {
		t.Error("Playing should be rolled back")
	}
	if st.Track == nil || st.Track.ID != "a" {
		t.Error("track should stay loaded")
	}
	select {
	case ev := <-sub.Error:
		if ev.Kind != PlaybackRejected {
			t.Errorf("error kind = %v, want PlaybackRejected", ev.Kind)
		}
	default:
		t.Error("expected an error event")
	}
}

func TestEngine_LoadErrorKeepsTrackAndAllowsRetry(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	sub := e.Subscribe()
	e.PlayPlaylist([]playlist.Track{tr("a"), tr("b")}, 0)

	ev := dev.Event(player.Error)
	ev.Err = errors.New("404")
	e.HandleEvent(ev)

	st := e.State()
	if st.Playing || st.Phase != PhaseIdle {
		t.Errorf("state = playing %v phase %v, want stopped Idle", st.Playing, st.Phase)
	}
	if st.Track == nil || st.Track.ID != "a" {
		t.Error("failed track must stay current, not advance")
	}
	if st.Err == nil {
		t.Error("State.Err should be set")
	}
	select {
	case got := <-sub.Error:
		if got.Kind != LoadFailed {
			t.Errorf("error kind = %v, want LoadFailed", got.Kind)
		}
	default:
		t.Error("expected an error event")
	}

	loads := len(dev.Sources())
	e.Play()
	if len(dev.Sources()) <= loads || dev.Source() != tr("a").AudioURL {
		t.Errorf("Play after failure should reload a, sources = %v", dev.Sources())
	}
	if e.State().Phase != PhaseLoading {
		t.Errorf("Phase = %v, want Loading", e.State().Phase)
	}
}

func TestEngine_DropsEventsOfSupersededSource(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.PlayPlaylist([]playlist.Track{tr("a"), tr("b"), tr("c")}, 0)
	stale := dev.Ended()
	e.Next()

	e.HandleEvent(stale)

	if got := e.CurrentTrack(); got.ID != "b" {
		t.Errorf("stale ended moved current to %s", got.ID)
	}
}

func TestEngine_LoadedMetadataAndTimeUpdate(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.PlayTrack(tr("a"))

	if e.State().Phase != PhaseLoading {
		t.Fatalf("Phase = %v, want Loading", e.State().Phase)
	}

	e.HandleEvent(dev.LoadedMetadata(200 * time.Second))
	e.HandleEvent(dev.TimeUpdate(42 * time.Second))

	st := e.State()
	if st.Phase != PhasePlaying {
		t.Errorf("Phase = %v, want Playing", st.Phase)
	}
	if st.Duration != 200*time.Second || st.Track.Duration != 200*time.Second {
		t.Errorf("Duration = %v / %v, want 200s", st.Duration, st.Track.Duration)
	}
	if st.Progress != 42*time.Second {
		t.Errorf("Progress = %v, want 42s", st.Progress)
	}

	e.HandleEvent(dev.TimeUpdate(500 * time.Second))
	if got := e.State().Progress; got != 200*time.Second {
		t.Errorf("Progress = %v, want clamped to duration", got)
	}
}

func TestEngine_SeekRequiresLoadedSource(t *testing.T) {
	e, dev, _ := newTestEngine(t)

	e.Seek(10 * time.Second)
	if len(dev.Seeks()) != 0 {
		t.Error("Seek without a source should be ignored")
	}

	e.Load(tr("a"))
	e.Seek(10 * time.Second)
	if got := e.State().Progress; got != 10*time.Second {
		t.Errorf("Progress = %v, want 10s", got)
	}
}

func TestEngine_OutputSettingsPersist(t *testing.T) {
	e, dev, store := newTestEngine(t)

	e.SetVolume(1.7)
	e.SetPlaybackRate(1.5)
	e.SetPlaybackRate(-1)
	e.ToggleMute()
	e.SetQuality(playlist.QualityLossless)
	e.SetQuality("ultra")

	st := e.State()
	if st.Volume != 1 || dev.Volume() != 1 || store.volume != 1 {
		t.Errorf("volume = %v/%v/%v, want clamped 1", st.Volume, dev.Volume(), store.volume)
	}
	if st.Rate != 1.5 || dev.Rate() != 1.5 || store.rate != 1.5 {
		t.Errorf("rate = %v, want 1.5", st.Rate)
	}
	if !st.Muted || !dev.Muted() || !store.muted {
		t.Error("mute should be mirrored to device and store")
	}
	if st.Quality != playlist.QualityLossless || store.quality != playlist.QualityLossless {
		t.Errorf("quality = %v, want lossless", st.Quality)
	}
}

func TestEngine_NonFiniteOutputSettingsIgnored(t *testing.T) {
	tests := []struct {
		name string
		set  func(e *Engine)
	}{
		{"volume NaN", func(e *Engine) { e.SetVolume(math.NaN()) }},
		{"volume +Inf", func(e *Engine) { e.SetVolume(math.Inf(1)) }},
		{"volume -Inf", func(e *Engine) { e.SetVolume(math.Inf(-1)) }},
		{"rate NaN", func(e *Engine) { e.SetPlaybackRate(math.NaN()) }},
		{"rate +Inf", func(e *Engine) { e.SetPlaybackRate(math.Inf(1)) }},
		{"rate -Inf", func(e *Engine) { e.SetPlaybackRate(math.Inf(-1)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, dev, store := newTestEngine(t)
			e.SetVolume(0.4)
			e.SetPlaybackRate(1.25)

			tt.set(e)

			st := e.State()
			if st.Volume != 0.4 || dev.Volume() != 0.4 || store.volume != 0.4 {
				t.Errorf("volume = %v/%v/%v, want 0.4", st.Volume, dev.Volume(), store.volume)
			}
			if st.Rate != 1.25 || dev.Rate() != 1.25 || store.rate != 1.25 {
				t.Errorf("rate = %v/%v/%v, want 1.25", st.Rate, dev.Rate(), store.rate)
			}
		})
	}
}

func TestNew_NonFiniteRestoreFallsBack(t *testing.T) {
	r := DefaultRestore()
	r.Volume = math.NaN()
	r.Rate = math.Inf(1)
	e := New(player.NewMock(), nil, r)
	defer e.Close()

	st := e.State()
	if st.Volume != 0.5 || st.Rate != 1 {
		t.Errorf("volume/rate = %v/%v, want defaults", st.Volume, st.Rate)
	}
}

func TestEngine_PositionCarriesTrackIdentity(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	sub := e.Subscribe()

	e.Load(tr("a"))
	e.HandleEvent(dev.TimeUpdate(3 * time.Second))

	var got PositionChange
	for len(sub.PositionChanged) > 0 {
		got = <-sub.PositionChanged
	}
	if got.TrackID != "a" || got.Source != tr("a").AudioURL || got.Position != 3*time.Second {
		t.Errorf("PositionChange = %+v, want track a at 3s", got)
	}
}

func TestEngine_CyclePlayMode(t *testing.T) {
	e, _, store := newTestEngine(t)

	for range 3 {
		e.CyclePlayMode()
	}

	if e.PlayMode() != playlist.Sequence {
		t.Errorf("mode = %v, want Sequence", e.PlayMode())
	}
	if store.mode != playlist.Sequence {
		t.Errorf("stored mode = %v, want Sequence", store.mode)
	}
}

func TestEngine_ShuffleEntryKeepsCurrentFirst(t *testing.T) {
	dev := player.NewMock()
	e := New(dev, nil, DefaultRestore(), WithRand(rand.New(rand.NewPCG(7, 7))))
	defer e.Close()
	tracks := []playlist.Track{tr("a"), tr("b"), tr("c"), tr("d"), tr("e")}
	e.PlayPlaylist(tracks, 2)

	e.SetPlayMode(playlist.Shuffle)

	q := e.QueueTracks()
	if q[0].ID != "c" {
		t.Errorf("first queued = %s, want c", q[0].ID)
	}
	if len(q) != len(tracks) {
		t.Errorf("len = %d, want %d", len(q), len(tracks))
	}
}

func TestEngine_QueueOpsAndUndo(t *testing.T) {
	e, _, store := newTestEngine(t)
	e.PlayPlaylist([]playlist.Track{tr("a"), tr("b"), tr("c")}, 1)

	e.PlayNext(tr("x"))
	if got := trackIDs(e.QueueTracks()); !slices.Equal(got, []string{"a", "b", "x", "c"}) {
		t.Fatalf("queue = %v, want [a b x c]", got)
	}
	if got := trackIDs(store.queue); !slices.Equal(got, []string{"a", "b", "x", "c"}) {
		t.Errorf("stored queue = %v", got)
	}

	e.MoveInQueue(9, 0)
	e.RemoveFromQueue("nope")
	if got := trackIDs(e.QueueTracks()); !slices.Equal(got, []string{"a", "b", "x", "c"}) {
		t.Errorf("invalid targets changed queue: %v", got)
	}

	if !e.UndoQueue() {
		t.Fatal("UndoQueue() = false")
	}
	if got := trackIDs(e.QueueTracks()); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("after undo = %v, want [a b c]", got)
	}
	if !e.RedoQueue() || len(e.QueueTracks()) != 4 {
		t.Error("RedoQueue should restore x")
	}
}

func TestEngine_HistoryCappedAndDeduplicated(t *testing.T) {
	e, _, store := newTestEngine(t)

	for i := range 60 {
		e.PlayTrack(tr(fmt.Sprintf("t%02d", i)))
	}
	e.PlayTrack(tr("t30"))

	h := e.HistoryTracks()
	if len(h) != playlist.HistoryLimit {
		t.Fatalf("history len = %d, want %d", len(h), playlist.HistoryLimit)
	}
	if h[0].ID != "t30" {
		t.Errorf("latest = %s, want t30", h[0].ID)
	}
	seen := map[string]bool{}
	for _, tk := range h {
		if seen[tk.ID] {
			t.Errorf("duplicate %s in history", tk.ID)
		}
		seen[tk.ID] = true
	}
	if len(store.history) != playlist.HistoryLimit {
		t.Errorf("stored history len = %d", len(store.history))
	}
}

func TestEngine_HistoryGoesToSyncerWhenLoggedIn(t *testing.T) {
	e, _, store := newTestEngine(t)
	e.PlayTrack(tr("anon"))
	anonWrites := store.histories

	syncer := &fakeSyncer{}
	e.SwapHistory([]playlist.Track{tr("u1"), tr("u2")}, syncer)
	if got := trackIDs(e.HistoryTracks()); !slices.Equal(got, []string{"u1", "u2"}) {
		t.Fatalf("swapped history = %v", got)
	}

	e.PlayTrack(tr("b"))
	e.RemoveFromHistory("u2")

	if syncer.count() != 2 {
		t.Errorf("syncer calls = %d, want 2", syncer.count())
	}
	if store.histories != anonWrites {
		t.Error("logged-in history must not be written to the local store")
	}

	e.SwapHistory(store.history, nil)
	if got := trackIDs(e.HistoryTracks()); !slices.Equal(got, []string{"anon"}) {
		t.Errorf("history after logout = %v, want [anon]", got)
	}
}

func TestEngine_RestoreLoadsWithoutPlayingOrRecording(t *testing.T) {
	dev := player.NewMock()
	cur := tr("b")
	r := DefaultRestore()
	r.Queue = []playlist.Track{tr("a"), cur}
	r.Current = &cur
	r.Mode = playlist.Loop
	r.Volume = 0.3

	e := New(dev, nil, r)
	defer e.Close()

	st := e.State()
	if st.Track == nil || st.Track.ID != "b" || st.Playing {
		t.Errorf("restored state = %+v", st)
	}
	if dev.Source() != cur.AudioURL || dev.PlayCalls() != 0 {
		t.Error("restore should load but not play")
	}
	if len(e.HistoryTracks()) != 0 {
		t.Error("restore must not record history")
	}
	if dev.Volume() != 0.3 || st.Mode != playlist.Loop {
		t.Errorf("volume %v mode %v not restored", dev.Volume(), st.Mode)
	}
}

func TestEngine_IntentsAfterCloseAreIgnored(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	sub := e.Subscribe()
	_ = e.Close()

	e.PlayTrack(tr("a"))

	<-sub.Done
	if dev.PlayCalls() != 0 {
		t.Error("closed engine must not touch the device")
	}
}
