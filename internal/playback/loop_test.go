package playback

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/llehouerou/nebula/internal/player"
	"github.com/llehouerou/nebula/internal/playlist"
)

func TestEngine_EventLoopAppliesDeviceEvents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		dev := player.NewMock()
		e := New(dev, nil, DefaultRestore())
		defer e.Close()
		sub := e.Subscribe()

		e.PlayPlaylist([]playlist.Track{tr("a"), tr("b")}, 0)
		dev.Emit(dev.LoadedMetadata(time.Minute))
		dev.Emit(dev.TimeUpdate(15 * time.Second))
		synctest.Wait()

		if got := e.State().Progress; got != 15*time.Second {
			t.Errorf("Progress = %v, want 15s", got)
		}

		dev.Emit(dev.Ended())
		synctest.Wait()

		if got := e.CurrentTrack(); got.ID != "b" {
			t.Errorf("current = %s, want b", got.ID)
		}
		if n := drain(sub.TrackChanged); n != 2 {
			t.Errorf("TrackChanged events = %d, want 2", n)
		}
	})
}

func TestSubscription_NonBlocking_DropsWhenFull(t *testing.T) {
	sub := newSubscription()

	for range eventBufferSize + 5 {
		send(sub.modeCh, ModeChange{Mode: playlist.Loop})
	}

	if n := drain(sub.ModeChanged); n != eventBufferSize {
		t.Errorf("buffered = %d, want %d", n, eventBufferSize)
	}
}

func TestSubscription_Close_SignalsDone(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		sub := newSubscription()
		sub.close()
		<-sub.Done
	})
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "Idle"},
		{PhaseLoading, "Loading"},
		{PhaseReady, "Ready"},
		{PhasePlaying, "Playing"},
		{PhasePaused, "Paused"},
		{PhaseStopped, "Stopped"},
		{Phase(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
