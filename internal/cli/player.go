package cli

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/nebula/internal/catalog"
	"github.com/llehouerou/nebula/internal/errmsg"
	"github.com/llehouerou/nebula/internal/icons"
	"github.com/llehouerou/nebula/internal/lastfm"
	"github.com/llehouerou/nebula/internal/logging"
	"github.com/llehouerou/nebula/internal/lrclib"
	"github.com/llehouerou/nebula/internal/lyrics"
	"github.com/llehouerou/nebula/internal/mediasession"
	"github.com/llehouerou/nebula/internal/mpris"
	"github.com/llehouerou/nebula/internal/notify"
	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/player"
	"github.com/llehouerou/nebula/internal/playlist"
	"github.com/llehouerou/nebula/internal/profile"
	"github.com/llehouerou/nebula/internal/session"
	"github.com/llehouerou/nebula/internal/sleep"
	"github.com/llehouerou/nebula/internal/state"
	"github.com/llehouerou/nebula/internal/stderr"
	"github.com/llehouerou/nebula/internal/tui"
)

func runPlayer(cmd *cobra.Command, o *rootOptions, args []string) error {
	cfg := o.cfg

	logFile, err := logging.Setup(cfg.GetLogLevel(), cfg.LogFile)
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpInitialize, err))
	}
	defer logFile.Close()

	// ALSA and oto write to fd 2 behind our back.
	capture, err := stderr.Start(func(line string) {
		log.Warn().Str("source", "stderr").Msg(line)
	})
	if err != nil {
		log.Debug().Err(err).Msg("stderr capture unavailable")
	} else {
		defer capture.Stop()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store, err := state.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpStateLoad, err))
	}
	defer store.Close()

	snap, err := store.Load()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpStateLoad, err))
	}

	tracks, err := scanSources(ctx, args, cfg.LibrarySources)
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpLibraryScan, err))
	}

	engine := playback.New(player.NewSpeaker(), store, snap.Restore())
	defer engine.Close()

	var client *profile.Client
	if cfg.HasProfileConfig() {
		client = profile.New(cfg.Profile.URL)
		defer client.Close()
	}
	sess := session.New(engine, store, client)
	if o.userID != "" {
		if client == nil {
			return fmt.Errorf("%s", errmsg.Format(errmsg.OpLogin, session.ErrNoProfileServer))
		}
		if err := sess.Login(ctx, o.userID); err != nil {
			return fmt.Errorf("%s", errmsg.FormatWith(errmsg.OpLogin, o.userID, err))
		}
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	surfaces := mediaSurfaces(engine, cfg.MPRISEnabled(), cfg.NotificationsEnabled())
	for _, s := range surfaces {
		if c, ok := s.(interface{ Close() error }); ok {
			defer c.Close()
		}
	}
	mediasession.Bind(ctx, engine, engine.Subscribe(), engine.CurrentTrack(), surfaces...)

	var lrc *lrclib.Client
	if cfg.FetchLyrics() {
		lrc = lrclib.New(cfg.Lyrics.LrclibURL)
	}
	lyricSync := lyrics.NewSynchronizer(lyrics.NewSource(lrc))
	lyricSync.SetTrack(ctx, engine.CurrentTrack())
	followers := []follower{lyricSync}
	if scrobbler := newScrobbler(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret, cfg.HasLastfmConfig(), store); scrobbler != nil {
		followers = append(followers, scrobbler)
	}

	icons.Init(cfg.GetIcons())
	timer := sleep.New(engine)
	timer.OnFire(func() { log.Info().Msg("sleep timer paused playback") })
	defer timer.Cancel()

	model := tui.New(tui.Options{
		Player:       engine,
		Sub:          engine.Subscribe(),
		Lyrics:       lyricSync.Changes(),
		Sleep:        timer,
		SleepPresets: cfg.GetSleepPresets(),
		RateOptions:  cfg.GetRateOptions(),
		Likes:        sess,
	})
	startPlayback(ctx, &wg, engine, tracks, followers...)

	log.Info().Int("tracks", len(tracks)).Bool("logged_in", sess.LoggedIn()).Msg("nebula started")
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpInitialize, err))
	}
	return nil
}

// follower consumes engine events until ctx is done or its subscription
// closes.
type follower interface {
	Run(ctx context.Context, sub *playback.Subscription)
}

// startPlayback subscribes every follower and only then plays tracks, so the
// first track's TrackChange reaches all of them.
func startPlayback(
	ctx context.Context,
	wg *sync.WaitGroup,
	engine *playback.Engine,
	tracks []playlist.Track,
	followers ...follower,
) {
	for _, f := range followers {
		sub := engine.Subscribe()
		wg.Go(func() { f.Run(ctx, sub) })
	}
	if len(tracks) > 0 {
		engine.PlayPlaylist(tracks, 0)
	}
}

// scanSources scans the given paths, or the configured library when none
// are given.
func scanSources(ctx context.Context, args, library []string) ([]playlist.Track, error) {
	paths := args
	if len(paths) == 0 {
		paths = library
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return catalog.Scan(ctx, paths...)
}

func mediaSurfaces(engine *playback.Engine, useMPRIS, useNotify bool) []mediasession.Surface {
	var surfaces []mediasession.Surface
	if useMPRIS {
		adapter, err := mpris.New(engine)
		if err != nil {
			log.Warn().Err(err).Msg("mpris unavailable")
		} else {
			surfaces = append(surfaces, adapter)
		}
	}
	if useNotify {
		n, err := notify.New()
		if err != nil {
			log.Warn().Err(err).Msg("notifications unavailable")
		} else {
			surfaces = append(surfaces, n)
		}
	}
	return surfaces
}

// newScrobbler returns nil unless Last.fm is configured and linked.
func newScrobbler(apiKey, apiSecret string, configured bool, store *state.Manager) *lastfm.Scrobbler {
	if !configured {
		return nil
	}
	linked, err := store.GetLastfmSession()
	if err != nil {
		log.Warn().Err(err).Msg("read last.fm session")
		return nil
	}
	if linked == nil {
		return nil
	}
	client := lastfm.New(apiKey, apiSecret)
	client.SetSessionKey(linked.SessionKey)
	log.Debug().Str("user", linked.Username).Msg("scrobbling enabled")
	return lastfm.NewScrobbler(client, store)
}
