// Package tui is the terminal player: a single player bar whose keys map
// one-to-one onto playback engine intents.
package tui

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/nebula/internal/errmsg"
	"github.com/llehouerou/nebula/internal/keymap"
	"github.com/llehouerou/nebula/internal/lyrics"
	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
)

// Player is the part of the playback engine the TUI drives.
type Player interface {
	State() playback.State
	TogglePlay()
	Next()
	Previous()
	Seek(position time.Duration)
	SetVolume(v float64)
	ToggleMute()
	SetPlaybackRate(r float64)
	CyclePlayMode() playlist.PlayMode
	UndoQueue() bool
	RedoQueue() bool
}

// Sleeper is the sleep timer.
type Sleeper interface {
	Set(d time.Duration)
	Cancel()
	Deadline() (time.Time, bool)
}

// Liker toggles likes for the logged-in user.
type Liker interface {
	ToggleLike(id string) (bool, error)
	IsLiked(id string) bool
}

// Options wires the model to its collaborators. Sleep, Likes and Lyrics are
// optional.
type Options struct {
	Player       Player
	Sub          *playback.Subscription
	Lyrics       <-chan lyrics.Active
	Sleep        Sleeper
	SleepPresets []int // minutes, ascending
	RateOptions  []float64
	Likes        Liker
}

type (
	refreshMsg struct{}
	trackMsg   playback.TrackChange
	errorMsg   playback.ErrorEvent
	lyricMsg   lyrics.Active
	closedMsg  struct{}
	tickMsg    time.Time
)

// Model is the bubbletea model.
type Model struct {
	opts     Options
	keys     *keymap.Resolver
	help     help.Model
	helpKeys helpKeys
	progress progress.Model

	state    playback.State
	lyric    lyrics.Active
	sleepIdx int // index into SleepPresets, -1 when disarmed
	err      string
	width    int
}

// New creates the model.
func New(opts Options) Model {
	return Model{
		opts:     opts,
		keys:     keymap.NewResolver(keymap.All),
		help:     help.New(),
		helpKeys: newHelpKeys(keymap.All),
		progress: progress.New(
			progress.WithGradient(colorPrimary, colorSecondary),
			progress.WithoutPercentage(),
		),
		state:    opts.Player.State(),
		lyric:    lyrics.Active{Index: -1},
		sleepIdx: -1,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.watch(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// watch waits for the next engine or lyrics event.
func (m Model) watch() tea.Cmd {
	sub := m.opts.Sub
	if sub == nil {
		return nil
	}
	lyr := m.opts.Lyrics
	return func() tea.Msg {
		select {
		case <-sub.StateChanged:
			return refreshMsg{}
		case <-sub.PositionChanged:
			return refreshMsg{}
		case <-sub.ModeChanged:
			return refreshMsg{}
		case ev := <-sub.TrackChanged:
			return trackMsg(ev)
		case ev := <-sub.Error:
			return errorMsg(ev)
		case a := <-lyr:
			return lyricMsg(a)
		case <-sub.Done:
			return closedMsg{}
		}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case refreshMsg:
		m.state = m.opts.Player.State()
		return m, m.watch()

	case trackMsg:
		m.state = m.opts.Player.State()
		m.err = ""
		if m.lyric.TrackID != msg.Current.ID {
			m.lyric = lyrics.Active{Index: -1}
		}
		return m, m.watch()

	case errorMsg:
		m.state = m.opts.Player.State()
		m.err = formatError(playback.ErrorEvent(msg), m.state.Track)
		return m, m.watch()

	case lyricMsg:
		m.lyric = lyrics.Active(msg)
		return m, m.watch()

	case tickMsg:
		if m.opts.Sleep != nil {
			if _, armed := m.opts.Sleep.Deadline(); !armed {
				m.sleepIdx = -1
			}
		}
		return m, tick()

	case closedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func formatError(ev playback.ErrorEvent, t *playlist.Track) string {
	op := errmsg.OpTrackLoad
	if ev.Kind == playback.PlaybackRejected {
		op = errmsg.OpPlaybackStart
	}
	title := ""
	if t != nil {
		title = t.Title
	}
	return errmsg.FormatWith(op, title, ev.Err)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.opts.Player
	switch m.keys.Resolve(msg.String()) {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	case keymap.ActionPlayPause:
		p.TogglePlay()
	case keymap.ActionNextTrack:
		p.Next()
	case keymap.ActionPrevTrack:
		p.Previous()
	case keymap.ActionSeekForward:
		p.Seek(p.State().Progress + seekStep)
	case keymap.ActionSeekBack:
		p.Seek(max(p.State().Progress-seekStep, 0))
	case keymap.ActionVolumeUp:
		p.SetVolume(p.State().Volume + volumeStep)
	case keymap.ActionVolumeDown:
		p.SetVolume(p.State().Volume - volumeStep)
	case keymap.ActionToggleMute:
		p.ToggleMute()
	case keymap.ActionRateUp:
		p.SetPlaybackRate(stepRate(m.opts.RateOptions, p.State().Rate, 1))
	case keymap.ActionRateDown:
		p.SetPlaybackRate(stepRate(m.opts.RateOptions, p.State().Rate, -1))
	case keymap.ActionCycleMode:
		p.CyclePlayMode()
	case keymap.ActionCycleSleep:
		m.cycleSleep()
	case keymap.ActionUndo:
		p.UndoQueue()
	case keymap.ActionRedo:
		p.RedoQueue()
	case keymap.ActionToggleLike:
		m.toggleLike()
	default:
		return m, nil
	}
	m.state = p.State()
	return m, nil
}

// stepRate moves to the neighbouring rate option. A rate that is not an
// option snaps to the nearest one in the requested direction.
func stepRate(options []float64, current float64, dir int) float64 {
	if len(options) == 0 {
		return current
	}
	if dir > 0 {
		for _, r := range options {
			if r > current {
				return r
			}
		}
		return options[len(options)-1]
	}
	for _, r := range slices.Backward(options) {
		if r < current {
			return r
		}
	}
	return options[0]
}

// cycleSleep walks off -> presets in order -> off.
func (m *Model) cycleSleep() {
	if m.opts.Sleep == nil || len(m.opts.SleepPresets) == 0 {
		return
	}
	m.sleepIdx++
	if m.sleepIdx >= len(m.opts.SleepPresets) {
		m.sleepIdx = -1
		m.opts.Sleep.Cancel()
		return
	}
	m.opts.Sleep.Set(time.Duration(m.opts.SleepPresets[m.sleepIdx]) * time.Minute)
}

func (m *Model) toggleLike() {
	t := m.opts.Player.State().Track
	if m.opts.Likes == nil || t == nil {
		return
	}
	if _, err := m.opts.Likes.ToggleLike(t.ID); err != nil {
		log.Debug().Err(err).Str("track", t.ID).Msg("toggle like")
		m.err = errmsg.Format(errmsg.OpLikeToggle, err)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	s := barState{State: m.state, ErrText: m.err}
	if m.state.Err != nil && s.ErrText == "" {
		s.ErrText = errmsg.Format(errmsg.OpTrackLoad, m.state.Err)
	}
	if m.state.Track != nil {
		if m.lyric.TrackID == m.state.Track.ID {
			s.Lyric = m.lyric.Text
		}
		if m.opts.Likes != nil {
			s.Liked = m.opts.Likes.IsLiked(m.state.Track.ID)
		}
	}
	if m.opts.Sleep != nil {
		if deadline, ok := m.opts.Sleep.Deadline(); ok {
			s.SleepUntil = deadline
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderBar(s, m.width),
		" "+m.help.View(m.helpKeys),
	)
}
