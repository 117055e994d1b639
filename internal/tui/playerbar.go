package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/nebula/internal/icons"
	"github.com/llehouerou/nebula/internal/playback"
	"github.com/llehouerou/nebula/internal/playlist"
)

// barState is everything the player bar shows.
type barState struct {
	playback.State
	Lyric      string
	Liked      bool
	SleepUntil time.Time // zero when disarmed
	ErrText    string
}

// renderBar renders the player bar for the given outer width.
func (m Model) renderBar(s barState, width int) string {
	inner := max(width-frameStyle.GetHorizontalFrameSize(), 10)

	lines := []string{
		renderTitle(s.Track, s.Liked, inner),
		m.renderProgress(s.State, inner),
		renderStatus(s, inner),
	}
	if s.Lyric != "" {
		lines = append(lines, lyricStyle.Render(truncate(s.Lyric, inner)))
	}
	if s.ErrText != "" {
		lines = append(lines, errorStyle.Render(truncate(s.ErrText, inner)))
	}

	return frameStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func renderTitle(t *playlist.Track, liked bool, width int) string {
	if t == nil {
		return infoStyle.Render("Nothing playing")
	}

	title := t.Title
	if title == "" {
		title = "Unknown Track"
	}
	suffix := ""
	if liked {
		suffix = " " + likedStyle.Render(icons.Favorite())
	}
	width -= lipgloss.Width(suffix)

	title = truncate(title, width)
	line := gradient(title, colorPrimary, colorSecondary)

	var info []string
	if t.Artist != "" {
		info = append(info, t.Artist)
	}
	if t.Album != "" {
		info = append(info, t.Album)
	}
	if rest := width - lipgloss.Width(title) - 3; rest > 5 && len(info) > 0 {
		line += "   " + infoStyle.Render(truncate(strings.Join(info, " · "), rest))
	}
	return line + suffix
}

func (m Model) renderProgress(s playback.State, width int) string {
	status := icons.Status(s.Playing)
	pos := formatDuration(s.Progress)
	dur := formatDuration(s.Duration)

	fixed := lipgloss.Width(status) + 2 + lipgloss.Width(pos) + 2 + 2 + lipgloss.Width(dur)
	barWidth := width - fixed
	if barWidth < 3 {
		return status + "  " + timeStyle.Render(pos+" / "+dur)
	}

	var ratio float64
	if s.Duration > 0 {
		ratio = min(float64(s.Progress)/float64(s.Duration), 1)
	}
	bar := m.progress
	bar.Width = barWidth
	return status + "  " + timeStyle.Render(pos) + "  " + bar.ViewAs(ratio) + "  " + timeStyle.Render(dur)
}

func renderStatus(s barState, width int) string {
	parts := []string{icons.Mode(s.Mode) + " " + modeLabel(s.Mode)}
	if s.Rate != 1 {
		parts = append(parts, fmt.Sprintf("%gx", s.Rate))
	}
	if s.Muted {
		parts = append(parts, icons.Volume(true))
	} else {
		parts = append(parts, fmt.Sprintf("%s %d%%", icons.Volume(false), int(s.Volume*100+0.5)))
	}
	parts = append(parts, string(s.Quality))
	if !s.SleepUntil.IsZero() {
		parts = append(parts, icons.Sleep()+" "+humanize.Time(s.SleepUntil))
	}
	if s.Phase == playback.PhaseLoading {
		parts = append(parts, "loading…")
	}
	return statusStyle.Render(truncate(strings.Join(parts, " · "), width))
}

func modeLabel(m playlist.PlayMode) string {
	switch m {
	case playlist.Loop:
		return "loop"
	case playlist.Shuffle:
		return "shuffle"
	default:
		return "sequence"
	}
}
