package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

const (
	colorPrimary   = "#a78bfa"
	colorSecondary = "#f1a208"
	colorBase      = "#c0c0c0"
	colorMuted     = "#808080"
	colorSubtle    = "#585858"
	colorError     = "#ff5555"
	colorLiked     = "#ff79c6"
)

var (
	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorSubtle)).
			Padding(0, 2)

	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBase))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorSubtle))
	lyricStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBase)).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorError))
	likedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorLiked))
)

// gradient renders bold text blended from one hex color to another, one
// grapheme cluster at a time, in HCL space.
func gradient(text, from, to string) string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	if len(clusters) == 0 {
		return ""
	}

	c1, err1 := colorful.Hex(from)
	c2, err2 := colorful.Hex(to)
	if err1 != nil || err2 != nil || len(clusters) == 1 {
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(from)).Render(text)
	}

	var b strings.Builder
	for i, cluster := range clusters {
		t := float64(i) / float64(len(clusters)-1)
		c := c1.BlendHcl(c2, t).Clamped()
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex())).Render(cluster))
	}
	return b.String()
}
