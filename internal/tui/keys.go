package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/llehouerou/nebula/internal/keymap"
)

// helpKeys adapts the key map to the bubbles help view.
type helpKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func newHelpKeys(bindings []keymap.Binding) helpKeys {
	var h helpKeys
	groups := map[string]int{}
	for _, b := range bindings {
		kb := key.NewBinding(
			key.WithKeys(b.Keys...),
			key.WithHelp(keyLabel(b.Keys[0]), b.Description),
		)
		idx, ok := groups[b.Context]
		if !ok {
			idx = len(h.full)
			groups[b.Context] = idx
			h.full = append(h.full, nil)
		}
		h.full[idx] = append(h.full[idx], kb)
		switch b.Action {
		case keymap.ActionPlayPause, keymap.ActionNextTrack, keymap.ActionPrevTrack,
			keymap.ActionHelp, keymap.ActionQuit:
			h.short = append(h.short, kb)
		}
	}
	return h
}

func (h helpKeys) ShortHelp() []key.Binding  { return h.short }
func (h helpKeys) FullHelp() [][]key.Binding { return h.full }

func keyLabel(k string) string {
	switch k {
	case " ":
		return "space"
	case "left":
		return "←"
	case "right":
		return "→"
	}
	return k
}
