package keymap

import (
	"sort"

	"github.com/shelv/shelv/internal/settings"
)

// PaletteEntry is one slash-palette command derived from an aliased
// binding.
type PaletteEntry struct {
	Alias       string
	Icon        string
	Description string
	Action      settings.Action
	Shortcut    string
}

// buildPalette derives palette entries from the effective bindings.
// Only aliased bindings appear; a binding's description falls back to
// the action's own. Entries are ordered by source order so the
// palette mirrors the settings document.
func buildPalette(bindings map[MapKey]settings.Declaration) []PaletteEntry {
	var aliased []settings.Declaration
	for _, d := range bindings {
		if d.Alias != "" {
			aliased = append(aliased, d)
		}
	}
	sort.Slice(aliased, func(i, j int) bool {
		if aliased[i].SourceOrder != aliased[j].SourceOrder {
			return aliased[i].SourceOrder < aliased[j].SourceOrder
		}
		return aliased[i].Alias < aliased[j].Alias
	})

	entries := make([]PaletteEntry, 0, len(aliased))
	for _, d := range aliased {
		desc := d.Description
		if desc == "" {
			desc = d.Action.Describe()
		}
		entries = append(entries, PaletteEntry{
			Alias:       d.Alias,
			Icon:        d.Icon,
			Description: desc,
			Action:      d.Action,
			Shortcut:    d.Shortcut.String(),
		})
	}
	return entries
}
