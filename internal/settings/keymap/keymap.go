// Package keymap folds default and user binding declarations into an
// immutable effective-keymap snapshot.
package keymap

import (
	"sort"

	"github.com/shelv/shelv/internal/input/key"
	"github.com/shelv/shelv/internal/settings"
)

// MapKey identifies one slot in the effective keymap. Two
// declarations with equal scope and shortcut compete for the same
// slot regardless of how their shortcut was spelled.
type MapKey struct {
	Scope    settings.Scope
	Shortcut key.Shortcut
}

// Snapshot is an immutable effective keymap. Readers hold a reference
// and never mutate it; a rebuild produces a new snapshot.
type Snapshot struct {
	bindings map[MapKey]settings.Declaration
	palette  []PaletteEntry
	ai       settings.AIConfig
	diags    []settings.Diagnostic
}

// Build folds declarations into a snapshot. Within the slice, a later
// declaration (greater SourceOrder) wins a (scope, shortcut)
// collision. Callers pass defaults first with SourceOrder -1 so any
// user declaration shadows them.
func Build(decls []settings.Declaration, ai settings.AIConfig, diags []settings.Diagnostic) *Snapshot {
	ordered := make([]settings.Declaration, len(decls))
	copy(ordered, decls)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SourceOrder < ordered[j].SourceOrder
	})

	bindings := make(map[MapKey]settings.Declaration, len(ordered))
	for _, d := range ordered {
		bindings[MapKey{Scope: d.Scope, Shortcut: d.Shortcut}] = d
	}

	return &Snapshot{
		bindings: bindings,
		palette:  buildPalette(bindings),
		ai:       ai,
		diags:    diags,
	}
}

// Lookup returns the declaration bound to a shortcut in a scope.
func (s *Snapshot) Lookup(scope settings.Scope, sc key.Shortcut) (settings.Declaration, bool) {
	d, ok := s.bindings[MapKey{Scope: scope, Shortcut: sc}]
	return d, ok
}

// Len returns the number of effective bindings.
func (s *Snapshot) Len() int {
	return len(s.bindings)
}

// Bindings returns all effective bindings ordered by scope then
// canonical shortcut spelling, so iteration is deterministic.
func (s *Snapshot) Bindings() []settings.Declaration {
	out := make([]settings.Declaration, 0, len(s.bindings))
	for _, d := range s.bindings {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scope != out[j].Scope {
			return out[i].Scope < out[j].Scope
		}
		return out[i].Shortcut.String() < out[j].Shortcut.String()
	})
	return out
}

// Palette returns the derived slash-palette entries.
func (s *Snapshot) Palette() []PaletteEntry {
	return s.palette
}

// AI returns the resolved AI configuration.
func (s *Snapshot) AI() settings.AIConfig {
	return s.ai
}

// Diagnostics returns the problems recorded during the rebuild that
// produced this snapshot.
func (s *Snapshot) Diagnostics() []settings.Diagnostic {
	return s.diags
}
