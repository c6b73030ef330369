package settings

import "github.com/shelv/shelv/internal/input/key"

// Scope distinguishes in-app bindings from system-wide ones.
type Scope uint8

const (
	// ScopeInApp bindings fire only while the app has focus.
	ScopeInApp Scope = iota

	// ScopeGlobal bindings are registered system-wide.
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "in-app"
}

// Declaration is one fully validated keybinding declaration: a scope,
// a shortcut, a resolved action, and optional palette metadata.
type Declaration struct {
	Scope    Scope
	Shortcut key.Shortcut
	Action   Action

	// Icon, Alias and Description come from the declaration's
	// properties. An Alias makes the binding reachable from the slash
	// palette.
	Icon        string
	Alias       string
	Description string

	// SourceOrder is the declaration's position in the settings
	// document. Built-in defaults use -1 so any user declaration wins
	// a collision.
	SourceOrder int

	// ModuleBound is the number of script modules evaluated before
	// this declaration's settings block. A dynamic InsertText may only
	// resolve functions exported by those modules.
	ModuleBound int

	// Offset is the byte position of the declaration in its block.
	Offset int
}
