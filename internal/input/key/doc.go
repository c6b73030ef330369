// Package key provides the shortcut model for keybindings.
//
// This package defines the fundamental types for representing shortcuts:
//
//   - Key: Identifies a keyboard key (named special keys or runes)
//   - Modifier: Represents modifier keys (Ctrl, Option, Shift, Cmd)
//   - Shortcut: A modifier set plus exactly one base key
//
// # Shortcut Specifications
//
// Specifications are space separated, modifiers in any order followed
// by (or surrounding) exactly one base key:
//
//   - Simple keys: "B", "2", "Enter", "Comma"
//   - With modifiers: "Cmd B", "Cmd Shift E", "Ctrl Option 2"
//
// Shortcut is comparable and serializes to a canonical spelling, so it
// can key maps directly: specs that differ only in modifier order or
// letter case produce equal values.
package key
