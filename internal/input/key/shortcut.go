package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec     = errors.New("empty shortcut specification")
	ErrInvalidSpec   = errors.New("invalid shortcut specification")
	ErrNoBaseKey     = errors.New("shortcut has no base key")
	ErrMultipleBases = errors.New("shortcut has more than one base key")
)

// Shortcut is a modifier set plus exactly one base key. It is a
// comparable value type and is used directly as a map key. Letter
// runes are stored uppercase, so "Cmd B" and "cmd b" compare equal.
type Shortcut struct {
	Mods Modifier
	Key  Key
	Rune rune
}

// ParseShortcut parses a space-separated specification like
// "Cmd Shift E" or "Ctrl Option 2". Modifier words may appear in any
// order; exactly one non-modifier token must remain and names the base
// key.
func ParseShortcut(spec string) (Shortcut, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return Shortcut{}, ErrEmptySpec
	}

	var s Shortcut
	for _, f := range fields {
		if mod := ModifierFromName(f); mod != ModNone {
			s.Mods = s.Mods.With(mod)
			continue
		}
		if s.Key != KeyNone {
			return Shortcut{}, fmt.Errorf("%w: %q", ErrMultipleBases, spec)
		}
		k, r, err := parseBaseKey(f)
		if err != nil {
			return Shortcut{}, err
		}
		s.Key = k
		s.Rune = r
	}
	if s.Key == KeyNone {
		return Shortcut{}, fmt.Errorf("%w: %q", ErrNoBaseKey, spec)
	}
	return s, nil
}

// parseBaseKey resolves one token into a named key or a letter/digit
// rune.
func parseBaseKey(tok string) (Key, rune, error) {
	if k := KeyFromName(tok); k != KeyNone {
		return k, 0, nil
	}

	runes := []rune(tok)
	if len(runes) != 1 {
		return KeyNone, 0, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, tok)
	}
	r := runes[0]
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return KeyNone, 0, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, tok)
	}
	return KeyRune, unicode.ToUpper(r), nil
}

// String returns the canonical spelling: modifiers in the order Ctrl,
// Option, Shift, Cmd, then the base key, space separated. Parsing the
// result yields an equal Shortcut.
func (s Shortcut) String() string {
	base := s.Key.String()
	if s.Key == KeyRune {
		base = string(s.Rune)
	}
	if s.Mods.IsEmpty() {
		return base
	}
	return s.Mods.String() + " " + base
}

// IsZero reports whether the shortcut is the zero value.
func (s Shortcut) IsZero() bool {
	return s.Mods.IsEmpty() && s.Key == KeyNone
}
