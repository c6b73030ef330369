// Package state persists application state and note content on disk.
// Notes are plain markdown files; the remaining state is one small
// TOML file next to them.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// NoteCount is the number of regular notes.
const NoteCount = 4

// State is everything that survives a restart besides note content.
type State struct {
	// SelectedNote is the index of the note shown on startup.
	SelectedNote int `toml:"selected_note"`

	// Pinned keeps the window above others.
	Pinned bool `toml:"pinned"`
}

// ParseError reports a malformed state file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Store reads and writes state under one directory.
type Store struct {
	dir string
}

// DefaultDir returns the per-user data directory.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shelv")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shelv")
}

// NewStore creates a store rooted at dir. An empty dir selects the
// default per-user directory.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Init creates the directory and seeds the settings note on first
// run. Existing files are never touched.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	path := s.SettingsPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return writeAtomic(path, []byte(defaultSettingsNote))
	}
	return nil
}

// StatePath returns the path of the TOML state file.
func (s *Store) StatePath() string {
	return filepath.Join(s.dir, "state.toml")
}

// NotePath returns the path of note i.
func (s *Store) NotePath(i int) (string, error) {
	if i < 0 || i >= NoteCount {
		return "", fmt.Errorf("note index %d out of range", i)
	}
	return filepath.Join(s.dir, fmt.Sprintf("note%d.md", i+1)), nil
}

// SettingsPath returns the path of the settings note.
func (s *Store) SettingsPath() string {
	return filepath.Join(s.dir, "settings.md")
}

// LoadState reads the state file. A missing file yields the zero
// state.
func (s *Store) LoadState() (State, error) {
	data, err := os.ReadFile(s.StatePath())
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, err
	}

	var st State
	if err := toml.Unmarshal(data, &st); err != nil {
		return State{}, &ParseError{Path: s.StatePath(), Err: err}
	}
	if st.SelectedNote < 0 || st.SelectedNote >= NoteCount {
		st.SelectedNote = 0
	}
	return st, nil
}

// SaveState writes the state file atomically.
func (s *Store) SaveState(st State) error {
	data, err := toml.Marshal(st)
	if err != nil {
		return err
	}
	return writeAtomic(s.StatePath(), data)
}

// ReadNote returns note i's content. A note that was never written is
// empty.
func (s *Store) ReadNote(i int) (string, error) {
	path, err := s.NotePath(i)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// WriteNote writes note i's content atomically.
func (s *Store) WriteNote(i int, text string) error {
	path, err := s.NotePath(i)
	if err != nil {
		return err
	}
	return writeAtomic(path, []byte(text))
}

// ReadSettings returns the settings note content.
func (s *Store) ReadSettings() (string, error) {
	data, err := os.ReadFile(s.SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// WriteSettings writes the settings note atomically.
func (s *Store) WriteSettings(text string) error {
	return writeAtomic(s.SettingsPath(), []byte(text))
}

// writeAtomic writes via a temp file and rename so a crash never
// leaves a half-written file behind.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".shelv-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// defaultSettingsNote seeds the settings note on first run with a
// working example of each block kind.
const defaultSettingsNote = `# Settings

Edit this note to customize Shelv. Changes apply as you type.

` + "```settings" + `
bind "Cmd L" alias="link" description="Wrap the selection in a link" {
    InsertText { string "[{{selection}}]({||})"; }
}
bind "Cmd G" alias="sig" description="Insert a signature" {
    InsertText { callFunc "signature"; }
}
` + "```" + `

` + "```lua" + `
function signature()
  return "\n---\nSent from Shelv"
end
` + "```" + `

Add an ai block to use your own model and token:

` + "```settings" + `
// ai {
//     model "claude-sonnet-4-20250514"
//     token "sk-..."
// }
` + "```" + `
`
