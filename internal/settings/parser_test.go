package settings

import (
	"errors"
	"strings"
	"testing"

	"github.com/shelv/shelv/internal/input/key"
	"github.com/shelv/shelv/internal/kdl"
)

func mustShortcut(t *testing.T, spec string) key.Shortcut {
	t.Helper()
	s, err := key.ParseShortcut(spec)
	if err != nil {
		t.Fatalf("ParseShortcut(%q) error = %v", spec, err)
	}
	return s
}

func TestParseBlockBindings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Declaration
	}{
		{
			name: "simple toggle",
			src:  `bind "Cmd B" { MarkdownBold; }`,
			want: Declaration{
				Action: Action{Kind: ActionMarkdownBold},
			},
		},
		{
			name: "heading",
			src:  `bind "Cmd Option 2" { MarkdownH2; }`,
			want: Declaration{
				Action: Action{Kind: ActionMarkdownHeading, Level: 2},
			},
		},
		{
			name: "code block with lang",
			src:  `bind "Cmd Option C" { MarkdownCodeBlock lang="lua"; }`,
			want: Declaration{
				Action: Action{Kind: ActionMarkdownCodeBlock, Lang: "lua"},
			},
		},
		{
			name: "switch to note",
			src:  `bind "Cmd 3" { SwitchToNote 2; }`,
			want: Declaration{
				Action: Action{Kind: ActionSwitchToNote, NoteIndex: 2},
			},
		},
		{
			name: "metadata properties",
			src:  `bind "Cmd J" alias="insert" icon="pencil" description="Insert snippet" { InsertText { string "hi" } }`,
			want: Declaration{
				Action:      Action{Kind: ActionInsertText, Literal: "hi"},
				Alias:       "insert",
				Icon:        "pencil",
				Description: "Insert snippet",
			},
		},
		{
			name: "call func with selection",
			src: `bind "Cmd K" {
	InsertText {
		callFunc "wrapLink" {
			selection
		}
	}
}`,
			want: Declaration{
				Action: Action{Kind: ActionInsertText, FuncName: "wrapLink", PassSelection: true},
			},
		},
		{
			name: "global show hide",
			src:  `global "Ctrl Option Shift Cmd S" { ShowHideApp; }`,
			want: Declaration{
				Scope:  ScopeGlobal,
				Action: Action{Kind: ActionShowHideApp},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseBlock(tt.src, 0, 0)
			if err != nil {
				t.Fatalf("ParseBlock() error = %v", err)
			}
			if len(res.Diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
			}
			if len(res.Declarations) != 1 {
				t.Fatalf("got %d declarations, want 1", len(res.Declarations))
			}
			got := res.Declarations[0]
			if got.Scope != tt.want.Scope {
				t.Errorf("Scope = %v, want %v", got.Scope, tt.want.Scope)
			}
			if got.Action != tt.want.Action {
				t.Errorf("Action = %+v, want %+v", got.Action, tt.want.Action)
			}
			if got.Alias != tt.want.Alias || got.Icon != tt.want.Icon || got.Description != tt.want.Description {
				t.Errorf("metadata = %q/%q/%q, want %q/%q/%q",
					got.Alias, got.Icon, got.Description,
					tt.want.Alias, tt.want.Icon, tt.want.Description)
			}
			if got.Shortcut.IsZero() {
				t.Error("Shortcut is zero")
			}
		})
	}
}

func TestParseBlockValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"unknown action", `bind "Cmd X" { FlyToTheMoon; }`, "unknown action"},
		{"missing shortcut", `bind { MarkdownBold; }`, "requires a shortcut"},
		{"bad shortcut", `bind "Cmd Cmd" { MarkdownBold; }`, "bad shortcut"},
		{"no action", `bind "Cmd X" { }`, "exactly one action"},
		{"two actions", `bind "Cmd X" { MarkdownBold; MarkdownItalic; }`, "exactly one action"},
		{"note index out of range", `bind "Cmd 5" { SwitchToNote 4; }`, "out of range"},
		{"note index not a number", `bind "Cmd 5" { SwitchToNote "two"; }`, "must be a number"},
		{"global with in-app action", `global "Cmd B" { MarkdownBold; }`, "not valid in a global binding"},
		{"in-app with global action", `bind "Cmd H" { ShowHideApp; }`, "only valid in a global binding"},
		{"insert text no source", `bind "Cmd X" { InsertText; }`, "exactly one source child"},
		{"insert text unknown source", `bind "Cmd X" { InsertText { clipboard; } }`, "unknown InsertText source"},
		{"call func without name", `bind "Cmd X" { InsertText { callFunc; } }`, "requires a function name"},
		{"call func unknown child", `bind "Cmd X" { InsertText { callFunc "f" { cursor; } } }`, "unknown callFunc child"},
		{"args on bare action", `bind "Cmd X" { MarkdownBold "extra"; }`, "takes no arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseBlock(tt.src, 0, 0)
			if err != nil {
				t.Fatalf("ParseBlock() error = %v", err)
			}
			if len(res.Declarations) != 0 {
				t.Errorf("rejected declaration still produced: %+v", res.Declarations)
			}
			if len(res.Diagnostics) != 1 {
				t.Fatalf("got %d diagnostics, want 1", len(res.Diagnostics))
			}
			d := res.Diagnostics[0]
			if !strings.Contains(d.Message, tt.wantMsg) {
				t.Errorf("diagnostic %q, want substring %q", d.Message, tt.wantMsg)
			}
			if !errors.Is(d.Err, ErrValidation) {
				t.Errorf("diagnostic error %v does not wrap ErrValidation", d.Err)
			}
		})
	}
}

// A rejected declaration must not take its siblings down with it.
func TestParseBlockPartialFailureIsolation(t *testing.T) {
	src := `
bind "Cmd B" { MarkdownBold; }
global "Cmd X" { MarkdownItalic; }
bind "Cmd I" { MarkdownItalic; }
`
	res, err := ParseBlock(src, 0, 0)
	if err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}
	if len(res.Declarations) != 2 {
		t.Fatalf("got %d declarations, want 2", len(res.Declarations))
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(res.Diagnostics))
	}
	if res.Declarations[0].Action.Kind != ActionMarkdownBold {
		t.Errorf("first declaration = %v", res.Declarations[0].Action.Kind)
	}
	if res.Declarations[1].Action.Kind != ActionMarkdownItalic {
		t.Errorf("second declaration = %v", res.Declarations[1].Action.Kind)
	}
	// Source order counts rejected declarations too, so later fixes do
	// not reshuffle precedence.
	if res.Declarations[1].SourceOrder != 2 {
		t.Errorf("SourceOrder = %d, want 2", res.Declarations[1].SourceOrder)
	}
}

func TestParseBlockSyntaxError(t *testing.T) {
	_, err := ParseBlock(`bind "Cmd B" { MarkdownBold`, 0, 0)
	if !errors.Is(err, kdl.ErrSyntax) {
		t.Fatalf("error = %v, want kdl.ErrSyntax", err)
	}
}

func TestParseBlockIgnoresUnknownTopLevel(t *testing.T) {
	src := `
theme "dark"
bind "Cmd B" { MarkdownBold; }
`
	res, err := ParseBlock(src, 0, 0)
	if err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}
	if len(res.Declarations) != 1 || len(res.Diagnostics) != 0 {
		t.Errorf("got %d declarations, %d diagnostics, want 1, 0",
			len(res.Declarations), len(res.Diagnostics))
	}
}

func TestParseBlockAI(t *testing.T) {
	src := `
ai {
	model "claude-opus-4"
	systemPrompt r#"You speak in "quotes"."#
	token "sk-test"
	useShelvSystemPrompt false
}
`
	res, err := ParseBlock(src, 0, 0)
	if err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}
	if len(res.AI) != 1 {
		t.Fatalf("got %d ai overrides, want 1", len(res.AI))
	}

	cfg := DefaultAIConfig().Apply(res.AI[0])
	if cfg.Model != "claude-opus-4" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.SystemPrompt != `You speak in "quotes".` {
		t.Errorf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if cfg.Token != "sk-test" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.UseShelvSystemPrompt {
		t.Error("UseShelvSystemPrompt = true, want false")
	}
}

func TestAIConfigDefaultsAndPartialOverride(t *testing.T) {
	cfg := DefaultAIConfig()
	if cfg.Model != DefaultModel || !cfg.UseShelvSystemPrompt {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	res, err := ParseBlock(`ai { token "sk-only" }`, 0, 0)
	if err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}
	got := cfg.Apply(res.AI[0])
	if got.Token != "sk-only" {
		t.Errorf("Token = %q", got.Token)
	}
	if got.Model != DefaultModel {
		t.Errorf("Model = %q, want default preserved", got.Model)
	}
	if !got.UseShelvSystemPrompt {
		t.Error("UseShelvSystemPrompt flipped by partial override")
	}
}

func TestDeclarationShortcutEquality(t *testing.T) {
	res, err := ParseBlock(`bind "shift cmd e" { MarkdownStrikethrough; }`, 0, 0)
	if err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}
	want := mustShortcut(t, "Cmd Shift E")
	if res.Declarations[0].Shortcut != want {
		t.Errorf("Shortcut = %+v, want %+v", res.Declarations[0].Shortcut, want)
	}
}
