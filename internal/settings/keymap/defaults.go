package keymap

import (
	"fmt"

	"github.com/shelv/shelv/internal/input/key"
	"github.com/shelv/shelv/internal/settings"
)

// defaultBinding builds one built-in declaration. Defaults carry
// SourceOrder -1 so any user declaration on the same slot wins.
func defaultBinding(spec string, action settings.Action) settings.Declaration {
	sc, err := key.ParseShortcut(spec)
	if err != nil {
		panic(fmt.Sprintf("bad default shortcut %q: %v", spec, err))
	}
	return settings.Declaration{
		Scope:       settings.ScopeInApp,
		Shortcut:    sc,
		Action:      action,
		SourceOrder: -1,
	}
}

// Defaults returns the built-in binding set.
func Defaults() []settings.Declaration {
	return []settings.Declaration{
		defaultBinding("Cmd B", settings.Action{Kind: settings.ActionMarkdownBold}),
		defaultBinding("Cmd I", settings.Action{Kind: settings.ActionMarkdownItalic}),
		defaultBinding("Cmd Shift E", settings.Action{Kind: settings.ActionMarkdownStrikethrough}),
		defaultBinding("Cmd Option C", settings.Action{Kind: settings.ActionMarkdownCodeBlock}),
		defaultBinding("Cmd Option 1", settings.Action{Kind: settings.ActionMarkdownHeading, Level: 1}),
		defaultBinding("Cmd Option 2", settings.Action{Kind: settings.ActionMarkdownHeading, Level: 2}),
		defaultBinding("Cmd Option 3", settings.Action{Kind: settings.ActionMarkdownHeading, Level: 3}),
		defaultBinding("Cmd 1", settings.Action{Kind: settings.ActionSwitchToNote, NoteIndex: 0}),
		defaultBinding("Cmd 2", settings.Action{Kind: settings.ActionSwitchToNote, NoteIndex: 1}),
		defaultBinding("Cmd 3", settings.Action{Kind: settings.ActionSwitchToNote, NoteIndex: 2}),
		defaultBinding("Cmd 4", settings.Action{Kind: settings.ActionSwitchToNote, NoteIndex: 3}),
		defaultBinding("Cmd Comma", settings.Action{Kind: settings.ActionSwitchToSettings}),
		defaultBinding("Cmd P", settings.Action{Kind: settings.ActionPinWindow}),
		defaultBinding("Cmd Enter", settings.Action{Kind: settings.ActionRunLLMBlock}),
		defaultBinding("Cmd Shift P", settings.Action{Kind: settings.ActionShowPrompt}),
	}
}
