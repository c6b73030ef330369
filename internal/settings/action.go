package settings

import (
	"fmt"

	"github.com/shelv/shelv/internal/kdl"
)

// ActionKind identifies an action variant.
type ActionKind uint8

const (
	// ActionNone is the zero value; it never appears in a valid
	// declaration.
	ActionNone ActionKind = iota

	ActionMarkdownBold
	ActionMarkdownItalic
	ActionMarkdownStrikethrough
	ActionMarkdownCodeBlock
	ActionMarkdownHeading
	ActionPinWindow
	ActionRunLLMBlock
	ActionShowPrompt
	ActionShowHideApp
	ActionSwitchToNote
	ActionSwitchToSettings
	ActionInsertText
)

// String returns the action node name as written in settings source.
func (k ActionKind) String() string {
	switch k {
	case ActionMarkdownBold:
		return "MarkdownBold"
	case ActionMarkdownItalic:
		return "MarkdownItalic"
	case ActionMarkdownStrikethrough:
		return "MarkdownStrikethrough"
	case ActionMarkdownCodeBlock:
		return "MarkdownCodeBlock"
	case ActionMarkdownHeading:
		return "MarkdownH"
	case ActionPinWindow:
		return "PinWindow"
	case ActionRunLLMBlock:
		return "RunLLMBlock"
	case ActionShowPrompt:
		return "ShowPrompt"
	case ActionShowHideApp:
		return "ShowHideApp"
	case ActionSwitchToNote:
		return "SwitchToNote"
	case ActionSwitchToSettings:
		return "SwitchToSettings"
	case ActionInsertText:
		return "InsertText"
	default:
		return fmt.Sprintf("ActionKind(%d)", k)
	}
}

// Action is one fully resolved action variant. Only the fields
// relevant to Kind are set; no partially constructed action is ever
// returned to callers.
type Action struct {
	Kind ActionKind

	// Level is the heading level for ActionMarkdownHeading (1..3).
	Level int

	// Lang is the optional fence language for ActionMarkdownCodeBlock.
	Lang string

	// NoteIndex is the target note for ActionSwitchToNote (0..3).
	NoteIndex int

	// Literal is the inserted text for a static ActionInsertText.
	Literal string

	// FuncName names the exported script function for a dynamic
	// ActionInsertText. Empty means the Literal source is used.
	FuncName string

	// PassSelection passes the current selection as the function's
	// sole argument.
	PassSelection bool
}

// Dynamic reports whether an InsertText action resolves its text
// through the script bridge.
func (a Action) Dynamic() bool {
	return a.Kind == ActionInsertText && a.FuncName != ""
}

// GlobalOnly reports whether the action is only valid under global
// scope.
func (a Action) GlobalOnly() bool {
	return a.Kind == ActionShowHideApp
}

// Describe returns a short human-readable description, used by the
// slash palette when a declaration carries no description of its own.
func (a Action) Describe() string {
	switch a.Kind {
	case ActionMarkdownBold:
		return "Toggle bold"
	case ActionMarkdownItalic:
		return "Toggle italic"
	case ActionMarkdownStrikethrough:
		return "Toggle strikethrough"
	case ActionMarkdownCodeBlock:
		return "Toggle code block"
	case ActionMarkdownHeading:
		return fmt.Sprintf("Toggle heading %d", a.Level)
	case ActionPinWindow:
		return "Pin window"
	case ActionRunLLMBlock:
		return "Run AI block at cursor"
	case ActionShowPrompt:
		return "Open inline AI prompt"
	case ActionShowHideApp:
		return "Show or hide the app"
	case ActionSwitchToNote:
		return fmt.Sprintf("Switch to note %d", a.NoteIndex+1)
	case ActionSwitchToSettings:
		return "Open settings note"
	case ActionInsertText:
		return "Insert text"
	default:
		return a.Kind.String()
	}
}

// resolveAction matches an action child node against the closed
// variant set. Every syntactically valid node either resolves to
// exactly one Action or produces exactly one error naming the
// constraint that failed.
func resolveAction(n *kdl.Node) (Action, error) {
	switch n.Name {
	case "MarkdownBold":
		return bare(n, Action{Kind: ActionMarkdownBold})
	case "MarkdownItalic":
		return bare(n, Action{Kind: ActionMarkdownItalic})
	case "MarkdownStrikethrough":
		return bare(n, Action{Kind: ActionMarkdownStrikethrough})
	case "MarkdownCodeBlock":
		if len(n.Args) > 0 || len(n.Children) > 0 {
			return Action{}, fmt.Errorf("%s takes no arguments or children", n.Name)
		}
		return Action{Kind: ActionMarkdownCodeBlock, Lang: n.Prop("lang")}, nil
	case "MarkdownH1", "MarkdownH2", "MarkdownH3":
		level := int(n.Name[len(n.Name)-1] - '0')
		return bare(n, Action{Kind: ActionMarkdownHeading, Level: level})
	case "PinWindow":
		return bare(n, Action{Kind: ActionPinWindow})
	case "RunLLMBlock":
		return bare(n, Action{Kind: ActionRunLLMBlock})
	case "ShowPrompt":
		return bare(n, Action{Kind: ActionShowPrompt})
	case "ShowHideApp":
		return bare(n, Action{Kind: ActionShowHideApp})
	case "SwitchToSettings":
		return bare(n, Action{Kind: ActionSwitchToSettings})
	case "SwitchToNote":
		arg, ok := n.Arg(0)
		if !ok {
			return Action{}, fmt.Errorf("SwitchToNote requires a note index")
		}
		idx, ok := arg.AsInt()
		if !ok {
			return Action{}, fmt.Errorf("SwitchToNote index must be a number, got %s", arg.Display())
		}
		if idx < 0 || idx > 3 {
			return Action{}, fmt.Errorf("SwitchToNote index %d out of range 0-3", idx)
		}
		return Action{Kind: ActionSwitchToNote, NoteIndex: int(idx)}, nil
	case "InsertText":
		return resolveInsertText(n)
	default:
		return Action{}, fmt.Errorf("unknown action %q", n.Name)
	}
}

// bare rejects arguments and children on actions that take none.
func bare(n *kdl.Node, a Action) (Action, error) {
	if len(n.Args) > 0 || len(n.Children) > 0 || len(n.Props) > 0 {
		return Action{}, fmt.Errorf("%s takes no arguments or children", n.Name)
	}
	return a, nil
}

// resolveInsertText validates the InsertText shape: exactly one of a
// `string` literal child or a `callFunc` child with a function name
// argument and an optional `selection` child.
func resolveInsertText(n *kdl.Node) (Action, error) {
	if len(n.Children) != 1 {
		return Action{}, fmt.Errorf("InsertText requires exactly one source child, got %d", len(n.Children))
	}
	src := n.Children[0]
	switch src.Name {
	case "string":
		arg, ok := src.Arg(0)
		if !ok {
			return Action{}, fmt.Errorf("InsertText string source requires a literal argument")
		}
		lit, ok := arg.AsString()
		if !ok {
			return Action{}, fmt.Errorf("InsertText string source must be a string, got %s", arg.Display())
		}
		if len(src.Children) > 0 {
			return Action{}, fmt.Errorf("InsertText string source takes no children")
		}
		return Action{Kind: ActionInsertText, Literal: lit}, nil
	case "callFunc":
		arg, ok := src.Arg(0)
		if !ok {
			return Action{}, fmt.Errorf("InsertText callFunc requires a function name")
		}
		name, ok := arg.AsString()
		if !ok || name == "" {
			return Action{}, fmt.Errorf("InsertText callFunc name must be a non-empty string")
		}
		a := Action{Kind: ActionInsertText, FuncName: name}
		for _, c := range src.Children {
			if c.Name != "selection" {
				return Action{}, fmt.Errorf("unknown callFunc child %q", c.Name)
			}
			a.PassSelection = true
		}
		return a, nil
	default:
		return Action{}, fmt.Errorf("unknown InsertText source %q, expected string or callFunc", src.Name)
	}
}
