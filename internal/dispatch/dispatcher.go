// Package dispatch executes resolved actions against the editor
// buffer and the host application.
package dispatch

import (
	"github.com/shelv/shelv/internal/llm"
	"github.com/shelv/shelv/internal/script"
	"github.com/shelv/shelv/internal/settings"
)

// Host is the application surface outside the note buffer. The GUI
// shell implements it; the CLI uses a logging stub.
type Host interface {
	PinWindow() error
	ShowHideApp() error
	SwitchToNote(index int) error
	SwitchToSettings() error

	// ShowPrompt opens the inline AI prompt over the given context.
	ShowPrompt(pc llm.PromptContext) error
}

// Dispatcher routes actions to buffer mutations, the script bridge,
// the LLM runner and the host. Mutations are applied atomically: the
// full replacement is computed first, then applied once.
type Dispatcher struct {
	bridge *script.Bridge
	runner *llm.Runner
	host   Host
	ai     func() settings.AIConfig
}

// New creates a dispatcher. ai supplies the current AI configuration
// at trigger time so hot reloads take effect without rewiring.
func New(bridge *script.Bridge, runner *llm.Runner, host Host, ai func() settings.AIConfig) *Dispatcher {
	if ai == nil {
		ai = func() settings.AIConfig { return settings.DefaultAIConfig() }
	}
	return &Dispatcher{bridge: bridge, runner: runner, host: host, ai: ai}
}

// SetBridge swaps the script bridge after a settings rebuild.
func (d *Dispatcher) SetBridge(b *script.Bridge) {
	d.bridge = b
}

// Dispatch executes one declaration's action against the editor
// context. Failures never leave the buffer partially mutated.
func (d *Dispatcher) Dispatch(decl settings.Declaration, ctx EditorContext) Result {
	a := decl.Action
	switch a.Kind {
	case settings.ActionMarkdownBold:
		return toggleInline(ctx, "**")
	case settings.ActionMarkdownItalic:
		return toggleInline(ctx, "*")
	case settings.ActionMarkdownStrikethrough:
		return toggleInline(ctx, "~~")
	case settings.ActionMarkdownCodeBlock:
		return toggleCodeBlock(ctx, a.Lang)
	case settings.ActionMarkdownHeading:
		return toggleHeading(ctx, a.Level)
	case settings.ActionInsertText:
		return d.insertText(decl, ctx)
	case settings.ActionPinWindow:
		return hostCall(d.host.PinWindow)
	case settings.ActionShowHideApp:
		return hostCall(d.host.ShowHideApp)
	case settings.ActionSwitchToSettings:
		return hostCall(d.host.SwitchToSettings)
	case settings.ActionSwitchToNote:
		if a.NoteIndex < 0 || a.NoteIndex > 3 {
			return Errorf("note index %d out of range", a.NoteIndex)
		}
		return hostCall(func() error { return d.host.SwitchToNote(a.NoteIndex) })
	case settings.ActionRunLLMBlock:
		return d.runBlock(ctx)
	case settings.ActionShowPrompt:
		return d.showPrompt(ctx)
	default:
		return Errorf("unhandled action %s", a.Kind)
	}
}

func hostCall(fn func() error) Result {
	if err := fn(); err != nil {
		return Error(err)
	}
	return Success()
}

// insertText resolves literal or script-produced content and splices
// it over the selection, then repositions the caret per any markers
// in the resolved text.
func (d *Dispatcher) insertText(decl settings.Declaration, ctx EditorContext) Result {
	a := decl.Action
	sel, span := ctx.Selection()

	content := a.Literal
	if a.Dynamic() {
		var selArg *string
		if a.PassSelection {
			selArg = &sel
		}
		out, err := d.bridge.Call(a.FuncName, decl.ModuleBound, selArg)
		if err != nil {
			return Error(err)
		}
		content = out
	}

	res, err := resolvePlaceholders(content, sel)
	if err != nil {
		return Error(err)
	}

	ctx.ReplaceRange(span, res.Text)
	if res.HasTarget {
		ctx.SetSelection(Span{Start: span.Start + res.Start, End: span.Start + res.End})
	} else {
		end := span.Start + len(res.Text)
		ctx.SetSelection(Span{Start: end, End: end})
	}
	return Success()
}

// runBlock triggers the LLM run for the source block under the
// cursor. The runner resets the block's output block synchronously;
// the model response arrives later through the mutation queue.
func (d *Dispatcher) runBlock(ctx EditorContext) Result {
	text := ctx.Text()
	trig, err := d.runner.RunBlock(text, ctx.Cursor(), d.ai())
	if err != nil {
		return Error(err)
	}
	ctx.ReplaceRange(Span{Start: 0, End: len(text)}, trig.Text)
	return Async(trig.RunID)
}

// showPrompt assembles the inline prompt context split around the
// selection and hands it to the host UI.
func (d *Dispatcher) showPrompt(ctx EditorContext) Result {
	text := ctx.Text()
	sel, span := ctx.Selection()
	pc := llm.PromptContext{
		Before:    text[:span.Start],
		Selection: sel,
		After:     text[span.End:],
	}
	if err := d.host.ShowPrompt(pc); err != nil {
		return Error(err)
	}
	return Success()
}
