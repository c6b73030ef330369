// Package llm assembles model requests from note content, talks to
// the configured provider, and tracks asynchronous block runs.
package llm

import "strings"

// DefaultMaxTokens bounds completion length for block runs.
const DefaultMaxTokens = 4096

// shelvSystemPrompt is prepended when useShelvSystemPrompt is on.
const shelvSystemPrompt = `You are the AI assistant inside Shelv, a small markdown notes app.
Answers are inserted into the user's note as markdown, so reply with
markdown only, no preamble and no closing remarks. Keep answers tight;
the user is mid-thought and the note is small.`

// inlinePromptExtra shapes inline prompt answers as a structured JSON
// object so the editor can splice the replacement precisely.
const inlinePromptExtra = `The user selected part of a note and typed an instruction.
Respond with a single JSON object, no code fence, with these keys:
"reasoning": short working notes, "selection_replacement": the text to
put where the selection is, "explanation": one sentence for the user.

Instruction: {{prompt}}

Text before the selection:
{{before}}

The selection:
{{selection}}

Text after the selection:
{{after}}`

// PartKind classifies one conversation element of a block run.
type PartKind uint8

const (
	// PartMarkdown is prose between blocks, sent as user context.
	PartMarkdown PartKind = iota

	// PartQuestion is a source block body, sent as the user turn.
	PartQuestion

	// PartAnswer is a previous output block body, sent as the
	// assistant turn.
	PartAnswer
)

// Part is one conversation element in document order.
type Part struct {
	Kind PartKind
	Text string
}

// Request is one fully assembled model request.
type Request struct {
	Model        string
	SystemPrompt string
	MaxTokens    int64
	Parts        []Part
}

// PromptContext is the note split around the current selection, the
// shape the inline prompt consumes.
type PromptContext struct {
	Before    string
	Selection string
	After     string
}

// BuildPromptRequest renders the inline prompt template over the
// context and instruction.
func BuildPromptRequest(pc PromptContext, instruction string, system string, useShelvPrompt bool, model string) Request {
	body := inlinePromptExtra
	for ph, val := range map[string]string{
		"{{prompt}}":    instruction,
		"{{before}}":    pc.Before,
		"{{selection}}": pc.Selection,
		"{{after}}":     pc.After,
	} {
		body = strings.ReplaceAll(body, ph, val)
	}

	return Request{
		Model:        model,
		SystemPrompt: combineSystem(system, useShelvPrompt),
		MaxTokens:    DefaultMaxTokens,
		Parts:        []Part{{Kind: PartQuestion, Text: body}},
	}
}

// combineSystem stacks the built-in system prompt before the user's.
func combineSystem(user string, useShelvPrompt bool) string {
	var parts []string
	if useShelvPrompt {
		parts = append(parts, shelvSystemPrompt)
	}
	if user != "" {
		parts = append(parts, user)
	}
	return strings.Join(parts, "\n\n")
}
