package llm

import (
	"errors"
	"strings"

	"github.com/shelv/shelv/internal/note"
	"github.com/shelv/shelv/internal/settings"
)

// BlockLang is the fence language of AI source blocks.
const BlockLang = "llm"

// ErrNoBlock means the cursor is not inside an AI source block.
var ErrNoBlock = errors.New("cursor is not in an llm block")

// buildConversation assembles the conversation for the source block
// at sourceIdx: interleaved prose, earlier questions and their
// answers, up to and including the triggered block.
func buildConversation(text string, family []note.Block, sourceIdx int, cfg settings.AIConfig) Request {
	var parts []Part
	prevEnd := 0
	for _, b := range family[:sourceIdx+1] {
		if prose := strings.TrimSpace(text[prevEnd:b.Span.Start]); prose != "" {
			parts = append(parts, Part{Kind: PartMarkdown, Text: prose})
		}

		body := strings.TrimSpace(b.Body)
		if _, isOutput := b.OutputFor(BlockLang); isOutput {
			if body != "" {
				parts = append(parts, Part{Kind: PartAnswer, Text: body})
			}
		} else {
			parts = append(parts, Part{Kind: PartQuestion, Text: body})
		}
		prevEnd = b.Span.End
	}

	return Request{
		Model:        cfg.Model,
		SystemPrompt: combineSystem(cfg.SystemPrompt, cfg.UseShelvSystemPrompt),
		MaxTokens:    DefaultMaxTokens,
		Parts:        parts,
	}
}

// findSourceBlock locates the source block containing the cursor
// within the llm family.
func findSourceBlock(family []note.Block, cursor int) (int, bool) {
	for i, b := range family {
		if b.Lang != BlockLang {
			continue
		}
		if cursor >= b.Span.Start && cursor <= b.Span.End {
			return i, true
		}
	}
	return 0, false
}
