package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicProvider talks to the Anthropic Messages API.
type anthropicProvider struct {
	client anthropic.Client
}

func newAnthropicProvider(token string) *anthropicProvider {
	return &anthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(token)),
	}
}

func (p *anthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  anthropicMessages(req.Parts),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, content := range resp.Content {
		if content.Type == "text" {
			parts = append(parts, content.Text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("empty model response")
	}
	return strings.Join(parts, "\n"), nil
}

// anthropicMessages maps conversation parts onto user/assistant
// turns. Markdown context and questions are user turns; prior answers
// are assistant turns.
func anthropicMessages(parts []Part) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(parts))
	for _, part := range parts {
		block := anthropic.NewTextBlock(part.Text)
		if part.Kind == PartAnswer {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	return messages
}
