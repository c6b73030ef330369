package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openaiProvider talks to the OpenAI chat completions API.
type openaiProvider struct {
	client openai.Client
}

func newOpenAIProvider(token string) *openaiProvider {
	return &openaiProvider{
		client: openai.NewClient(option.WithAPIKey(token)),
	}
}

func (p *openaiProvider) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Parts)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, part := range req.Parts {
		if part.Kind == PartAnswer {
			messages = append(messages, openai.AssistantMessage(part.Text))
		} else {
			messages = append(messages, openai.UserMessage(part.Text))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty model response")
	}
	return resp.Choices[0].Message.Content, nil
}
