package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/shelv/shelv/internal/settings"
)

// ErrNoToken means no API token is configured for the selected
// provider.
var ErrNoToken = errors.New("no API token configured")

// Provider is one model backend. Complete blocks until the model
// answers or ctx is done.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderFor selects the backend by model id prefix: OpenAI model
// families go to the OpenAI client, everything else to Anthropic.
func ProviderFor(cfg settings.AIConfig) (Provider, error) {
	if cfg.Token == "" {
		return nil, ErrNoToken
	}
	model := cfg.Model
	for _, prefix := range []string{"gpt", "o1", "o3", "o4", "chatgpt"} {
		if strings.HasPrefix(model, prefix) {
			return newOpenAIProvider(cfg.Token), nil
		}
	}
	return newAnthropicProvider(cfg.Token), nil
}
