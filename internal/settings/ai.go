package settings

import "github.com/shelv/shelv/internal/kdl"

// DefaultModel is used when no ai block overrides the model.
const DefaultModel = "claude-sonnet-4-20250514"

// AIConfig is the resolved AI configuration after applying all ai
// block overrides in document order.
type AIConfig struct {
	Model        string
	SystemPrompt string
	Token        string

	// UseShelvSystemPrompt prepends the built-in system prompt before
	// any user-supplied one.
	UseShelvSystemPrompt bool
}

// DefaultAIConfig returns the configuration in effect with no ai
// blocks present.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Model:                DefaultModel,
		UseShelvSystemPrompt: true,
	}
}

// AIOverride holds one ai block's contents. Nil fields were not
// present in the block.
type AIOverride struct {
	Model                *string
	SystemPrompt         *string
	Token                *string
	UseShelvSystemPrompt *bool
}

// Apply returns a copy of c with the override's set fields applied.
func (c AIConfig) Apply(o *AIOverride) AIConfig {
	if o == nil {
		return c
	}
	if o.Model != nil {
		c.Model = *o.Model
	}
	if o.SystemPrompt != nil {
		c.SystemPrompt = *o.SystemPrompt
	}
	if o.Token != nil {
		c.Token = *o.Token
	}
	if o.UseShelvSystemPrompt != nil {
		c.UseShelvSystemPrompt = *o.UseShelvSystemPrompt
	}
	return c
}

// parseAI reads an `ai { ... }` node. Unknown children are ignored
// for forward compatibility.
func parseAI(n *kdl.Node) *AIOverride {
	o := &AIOverride{}
	for _, c := range n.Children {
		arg, _ := c.Arg(0)
		switch c.Name {
		case "model":
			if s, ok := arg.AsString(); ok {
				o.Model = &s
			}
		case "systemPrompt":
			if s, ok := arg.AsString(); ok {
				o.SystemPrompt = &s
			}
		case "token":
			if s, ok := arg.AsString(); ok {
				o.Token = &s
			}
		case "useShelvSystemPrompt":
			if b, ok := arg.AsBool(); ok {
				o.UseShelvSystemPrompt = &b
			}
		}
	}
	return o
}
