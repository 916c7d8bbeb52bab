package ai

import "context"

// Provider is the pluggable text-generation backend used by the question,
// scoring, and insights pipelines. Implementations must be safe for
// concurrent use.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

func (f ProviderFunc) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}
