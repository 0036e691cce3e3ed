package port

import "context"

type LLMClient interface {
	// CompleteWithSystem sends a system instruction and a user message to the
	// text-understanding service and returns the raw completion text
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
