package llm

import "context"

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// It intentionally hides concrete providers to preserve dependency direction.
type ChatModel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// JSONModel is for callers that need an already-parsed JSON reply: the
// provider retries its model chain until one of them returns valid JSON.
type JSONModel interface {
	AskJSON(ctx context.Context, systemPrompt, userPrompt string) (map[string]any, error)
}
