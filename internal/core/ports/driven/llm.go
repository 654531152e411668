package driven

import "context"

// ChatMessage is a single message in a chat conversation.
type ChatMessage struct {
	// Role is "system", "user" or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions controls chat completion generation.
type ChatOptions struct {
	// Temperature controls sampling randomness (0.0 to 2.0).
	Temperature float64

	// MaxTokens limits the response length. Zero means provider default.
	MaxTokens int
}

// LLMService produces chat completions from a hosted model.
type LLMService interface {
	// Chat sends the message list and returns the model's response
	// text. No retry on failure; the error propagates to the caller.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
}
