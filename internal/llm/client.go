package llm

import "context"

// Client is the minimal surface the classifier needs from a text provider:
// prompt in, completion text out.
type Client interface {
	Ping(ctx context.Context) error
	Chat(ctx context.Context, prompt string) (string, error)
}
