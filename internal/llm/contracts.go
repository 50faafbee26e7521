package llm

import "context"

// CompletionRequest is one system/user prompt pair sent to the generation capability.
type CompletionRequest struct {
	System string
	User   string
}

// Completer is the generation capability the summary pipeline depends on.
// Implementations send exactly one request and return the raw text of the reply.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
