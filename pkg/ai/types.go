package ai

import (
	"context"
	"errors"
)

// ErrEmptyCompletion indicates the model answered without usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// CompletionRequest is a single system+user exchange sent to a model.
type CompletionRequest struct {
	SystemPrompt string
	Prompt       string
}

// Completer returns the free-text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, request CompletionRequest) (string, error)
}
