// Package llm provides completion clients for the providers recall supports.
//
// A Client turns a prompt into a text completion. The engine uses it for
// four distinct prompts: fact extraction, duplicate adjudication, image
// summarization, and query rewriting. Image summarization goes through the
// image-bearing variant; everything else is plain text.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrProvider wraps completion service failures.
	ErrProvider = errors.New("completion provider error")

	// ErrEmptyPrompt indicates an empty prompt was supplied.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("empty response from completion provider")
)

// Image is decoded-but-opaque image content ready for a provider call.
type Image struct {
	// MediaType is the MIME type, e.g. "image/png".
	MediaType string

	// Data is the raw image bytes.
	Data []byte
}

// Client is a completion provider.
//
// Implementations do not retry; provider errors propagate to the caller,
// which decides whether the call site downgrades (image summaries, query
// rewriting) or fails hard (extraction, adjudication).
type Client interface {
	// Complete returns the completion for a text-only prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithImage returns the completion for a prompt about an image.
	CompleteWithImage(ctx context.Context, prompt string, img Image) (string, error)
}
