// Package extraction turns conversation batches into atomic memory
// candidates.
//
// The extractor builds a plain-text transcript from the non-system
// messages, replaces images with model-generated summaries, and asks a
// completion provider for a JSON array of facts worth remembering. A
// response that does not parse yields zero candidates rather than an
// error; a provider failure on the extraction call itself propagates.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/internal/llm"
	"github.com/fyrsmithlabs/recall/pkg/conversation"
)

var tracer = otel.Tracer("recall.extraction")

// Extractor extracts memory candidates from conversations.
type Extractor struct {
	client llm.Client
	logger *zap.Logger
}

// New creates an extractor on top of a completion client.
func New(client llm.Client, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{client: client, logger: logger}
}

// Extract returns the atomic facts worth remembering from a batch of
// messages. System messages are ignored. When the batch carries no
// extractable content the provider is not called at all.
func (e *Extractor) Extract(ctx context.Context, messages []conversation.Message) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Extractor.Extract")
	defer span.End()
	span.SetAttributes(attribute.Int("messages", len(messages)))

	transcript := e.buildTranscript(ctx, messages)
	if transcript == "" {
		return nil, nil
	}

	response, err := e.client.Complete(ctx, llm.ExtractionPrompt(transcript))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("extracting memories: %w", err)
	}

	candidates := parseCandidates(response)
	if candidates == nil {
		e.logger.Warn("extraction response did not parse as a JSON array",
			zap.Int("response_len", len(response)),
		)
		return nil, nil
	}

	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	return candidates, nil
}

// buildTranscript renders the non-system messages as "Role: content"
// lines. Images are summarized through the vision path; an image that
// cannot be resolved or summarized is skipped with a log line so one bad
// attachment does not sink the batch.
func (e *Extractor) buildTranscript(ctx context.Context, messages []conversation.Message) string {
	var lines []string
	for _, msg := range messages {
		if msg.IsSystem() {
			continue
		}

		parts := make([]string, 0, len(msg.Parts))
		if text := msg.Text(); text != "" {
			parts = append(parts, text)
		}
		for _, ref := range msg.Images() {
			summary, err := e.summarizeImage(ctx, ref)
			if err != nil {
				e.logger.Warn("skipping image in transcript",
					zap.String("role", string(msg.Role)),
					zap.Error(err),
				)
				continue
			}
			parts = append(parts, fmt.Sprintf("[Image: %s]", summary))
		}
		if len(parts) == 0 {
			continue
		}

		lines = append(lines, fmt.Sprintf("%s: %s", titleRole(msg.Role), strings.Join(parts, " ")))
	}
	return strings.Join(lines, "\n")
}

func (e *Extractor) summarizeImage(ctx context.Context, ref conversation.ImageRef) (string, error) {
	img, err := llm.ResolveImage(ctx, ref)
	if err != nil {
		return "", err
	}
	summary, err := e.client.CompleteWithImage(ctx, llm.ImageSummaryPrompt, img)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

func titleRole(role conversation.Role) string {
	s := string(role)
	if s == "" {
		return "User"
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// parseCandidates pulls the first JSON array out of the response. Models
// occasionally wrap the array in prose or code fences, so everything
// outside the outermost brackets is discarded. Returns nil when no valid
// array of strings is present.
func parseCandidates(response string) []string {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end < start {
		return nil
	}

	var raw []string
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return nil
	}

	candidates := make([]string, 0, len(raw))
	for _, c := range raw {
		if c = strings.TrimSpace(c); c != "" {
			candidates = append(candidates, c)
		}
	}
	return candidates
}
