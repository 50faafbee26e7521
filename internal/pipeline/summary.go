package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
	"github.com/joseph-ayodele/notes-summarizer/internal/llm"
)

// GenerationError reports a failed call to the generation capability.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Summary turns cleaned note text into a JobResult with one generation call.
type Summary struct {
	logger    *slog.Logger
	completer llm.Completer
}

func NewSummary(completer llm.Completer, logger *slog.Logger) *Summary {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summary{logger: logger, completer: completer}
}

// Run sends the prompt pair once and parses the reply. Malformed replies
// degrade inside the parser; only a failed call returns a *GenerationError.
func (s *Summary) Run(ctx context.Context, cleanedText string) (entity.JobResult, error) {
	start := time.Now()
	s.logger.InfoContext(ctx, "pipeline.summary.start", "text_len", len(cleanedText))

	raw, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System: llm.BuildSystemPrompt(),
		User:   llm.BuildUserPrompt(cleanedText),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "pipeline.summary.generation_failed",
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.JobResult{}, &GenerationError{Err: err}
	}

	res := llm.ParseSummary(ctx, raw, s.logger)
	s.logger.InfoContext(ctx, "pipeline.summary.ok",
		"decisions", len(res.Decisions),
		"action_items", len(res.ActionItems),
		"risks", len(res.Risks),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
