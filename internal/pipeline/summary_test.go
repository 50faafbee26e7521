package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
	"github.com/joseph-ayodele/notes-summarizer/internal/llm"
	"github.com/joseph-ayodele/notes-summarizer/internal/pipeline"
	"github.com/stretchr/testify/require"
)

func TestSummaryRun(t *testing.T) {
	t.Parallel()

	var calls int
	var seen llm.CompletionRequest
	completer := llm.CompleterFunc(func(_ context.Context, req llm.CompletionRequest) (string, error) {
		calls++
		seen = req
		return `{"summary":"Team decided to ship v2 next week.","decisions":["Ship v2 next week"],"actionItems":["Alice to prepare the rollout plan"],"risks":["Vendor API may be deprecated"]}`, nil
	})

	text := "Meeting notes: we decided to ship v2 next week. Alice to prepare the rollout plan. Risk: vendor API may be deprecated."
	res, err := pipeline.NewSummary(completer, nil).Run(t.Context(), text)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, llm.BuildSystemPrompt(), seen.System)
	require.Contains(t, seen.User, text)
	require.Equal(t, entity.JobResult{
		Summary:     "Team decided to ship v2 next week.",
		Decisions:   []string{"Ship v2 next week"},
		ActionItems: []string{"Alice to prepare the rollout plan"},
		Risks:       []string{"Vendor API may be deprecated"},
	}, res)
}

func TestSummaryRunMalformedReplyDegrades(t *testing.T) {
	t.Parallel()

	completer := llm.CompleterFunc(func(context.Context, llm.CompletionRequest) (string, error) {
		return "plain text reply", nil
	})
	res, err := pipeline.NewSummary(completer, nil).Run(t.Context(), "notes")
	require.NoError(t, err)
	require.Equal(t, "plain text reply", res.Summary)
	require.Empty(t, res.Decisions)
}

func TestSummaryRunGenerationError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	completer := llm.CompleterFunc(func(context.Context, llm.CompletionRequest) (string, error) {
		return "", boom
	})
	_, err := pipeline.NewSummary(completer, nil).Run(t.Context(), "notes")
	require.Error(t, err)

	var genErr *pipeline.GenerationError
	require.ErrorAs(t, err, &genErr)
	require.ErrorIs(t, err, boom)
	require.Equal(t, "generation failed: connection refused", err.Error())
}
