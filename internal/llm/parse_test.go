package llm_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/joseph-ayodele/notes-summarizer/internal/common"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
	"github.com/joseph-ayodele/notes-summarizer/internal/llm"
	"github.com/stretchr/testify/require"
)

func TestParseSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want entity.JobResult
	}{
		{
			name: "well formed",
			raw:  `{"summary":"S","decisions":["D1"],"actionItems":["A1"],"risks":[]}`,
			want: entity.JobResult{Summary: "S", Decisions: []string{"D1"}, ActionItems: []string{"A1"}, Risks: []string{}},
		},
		{
			name: "plain text falls back",
			raw:  "plain text reply",
			want: entity.JobResult{Summary: "plain text reply", Decisions: []string{}, ActionItems: []string{}, Risks: []string{}},
		},
		{
			name: "non-string entries dropped",
			raw:  `{"summary":"S","decisions":["D1",42,"D2"]}`,
			want: entity.JobResult{Summary: "S", Decisions: []string{"D1", "D2"}, ActionItems: []string{}, Risks: []string{}},
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "\n  {\"summary\":\"S\"}  \n",
			want: entity.JobResult{Summary: "S", Decisions: []string{}, ActionItems: []string{}, Risks: []string{}},
		},
		{
			name: "wrong field types default",
			raw:  `{"summary":7,"decisions":"nope","actionItems":{"a":1},"risks":[null,true]}`,
			want: entity.JobResult{Summary: "", Decisions: []string{}, ActionItems: []string{}, Risks: []string{}},
		},
		{
			name: "top level array falls back",
			raw:  `["a","b"]`,
			want: entity.JobResult{Summary: `["a","b"]`, Decisions: []string{}, ActionItems: []string{}, Risks: []string{}},
		},
		{
			name: "json null falls back",
			raw:  "null",
			want: entity.JobResult{Summary: "null", Decisions: []string{}, ActionItems: []string{}, Risks: []string{}},
		},
		{
			name: "truncated object falls back verbatim",
			raw:  `  {"summary":"S","decisions":["D1"  `,
			want: entity.JobResult{Summary: `{"summary":"S","decisions":["D1"`, Decisions: []string{}, ActionItems: []string{}, Risks: []string{}},
		},
		{
			name: "empty reply",
			raw:  "   ",
			want: entity.JobResult{Summary: "", Decisions: []string{}, ActionItems: []string{}, Risks: []string{}},
		},
		{
			name: "extra keys ignored",
			raw:  `{"summary":"S","owner":"bob","risks":["R1"]}`,
			want: entity.JobResult{Summary: "S", Decisions: []string{}, ActionItems: []string{}, Risks: []string{"R1"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := llm.ParseSummary(t.Context(), tc.raw, nil)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseSummaryLogsCarryContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := common.NewLogger(&buf, "debug")
	ctx := common.WithRequestID(common.WithJobID(t.Context(), "job-42"), "req-7")

	got := llm.ParseSummary(ctx, "not json", logger)
	require.Equal(t, "not json", got.Summary)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	require.Equal(t, "llm.parse.fallback", rec["msg"])
	require.Equal(t, "job-42", rec["job_id"])
	require.Equal(t, "req-7", rec["request_id"])
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	t.Parallel()

	schema := llm.BuildSummaryJSONSchema()
	require.NoError(t, llm.ValidateJSONAgainstSchema(schema,
		[]byte(`{"summary":"S","decisions":[],"actionItems":["A"],"risks":[]}`)))

	err := llm.ValidateJSONAgainstSchema(schema, []byte(`{"summary":"S","decisions":[1]}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not match schema")

	require.Error(t, llm.ValidateJSONAgainstSchema(schema, []byte(`not json`)))
}

func TestPrompts(t *testing.T) {
	t.Parallel()

	sys := llm.BuildSystemPrompt()
	for _, field := range []string{`"summary"`, `"decisions"`, `"actionItems"`, `"risks"`} {
		require.Contains(t, sys, field)
	}

	user := llm.BuildUserPrompt("we shipped v2")
	require.Contains(t, user, "Input text:\nwe shipped v2\n")
	require.Contains(t, user, "<= 7 bullet points")
	require.Contains(t, user, "starting with a verb, include owner")
	require.Contains(t, user, "risks or unknowns (if none, return [])")
}
