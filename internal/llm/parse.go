package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
)

var summarySchema = BuildSummaryJSONSchema()

// ParseSummary turns a raw generation reply into a JobResult. It never fails.
//
// A reply that decodes to a JSON object is read field by field: a non-string
// summary becomes "", and list fields keep only their string elements. Any
// other reply (malformed JSON, arrays, scalars) degrades to a result whose
// summary is the trimmed reply and whose lists are empty.
func ParseSummary(ctx context.Context, raw string, logger *slog.Logger) entity.JobResult {
	if logger == nil {
		logger = slog.Default()
	}
	trimmed := strings.TrimSpace(raw)

	var doc map[string]any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil || doc == nil {
		logger.WarnContext(ctx, "llm.parse.fallback", "bytes", len(trimmed), "error", err)
		return degraded(trimmed)
	}

	if err := ValidateJSONAgainstSchema(summarySchema, []byte(trimmed)); err != nil {
		logger.DebugContext(ctx, "llm.parse.schema_mismatch", "error", err)
	}

	summary, _ := doc["summary"].(string)
	return entity.JobResult{
		Summary:     summary,
		Decisions:   stringList(doc["decisions"]),
		ActionItems: stringList(doc["actionItems"]),
		Risks:       stringList(doc["risks"]),
	}
}

func degraded(text string) entity.JobResult {
	return entity.JobResult{
		Summary:     text,
		Decisions:   []string{},
		ActionItems: []string{},
		Risks:       []string{},
	}
}

func stringList(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
