package llm

// BuildSummaryJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// The parser validates replies against it to log drift; it never rejects a reply.
func BuildSummaryJSONSchema() map[string]any {
	list := func() map[string]any {
		return map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"summary":     map[string]any{"type": "string"},
			"decisions":   list(),
			"actionItems": list(),
			"risks":       list(),
		},
		"required": []string{"summary", "decisions", "actionItems", "risks"},
	}
}
