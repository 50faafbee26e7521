package llm

import "strings"

const systemPrompt = `You are an assistant that extracts structured meeting outcomes.
Always return strict JSON in this schema:
{
  "summary": "string",
  "decisions": ["string", "..."],
  "actionItems": ["string", "..."],
  "risks": ["string", "..."]
}`

// BuildSystemPrompt returns the fixed instruction describing the four-field output contract.
func BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt embeds the cleaned notes followed by the four extraction directives.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Input text:\n")
	b.WriteString(text)
	b.WriteString("\n\nTask:\n")
	b.WriteString("1) Provide a concise summary (<= 7 bullet points).\n")
	b.WriteString("2) Extract clear decisions (if none, return []).\n")
	b.WriteString("3) Extract actionable action items starting with a verb, include owner if present.\n")
	b.WriteString("4) Extract risks or unknowns (if none, return []).\n")
	return b.String()
}
