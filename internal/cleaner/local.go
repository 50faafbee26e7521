package cleaner

import (
	"context"
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// UnknownLanguage is reported when no language can be detected.
const UnknownLanguage = "unknown"

var (
	reTrailingSpace = regexp.MustCompile(`[ \t]+\n`)
	reManyNewlines  = regexp.MustCompile(`\n{3,}`)
	reBlankLine     = regexp.MustCompile(`\n\s*\n`)
)

// Local normalizes text in-process with the same rules as the cleaner service.
type Local struct{}

func NewLocal() Local { return Local{} }

func (Local) Clean(_ context.Context, text string) (Result, error) {
	cleaned := BasicClean(text)
	return Result{
		CleanedText:      cleaned,
		Sections:         SplitSections(cleaned),
		DetectedLanguage: DetectLanguage(cleaned),
	}, nil
}

// BasicClean normalizes line endings, strips trailing blanks and collapses runs of empty lines.
func BasicClean(text string) string {
	t := strings.ReplaceAll(text, "\r\n", "\n")
	t = reTrailingSpace.ReplaceAllString(t, "\n")
	t = reManyNewlines.ReplaceAllString(t, "\n\n")
	return strings.TrimSpace(t)
}

// SplitSections splits on blank lines, dropping empty parts.
func SplitSections(text string) []string {
	out := []string{}
	for _, p := range reBlankLine.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DetectLanguage returns an ISO 639-1 code, or UnknownLanguage.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return UnknownLanguage
	}
	code := whatlanggo.Detect(text).Lang.Iso6391()
	if code == "" {
		return UnknownLanguage
	}
	return code
}
