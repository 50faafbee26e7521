package cleaner

import "context"

// Result is the normalized form of a note.
type Result struct {
	CleanedText      string   `json:"cleaned_text"`
	Sections         []string `json:"sections"`
	DetectedLanguage string   `json:"detected_language"`
}

// Cleaner is the text-normalization capability. Fields the capability does not
// report are left zero so the caller can apply its own fallbacks.
type Cleaner interface {
	Clean(ctx context.Context, text string) (Result, error)
}
