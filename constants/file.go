package constants

import "strings"

// NoteExtensions holds the file extensions the inbox picks up as notes.
var NoteExtensions = map[string]struct{}{
	"txt": {},
	"md":  {},
}

// SummarySuffix is appended to a note's base name for the written result.
const SummarySuffix = ".summary.json"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
