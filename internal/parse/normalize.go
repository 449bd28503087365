package parse

import (
	"path/filepath"
	"strings"
)

// mediaExtensions lists file extensions stripped during normalization. Only
// known media/subtitle extensions are removed so dotted name segments like
// ".2022" or ".x264" survive into tokenization.
var mediaExtensions = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".avi":  {},
	".mov":  {},
	".wmv":  {},
	".m4v":  {},
	".webm": {},
	".mpg":  {},
	".mpeg": {},
	".srt":  {},
	".vtt":  {},
	".sub":  {},
	".ass":  {},
	".ssa":  {},
}

// separatorReplacer converts the common release-name separators to spaces.
var separatorReplacer = strings.NewReplacer(".", " ", "_", " ", "-", " ")

// Normalized carries both forms of a normalized filename: the lowercased
// matching form consumed by the signal extractors and the original-case
// display form kept for diagnostics.
type Normalized struct {
	Matching string
	Display  string
}

// Normalize strips the path and any known media extension from a raw
// filename, converts separators to spaces, and collapses repeated whitespace.
// Empty input yields an empty result, which downstream extractors treat as
// unparseable.
func Normalize(raw string) Normalized {
	base := filepath.Base(strings.TrimSpace(raw))
	if base == "." || base == string(filepath.Separator) {
		return Normalized{}
	}
	if _, ok := mediaExtensions[strings.ToLower(filepath.Ext(base))]; ok {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	display := strings.Join(strings.Fields(separatorReplacer.Replace(base)), " ")
	return Normalized{
		Matching: strings.ToLower(display),
		Display:  display,
	}
}
