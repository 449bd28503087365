// Package slug derives the canonical index key for a title and year.
//
// Slugs are deterministic: the same (title, year) pair always produces the
// identical string, and two titles that normalize to the same slug
// intentionally collapse to one index entry. The key is URL-safe: lowercase
// alphanumerics separated by single hyphens with no leading or trailing
// hyphen.
package slug

import (
	"regexp"
	"strconv"
	"strings"

	"subtis/internal/textutil"
)

// nonAlphanumRuns matches the character runs replaced by a single hyphen.
var nonAlphanumRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Make returns the canonical key for a title and optional year. A year of 0
// produces a name-only slug. Diacritics are folded before slugification so
// "Amélie" and "Amelie" share a key.
func Make(title string, year int) string {
	s := strings.ToLower(textutil.FoldASCII(strings.TrimSpace(title)))
	if year > 0 {
		s += "-" + strconv.Itoa(year)
	}
	s = nonAlphanumRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
