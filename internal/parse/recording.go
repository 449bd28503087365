package parse

import (
	"regexp"
	"sort"
	"strings"
)

// defaultRecordingVocabulary lists the markers that identify in-theater or
// otherwise low-fidelity captures. Each entry matches as a whole word against
// the normalized filename. The list is deliberately restricted to
// quality-indicating terms; deployments can extend it through configuration.
var defaultRecordingVocabulary = []string{
	"cam",
	"camrip",
	"hdcam",
	"hq cam",
	"hqcam",
	"ts",
	"hdts",
	"telesync",
	"tc",
	"telecine",
	"scr",
	"screener",
	"dvdscr",
}

type recordingRule struct {
	marker  string
	pattern *regexp.Regexp
}

// RecordingDetector reports whether a normalized filename carries a
// cinema-recording marker. Rules are compiled once at construction and
// evaluated by a single loop, so the vocabulary can grow without touching
// control flow.
type RecordingDetector struct {
	rules []recordingRule
}

// NewRecordingDetector builds a detector over the default vocabulary plus any
// extra markers. Markers are matched case-insensitively at word boundaries;
// duplicates and blanks are ignored.
func NewRecordingDetector(extra ...string) *RecordingDetector {
	seen := make(map[string]struct{}, len(defaultRecordingVocabulary)+len(extra))
	markers := make([]string, 0, len(defaultRecordingVocabulary)+len(extra))
	for _, marker := range append(append([]string{}, defaultRecordingVocabulary...), extra...) {
		marker = strings.ToLower(strings.TrimSpace(marker))
		if marker == "" {
			continue
		}
		if _, dup := seen[marker]; dup {
			continue
		}
		seen[marker] = struct{}{}
		markers = append(markers, marker)
	}
	sort.Strings(markers)

	rules := make([]recordingRule, 0, len(markers))
	for _, marker := range markers {
		rules = append(rules, recordingRule{
			marker:  marker,
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(marker) + `\b`),
		})
	}
	return &RecordingDetector{rules: rules}
}

// Detect reports whether the normalized filename contains any recording
// marker. Word boundaries are enforced: "cam" matches the standalone token but
// not the substring inside "camera".
func (d *RecordingDetector) Detect(normalized string) bool {
	if d == nil || normalized == "" {
		return false
	}
	for _, rule := range d.rules {
		if rule.pattern.MatchString(normalized) {
			return true
		}
	}
	return false
}

// Vocabulary returns the active marker list in sorted order.
func (d *RecordingDetector) Vocabulary() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.rules))
	for _, rule := range d.rules {
		out = append(out, rule.marker)
	}
	return out
}
