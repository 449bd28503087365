package resolver

import (
	"fmt"
	"sort"
	"strings"

	"subtis/internal/catalog"
	"subtis/internal/parse"
	"subtis/internal/textutil"
)

// rank orders subtitle candidates for one resolution. Non-recordings come
// first and suppress any cinema recordings entirely; a recording is only
// returned when nothing better exists, and that condition is reported so
// callers can distinguish "best available is low quality" from "nothing
// found". Ties break on the lowest subtitle id for reproducible output.
func (r *Resolver) rank(subs []catalog.Subtitle, parsed parse.Filename) ([]Candidate, bool) {
	detector := r.parser.Detector()

	var clean, recordings []Candidate
	for _, sub := range subs {
		origin := parse.Normalize(sub.OriginFile).Matching
		entry := Candidate{
			Subtitle:        sub,
			CinemaRecording: detector.Detect(origin) || detector.Detect(strings.ToLower(sub.Source)),
		}
		entry.Score, entry.Reasons = scoreSubtitle(sub, origin, parsed.Residual)
		if entry.CinemaRecording {
			recordings = append(recordings, entry)
		} else {
			clean = append(clean, entry)
		}
	}

	ranked := clean
	lowQualityOnly := false
	if len(clean) == 0 {
		ranked = recordings
		lowQualityOnly = len(recordings) > 0
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Subtitle.ID < ranked[j].Subtitle.ID
	})
	return ranked, lowQualityOnly
}

// scoreSubtitle measures how well a subtitle's quality attributes line up
// with the residual tokens extracted from the filename.
func scoreSubtitle(sub catalog.Subtitle, origin string, residual []string) (float64, []string) {
	if len(residual) == 0 {
		return 0, nil
	}

	originTokens := make(map[string]struct{})
	for _, token := range textutil.Tokenize(origin) {
		originTokens[token] = struct{}{}
	}
	tagTokens := make(map[string]struct{}, len(sub.EncodingTags))
	for _, tag := range sub.EncodingTags {
		tagTokens[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}
	source := strings.ToLower(strings.TrimSpace(sub.Source))

	var (
		score   float64
		reasons []string
	)
	for _, token := range residual {
		switch {
		case token == source:
			score += 1.5
			reasons = append(reasons, fmt.Sprintf("source=%s", token))
		case contains(tagTokens, token):
			score += 1.0
			reasons = append(reasons, fmt.Sprintf("tag=%s", token))
		case contains(originTokens, token):
			score += 0.5
			reasons = append(reasons, fmt.Sprintf("token=%s", token))
		}
	}
	return score, reasons
}

func contains(set map[string]struct{}, token string) bool {
	_, ok := set[token]
	return ok
}
