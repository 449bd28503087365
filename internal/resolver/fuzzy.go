package resolver

import (
	"strings"

	"subtis/internal/catalog"
	"subtis/internal/parse"
	"subtis/internal/textutil"
)

// fuzzyMatch scans all known slugs for the entry whose title is most similar
// to the parsed title fragment. Candidates below the similarity threshold
// are discarded; when the filename and entry both carry a year, the distance
// must stay within the configured tolerance. Ordering is deterministic:
// similarity, then year distance, then slug.
func (r *Resolver) fuzzyMatch(parsed parse.Filename) *catalog.Entry {
	want := textutil.NewFingerprint(parsed.Title)
	if want == nil {
		return nil
	}

	const unboundDist = 1 << 30
	var (
		best      *catalog.Entry
		bestScore float64
		bestDist  int
		bestSlug  string
	)
	for _, key := range r.idx.Slugs() {
		entry, ok := r.idx.Lookup(key)
		if !ok {
			continue
		}
		score := textutil.CosineSimilarity(want, entryFingerprint(entry))
		if score < r.fuzzyThreshold {
			continue
		}

		dist := unboundDist
		if parsed.Year > 0 && entry.Title.Year > 0 {
			dist = parsed.Year - entry.Title.Year
			if dist < 0 {
				dist = -dist
			}
			if dist > r.yearTolerance {
				continue
			}
		}

		switch {
		case best == nil,
			score > bestScore,
			score == bestScore && dist < bestDist,
			score == bestScore && dist == bestDist && key < bestSlug:
			best = entry
			bestScore = score
			bestDist = dist
			bestSlug = key
		}
	}
	return best
}

// entryFingerprint fingerprints the entry's display name, falling back to
// the slug itself for implicit titles awaiting completion.
func entryFingerprint(entry *catalog.Entry) *textutil.Fingerprint {
	name := entry.Title.Name
	if name == "" {
		name = strings.ReplaceAll(entry.Title.Slug, "-", " ")
	}
	return textutil.NewFingerprint(textutil.FoldASCII(name))
}
