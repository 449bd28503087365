package resolver

import (
	"errors"

	"subtis/internal/catalog"
	"subtis/internal/parse"
)

// ErrNotFound marks resolutions where the filename was understood but
// nothing matched: no slug cleared the similarity threshold, or the series
// matched while the requested episode is not indexed. Distinct from
// parse.ErrUnparseable, which means the filename itself was not understood.
var ErrNotFound = errors.New("no matching subtitle")

// Candidate pairs a subtitle with the relevance computed for one resolution.
// The score lives here, never on the stored record.
type Candidate struct {
	Subtitle        catalog.Subtitle
	Score           float64
	CinemaRecording bool
	Reasons         []string
}

// Result is a successful resolution: a non-empty ranked candidate list for
// one title (and episode when the filename carried one).
type Result struct {
	Input parse.Filename
	Title catalog.Title
	// Candidates are ranked best-first; ordering is deterministic for
	// identical inputs.
	Candidates []Candidate
	// LowQualityOnly warns that every candidate is a cinema recording.
	// The result is still a success; the caller decides whether to accept.
	LowQualityOnly bool
}

// Best returns the top-ranked candidate.
func (r *Result) Best() Candidate {
	return r.Candidates[0]
}
