package parse

import (
	"errors"
	"fmt"
)

// ErrUnparseable marks filenames whose normalization and title isolation
// yield no usable title fragment. Parsing is pure, so retrying the same input
// can never succeed; callers should surface this distinctly from a lookup
// miss.
var ErrUnparseable = errors.New("unparseable filename")

// Filename is the structured result of parsing a raw release filename. It is
// constructed fresh per resolution request and never persisted.
type Filename struct {
	// Raw is the input exactly as received.
	Raw string
	// Display is the normalized form with original casing, for diagnostics.
	Display string
	// Title is the lowercased best-guess title fragment.
	Title string
	// Year is the release year, 0 when absent.
	Year int
	// Season and Episode are both 0 when no s<NN>e<NN> token was found.
	Season  int
	Episode int
	// CinemaRecording reports whether the filename carries a low-quality
	// capture marker.
	CinemaRecording bool
	// Residual holds the leftover quality/source tokens used for relevance
	// scoring.
	Residual []string
}

// HasEpisode reports whether the filename carried a season/episode token.
func (f Filename) HasEpisode() bool {
	return f.Season > 0 && f.Episode > 0
}

// Options configures a Parser with vocabulary extensions.
type Options struct {
	// ExtraRecordingMarkers extends the cinema-recording vocabulary.
	ExtraRecordingMarkers []string
	// ExtraQualityTokens extends the quality/source token vocabulary.
	ExtraQualityTokens []string
}

// Parser extracts structured signals from raw release filenames. A Parser is
// immutable after construction and safe for concurrent use.
type Parser struct {
	detector *RecordingDetector
	isolator *TitleIsolator
}

// NewParser builds a parser over the default vocabularies plus the extensions
// in opts.
func NewParser(opts Options) *Parser {
	return &Parser{
		detector: NewRecordingDetector(opts.ExtraRecordingMarkers...),
		isolator: NewTitleIsolator(opts.ExtraQualityTokens...),
	}
}

// Detector exposes the parser's cinema-recording detector so candidate
// scoring can apply the same vocabulary to indexed origin filenames.
func (p *Parser) Detector() *RecordingDetector {
	return p.detector
}

// Isolator exposes the parser's title isolator, primarily so callers can
// inspect the active quality vocabulary.
func (p *Parser) Isolator() *TitleIsolator {
	return p.isolator
}

// Parse runs the full pipeline on a raw filename: normalization, then the
// independent signal extractors, then title isolation. The only error is
// ErrUnparseable for inputs with no recoverable title fragment.
func (p *Parser) Parse(raw string) (Filename, error) {
	normalized := Normalize(raw)
	if normalized.Matching == "" {
		return Filename{}, fmt.Errorf("%w: empty input", ErrUnparseable)
	}

	out := Filename{
		Raw:             raw,
		Display:         normalized.Display,
		CinemaRecording: p.detector.Detect(normalized.Matching),
	}

	head := normalized.Matching
	var tail string
	if loc := seasonEpisodePattern.FindStringIndex(normalized.Matching); loc != nil {
		if season, episode, ok := ExtractEpisode(normalized.Matching); ok {
			out.Season = season
			out.Episode = episode
			head = normalized.Matching[:loc[0]]
			tail = normalized.Matching[loc[1]:]
		}
	}

	title, year, residual := p.isolator.Isolate(head)
	if title == "" {
		return Filename{}, fmt.Errorf("%w: no title fragment in %q", ErrUnparseable, raw)
	}
	out.Title = title
	out.Year = year
	out.Residual = append(residual, p.isolator.ResidualTokens(tail)...)
	return out, nil
}
