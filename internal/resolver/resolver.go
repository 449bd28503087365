package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"subtis/internal/catalog"
	"subtis/internal/config"
	"subtis/internal/logging"
	"subtis/internal/parse"
	"subtis/internal/slug"
)

// Options configures resolution thresholds.
type Options struct {
	// FuzzyThreshold is the minimum cosine similarity for a fuzzy slug
	// match. Zero selects the default.
	FuzzyThreshold float64
	// YearTolerance bounds the year distance accepted during fuzzy
	// matching when both the filename and the entry carry a year.
	YearTolerance int
}

const defaultFuzzyThreshold = 0.55

// Resolver resolves parsed filenames against an index. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	idx            *catalog.Index
	parser         *parse.Parser
	fuzzyThreshold float64
	yearTolerance  int
	logger         *slog.Logger
}

// New constructs a resolver reading from idx, using parser's vocabularies
// for both input parsing and candidate scoring.
func New(idx *catalog.Index, parser *parse.Parser, opts Options, logger *slog.Logger) *Resolver {
	threshold := opts.FuzzyThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaultFuzzyThreshold
	}
	yearTolerance := opts.YearTolerance
	if yearTolerance < 0 {
		yearTolerance = 0
	}
	return &Resolver{
		idx:            idx,
		parser:         parser,
		fuzzyThreshold: threshold,
		yearTolerance:  yearTolerance,
		logger:         logging.NewComponentLogger(logger, "resolver"),
	}
}

// NewFromConfig builds the parser from the configured vocabularies and wires
// the configured matcher thresholds.
func NewFromConfig(idx *catalog.Index, cfg *config.Config, logger *slog.Logger) *Resolver {
	parser := parse.NewParser(parse.Options{
		ExtraRecordingMarkers: cfg.Vocabulary.RecordingMarkers,
		ExtraQualityTokens:    cfg.Vocabulary.QualityTokens,
	})
	return New(idx, parser, Options{
		FuzzyThreshold: cfg.Matcher.FuzzyThreshold,
		YearTolerance:  cfg.Matcher.YearTolerance,
	}, logger)
}

// Parser returns the parser shared with candidate scoring, so callers can
// inspect the active vocabularies.
func (r *Resolver) Parser() *parse.Parser {
	return r.parser
}

// Resolve parses a raw filename and resolves it. Parse failures carry
// parse.ErrUnparseable; structural misses carry ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Result, error) {
	parsed, err := r.parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	return r.ResolveParsed(ctx, parsed)
}

// ResolveParsed resolves an already parsed filename: slug lookup with a
// bounded fuzzy fallback, episode restriction, then deterministic ranking.
func (r *Resolver) ResolveParsed(ctx context.Context, parsed parse.Filename) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if parsed.Title == "" {
		return nil, fmt.Errorf("%w: empty title fragment", parse.ErrUnparseable)
	}

	entry, how := r.lookupEntry(parsed)
	if entry == nil {
		return nil, fmt.Errorf("%w: no index entry for %q", ErrNotFound, parsed.Title)
	}
	r.logger.Debug("title resolved",
		logging.String(logging.FieldSlug, entry.Title.Slug),
		logging.String("match", how))

	var subs []catalog.Subtitle
	if parsed.HasEpisode() {
		if !entry.HasEpisode(parsed.Season, parsed.Episode) {
			// The series exists but that episode is not indexed.
			return nil, fmt.Errorf("%w: %s has no episode s%02de%02d",
				ErrNotFound, entry.Title.Slug, parsed.Season, parsed.Episode)
		}
		subs = entry.EpisodeSubtitles(parsed.Season, parsed.Episode)
	} else {
		subs = entry.TitleSubtitles()
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: no subtitles indexed for %s", ErrNotFound, entry.Title.Slug)
	}

	candidates, lowQualityOnly := r.rank(subs, parsed)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no subtitles indexed for %s", ErrNotFound, entry.Title.Slug)
	}

	return &Result{
		Input:          parsed,
		Title:          entry.Title,
		Candidates:     candidates,
		LowQualityOnly: lowQualityOnly,
	}, nil
}

// lookupEntry tries the exact slug forms first, then falls back to fuzzy
// matching against all known slugs.
func (r *Resolver) lookupEntry(parsed parse.Filename) (*catalog.Entry, string) {
	if parsed.Year > 0 {
		if entry, ok := r.idx.Lookup(slug.Make(parsed.Title, parsed.Year)); ok {
			return entry, "exact"
		}
	}
	if entry, ok := r.idx.Lookup(slug.Make(parsed.Title, 0)); ok {
		return entry, "exact-name"
	}
	if entry := r.fuzzyMatch(parsed); entry != nil {
		return entry, "fuzzy"
	}
	return nil, ""
}
