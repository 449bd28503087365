package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord marks records rejected by validation. Use errors.Is to
// classify; the concrete *ValidationError carries the offending field.
var ErrInvalidRecord = errors.New("invalid record")

// ValidationError describes why a record was rejected at construction time.
// Malformed external input is an expected condition and is always reported as
// a value, never a panic.
type ValidationError struct {
	Record string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Record, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRecord
}

// Kind distinguishes movie titles from series titles.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Title is one indexed movie or series. Immutable once ingested;
// re-ingestion with the same (name, year) updates external ids only.
type Title struct {
	ID          int64
	Name        string
	Year        int
	Kind        Kind
	Slug        string
	ExternalIDs map[string]string
}

// Validate checks the title's structural invariants.
func (t Title) Validate() error {
	if t.Name == "" {
		return &ValidationError{Record: "title", Field: "name", Reason: "must not be empty"}
	}
	if t.Kind != KindMovie && t.Kind != KindSeries {
		return &ValidationError{Record: "title", Field: "kind", Reason: fmt.Sprintf("must be movie or series, got %q", t.Kind)}
	}
	if t.Year < 0 {
		return &ValidationError{Record: "title", Field: "year", Reason: "must not be negative"}
	}
	return nil
}

// Episode belongs to exactly one series title. Movies never carry episodes.
type Episode struct {
	TitleID int64
	Season  int
	Episode int
}

// Validate checks the episode's structural invariants.
func (e Episode) Validate() error {
	if e.Season <= 0 {
		return &ValidationError{Record: "episode", Field: "season", Reason: "must be positive"}
	}
	if e.Episode <= 0 {
		return &ValidationError{Record: "episode", Field: "episode", Reason: "must be positive"}
	}
	return nil
}

// Subtitle is one retrievable subtitle track. Season/Episode are both zero
// for movie and series-level subtitles. The relevance score is computed at
// resolution time and never stored here.
type Subtitle struct {
	ID           int64
	TitleID      int64
	Season       int
	Episode      int
	Language     string
	Source       string
	EncodingTags []string
	OriginFile   string
	Link         string
}

// Validate checks the subtitle's structural invariants.
func (s Subtitle) Validate() error {
	if s.Language == "" {
		return &ValidationError{Record: "subtitle", Field: "language", Reason: "must not be empty"}
	}
	if s.OriginFile == "" {
		return &ValidationError{Record: "subtitle", Field: "origin_file", Reason: "must not be empty"}
	}
	if (s.Season > 0) != (s.Episode > 0) {
		return &ValidationError{Record: "subtitle", Field: "episode", Reason: "season and episode must be set together"}
	}
	return nil
}

// ForEpisode reports whether the subtitle is bound to a specific episode.
func (s Subtitle) ForEpisode() bool {
	return s.Season > 0 && s.Episode > 0
}

// dedupeKey identifies a subtitle within its owning entry: owning record,
// language, and origin file name.
func (s Subtitle) dedupeKey() string {
	return fmt.Sprintf("%d/%d/%s/%s", s.Season, s.Episode, s.Language, s.OriginFile)
}
