package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"subtis/internal/logging"
	"subtis/internal/progress"
	"subtis/internal/slug"
)

// TitleIngest is one ingestion unit: a title together with the episodes and
// subtitles known for it. Units are applied atomically; a concurrent reader
// sees either none or all of a unit.
type TitleIngest struct {
	Title     Title
	Episodes  []Episode
	Subtitles []Subtitle
}

// Builder ingests records into an Index. Upserts are idempotent: titles key
// on slug, episodes on (title, season, episode), subtitles on (owning record,
// language, origin file name). Concurrent upserts to the same slug serialize
// on a per-slug lock; different slugs do not contend.
type Builder struct {
	idx    *Index
	logger *slog.Logger

	mu        sync.Mutex
	slugLocks map[string]*sync.Mutex

	nextID atomic.Int64
}

// NewBuilder constructs a builder writing to idx.
func NewBuilder(idx *Index, logger *slog.Logger) *Builder {
	return &Builder{
		idx:       idx,
		logger:    logging.NewComponentLogger(logger, "catalog"),
		slugLocks: make(map[string]*sync.Mutex),
	}
}

func (b *Builder) slugLock(key string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.slugLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		b.slugLocks[key] = lock
	}
	return lock
}

func (b *Builder) assignID(current int64) int64 {
	if current != 0 {
		return current
	}
	return -b.nextID.Add(1)
}

// UpsertTitle ingests one unit. A unit whose slug already exists merges into
// the existing entry: external ids union, missing title fields complete, and
// episodes/subtitles dedupe against what is already indexed. Ingesting the
// identical unit twice leaves the index unchanged.
func (b *Builder) UpsertTitle(ctx context.Context, in TitleIngest) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := in.Title.Validate(); err != nil {
		return nil, err
	}
	if in.Title.Kind == KindMovie && len(in.Episodes) > 0 {
		return nil, &ValidationError{Record: "title", Field: "episodes", Reason: "movies cannot carry episodes"}
	}
	for _, ep := range in.Episodes {
		if err := ep.Validate(); err != nil {
			return nil, err
		}
	}
	for _, sub := range in.Subtitles {
		if err := sub.Validate(); err != nil {
			return nil, err
		}
		if sub.ForEpisode() && in.Title.Kind == KindMovie {
			return nil, &ValidationError{Record: "subtitle", Field: "episode", Reason: "movie subtitles cannot reference episodes"}
		}
	}

	key := in.Title.Slug
	if key == "" {
		key = slug.Make(in.Title.Name, in.Title.Year)
	}
	if key == "" {
		return nil, &ValidationError{Record: "title", Field: "slug", Reason: "name yields an empty slug"}
	}
	in.Title.Slug = key

	lock := b.slugLock(key)
	lock.Lock()
	defer lock.Unlock()

	existing, _ := b.idx.Lookup(key)
	entry := b.merge(existing, in)
	b.idx.replace(key, entry)

	b.logger.Debug("title upserted",
		logging.String(logging.FieldSlug, key),
		logging.Int("episodes", len(entry.Episodes)),
		logging.Int("subtitles", len(entry.Subtitles)))
	return entry, nil
}

// UpsertEpisode ingests an episode (and its subtitles) that arrived before
// its title. When the slug is unknown, a partial series title is created
// implicitly and completed by a later UpsertTitle for the same slug.
func (b *Builder) UpsertEpisode(ctx context.Context, slugKey string, ep Episode, subs []Subtitle) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if slugKey == "" {
		return nil, &ValidationError{Record: "episode", Field: "slug", Reason: "must not be empty"}
	}
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if err := sub.Validate(); err != nil {
			return nil, err
		}
	}

	lock := b.slugLock(slugKey)
	lock.Lock()
	defer lock.Unlock()

	existing, ok := b.idx.Lookup(slugKey)
	if ok && existing.Title.Kind == KindMovie {
		return nil, &ValidationError{Record: "episode", Field: "title", Reason: "cannot attach an episode to a movie"}
	}

	in := TitleIngest{Episodes: []Episode{ep}, Subtitles: subs}
	if ok {
		in.Title = existing.Title
	} else {
		// Implicit partial title; name and year arrive with a later upsert.
		in.Title = Title{Kind: KindSeries, Slug: slugKey}
	}

	entry := b.merge(existing, in)
	b.idx.replace(slugKey, entry)
	return entry, nil
}

// merge assembles the new entry snapshot aside, leaving existing untouched.
func (b *Builder) merge(existing *Entry, in TitleIngest) *Entry {
	merged := Entry{Title: in.Title}
	if existing != nil {
		merged.Title = existing.Title
		// An implicit partial title completes from the incoming record; a
		// complete title keeps its identity and merges external ids only.
		if merged.Title.Name == "" {
			merged.Title.Name = in.Title.Name
			merged.Title.Year = in.Title.Year
			merged.Title.Kind = in.Title.Kind
			if in.Title.ID != 0 {
				merged.Title.ID = in.Title.ID
			}
		}
	}
	merged.Title.ID = b.assignID(merged.Title.ID)
	if len(in.Title.ExternalIDs) > 0 {
		ids := make(map[string]string, len(merged.Title.ExternalIDs)+len(in.Title.ExternalIDs))
		for k, v := range merged.Title.ExternalIDs {
			ids[k] = v
		}
		for k, v := range in.Title.ExternalIDs {
			ids[k] = v
		}
		merged.Title.ExternalIDs = ids
	}

	episodeSeen := make(map[[2]int]struct{})
	if existing != nil {
		for _, ep := range existing.Episodes {
			ep.TitleID = merged.Title.ID
			merged.Episodes = append(merged.Episodes, ep)
			episodeSeen[[2]int{ep.Season, ep.Episode}] = struct{}{}
		}
	}
	for _, ep := range in.Episodes {
		key := [2]int{ep.Season, ep.Episode}
		if _, dup := episodeSeen[key]; dup {
			continue
		}
		episodeSeen[key] = struct{}{}
		ep.TitleID = merged.Title.ID
		merged.Episodes = append(merged.Episodes, ep)
	}
	subSeen := make(map[string]struct{})
	if existing != nil {
		for _, sub := range existing.Subtitles {
			sub.TitleID = merged.Title.ID
			merged.Subtitles = append(merged.Subtitles, sub)
			subSeen[sub.dedupeKey()] = struct{}{}
		}
	}
	for _, sub := range in.Subtitles {
		if _, dup := subSeen[sub.dedupeKey()]; dup {
			continue
		}
		subSeen[sub.dedupeKey()] = struct{}{}
		sub.TitleID = merged.Title.ID
		sub.ID = b.assignID(sub.ID)
		// An episode-bound subtitle implies its episode record.
		if sub.ForEpisode() {
			key := [2]int{sub.Season, sub.Episode}
			if _, ok := episodeSeen[key]; !ok {
				episodeSeen[key] = struct{}{}
				merged.Episodes = append(merged.Episodes, Episode{TitleID: merged.Title.ID, Season: sub.Season, Episode: sub.Episode})
			}
		}
		merged.Subtitles = append(merged.Subtitles, sub)
	}
	sort.Slice(merged.Subtitles, func(i, j int) bool {
		return merged.Subtitles[i].dedupeKey() < merged.Subtitles[j].dedupeKey()
	})
	sort.Slice(merged.Episodes, func(i, j int) bool {
		if merged.Episodes[i].Season != merged.Episodes[j].Season {
			return merged.Episodes[i].Season < merged.Episodes[j].Season
		}
		return merged.Episodes[i].Episode < merged.Episodes[j].Episode
	})

	return &merged
}

// IngestBatch applies a sequence of units as one indexing job, emitting one
// progress update per unit and a single terminal message. Reporting is
// fire-and-forget: a dropped message never affects index state. The job can
// be cancelled between units but never mid-unit.
func (b *Builder) IngestBatch(ctx context.Context, batch []TitleIngest, rep progress.Reporter) error {
	if rep == nil {
		rep = progress.Noop()
	}
	jobID := uuid.NewString()
	logger := b.logger.With(logging.String(logging.FieldJobID, jobID))
	logger.Info("indexing job started", logging.Int("units", len(batch)))

	for i, in := range batch {
		if err := ctx.Err(); err != nil {
			rep.Finish(progress.Done{OK: false})
			logger.Warn("indexing job cancelled", logging.Int("processed", i))
			return err
		}
		entry, err := b.UpsertTitle(ctx, in)
		if err != nil {
			rep.Finish(progress.Done{OK: false})
			logger.Error("indexing job failed", logging.Error(err), logging.Int("processed", i))
			return fmt.Errorf("ingest unit %d: %w", i, err)
		}
		rep.Progress(progress.Update{
			Total:   i + 1,
			Message: fmt.Sprintf("indexed %s", entry.Title.Slug),
		})
	}

	rep.Finish(progress.Done{OK: true})
	logger.Info("indexing job finished", logging.Int("units", len(batch)))
	return nil
}
