package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"subtis/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale databases are rejected rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists index entries to SQLite. A file lock serializes concurrent
// processes writing the same database; within a process the Builder's
// per-slug locks already order writes.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// OpenStore initializes or connects to the index database.
func OpenStore(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	lock := flock.New(dbPath + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock index database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close releases the database connection and the file lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// SaveEntry writes one entry snapshot in a single transaction, replacing any
// prior state for its slug. This is the atomic per-slug upsert the index
// persistence contract requires.
func (s *Store) SaveEntry(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("save entry: nil entry")
	}
	slugKey := entry.Title.Slug
	if slugKey == "" {
		return &ValidationError{Record: "title", Field: "slug", Reason: "must not be empty"}
	}

	externalIDs, err := json.Marshal(orEmptyMap(entry.Title.ExternalIDs))
	if err != nil {
		return fmt.Errorf("marshal external ids: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO titles (slug, id, name, year, kind, external_ids)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(slug) DO UPDATE SET
             id = excluded.id,
             name = excluded.name,
             year = excluded.year,
             kind = excluded.kind,
             external_ids = excluded.external_ids`,
		slugKey, entry.Title.ID, entry.Title.Name, entry.Title.Year, string(entry.Title.Kind), string(externalIDs),
	); err != nil {
		return fmt.Errorf("upsert title: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM episodes WHERE slug = ?`, slugKey); err != nil {
		return fmt.Errorf("clear episodes: %w", err)
	}
	for _, ep := range entry.Episodes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO episodes (slug, season, episode) VALUES (?, ?, ?)`,
			slugKey, ep.Season, ep.Episode,
		); err != nil {
			return fmt.Errorf("insert episode s%02de%02d: %w", ep.Season, ep.Episode, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM subtitles WHERE slug = ?`, slugKey); err != nil {
		return fmt.Errorf("clear subtitles: %w", err)
	}
	for _, sub := range entry.Subtitles {
		tags, err := json.Marshal(orEmptySlice(sub.EncodingTags))
		if err != nil {
			return fmt.Errorf("marshal encoding tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subtitles (slug, id, season, episode, language, source, encoding_tags, origin_file, link)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			slugKey, sub.ID, sub.Season, sub.Episode, sub.Language, sub.Source, string(tags), sub.OriginFile, sub.Link,
		); err != nil {
			return fmt.Errorf("insert subtitle %s: %w", sub.OriginFile, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// LoadIndex rebuilds an in-memory index from the database.
func (s *Store) LoadIndex(ctx context.Context) (*Index, error) {
	idx := NewIndex()

	rows, err := s.db.QueryContext(ctx, `SELECT slug, id, name, year, kind, external_ids FROM titles`)
	if err != nil {
		return nil, fmt.Errorf("load titles: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]*Entry)
	for rows.Next() {
		var (
			title       Title
			externalIDs string
		)
		if err := rows.Scan(&title.Slug, &title.ID, &title.Name, &title.Year, (*string)(&title.Kind), &externalIDs); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		if externalIDs != "" && externalIDs != "{}" {
			if err := json.Unmarshal([]byte(externalIDs), &title.ExternalIDs); err != nil {
				return nil, fmt.Errorf("unmarshal external ids for %s: %w", title.Slug, err)
			}
		}
		entries[title.Slug] = &Entry{Title: title}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}

	epRows, err := s.db.QueryContext(ctx, `SELECT slug, season, episode FROM episodes ORDER BY slug, season, episode`)
	if err != nil {
		return nil, fmt.Errorf("load episodes: %w", err)
	}
	defer epRows.Close()
	for epRows.Next() {
		var (
			slugKey string
			ep      Episode
		)
		if err := epRows.Scan(&slugKey, &ep.Season, &ep.Episode); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		if entry, ok := entries[slugKey]; ok {
			ep.TitleID = entry.Title.ID
			entry.Episodes = append(entry.Episodes, ep)
		}
	}
	if err := epRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}

	subRows, err := s.db.QueryContext(ctx,
		`SELECT slug, id, season, episode, language, source, encoding_tags, origin_file, link
         FROM subtitles ORDER BY slug, season, episode, language, origin_file`)
	if err != nil {
		return nil, fmt.Errorf("load subtitles: %w", err)
	}
	defer subRows.Close()
	for subRows.Next() {
		var (
			slugKey string
			sub     Subtitle
			tags    string
		)
		if err := subRows.Scan(&slugKey, &sub.ID, &sub.Season, &sub.Episode, &sub.Language, &sub.Source, &tags, &sub.OriginFile, &sub.Link); err != nil {
			return nil, fmt.Errorf("scan subtitle: %w", err)
		}
		if tags != "" && tags != "[]" {
			if err := json.Unmarshal([]byte(tags), &sub.EncodingTags); err != nil {
				return nil, fmt.Errorf("unmarshal encoding tags: %w", err)
			}
		}
		if entry, ok := entries[slugKey]; ok {
			sub.TitleID = entry.Title.ID
			entry.Subtitles = append(entry.Subtitles, sub)
		}
	}
	if err := subRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtitles: %w", err)
	}

	for slugKey, entry := range entries {
		idx.replace(slugKey, entry)
	}
	return idx, nil
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
