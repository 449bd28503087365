// Package catalog holds the queryable subtitle index and its ingestion path.
//
// The Index maps slugs to immutable entry snapshots: a title, its episodes,
// and their subtitles. Readers look entries up without coordination; the
// Builder applies each ingestion as a single atomic unit by assembling the
// merged entry aside and swapping it in, so a concurrent reader never
// observes a partially applied title. Writes to different slugs proceed in
// parallel; writes to the same slug serialize on a per-slug lock.
//
// The Store persists entries to SQLite so an index survives process
// restarts. Persistence is a collaborator of the index, not its source of
// truth during resolution: resolution always reads the in-memory snapshot.
package catalog
