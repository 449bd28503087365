package catalog

import (
	"sort"
	"sync"
)

// Entry is the immutable snapshot of one indexed title: the title record,
// its episodes, and their subtitles. Entries are replaced wholesale on
// ingestion; callers must treat the contents as read-only.
type Entry struct {
	Title     Title
	Episodes  []Episode
	Subtitles []Subtitle
}

// HasEpisode reports whether the entry indexes the given (season, episode).
func (e *Entry) HasEpisode(season, episode int) bool {
	for _, ep := range e.Episodes {
		if ep.Season == season && ep.Episode == episode {
			return true
		}
	}
	return false
}

// EpisodeSubtitles returns the subtitles bound to one (season, episode) pair.
func (e *Entry) EpisodeSubtitles(season, episode int) []Subtitle {
	var out []Subtitle
	for _, sub := range e.Subtitles {
		if sub.Season == season && sub.Episode == episode {
			out = append(out, sub)
		}
	}
	return out
}

// TitleSubtitles returns the subtitles not bound to any episode.
func (e *Entry) TitleSubtitles() []Subtitle {
	var out []Subtitle
	for _, sub := range e.Subtitles {
		if !sub.ForEpisode() {
			out = append(out, sub)
		}
	}
	return out
}

// Index is the queryable slug-keyed store. It is constructed empty, populated
// through a Builder, and read concurrently without coordination: lookups
// return the entry snapshot current at call time.
type Index struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]*Entry)}
}

// Lookup returns the entry snapshot for a slug.
func (x *Index) Lookup(slug string) (*Entry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	entry, ok := x.entries[slug]
	return entry, ok
}

// Slugs returns all indexed slugs in sorted order for deterministic
// iteration.
func (x *Index) Slugs() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]string, 0, len(x.entries))
	for s := range x.entries {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of indexed titles.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// replace swaps in a new entry snapshot for a slug. The entry must not be
// mutated after the call.
func (x *Index) replace(slug string, entry *Entry) {
	x.mu.Lock()
	x.entries[slug] = entry
	x.mu.Unlock()
}
