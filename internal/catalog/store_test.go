package catalog

import (
	"context"
	"testing"

	"subtis/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = ""

	store, err := OpenStore(&cfg)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	idx := NewIndex()
	builder := NewBuilder(idx, nil)
	for _, in := range []TitleIngest{movieIngest(), seriesIngest()} {
		entry, err := builder.UpsertTitle(ctx, in)
		if err != nil {
			t.Fatal(err)
		}
		if err := store.SaveEntry(ctx, entry); err != nil {
			t.Fatalf("SaveEntry: %v", err)
		}
	}

	loaded, err := store.LoadIndex(ctx)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded %d entries, want 2", loaded.Len())
	}

	dune, ok := loaded.Lookup("dune-2021")
	if !ok {
		t.Fatal("dune-2021 missing after reload")
	}
	if dune.Title.Name != "Dune" || dune.Title.Year != 2021 || dune.Title.Kind != KindMovie {
		t.Errorf("title mangled: %+v", dune.Title)
	}
	if dune.Title.ExternalIDs["tmdb"] != "438631" {
		t.Errorf("external ids mangled: %v", dune.Title.ExternalIDs)
	}
	if len(dune.Subtitles) != 2 {
		t.Errorf("subtitles mangled: %v", dune.Subtitles)
	}

	shogun, ok := loaded.Lookup("shogun")
	if !ok {
		t.Fatal("shogun missing after reload")
	}
	if !shogun.HasEpisode(1, 3) {
		t.Errorf("episodes mangled: %+v", shogun.Episodes)
	}
	if got := shogun.EpisodeSubtitles(1, 3); len(got) != 1 || got[0].OriginFile != "Shogun.S01E03.HDTV.x264.srt" {
		t.Errorf("episode subtitles mangled: %v", got)
	}
}

func TestStoreSaveEntryReplacesSlugState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	idx := NewIndex()
	builder := NewBuilder(idx, nil)
	entry, err := builder.UpsertTitle(ctx, movieIngest())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveEntry(ctx, entry); err != nil {
		t.Fatal(err)
	}

	// Shrink the entry; a save must replace, not accumulate.
	smaller := *entry
	smaller.Subtitles = entry.Subtitles[:1]
	if err := store.SaveEntry(ctx, &smaller); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	dune, _ := loaded.Lookup("dune-2021")
	if len(dune.Subtitles) != 1 {
		t.Errorf("stale subtitle rows survive: %d", len(dune.Subtitles))
	}
}

func TestStoreSaveEntryIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	builder := NewBuilder(NewIndex(), nil)
	entry, err := builder.UpsertTitle(ctx, movieIngest())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := store.SaveEntry(ctx, entry); err != nil {
			t.Fatal(err)
		}
	}

	loaded, err := store.LoadIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	dune, _ := loaded.Lookup("dune-2021")
	if len(dune.Subtitles) != 2 {
		t.Errorf("duplicate rows after re-save: %d", len(dune.Subtitles))
	}
}

func TestStoreRejectsEntryWithoutSlug(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveEntry(context.Background(), &Entry{Title: Title{Name: "x", Kind: KindMovie}}); err == nil {
		t.Fatal("expected error for empty slug")
	}
}
