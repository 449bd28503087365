package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"subtis/internal/progress"
)

func movieIngest() TitleIngest {
	return TitleIngest{
		Title: Title{
			ID:          101,
			Name:        "Dune",
			Year:        2021,
			Kind:        KindMovie,
			ExternalIDs: map[string]string{"tmdb": "438631"},
		},
		Subtitles: []Subtitle{
			{ID: 1, Language: "es", Source: "bluray", OriginFile: "Dune.2021.1080p.BluRay.x264.srt", Link: "https://example.test/dune-1"},
			{ID: 2, Language: "es", Source: "web", OriginFile: "Dune.2021.WEB-DL.srt", Link: "https://example.test/dune-2"},
		},
	}
}

func seriesIngest() TitleIngest {
	return TitleIngest{
		Title: Title{ID: 300, Name: "Shogun", Year: 0, Kind: KindSeries, Slug: "shogun"},
		Episodes: []Episode{
			{Season: 1, Episode: 1},
			{Season: 1, Episode: 3},
		},
		Subtitles: []Subtitle{
			{ID: 31, Season: 1, Episode: 3, Language: "es", Source: "hdtv", OriginFile: "Shogun.S01E03.HDTV.x264.srt"},
		},
	}
}

func TestUpsertTitleComputesSlug(t *testing.T) {
	idx := NewIndex()
	builder := NewBuilder(idx, nil)

	entry, err := builder.UpsertTitle(context.Background(), movieIngest())
	if err != nil {
		t.Fatalf("UpsertTitle: %v", err)
	}
	if entry.Title.Slug != "dune-2021" {
		t.Errorf("Slug = %q, want %q", entry.Title.Slug, "dune-2021")
	}
	if _, ok := idx.Lookup("dune-2021"); !ok {
		t.Fatal("entry not visible in index")
	}
}

func TestUpsertTitleIdempotent(t *testing.T) {
	idx := NewIndex()
	builder := NewBuilder(idx, nil)
	ctx := context.Background()

	if _, err := builder.UpsertTitle(ctx, movieIngest()); err != nil {
		t.Fatal(err)
	}
	entry, err := builder.UpsertTitle(ctx, movieIngest())
	if err != nil {
		t.Fatal(err)
	}
	if len(entry.Subtitles) != 2 {
		t.Errorf("expected 2 subtitles after double ingest, got %d", len(entry.Subtitles))
	}
}

func TestUpsertTitleMergesExternalIDsOnly(t *testing.T) {
	idx := NewIndex()
	builder := NewBuilder(idx, nil)
	ctx := context.Background()

	if _, err := builder.UpsertTitle(ctx, movieIngest()); err != nil {
		t.Fatal(err)
	}

	// Second pipeline reports the same (name, year) under a different id.
	second := movieIngest()
	second.Title.ID = 999
	second.Title.ExternalIDs = map[string]string{"imdb": "tt1160419"}
	second.Subtitles = nil

	entry, err := builder.UpsertTitle(ctx, second)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Title.ID != 101 {
		t.Errorf("title identity changed: id = %d", entry.Title.ID)
	}
	if entry.Title.ExternalIDs["tmdb"] != "438631" || entry.Title.ExternalIDs["imdb"] != "tt1160419" {
		t.Errorf("external ids not merged: %v", entry.Title.ExternalIDs)
	}
	if len(entry.Subtitles) != 2 {
		t.Errorf("subtitles lost during merge: %d", len(entry.Subtitles))
	}
}

func TestUpsertTitleRejectsMovieEpisodes(t *testing.T) {
	builder := NewBuilder(NewIndex(), nil)
	in := movieIngest()
	in.Episodes = []Episode{{Season: 1, Episode: 1}}

	_, err := builder.UpsertTitle(context.Background(), in)
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestUpsertEpisodeBeforeTitle(t *testing.T) {
	idx := NewIndex()
	builder := NewBuilder(idx, nil)
	ctx := context.Background()

	sub := Subtitle{Season: 2, Episode: 1, Language: "es", Source: "web", OriginFile: "Shogun.S02E01.WEB.srt"}
	if _, err := builder.UpsertEpisode(ctx, "shogun", Episode{Season: 2, Episode: 1}, []Subtitle{sub}); err != nil {
		t.Fatalf("UpsertEpisode: %v", err)
	}

	entry, ok := idx.Lookup("shogun")
	if !ok {
		t.Fatal("implicit title not created")
	}
	if entry.Title.Kind != KindSeries || entry.Title.Name != "" {
		t.Fatalf("unexpected implicit title: %+v", entry.Title)
	}

	// The full title record arrives later and completes the entry.
	if _, err := builder.UpsertTitle(ctx, seriesIngest()); err != nil {
		t.Fatal(err)
	}
	entry, _ = idx.Lookup("shogun")
	if entry.Title.Name != "Shogun" || entry.Title.ID != 300 {
		t.Errorf("title not completed: %+v", entry.Title)
	}
	if !entry.HasEpisode(2, 1) || !entry.HasEpisode(1, 3) {
		t.Errorf("episodes not converged: %+v", entry.Episodes)
	}
	if got := entry.EpisodeSubtitles(2, 1); len(got) != 1 {
		t.Errorf("buffered subtitle lost: %v", got)
	}
}

func TestUpsertEpisodeRejectsMovieTarget(t *testing.T) {
	idx := NewIndex()
	builder := NewBuilder(idx, nil)
	ctx := context.Background()

	if _, err := builder.UpsertTitle(ctx, movieIngest()); err != nil {
		t.Fatal(err)
	}
	_, err := builder.UpsertEpisode(ctx, "dune-2021", Episode{Season: 1, Episode: 1}, nil)
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestEpisodeSubtitleImpliesEpisode(t *testing.T) {
	idx := NewIndex()
	builder := NewBuilder(idx, nil)

	entry, err := builder.UpsertTitle(context.Background(), seriesIngest())
	if err != nil {
		t.Fatal(err)
	}
	// s01e03 appears both explicitly and via its subtitle; no duplicate.
	count := 0
	for _, ep := range entry.Episodes {
		if ep.Season == 1 && ep.Episode == 3 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("episode duplicated: %+v", entry.Episodes)
	}
}

func TestConcurrentUpsertsSameSlug(t *testing.T) {
	idx := NewIndex()
	builder := NewBuilder(idx, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := seriesIngest()
			in.Subtitles = []Subtitle{{
				Season: 1, Episode: 1, Language: "es",
				OriginFile: fmt.Sprintf("Shogun.S01E01.take%d.srt", i),
			}}
			if _, err := builder.UpsertTitle(ctx, in); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	entry, _ := idx.Lookup("shogun")
	if len(entry.Subtitles) != 16 {
		t.Errorf("lost updates: %d subtitles, want 16", len(entry.Subtitles))
	}
}

func TestIngestBatchReportsProgress(t *testing.T) {
	idx := NewIndex()
	builder := NewBuilder(idx, nil)
	rep := progress.NewChannelReporter(8)

	batch := []TitleIngest{movieIngest(), seriesIngest()}
	if err := builder.IngestBatch(context.Background(), batch, rep); err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}

	first := <-rep.Updates()
	if first.Total != 1 || first.Message != "indexed dune-2021" {
		t.Errorf("unexpected first update: %+v", first)
	}
	second := <-rep.Updates()
	if second.Total != 2 || second.Message != "indexed shogun" {
		t.Errorf("unexpected second update: %+v", second)
	}
	if done := <-rep.DoneCh(); !done.OK {
		t.Error("expected ok terminal message")
	}
}

func TestIngestBatchCancelBetweenUnits(t *testing.T) {
	idx := NewIndex()
	builder := NewBuilder(idx, nil)
	rep := progress.NewChannelReporter(8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := builder.IngestBatch(ctx, []TitleIngest{movieIngest()}, rep)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if done := <-rep.DoneCh(); done.OK {
		t.Error("expected failed terminal message")
	}
	if idx.Len() != 0 {
		t.Error("cancelled job must not apply units")
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"empty title name", Title{Kind: KindMovie}.Validate()},
		{"bad kind", Title{Name: "x", Kind: "show"}.Validate()},
		{"zero season", Episode{Season: 0, Episode: 1}.Validate()},
		{"zero episode", Episode{Season: 1, Episode: 0}.Validate()},
		{"subtitle missing language", Subtitle{OriginFile: "a.srt"}.Validate()},
		{"subtitle half episode key", Subtitle{Language: "es", OriginFile: "a.srt", Season: 1}.Validate()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrInvalidRecord) {
				t.Errorf("expected ErrInvalidRecord, got %v", tt.err)
			}
		})
	}
	if err := (Title{Name: "ok", Kind: KindSeries}).Validate(); err != nil {
		t.Errorf("valid title rejected: %v", err)
	}
}
