package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"subtis/internal/catalog"
	"subtis/internal/progress"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Ingest and inspect the subtitle index",
	}

	indexCmd.AddCommand(newIndexAddCommand(ctx))
	indexCmd.AddCommand(newIndexListCommand(ctx))
	indexCmd.AddCommand(newIndexShowCommand(ctx))

	return indexCmd
}

// titlePayload mirrors catalog.TitleIngest for JSON intake.
type titlePayload struct {
	Title struct {
		ID          int64             `json:"id"`
		Name        string            `json:"name"`
		Year        int               `json:"year"`
		Kind        string            `json:"kind"`
		ExternalIDs map[string]string `json:"external_ids"`
	} `json:"title"`
	Episodes []struct {
		Season  int `json:"season"`
		Episode int `json:"episode"`
	} `json:"episodes"`
	Subtitles []struct {
		ID           int64    `json:"id"`
		Season       int      `json:"season"`
		Episode      int      `json:"episode"`
		Language     string   `json:"language"`
		Source       string   `json:"source"`
		EncodingTags []string `json:"encoding_tags"`
		OriginFile   string   `json:"origin_file"`
		Link         string   `json:"link"`
	} `json:"subtitles"`
}

func (p titlePayload) toIngest() catalog.TitleIngest {
	in := catalog.TitleIngest{
		Title: catalog.Title{
			ID:          p.Title.ID,
			Name:        p.Title.Name,
			Year:        p.Title.Year,
			Kind:        catalog.Kind(p.Title.Kind),
			ExternalIDs: p.Title.ExternalIDs,
		},
	}
	for _, ep := range p.Episodes {
		in.Episodes = append(in.Episodes, catalog.Episode{
			TitleID: p.Title.ID,
			Season:  ep.Season,
			Episode: ep.Episode,
		})
	}
	for _, sub := range p.Subtitles {
		in.Subtitles = append(in.Subtitles, catalog.Subtitle{
			ID:           sub.ID,
			TitleID:      p.Title.ID,
			Season:       sub.Season,
			Episode:      sub.Episode,
			Language:     sub.Language,
			Source:       sub.Source,
			EncodingTags: sub.EncodingTags,
			OriginFile:   sub.OriginFile,
			Link:         sub.Link,
		})
	}
	return in
}

// printerReporter mirrors job progress onto the terminal.
type printerReporter struct {
	out io.Writer
}

func (r *printerReporter) Progress(u progress.Update) {
	fmt.Fprintf(r.out, "  [%d] %s\n", u.Total, u.Message)
}

func (r *printerReporter) Finish(d progress.Done) {
	if d.OK {
		fmt.Fprintln(r.out, "Indexing complete")
	} else {
		fmt.Fprintln(r.out, "Indexing aborted")
	}
}

func newIndexAddCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <payload.json>",
		Short: "Ingest titles, episodes, and subtitles from a JSON payload",
		Long: `Add reads a JSON array of title units and upserts each one into the index.
Re-ingesting the same unit is a no-op; re-ingesting a known title with new
external ids merges the ids without touching the rest of the entry.

Pass "-" to read the payload from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			var reader io.Reader
			if args[0] == "-" {
				reader = cmd.InOrStdin()
			} else {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open payload: %w", err)
				}
				defer file.Close()
				reader = file
			}

			var payloads []titlePayload
			if err := json.NewDecoder(reader).Decode(&payloads); err != nil {
				return fmt.Errorf("parse payload: %w", err)
			}
			if len(payloads) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to ingest")
				return nil
			}

			batch := make([]catalog.TitleIngest, 0, len(payloads))
			for _, p := range payloads {
				batch = append(batch, p.toIngest())
			}

			return ctx.withIndex(cmd, func(store *catalog.Store, idx *catalog.Index) error {
				builder := catalog.NewBuilder(idx, logger)
				rep := progress.Multi(
					&printerReporter{out: cmd.OutOrStdout()},
					progress.NewLogReporter(logger),
				)
				if err := builder.IngestBatch(cmd.Context(), batch, rep); err != nil {
					return err
				}
				for _, key := range idx.Slugs() {
					entry, ok := idx.Lookup(key)
					if !ok {
						continue
					}
					if err := store.SaveEntry(cmd.Context(), entry); err != nil {
						return fmt.Errorf("persist %s: %w", key, err)
					}
				}
				return nil
			})
		},
	}
	return cmd
}

func newIndexListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withIndex(cmd, func(_ *catalog.Store, idx *catalog.Index) error {
				if idx.Len() == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Index is empty")
					return nil
				}

				if jsonOutput {
					type row struct {
						Slug      string `json:"slug"`
						Name      string `json:"name"`
						Year      int    `json:"year,omitempty"`
						Kind      string `json:"kind"`
						Episodes  int    `json:"episodes"`
						Subtitles int    `json:"subtitles"`
					}
					out := make([]row, 0, idx.Len())
					for _, key := range idx.Slugs() {
						entry, ok := idx.Lookup(key)
						if !ok {
							continue
						}
						out = append(out, row{
							Slug:      key,
							Name:      entry.Title.Name,
							Year:      entry.Title.Year,
							Kind:      string(entry.Title.Kind),
							Episodes:  len(entry.Episodes),
							Subtitles: len(entry.Subtitles),
						})
					}
					return writeJSON(cmd, out)
				}

				rows := make([][]string, 0, idx.Len())
				for _, key := range idx.Slugs() {
					entry, ok := idx.Lookup(key)
					if !ok {
						continue
					}
					year := ""
					if entry.Title.Year > 0 {
						year = strconv.Itoa(entry.Title.Year)
					}
					rows = append(rows, []string{
						key,
						entry.Title.Name,
						year,
						string(entry.Title.Kind),
						strconv.Itoa(len(entry.Episodes)),
						strconv.Itoa(len(entry.Subtitles)),
					})
				}
				table := renderTable(
					[]string{"Slug", "Name", "Year", "Kind", "Episodes", "Subtitles"},
					rows,
					2, 4, 5,
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the list as JSON")
	return cmd
}

func newIndexShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one indexed title in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withIndex(cmd, func(_ *catalog.Store, idx *catalog.Index) error {
				entry, ok := idx.Lookup(args[0])
				if !ok {
					return fmt.Errorf("no index entry for slug %q", args[0])
				}

				if jsonOutput {
					return writeJSON(cmd, entryView(entry))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Slug:  %s\n", entry.Title.Slug)
				fmt.Fprintf(out, "Name:  %s\n", entry.Title.Name)
				if entry.Title.Year > 0 {
					fmt.Fprintf(out, "Year:  %d\n", entry.Title.Year)
				}
				fmt.Fprintf(out, "Kind:  %s\n", entry.Title.Kind)
				for provider, id := range entry.Title.ExternalIDs {
					fmt.Fprintf(out, "ID:    %s=%s\n", provider, id)
				}

				if len(entry.Episodes) > 0 {
					fmt.Fprintln(out)
					rows := make([][]string, 0, len(entry.Episodes))
					for _, ep := range entry.Episodes {
						rows = append(rows, []string{
							fmt.Sprintf("s%02de%02d", ep.Season, ep.Episode),
							strconv.Itoa(len(entry.EpisodeSubtitles(ep.Season, ep.Episode))),
						})
					}
					fmt.Fprintln(out, renderTable([]string{"Episode", "Subtitles"}, rows, 1))
				}

				if len(entry.Subtitles) > 0 {
					fmt.Fprintln(out)
					rows := make([][]string, 0, len(entry.Subtitles))
					for _, sub := range entry.Subtitles {
						scope := "title"
						if sub.ForEpisode() {
							scope = fmt.Sprintf("s%02de%02d", sub.Season, sub.Episode)
						}
						rows = append(rows, []string{
							strconv.FormatInt(sub.ID, 10),
							scope,
							sub.Language,
							sub.Source,
							sub.OriginFile,
						})
					}
					fmt.Fprintln(out, renderTable([]string{"ID", "Scope", "Lang", "Source", "Origin File"}, rows, 0))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the entry as JSON")
	return cmd
}

func entryView(entry *catalog.Entry) map[string]any {
	subs := make([]map[string]any, 0, len(entry.Subtitles))
	for _, sub := range entry.Subtitles {
		subs = append(subs, map[string]any{
			"id":            sub.ID,
			"season":        sub.Season,
			"episode":       sub.Episode,
			"language":      sub.Language,
			"source":        sub.Source,
			"encoding_tags": sub.EncodingTags,
			"origin_file":   sub.OriginFile,
			"link":          sub.Link,
		})
	}
	episodes := make([]map[string]int, 0, len(entry.Episodes))
	for _, ep := range entry.Episodes {
		episodes = append(episodes, map[string]int{"season": ep.Season, "episode": ep.Episode})
	}
	return map[string]any{
		"slug":         entry.Title.Slug,
		"name":         entry.Title.Name,
		"year":         entry.Title.Year,
		"kind":         string(entry.Title.Kind),
		"external_ids": entry.Title.ExternalIDs,
		"episodes":     episodes,
		"subtitles":    subs,
	}
}
