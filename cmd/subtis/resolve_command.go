package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subtis/internal/catalog"
	"subtis/internal/resolver"
)

type resolveCandidateView struct {
	ID              int64    `json:"id"`
	Season          int      `json:"season,omitempty"`
	Episode         int      `json:"episode,omitempty"`
	Language        string   `json:"language"`
	Source          string   `json:"source,omitempty"`
	EncodingTags    []string `json:"encoding_tags,omitempty"`
	OriginFile      string   `json:"origin_file"`
	Link            string   `json:"link,omitempty"`
	Score           float64  `json:"score"`
	CinemaRecording bool     `json:"cinema_recording"`
	Reasons         []string `json:"reasons,omitempty"`
}

type resolveReport struct {
	Input          string                 `json:"input"`
	Title          string                 `json:"title"`
	Year           int                    `json:"year,omitempty"`
	Slug           string                 `json:"slug"`
	Kind           string                 `json:"kind"`
	Season         int                    `json:"season,omitempty"`
	Episode        int                    `json:"episode,omitempty"`
	LowQualityOnly bool                   `json:"low_quality_only"`
	Candidates     []resolveCandidateView `json:"candidates"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var limit int

	cmd := &cobra.Command{
		Use:   "resolve <filename>",
		Short: "Resolve a release filename to ranked subtitle candidates",
		Long: `Resolve parses a subtitle or video release filename, matches it against the
indexed titles, and prints the matching subtitles ranked by relevance.

Examples:
  subtis resolve "The.Batman.2022.1080p.WEB-DL.x264.mkv"
  subtis resolve --json "Shogun.S01E03.720p.WEB.mkv"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.withIndex(cmd, func(_ *catalog.Store, idx *catalog.Index) error {
				res := resolver.NewFromConfig(idx, cfg, logger)
				result, err := res.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				report := buildResolveReport(result, limit)
				if jsonOutput {
					return writeJSON(cmd, report)
				}
				printResolveReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the result as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum candidates to show (0 = all)")
	return cmd
}

func buildResolveReport(result *resolver.Result, limit int) resolveReport {
	report := resolveReport{
		Input:          result.Input.Raw,
		Title:          result.Title.Name,
		Year:           result.Title.Year,
		Slug:           result.Title.Slug,
		Kind:           string(result.Title.Kind),
		Season:         result.Input.Season,
		Episode:        result.Input.Episode,
		LowQualityOnly: result.LowQualityOnly,
	}
	candidates := result.Candidates
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	for _, c := range candidates {
		report.Candidates = append(report.Candidates, resolveCandidateView{
			ID:              c.Subtitle.ID,
			Season:          c.Subtitle.Season,
			Episode:         c.Subtitle.Episode,
			Language:        c.Subtitle.Language,
			Source:          c.Subtitle.Source,
			EncodingTags:    c.Subtitle.EncodingTags,
			OriginFile:      c.Subtitle.OriginFile,
			Link:            c.Subtitle.Link,
			Score:           c.Score,
			CinemaRecording: c.CinemaRecording,
			Reasons:         c.Reasons,
		})
	}
	return report
}

func printResolveReport(cmd *cobra.Command, report resolveReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	heading := report.Title
	if heading == "" {
		heading = report.Slug
	}
	if report.Year > 0 {
		heading = fmt.Sprintf("%s (%d)", heading, report.Year)
	}
	if report.Season > 0 {
		heading = fmt.Sprintf("%s s%02de%02d", heading, report.Season, report.Episode)
	}
	fmt.Fprintln(out, renderStatusLine(statusOK, fmt.Sprintf("matched %s", heading), colorize))
	if report.LowQualityOnly {
		fmt.Fprintln(out, renderStatusLine(statusWarn, "all candidates are cinema recordings", colorize))
	}

	rows := make([][]string, 0, len(report.Candidates))
	for _, c := range report.Candidates {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Language,
			c.Source,
			formatScore(c.Score),
			yesNo(c.CinemaRecording),
			c.OriginFile,
			strings.Join(c.Reasons, ", "),
		})
	}
	table := renderTable(
		[]string{"ID", "Lang", "Source", "Score", "Recording", "Origin File", "Reasons"},
		rows,
		0, 3,
	)
	fmt.Fprintln(out, table)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}
