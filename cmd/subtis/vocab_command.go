package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subtis/internal/parse"
)

func newVocabCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Show the active signal vocabularies",
		Long: `Vocab prints the cinema-recording markers and quality tokens the parser is
using, including any extensions from the [vocabulary] config section.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			parser := parse.NewParser(parse.Options{
				ExtraRecordingMarkers: cfg.Vocabulary.RecordingMarkers,
				ExtraQualityTokens:    cfg.Vocabulary.QualityTokens,
			})

			markers := parser.Detector().Vocabulary()
			quality := parser.Isolator().Vocabulary()

			if jsonOutput {
				return writeJSON(cmd, map[string][]string{
					"recording_markers": markers,
					"quality_tokens":    quality,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recording markers (%d):\n  %s\n", len(markers), strings.Join(markers, ", "))
			fmt.Fprintf(out, "Quality tokens (%d):\n  %s\n", len(quality), strings.Join(quality, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the vocabularies as JSON")
	return cmd
}
