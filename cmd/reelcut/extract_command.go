package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reelcut/internal/clipper"
	"reelcut/internal/textutil"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var specsPath string
	var title string
	var start float64
	var end float64

	cmd := &cobra.Command{
		Use:   "extract <locator>",
		Short: "Cut cropped vertical clips out of a shared source",
		Long: `Cut one or more 9:16 clips out of a source video.

Pass --specs with a JSON file holding a list of {id, title, startTime, endTime}
objects, or --start/--end/--title for a single clip.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tool, err := ctx.tool()
			if err != nil {
				return err
			}

			var specs []clipper.ClipSpec
			switch {
			case specsPath != "":
				data, err := os.ReadFile(specsPath)
				if err != nil {
					return fmt.Errorf("read specs file: %w", err)
				}
				if err := json.Unmarshal(data, &specs); err != nil {
					return fmt.Errorf("parse specs file: %w", err)
				}
			default:
				if end <= start {
					return fmt.Errorf("--end (%g) must be greater than --start (%g)", end, start)
				}
				specs = []clipper.ClipSpec{{
					ID:        uuid.NewString(),
					Title:     defaultClipTitle(title, args[0]),
					StartTime: start,
					EndTime:   end,
				}}
			}

			extractor := clipper.NewExtractor(cfg, tool, ctx.ensureLogger())
			clips, err := extractor.ProcessClips(cmd.Context(), args[0], specs)
			if err != nil {
				return err
			}

			if len(clips) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No clips produced.")
				return nil
			}
			rows := make([][]string, 0, len(clips))
			for _, clip := range clips {
				rows = append(rows, []string{
					clip.Title,
					strconv.FormatFloat(clip.Duration, 'f', 1, 64) + "s",
					clip.Path,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Title", "Duration", "Path"},
				rows, 1,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&specsPath, "specs", "", "JSON file with clip specs")
	cmd.Flags().StringVar(&title, "title", "", "Title for a single clip (default derived from the locator)")
	cmd.Flags().Float64Var(&start, "start", 0, "Start time in seconds for a single clip")
	cmd.Flags().Float64Var(&end, "end", 0, "End time in seconds for a single clip")
	return cmd
}

// defaultClipTitle falls back to a title derived from the source locator when
// the user did not name the clip.
func defaultClipTitle(title, locator string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return textutil.DeriveTitle(locator)
}
