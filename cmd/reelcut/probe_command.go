package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var thumbnailPath string
	var thumbnailAt float64

	cmd := &cobra.Command{
		Use:   "probe <locator>",
		Short: "Inspect a source's video metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := ctx.tool()
			if err != nil {
				return err
			}

			result, err := tool.Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Resolution", fmt.Sprintf("%dx%d", result.Width, result.Height)},
				{"Duration", strconv.FormatFloat(result.Duration, 'f', 2, 64) + "s"},
				{"Frame rate", strconv.FormatFloat(result.FrameRate, 'f', 2, 64)},
				{"Codec", result.Codec},
				{"Bit rate", strconv.FormatInt(result.BitRate, 10)},
				{"Size", strconv.FormatInt(result.SizeBytes, 10)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows, 1,
			))

			if thumbnailPath != "" {
				if err := tool.Thumbnail(cmd.Context(), args[0], thumbnailPath, thumbnailAt); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Thumbnail written to %s\n", thumbnailPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&thumbnailPath, "thumbnail", "", "Also write a thumbnail frame to this path")
	cmd.Flags().Float64Var(&thumbnailAt, "thumbnail-at", 1, "Timestamp in seconds for the thumbnail frame")
	return cmd
}
