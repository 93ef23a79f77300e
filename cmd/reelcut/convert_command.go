package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reelcut/internal/media"
	"reelcut/internal/transcode"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	var clipID string

	cmd := &cobra.Command{
		Use:   "convert <locator>",
		Short: "Normalize a remote source into a seekable local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tool, err := ctx.tool()
			if err != nil {
				return err
			}

			if sessionID == "" {
				sessionID = "adhoc"
			}
			if clipID == "" {
				clipID = uuid.NewString()[:8]
			}

			converter := transcode.NewConverter(cfg, tool, ctx.ensureLogger())
			url, err := converter.Convert(cmd.Context(), media.ClipDescriptor{
				ID:            clipID,
				SourceLocator: args[0],
			}, sessionID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Converted: %s\n", converter.OutputPath(clipID, sessionID))
			fmt.Fprintf(out, "URL:       %s\n", url)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to key the output (default \"adhoc\")")
	cmd.Flags().StringVar(&clipID, "clip-id", "", "Clip id to key the output (default random)")
	return cmd
}
