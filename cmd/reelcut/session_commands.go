package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and maintain stored sessions",
	}
	sessionCmd.AddCommand(newSessionListCommand(ctx))
	sessionCmd.AddCommand(newSessionShowCommand(ctx))
	sessionCmd.AddCommand(newSessionSweepCommand(ctx))
	return sessionCmd
}

func newSessionListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sessions := store.List()
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored sessions.")
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				converted := 0
				for _, clip := range s.Clips {
					if clip.LocalMediaURL != "" {
						converted++
					}
				}
				rows = append(rows, []string{
					s.ID,
					s.CreatedAt.Local().Format(time.RFC3339),
					strconv.Itoa(len(s.Clips)),
					strconv.Itoa(converted),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Created", "Clips", "Converted"},
				rows, 2, 3,
			))
			return nil
		},
	}
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print one session's full document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			doc, ok := store.Get(args[0])
			if !ok {
				return fmt.Errorf("session %q not found", args[0])
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newSessionSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Retire sessions past the retention window now",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed := store.SweepNow()
			fmt.Fprintf(cmd.OutOrStdout(), "Retired %d session(s).\n", removed)
			return nil
		},
	}
}
