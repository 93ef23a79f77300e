package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelcut/internal/analysiscache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the analysis result cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func (c *commandContext) openCache() (*analysiscache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return analysiscache.New(cfg.Paths.CacheDir, cfg.CacheMaxAge(), c.ensureLogger()), nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached analysis results, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}

			entries := cache.List()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				age := time.Since(e.Timestamp).Round(time.Minute)
				rows = append(rows, []string{
					e.SubjectID,
					e.Kind,
					age.String(),
					strconv.Itoa(len(e.Result)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Subject", "Kind", "Age", "Bytes"},
				rows, 2, 3,
			))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached analysis result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			cache.ClearAll()
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
}
