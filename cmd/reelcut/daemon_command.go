package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelcut/internal/daemon"
	"reelcut/internal/mediastore"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Daemon management",
	}
	daemonCmd.AddCommand(newDaemonRunCommand(ctx))
	return daemonCmd
}

// newDaemonRunCommand runs the daemon in the foreground until interrupted,
// mirroring what the reelcutd binary does.
func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			store, err := ctx.openStore()
			if err != nil {
				return err
			}

			d, err := daemon.New(cfg, store, mediastore.NewManager(cfg, logger), logger)
			if err != nil {
				return err
			}
			defer d.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return err
			}
			<-runCtx.Done()
			return nil
		},
	}
}
