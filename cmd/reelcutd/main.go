package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"reelcut/internal/config"
	"reelcut/internal/daemon"
	"reelcut/internal/logging"
	"reelcut/internal/mediastore"
	"reelcut/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(os.Getenv("REELCUT_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := session.Open(cfg, logger)
	if err != nil {
		logger.Error("open session store", logging.Error(err))
		os.Exit(1)
	}

	d, err := daemon.New(cfg, store, mediastore.NewManager(cfg, logger), logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("reelcutd shutting down")
}
