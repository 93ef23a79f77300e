package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"reelcut/internal/config"
	"reelcut/internal/logging"
	"reelcut/internal/mediastore"
	"reelcut/internal/session"
)

const pruneInterval = time.Hour

// Daemon coordinates the background services and enforces single-instance
// execution over a data directory.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *session.Store
	media  *mediastore.Manager

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Sessions     int
	Backend      string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies. The media manager
// may be nil when retention is disabled.
func New(cfg *config.Config, store *session.Store, media *mediastore.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and session store")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "reelcutd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		media:    media,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the background loops.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reelcut daemon instance is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.store.Start(ctx)
	if d.media != nil {
		d.wg.Add(1)
		go d.pruneLoop(ctx)
	}

	d.running.Store(true)
	d.logger.Info("reelcut daemon started",
		logging.String("lock", d.lockPath),
		logging.String("session_backend", d.cfg.Sessions.Backend))
	return nil
}

func (d *Daemon) pruneLoop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := d.media.Prune(ctx); err != nil {
				d.logger.Warn("media prune failed", logging.Error(err))
			} else if removed > 0 {
				d.logger.Info("media prune pass complete", logging.Int("removed", removed))
			}
		}
	}
}

// Stop halts background loops and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("reelcut daemon stopped")
}

// Close stops the daemon and closes the session store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Status reports runtime information for the CLI.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Sessions:     len(d.store.List()),
		Backend:      d.cfg.Sessions.Backend,
		LockFilePath: d.lockPath,
	}
}
