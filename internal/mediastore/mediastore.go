package mediastore

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sys/unix"

	"reelcut/internal/config"
	"reelcut/internal/logging"
)

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (total uint64, free uint64, err error)

// Manager prunes produced media directories by age and free-space pressure.
type Manager struct {
	dirs   []string
	maxAge time.Duration
	floor  float64
	logger *slog.Logger
	statfs statfsFunc
	now    func() time.Time
}

// NewManager builds a pruning manager; returns nil when retention is
// disabled so callers can hold a nil manager safely.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if cfg == nil || !cfg.MediaRetention.Enabled {
		return nil
	}
	return &Manager{
		dirs:   []string{cfg.Paths.ConvertedDir, cfg.Paths.ClipsDir},
		maxAge: time.Duration(cfg.MediaRetention.MaxAgeHours) * time.Hour,
		floor:  cfg.MediaRetention.FreeSpaceFloor,
		logger: logging.NewComponentLogger(logger, "mediastore"),
		statfs: realStatfs,
		now:    time.Now,
	}
}

type entry struct {
	path    string
	size    int64
	modTime time.Time
}

// Prune removes files past the age ceiling, then keeps removing the oldest
// remaining files until the free-space floor is satisfied. Returns how many
// files were deleted.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	if m == nil {
		return 0, nil
	}

	entries, err := m.scan()
	if err != nil {
		return 0, err
	}

	removed := 0
	cutoff := m.now().Add(-m.maxAge)
	remaining := entries[:0]
	for _, e := range entries {
		if m.maxAge > 0 && e.modTime.Before(cutoff) {
			if m.remove(ctx, e, "age") {
				removed++
				continue
			}
		}
		remaining = append(remaining, e)
	}

	if m.floor <= 0 {
		return removed, nil
	}
	for len(remaining) > 0 {
		ok, err := m.freeSpaceOK()
		if err != nil {
			return removed, err
		}
		if ok {
			break
		}
		if m.remove(ctx, remaining[0], "free_space") {
			removed++
		}
		remaining = remaining[1:]
	}
	return removed, nil
}

// scan lists every regular file across the managed directories, oldest first.
func (m *Manager) scan() ([]entry, error) {
	var entries []entry
	for _, dir := range m.dirs {
		items, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for _, item := range items {
			if item.IsDir() {
				continue
			}
			info, err := item.Info()
			if err != nil {
				continue
			}
			entries = append(entries, entry{
				path:    filepath.Join(dir, item.Name()),
				size:    info.Size(),
				modTime: info.ModTime(),
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})
	return entries, nil
}

func (m *Manager) remove(ctx context.Context, e entry, reason string) bool {
	if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.logger.WarnContext(ctx, "failed to prune media file",
			logging.String(logging.FieldPath, e.path), logging.Error(err))
		return false
	}
	m.logger.InfoContext(ctx, "pruned media file",
		logging.String(logging.FieldPath, e.path),
		logging.Int64("size_bytes", e.size),
		logging.String("reason", reason))
	return true
}

func (m *Manager) freeSpaceOK() (bool, error) {
	total, free, err := m.statfs(m.dirs[0])
	if err != nil {
		return false, err
	}
	if total == 0 {
		return true, nil
	}
	return float64(free)/float64(total) >= m.floor, nil
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
