package analysiscache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"reelcut/internal/fileutil"
	"reelcut/internal/logging"
)

// Entry is the persisted cache document for one (subject, operation) pair.
type Entry struct {
	SubjectID string          `json:"subject_id"`
	Kind      string          `json:"kind"`
	Result    json.RawMessage `json:"result"`
	Timestamp time.Time       `json:"timestamp"`
}

// Cache stores expensive analysis results as one JSON document per
// (subject, operation) pair, keyed by a fingerprint of the two.
//
// Storage failures degrade to cache misses and best-effort writes; they are
// logged and never surfaced to callers.
type Cache struct {
	dir    string
	maxAge time.Duration
	logger *slog.Logger

	now func() time.Time
}

// New creates a cache rooted at dir. Entries older than maxAge are treated as
// absent and purged on access.
func New(dir string, maxAge time.Duration, logger *slog.Logger) *Cache {
	c := &Cache{
		dir:    dir,
		maxAge: maxAge,
		logger: logging.NewComponentLogger(logger, "analysiscache"),
		now:    time.Now,
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.logger.Warn("failed to create cache directory",
			logging.String(logging.FieldPath, dir), logging.Error(err))
	}
	return c
}

// Key returns the fingerprint used to address a (subject, operation) pair.
func Key(subjectID, kind string) string {
	sum := md5.Sum([]byte(subjectID + "_" + kind))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) entryPath(subjectID, kind string) string {
	return filepath.Join(c.dir, Key(subjectID, kind)+".json")
}

// Get returns the cached result for the pair, or false on a miss. Expired
// entries are deleted and reported as misses.
func (c *Cache) Get(subjectID, kind string) (json.RawMessage, bool) {
	path := c.entryPath(subjectID, kind)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("cache read failed",
				logging.String("kind", kind),
				logging.String("subject_id", subjectID),
				logging.Error(err))
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("cache entry malformed, discarding",
			logging.String(logging.FieldPath, path), logging.Error(err))
		_ = os.Remove(path)
		return nil, false
	}

	if c.now().Sub(entry.Timestamp) > c.maxAge {
		c.logger.Debug("cache entry expired",
			logging.String("kind", kind),
			logging.String("subject_id", subjectID))
		_ = os.Remove(path)
		return nil, false
	}

	c.logger.Debug("cache hit",
		logging.String("kind", kind),
		logging.String("subject_id", subjectID))
	return entry.Result, true
}

// Set stores a result for the pair, overwriting any existing entry and
// stamping the current time. Write failures are logged and swallowed.
func (c *Cache) Set(subjectID, kind string, result json.RawMessage) {
	entry := Entry{
		SubjectID: subjectID,
		Kind:      kind,
		Result:    result,
		Timestamp: c.now().UTC(),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		c.logger.Warn("cache marshal failed",
			logging.String("kind", kind),
			logging.String("subject_id", subjectID),
			logging.Error(err))
		return
	}

	if err := fileutil.WriteFileAtomic(c.entryPath(subjectID, kind), data, 0o644); err != nil {
		c.logger.Warn("cache write failed",
			logging.String("kind", kind),
			logging.String("subject_id", subjectID),
			logging.Error(err))
	}
}

// GetOrCompute returns a fresh cached result when present, otherwise invokes
// compute, stores its result, and returns it.
//
// No mutual exclusion is provided: two concurrent callers for the same pair
// may both invoke compute. Callers needing single-flight semantics must
// coordinate externally.
func (c *Cache) GetOrCompute(ctx context.Context, subjectID, kind string, compute func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	if cached, ok := c.Get(subjectID, kind); ok {
		return cached, nil
	}

	c.logger.Debug("cache miss, computing",
		logging.String("kind", kind),
		logging.String("subject_id", subjectID))

	result, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	c.Set(subjectID, kind, result)
	return result, nil
}

// Delete removes the entry for the pair if it exists.
func (c *Cache) Delete(subjectID, kind string) {
	if err := os.Remove(c.entryPath(subjectID, kind)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("cache delete failed",
			logging.String("kind", kind),
			logging.String("subject_id", subjectID),
			logging.Error(err))
	}
}

// ClearAll removes every entry from the cache directory.
func (c *Cache) ClearAll() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.logger.Warn("cache clear failed", logging.Error(err))
		return
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			c.logger.Warn("cache clear failed",
				logging.String(logging.FieldPath, entry.Name()), logging.Error(err))
			continue
		}
		removed++
	}
	c.logger.Debug("cleared analysis cache", logging.Int("removed", removed))
}

// List returns all readable entries sorted newest first, for inspection tools.
func (c *Cache) List() []Entry {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		c.logger.Warn("cache list failed", logging.Error(err))
		return nil
	}

	out := make([]Entry, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, file.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
