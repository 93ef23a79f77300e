package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelcut/internal/fileutil"
	"reelcut/internal/logging"
)

// FilePersister keeps one JSON document per session under a directory. This
// is the default backend; the session id doubles as the filename.
type FilePersister struct {
	dir    string
	logger *slog.Logger
}

// NewFilePersister creates the storage directory if needed.
func NewFilePersister(dir string, logger *slog.Logger) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions directory: %w", err)
	}
	return &FilePersister{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "session-files"),
	}, nil
}

// SaveSession rewrites the session's full document atomically.
func (p *FilePersister) SaveSession(id string, doc Session) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return fileutil.WriteFileAtomic(p.docPath(id), data, 0o644)
}

// DeleteSession removes the session's document; a missing file is not an error.
func (p *FilePersister) DeleteSession(id string) error {
	if err := os.Remove(p.docPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// LoadSessions parses every *.json document in the directory. A document
// that fails to parse is logged and skipped so one corrupt file cannot block
// recovery of the rest.
func (p *FilePersister) LoadSessions() (map[string]Session, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}

	sessions := make(map[string]Session)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")

		data, err := os.ReadFile(filepath.Join(p.dir, name))
		if err != nil {
			p.logger.Warn("failed to read session document, skipping",
				logging.String(logging.FieldSessionID, id), logging.Error(err))
			continue
		}
		var doc Session
		if err := json.Unmarshal(data, &doc); err != nil {
			p.logger.Warn("malformed session document, skipping",
				logging.String(logging.FieldSessionID, id), logging.Error(err))
			continue
		}
		doc.ID = id
		sessions[id] = doc
	}
	return sessions, nil
}

// Close is a no-op; file handles are not held between calls.
func (p *FilePersister) Close() error { return nil }

func (p *FilePersister) docPath(id string) string {
	return filepath.Join(p.dir, id+".json")
}
