package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reelcut/internal/logging"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT PRIMARY KEY,
    document   TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);
`

// SQLitePersister stores one row per session with the full JSON document as
// the payload. Mutations replace the row wholesale, matching the
// whole-document semantics of the file backend.
type SQLitePersister struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLitePersister opens (or creates) sessions.db under dir.
func NewSQLitePersister(dir string, logger *slog.Logger) (*SQLitePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions directory: %w", err)
	}

	dbPath := filepath.Join(dir, "sessions.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(sessionsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sessions schema: %w", err)
	}

	return &SQLitePersister{
		db:     db,
		path:   dbPath,
		logger: logging.NewComponentLogger(logger, "session-sqlite"),
	}, nil
}

// SaveSession upserts the session's full document.
func (p *SQLitePersister) SaveSession(id string, doc Session) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = p.db.Exec(
		`INSERT INTO sessions (id, document, created_at) VALUES (?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET document = excluded.document`,
		id, string(data), doc.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteSession removes the session's row; deleting an unknown id is not an
// error.
func (p *SQLitePersister) DeleteSession(id string) error {
	if _, err := p.db.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LoadSessions reads every row; a row whose document fails to parse is
// logged and skipped.
func (p *SQLitePersister) LoadSessions() (map[string]Session, error) {
	rows, err := p.db.Query(`SELECT id, document FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make(map[string]Session)
	for rows.Next() {
		var id, document string
		if err := rows.Scan(&id, &document); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		var doc Session
		if err := json.Unmarshal([]byte(document), &doc); err != nil {
			p.logger.Warn("malformed session row, skipping",
				logging.String(logging.FieldSessionID, id), logging.Error(err))
			continue
		}
		doc.ID = id
		sessions[id] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Close closes the underlying database connection.
func (p *SQLitePersister) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
