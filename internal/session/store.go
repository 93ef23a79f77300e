package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelcut/internal/config"
	"reelcut/internal/logging"
)

// Persister mirrors the in-memory index to durable storage. Implementations
// must tolerate concurrent calls from the store's mutation paths and the
// retention sweeper.
type Persister interface {
	SaveSession(id string, doc Session) error
	DeleteSession(id string) error
	LoadSessions() (map[string]Session, error)
	Close() error
}

// Store is the authoritative in-memory session index with a best-effort
// durable mirror behind it.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]Session
	persister Persister

	retention time.Duration
	sweepTick time.Duration
	logger    *slog.Logger
	now       func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// Open builds a store with the persistence backend the configuration names
// and recovers every previously persisted session into memory.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	var (
		persister Persister
		err       error
	)
	switch cfg.Sessions.Backend {
	case config.SessionBackendSQLite:
		persister, err = NewSQLitePersister(cfg.Paths.SessionsDir, logger)
	default:
		persister, err = NewFilePersister(cfg.Paths.SessionsDir, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("open session backend %q: %w", cfg.Sessions.Backend, err)
	}
	return NewStore(persister, cfg.SessionRetention(), cfg.SessionSweepInterval(), logger)
}

// NewStore wires a store around an explicit persister. Recovery happens
// here: every document the persister can load becomes live immediately.
func NewStore(persister Persister, retention, sweepTick time.Duration, logger *slog.Logger) (*Store, error) {
	s := &Store{
		persister: persister,
		retention: retention,
		sweepTick: sweepTick,
		logger:    logging.NewComponentLogger(logger, "session"),
		now:       time.Now,
	}

	recovered, err := persister.LoadSessions()
	if err != nil {
		return nil, fmt.Errorf("recover sessions: %w", err)
	}
	if recovered == nil {
		recovered = make(map[string]Session)
	}
	s.sessions = recovered
	if len(recovered) > 0 {
		s.logger.Info("recovered persisted sessions", logging.Int("count", len(recovered)))
	}
	return s, nil
}

// Create registers a fresh empty session and returns its id.
func (s *Store) Create() string {
	id := uuid.NewString()
	doc := newSession(id, s.now().UTC())

	s.mu.Lock()
	s.sessions[id] = doc
	s.mu.Unlock()

	s.persist(id, doc)
	s.logger.Info("created session", logging.String(logging.FieldSessionID, id))
	return id
}

// Get serves a session from the in-memory index. The returned document is a
// copy; mutations only take effect through Update.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	doc, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return &doc, true
}

// Update shallow-merges the patch into the session and re-persists the whole
// merged document. Returns false when the id is unknown. The disk write is a
// synchronous best-effort mirror: a crash between the memory update and the
// persist loses the latest write.
func (s *Store) Update(id string, patch Patch) bool {
	s.mu.Lock()
	doc, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	doc.apply(patch)
	s.sessions[id] = doc
	s.mu.Unlock()

	s.persist(id, doc)
	return true
}

// List returns all live sessions, newest first.
func (s *Store) List() []Session {
	s.mu.RLock()
	out := make([]Session, 0, len(s.sessions))
	for _, doc := range s.sessions {
		out = append(out, doc)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Start launches the retention sweeper. Sessions older than the retention
// window are deleted from memory and storage on every tick.
func (s *Store) Start(ctx context.Context) {
	if s.sweepTick <= 0 || s.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.sweepTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepNow()
			}
		}
	}()
}

// SweepNow runs one retention pass and returns how many sessions it retired.
func (s *Store) SweepNow() int {
	if s.retention <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.retention)

	s.mu.Lock()
	var expired []string
	for id, doc := range s.sessions {
		if doc.CreatedAt.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, id := range expired {
		if err := s.persister.DeleteSession(id); err != nil {
			s.logger.Warn("failed to delete expired session from storage",
				logging.String(logging.FieldSessionID, id), logging.Error(err))
		}
	}
	if len(expired) > 0 {
		s.logger.Info("swept expired sessions", logging.Int("count", len(expired)))
	}
	return len(expired)
}

// Close stops the sweeper, waits for it, and closes the persister.
func (s *Store) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel = nil
		s.done = nil
	}
	return s.persister.Close()
}

func (s *Store) persist(id string, doc Session) {
	if err := s.persister.SaveSession(id, doc); err != nil {
		s.logger.Warn("failed to persist session",
			logging.String(logging.FieldSessionID, id), logging.Error(err))
	}
}
