package session

import (
	"encoding/json"
	"time"

	"reelcut/internal/media"
)

// Session is one session's full project document. Sequence, Scores, and
// Soundtrack are owned by external oracles and carried opaquely; only the
// clip list has structure this subsystem understands.
type Session struct {
	ID         string                     `json:"-"`
	Clips      []media.ClipDescriptor     `json:"clips"`
	Sequence   json.RawMessage            `json:"sequence"`
	Scores     map[string]json.RawMessage `json:"scores"`
	Soundtrack json.RawMessage            `json:"soundtrack"`
	CreatedAt  time.Time                  `json:"createdAt"`
}

func newSession(id string, createdAt time.Time) Session {
	return Session{
		ID:        id,
		Clips:     []media.ClipDescriptor{},
		Scores:    map[string]json.RawMessage{},
		CreatedAt: createdAt,
	}
}

// Patch is a shallow partial update. Nil fields are left untouched; set
// fields replace the session's value wholesale. There is no per-field
// locking beyond the store mutex, so two callers patching overlapping
// fields must serialize externally.
type Patch struct {
	Clips      []media.ClipDescriptor
	Sequence   json.RawMessage
	Scores     map[string]json.RawMessage
	Soundtrack json.RawMessage
}

func (s *Session) apply(patch Patch) {
	if patch.Clips != nil {
		s.Clips = patch.Clips
	}
	if patch.Sequence != nil {
		s.Sequence = patch.Sequence
	}
	if patch.Scores != nil {
		s.Scores = patch.Scores
	}
	if patch.Soundtrack != nil {
		s.Soundtrack = patch.Soundtrack
	}
}
