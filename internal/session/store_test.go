package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelcut/internal/media"
)

func newFileStore(t *testing.T, dir string) *Store {
	t.Helper()
	persister, err := NewFilePersister(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewStore(persister, 24*time.Hour, time.Hour, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateInitializesEmptyDocument(t *testing.T) {
	store := newFileStore(t, t.TempDir())

	id := store.Create()
	if id == "" {
		t.Fatal("empty session id")
	}

	doc, ok := store.Get(id)
	if !ok {
		t.Fatal("created session not found")
	}
	if len(doc.Clips) != 0 || doc.Sequence != nil || doc.Soundtrack != nil {
		t.Fatalf("fresh session not empty: %+v", doc)
	}
	if doc.Scores == nil {
		t.Fatal("scores map should be initialized")
	}
	if doc.CreatedAt.IsZero() {
		t.Fatal("createdAt not stamped")
	}
}

func TestGetUnknownID(t *testing.T) {
	store := newFileStore(t, t.TempDir())
	if _, ok := store.Get("nope"); ok {
		t.Fatal("unknown id should miss")
	}
}

func TestUpdateUnknownIDReturnsFalse(t *testing.T) {
	store := newFileStore(t, t.TempDir())
	if store.Update("nope", Patch{Sequence: json.RawMessage(`{}`)}) {
		t.Fatal("update of unknown id must return false, not panic")
	}
}

func TestUpdateMergesShallowly(t *testing.T) {
	store := newFileStore(t, t.TempDir())
	id := store.Create()

	clips := []media.ClipDescriptor{{ID: "c1"}, {ID: "c2"}}
	if !store.Update(id, Patch{Clips: clips}) {
		t.Fatal("update failed")
	}
	if !store.Update(id, Patch{Sequence: json.RawMessage(`{"sequence":["c2","c1"]}`)}) {
		t.Fatal("update failed")
	}

	doc, _ := store.Get(id)
	if len(doc.Clips) != 2 {
		t.Fatalf("clips lost by later patch: %+v", doc)
	}
	if string(doc.Sequence) != `{"sequence":["c2","c1"]}` {
		t.Fatalf("sequence not applied: %s", doc.Sequence)
	}
}

func TestDurabilityRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := newFileStore(t, dir)

	id := store.Create()
	clips := []media.ClipDescriptor{
		{ID: "c1", SourceLocator: "https://cdn.example.com/1.m3u8"},
		{ID: "c2", SourceLocator: "https://cdn.example.com/2.m3u8"},
	}
	store.Update(id, Patch{Clips: clips})
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	// Restart: a fresh store over the same directory must recover the state.
	reopened := newFileStore(t, dir)
	doc, ok := reopened.Get(id)
	if !ok {
		t.Fatal("session lost across restart")
	}
	if len(doc.Clips) != 2 || doc.Clips[0].ID != "c1" || doc.Clips[1].ID != "c2" {
		t.Fatalf("recovered clips differ: %+v", doc.Clips)
	}
}

func TestRecoverySkipsMalformedDocuments(t *testing.T) {
	dir := t.TempDir()
	store := newFileStore(t, dir)
	good := store.Create()
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	bad := filepath.Join(dir, "not-a-session.json")
	if err := os.WriteFile(bad, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}

	reopened := newFileStore(t, dir)
	if _, ok := reopened.Get(good); !ok {
		t.Fatal("healthy session lost because a sibling was corrupt")
	}
	if _, ok := reopened.Get("not-a-session"); ok {
		t.Fatal("malformed document should be skipped")
	}
}

func TestSweepRetiresExpiredSessions(t *testing.T) {
	dir := t.TempDir()
	store := newFileStore(t, dir)

	store.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	expired := store.Create()
	store.now = time.Now
	fresh := store.Create()

	if removed := store.SweepNow(); removed != 1 {
		t.Fatalf("expected 1 retired session, got %d", removed)
	}
	if _, ok := store.Get(expired); ok {
		t.Fatal("expired session still served")
	}
	if _, ok := store.Get(fresh); !ok {
		t.Fatal("fresh session swept")
	}
	if _, err := os.Stat(filepath.Join(dir, expired+".json")); !os.IsNotExist(err) {
		t.Fatalf("expired document still on disk, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, fresh+".json")); err != nil {
		t.Fatal("fresh document should remain on disk")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newFileStore(t, t.TempDir())

	store.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	older := store.Create()
	store.now = time.Now
	newer := store.Create()

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}
	if list[0].ID != newer || list[1].ID != older {
		t.Fatalf("unexpected order: %s then %s", list[0].ID, list[1].ID)
	}
}

func TestStartStopSweeper(t *testing.T) {
	store := newFileStore(t, t.TempDir())
	store.Start(context.Background())
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSQLitePersisterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	persister, err := NewSQLitePersister(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewStore(persister, 24*time.Hour, time.Hour, nil)
	if err != nil {
		t.Fatal(err)
	}

	id := store.Create()
	store.Update(id, Patch{Clips: []media.ClipDescriptor{{ID: "c1"}}})
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopenedPersister, err := NewSQLitePersister(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	reopened, err := NewStore(reopenedPersister, 24*time.Hour, time.Hour, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	doc, ok := reopened.Get(id)
	if !ok {
		t.Fatal("session lost across sqlite restart")
	}
	if len(doc.Clips) != 1 || doc.Clips[0].ID != "c1" {
		t.Fatalf("recovered clips differ: %+v", doc.Clips)
	}

	if removed := reopened.SweepNow(); removed != 0 {
		t.Fatalf("fresh session must survive the sweep, removed=%d", removed)
	}
}
