package clipper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"reelcut/internal/config"
	"reelcut/internal/mediatool"
)

const probeJSON = `{
	"streams": [
		{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30/1"}
	],
	"format": {"duration": "60.0", "bit_rate": "2500000", "size": "18750000"}
}`

type scriptedRunner struct {
	mu     sync.Mutex
	calls  []string
	failOn string
}

func (r *scriptedRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	joined := name + " " + strings.Join(args, " ")
	r.mu.Lock()
	r.calls = append(r.calls, joined)
	r.mu.Unlock()

	if name == "ffprobe" {
		return []byte(probeJSON), nil
	}
	if r.failOn != "" && strings.Contains(joined, r.failOn) {
		return []byte("encode failed"), os.ErrInvalid
	}
	if len(args) > 0 {
		if err := os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func newTestExtractor(t *testing.T, runner mediatool.Runner) *Extractor {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.ClipsDir = filepath.Join(base, "clips")
	cfg.Paths.TempDir = filepath.Join(base, "temp")
	cfg.Media.ClipsBaseURL = "/clips"

	tool := mediatool.NewWithRunner("ffmpeg", "ffprobe", runner, nil)
	return NewExtractor(&cfg, tool, nil)
}

func TestProcessClipsProducesVerticalClips(t *testing.T) {
	runner := &scriptedRunner{}
	ext := newTestExtractor(t, runner)

	specs := []ClipSpec{
		{ID: "aaaabbbbcccc", Title: "Opening Move", StartTime: 0, EndTime: 10},
		{ID: "ddddeeeeffff", Title: "Mid Game", StartTime: 20, EndTime: 28},
	}

	results, err := ext.ProcessClips(context.Background(), "https://cdn.example.com/v/master.m3u8", specs)
	if err != nil {
		t.Fatalf("ProcessClips: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(results))
	}

	first := results[0]
	if first.Filename != "Opening_Move_aaaabbbb.mp4" {
		t.Fatalf("unexpected filename %q", first.Filename)
	}
	if first.URL != "/clips/Opening_Move_aaaabbbb.mp4" {
		t.Fatalf("unexpected url %q", first.URL)
	}
	if first.Resolution.Width != 608 || first.Resolution.Height != 1080 {
		t.Fatalf("unexpected resolution %+v", first.Resolution)
	}
	if first.Duration != 10 {
		t.Fatalf("unexpected duration %f", first.Duration)
	}
	if _, err := os.Stat(first.Path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	// A 1920x1080 source crops to the canonical centered window.
	var sawExtract bool
	for _, call := range runner.calls {
		if strings.Contains(call, "crop=608:1080:656:0,scale=608:1080") {
			sawExtract = true
		}
	}
	if !sawExtract {
		t.Fatalf("extract invocations missing expected crop filter: %v", runner.calls)
	}
}

func TestProcessClipsClampsSpanToSourceDuration(t *testing.T) {
	ext := newTestExtractor(t, &scriptedRunner{})

	specs := []ClipSpec{{ID: "aaaabbbbcccc", Title: "Finale", StartTime: 50, EndTime: 90}}
	results, err := ext.ProcessClips(context.Background(), "https://cdn.example.com/v/master.m3u8", specs)
	if err != nil {
		t.Fatalf("ProcessClips: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 clip, got %d", len(results))
	}
	// Source is 60s, so the span clamps to [50, 60].
	if results[0].EndTime != 60 || results[0].Duration != 10 {
		t.Fatalf("span not clamped: %+v", results[0])
	}
}

func TestProcessClipsOmitsFailedSpecs(t *testing.T) {
	runner := &scriptedRunner{failOn: "Bad_Clip"}
	ext := newTestExtractor(t, runner)

	specs := []ClipSpec{
		{ID: "aaaa1111", Title: "Good One", StartTime: 0, EndTime: 5},
		{ID: "bbbb2222", Title: "Bad Clip", StartTime: 5, EndTime: 10},
		{ID: "cccc3333", Title: "Good Two", StartTime: 10, EndTime: 15},
	}

	results, err := ext.ProcessClips(context.Background(), "https://cdn.example.com/v/master.m3u8", specs)
	if err != nil {
		t.Fatalf("ProcessClips must not fail on a single spec: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 surviving clips, got %d", len(results))
	}
	for _, clip := range results {
		if clip.Title == "Bad Clip" {
			t.Fatal("failed spec leaked into results")
		}
	}
}

func TestProcessClipsRejectsInvalidSpans(t *testing.T) {
	ext := newTestExtractor(t, &scriptedRunner{})

	specs := []ClipSpec{
		{ID: "aaaa1111", Title: "Backwards", StartTime: 10, EndTime: 5},
		{ID: "bbbb2222", Title: "Past End", StartTime: 100, EndTime: 110},
		{ID: "cccc3333", Title: "Fine", StartTime: 0, EndTime: 5},
	}

	results, err := ext.ProcessClips(context.Background(), "https://cdn.example.com/v/master.m3u8", specs)
	if err != nil {
		t.Fatalf("ProcessClips: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Fine" {
		t.Fatalf("expected only the valid spec to survive: %+v", results)
	}
}

func TestProcessClipsRemovesSharedSource(t *testing.T) {
	runner := &scriptedRunner{failOn: "Bad_Clip"}
	ext := newTestExtractor(t, runner)

	specs := []ClipSpec{{ID: "bbbb2222", Title: "Bad Clip", StartTime: 0, EndTime: 5}}
	if _, err := ext.ProcessClips(context.Background(), "https://cdn.example.com/v/master.m3u8", specs); err != nil {
		t.Fatalf("ProcessClips: %v", err)
	}

	entries, err := os.ReadDir(ext.tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("shared source not removed despite failures: %v", entries)
	}
}

func TestCleanupOldClips(t *testing.T) {
	ext := newTestExtractor(t, &scriptedRunner{})

	oldPath := filepath.Join(ext.clipsDir, "old.mp4")
	newPath := filepath.Join(ext.clipsDir, "new.mp4")
	for _, p := range []string{oldPath, newPath} {
		if err := os.WriteFile(p, []byte("mp4"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatal(err)
	}

	if removed := ext.CleanupOldClips(24 * time.Hour); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatal("old clip still present")
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Fatal("fresh clip should survive")
	}
}
