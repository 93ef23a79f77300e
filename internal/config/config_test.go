package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelcut/internal/config"
)

func TestLoadDefaultsAndDerivesDirectories(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "reelcut")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.SessionsDir != filepath.Join(wantData, "sessions") {
		t.Fatalf("unexpected sessions dir: %q", cfg.Paths.SessionsDir)
	}
	if cfg.Paths.ConvertedDir != filepath.Join(wantData, "converted") {
		t.Fatalf("unexpected converted dir: %q", cfg.Paths.ConvertedDir)
	}
	if cfg.Sessions.Backend != "file" {
		t.Fatalf("unexpected session backend: %q", cfg.Sessions.Backend)
	}
	if cfg.Media.ConvertWorkers != 1 {
		t.Fatalf("expected single convert worker by default, got %d", cfg.Media.ConvertWorkers)
	}
	if cfg.Sessions.RetentionHours != 24 {
		t.Fatalf("unexpected retention: %d", cfg.Sessions.RetentionHours)
	}
}

func TestLoadParsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		"[media]",
		`media_base_url = "http://media.example.com/converted/"`,
		"convert_workers = 3",
		"[sessions]",
		`backend = "sqlite"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Media.MediaBaseURL != "http://media.example.com/converted" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Media.MediaBaseURL)
	}
	if cfg.Media.ConvertWorkers != 3 {
		t.Fatalf("unexpected convert workers: %d", cfg.Media.ConvertWorkers)
	}
	if cfg.Sessions.Backend != "sqlite" {
		t.Fatalf("unexpected backend: %q", cfg.Sessions.Backend)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "relative media base url",
			mutate: func(c *config.Config) { c.Media.MediaBaseURL = "/converted" },
			want:   "media.media_base_url",
		},
		{
			name:   "unknown session backend",
			mutate: func(c *config.Config) { c.Sessions.Backend = "etcd" },
			want:   "sessions.backend",
		},
		{
			name:   "free space floor out of range",
			mutate: func(c *config.Config) { c.MediaRetention.FreeSpaceFloor = 1.5 },
			want:   "free_space_floor",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = t.TempDir()
			cfg.Sessions.Backend = "file"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[media]") {
		t.Fatal("sample config missing [media] section")
	}
}
