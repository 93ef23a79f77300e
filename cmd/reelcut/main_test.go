package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string, configPath string) (string, error) {
	t.Helper()

	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := `[paths]
data_dir = "` + filepath.Join(base, "data") + `"

[media]
media_base_url = "http://localhost:3001/converted"

[logging]
format = "json"
level = "error"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output %q missing %q", haystack, needle)
	}
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite must refuse.
	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestConfigShow(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# loaded from "+configPath)
	requireContains(t, out, "media_base_url")
}

func TestSessionListEmpty(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, []string{"session", "list"}, configPath)
	if err != nil {
		t.Fatalf("session list: %v", err)
	}
	requireContains(t, out, "No stored sessions.")
}

func TestSessionShowUnknown(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCLI(t, []string{"session", "show", "missing"}, configPath); err == nil {
		t.Fatal("expected error for unknown session id")
	}
}

func TestCacheListEmpty(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, []string{"cache", "list"}, configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Cache is empty.")
}

func TestDefaultClipTitleDerivesFromLocator(t *testing.T) {
	got := defaultClipTitle("", "https://cdn.example.com/videos/big_game-final.m3u8")
	if got != "Big Game Final" {
		t.Fatalf("derived title = %q, want %q", got, "Big Game Final")
	}
	if got := defaultClipTitle("My Clip", "https://cdn.example.com/v.m3u8"); got != "My Clip" {
		t.Fatalf("explicit title overridden: %q", got)
	}
}

func TestExtractRejectsInvalidSpan(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := runCLI(t, []string{"extract", "https://cdn.example.com/v.m3u8", "--start", "10", "--end", "5"}, configPath)
	if err == nil {
		t.Fatal("expected validation error for reversed span")
	}
}
