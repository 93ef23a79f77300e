package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for all on-disk state.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	SessionsDir  string `toml:"sessions_dir"`
	CacheDir     string `toml:"cache_dir"`
	ConvertedDir string `toml:"converted_dir"`
	ClipsDir     string `toml:"clips_dir"`
	TempDir      string `toml:"temp_dir"`
	LogDir       string `toml:"log_dir"`
}

// Media contains settings for the external transcoding tool and output URLs.
type Media struct {
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	FFprobeBinary   string `toml:"ffprobe_binary"`
	MediaBaseURL    string `toml:"media_base_url"`
	ClipsBaseURL    string `toml:"clips_base_url"`
	ConvertWorkers  int    `toml:"convert_workers"`
	DownloadTimeout int    `toml:"download_timeout"`
}

// Session persistence backends.
const (
	SessionBackendFile   = "file"
	SessionBackendSQLite = "sqlite"
)

// Sessions contains configuration for the durable session store.
type Sessions struct {
	Backend        string `toml:"backend"` // "file" or "sqlite"
	RetentionHours int    `toml:"retention_hours"`
	SweepMinutes   int    `toml:"sweep_minutes"`
}

// Cache contains configuration for the analysis result cache.
type Cache struct {
	MaxAgeHours int `toml:"max_age_hours"`
}

// MediaRetention contains pruning configuration for produced media files.
type MediaRetention struct {
	Enabled        bool    `toml:"enabled"`
	MaxAgeHours    int     `toml:"max_age_hours"`
	FreeSpaceFloor float64 `toml:"free_space_floor"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Reelcut.
//
// Configuration sections by subsystem:
//   - Paths: on-disk locations for sessions, caches, and produced media
//   - Media: ffmpeg/ffprobe binaries, public URL prefixes, batch concurrency
//   - Sessions: persistence backend and retention window
//   - Cache: analysis cache expiry
//   - MediaRetention: age- and free-space-based pruning of produced files
//   - Logging: log format and level
type Config struct {
	Paths          Paths          `toml:"paths"`
	Media          Media          `toml:"media"`
	Sessions       Sessions       `toml:"sessions"`
	Cache          Cache          `toml:"cache"`
	MediaRetention MediaRetention `toml:"media_retention"`
	Logging        Logging        `toml:"logging"`
}

// Default returns the repository default configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/reelcut",
		},
		Media: Media{
			FFmpegBinary:    "ffmpeg",
			FFprobeBinary:   "ffprobe",
			MediaBaseURL:    "http://localhost:3001/converted",
			ClipsBaseURL:    "/clips",
			ConvertWorkers:  1,
			DownloadTimeout: 120,
		},
		Sessions: Sessions{
			Backend:        SessionBackendFile,
			RetentionHours: 24,
			SweepMinutes:   60,
		},
		Cache: Cache{
			MaxAgeHours: 24,
		},
		MediaRetention: MediaRetention{
			Enabled:        true,
			MaxAgeHours:    24,
			FreeSpaceFloor: 0.10,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelcut/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelcut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir,
		c.Paths.SessionsDir,
		c.Paths.CacheDir,
		c.Paths.ConvertedDir,
		c.Paths.ClipsDir,
		c.Paths.TempDir,
		c.Paths.LogDir,
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SessionRetention returns the configured session retention window.
func (c *Config) SessionRetention() time.Duration {
	return time.Duration(c.Sessions.RetentionHours) * time.Hour
}

// SessionSweepInterval returns the interval between retention sweeps.
func (c *Config) SessionSweepInterval() time.Duration {
	return time.Duration(c.Sessions.SweepMinutes) * time.Minute
}

// CacheMaxAge returns the maximum age before an analysis cache entry expires.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.Cache.MaxAgeHours) * time.Hour
}

// DownloadTimeout returns the timeout for fetching a remote source file.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Media.DownloadTimeout) * time.Second
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
