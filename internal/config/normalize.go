package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMedia()
	c.normalizeSessions()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	// Unset directories are derived from the data dir.
	derived := map[*string]string{
		&c.Paths.SessionsDir:  "sessions",
		&c.Paths.CacheDir:     "cache",
		&c.Paths.ConvertedDir: "converted",
		&c.Paths.ClipsDir:     "clips",
		&c.Paths.TempDir:      "temp",
		&c.Paths.LogDir:       "logs",
	}
	for field, sub := range derived {
		if strings.TrimSpace(*field) == "" {
			*field = filepath.Join(c.Paths.DataDir, sub)
			continue
		}
		if *field, err = expandPath(*field); err != nil {
			return fmt.Errorf("paths: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeMedia() {
	if strings.TrimSpace(c.Media.FFmpegBinary) == "" {
		c.Media.FFmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(c.Media.FFprobeBinary) == "" {
		c.Media.FFprobeBinary = "ffprobe"
	}
	c.Media.MediaBaseURL = strings.TrimRight(strings.TrimSpace(c.Media.MediaBaseURL), "/")
	c.Media.ClipsBaseURL = strings.TrimRight(strings.TrimSpace(c.Media.ClipsBaseURL), "/")
	if c.Media.ConvertWorkers <= 0 {
		c.Media.ConvertWorkers = 1
	}
	if c.Media.DownloadTimeout <= 0 {
		c.Media.DownloadTimeout = 120
	}
}

func (c *Config) normalizeSessions() {
	c.Sessions.Backend = strings.ToLower(strings.TrimSpace(c.Sessions.Backend))
	if c.Sessions.Backend == "" {
		c.Sessions.Backend = SessionBackendFile
	}
	if c.Sessions.RetentionHours <= 0 {
		c.Sessions.RetentionHours = 24
	}
	if c.Sessions.SweepMinutes <= 0 {
		c.Sessions.SweepMinutes = 60
	}
	if c.Cache.MaxAgeHours <= 0 {
		c.Cache.MaxAgeHours = 24
	}
	if c.MediaRetention.MaxAgeHours <= 0 {
		c.MediaRetention.MaxAgeHours = 24
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
