package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateSessions(); err != nil {
		return err
	}
	return c.validateRetention()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.MediaBaseURL == "" {
		return errors.New("media.media_base_url must be set")
	}
	if parsed, err := url.Parse(c.Media.MediaBaseURL); err != nil || parsed.Scheme == "" {
		return fmt.Errorf("media.media_base_url %q must be an absolute URL", c.Media.MediaBaseURL)
	}
	if c.Media.ConvertWorkers < 1 {
		return errors.New("media.convert_workers must be at least 1")
	}
	return nil
}

func (c *Config) validateSessions() error {
	switch c.Sessions.Backend {
	case SessionBackendFile, SessionBackendSQLite:
	default:
		return fmt.Errorf("sessions.backend %q must be \"file\" or \"sqlite\"", c.Sessions.Backend)
	}
	if c.Sessions.RetentionHours < 1 {
		return errors.New("sessions.retention_hours must be at least 1")
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.MediaRetention.FreeSpaceFloor < 0 || c.MediaRetention.FreeSpaceFloor >= 1 {
		return errors.New("media_retention.free_space_floor must be in [0, 1)")
	}
	return nil
}
