package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelcut/internal/config"
	"reelcut/internal/logging"
	"reelcut/internal/media"
	"reelcut/internal/mediatool"
)

// Converter turns remote video locators into seekable, web-playable local
// files. Output naming is deterministic per (session, clip), which makes the
// conversion idempotent at the filesystem level.
type Converter struct {
	tool         *mediatool.Tool
	fetcher      *Fetcher
	convertedDir string
	tempDir      string
	baseURL      string
	workers      int
	logger       *slog.Logger
}

// NewConverter wires a converter from configuration.
func NewConverter(cfg *config.Config, tool *mediatool.Tool, logger *slog.Logger) *Converter {
	c := &Converter{
		tool:         tool,
		fetcher:      NewFetcher(cfg.DownloadTimeout(), logger),
		convertedDir: cfg.Paths.ConvertedDir,
		tempDir:      cfg.Paths.TempDir,
		baseURL:      cfg.Media.MediaBaseURL,
		workers:      cfg.Media.ConvertWorkers,
		logger:       logging.NewComponentLogger(logger, "transcode"),
	}
	for _, dir := range []string{c.convertedDir, c.tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			c.logger.Warn("failed to create media directory",
				logging.String(logging.FieldPath, dir), logging.Error(err))
		}
	}
	return c
}

func outputName(sessionID, clipID string) string {
	return fmt.Sprintf("%s_%s_converted.mp4", sessionID, clipID)
}

// OutputPath returns the deterministic local path for a conversion.
func (c *Converter) OutputPath(clipID, sessionID string) string {
	return filepath.Join(c.convertedDir, outputName(sessionID, clipID))
}

// PublicURL returns the URL the static file server exposes for a conversion.
func (c *Converter) PublicURL(clipID, sessionID string) string {
	return c.baseURL + "/" + outputName(sessionID, clipID)
}

// Convert materializes one clip as a local web-playable file and returns its
// public URL. When the deterministic output already exists the external tool
// is not invoked again.
func (c *Converter) Convert(ctx context.Context, clip media.ClipDescriptor, sessionID string) (string, error) {
	if strings.TrimSpace(clip.SourceLocator) == "" {
		return "", mediatool.Wrap(mediatool.ErrValidation, "transcode", "convert", "clip "+clip.ID+" has no source locator", nil)
	}

	outputPath := c.OutputPath(clip.ID, sessionID)
	logger := c.logger.With(
		logging.String(logging.FieldSessionID, sessionID),
		logging.String(logging.FieldClipID, clip.ID),
	)

	if _, err := os.Stat(outputPath); err == nil {
		logger.Debug("conversion already materialized", logging.String(logging.FieldPath, outputPath))
		return c.PublicURL(clip.ID, sessionID), nil
	}

	logger.Info("converting clip",
		logging.String(logging.FieldLocator, clip.SourceLocator),
		logging.String("filename", clip.Filename))

	var err error
	if media.IsStreamManifest(clip.SourceLocator) {
		// ffmpeg reads segmented manifests natively; no intermediate download.
		err = c.tool.Normalize(ctx, clip.SourceLocator, outputPath, mediatool.NormalizeOptions{BaselineProfile: true})
	} else {
		err = c.convertProgressive(ctx, clip, outputPath)
	}
	if err != nil {
		// Never leave a partial file that a later call would mistake for done.
		_ = os.Remove(outputPath)
		logger.Error("conversion failed", logging.Error(err))
		return "", err
	}

	logger.Info("conversion complete", logging.String(logging.FieldPath, outputPath))
	return c.PublicURL(clip.ID, sessionID), nil
}

func (c *Converter) convertProgressive(ctx context.Context, clip media.ClipDescriptor, outputPath string) error {
	tempPath := filepath.Join(c.tempDir, "temp_"+clip.ID+sourceExt(clip))
	if err := c.fetcher.Download(ctx, clip.SourceLocator, tempPath); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			c.logger.Warn("failed to remove temp source",
				logging.String(logging.FieldPath, tempPath), logging.Error(err))
		}
	}()

	return c.tool.Normalize(ctx, tempPath, outputPath, mediatool.NormalizeOptions{})
}

func sourceExt(clip media.ClipDescriptor) string {
	if ext := filepath.Ext(clip.Filename); ext != "" {
		return ext
	}
	return ".mov"
}
