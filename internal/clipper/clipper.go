package clipper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"reelcut/internal/config"
	"reelcut/internal/cropping"
	"reelcut/internal/logging"
	"reelcut/internal/media"
	"reelcut/internal/mediatool"
	"reelcut/internal/textutil"
	"reelcut/internal/transcode"
)

// Canonical output geometry for extracted vertical clips.
const (
	outputWidth     = 608
	outputHeight    = 1080
	outputFrameRate = 30
)

// ClipSpec is one requested sub-clip of a shared source, in seconds.
type ClipSpec struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// ExtractedClip describes one materialized sub-clip.
type ExtractedClip struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	StartTime  float64          `json:"startTime"`
	EndTime    float64          `json:"endTime"`
	Duration   float64          `json:"duration"`
	Filename   string           `json:"filename"`
	Path       string           `json:"path"`
	URL        string           `json:"url"`
	Resolution media.Resolution `json:"resolution"`
}

// Extractor derives many cropped vertical sub-clips from one shared source.
type Extractor struct {
	tool     *mediatool.Tool
	fetcher  *transcode.Fetcher
	clipsDir string
	tempDir  string
	baseURL  string
	logger   *slog.Logger
}

// NewExtractor wires an extractor from configuration.
func NewExtractor(cfg *config.Config, tool *mediatool.Tool, logger *slog.Logger) *Extractor {
	e := &Extractor{
		tool:     tool,
		fetcher:  transcode.NewFetcher(cfg.DownloadTimeout(), logger),
		clipsDir: cfg.Paths.ClipsDir,
		tempDir:  cfg.Paths.TempDir,
		baseURL:  cfg.Media.ClipsBaseURL,
		logger:   logging.NewComponentLogger(logger, "clipper"),
	}
	for _, dir := range []string{e.clipsDir, e.tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			e.logger.Warn("failed to create clips directory",
				logging.String(logging.FieldPath, dir), logging.Error(err))
		}
	}
	return e
}

// ProcessClips materializes the shared source once, probes it, and renders a
// cropped 9:16 sub-clip per spec. A single spec's failure is logged and its
// result omitted; siblings continue. The shared temp source is removed once
// every spec has been attempted.
func (e *Extractor) ProcessClips(ctx context.Context, sourceLocator string, specs []ClipSpec) ([]ExtractedClip, error) {
	e.logger.Info("processing clips",
		logging.String(logging.FieldLocator, sourceLocator),
		logging.Int("specs", len(specs)))

	sourcePath := filepath.Join(e.tempDir, "source_"+uuid.NewString()+".mp4")
	if err := e.materializeSource(ctx, sourceLocator, sourcePath); err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(sourcePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("failed to remove shared source",
				logging.String(logging.FieldPath, sourcePath), logging.Error(err))
		}
	}()

	probe, err := e.tool.Probe(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("probed shared source",
		logging.Int("width", probe.Width),
		logging.Int("height", probe.Height),
		logging.Float64("duration", probe.Duration))

	crop := cropping.Compute(probe.Width, probe.Height, cropping.VerticalAspect)

	results := make([]ExtractedClip, 0, len(specs))
	for _, spec := range specs {
		clip, err := e.extractOne(ctx, sourcePath, spec, crop, probe.Duration)
		if err != nil {
			e.logger.Warn("clip extraction failed, continuing",
				logging.String(logging.FieldClipID, spec.ID),
				logging.String("title", spec.Title),
				logging.Error(err))
			continue
		}
		results = append(results, clip)
	}

	e.logger.Info("clip processing complete",
		logging.Int("produced", len(results)),
		logging.Int("requested", len(specs)))
	return results, nil
}

func (e *Extractor) materializeSource(ctx context.Context, locator, dest string) error {
	if media.IsStreamManifest(locator) {
		return e.tool.Normalize(ctx, locator, dest, mediatool.NormalizeOptions{})
	}
	return e.fetcher.Download(ctx, locator, dest)
}

func (e *Extractor) extractOne(ctx context.Context, sourcePath string, spec ClipSpec, crop cropping.Window, sourceDuration float64) (ExtractedClip, error) {
	if spec.EndTime <= spec.StartTime {
		return ExtractedClip{}, mediatool.Wrap(mediatool.ErrValidation, "clipper", "extract",
			fmt.Sprintf("clip %s has non-positive span [%0.2f, %0.2f]", spec.ID, spec.StartTime, spec.EndTime), nil)
	}
	if sourceDuration > 0 && spec.StartTime >= sourceDuration {
		return ExtractedClip{}, mediatool.Wrap(mediatool.ErrValidation, "clipper", "extract",
			fmt.Sprintf("clip %s starts beyond source end (%0.2fs)", spec.ID, sourceDuration), nil)
	}

	end := spec.EndTime
	if sourceDuration > 0 && end > sourceDuration {
		end = sourceDuration
	}
	duration := end - spec.StartTime

	filename := fmt.Sprintf("%s_%s.mp4", textutil.SanitizeToken(spec.Title), shortID(spec.ID))
	outputPath := filepath.Join(e.clipsDir, filename)

	err := e.tool.ExtractClip(ctx, sourcePath, mediatool.ExtractArgs{
		Start:       spec.StartTime,
		Duration:    duration,
		Crop:        crop,
		ScaleWidth:  outputWidth,
		ScaleHeight: outputHeight,
		FrameRate:   outputFrameRate,
		Output:      outputPath,
	})
	if err != nil {
		_ = os.Remove(outputPath)
		return ExtractedClip{}, err
	}

	return ExtractedClip{
		ID:         spec.ID,
		Title:      spec.Title,
		StartTime:  spec.StartTime,
		EndTime:    end,
		Duration:   duration,
		Filename:   filename,
		Path:       outputPath,
		URL:        e.baseURL + "/" + filename,
		Resolution: media.Resolution{Width: outputWidth, Height: outputHeight},
	}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return uuid.NewString()[:8]
	}
	return id
}

// CleanupOldClips removes extracted clips older than maxAge from the clips
// directory, returning how many files were deleted.
func (e *Extractor) CleanupOldClips(maxAge time.Duration) int {
	entries, err := os.ReadDir(e.clipsDir)
	if err != nil {
		e.logger.Warn("clip cleanup failed", logging.Error(err))
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(e.clipsDir, entry.Name())
		if err := os.Remove(path); err != nil {
			e.logger.Warn("failed to remove old clip",
				logging.String(logging.FieldPath, path), logging.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		e.logger.Info("removed old clips", logging.Int("count", removed))
	}
	return removed
}
