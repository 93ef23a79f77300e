package mediatool

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"reelcut/internal/config"
	"reelcut/internal/cropping"
	"reelcut/internal/logging"
)

// Tool wraps the external ffmpeg/ffprobe binaries behind typed operations.
type Tool struct {
	ffmpeg  string
	ffprobe string
	runner  Runner
	logger  *slog.Logger
}

// New builds a Tool from configuration using the real subprocess runner.
func New(cfg *config.Config, logger *slog.Logger) *Tool {
	return NewWithRunner(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary, ExecRunner{}, logger)
}

// NewWithRunner builds a Tool with an explicit runner; tests use this to stub
// subprocess invocations.
func NewWithRunner(ffmpegBinary, ffprobeBinary string, runner Runner, logger *slog.Logger) *Tool {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Tool{
		ffmpeg:  ffmpegBinary,
		ffprobe: ffprobeBinary,
		runner:  runner,
		logger:  logging.NewComponentLogger(logger, "mediatool"),
	}
}

// NormalizeOptions tune the web-playable normalization encode.
type NormalizeOptions struct {
	// BaselineProfile constrains the encode to H.264 baseline level 3.0 for
	// maximum playback compatibility; used when reading segmented sources.
	BaselineProfile bool
}

// Normalize re-encodes input into a single seekable MP4 at output using a
// conservative, broadly compatible profile. The container index is relocated
// to the file head so the result streams over plain HTTP range requests.
func (t *Tool) Normalize(ctx context.Context, input, output string, opts NormalizeOptions) error {
	args := []string{
		"-y",
		"-i", input,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
	}
	if opts.BaselineProfile {
		args = append(args, "-profile:v", "baseline", "-level", "3.0")
	}
	args = append(args, "-f", "mp4", output)

	t.logger.Debug("normalizing media",
		logging.String("input", input),
		logging.String("output", output))

	if _, err := t.runner.Run(ctx, t.ffmpeg, args...); err != nil {
		return Wrap(ErrExternalTool, "mediatool", "normalize", "", err)
	}
	return nil
}

// ExtractArgs describes one cropped sub-clip render.
type ExtractArgs struct {
	Start       float64
	Duration    float64
	Crop        cropping.Window
	ScaleWidth  int
	ScaleHeight int
	FrameRate   int
	Output      string
}

// ExtractClip seeks into input and renders one cropped, scaled, re-encoded
// sub-clip to args.Output.
func (t *Tool) ExtractClip(ctx context.Context, input string, args ExtractArgs) error {
	filter := fmt.Sprintf("%s,scale=%d:%d", args.Crop.FilterExpr(), args.ScaleWidth, args.ScaleHeight)
	cmdArgs := []string{
		"-y",
		"-ss", formatSeconds(args.Start),
		"-t", formatSeconds(args.Duration),
		"-i", input,
		"-vf", filter,
		"-r", strconv.Itoa(args.FrameRate),
		"-c:v", "libx264",
		"-b:v", "1000k",
		"-c:a", "aac",
		"-b:a", "128k",
		args.Output,
	}

	t.logger.Debug("extracting clip",
		logging.String("input", input),
		logging.String("output", args.Output),
		logging.Float64("start", args.Start),
		logging.Float64("duration", args.Duration))

	if _, err := t.runner.Run(ctx, t.ffmpeg, cmdArgs...); err != nil {
		return Wrap(ErrExternalTool, "mediatool", "extract clip", "", err)
	}
	return nil
}

// Thumbnail renders a single 320x240 frame from input at the given offset.
func (t *Tool) Thumbnail(ctx context.Context, input, output string, atSeconds float64) error {
	args := []string{
		"-y",
		"-ss", formatSeconds(atSeconds),
		"-i", input,
		"-frames:v", "1",
		"-vf", "scale=320:240",
		output,
	}
	if _, err := t.runner.Run(ctx, t.ffmpeg, args...); err != nil {
		return Wrap(ErrExternalTool, "mediatool", "thumbnail", "", err)
	}
	return nil
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
