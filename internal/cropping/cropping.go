// Package cropping computes centered crop windows for aspect-ratio
// conversion. The math is pure and deterministic so callers can rely on
// identical geometry for identical sources.
package cropping

import (
	"fmt"
	"math"
)

// VerticalAspect is the 9:16 portrait ratio produced for short-form output.
const VerticalAspect = 9.0 / 16.0

// Window describes a crop region within a source frame.
type Window struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// Compute returns the centered crop window that converts a source frame of
// the given dimensions to the target aspect ratio. Sources wider than the
// target keep full height and crop horizontally; sources that are too tall
// (or an exact match) keep full width and crop vertically.
func Compute(sourceWidth, sourceHeight int, targetAspect float64) Window {
	sourceAspect := float64(sourceWidth) / float64(sourceHeight)

	if sourceAspect > targetAspect {
		width := int(math.Round(float64(sourceHeight) * targetAspect))
		return Window{
			Width:  width,
			Height: sourceHeight,
			X:      int(math.Round(float64(sourceWidth-width) / 2)),
			Y:      0,
		}
	}

	height := int(math.Round(float64(sourceWidth) / targetAspect))
	return Window{
		Width:  sourceWidth,
		Height: height,
		X:      0,
		Y:      int(math.Round(float64(sourceHeight-height) / 2)),
	}
}

// FilterExpr renders the window as an ffmpeg crop filter expression.
func (w Window) FilterExpr() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", w.Width, w.Height, w.X, w.Y)
}
