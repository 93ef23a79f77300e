package cropping

import (
	"math"
	"testing"
)

func TestComputeLandscapeSource(t *testing.T) {
	got := Compute(1920, 1080, VerticalAspect)
	want := Window{Width: 608, Height: 1080, X: 656, Y: 0}
	if got != want {
		t.Fatalf("Compute(1920, 1080) = %+v, want %+v", got, want)
	}
}

func TestComputePortraitSource(t *testing.T) {
	got := Compute(1080, 2400, VerticalAspect)
	if got.Width != 1080 {
		t.Fatalf("expected full width kept, got %d", got.Width)
	}
	if got.Height != 1920 {
		t.Fatalf("expected height 1920, got %d", got.Height)
	}
	if got.X != 0 {
		t.Fatalf("expected zero x offset, got %d", got.X)
	}
	if got.Y != 240 {
		t.Fatalf("expected y offset 240, got %d", got.Y)
	}
}

func TestComputeExactAspectKeepsFrame(t *testing.T) {
	got := Compute(1080, 1920, VerticalAspect)
	want := Window{Width: 1080, Height: 1920, X: 0, Y: 0}
	if got != want {
		t.Fatalf("Compute(1080, 1920) = %+v, want %+v", got, want)
	}
}

func TestComputeWindowStaysInBounds(t *testing.T) {
	sizes := []struct{ w, h int }{
		{1920, 1080}, {1280, 720}, {3840, 2160}, {640, 480},
		{1080, 1920}, {720, 1280}, {601, 1071}, {1, 1}, {17, 31},
	}
	for _, s := range sizes {
		win := Compute(s.w, s.h, VerticalAspect)
		if win.Width <= 0 || win.Height <= 0 {
			t.Errorf("source %dx%d: non-positive window %+v", s.w, s.h, win)
			continue
		}
		if win.X+win.Width > s.w {
			t.Errorf("source %dx%d: window %+v exceeds width", s.w, s.h, win)
		}
		if win.Y+win.Height > s.h {
			t.Errorf("source %dx%d: window %+v exceeds height", s.w, s.h, win)
		}
	}
}

func TestComputeRatioWithinRoundingTolerance(t *testing.T) {
	const tolerance = 0.5 + 1e-9 // half a pixel on the rounded axis
	for w := 50; w <= 4000; w += 97 {
		for h := 50; h <= 4000; h += 103 {
			win := Compute(w, h, VerticalAspect)
			var diff float64
			if win.Height == h && win.Width != w {
				// Horizontal crop: width was rounded from h * aspect.
				diff = math.Abs(float64(win.Width) - float64(h)*VerticalAspect)
			} else {
				// Vertical crop: height was rounded from w / aspect.
				diff = math.Abs(float64(win.Height) - float64(w)/VerticalAspect)
			}
			if diff > tolerance {
				t.Fatalf("source %dx%d: window %+v off target aspect by %f pixels", w, h, win, diff)
			}
		}
	}
}

func TestFilterExpr(t *testing.T) {
	win := Window{Width: 608, Height: 1080, X: 656, Y: 0}
	if got := win.FilterExpr(); got != "crop=608:1080:656:0" {
		t.Fatalf("FilterExpr = %q", got)
	}
}
