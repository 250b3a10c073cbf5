package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"medrender/pkg/colormap"
	"medrender/pkg/imagedata"
)

// createTestImage builds a 2x2 image over the full 8-bit range
func createTestImage(t *testing.T) *imagedata.Image {
	t.Helper()
	img, err := imagedata.NewImage(2, 2, []int32{0, 85, 170, 255})
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	return img
}

// TestGrayscale verifies the frame is the per-pixel LUT lookup
func TestGrayscale(t *testing.T) {
	img := createTestImage(t)
	vp := &imagedata.Viewport{VOI: &imagedata.Window{Center: 128, Width: 256}}

	frame, err := Grayscale(img, vp, false)
	if err != nil {
		t.Fatalf("Grayscale failed: %v", err)
	}

	if frame.Bounds().Dx() != 2 || frame.Bounds().Dy() != 2 {
		t.Fatalf("Expected 2x2 frame, got %v", frame.Bounds())
	}

	// The frame must follow the stored-value order.
	if frame.GrayAt(0, 0).Y >= frame.GrayAt(1, 1).Y {
		t.Errorf("Expected darkest pixel at (0,0) and brightest at (1,1): %d vs %d",
			frame.GrayAt(0, 0).Y, frame.GrayAt(1, 1).Y)
	}

	// The render populates the image's cache; a repeat render reuses it.
	if img.CachedLUT() == nil {
		t.Error("Expected the display LUT to be cached after rendering")
	}
}

// TestGrayscaleInvert verifies the invert flag flips the frame
func TestGrayscaleInvert(t *testing.T) {
	img := createTestImage(t)

	normal, err := Grayscale(img, &imagedata.Viewport{
		VOI: &imagedata.Window{Center: 128, Width: 256},
	}, false)
	if err != nil {
		t.Fatalf("Grayscale failed: %v", err)
	}

	inverted, err := Grayscale(img, &imagedata.Viewport{
		VOI:    &imagedata.Window{Center: 128, Width: 256},
		Invert: true,
	}, false)
	if err != nil {
		t.Fatalf("Inverted grayscale failed: %v", err)
	}

	for i := range normal.Pix {
		if inverted.Pix[i] != 255-normal.Pix[i] {
			t.Fatalf("Pixel %d: expected %d, got %d", i, 255-normal.Pix[i], inverted.Pix[i])
		}
	}
}

// TestPseudo verifies pseudo-color output maps through the colormap table
func TestPseudo(t *testing.T) {
	img := createTestImage(t)
	vp := &imagedata.Viewport{VOI: &imagedata.Window{Center: 128, Width: 256}}

	frame, err := Pseudo(img, vp, colormap.Grayscale, false)
	if err != nil {
		t.Fatalf("Pseudo failed: %v", err)
	}

	// Under the grayscale map, pseudo-color output stays gray.
	c := frame.RGBAAt(1, 1)
	if c.R != c.G || c.G != c.B {
		t.Errorf("Expected gray output under the grayscale map, got %v", c)
	}
	if c.A != 255 {
		t.Errorf("Expected opaque output, got alpha %d", c.A)
	}

	// A chromatic map must not.
	frame, err = Pseudo(img, vp, colormap.PET, false)
	if err != nil {
		t.Fatalf("Pseudo with PET failed: %v", err)
	}

	chromatic := false
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			c := frame.RGBAAt(x, y)
			if c.R != c.G || c.G != c.B {
				chromatic = true
			}
		}
	}
	if !chromatic {
		t.Error("Expected chromatic output under the PET map")
	}
}

// TestOutOfRangeStoredValuesClamp verifies pixels mutated past the recorded
// extrema clamp to the darkest and brightest mapped values, not to the
// unwritten tail of a table sized against min(min, 0)
func TestOutOfRangeStoredValuesClamp(t *testing.T) {
	// All-positive minimum: the table is longer than the populated span.
	img, err := imagedata.NewImage(2, 2, []int32{10, 20, 30, 40})
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}

	img.StoredPixels[0] = 100 // above the recorded maximum
	img.StoredPixels[1] = -5  // below the recorded minimum

	vp := &imagedata.Viewport{VOI: &imagedata.Window{Center: 25, Width: 30}}
	frame, err := Grayscale(img, vp, false)
	if err != nil {
		t.Fatalf("Grayscale failed: %v", err)
	}

	// Window [10, 40]: the brightest mapped value is stored 40 at (1,1) and
	// the darkest is stored 10, which pixel (1,0) undershoots.
	if got, want := frame.GrayAt(0, 0).Y, frame.GrayAt(1, 1).Y; got != want {
		t.Errorf("Above-range pixel = %d, want the brightest mapped value %d", got, want)
	}
	if got := frame.GrayAt(1, 0).Y; got != 0 {
		t.Errorf("Below-range pixel = %d, want 0", got)
	}
	if frame.GrayAt(1, 1).Y != 255 {
		t.Errorf("Maximum stored value mapped to %d, want 255", frame.GrayAt(1, 1).Y)
	}
}

// TestRenderErrors verifies LUT failures propagate
func TestRenderErrors(t *testing.T) {
	img := createTestImage(t)
	bad := &imagedata.Viewport{VOI: &imagedata.Window{Center: 128, Width: -1}}

	if _, err := Grayscale(img, bad, false); err == nil {
		t.Error("Expected grayscale render to fail on a bad window")
	}

	if _, err := Pseudo(img, bad, colormap.Grayscale, false); err == nil {
		t.Error("Expected pseudo render to fail on a bad window")
	}

	if _, err := Grayscale(nil, &imagedata.Viewport{}, false); err == nil {
		t.Error("Expected grayscale render to fail on a nil image")
	}
}

// TestScale verifies resampling dimensions and guards
func TestScale(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))

	for _, mode := range []Interpolation{NearestNeighbor, Bilinear, CatmullRom} {
		dst, err := Scale(src, 8, 6, mode)
		if err != nil {
			t.Fatalf("Scale with mode %d failed: %v", mode, err)
		}
		if dst.Bounds().Dx() != 8 || dst.Bounds().Dy() != 6 {
			t.Errorf("Mode %d: expected 8x6 output, got %v", mode, dst.Bounds())
		}
	}

	if _, err := Scale(src, 0, 6, NearestNeighbor); err == nil {
		t.Error("Expected error for zero width")
	}

	if _, err := Scale(src, 8, -1, NearestNeighbor); err == nil {
		t.Error("Expected error for negative height")
	}

	if _, err := Scale(src, 8, 6, Interpolation(99)); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

// TestScalePreservesContent verifies nearest-neighbor upscaling replicates
// pixels
func TestScalePreservesContent(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(0, 0, color.Gray{Y: 10})
	src.SetGray(1, 0, color.Gray{Y: 240})

	dst, err := Scale(src, 4, 2, NearestNeighbor)
	if err != nil {
		t.Fatalf("Scale failed: %v", err)
	}

	rgba := dst.(*image.RGBA)
	if rgba.RGBAAt(0, 0).R != 10 {
		t.Errorf("Expected left half to stay 10, got %d", rgba.RGBAAt(0, 0).R)
	}
	if rgba.RGBAAt(3, 1).R != 240 {
		t.Errorf("Expected right half to stay 240, got %d", rgba.RGBAAt(3, 1).R)
	}
}

// TestParseInterpolation verifies the mode names
func TestParseInterpolation(t *testing.T) {
	for name, want := range map[string]Interpolation{
		"nearest":    NearestNeighbor,
		"Bilinear":   Bilinear,
		"CATMULLROM": CatmullRom,
	} {
		got, err := ParseInterpolation(name)
		if err != nil {
			t.Errorf("ParseInterpolation(%q) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseInterpolation(%q) = %d, want %d", name, got, want)
		}
	}

	if _, err := ParseInterpolation("bicubic"); err == nil {
		t.Error("Expected error for unknown mode name")
	}
}

// TestSaveImage verifies format selection by extension
func TestSaveImage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}

	frame := image.NewGray(image.Rect(0, 0, 4, 4))
	dir := t.TempDir()

	for _, name := range []string{"out.png", "out.jpg", "out.jpeg"} {
		path := filepath.Join(dir, name)
		if err := SaveImage(frame, path, 90); err != nil {
			t.Errorf("Failed to save %s: %v", name, err)
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("Expected %s to be written with content", name)
		}
	}

	if err := SaveImage(frame, filepath.Join(dir, "out.bmp"), 90); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}
