package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// Interpolation selects the resampling kernel used by Scale.
type Interpolation int

const (
	// NearestNeighbor preserves hard pixel edges; the usual choice when
	// inspecting individual pixels.
	NearestNeighbor Interpolation = iota

	// Bilinear is the fast smooth option.
	Bilinear

	// CatmullRom is the high-quality smooth option.
	CatmullRom
)

// ParseInterpolation maps a mode name to its Interpolation.
func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToLower(name) {
	case "nearest":
		return NearestNeighbor, nil
	case "bilinear":
		return Bilinear, nil
	case "catmullrom":
		return CatmullRom, nil
	default:
		return 0, fmt.Errorf("unknown interpolation mode %q (nearest, bilinear, catmullrom)", name)
	}
}

// Scale resamples src to width x height using the given interpolation mode.
func Scale(src image.Image, width, height int, mode Interpolation) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scale dimensions %dx%d must be positive", width, height)
	}

	var kernel draw.Interpolator
	switch mode {
	case NearestNeighbor:
		kernel = draw.NearestNeighbor
	case Bilinear:
		kernel = draw.ApproxBiLinear
	case CatmullRom:
		kernel = draw.CatmullRom
	default:
		return nil, fmt.Errorf("unknown interpolation mode %d", mode)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	kernel.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// SaveImage writes the frame to disk, choosing the encoder by file
// extension: .png, or .jpg/.jpeg with the given quality.
func SaveImage(img image.Image, filename string, jpegQuality int) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".png":
		err = png.Encode(file, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return fmt.Errorf("unsupported output format %q (use .png, .jpg or .jpeg)", ext)
	}

	if err != nil {
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	return nil
}
