// Package imagedata defines the image and view-parameter types shared by the
// display pipeline: the grayscale frame with its acquisition metadata, the
// viewport state that drives display LUT generation, and the cached LUT
// record an image carries between renders.
package imagedata

import (
	"fmt"
)

// Image represents a single grayscale frame together with the acquisition
// metadata needed to map stored pixel values to display values.
type Image struct {
	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int

	// StoredPixels holds the raw stored pixel values in row-major order.
	// Values are kept as int32 so both signed and unsigned 16-bit
	// acquisitions fit without loss.
	StoredPixels []int32

	// MinPixelValue and MaxPixelValue are the smallest and largest stored
	// pixel values in the frame. They bound the input range of the display
	// lookup table.
	MinPixelValue int
	MaxPixelValue int

	// Slope and Intercept define the linear modality rescale
	// (modality value = stored*Slope + Intercept) applied when the viewport
	// carries no modality LUT. NewImage defaults them to 1 and 0.
	Slope     float64
	Intercept float64

	// cachedLUT is the single memoized display LUT record for this image.
	// Only the lut package writes it; see lut.Get.
	cachedLUT *CachedLUT
}

// NewImage builds an Image from row-major stored pixel values, taking
// ownership of the slice. Min and max pixel values are computed from the
// data; the modality rescale defaults to identity.
func NewImage(width, height int, pixels []int32) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image dimensions %dx%d must be positive", width, height)
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("pixel count %d does not match dimensions %dx%d", len(pixels), width, height)
	}

	minValue, maxValue := pixels[0], pixels[0]
	for _, p := range pixels[1:] {
		if p < minValue {
			minValue = p
		}
		if p > maxValue {
			maxValue = p
		}
	}

	return &Image{
		Width:         width,
		Height:        height,
		StoredPixels:  pixels,
		MinPixelValue: int(minValue),
		MaxPixelValue: int(maxValue),
		Slope:         1,
		Intercept:     0,
	}, nil
}

// CachedLUT returns the image's current display LUT record, or nil when no
// table has been generated yet.
func (img *Image) CachedLUT() *CachedLUT {
	return img.cachedLUT
}

// SetCachedLUT replaces the image's display LUT record wholesale. The record
// is stored by pointer, so the swap is a single write and a reader never sees
// a half-updated record.
func (img *Image) SetCachedLUT(rec *CachedLUT) {
	img.cachedLUT = rec
}

// Window is a VOI (value of interest) window: the intensity range mapped to
// the visible output range, expressed as a center/width pair.
type Window struct {
	// Center is the intensity at the middle of the visible range.
	Center float64

	// Width is the span of intensities mapped across the visible range.
	Width float64
}

// Viewport holds the view parameters that drive display LUT generation.
// It is plain state; synchronization between a viewport owner and the
// rendering path is the caller's concern.
type Viewport struct {
	// VOI is the window applied after the modality transform. A nil VOI
	// means no window was set explicitly and auto-derivation fills it in
	// (see voi.ApplyAuto).
	VOI *Window

	// Invert flips the display range (white-on-black vs black-on-white).
	Invert bool

	// ModalityLUT, when non-nil, replaces the image's linear Slope/Intercept
	// rescale with a data lookup table.
	ModalityLUT *LUT

	// VOILUT, when non-nil, replaces the linear window function with a data
	// lookup table.
	VOILUT *LUT
}

// CachedLUT is the memoized display LUT record owned by an Image. It captures
// the five view parameters the table was generated from plus the table
// itself. Records are immutable once stored: invalidation replaces the whole
// record rather than patching fields.
type CachedLUT struct {
	// WindowCenter and WindowWidth are the window the table was built with.
	WindowCenter float64
	WindowWidth  float64

	// Invert records whether the table maps min intensity to white.
	Invert bool

	// ModalityLUT and VOILUT are the transform references used, nil when the
	// linear paths were taken.
	ModalityLUT *LUT
	VOILUT      *LUT

	// Table maps stored pixel values, offset by the image's MinPixelValue,
	// to 8-bit display values.
	Table []uint8
}
