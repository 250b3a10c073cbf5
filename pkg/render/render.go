// Package render produces display frames on the CPU fallback path: stored
// pixel values are mapped through the cached display LUT into 8-bit
// grayscale or pseudo-color buffers, with optional output scaling.
package render

import (
	"fmt"
	"image"

	"medrender/pkg/colormap"
	"medrender/pkg/imagedata"
	"medrender/pkg/lut"
)

// tableIndex maps a stored pixel value to its display LUT index, clamping
// values outside [minPixel, maxPixel] to the populated table ends. The table
// can be longer than maxIdx+1 (its length is computed against min(min, 0)),
// so clamping to the table length would land on unwritten zero entries.
// Out-of-range values can only appear when pixel data was mutated after the
// image's extrema were computed.
func tableIndex(stored int32, minPixel, maxIdx int) int {
	idx := int(stored) - minPixel
	if idx < 0 {
		return 0
	}
	if idx > maxIdx {
		return maxIdx
	}
	return idx
}

// Grayscale renders the image into an 8-bit grayscale frame under the
// viewport's window/level state. The display LUT is fetched through the
// per-image cache; pass invalidated to force regeneration after mutations
// the cache cannot observe.
func Grayscale(img *imagedata.Image, vp *imagedata.Viewport, invalidated bool) (*image.Gray, error) {
	table, err := lut.Get(img, vp, invalidated)
	if err != nil {
		return nil, fmt.Errorf("rendering grayscale frame: %w", err)
	}

	frame := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	minPixel := img.MinPixelValue
	maxIdx := img.MaxPixelValue - minPixel
	for i, stored := range img.StoredPixels {
		frame.Pix[i] = table[tableIndex(stored, minPixel, maxIdx)]
	}

	return frame, nil
}

// Pseudo renders the image into a pseudo-color frame: the display LUT output
// indexes a 256-entry table sampled from the colormap. Invert is applied by
// the display LUT, so the colormap itself is used as defined.
func Pseudo(img *imagedata.Image, vp *imagedata.Viewport, cm colormap.Map, invalidated bool) (*image.RGBA, error) {
	table, err := lut.Get(img, vp, invalidated)
	if err != nil {
		return nil, fmt.Errorf("rendering pseudo-color frame: %w", err)
	}

	colors := cm.Table(256)
	frame := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	minPixel := img.MinPixelValue
	maxIdx := img.MaxPixelValue - minPixel
	for i, stored := range img.StoredPixels {
		c := colors[table[tableIndex(stored, minPixel, maxIdx)]]
		frame.Pix[i*4] = c.R
		frame.Pix[i*4+1] = c.G
		frame.Pix[i*4+2] = c.B
		frame.Pix[i*4+3] = c.A
	}

	return frame, nil
}
