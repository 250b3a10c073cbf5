package lut

import (
	"fmt"
	"math"

	"medrender/pkg/imagedata"
)

// maxTableLen bounds the display LUT allocation. Stored pixel ranges beyond
// this exceed any 16-bit acquisition and indicate corrupt metadata.
const maxTableLen = 1 << 20

// modalityFunc returns the stored-value to modality-value mapping: the data
// LUT with edge clamping when one is attached, the image's linear
// Slope/Intercept rescale otherwise.
func modalityFunc(img *imagedata.Image, mlut *imagedata.LUT) func(int) float64 {
	if mlut != nil {
		first := mlut.FirstValueMapped
		data := mlut.Data
		lowest := float64(data[0])
		highest := float64(data[len(data)-1])

		return func(stored int) float64 {
			idx := stored - first
			if idx < 0 {
				return lowest
			}
			if idx >= len(data) {
				return highest
			}
			return float64(data[idx])
		}
	}

	slope, intercept := img.Slope, img.Intercept
	return func(stored int) float64 {
		return float64(stored)*slope + intercept
	}
}

// voiFunc returns the modality-value to display-value mapping. With a VOI
// data LUT attached, entries are shifted down to 8 bits and inputs outside
// the mapped range clamp to the table edges. Otherwise the linear window
// function maps the window span across [0, 255].
func voiFunc(windowWidth, windowCenter float64, vlut *imagedata.LUT) func(float64) float64 {
	if vlut != nil {
		var shift uint
		if vlut.BitsPerEntry > 8 {
			shift = uint(vlut.BitsPerEntry - 8)
		}
		data := vlut.Data
		first := vlut.FirstValueMapped
		last := first + len(data) - 1
		lowest := float64(data[0] >> shift)
		highest := float64(data[len(data)-1] >> shift)

		return func(modality float64) float64 {
			if modality < float64(first) {
				return lowest
			}
			if modality >= float64(last) {
				return highest
			}
			return float64(data[int(math.Round(modality))-first] >> shift)
		}
	}

	return func(modality float64) float64 {
		return ((modality-windowCenter)/windowWidth + 0.5) * 255
	}
}

// Generate builds the full display lookup table for the given view
// parameters. The table has one entry per stored intensity level, indexed by
// storedValue - MinPixelValue, and maps through the modality transform, the
// VOI transform, clamping to [0, 255] and optional inversion. Generate
// returns the table without touching the image's cache slot; storing it is
// the caller's concern.
func Generate(img *imagedata.Image, windowWidth, windowCenter float64, invert bool, mlut, vlut *imagedata.LUT) ([]uint8, error) {
	if img == nil {
		return nil, fmt.Errorf("lut: nil image")
	}
	if len(img.StoredPixels) == 0 {
		return nil, fmt.Errorf("lut: image has no pixel data")
	}
	if vlut == nil && windowWidth <= 0 {
		return nil, fmt.Errorf("lut: window width must be positive, got %g", windowWidth)
	}
	if mlut != nil && len(mlut.Data) == 0 {
		return nil, fmt.Errorf("lut: modality LUT %q has no data", mlut.ID)
	}
	if vlut != nil && len(vlut.Data) == 0 {
		return nil, fmt.Errorf("lut: VOI LUT %q has no data", vlut.ID)
	}

	minPixel, maxPixel := img.MinPixelValue, img.MaxPixelValue
	length := maxPixel - min(minPixel, 0) + 1
	if length <= 0 || length > maxTableLen {
		return nil, fmt.Errorf("lut: stored pixel range [%d, %d] out of bounds", minPixel, maxPixel)
	}

	table := make([]uint8, length)
	modality := modalityFunc(img, mlut)
	display := voiFunc(windowWidth, windowCenter, vlut)

	for stored := minPixel; stored <= maxPixel; stored++ {
		value := display(modality(stored))
		clamped := math.Min(math.Max(value, 0), 255)
		quantized := uint8(math.Round(clamped))
		if invert {
			quantized = 255 - quantized
		}
		table[stored-minPixel] = quantized
	}

	return table, nil
}
