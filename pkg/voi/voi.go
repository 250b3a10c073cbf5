// Package voi derives and manipulates VOI windows: the center/width pairs
// that select which intensity span of an image is mapped to the visible
// display range.
package voi

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"medrender/pkg/imagedata"
)

// ApplyAuto fills in the viewport's window from the image when the caller
// did not set one explicitly. Explicit windows are never modified, and a
// viewport carrying a non-empty VOI data LUT is left alone too: the data LUT
// replaces the window function entirely, so deriving a window there would be
// a pointless mutation. The derived window spans the full stored range
// mapped through the linear modality rescale, so it is expressed in modality
// values exactly as an explicit window would be.
func ApplyAuto(vp *imagedata.Viewport, img *imagedata.Image) {
	if vp == nil || img == nil || vp.VOI != nil {
		return
	}
	if vp.VOILUT != nil && len(vp.VOILUT.Data) > 0 {
		return
	}
	w := Auto(img)
	vp.VOI = &w
}

// Auto derives a full-range window from the image's stored extrema mapped
// through the linear Slope/Intercept rescale. A descending rescale (negative
// slope) still yields a positive width.
func Auto(img *imagedata.Image) imagedata.Window {
	low := float64(img.MinPixelValue)*img.Slope + img.Intercept
	high := float64(img.MaxPixelValue)*img.Slope + img.Intercept
	if low > high {
		low, high = high, low
	}
	return imagedata.Window{
		Center: (low + high) / 2,
		Width:  high - low,
	}
}

// AutoPercentile derives a window from the given quantiles of the
// modality-rescaled pixel distribution. Trimming the tails keeps hot pixels
// and empty background from blowing the window out on noisy acquisitions.
// Quantile bounds must satisfy 0 <= lower < upper <= 1.
func AutoPercentile(img *imagedata.Image, lower, upper float64) (imagedata.Window, error) {
	if img == nil || len(img.StoredPixels) == 0 {
		return imagedata.Window{}, fmt.Errorf("voi: image has no pixel data")
	}
	if lower < 0 || upper > 1 || lower >= upper {
		return imagedata.Window{}, fmt.Errorf("voi: quantile bounds [%g, %g] invalid", lower, upper)
	}

	values := make([]float64, len(img.StoredPixels))
	for i, p := range img.StoredPixels {
		values[i] = float64(p)*img.Slope + img.Intercept
	}
	sort.Float64s(values)

	low := stat.Quantile(lower, stat.Empirical, values, nil)
	high := stat.Quantile(upper, stat.Empirical, values, nil)
	if low > high {
		low, high = high, low
	}

	return imagedata.Window{
		Center: (low + high) / 2,
		Width:  high - low,
	}, nil
}

// Range returns the intensity span covered by a window: the values mapped to
// the darkest and brightest display levels.
func Range(w imagedata.Window) (low, high float64) {
	half := w.Width / 2
	return w.Center - half, w.Center + half
}
