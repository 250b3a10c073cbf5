// Package lut builds and caches the display lookup tables that map stored
// pixel values to 8-bit display values on the CPU rendering path.
//
// Each image owns at most one cached table, guarded by a five-field validity
// check: window center, window width, invert flag and the two transform
// references must all match the cached record or the table is rebuilt in
// full. The cache performs no locking — rendering is single-writer per image,
// and callers sharing an image across goroutines must serialize calls
// themselves.
package lut

import (
	"fmt"

	"medrender/pkg/imagedata"
	"medrender/pkg/voi"
)

// matches reports whether the cached record can serve the viewport's current
// parameters. A viewport without a window stays window-less only when a VOI
// data LUT replaces the window function; its record carries a zero window.
// Otherwise auto-derivation fills the window in on the miss path, so a
// window-less viewport never matches.
func matches(rec *imagedata.CachedLUT, vp *imagedata.Viewport) bool {
	if rec == nil {
		return false
	}

	var center, width float64
	if vp.VOI != nil {
		center, width = vp.VOI.Center, vp.VOI.Width
	} else if vp.VOILUT == nil || len(vp.VOILUT.Data) == 0 {
		return false
	}

	return rec.WindowCenter == center &&
		rec.WindowWidth == width &&
		rec.Invert == vp.Invert &&
		rec.ModalityLUT.Matches(vp.ModalityLUT) &&
		rec.VOILUT.Matches(vp.VOILUT)
}

// Get returns the display lookup table for the image under the viewport's
// parameters, regenerating it only when the cached record no longer applies.
//
// On a hit the cached table is returned as is, with no side effects. On a
// miss the automatic window derivation runs first — it may set vp.VOI in
// place — so generation sees the final parameters; the image's record is then
// replaced wholesale. Setting invalidated forces regeneration even when every
// compared field matches, for mutations the cache cannot observe (a transform
// whose contents changed behind an unchanged reference, rescaled pixel data,
// and the like).
//
// Get defines no errors of its own; failures from the generation step
// propagate unchanged.
func Get(img *imagedata.Image, vp *imagedata.Viewport, invalidated bool) ([]uint8, error) {
	if img == nil {
		return nil, fmt.Errorf("lut: nil image")
	}
	if vp == nil {
		return nil, fmt.Errorf("lut: nil viewport")
	}

	if rec := img.CachedLUT(); !invalidated && matches(rec, vp) {
		return rec.Table, nil
	}

	voi.ApplyAuto(vp, img)

	var center, width float64
	if vp.VOI != nil {
		center, width = vp.VOI.Center, vp.VOI.Width
	}

	table, err := Generate(img, width, center, vp.Invert, vp.ModalityLUT, vp.VOILUT)
	if err != nil {
		return nil, err
	}

	img.SetCachedLUT(&imagedata.CachedLUT{
		WindowCenter: center,
		WindowWidth:  width,
		Invert:       vp.Invert,
		ModalityLUT:  vp.ModalityLUT,
		VOILUT:       vp.VOILUT,
		Table:        table,
	})

	return table, nil
}
