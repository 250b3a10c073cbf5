// Package colormap provides display colormaps for pseudo-color rendering of
// grayscale medical images. A colormap is a sequence of color stops along
// [0, 1]; sampling interpolates between adjacent stops in CIE Lab space so
// ramps stay perceptually even.
package colormap

import (
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Stop is a color anchored at an offset along the colormap.
type Stop struct {
	// Offset is the position of the stop in [0, 1]. Values outside the range
	// are clamped during sampling.
	Offset float64

	// Color is the display color at the offset. Alpha is ignored; sampled
	// tables are fully opaque.
	Color color.RGBA
}

// Map is a named colormap defined by its stops.
type Map struct {
	Name  string
	Stops []Stop
}

// clamp01 limits t to [0, 1]
func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// sortedStops returns the map's stops ordered by offset, offsets clamped to
// [0, 1]. The map itself is not modified.
func (m Map) sortedStops() []Stop {
	stops := make([]Stop, len(m.Stops))
	copy(stops, m.Stops)
	for i := range stops {
		stops[i].Offset = clamp01(stops[i].Offset)
	}
	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].Offset < stops[j].Offset
	})
	return stops
}

// blend interpolates between two colors in CIE Lab space
func blend(a, b color.RGBA, t float64) color.RGBA {
	ca, _ := colorful.MakeColor(color.NRGBA{R: a.R, G: a.G, B: a.B, A: 255})
	cb, _ := colorful.MakeColor(color.NRGBA{R: b.R, G: b.G, B: b.B, A: 255})
	mixed := ca.BlendLab(cb, t).Clamped()
	r, g, bl := mixed.RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: 255}
}

// At samples the colormap at position t in [0, 1]. Positions before the first
// stop or after the last take the edge stop's color. An empty map samples
// transparent black; a single-stop map is constant.
func (m Map) At(t float64) color.RGBA {
	stops := m.sortedStops()
	if len(stops) == 0 {
		return color.RGBA{}
	}

	t = clamp01(t)
	if t <= stops[0].Offset {
		return opaque(stops[0].Color)
	}
	last := stops[len(stops)-1]
	if t >= last.Offset {
		return opaque(last.Color)
	}

	for i := 1; i < len(stops); i++ {
		if t > stops[i].Offset {
			continue
		}
		prev, next := stops[i-1], stops[i]
		span := next.Offset - prev.Offset
		if span <= 0 {
			return opaque(next.Color)
		}
		frac := (t - prev.Offset) / span
		if frac <= 0 {
			return opaque(prev.Color)
		}
		if frac >= 1 {
			return opaque(next.Color)
		}
		return blend(prev.Color, next.Color, frac)
	}

	return opaque(last.Color)
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 255
	return c
}

// Table samples the colormap into an n-entry table, entry i at position
// i/(n-1). Display pipelines index it with an 8-bit LUT output (n = 256).
// For n < 1, Table returns nil.
func (m Map) Table(n int) []color.RGBA {
	if n < 1 {
		return nil
	}

	table := make([]color.RGBA, n)
	if n == 1 {
		table[0] = m.At(0)
		return table
	}

	for i := range table {
		table[i] = m.At(float64(i) / float64(n-1))
	}
	return table
}
