// Package colorbar renders the color-scale strip shown beside a viewport: a
// gradient over the active colormap, annotated with the intensity values the
// current VOI window maps to the display range.
package colorbar

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"medrender/pkg/colormap"
	"medrender/pkg/imagedata"
	"medrender/pkg/voi"
)

// Colorbar describes a color-scale strip. Fields may be adjusted freely
// between renders.
type Colorbar struct {
	// Map is the colormap the strip samples.
	Map colormap.Map

	// Width and Height are the output dimensions in pixels.
	Width  int
	Height int

	// Vertical lays the gradient out along the Y axis, brightest at the top.
	// Horizontal bars run brightest to the right.
	Vertical bool

	// TickCount is the number of labeled positions including both endpoints.
	// Values below 2 render the bare gradient.
	TickCount int

	// ShowLabels draws the intensity value next to each tick.
	ShowLabels bool
}

// New creates a colorbar over the given colormap with the default tick
// layout. Adjust the exported fields before Render to change it.
func New(cm colormap.Map, width, height int) *Colorbar {
	return &Colorbar{
		Map:        cm,
		Width:      width,
		Height:     height,
		Vertical:   height > width,
		TickCount:  5,
		ShowLabels: true,
	}
}

// tickColor contrasts against both gradient ends
var tickColor = color.RGBA{R: 255, G: 80, B: 80, A: 255}

// Render draws the strip for the viewport's current state. The gradient
// follows the viewport's invert flag, and tick labels span the VOI window's
// intensity range. The viewport must carry a window: callers resolve
// auto-windowing before rendering, the same way the display path does.
func (c *Colorbar) Render(vp *imagedata.Viewport) (*image.RGBA, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("colorbar dimensions %dx%d must be positive", c.Width, c.Height)
	}
	if vp == nil || vp.VOI == nil {
		return nil, fmt.Errorf("colorbar: viewport has no VOI window")
	}

	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))

	span := c.Width
	if c.Vertical {
		span = c.Height
	}

	for pos := 0; pos < span; pos++ {
		t := float64(pos) / float64(span-1)
		if span == 1 {
			t = 0
		}
		// Fraction of the window, 0 at the dark end of the scale.
		frac := t
		if c.Vertical {
			frac = 1 - t
		}
		if vp.Invert {
			frac = 1 - frac
		}

		col := c.Map.At(frac)
		if c.Vertical {
			for x := 0; x < c.Width; x++ {
				img.SetRGBA(x, pos, col)
			}
		} else {
			for y := 0; y < c.Height; y++ {
				img.SetRGBA(pos, y, col)
			}
		}
	}

	if c.TickCount >= 2 {
		c.drawTicks(img, vp)
	}

	return img, nil
}

// drawTicks marks TickCount evenly spaced positions and labels them with the
// intensity values of the window span.
func (c *Colorbar) drawTicks(img *image.RGBA, vp *imagedata.Viewport) {
	low, high := voi.Range(*vp.VOI)

	span := c.Width
	if c.Vertical {
		span = c.Height
	}

	for i := 0; i < c.TickCount; i++ {
		frac := float64(i) / float64(c.TickCount-1)
		value := low + frac*(high-low)

		// Position of this value along the strip.
		t := frac
		if c.Vertical {
			t = 1 - frac
		}
		pos := int(t * float64(span-1))

		c.drawTick(img, pos)
		if c.ShowLabels {
			c.drawLabel(img, pos, value)
		}
	}
}

// drawTick draws a short mark across the strip's near edge at pos
func (c *Colorbar) drawTick(img *image.RGBA, pos int) {
	const tickLen = 4
	if c.Vertical {
		for x := 0; x < tickLen && x < c.Width; x++ {
			img.SetRGBA(x, pos, tickColor)
		}
	} else {
		for y := 0; y < tickLen && y < c.Height; y++ {
			img.SetRGBA(pos, y, tickColor)
		}
	}
}

// drawLabel writes the intensity value near the tick using the built-in
// 7x13 face. Labels that would fall outside the strip are pulled inside.
func (c *Colorbar) drawLabel(img *image.RGBA, pos int, value float64) {
	face := basicfont.Face7x13
	label := strconv.FormatFloat(value, 'f', -1, 64)
	labelWidth := font.MeasureString(face, label).Ceil()

	var x, y int
	if c.Vertical {
		x = 6
		y = pos + face.Ascent/2
		if y < face.Ascent {
			y = face.Ascent
		}
		if y > c.Height-1 {
			y = c.Height - 1
		}
	} else {
		x = pos - labelWidth/2
		if x < 0 {
			x = 0
		}
		if x+labelWidth > c.Width {
			x = c.Width - labelWidth
		}
		y = 6 + face.Ascent
		if y > c.Height-1 {
			y = c.Height - 1
		}
	}

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(tickColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}
