package imagedata

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
)

// FromGray converts a decoded image into an Image of stored pixel values.
// Gray and Gray16 sources are taken verbatim (8-bit and 16-bit ranges);
// anything else is reduced to 16-bit luminance first. The modality rescale
// defaults to identity; set Slope and Intercept afterwards when the source
// has one.
func FromGray(src image.Image) (*Image, error) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("source image has empty bounds %v", bounds)
	}

	pixels := make([]int32, width*height)

	switch img := src.(type) {
	case *image.Gray:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pixels[y*width+x] = int32(img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	case *image.Gray16:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pixels[y*width+x] = int32(img.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				g := color.Gray16Model.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
				pixels[y*width+x] = int32(g.Y)
			}
		}
	}

	return NewImage(width, height, pixels)
}

// ReadRaw reads width*height little-endian 16-bit pixel values from r.
// When signed is set the values are interpreted as two's-complement int16,
// otherwise as uint16.
func ReadRaw(r io.Reader, width, height int, signed bool) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raw dimensions %dx%d must be positive", width, height)
	}

	buf := make([]byte, width*height*2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading raw pixel data: %w", err)
	}

	pixels := make([]int32, width*height)
	for i := range pixels {
		v := binary.LittleEndian.Uint16(buf[i*2:])
		if signed {
			pixels[i] = int32(int16(v))
		} else {
			pixels[i] = int32(v)
		}
	}

	return NewImage(width, height, pixels)
}
