package imageprocessor

import (
	"image"
	"image/color"

	"sketchmatch/bitmap"

	xdraw "golang.org/x/image/draw"
)

// Threshold is the grayscale intensity a pixel must exceed to be on
const Threshold = 127

// Normalize converts an image of any size and color model into a
// GridSize x GridSize binary bitmap: grayscale, nearest-neighbour resize,
// then threshold. It is a pure function of the pixels.
func Normalize(img image.Image) bitmap.Bitmap {
	out := bitmap.Empty()
	if img == nil || img.Bounds().Empty() {
		return out
	}

	gray := toGray(img)

	small := image.NewGray(image.Rect(0, 0, bitmap.GridSize, bitmap.GridSize))
	xdraw.NearestNeighbor.Scale(small, small.Bounds(), gray, gray.Bounds(), xdraw.Src, nil)

	for y := 0; y < bitmap.GridSize; y++ {
		for x := 0; x < bitmap.GridSize; x++ {
			if small.GrayAt(x, y).Y > Threshold {
				out.Set(x, y, true)
			}
		}
	}
	return out
}

// toGray reduces an image to 8-bit luma. Alpha is dropped rather than
// premultiplied, so a transparent white pixel stays white.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}

	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			gray.SetGray(x, y, color.Gray{Y: luma(c.R, c.G, c.B)})
		}
	}
	return gray
}

// luma applies the ITU-R 601-2 transform in 16.16 fixed point
func luma(r, g, b uint8) uint8 {
	y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
	return uint8(y)
}
