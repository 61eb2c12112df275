package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// neighbors4 lists the 4-connected neighbor offsets (left, right, up, down).
var neighbors4 = [4]image.Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

// ownedCopy returns a zero-origin NRGBA copy of img that the caller owns
// exclusively. Straight (non-premultiplied) alpha is preserved exactly.
func ownedCopy(img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil image")
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "image is %dx%d", b.Dx(), b.Dy())
	}
	return imaging.Clone(img), nil
}

// nrgbaAt reads the straight-alpha color at (x, y) of a zero-origin buffer.
func nrgbaAt(img *image.NRGBA, x, y int) color.NRGBA {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// alphaAt returns the alpha channel value at (x, y).
func alphaAt(img *image.NRGBA, x, y int) uint8 {
	return img.Pix[img.PixOffset(x, y)+3]
}

// clearAlpha zeroes the alpha of (x, y), leaving RGB untouched.
func clearAlpha(img *image.NRGBA, x, y int) {
	img.Pix[img.PixOffset(x, y)+3] = 0
}

// alphaPlane copies the alpha channel into a row-major w*h slice.
// Morphological passes read neighbors from this snapshot so that a pass is
// independent of scan order.
func alphaPlane(img *image.NRGBA) []uint8 {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	plane := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			plane[y*w+x] = row[x*4+3]
		}
	}
	return plane
}

// toColorful converts an 8-bit color to go-colorful's [0,1] representation.
func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// mustHex parses a "#RRGGBB" literal and panics when it is malformed.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// rgbDistance is the Euclidean distance between two colors over 8-bit
// (R, G, B), in the range 0 to ~441.7. Alpha is ignored.
func rgbDistance(a, b colorful.Color) float64 {
	return a.DistanceRgb(b) * 255.0
}

// inBounds reports whether (x, y) lies inside a w*h buffer.
func inBounds(x, y, w, h int) bool {
	return x >= 0 && y >= 0 && x < w && y < h
}

// clamp restricts val to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
