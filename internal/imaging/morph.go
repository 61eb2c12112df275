package imaging

import (
	"image"

	"github.com/pkg/errors"
)

// Refiner presets offered by the tools.
const (
	RefineLight = 1
	RefineHeavy = 3
)

// Erode shrinks the opaque region of img by iterations pixels.
//
// On each iteration every pixel with alpha > 0 that touches a transparent
// 4-neighbor, or that lies on the image border, becomes fully transparent.
// Neighbors are read from a snapshot of the previous generation, so a pass
// never sees its own writes. RGB is left untouched.
//
// Returns ErrInvalidArgument when iterations < 1.
func Erode(img image.Image, iterations int) (*image.NRGBA, error) {
	if iterations < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "erode iterations %d", iterations)
	}
	dst, err := ownedCopy(img)
	if err != nil {
		return nil, err
	}

	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	for i := 0; i < iterations; i++ {
		prev := alphaPlane(dst)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if prev[y*w+x] == 0 {
					continue
				}
				if x == 0 || y == 0 || x == w-1 || y == h-1 || touchesAlpha(prev, w, h, x, y, 0) {
					clearAlpha(dst, x, y)
				}
			}
		}
	}
	return dst, nil
}

// Dilate grows the opaque region of img by iterations pixels.
//
// On each iteration every fully transparent pixel with at least one fully
// opaque 4-neighbor becomes opaque, taking the integer average RGB of those
// opaque neighbors. Like Erode, each pass reads from a snapshot.
//
// Erode and Dilate are not inverses: a dilated gap narrower than two
// iterations stays closed after the matching erosion.
func Dilate(img image.Image, iterations int) (*image.NRGBA, error) {
	if iterations < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "dilate iterations %d", iterations)
	}
	dst, err := ownedCopy(img)
	if err != nil {
		return nil, err
	}

	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	for i := 0; i < iterations; i++ {
		// Only pixels transparent in prev are written and only pixels opaque
		// in prev are read, so RGB can be read in place.
		prev := alphaPlane(dst)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if prev[y*w+x] != 0 {
					continue
				}
				var r, g, b, n int
				for _, d := range neighbors4 {
					nx, ny := x+d.X, y+d.Y
					if !inBounds(nx, ny, w, h) || prev[ny*w+nx] != 255 {
						continue
					}
					o := ny*dst.Stride + nx*4
					r += int(dst.Pix[o])
					g += int(dst.Pix[o+1])
					b += int(dst.Pix[o+2])
					n++
				}
				if n == 0 {
					continue
				}
				o := dst.PixOffset(x, y)
				dst.Pix[o] = uint8(r / n)
				dst.Pix[o+1] = uint8(g / n)
				dst.Pix[o+2] = uint8(b / n)
				dst.Pix[o+3] = 255
			}
		}
	}
	return dst, nil
}

// touchesAlpha reports whether any in-bounds 4-neighbor of (x, y) in plane
// has exactly the given alpha.
func touchesAlpha(plane []uint8, w, h, x, y int, alpha uint8) bool {
	for _, d := range neighbors4 {
		nx, ny := x+d.X, y+d.Y
		if inBounds(nx, ny, w, h) && plane[ny*w+nx] == alpha {
			return true
		}
	}
	return false
}
