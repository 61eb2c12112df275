package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	opaqueRed   = color.NRGBA{R: 255, A: 255}
	opaqueGreen = color.NRGBA{G: 255, A: 255}
	opaqueBlue  = color.NRGBA{B: 255, A: 255}
	opaqueWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	transparent = color.NRGBA{}
)

// createSolidImage creates an in-memory NRGBA image filled with c.
func createSolidImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fillRect(img, img.Bounds(), c)
	return img
}

// fillRect paints r (Max exclusive) with c.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// countAlpha counts pixels whose alpha equals a.
func countAlpha(img *image.NRGBA, a uint8) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == a {
			n++
		}
	}
	return n
}

func TestOwnedCopy(t *testing.T) {
	src := createSolidImage(4, 3, opaqueRed)

	dst, err := ownedCopy(src)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, dst.Pix)

	dst.Pix[0] = 7
	assert.Equal(t, uint8(255), src.Pix[0], "copy must not alias the source")
}

func TestOwnedCopy_NonZeroOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 14, 23))
	src.SetNRGBA(10, 20, opaqueBlue)

	dst, err := ownedCopy(src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), dst.Bounds())
	assert.Equal(t, opaqueBlue, nrgbaAt(dst, 0, 0))
}

func TestOwnedCopy_Invalid(t *testing.T) {
	_, err := ownedCopy(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ownedCopy(image.NewNRGBA(image.Rect(0, 0, 0, 5)))
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestRGBDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b color.NRGBA
		want float64
	}{
		{"identical", opaqueRed, opaqueRed, 0},
		{"white to black", opaqueWhite, color.NRGBA{A: 255}, 441.67},
		{"one channel", opaqueRed, color.NRGBA{A: 255}, 255},
		{"alpha ignored", color.NRGBA{R: 10, A: 0}, color.NRGBA{R: 10, A: 255}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rgbDistance(toColorful(tt.a), toColorful(tt.b))
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestAlphaPlane(t *testing.T) {
	img := createSolidImage(3, 2, transparent)
	img.SetNRGBA(2, 1, color.NRGBA{A: 9})

	plane := alphaPlane(img)
	require.Len(t, plane, 6)
	assert.Equal(t, uint8(9), plane[5])
	assert.Equal(t, uint8(0), plane[0])
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-5, 0, 10))
	assert.Equal(t, 10, clamp(15, 0, 10))
	assert.Equal(t, 4, clamp(4, 0, 10))
}

func TestMustHex(t *testing.T) {
	c := mustHex("#FF8000")
	r, g, b := c.RGB255()
	assert.Equal(t, []uint8{255, 128, 0}, []uint8{r, g, b})

	assert.Panics(t, func() { mustHex("orange") })
}
