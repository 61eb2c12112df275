package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMorph_InvalidIterations(t *testing.T) {
	img := createSolidImage(4, 4, opaqueRed)
	for _, n := range []int{0, -1} {
		_, err := Erode(img, n)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		_, err = Dilate(img, n)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestErode_ShrinksSquare(t *testing.T) {
	tests := []struct {
		iterations int
		wantOpaque int
	}{
		{RefineLight, 8 * 8},
		{RefineHeavy, 4 * 4},
		{5, 0},
	}
	for _, tt := range tests {
		img := createSolidImage(20, 20, transparent)
		fillRect(img, image.Rect(5, 5, 15, 15), opaqueBlue)

		out, err := Erode(img, tt.iterations)
		require.NoError(t, err)
		assert.Equalf(t, tt.wantOpaque, countAlpha(out, 255), "%d iterations", tt.iterations)
	}
}

func TestErode_ImageBorderCountsAsTransparent(t *testing.T) {
	img := createSolidImage(5, 5, opaqueRed)

	out, err := Erode(img, 1)
	require.NoError(t, err)

	assert.Equal(t, 9, countAlpha(out, 255))
	assert.Equal(t, uint8(0), alphaAt(out, 0, 2))
	assert.Equal(t, uint8(255), alphaAt(out, 2, 2))
}

func TestErode_PartialAlphaIsEroded(t *testing.T) {
	img := createSolidImage(5, 5, transparent)
	fillRect(img, image.Rect(1, 1, 4, 4), color.NRGBA{R: 9, A: 100})

	out, err := Erode(img, 1)
	require.NoError(t, err)

	assert.Equal(t, uint8(100), alphaAt(out, 2, 2))
	assert.Equal(t, uint8(0), alphaAt(out, 1, 1))
}

func TestErode_KeepsRGB(t *testing.T) {
	img := createSolidImage(3, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	out, err := Erode(img, 1)
	require.NoError(t, err)

	c := nrgbaAt(out, 0, 0)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 0}, c)
}

func TestDilate_GrowsSquare(t *testing.T) {
	img := createSolidImage(20, 20, transparent)
	fillRect(img, image.Rect(8, 8, 12, 12), opaqueBlue)

	out, err := Dilate(img, 1)
	require.NoError(t, err)

	// 4-connected growth adds one row or column on each side, not corners.
	assert.Equal(t, 16+4*4, countAlpha(out, 255))
	assert.Equal(t, uint8(255), alphaAt(out, 7, 8))
	assert.Equal(t, uint8(0), alphaAt(out, 7, 7))

	out, err = Dilate(img, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), alphaAt(out, 7, 7), "second pass fills the corner")
}

func TestDilate_AveragesOpaqueNeighbors(t *testing.T) {
	img := createSolidImage(3, 1, transparent)
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{G: 101, B: 7, A: 255})

	out, err := Dilate(img, 1)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{R: 100, G: 50, B: 3, A: 255}, nrgbaAt(out, 1, 0))
}

func TestDilate_IgnoresTranslucentNeighbors(t *testing.T) {
	img := createSolidImage(3, 1, transparent)
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, A: 254})

	out, err := Dilate(img, 1)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), alphaAt(out, 1, 0))
}

func TestDilate_DoesNotModifyInput(t *testing.T) {
	img := createSolidImage(6, 6, transparent)
	fillRect(img, image.Rect(2, 2, 4, 4), opaqueRed)
	before := append([]uint8(nil), img.Pix...)

	_, err := Dilate(img, 3)
	require.NoError(t, err)
	assert.Equal(t, before, img.Pix)
}

// erode(dilate(x, n), n) is lossy: a one-pixel gap closed by dilation stays
// closed, filled with an averaged color that was never in the source.
func TestErodeDilate_NotRoundTrip(t *testing.T) {
	img := createSolidImage(20, 20, transparent)
	fillRect(img, image.Rect(4, 4, 10, 16), opaqueRed)
	fillRect(img, image.Rect(11, 4, 16, 16), opaqueBlue)

	dilated, err := Dilate(img, 1)
	require.NoError(t, err)
	restored, err := Erode(dilated, 1)
	require.NoError(t, err)

	assert.NotEqual(t, img.Pix, restored.Pix)

	require.Equal(t, uint8(0), alphaAt(img, 10, 8))
	assert.Equal(t, color.NRGBA{R: 127, B: 127, A: 255}, nrgbaAt(restored, 10, 8))
}
