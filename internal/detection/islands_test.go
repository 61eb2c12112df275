package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createSheet creates a transparent sheet with opaque rectangles.
func createSheet(width, height int, rects ...image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: 200, A: 255})
			}
		}
	}
	return img
}

func TestFindIslands(t *testing.T) {
	sheet := createSheet(64, 64,
		image.Rect(40, 2, 50, 12),
		image.Rect(2, 20, 22, 30),
		image.Rect(30, 40, 38, 48),
	)

	islands, labels := FindIslands(sheet, 1)
	require.Len(t, islands, 3)

	assert.Equal(t, image.Rect(40, 2, 50, 12), islands[0].Bounds)
	assert.Equal(t, 100, islands[0].Area)
	assert.Equal(t, Point{X: 40, Y: 2}, islands[0].First)

	assert.Equal(t, image.Rect(2, 20, 22, 30), islands[1].Bounds)
	assert.Equal(t, 200, islands[1].Area)

	assert.Equal(t, image.Rect(30, 40, 38, 48), islands[2].Bounds)

	for _, is := range islands {
		assert.Equal(t, is.Label, labels.At(is.First.X, is.First.Y))
	}
	assert.Equal(t, 0, labels.At(0, 0))
}

func TestFindIslands_IrregularShape(t *testing.T) {
	// An L shape is one island whose bounds cover both arms.
	sheet := createSheet(20, 20,
		image.Rect(2, 2, 4, 15),
		image.Rect(2, 13, 12, 15),
	)

	islands, _ := FindIslands(sheet, 1)
	require.Len(t, islands, 1)
	assert.Equal(t, image.Rect(2, 2, 12, 15), islands[0].Bounds)
	assert.Equal(t, 2*13+10*2-2*2, islands[0].Area)
}

func TestFindIslands_UShapeBoundsExtendLeft(t *testing.T) {
	// The first scanned pixel is on the right arm; the island still reaches
	// further left through the bottom bar.
	sheet := createSheet(20, 20,
		image.Rect(10, 0, 12, 10),
		image.Rect(2, 8, 12, 10),
		image.Rect(2, 5, 4, 10),
	)

	islands, _ := FindIslands(sheet, 1)
	require.Len(t, islands, 1)
	assert.Equal(t, image.Rect(2, 0, 12, 10), islands[0].Bounds)
	assert.Equal(t, Point{X: 10, Y: 0}, islands[0].First)
}

func TestFindIslands_FourConnectivity(t *testing.T) {
	sheet := createSheet(3, 3)
	sheet.SetNRGBA(0, 0, color.NRGBA{A: 1})
	sheet.SetNRGBA(1, 1, color.NRGBA{A: 1})
	sheet.SetNRGBA(2, 2, color.NRGBA{A: 1})

	islands, _ := FindIslands(sheet, 1)
	assert.Len(t, islands, 3)
}

func TestFindIslands_MinAreaDiscardsNoise(t *testing.T) {
	sheet := createSheet(40, 40,
		image.Rect(0, 0, 2, 2),     // 4 px
		image.Rect(10, 10, 20, 20), // 100 px
	)

	islands, labels := FindIslands(sheet, 0)
	require.Len(t, islands, 1, "default minimum drops the 4px speck")
	assert.Equal(t, 1, islands[0].Label, "labels stay dense after discards")
	assert.Equal(t, 0, labels.At(0, 0), "discarded pixels are unlabeled")
	assert.Equal(t, 1, labels.At(15, 15))
}

func TestFindIslands_Empty(t *testing.T) {
	islands, labels := FindIslands(createSheet(8, 8), 1)
	assert.Empty(t, islands)
	assert.Len(t, labels.Labels, 64)

	islands, _ = FindIslands(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 1)
	assert.Empty(t, islands)
}

func TestFindIslands_LargeIsland(t *testing.T) {
	// A full 512x512 sheet is one island; the fill must not recurse.
	sheet := createSheet(512, 512, image.Rect(0, 0, 512, 512))

	islands, _ := FindIslands(sheet, 1)
	require.Len(t, islands, 1)
	assert.Equal(t, 512*512, islands[0].Area)
}
