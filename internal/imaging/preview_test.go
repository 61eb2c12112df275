package imaging

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramePreview(t *testing.T) {
	sheet := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	frames, err := SliceGrid(sheet, 1, 2)
	require.NoError(t, err)

	out, err := FramePreview(sheet, frames, "#00FF00")
	require.NoError(t, err)
	assert.Equal(t, sheet.Bounds(), out.Bounds())

	// Outline runs along the bottom edge of each frame.
	edge := out.NRGBAAt(10, 19)
	assert.Greater(t, edge.G, uint8(128))
	assert.Less(t, edge.R, uint8(128))

	// Label background sits in the top-left corner of the second frame.
	assert.Equal(t, uint8(180), out.NRGBAAt(21, 1).A)

	// Interior stays untouched and the source is not modified.
	assert.Equal(t, uint8(0), out.NRGBAAt(10, 12).A)
	assert.Equal(t, uint8(0), sheet.NRGBAAt(10, 19).A)
}

func TestFramePreview_BadColorFallsBack(t *testing.T) {
	sheet := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	frames := []Frame{{Index: 0, Row: -1, Col: -1, Bounds: sheet.Bounds()}}

	out, err := FramePreview(sheet, frames, "magenta-ish")
	require.NoError(t, err)
	edge := out.NRGBAAt(9, 9)
	assert.Greater(t, edge.R, uint8(128))
	assert.Greater(t, edge.B, uint8(128))
}

func TestFramePreview_Nil(t *testing.T) {
	_, err := FramePreview(nil, nil, DefaultPreviewColor)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDrawLabel_ClipsAtEdges(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	assert.NotPanics(t, func() {
		drawLabel(img, 2, 2, "123", previewWhite, previewShade)
	})
}
