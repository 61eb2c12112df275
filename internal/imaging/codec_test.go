package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_PreservesStraightAlpha(t *testing.T) {
	img := createSolidImage(3, 1, opaqueRed)
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0})
	img.SetNRGBA(2, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	data, err := EncodePNG(img)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, decoded.Pix)
}

func TestDecode_JPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, createSolidImage(8, 6, opaqueWhite), nil))

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
	assert.Equal(t, uint8(255), alphaAt(img, 4, 3))
}

func TestDecode_Invalid(t *testing.T) {
	tests := map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not an image"),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDataURI(t *testing.T) {
	img := createSolidImage(5, 4, opaqueGreen)

	uri, err := EncodeDataURI(img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	assert.True(t, IsDataURI(uri))

	decoded, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, decoded.Pix)
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	tests := []string{
		"/tmp/not-a-uri.png",
		"data:image/png;base64",
		"data:image/png,plain-text-payload",
		"data:image/png;base64,%%%",
	}
	for _, uri := range tests {
		t.Run(uri, func(t *testing.T) {
			_, err := DecodeDataURI(uri)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestEncodeResult(t *testing.T) {
	result, err := EncodeResult(createSolidImage(7, 3, opaqueBlue))
	require.NoError(t, err)

	assert.Equal(t, 7, result.Width)
	assert.Equal(t, 3, result.Height)
	assert.Equal(t, MimePNG, result.MimeType)

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, opaqueBlue, nrgbaAt(decoded, 6, 2))
}
