package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// MimePNG is the mime type of every encoded operation result.
const MimePNG = "image/png"

// ImageResult contains one encoded output image.
type ImageResult struct {
	// Width of the output image in pixels.
	Width int `json:"width"`

	// Height of the output image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// Decode decodes PNG, JPEG, GIF, BMP or WebP bytes into an owned NRGBA buffer.
//
// EXIF orientation is applied for JPEG input. Any failure is reported as
// ErrDecode so that a batch driver can skip the file and continue.
func Decode(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrDecode, "empty input")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%v", err)
	}
	return ownedCopy(img)
}

// DecodeDataURI decodes a "data:<mime>;base64,<payload>" URI.
func DecodeDataURI(uri string) (*image.NRGBA, error) {
	payload, err := dataURIPayload(uri)
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}

// IsDataURI reports whether ref looks like a data URI.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

func dataURIPayload(uri string) ([]byte, error) {
	if !IsDataURI(uri) {
		return nil, errors.Wrap(ErrDecode, "not a data URI")
	}
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, errors.Wrap(ErrDecode, "data URI has no payload")
	}
	header := uri[len("data:"):comma]
	if !strings.HasSuffix(header, ";base64") {
		return nil, errors.Wrap(ErrDecode, "data URI is not base64 encoded")
	}
	payload, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "data URI payload: %v", err)
	}
	return payload, nil
}

// EncodePNG encodes img as PNG. PNG keeps alpha lossless, which every
// operation depends on.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "failed to encode png")
	}
	return buf.Bytes(), nil
}

// EncodeResult encodes img as a base64 PNG ImageResult.
func EncodeResult(img image.Image) (*ImageResult, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &ImageResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    MimePNG,
	}, nil
}

// EncodeDataURI encodes img as a PNG data URI.
func EncodeDataURI(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return "data:" + MimePNG + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
