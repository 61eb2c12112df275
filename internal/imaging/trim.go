package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

// Trim option ranges.
const (
	MinAlphaThreshold = 1
	MaxAlphaThreshold = 255
	MinTrimPadding    = -20
	MaxTrimPadding    = 100

	// DefaultAlphaThreshold treats any visible pixel as content.
	DefaultAlphaThreshold = 1
)

// BoundingBox is an inclusive pixel rectangle.
type BoundingBox struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Width returns MaxX - MinX + 1.
func (b BoundingBox) Width() int { return b.MaxX - b.MinX + 1 }

// Height returns MaxY - MinY + 1.
func (b BoundingBox) Height() int { return b.MaxY - b.MinY + 1 }

// Rect converts the inclusive box to a half-open image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.MinX, b.MinY, b.MaxX+1, b.MaxY+1)
}

// TrimOptions configures Trim.
type TrimOptions struct {
	// AlphaThreshold is the minimum alpha (1-255) of a content pixel.
	AlphaThreshold int

	// Padding grows (positive) or shrinks (negative) the content box on every
	// side, in the range -20..100.
	Padding int

	// TargetSize, when > 0, fits the crop into a TargetSize x TargetSize
	// transparent canvas. Crops are scaled down to fit, never up.
	TargetSize int
}

func (o TrimOptions) validate() error {
	if o.AlphaThreshold < MinAlphaThreshold || o.AlphaThreshold > MaxAlphaThreshold {
		return errors.Wrapf(ErrInvalidArgument, "alpha threshold %d not in %d..%d",
			o.AlphaThreshold, MinAlphaThreshold, MaxAlphaThreshold)
	}
	if o.Padding < MinTrimPadding || o.Padding > MaxTrimPadding {
		return errors.Wrapf(ErrInvalidArgument, "padding %d not in %d..%d",
			o.Padding, MinTrimPadding, MaxTrimPadding)
	}
	if o.TargetSize < 0 {
		return errors.Wrapf(ErrInvalidArgument, "target size %d", o.TargetSize)
	}
	return nil
}

// TrimResult holds the output of one Trim call.
type TrimResult struct {
	// Trimmed is the output asset.
	Trimmed *image.NRGBA

	// Overlay is the original with the crop rectangle drawn in red. It is
	// for visual verification only.
	Overlay *image.NRGBA

	// Content is the tight box of content pixels, before padding.
	Content BoundingBox

	// Crop is the padded box, clamped to the image.
	Crop BoundingBox

	OldWidth  int
	OldHeight int
	NewWidth  int
	NewHeight int
}

// Trim crops img to its content.
//
// A pixel is content when its alpha is at least opts.AlphaThreshold (and
// above zero). The tight content box is padded by opts.Padding and clamped
// to the image. When opts.TargetSize is set the crop is scaled down with
// Lanczos resampling until its larger side equals TargetSize, preserving the
// aspect ratio, and centered on a transparent square canvas.
//
// # Errors
//
//   - ErrInvalidArgument: an option is out of range
//   - ErrNoContent: no pixel reaches the threshold; batch callers skip the file
//   - ErrDegenerateGeometry: negative padding collapsed the crop
func Trim(img image.Image, opts TrimOptions) (*TrimResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	src, err := ownedCopy(img)
	if err != nil {
		return nil, err
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	content, ok := contentBounds(src, uint8(opts.AlphaThreshold))
	if !ok {
		return nil, errors.Wrapf(ErrNoContent, "threshold %d", opts.AlphaThreshold)
	}

	padded := BoundingBox{
		MinX: content.MinX - opts.Padding,
		MinY: content.MinY - opts.Padding,
		MaxX: content.MaxX + opts.Padding,
		MaxY: content.MaxY + opts.Padding,
	}
	if padded.Width() < 1 || padded.Height() < 1 {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "padding %d leaves a %dx%d crop",
			opts.Padding, padded.Width(), padded.Height())
	}
	crop := BoundingBox{
		MinX: clamp(padded.MinX, 0, w-1),
		MinY: clamp(padded.MinY, 0, h-1),
		MaxX: clamp(padded.MaxX, 0, w-1),
		MaxY: clamp(padded.MaxY, 0, h-1),
	}

	trimmed := imaging.Crop(src, crop.Rect())
	if opts.TargetSize > 0 {
		trimmed = fitCanvas(trimmed, opts.TargetSize)
	}

	return &TrimResult{
		Trimmed:   trimmed,
		Overlay:   drawCropOverlay(src, crop),
		Content:   content,
		Crop:      crop,
		OldWidth:  w,
		OldHeight: h,
		NewWidth:  trimmed.Bounds().Dx(),
		NewHeight: trimmed.Bounds().Dy(),
	}, nil
}

// contentBounds returns the tight box of pixels with alpha >= threshold.
func contentBounds(img *image.NRGBA, threshold uint8) (BoundingBox, bool) {
	if threshold == 0 {
		threshold = 1
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	box := BoundingBox{MinX: w, MinY: h, MaxX: -1, MaxY: -1}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			if row[x*4+3] < threshold {
				continue
			}
			if x < box.MinX {
				box.MinX = x
			}
			if x > box.MaxX {
				box.MaxX = x
			}
			if y < box.MinY {
				box.MinY = y
			}
			box.MaxY = y
		}
	}
	return box, box.MaxX >= 0
}

// fitCanvas scales img down to fit size x size and centers it on a
// transparent canvas of that size.
func fitCanvas(img *image.NRGBA, size int) *image.NRGBA {
	cw, ch := img.Bounds().Dx(), img.Bounds().Dy()
	if cw > size || ch > size {
		nw, nh := size, size
		if cw >= ch {
			nh = max(1, int(math.Round(float64(ch)*float64(size)/float64(cw))))
		} else {
			nw = max(1, int(math.Round(float64(cw)*float64(size)/float64(ch))))
		}
		img = imaging.Resize(img, nw, nh, imaging.Lanczos)
	}
	canvas := imaging.New(size, size, color.NRGBA{})
	return imaging.PasteCenter(canvas, img)
}

// drawCropOverlay strokes the crop rectangle over a copy of img.
func drawCropOverlay(img *image.NRGBA, crop BoundingBox) *image.NRGBA {
	lineWidth := math.Max(2, float64(img.Bounds().Dx())/100)
	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(lineWidth)
	dc.DrawRectangle(float64(crop.MinX), float64(crop.MinY), float64(crop.Width()), float64(crop.Height()))
	dc.Stroke()
	return imaging.Clone(dc.Image())
}
