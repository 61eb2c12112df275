package imaging

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// MaxCropScale bounds the resample factor of Crop.
const MaxCropScale = 8.0

// Crop cuts region (Max exclusive) out of img and optionally resamples
// it by scale. A scale of 0 or 1 keeps the pixels as they are.
func Crop(img image.Image, region image.Rectangle, scale float64) (*image.NRGBA, error) {
	src, err := ownedCopy(img)
	if err != nil {
		return nil, err
	}
	if region.Dx() < 1 || region.Dy() < 1 {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "crop region %v is empty", region)
	}
	if !region.In(src.Bounds()) {
		return nil, errors.Wrapf(ErrOutOfBounds, "crop region %v outside %v", region, src.Bounds())
	}
	if scale < 0 || scale > MaxCropScale {
		return nil, errors.Wrapf(ErrInvalidArgument, "scale %g must be within 0-%g", scale, MaxCropScale)
	}

	out := imaging.Crop(src, region)
	if scale == 0 || scale == 1 {
		return out, nil
	}
	w := int(float64(out.Bounds().Dx())*scale + 0.5)
	h := int(float64(out.Bounds().Dy())*scale + 0.5)
	if w < 1 || h < 1 {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "scaled crop is %dx%d", w, h)
	}
	return imaging.Resize(out, w, h, imaging.Lanczos), nil
}

// NamedRegion resolves a region name against an image of the given size.
// Halves and quadrants split at the midpoint; "center" is the middle half
// in both directions.
func NamedRegion(name string, width, height int) (image.Rectangle, error) {
	midX, midY := width/2, height/2
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "top-left":
		return image.Rect(0, 0, midX, midY), nil
	case "top-right":
		return image.Rect(midX, 0, width, midY), nil
	case "bottom-left":
		return image.Rect(0, midY, midX, height), nil
	case "bottom-right":
		return image.Rect(midX, midY, width, height), nil
	case "top-half":
		return image.Rect(0, 0, width, midY), nil
	case "bottom-half":
		return image.Rect(0, midY, width, height), nil
	case "left-half":
		return image.Rect(0, 0, midX, height), nil
	case "right-half":
		return image.Rect(midX, 0, width, height), nil
	case "center":
		return image.Rect(width/4, height/4, width-width/4, height-height/4), nil
	}
	return image.Rectangle{}, errors.Wrapf(ErrUnsupportedMode, "region %q", name)
}
