package imaging

import "github.com/pkg/errors"

// Error taxonomy for raster operations.
//
// Operations wrap these sentinels with context via errors.Wrapf, so callers
// should match with errors.Is rather than comparing error strings.
var (
	// ErrDecode is returned when input bytes are not a decodable image.
	ErrDecode = errors.New("image could not be decoded")

	// ErrNoContent is returned by Trim when no pixel reaches the alpha
	// threshold. Batch callers treat it as "skip this file", not a failure.
	ErrNoContent = errors.New("no content above alpha threshold")

	// ErrDegenerateGeometry is returned when a computed output would have a
	// zero or negative dimension.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrUnsupportedMode is returned for key colors, matte strategies or
	// slice modes outside the enumerated set.
	ErrUnsupportedMode = errors.New("unsupported mode")

	// ErrOutOfBounds is returned when a coordinate lies outside the image.
	ErrOutOfBounds = errors.New("coordinates outside image bounds")

	// ErrInvalidArgument is returned for numeric parameters outside their
	// documented range.
	ErrInvalidArgument = errors.New("invalid argument")
)
