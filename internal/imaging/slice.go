package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/asset-studio-mcp/internal/detection"
	"github.com/pkg/errors"
)

// SliceMode selects how a sprite sheet is split.
type SliceMode int

const (
	// SliceGridMode cuts the sheet into rows x cols equal cells.
	SliceGridMode SliceMode = iota + 1

	// SliceSmartMode extracts each disconnected sprite island.
	SliceSmartMode
)

var sliceModeNames = map[SliceMode]string{
	SliceGridMode:  "grid",
	SliceSmartMode: "smart",
}

// String returns the name ParseSliceMode accepts.
func (m SliceMode) String() string {
	if name, ok := sliceModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("SliceMode(%d)", int(m))
}

// ParseSliceMode parses "grid" or "smart".
func ParseSliceMode(s string) (SliceMode, error) {
	for m, name := range sliceModeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedMode, "slice mode %q", s)
}

// Frame is one sub-image cut from a sprite sheet. Each Frame owns its pixels.
type Frame struct {
	// Index is the position in the output list.
	Index int `json:"index"`

	// Row and Col locate a grid cell. Both are -1 for detected frames.
	Row int `json:"row"`
	Col int `json:"col"`

	// Bounds is the frame's rectangle in sheet coordinates (Max exclusive).
	Bounds image.Rectangle `json:"bounds"`

	Image *image.NRGBA `json:"-"`
}

// SliceGrid partitions img into rows x cols cells in row-major order.
//
// Cell edges are computed from the cell index (x = c*width/cols, truncated)
// instead of by accumulating a cell width, so the cells tile the sheet
// exactly: no gaps, no overlap, and the last row/column ends on the edge.
// Cells differ in size by at most one pixel when the sheet does not divide
// evenly.
//
// Returns ErrDegenerateGeometry when rows or cols is < 1 or larger than the
// corresponding dimension (which would produce empty cells).
func SliceGrid(img image.Image, rows, cols int) ([]Frame, error) {
	src, err := ownedCopy(img)
	if err != nil {
		return nil, err
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if rows < 1 || cols < 1 || rows > h || cols > w {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "%dx%d grid on %dx%d sheet", rows, cols, w, h)
	}

	frames := make([]Frame, 0, rows*cols)
	for r := 0; r < rows; r++ {
		y0, y1 := r*h/rows, (r+1)*h/rows
		for c := 0; c < cols; c++ {
			x0, x1 := c*w/cols, (c+1)*w/cols
			rect := image.Rect(x0, y0, x1, y1)
			frames = append(frames, Frame{
				Index:  len(frames),
				Row:    r,
				Col:    c,
				Bounds: rect,
				Image:  imaging.Crop(src, rect),
			})
		}
	}
	return frames, nil
}

// DetectOptions configures DetectFrames.
type DetectOptions struct {
	// MinArea discards islands with fewer pixels. Zero means
	// detection.DefaultMinIslandArea.
	MinArea int
}

// DetectFrames extracts every disconnected island of non-transparent pixels
// as its own frame, cropped to the island's bounding box.
//
// Islands are 4-connected. The output order is the scan order of each
// island's first pixel, so it is stable for a given sheet. A sheet with no
// qualifying islands yields an empty list and no error.
//
// A bounding-box crop may include pixels of a neighboring island when
// sprites overlap diagonally; frames are not masked.
func DetectFrames(img image.Image, opts DetectOptions) ([]Frame, error) {
	if opts.MinArea < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "min area %d", opts.MinArea)
	}
	src, err := ownedCopy(img)
	if err != nil {
		return nil, err
	}

	islands, _ := detection.FindIslands(src, opts.MinArea)
	frames := make([]Frame, 0, len(islands))
	for i, island := range islands {
		frames = append(frames, Frame{
			Index:  i,
			Row:    -1,
			Col:    -1,
			Bounds: island.Bounds,
			Image:  imaging.Crop(src, island.Bounds),
		})
	}
	return frames, nil
}
