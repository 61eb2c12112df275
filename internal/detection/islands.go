package detection

import (
	"image"
)

// DefaultMinIslandArea is the smallest island, in pixels, that FindIslands
// keeps when no minimum is given. Smaller islands are treated as noise.
const DefaultMinIslandArea = 64

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Island is one connected region of non-transparent pixels.
type Island struct {
	// Label is the 1-based component label, in scan order.
	Label int `json:"label"`

	// Bounds is the tight bounding box (Max exclusive).
	Bounds image.Rectangle `json:"bounds"`

	// Area is the number of pixels in the island.
	Area int `json:"area"`

	// First is the first pixel of the island met in row-major scan order.
	First Point `json:"first"`
}

// LabelMap is the per-pixel component label of an image, row-major.
// Zero means transparent or discarded.
type LabelMap struct {
	Width  int
	Height int
	Labels []int
}

// At returns the label at (x, y).
func (m *LabelMap) At(x, y int) int {
	return m.Labels[y*m.Width+x]
}

// FindIslands labels the 4-connected components of pixels with alpha > 0.
//
// Parameters:
//   - img: Source image. Only the alpha channel is read.
//   - minArea: Islands with fewer pixels are discarded. Values < 1 use
//     DefaultMinIslandArea.
//
// Returns the kept islands ordered by the scan position of their first
// pixel (top-to-bottom, then left-to-right), and the label map. Labels in
// the map match Island.Label; pixels of discarded islands are 0.
//
// # Algorithm
//
// A single row-major scan starts a breadth-first fill at every unlabeled
// opaque pixel. The fill uses an explicit queue over a flat label buffer,
// so memory is O(width*height) and large islands cannot overflow the stack.
func FindIslands(img *image.NRGBA, minArea int) ([]Island, *LabelMap) {
	if minArea < 1 {
		minArea = DefaultMinIslandArea
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	labels := &LabelMap{Width: w, Height: h, Labels: make([]int, w*h)}
	if w == 0 || h == 0 {
		return nil, labels
	}

	opaque := func(x, y int) bool {
		return img.Pix[y*img.Stride+x*4+3] > 0
	}

	islands := make([]Island, 0)
	next := 1
	queue := make([]int, 0, 256)
	members := make([]int, 0, 256)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if labels.Labels[y*w+x] != 0 || !opaque(x, y) {
				continue
			}

			label := next
			bounds := image.Rect(x, y, x+1, y+1)
			queue = append(queue[:0], y*w+x)
			members = members[:0]
			labels.Labels[y*w+x] = label

			for len(queue) > 0 {
				idx := queue[0]
				queue = queue[1:]
				members = append(members, idx)
				px, py := idx%w, idx/w

				if px < bounds.Min.X {
					bounds.Min.X = px
				}
				if px >= bounds.Max.X {
					bounds.Max.X = px + 1
				}
				if py >= bounds.Max.Y {
					bounds.Max.Y = py + 1
				}

				// 4-connected neighbors
				for _, n := range [4][2]int{{px - 1, py}, {px + 1, py}, {px, py - 1}, {px, py + 1}} {
					nx, ny := n[0], n[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					ni := ny*w + nx
					if labels.Labels[ni] != 0 || !opaque(nx, ny) {
						continue
					}
					labels.Labels[ni] = label
					queue = append(queue, ni)
				}
			}

			if len(members) < minArea {
				// Mark as visited with a sentinel so the scan does not
				// restart inside the discarded island.
				for _, idx := range members {
					labels.Labels[idx] = -1
				}
				continue
			}

			islands = append(islands, Island{
				Label:  label,
				Bounds: bounds,
				Area:   len(members),
				First:  Point{X: x, Y: y},
			})
			next++
		}
	}

	for i, l := range labels.Labels {
		if l < 0 {
			labels.Labels[i] = 0
		}
	}
	return islands, labels
}
