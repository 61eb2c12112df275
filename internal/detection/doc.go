// Package detection finds sprite islands in an image's alpha channel.
//
// An island is a maximal 4-connected region of pixels with alpha > 0.
// FindIslands labels every island in one row-major pass and reports each
// island's bounding box, area and first pixel. The sprite sheet slicer uses
// the bounding boxes to cut content-aware frames.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes are image.Rectangle values, Max exclusive
//
// # Ordering
//
// Islands are returned in the scan order of their first pixel: the island
// whose topmost row starts earliest comes first, ties broken left to right.
// The order is stable for a given image.
//
// # Performance Considerations
//
// Labeling is O(width*height) time and memory. The fill uses an explicit
// queue, so a single island covering the whole image is safe.
package detection
