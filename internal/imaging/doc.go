// Package imaging provides the raster post-processing operations of the
// asset studio.
//
// Every operation is a pure function from an image and its parameters to a
// new image (or list of images):
//
//   - Matte: background removal by key color, global or flood fill
//   - Erode, Dilate: one-pixel-per-iteration alpha mask refinement
//   - MakeToken: circular tabletop token with a metallic ring
//   - Trim: crop to content with optional padding and fixed canvas
//   - SliceGrid, DetectFrames: sprite sheet slicing
//   - Crop: manual crop to a rectangle or named region
//   - FramePreview: sheet with every frame outlined and numbered
//
// # Pixel Buffers
//
// Images are *image.NRGBA with 8-bit straight (non-premultiplied) alpha and
// the origin at (0,0). Operations accept any image.Image, copy it into a
// buffer they own and never modify the caller's image. Matting and erosion
// change alpha only; dilation also fills the RGB of pixels it makes opaque.
//
// Outputs are encoded as PNG so alpha survives the round trip exactly.
//
// # Coordinate System
//
// Coordinates are 0-based with (0,0) at the top-left corner. BoundingBox is
// inclusive on all sides; image.Rectangle values (Frame.Bounds) follow the
// standard library and exclude Max.
//
// # Error Handling
//
// Errors wrap the sentinels in errors.go. Match them with errors.Is:
//
//	if errors.Is(err, imaging.ErrNoContent) {
//	    // skip this file
//	}
//
// # Thread Safety
//
// Operations hold no shared state and may run concurrently on different
// images. ImageCache is safe for concurrent use.
package imaging
