// Package server implements the MCP (Model Context Protocol) server for
// asset post-processing.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Assets
//
// Images are loaded once with asset_load and addressed by asset ID after
// that. Every edit tool (matte, erode, dilate, token, crop, trim) replaces the
// asset's current image only when the operation succeeds; asset_revert goes
// back to the loaded image. Slicing registers each frame as a new asset.
//
// # Available Tools
//
// Registry:
//   - asset_load, asset_info, asset_list, asset_delete, asset_revert
//
// Color:
//   - asset_sample_color: Color at a pixel and its distance to each key
//   - asset_suggest_key: Guess the background key from the border
//
// Post-processing:
//   - asset_matte: Background removal (preset, global, contiguous)
//   - asset_erode, asset_dilate: Edge refinement
//   - asset_token: Circular token with ring and shadow
//   - asset_crop: Crop to a rectangle or named region
//   - asset_trim: Crop to content
//   - asset_trim_batch: Trim many sources into one zip archive
//   - asset_slice_grid, asset_detect_frames: Sprite sheet slicing, with an
//     optional preview of the frame outlines
//   - asset_export: Write an asset to the export destination
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// An unknown tool name fails with the closest known name as a suggestion.
//
// # Usage
//
//	store, _ := assets.NewStore(1)
//	srv := server.New(store, server.WithLogger(log))
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal("server stopped", zap.Error(err))
//	}
package server
