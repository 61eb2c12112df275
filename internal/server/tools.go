package server

import "github.com/ironsheep/asset-studio-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var assetIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "ID returned by asset_load",
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// sliceProperties adds the frame preview options shared by the slicers.
func sliceProperties(props map[string]interface{}) map[string]interface{} {
	props["include_preview"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Also return the sheet with every frame outlined and numbered",
		"default":     false,
	}
	props["preview_color"] = map[string]interface{}{
		"type":        "string",
		"description": "Outline color as #RRGGBB. Default #FF00FF",
	}
	return props
}

func trimProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"alpha_threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Minimum alpha (1-255) of a content pixel. Default 1",
			"minimum":     1,
			"maximum":     255,
			"default":     1,
		},
		"padding": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels added around the content box (-20 to 100). Negative values shrink it. Default 0",
			"minimum":     -20,
			"maximum":     100,
			"default":     0,
		},
		"target_size": map[string]interface{}{
			"type":        "integer",
			"description": "Optional square canvas size. The crop is scaled down to fit (never up) and centered on a transparent canvas",
			"minimum":     0,
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Asset registry
		{
			Name:        "asset_load",
			Description: "Load an image from a file path, a data URI or an http(s) URL and register it as an asset. Returns the asset ID and image metadata.",
			InputSchema: objectSchema(map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Absolute file path, data:image/...;base64 URI, or URL of a generated image",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Optional asset name. Defaults to the file name of the source",
				},
			}, "source"),
		},
		{
			Name:        "asset_info",
			Description: "Get dimensions, transparency and edit history of an asset.",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
			}, "asset_id"),
		},
		{
			Name:        "asset_list",
			Description: "List every registered asset, oldest first.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "asset_delete",
			Description: "Remove an asset from the registry.",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
			}, "asset_id"),
		},
		{
			Name:        "asset_revert",
			Description: "Undo every edit of an asset, restoring the image it was loaded with.",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
			}, "asset_id"),
		},

		// Color
		{
			Name:        "asset_sample_color",
			Description: "Get the color at a pixel, with its distance to each background key color. Use it to pick a seed for asset_matte.",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (0-based)",
				},
			}, "asset_id", "x", "y"),
		},
		{
			Name:        "asset_suggest_key",
			Description: "Guess the background key color (white, green or black) from the image border and suggest a seed pixel.",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of border colors to report. Default 5",
					"default":     5,
				},
			}, "asset_id"),
		},

		// Background Matting
		{
			Name:        "asset_matte",
			Description: "Remove the background of an asset by making background pixels transparent. RGB values are kept.",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
				"key": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"white", "green", "black"},
					"description": "Background key color",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"preset", "global", "contiguous"},
					"description": "preset: fixed thresholds for the key; global: every pixel close to the target color; contiguous: flood fill from the seed. Default preset",
					"default":     "preset",
				},
				"tolerance": map[string]interface{}{
					"type":        "integer",
					"description": "Color tolerance on a 1-100 scale. Default 30",
					"minimum":     1,
					"maximum":     100,
					"default":     30,
				},
				"seed_x": map[string]interface{}{
					"type":        "integer",
					"description": "X of a background pixel. Required together with seed_y",
				},
				"seed_y": map[string]interface{}{
					"type":        "integer",
					"description": "Y of a background pixel. Required together with seed_x",
				},
			}, "asset_id", "key"),
		},

		// Morphological Edge Refiner
		{
			Name:        "asset_erode",
			Description: "Shrink the opaque region by one pixel per iteration to remove halos left by matting.",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
				"iterations": map[string]interface{}{
					"type":        "integer",
					"description": "Number of passes. Default 1",
					"minimum":     1,
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"light", "heavy"},
					"description": "light = 1 pass, heavy = 3 passes. Overrides iterations",
				},
			}, "asset_id"),
		},
		{
			Name:        "asset_dilate",
			Description: "Grow the opaque region by one pixel per iteration. New edge pixels take the average color of their opaque neighbors.",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
				"iterations": map[string]interface{}{
					"type":        "integer",
					"description": "Number of passes. Default 1",
					"minimum":     1,
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"light", "heavy"},
					"description": "light = 1 pass, heavy = 3 passes. Overrides iterations",
				},
			}, "asset_id"),
		},

		// Token Compositor
		{
			Name:        "asset_crop",
			Description: "Crop an asset to a rectangle or a named region, optionally resampling it. Replaces the current pixels; asset_revert undoes it.",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
				"region": map[string]interface{}{
					"type":        "string",
					"description": "Named region instead of x/y/width/height",
					"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
				},
				"x":      map[string]interface{}{"type": "integer", "description": "Left edge", "minimum": 0},
				"y":      map[string]interface{}{"type": "integer", "description": "Top edge", "minimum": 0},
				"width":  map[string]interface{}{"type": "integer", "description": "Width in pixels", "minimum": 1},
				"height": map[string]interface{}{"type": "integer", "description": "Height in pixels", "minimum": 1},
				"scale": map[string]interface{}{
					"type":        "number",
					"description": "Resample factor applied after cropping (Lanczos). Default 1",
					"minimum":     0,
					"maximum":     imaging.MaxCropScale,
				},
			}, "asset_id"),
		},
		{
			Name:        "asset_token",
			Description: "Turn an asset into a circular tabletop token with a gold ring, rim, highlight and drop shadow. Non-square images are center-cropped.",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
			}, "asset_id"),
		},

		// Trimmer
		{
			Name:        "asset_trim",
			Description: "Crop an asset to the bounding box of its visible pixels, with optional padding and fixed-size canvas.",
			InputSchema: objectSchema(trimProperties(map[string]interface{}{
				"asset_id": assetIDProperty,
				"include_overlay": map[string]interface{}{
					"type":        "boolean",
					"description": "Also return the original with the crop rectangle drawn in red",
				},
			}), "asset_id"),
		},
		{
			Name:        "asset_trim_batch",
			Description: "Trim many images and export the results as one zip archive. Images without visible pixels are skipped; failures do not stop the batch.",
			InputSchema: objectSchema(trimProperties(map[string]interface{}{
				"sources": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "File paths, data URIs or URLs",
				},
				"include_overlays": map[string]interface{}{
					"type":        "boolean",
					"description": "Add crop overlays under debug/ in the archive",
				},
				"archive_name": map[string]interface{}{
					"type":        "string",
					"description": "Archive name in the export destination. Defaults to trimmed_<timestamp>.zip",
				},
			}), "sources"),
		},

		// Sprite Sheet Slicer
		{
			Name:        "asset_slice_grid",
			Description: "Cut a sprite sheet into rows x cols equal cells. Each cell is registered as a new asset, in row-major order.",
			InputSchema: objectSchema(sliceProperties(map[string]interface{}{
				"asset_id": assetIDProperty,
				"rows": map[string]interface{}{
					"type":        "integer",
					"description": "Number of rows",
					"minimum":     1,
				},
				"cols": map[string]interface{}{
					"type":        "integer",
					"description": "Number of columns",
					"minimum":     1,
				},
			}), "asset_id", "rows", "cols"),
		},
		{
			Name:        "asset_detect_frames",
			Description: "Find each separate sprite on a transparent sheet and register it as a new asset cropped to its bounding box.",
			InputSchema: objectSchema(sliceProperties(map[string]interface{}{
				"asset_id": assetIDProperty,
				"min_area": map[string]interface{}{
					"type":        "integer",
					"description": "Ignore islands with fewer pixels. Default 64",
					"minimum":     0,
				},
			}), "asset_id"),
		},

		// Export
		{
			Name:        "asset_export",
			Description: "Write an asset as PNG to the configured export destination (directory or S3 bucket).",
			InputSchema: objectSchema(map[string]interface{}{
				"asset_id": assetIDProperty,
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Relative file name. Defaults to the asset name with a .png extension",
				},
			}, "asset_id"),
		},
	}
}
