package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetToolDefinitions_MatchHandlers(t *testing.T) {
	tools := GetToolDefinitions()

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, toolNames(), names)
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Description)
			require.NotNil(t, tool.InputSchema)
			assert.Equal(t, "object", tool.InputSchema["type"])

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			require.True(t, ok, "properties should be a map")

			required, ok := tool.InputSchema["required"].([]string)
			require.True(t, ok, "required should be a string slice")
			for _, name := range required {
				assert.Contains(t, props, name, "required property %s is not defined", name)
			}
		})
	}
}

func TestSuggestTool(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"asset_mate", "asset_matte"},
		{"asset_erdoe", "asset_erode"},
		{"ASSET_TOKEN", "asset_token"},
		{"asset_slice_grd", "asset_slice_grid"},
		{"image_crop", ""},
		{"x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, suggestTool(tt.in))
		})
	}
}
