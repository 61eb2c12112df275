package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ironsheep/asset-studio-mcp/internal/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	store, err := assets.NewStore(1)
	require.NoError(t, err)
	return New(store, opts...)
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`, "test-1", "tools/list"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			require.NoError(t, json.Unmarshal([]byte(tt.json), &req))
			assert.Equal(t, tt.wantID, req.ID)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, "2.0", req.JSONRPC)
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: "init-1", Method: "initialize"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	assert.Equal(t, "init-1", resp.ID)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, ProtocolVersion, result["protocolVersion"])

	info, ok := result["serverInfo"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, ServerName, info["name"])
	assert.Equal(t, Version, info["version"])
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "ping-1", resp.ID)
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	tools, ok := result["tools"].([]Tool)
	require.True(t, ok)
	assert.Len(t, tools, len(toolHandlers))
}

func TestHandleRequest_Notifications(t *testing.T) {
	s := newTestServer(t)

	for _, method := range []string{"notifications/initialized", "notifications/cancelled"} {
		assert.Nil(t, s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", Method: method}), method)
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "nonexistent/method"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestRun(t *testing.T) {
	s := newTestServer(t)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{not json`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"asset_info","arguments":{"asset_id":"missing"}}}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, s.Run(context.Background(), strings.NewReader(input), &out))

	var responses []MCPResponse
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp MCPResponse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	require.Len(t, responses, 4)

	assert.Equal(t, float64(1), responses[0].ID)
	assert.Nil(t, responses[0].Error)

	require.NotNil(t, responses[1].Error)
	assert.Equal(t, codeParseError, responses[1].Error.Code)
	assert.Nil(t, responses[1].ID)

	assert.Equal(t, float64(2), responses[2].ID)
	assert.Nil(t, responses[2].Error)

	require.NotNil(t, responses[3].Error)
	assert.Equal(t, codeToolFailed, responses[3].Error.Code)
	assert.Contains(t, responses[3].Error.Data, "asset not found")
}

func TestRun_Canceled(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Run(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}
