package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ironsheep/asset-studio-mcp/internal/assets"
	"github.com/ironsheep/asset-studio-mcp/internal/batch"
	"github.com/ironsheep/asset-studio-mcp/internal/export"
	"github.com/ironsheep/asset-studio-mcp/internal/imaging"
	"github.com/ironsheep/asset-studio-mcp/internal/logger"
	"github.com/ironsheep/asset-studio-mcp/internal/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Protocol identification returned by initialize.
const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "asset-studio-mcp"
)

// Version is reported in serverInfo. It is set by the main package.
var Version = "0.1.0"

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// maxRequestBytes bounds one request line. Images sent inline as data URIs
// make lines large.
const maxRequestBytes = 64 << 20

// Server handles MCP protocol communication
type Server struct {
	store          *assets.Store
	cache          *imaging.ImageCache
	sink           export.Sink
	metrics        *metrics.Metrics
	logger         *zap.Logger
	batchWorkers   int
	toleranceScale float64
	minIslandArea  int
	now            func() time.Time
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithImageCache sets the source loader. Defaults to a fresh cache.
func WithImageCache(c *imaging.ImageCache) Option {
	return func(s *Server) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithSink sets where asset_export and asset_trim_batch write. Without a
// sink those tools fail.
func WithSink(sink export.Sink) Option {
	return func(s *Server) {
		s.sink = sink
	}
}

// WithMetrics records tool calls and batch items. A nil value disables
// metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBatchWorkers sets how many images asset_trim_batch processes at once.
func WithBatchWorkers(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.batchWorkers = n
		}
	}
}

// WithToleranceScale overrides imaging.DefaultToleranceScale for matting.
func WithToleranceScale(scale float64) Option {
	return func(s *Server) {
		if scale > 0 {
			s.toleranceScale = scale
		}
	}
}

// WithMinIslandArea sets the default min_area of asset_detect_frames.
func WithMinIslandArea(area int) Option {
	return func(s *Server) {
		if area > 0 {
			s.minIslandArea = area
		}
	}
}

// New creates a new MCP server instance working on store.
func New(store *assets.Store, opts ...Option) *Server {
	s := &Server{
		store:          store,
		cache:          imaging.NewImageCache(),
		logger:         zap.NewNop(),
		batchWorkers:   1,
		toleranceScale: imaging.DefaultToleranceScale,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads newline-delimited JSON-RPC requests from r and writes responses
// to w until r is exhausted or ctx is canceled. Requests are handled one at
// a time, in order.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", zap.Error(err))
			resp = s.errorResponse(nil, codeParseError, "Parse error", err.Error())
		} else {
			resp = s.handleRequest(ctx, &req)
		}

		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				return errors.Wrap(err, "encode response failed")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read request failed")
	}
	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized", "notifications/cancelled":
		return nil
	case "tools/list":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: map[string]interface{}{
				"tools": GetToolDefinitions(),
			},
		}
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, codeMethodNotFound,
			fmt.Sprintf("Method not found: %s", req.Method), nil)
	}
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	s.logger.Info("client initialized")
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": Version,
			},
		},
	}
}

func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// recorder adapts the server metrics to batch.Recorder. A nil
// *metrics.Metrics records nothing.
func (s *Server) recorder() batch.Recorder {
	return s.metrics
}

func (s *Server) toolLogger(tool string) *zap.Logger {
	return s.logger.With(logger.Tool(tool))
}
