package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/ironsheep/asset-studio-mcp/internal/assets"
	"github.com/ironsheep/asset-studio-mcp/internal/batch"
	"github.com/ironsheep/asset-studio-mcp/internal/export"
	"github.com/ironsheep/asset-studio-mcp/internal/imaging"
	"github.com/ironsheep/asset-studio-mcp/internal/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "asset_load", "asset_matte").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

type toolHandler func(s *Server, ctx context.Context, args json.RawMessage) (interface{}, error)

var toolHandlers = map[string]toolHandler{
	"asset_load":          (*Server).handleAssetLoad,
	"asset_info":          (*Server).handleAssetInfo,
	"asset_list":          (*Server).handleAssetList,
	"asset_delete":        (*Server).handleAssetDelete,
	"asset_sample_color":  (*Server).handleAssetSampleColor,
	"asset_suggest_key":   (*Server).handleAssetSuggestKey,
	"asset_matte":         (*Server).handleAssetMatte,
	"asset_erode":         (*Server).handleAssetErode,
	"asset_dilate":        (*Server).handleAssetDilate,
	"asset_revert":        (*Server).handleAssetRevert,
	"asset_token":         (*Server).handleAssetToken,
	"asset_crop":          (*Server).handleAssetCrop,
	"asset_trim":          (*Server).handleAssetTrim,
	"asset_trim_batch":    (*Server).handleAssetTrimBatch,
	"asset_slice_grid":    (*Server).handleAssetSliceGrid,
	"asset_detect_frames": (*Server).handleAssetDetectFrames,
	"asset_export":        (*Server).handleAssetExport,
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// and the error text as data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	elapsed := time.Since(start)

	if _, known := toolHandlers[params.Name]; known {
		s.metrics.ObserveTool(params.Name, err, elapsed)
	}
	log := s.toolLogger(params.Name).With(logger.Duration(elapsed))
	if err != nil {
		log.Warn("tool call failed", zap.Error(err))
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	log.Info("tool call")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	handler, ok := toolHandlers[name]
	if !ok {
		if suggestion := suggestTool(name); suggestion != "" {
			return nil, errors.Errorf("unknown tool: %s (did you mean %s?)", name, suggestion)
		}
		return nil, errors.Errorf("unknown tool: %s", name)
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return handler(s, ctx, args)
}

// suggestTool returns the closest tool name, or "" when nothing is close.
func suggestTool(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return ""
	}
	best, bestDist := "", -1
	for candidate := range toolHandlers {
		dist := levenshtein.ComputeDistance(name, candidate)
		if dist > suggestLimit(len(candidate)) {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && candidate < best) {
			best, bestDist = candidate, dist
		}
	}
	return best
}

func suggestLimit(length int) int {
	switch {
	case length <= 8:
		return 2
	case length <= 12:
		return 3
	default:
		return 4
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return errors.Wrap(imaging.ErrInvalidArgument, err.Error())
	}
	return nil
}

// === Results ===

// Rect is a pixel rectangle in tool results.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func rectOf(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// AssetView describes a registered asset.
type AssetView struct {
	ID        string             `json:"asset_id"`
	Name      string             `json:"name"`
	Info      *imaging.ImageInfo `json:"info"`
	Edits     []string           `json:"edits"`
	Edited    bool               `json:"edited"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func viewOf(a assets.Asset) AssetView {
	edits := a.Edits
	if edits == nil {
		edits = []string{}
	}
	return AssetView{
		ID:        a.ID,
		Name:      a.Name,
		Info:      imaging.Describe(a.Current, a.Name),
		Edits:     edits,
		Edited:    a.Edited(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// EditResult is returned by every tool that replaces an asset's image.
type EditResult struct {
	Asset AssetView            `json:"asset"`
	Image *imaging.ImageResult `json:"image"`
}

func (s *Server) commit(id string, img *image.NRGBA, edit string) (*EditResult, error) {
	a, err := s.store.Update(id, img, edit)
	if err != nil {
		return nil, err
	}
	return s.editResult(a)
}

func (s *Server) editResult(a assets.Asset) (*EditResult, error) {
	encoded, err := imaging.EncodeResult(a.Current)
	if err != nil {
		return nil, err
	}
	return &EditResult{Asset: viewOf(a), Image: encoded}, nil
}

// === Asset registry ===

type assetLoadArgs struct {
	Source string `json:"source"`
	Name   string `json:"name"`
}

func (s *Server) handleAssetLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a assetLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Source) == "" {
		return nil, errors.Wrap(imaging.ErrInvalidArgument, "source is required")
	}
	img, err := s.loadSource(ctx, a.Source)
	if err != nil {
		return nil, err
	}
	name := a.Name
	if name == "" {
		name = sourceName(a.Source)
	}
	source := a.Source
	if imaging.IsDataURI(source) {
		source = ""
	}
	asset := s.store.AddSource(name, source, img)
	s.logger.Debug("asset loaded", logger.AssetID(asset.ID), zap.String("name", name))
	return viewOf(asset), nil
}

// loadSource decodes a path or URL through the cache. Data URIs carry
// their own bytes, so they are decoded directly and never cached.
func (s *Server) loadSource(ctx context.Context, ref string) (*image.NRGBA, error) {
	if !imaging.IsDataURI(ref) {
		return s.cache.Load(ctx, ref)
	}
	data, err := s.cache.ReadSource(ctx, ref)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(data)
}

// sourceName derives an asset name from a path or URL.
func sourceName(ref string) string {
	if imaging.IsDataURI(ref) {
		return "image.png"
	}
	ref = strings.SplitN(ref, "?", 2)[0]
	base := filepath.Base(filepath.FromSlash(ref))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "image.png"
	}
	return base
}

type assetIDArgs struct {
	AssetID string `json:"asset_id"`
}

func (s *Server) get(id string) (assets.Asset, error) {
	if id == "" {
		return assets.Asset{}, errors.Wrap(imaging.ErrInvalidArgument, "asset_id is required")
	}
	return s.store.Get(id)
}

func (s *Server) handleAssetInfo(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	return viewOf(asset), nil
}

func (s *Server) handleAssetList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	list := s.store.List()
	views := make([]AssetView, 0, len(list))
	for _, a := range list {
		views = append(views, viewOf(a))
	}
	return map[string]interface{}{"assets": views}, nil
}

func (s *Server) handleAssetDelete(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(asset.ID); err != nil {
		return nil, err
	}
	if asset.Source != "" && !s.store.SourceInUse(asset.Source) {
		s.cache.Evict(asset.Source)
	}
	return map[string]interface{}{"asset_id": a.AssetID, "deleted": true}, nil
}

func (s *Server) handleAssetRevert(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	asset, err := s.store.Revert(a.AssetID)
	if err != nil {
		return nil, err
	}
	return s.editResult(asset)
}

// === Color ===

type assetSampleColorArgs struct {
	AssetID string `json:"asset_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

func (s *Server) handleAssetSampleColor(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(asset.Current, a.X, a.Y)
}

type assetSuggestKeyArgs struct {
	AssetID string `json:"asset_id"`
	Count   int    `json:"count"`
}

func (s *Server) handleAssetSuggestKey(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetSuggestKeyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	return imaging.SuggestKey(asset.Current, a.Count)
}

// === Background Matting ===

type assetMatteArgs struct {
	AssetID   string `json:"asset_id"`
	Key       string `json:"key"`
	Strategy  string `json:"strategy"`
	Tolerance int    `json:"tolerance"`
	SeedX     *int   `json:"seed_x"`
	SeedY     *int   `json:"seed_y"`
}

func (s *Server) handleAssetMatte(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetMatteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Strategy == "" {
		a.Strategy = imaging.StrategyPreset.String()
	}
	if a.Tolerance == 0 {
		a.Tolerance = 30
	}
	key, err := imaging.ParseKeyColor(a.Key)
	if err != nil {
		return nil, err
	}
	strategy, err := imaging.ParseMatteStrategy(a.Strategy)
	if err != nil {
		return nil, err
	}
	opts := imaging.MatteOptions{
		Key:            key,
		Strategy:       strategy,
		Tolerance:      a.Tolerance,
		ToleranceScale: s.toleranceScale,
	}
	switch {
	case a.SeedX != nil && a.SeedY != nil:
		opts.Seed = &image.Point{X: *a.SeedX, Y: *a.SeedY}
	case a.SeedX != nil || a.SeedY != nil:
		return nil, errors.Wrap(imaging.ErrInvalidArgument, "seed_x and seed_y must be given together")
	}

	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	out, err := imaging.Matte(asset.Current, opts)
	if err != nil {
		return nil, err
	}
	return s.commit(asset.ID, out, fmt.Sprintf("matte:%s:%s", key, strategy))
}

// === Morphological Edge Refiner ===

type assetMorphArgs struct {
	AssetID    string `json:"asset_id"`
	Iterations int    `json:"iterations"`
	Preset     string `json:"preset"`
}

func (a assetMorphArgs) passes() (int, error) {
	switch strings.ToLower(a.Preset) {
	case "":
	case "light":
		return imaging.RefineLight, nil
	case "heavy":
		return imaging.RefineHeavy, nil
	default:
		return 0, errors.Wrapf(imaging.ErrUnsupportedMode, "preset %q", a.Preset)
	}
	if a.Iterations == 0 {
		return imaging.RefineLight, nil
	}
	return a.Iterations, nil
}

func (s *Server) handleAssetErode(_ context.Context, args json.RawMessage) (interface{}, error) {
	return s.morph(args, "erode", imaging.Erode)
}

func (s *Server) handleAssetDilate(_ context.Context, args json.RawMessage) (interface{}, error) {
	return s.morph(args, "dilate", imaging.Dilate)
}

func (s *Server) morph(args json.RawMessage, op string, fn func(image.Image, int) (*image.NRGBA, error)) (interface{}, error) {
	var a assetMorphArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	n, err := a.passes()
	if err != nil {
		return nil, err
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	out, err := fn(asset.Current, n)
	if err != nil {
		return nil, err
	}
	return s.commit(asset.ID, out, fmt.Sprintf("%s:%d", op, n))
}

// === Token Compositor ===

func (s *Server) handleAssetToken(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	out, err := imaging.MakeToken(asset.Current)
	if err != nil {
		return nil, err
	}
	return s.commit(asset.ID, out, "token")
}

type assetCropArgs struct {
	AssetID string  `json:"asset_id"`
	Region  string  `json:"region"`
	X       *int    `json:"x"`
	Y       *int    `json:"y"`
	Width   *int    `json:"width"`
	Height  *int    `json:"height"`
	Scale   float64 `json:"scale"`
}

// rect resolves the crop rectangle from either a named region or an
// explicit x/y/width/height.
func (a assetCropArgs) rect(bounds image.Rectangle) (image.Rectangle, error) {
	explicit := a.X != nil || a.Y != nil || a.Width != nil || a.Height != nil
	switch {
	case a.Region != "" && explicit:
		return image.Rectangle{}, errors.Wrap(imaging.ErrInvalidArgument, "give either region or x/y/width/height, not both")
	case a.Region != "":
		return imaging.NamedRegion(a.Region, bounds.Dx(), bounds.Dy())
	case a.X == nil || a.Y == nil || a.Width == nil || a.Height == nil:
		return image.Rectangle{}, errors.Wrap(imaging.ErrInvalidArgument, "x, y, width and height are required without region")
	}
	return image.Rect(*a.X, *a.Y, *a.X+*a.Width, *a.Y+*a.Height), nil
}

func (s *Server) handleAssetCrop(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	region, err := a.rect(asset.Current.Bounds())
	if err != nil {
		return nil, err
	}
	out, err := imaging.Crop(asset.Current, region, a.Scale)
	if err != nil {
		return nil, err
	}
	return s.commit(asset.ID, out, fmt.Sprintf("crop:%d,%d,%dx%d", region.Min.X, region.Min.Y, region.Dx(), region.Dy()))
}

// === Trimmer ===

type trimArgs struct {
	AlphaThreshold int `json:"alpha_threshold"`
	Padding        int `json:"padding"`
	TargetSize     int `json:"target_size"`
}

func (a trimArgs) options() imaging.TrimOptions {
	threshold := a.AlphaThreshold
	if threshold == 0 {
		threshold = imaging.DefaultAlphaThreshold
	}
	return imaging.TrimOptions{
		AlphaThreshold: threshold,
		Padding:        a.Padding,
		TargetSize:     a.TargetSize,
	}
}

type assetTrimArgs struct {
	AssetID        string `json:"asset_id"`
	IncludeOverlay bool   `json:"include_overlay"`
	trimArgs
}

// TrimToolResult is the result of asset_trim.
type TrimToolResult struct {
	EditResult
	Content   imaging.BoundingBox  `json:"content_box"`
	Crop      imaging.BoundingBox  `json:"crop_box"`
	OldWidth  int                  `json:"old_width"`
	OldHeight int                  `json:"old_height"`
	Overlay   *imaging.ImageResult `json:"overlay,omitempty"`
}

func (s *Server) handleAssetTrim(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetTrimArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	res, err := imaging.Trim(asset.Current, a.options())
	if err != nil {
		return nil, err
	}
	edit, err := s.commit(asset.ID, res.Trimmed, fmt.Sprintf("trim:%dx%d", res.NewWidth, res.NewHeight))
	if err != nil {
		return nil, err
	}
	out := &TrimToolResult{
		EditResult: *edit,
		Content:    res.Content,
		Crop:       res.Crop,
		OldWidth:   res.OldWidth,
		OldHeight:  res.OldHeight,
	}
	if a.IncludeOverlay {
		if out.Overlay, err = imaging.EncodeResult(res.Overlay); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type assetTrimBatchArgs struct {
	Sources         []string `json:"sources"`
	IncludeOverlays bool     `json:"include_overlays"`
	ArchiveName     string   `json:"archive_name"`
	trimArgs
}

// BatchItemResult reports one input of asset_trim_batch.
type BatchItemResult struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	FileName  string `json:"file_name,omitempty"`
	OldWidth  int    `json:"old_width,omitempty"`
	OldHeight int    `json:"old_height,omitempty"`
	NewWidth  int    `json:"new_width,omitempty"`
	NewHeight int    `json:"new_height,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchToolResult is the result of asset_trim_batch.
type BatchToolResult struct {
	Location string               `json:"location,omitempty"`
	Summary  batch.Summary        `json:"summary"`
	Items    []BatchItemResult    `json:"items"`
	Entries  []batch.ArchiveEntry `json:"entries"`
}

func (s *Server) handleAssetTrimBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a assetTrimBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Sources) == 0 {
		return nil, errors.Wrap(imaging.ErrInvalidArgument, "sources is required")
	}
	if s.sink == nil {
		return nil, errors.New("no export destination configured")
	}

	items := make([]batch.Item, len(a.Sources))
	for i, src := range a.Sources {
		items[i] = batch.Item{Name: sourceName(src), Ref: src}
	}

	trimmer := batch.NewTrimmer(s.cache,
		batch.WithWorkers(s.batchWorkers),
		batch.WithLogger(s.toolLogger("asset_trim_batch")),
		batch.WithRecorder(s.recorder()))
	results, err := trimmer.Trim(ctx, items, a.options())
	if err != nil {
		return nil, err
	}

	out := &BatchToolResult{
		Summary: batch.Summarize(results),
		Items:   make([]BatchItemResult, 0, len(results)),
	}
	for _, r := range results {
		item := BatchItemResult{Name: r.Name, Status: r.Status()}
		switch {
		case r.Err != nil:
			item.Error = r.Err.Error()
		case r.Trim != nil:
			item.FileName = r.FileName
			item.OldWidth, item.OldHeight = r.Trim.OldWidth, r.Trim.OldHeight
			item.NewWidth, item.NewHeight = r.Trim.NewWidth, r.Trim.NewHeight
		}
		out.Items = append(out.Items, item)
	}

	if out.Summary.OK == 0 {
		out.Entries = []batch.ArchiveEntry{}
		return out, nil
	}

	var buf bytes.Buffer
	now := s.now()
	out.Entries, err = batch.WriteArchive(&buf, results, batch.ArchiveOptions{
		IncludeOverlays: a.IncludeOverlays,
		Modified:        now,
	})
	if err != nil {
		return nil, err
	}
	name := a.ArchiveName
	if name == "" {
		name = "trimmed_" + now.UTC().Format("20060102T150405Z") + ".zip"
	}
	out.Location, err = s.sink.Put(ctx, name, export.ContentTypeZip, &buf)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// === Sprite Sheet Slicer ===

// FrameResult is one slice registered as a new asset.
type FrameResult struct {
	Index   int    `json:"index"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Bounds  Rect   `json:"bounds"`
	AssetID string `json:"asset_id"`
}

// SliceToolResult is the result of asset_slice_grid and asset_detect_frames.
type SliceToolResult struct {
	Source  string               `json:"source_asset_id"`
	Frames  []FrameResult        `json:"frames"`
	Preview *imaging.ImageResult `json:"preview,omitempty"`
}

// previewArgs asks for the sheet with every frame outlined.
type previewArgs struct {
	Preview      bool   `json:"include_preview"`
	PreviewColor string `json:"preview_color"`
}

type assetSliceGridArgs struct {
	AssetID string `json:"asset_id"`
	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
	previewArgs
}

func (s *Server) handleAssetSliceGrid(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetSliceGridArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	frames, err := imaging.SliceGrid(asset.Current, a.Rows, a.Cols)
	if err != nil {
		return nil, err
	}
	return s.registerFrames(asset, frames, a.previewArgs)
}

type assetDetectFramesArgs struct {
	AssetID string `json:"asset_id"`
	MinArea *int   `json:"min_area"`
	previewArgs
}

func (s *Server) handleAssetDetectFrames(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a assetDetectFramesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts := imaging.DetectOptions{MinArea: s.minIslandArea}
	if a.MinArea != nil {
		opts.MinArea = *a.MinArea
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	frames, err := imaging.DetectFrames(asset.Current, opts)
	if err != nil {
		return nil, err
	}
	return s.registerFrames(asset, frames, a.previewArgs)
}

func (s *Server) registerFrames(parent assets.Asset, frames []imaging.Frame, p previewArgs) (*SliceToolResult, error) {
	base := strings.TrimSuffix(parent.Name, filepath.Ext(parent.Name))
	out := &SliceToolResult{Source: parent.ID, Frames: make([]FrameResult, 0, len(frames))}
	for _, f := range frames {
		name := fmt.Sprintf("%s_frame%02d.png", base, f.Index)
		if f.Row >= 0 {
			name = fmt.Sprintf("%s_r%d_c%d.png", base, f.Row, f.Col)
		}
		child := s.store.Add(name, f.Image)
		out.Frames = append(out.Frames, FrameResult{
			Index:   f.Index,
			Row:     f.Row,
			Col:     f.Col,
			Bounds:  rectOf(f.Bounds),
			AssetID: child.ID,
		})
	}
	if !p.Preview {
		return out, nil
	}

	color := p.PreviewColor
	if color == "" {
		color = imaging.DefaultPreviewColor
	}
	preview, err := imaging.FramePreview(parent.Current, frames, color)
	if err != nil {
		return nil, err
	}
	if out.Preview, err = imaging.EncodeResult(preview); err != nil {
		return nil, err
	}
	return out, nil
}

// === Export ===

type assetExportArgs struct {
	AssetID string `json:"asset_id"`
	Name    string `json:"name"`
}

// ExportToolResult is the result of asset_export.
type ExportToolResult struct {
	AssetID  string `json:"asset_id"`
	Location string `json:"location"`
	Bytes    int    `json:"bytes"`
}

func (s *Server) handleAssetExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a assetExportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.sink == nil {
		return nil, errors.New("no export destination configured")
	}
	asset, err := s.get(a.AssetID)
	if err != nil {
		return nil, err
	}
	name := a.Name
	if name == "" {
		name = strings.TrimSuffix(asset.Name, filepath.Ext(asset.Name)) + ".png"
	}
	data, err := imaging.EncodePNG(asset.Current)
	if err != nil {
		return nil, err
	}
	loc, err := s.sink.Put(ctx, name, export.ContentTypePNG, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &ExportToolResult{AssetID: asset.ID, Location: loc, Bytes: len(data)}, nil
}

// toolNames returns every registered tool, sorted.
func toolNames() []string {
	names := make([]string, 0, len(toolHandlers))
	for name := range toolHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
