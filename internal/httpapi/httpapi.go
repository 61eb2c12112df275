// Package httpapi exposes the raster operations over HTTP.
//
// Every operation is a POST of the raw image bytes to /v1/{op} with its
// parameters as query values:
//
//	POST /v1/matte?key=green&strategy=contiguous&tolerance=20&seed_x=0&seed_y=0
//	POST /v1/erode?iterations=2
//	POST /v1/dilate?iterations=1
//	POST /v1/token
//	POST /v1/trim?alpha_threshold=1&padding=4&target_size=256&overlay=true
//	POST /v1/slice?mode=grid&rows=2&cols=4
//	POST /v1/slice?mode=smart&min_area=64&preview=true
//
// Single images come back as image/png. Slicing, and trimming with
// overlay=true, come back as application/zip. Errors are JSON.
package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/ironsheep/asset-studio-mcp/internal/imaging"
	"github.com/ironsheep/asset-studio-mcp/internal/logger"
	"github.com/ironsheep/asset-studio-mcp/internal/metrics"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes bounds an uploaded image.
const DefaultMaxBodyBytes = 32 << 20

const contentTypeZip = "application/zip"

var errBodyTooLarge = errors.New("request body too large")

// Options configures the handler.
type Options struct {
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	ToleranceScale float64
	MinIslandArea  int
	MaxBodyBytes   int64
}

type api struct {
	opts Options
	ops  map[string]opFunc
}

// opFunc runs one operation and writes its response.
type opFunc func(w http.ResponseWriter, r *http.Request, img *image.NRGBA) error

// NewRouter returns the HTTP routes.
func NewRouter(opts Options) *mux.Router {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	a := &api{opts: opts}
	a.ops = map[string]opFunc{
		"matte":  a.matte,
		"erode":  a.morph(imaging.Erode),
		"dilate": a.morph(imaging.Dilate),
		"token":  a.token,
		"trim":   a.trim,
		"slice":  a.slice,
	}

	r := mux.NewRouter()
	r.Path("/v1/{op}").HandlerFunc(a.handleOp)
	r.Methods("GET").Path("/healthz").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", opts.Metrics.Handler())
	return r
}

func (a *api) handleOp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: fmt.Sprintf("method %s not allowed", r.Method)})
		return
	}
	name := mux.Vars(r)["op"]
	op, ok := a.ops[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("unknown operation %q", name)})
		return
	}

	tool := "http_" + name
	start := time.Now()
	err := a.run(w, r, op)
	elapsed := time.Since(start)
	a.opts.Metrics.ObserveTool(tool, err, elapsed)

	log := a.opts.Logger.With(logger.Tool(tool), logger.Duration(elapsed))
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", zap.Error(err))
		} else {
			log.Info("request rejected", zap.Int("status", status), zap.Error(err))
		}
		writeJSON(w, status, errorBody{Error: err.Error()})
		return
	}
	log.Debug("request served")
}

func (a *api) run(w http.ResponseWriter, r *http.Request, op opFunc) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.Wrapf(errBodyTooLarge, "limit is %d bytes", tooLarge.Limit)
		}
		return errors.Wrap(imaging.ErrInvalidArgument, err.Error())
	}
	if len(data) == 0 {
		return errors.Wrap(imaging.ErrInvalidArgument, "empty request body")
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return err
	}
	return op(w, r, img)
}

type errorBody struct {
	Error string `json:"error"`
}

// statusOf maps the imaging error taxonomy to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, imaging.ErrNoContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, imaging.ErrDecode),
		errors.Is(err, imaging.ErrInvalidArgument),
		errors.Is(err, imaging.ErrUnsupportedMode),
		errors.Is(err, imaging.ErrOutOfBounds),
		errors.Is(err, imaging.ErrDegenerateGeometry):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writePNG(w http.ResponseWriter, img image.Image) error {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", imaging.MimePNG)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, err = w.Write(data)
	return err
}

type zipFile struct {
	name string
	img  image.Image
}

// writeZip encodes every image as PNG into one stored zip. The archive is
// built in memory so that an encoding error can still become a JSON error.
func writeZip(w http.ResponseWriter, files []zipFile) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	now := time.Now()
	for _, f := range files {
		data, err := imaging.EncodePNG(f.img)
		if err != nil {
			return err
		}
		entry, err := zw.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Store, Modified: now})
		if err != nil {
			return errors.Wrapf(err, "create zip entry %s failed", f.name)
		}
		if _, err := entry.Write(data); err != nil {
			return errors.Wrapf(err, "write zip entry %s failed", f.name)
		}
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "close zip failed")
	}
	w.Header().Set("Content-Type", contentTypeZip)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, err := w.Write(buf.Bytes())
	return err
}
