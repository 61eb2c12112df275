package httpapi

import (
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ironsheep/asset-studio-mcp/internal/imaging"
	"github.com/pkg/errors"
)

// queryInt returns the named integer parameter, or fallback when it is
// absent.
func queryInt(q url.Values, name string, fallback int) (int, error) {
	s := q.Get(name)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(imaging.ErrInvalidArgument, "%s: %q is not an integer", name, s)
	}
	return v, nil
}

func queryBool(q url.Values, name string) (bool, error) {
	s := q.Get(name)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Wrapf(imaging.ErrInvalidArgument, "%s: %q is not a boolean", name, s)
	}
	return v, nil
}

func (a *api) matte(w http.ResponseWriter, r *http.Request, img *image.NRGBA) error {
	q := r.URL.Query()
	key, err := imaging.ParseKeyColor(q.Get("key"))
	if err != nil {
		return err
	}
	strategyName := q.Get("strategy")
	if strategyName == "" {
		strategyName = imaging.StrategyPreset.String()
	}
	strategy, err := imaging.ParseMatteStrategy(strategyName)
	if err != nil {
		return err
	}
	tolerance, err := queryInt(q, "tolerance", 30)
	if err != nil {
		return err
	}
	opts := imaging.MatteOptions{
		Key:            key,
		Strategy:       strategy,
		Tolerance:      tolerance,
		ToleranceScale: a.opts.ToleranceScale,
	}

	hasX, hasY := q.Has("seed_x"), q.Has("seed_y")
	if hasX != hasY {
		return errors.Wrap(imaging.ErrInvalidArgument, "seed_x and seed_y must be given together")
	}
	if hasX {
		x, err := queryInt(q, "seed_x", 0)
		if err != nil {
			return err
		}
		y, err := queryInt(q, "seed_y", 0)
		if err != nil {
			return err
		}
		opts.Seed = &image.Point{X: x, Y: y}
	}

	out, err := imaging.Matte(img, opts)
	if err != nil {
		return err
	}
	return writePNG(w, out)
}

func (a *api) morph(fn func(image.Image, int) (*image.NRGBA, error)) opFunc {
	return func(w http.ResponseWriter, r *http.Request, img *image.NRGBA) error {
		n, err := queryInt(r.URL.Query(), "iterations", imaging.RefineLight)
		if err != nil {
			return err
		}
		out, err := fn(img, n)
		if err != nil {
			return err
		}
		return writePNG(w, out)
	}
}

func (a *api) token(w http.ResponseWriter, _ *http.Request, img *image.NRGBA) error {
	out, err := imaging.MakeToken(img)
	if err != nil {
		return err
	}
	return writePNG(w, out)
}

func (a *api) trim(w http.ResponseWriter, r *http.Request, img *image.NRGBA) error {
	q := r.URL.Query()
	var opts imaging.TrimOptions
	var err error
	if opts.AlphaThreshold, err = queryInt(q, "alpha_threshold", imaging.DefaultAlphaThreshold); err != nil {
		return err
	}
	if opts.Padding, err = queryInt(q, "padding", 0); err != nil {
		return err
	}
	if opts.TargetSize, err = queryInt(q, "target_size", 0); err != nil {
		return err
	}
	overlay, err := queryBool(q, "overlay")
	if err != nil {
		return err
	}

	res, err := imaging.Trim(img, opts)
	if err != nil {
		return err
	}
	w.Header().Set("X-Content-Box", boxHeader(res.Content))
	w.Header().Set("X-Crop-Box", boxHeader(res.Crop))
	if !overlay {
		return writePNG(w, res.Trimmed)
	}
	return writeZip(w, []zipFile{
		{name: "trimmed.png", img: res.Trimmed},
		{name: "debug/overlay.png", img: res.Overlay},
	})
}

func boxHeader(b imaging.BoundingBox) string {
	return fmt.Sprintf("%d,%d,%d,%d", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

func (a *api) slice(w http.ResponseWriter, r *http.Request, img *image.NRGBA) error {
	q := r.URL.Query()
	modeName := q.Get("mode")
	if modeName == "" {
		modeName = imaging.SliceGridMode.String()
	}
	mode, err := imaging.ParseSliceMode(modeName)
	if err != nil {
		return err
	}

	var frames []imaging.Frame
	switch mode {
	case imaging.SliceSmartMode:
		minArea, err := queryInt(q, "min_area", a.opts.MinIslandArea)
		if err != nil {
			return err
		}
		frames, err = imaging.DetectFrames(img, imaging.DetectOptions{MinArea: minArea})
		if err != nil {
			return err
		}
	default:
		rows, err := queryInt(q, "rows", 0)
		if err != nil {
			return err
		}
		cols, err := queryInt(q, "cols", 0)
		if err != nil {
			return err
		}
		frames, err = imaging.SliceGrid(img, rows, cols)
		if err != nil {
			return err
		}
	}

	files := make([]zipFile, 0, len(frames))
	for _, f := range frames {
		name := fmt.Sprintf("frame_%03d.png", f.Index)
		if f.Row >= 0 {
			name = fmt.Sprintf("frame_r%d_c%d.png", f.Row, f.Col)
		}
		files = append(files, zipFile{name: name, img: f.Image})
	}

	preview, err := queryBool(q, "preview")
	if err != nil {
		return err
	}
	if preview {
		color := q.Get("preview_color")
		if color == "" {
			color = imaging.DefaultPreviewColor
		}
		sheet, err := imaging.FramePreview(img, frames, color)
		if err != nil {
			return err
		}
		files = append(files, zipFile{name: "preview.png", img: sheet})
	}
	w.Header().Set("X-Frame-Count", strconv.Itoa(len(frames)))
	return writeZip(w, files)
}
