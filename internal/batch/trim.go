// Package batch runs the trimmer over many images and packages the results.
package batch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/asset-studio-mcp/internal/imaging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Item statuses, also used as metric label values.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Source reads the encoded bytes behind a reference. *imaging.ImageCache
// satisfies it.
type Source interface {
	ReadSource(ctx context.Context, ref string) ([]byte, error)
}

// Recorder counts processed items by status.
type Recorder interface {
	BatchItem(status string)
}

// Item is one input of a batch.
type Item struct {
	// Name is used for logging and to derive the output file name.
	Name string

	// Ref is a file path, data URI or URL.
	Ref string
}

// Result is the outcome of one item. Exactly one of Trim, Skipped or Err
// describes it.
type Result struct {
	Index    int
	Name     string
	FileName string
	Trim     *imaging.TrimResult
	Skipped  bool
	Err      error
}

// Status returns StatusOK, StatusSkipped or StatusFailed.
func (r Result) Status() string {
	switch {
	case r.Err != nil:
		return StatusFailed
	case r.Skipped:
		return StatusSkipped
	default:
		return StatusOK
	}
}

// Summary counts results by status.
type Summary struct {
	OK      int `json:"ok"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status() {
		case StatusOK:
			s.OK++
		case StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}

// Trimmer trims a list of items with bounded parallelism.
type Trimmer struct {
	source   Source
	workers  int
	logger   *zap.Logger
	recorder Recorder
}

// Option configures a Trimmer.
type Option func(*Trimmer)

// WithWorkers sets the number of items processed at once. 1 processes the
// batch strictly in order.
func WithWorkers(n int) Option {
	return func(t *Trimmer) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Trimmer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(t *Trimmer) {
		t.recorder = r
	}
}

// NewTrimmer creates a Trimmer reading images from source.
func NewTrimmer(source Source, opts ...Option) *Trimmer {
	t := &Trimmer{
		source:  source,
		workers: 1,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Trim processes every item and returns one Result per item, in input
// order.
//
// A failing item never stops the batch: decode and geometry errors are
// recorded on its Result, and images without content are marked Skipped.
// Only context cancellation aborts the run, in which case the returned
// error is the context's and unprocessed items carry it too.
func (t *Trimmer) Trim(ctx context.Context, items []Item, opts imaging.TrimOptions) ([]Result, error) {
	results := make([]Result, len(items))
	for i, item := range items {
		results[i] = Result{Index: i, Name: item.Name, FileName: TrimmedFileName(item.Name)}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)

	for i := range items {
		i := i
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			t.trimOne(gctx, items[i], opts, &results[i])
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return results, err
}

func (t *Trimmer) trimOne(ctx context.Context, item Item, opts imaging.TrimOptions, res *Result) {
	start := time.Now()
	logger := t.logger.With(zap.Int("index", res.Index), zap.String("name", item.Name))

	var err error
	res.Trim, err = t.load(ctx, item, opts)

	switch {
	case errors.Is(err, imaging.ErrNoContent):
		res.Skipped = true
		logger.Info("batch item skipped", zap.String("reason", "no content"))
	case err != nil:
		res.Err = err
		logger.Warn("batch item failed", zap.Error(err))
	default:
		logger.Debug("batch item trimmed",
			zap.Int("old_width", res.Trim.OldWidth),
			zap.Int("old_height", res.Trim.OldHeight),
			zap.Int("new_width", res.Trim.NewWidth),
			zap.Int("new_height", res.Trim.NewHeight),
			zap.Duration("duration", time.Since(start)))
	}

	if t.recorder != nil {
		t.recorder.BatchItem(res.Status())
	}
}

func (t *Trimmer) load(ctx context.Context, item Item, opts imaging.TrimOptions) (*imaging.TrimResult, error) {
	data, err := t.source.ReadSource(ctx, item.Ref)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	return imaging.Trim(img, opts)
}

// TrimmedFileName derives "<base>_trimmed.png" from an input name.
func TrimmedFileName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == "/" || base == "" {
		base = "image"
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "image"
	}
	return base + "_trimmed.png"
}
