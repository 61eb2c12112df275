// Package export writes finished assets to their destination.
//
// A Sink stores a named blob and returns where it ended up: a file path for
// DirSink, an s3:// URI for S3Sink.
package export

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Content types written by the server.
const (
	ContentTypePNG = "image/png"
	ContentTypeZip = "application/zip"
)

// ErrInvalidName is returned for empty names or names escaping the sink.
var ErrInvalidName = errors.New("invalid export name")

// Sink stores exported files.
type Sink interface {
	// Put stores the contents of r under name and returns its location.
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// cleanName normalizes a slash-separated relative name. Absolute names and
// names that climb out of the root are rejected.
func cleanName(name string) (string, error) {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	if name == "" || strings.HasPrefix(name, "/") {
		return "", errors.Wrapf(ErrInvalidName, "%q", name)
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return clean, nil
}

// DirSink writes files below a local directory.
type DirSink struct {
	root string
}

// NewDirSink resolves root to an absolute path. The directory is created
// by the first Put.
func NewDirSink(root string) (*DirSink, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve export dir %s", root)
	}
	return &DirSink{root: abs}, nil
}

// Root returns the absolute export directory.
func (d *DirSink) Root() string {
	return d.root
}

// Put writes r to root/name, creating parent directories. The file is
// written under a temporary name and renamed once complete.
func (d *DirSink) Put(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(d.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrapf(err, "create directory for %s", clean)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".export-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp file failed")
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, "write %s", clean)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, "close %s", clean)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrapf(err, "rename %s", clean)
	}
	return dst, nil
}

// Options selects and configures a sink.
type Options struct {
	Dir    string
	Bucket string
	Region string
	Prefix string
}

// Open returns an S3Sink when a bucket is configured and a DirSink
// otherwise.
func Open(ctx context.Context, opts Options) (Sink, error) {
	if opts.Bucket != "" {
		return NewS3Sink(ctx, opts.Bucket, opts.Region, opts.Prefix)
	}
	if opts.Dir == "" {
		return nil, errors.New("export dir is required when no bucket is set")
	}
	return NewDirSink(opts.Dir)
}
