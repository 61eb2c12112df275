package batch

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/ironsheep/asset-studio-mcp/internal/imaging"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

// DebugDir is the archive directory holding crop overlays.
const DebugDir = "debug"

// ArchiveOptions configures WriteArchive.
type ArchiveOptions struct {
	// IncludeOverlays adds each crop overlay under DebugDir.
	IncludeOverlays bool

	// Modified is stamped on every entry. Zero means time.Now.
	Modified time.Time
}

// ArchiveEntry describes one file written to an archive.
type ArchiveEntry struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// WriteArchive packs every successful result into one zip written to w.
// Skipped and failed results are left out. Duplicate file names get a
// numeric suffix ("hero_trimmed_2.png").
//
// PNG data is already deflated, so entries are stored uncompressed.
func WriteArchive(w io.Writer, results []Result, opts ArchiveOptions) ([]ArchiveEntry, error) {
	modified := opts.Modified
	if modified.IsZero() {
		modified = time.Now()
	}

	zw := zip.NewWriter(w)
	entries := make([]ArchiveEntry, 0, len(results))
	seen := make(map[string]int)

	for _, r := range results {
		if r.Status() != StatusOK || r.Trim == nil {
			continue
		}
		name := uniqueName(seen, r.FileName)

		data, err := imaging.EncodePNG(r.Trim.Trimmed)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s", name)
		}
		if err := writeEntry(zw, name, data, modified); err != nil {
			return nil, err
		}
		entries = append(entries, ArchiveEntry{Name: name, Size: len(data)})

		if !opts.IncludeOverlays || r.Trim.Overlay == nil {
			continue
		}
		overlayName := path.Join(DebugDir, strings.TrimSuffix(name, ".png")+"_overlay.png")
		data, err = imaging.EncodePNG(r.Trim.Overlay)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s", overlayName)
		}
		if err := writeEntry(zw, overlayName, data, modified); err != nil {
			return nil, err
		}
		entries = append(entries, ArchiveEntry{Name: overlayName, Size: len(data)})
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "close zip failed")
	}
	return entries, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	f, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: modified,
	})
	if err != nil {
		return errors.Wrapf(err, "create zip entry %s failed", name)
	}
	if _, err := f.Write(data); err != nil {
		return errors.Wrapf(err, "write zip entry %s failed", name)
	}
	return nil
}

func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	n := seen[name]
	if n == 1 {
		return name
	}
	ext := path.Ext(name)
	candidate := fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
	// A generated name can itself collide with a later input name.
	for seen[candidate] > 0 {
		n++
		candidate = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
	}
	seen[candidate]++
	return candidate
}
