package imaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestPNG writes img as a PNG file under t.TempDir and returns its path.
func writeTestPNG(t *testing.T, name string, w, h int) string {
	t.Helper()
	data, err := EncodePNG(createSolidImage(w, h, opaqueRed))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestImageCache_LoadPath(t *testing.T) {
	ctx := context.Background()
	cache := NewImageCache()
	path := writeTestPNG(t, "hero.png", 12, 9)

	img, err := cache.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 1, cache.Len())

	again, err := cache.Load(ctx, path)
	require.NoError(t, err)
	assert.Same(t, img, again, "second load is served from the cache")
}

func TestImageCache_LoadErrors(t *testing.T) {
	ctx := context.Background()
	cache := NewImageCache()

	_, err := cache.Load(ctx, filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	bogus := filepath.Join(t.TempDir(), "bogus.png")
	require.NoError(t, os.WriteFile(bogus, []byte("not a png"), 0o644))
	_, err = cache.Load(ctx, bogus)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, 0, cache.Len(), "failures are not cached")
}

func TestImageCache_LoadDataURI(t *testing.T) {
	uri, err := EncodeDataURI(createSolidImage(3, 2, opaqueGreen))
	require.NoError(t, err)

	img, err := NewImageCache().Load(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, opaqueGreen, nrgbaAt(img, 2, 1))
}

func TestImageCache_LoadURL(t *testing.T) {
	png, err := EncodePNG(createSolidImage(6, 6, opaqueBlue))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/out.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	img, err := NewImageCache().Load(ctx, srv.URL+"/out.png")
	require.NoError(t, err)
	assert.Equal(t, opaqueBlue, nrgbaAt(img, 0, 0))

	_, err = NewImageCache().Load(ctx, srv.URL+"/gone.png")
	assert.Error(t, err)

	_, err = NewImageCache(WithMaxFetchBytes(16)).Load(ctx, srv.URL+"/out.png")
	assert.ErrorContains(t, err, "exceeds")
}

func TestImageCache_WithHTTPClient(t *testing.T) {
	png, err := EncodePNG(createSolidImage(4, 4, opaqueGreen))
	require.NoError(t, err)

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	ctx := context.Background()
	ref := srv.URL + "/tls.png"

	// The default client does not trust the test certificate.
	_, err = NewImageCache().Load(ctx, ref)
	assert.ErrorContains(t, err, "failed to fetch image")

	cache := NewImageCache(WithHTTPClient(srv.Client()), WithHTTPClient(nil))
	img, err := cache.Load(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, opaqueGreen, nrgbaAt(img, 3, 3))
	assert.Equal(t, 1, cache.Len())

	data, err := cache.ReadSource(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, png, data)
}

func TestImageCache_LoadURLCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImageCache().Load(ctx, srv.URL+"/slow.png")
	assert.Error(t, err)
}

func TestImageCache_EvictAndClear(t *testing.T) {
	ctx := context.Background()
	cache := NewImageCache()
	a := writeTestPNG(t, "a.png", 4, 4)
	b := writeTestPNG(t, "b.png", 4, 4)

	_, err := cache.Load(ctx, a)
	require.NoError(t, err)
	_, err = cache.Load(ctx, b)
	require.NoError(t, err)
	require.Equal(t, 2, cache.Len())

	cache.Evict(a)
	assert.Equal(t, 1, cache.Len())
	cache.Evict("never-loaded")
	assert.Equal(t, 1, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache := NewImageCache()
	path := writeTestPNG(t, "shared.png", 16, 16)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Load(ctx, path)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Len())
}

func TestDescribe(t *testing.T) {
	img := createSolidImage(4, 4, opaqueRed)
	info := Describe(img, "sheet.PNG")
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, "png", info.Format)
	assert.False(t, info.HasAlpha)
	assert.Equal(t, 0, info.TransparentPixels)

	img.SetNRGBA(0, 0, transparent)
	info = Describe(img, "")
	assert.True(t, info.HasAlpha)
	assert.Equal(t, 1, info.TransparentPixels)
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"hero.png":                             "png",
		"/x/y/photo.JPG":                       "jpeg",
		"anim.gif":                             "gif",
		"https://cdn.example/out.webp?sig=abc": "webp",
		"data:image/jpeg;base64,AAAA":          "jpeg",
		"data:text/plain;base64,AAAA":          "unknown",
		"noext":                                "unknown",
	}
	for ref, want := range tests {
		t.Run(ref, func(t *testing.T) {
			assert.Equal(t, want, formatOf(ref))
		})
	}
}
