package service

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiobook-storefront/gateway"
	"audiobook-storefront/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestOptimizeImage(t *testing.T) {
	src := pngBytes(t, 1200, 600)

	thumb, err := OptimizeImage(src, SizeThumb)
	require.NoError(t, err)
	w, h := jpegSize(t, thumb)
	assert.Equal(t, 300, w)
	assert.Equal(t, 150, h)

	medium, err := OptimizeImage(src, "unknown")
	require.NoError(t, err)
	w, _ = jpegSize(t, medium)
	assert.Equal(t, 800, w)

	small, err := OptimizeImage(pngBytes(t, 100, 80), SizeThumb)
	require.NoError(t, err)
	w, h = jpegSize(t, small)
	assert.Equal(t, 100, w)
	assert.Equal(t, 80, h)

	_, err = OptimizeImage([]byte("not an image"), SizeThumb)
	assert.ErrorContains(t, err, "failed to decode image")
}

func TestImageCache(t *testing.T) {
	cache := NewImageCache(t.TempDir() + "/nested")

	_, ok, err := cache.Read(1, SizeThumb)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Write(1, SizeThumb, []byte("jpeg")))
	data, ok, err := cache.Read(1, SizeThumb)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("jpeg"), data)

	_, ok, _ = cache.Read(1, SizeMedium)
	assert.False(t, ok)
	assert.True(t, strings.HasSuffix(cache.Path(7, SizeMedium), "cover_7_medium.jpg"))
}

type coverBackend struct {
	srv         *httptest.Server
	imageHits   atomic.Int32
	catalogHits atomic.Int32
}

func newCoverBackend(t *testing.T) *coverBackend {
	t.Helper()
	b := &coverBackend{}
	img := pngBytes(t, 640, 640)

	mux := http.NewServeMux()
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		b.imageHits.Add(1)
		if strings.HasSuffix(r.URL.Path, "broken.png") {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Write(img)
	})
	mux.HandleFunc("/api/v1/catalog-items/", func(w http.ResponseWriter, r *http.Request) {
		b.catalogHits.Add(1)
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/v1/catalog-items/"))
		item := models.CatalogItem{ID: id, Title: "Книга"}
		if id != 2 {
			item.CoverImageURL = b.srv.URL + "/img/" + strconv.Itoa(id) + ".png"
		}
		json.NewEncoder(w).Encode(item)
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func TestCoverServiceCachesCovers(t *testing.T) {
	b := newCoverBackend(t)
	dir := t.TempDir()
	svc := NewCoverService(gateway.NewCatalogGateway(b.srv.URL, nil, nil), NewImageCache(dir), nil, SizeThumb, nil)

	first, err := svc.Cover(context.Background(), 1)
	require.NoError(t, err)
	w, _ := jpegSize(t, first)
	assert.Equal(t, 300, w)

	second, err := svc.Cover(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, b.imageHits.Load())
	assert.EqualValues(t, 1, b.catalogHits.Load())

	_, err = os.Stat(NewImageCache(dir).Path(1, SizeThumb))
	assert.NoError(t, err)

	_, err = svc.Cover(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNoCover)
}

func TestCoverServicePrefetch(t *testing.T) {
	b := newCoverBackend(t)
	cache := NewImageCache(t.TempDir())
	svc := NewCoverService(gateway.NewCatalogGateway(b.srv.URL, nil, nil), cache, nil, SizeMedium, nil)

	items := []models.CatalogItem{{ID: 9}}
	for id := 1; id <= 6; id++ {
		items = append(items, models.CatalogItem{ID: id, CoverImageURL: b.srv.URL + "/img/" + strconv.Itoa(id) + ".png"})
	}
	items = append(items, models.CatalogItem{ID: 7, CoverImageURL: b.srv.URL + "/img/broken.png"})

	require.NoError(t, svc.Prefetch(context.Background(), items))
	assert.EqualValues(t, 7, b.imageHits.Load())

	for id := 1; id <= 6; id++ {
		_, ok, err := cache.Read(id, SizeMedium)
		require.NoError(t, err)
		assert.True(t, ok, "item %d", id)
	}
	_, ok, _ := cache.Read(7, SizeMedium)
	assert.False(t, ok)

	// cached covers are not downloaded again
	require.NoError(t, svc.Prefetch(context.Background(), items))
	assert.EqualValues(t, 8, b.imageHits.Load())
	assert.Zero(t, b.catalogHits.Load())
}
