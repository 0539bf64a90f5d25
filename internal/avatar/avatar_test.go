package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sverrors "github.com/go-drift/stateview/pkg/errors"
)

func pictureServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	// 60x40 picture: left half red, right half blue.
	src := image.NewRGBA(image.Rect(0, 0, 60, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= 30 {
				c = color.RGBA{B: 255, A: 255}
			}
			src.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/picture.png":
			w.Write(buf.Bytes())
		case "/broken.png":
			w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func decodeURI(t *testing.T, uri string) image.Image {
	t.Helper()
	if !strings.HasPrefix(uri, DataURIPrefix) {
		t.Fatalf("uri %q lacks data prefix", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, DataURIPrefix))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestResolve(t *testing.T) {
	var hits int32
	srv := pictureServer(t, &hits)
	dir := t.TempDir()
	r := NewResolver(16, dir, time.Second)

	uri, err := r.Resolve(context.Background(), srv.URL+"/picture.png")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	img := decodeURI(t, uri)
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("thumbnail bounds = %v, want 16x16", b)
	}
	if rr, _, bb, _ := img.At(1, 8).RGBA(); rr < 0xf000 || bb > 0x1000 {
		t.Errorf("left edge should stay red, got r=%x b=%x", rr, bb)
	}

	if _, err := os.Stat(filepath.Join(dir, cacheKey(srv.URL+"/picture.png")+".png")); err != nil {
		t.Errorf("thumbnail not cached on disk: %v", err)
	}

	again, err := r.Resolve(context.Background(), srv.URL+"/picture.png")
	if err != nil || again != uri {
		t.Errorf("second Resolve = %v, same=%v", err, again == uri)
	}

	fresh := NewResolver(16, dir, time.Second)
	if _, err := fresh.Resolve(context.Background(), srv.URL+"/picture.png"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hits = %d, want 1 (memory then disk cache)", n)
	}
}

func TestResolveMemoryIsBounded(t *testing.T) {
	var hits int32
	srv := pictureServer(t, &hits)
	r := NewResolverWithMemory(8, "", time.Second, 2)

	for i := 0; i < 5; i++ {
		url := fmt.Sprintf("%s/picture.png?n=%d", srv.URL, i)
		if _, err := r.Resolve(context.Background(), url); err != nil {
			t.Fatalf("Resolve(%d): %v", i, err)
		}
	}
	if n := r.Cached(); n != 2 {
		t.Errorf("Cached() = %d, want 2", n)
	}

	// The newest URL is still in memory; the oldest was evicted.
	if _, err := r.Resolve(context.Background(), srv.URL+"/picture.png?n=4"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&hits); n != 5 {
		t.Errorf("server hits = %d, want 5", n)
	}
	if _, err := r.Resolve(context.Background(), srv.URL+"/picture.png?n=0"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&hits); n != 6 {
		t.Errorf("server hits = %d, want 6 after an evicted URL", n)
	}
}

func TestResolveErrors(t *testing.T) {
	var hits int32
	srv := pictureServer(t, &hits)
	r := NewResolver(16, "", time.Second)

	if _, err := r.Resolve(context.Background(), srv.URL+"/missing.png"); sverrors.KindOf(err) != sverrors.KindFetch {
		t.Errorf("404: err = %v, want fetch kind", err)
	}
	if _, err := r.Resolve(context.Background(), srv.URL+"/broken.png"); sverrors.KindOf(err) != sverrors.KindDecode {
		t.Errorf("garbage: err = %v, want decode kind", err)
	}
}

func TestThumbnailCropsCenter(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 50, 30))
	dst := Thumbnail(src, 8)
	if dst.Bounds() != image.Rect(0, 0, 8, 8) {
		t.Errorf("bounds = %v", dst.Bounds())
	}
}
