// Package avatar downloads profile pictures and turns them into small
// self-contained PNG data URIs.
package avatar

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/draw"

	sverrors "github.com/go-drift/stateview/pkg/errors"
)

// DataURIPrefix starts every URI returned by Resolve.
const DataURIPrefix = "data:image/png;base64,"

// maxPictureBytes caps a downloaded picture.
const maxPictureBytes = 8 << 20

// DefaultMemoryEntries is the number of data URIs kept in memory.
const DefaultMemoryEntries = 64

// Resolver turns picture URLs into square PNG thumbnails.
//
// The most recently used thumbnails are kept in memory; when dir is set,
// every thumbnail is also cached on disk under <dir>/<sha256(url)>.png.
type Resolver struct {
	client *http.Client
	size   int
	dir    string
	memory *lru.Cache[string, string]
}

// NewResolver returns a resolver producing size x size thumbnails. An empty
// dir disables the disk cache.
func NewResolver(size int, dir string, timeout time.Duration) *Resolver {
	return NewResolverWithMemory(size, dir, timeout, DefaultMemoryEntries)
}

// NewResolverWithMemory is NewResolver with room for entries data URIs in
// memory. entries below 1 is treated as 1.
func NewResolverWithMemory(size int, dir string, timeout time.Duration, entries int) *Resolver {
	memory, err := lru.New[string, string](max(entries, 1))
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &Resolver{
		client: &http.Client{Timeout: timeout},
		size:   size,
		dir:    dir,
		memory: memory,
	}
}

// Cached returns the number of data URIs held in memory.
func (r *Resolver) Cached() int {
	return r.memory.Len()
}

// Size returns the thumbnail edge length in pixels.
func (r *Resolver) Size() int {
	return r.size
}

// Resolve returns a data URI for the picture at url.
func (r *Resolver) Resolve(ctx context.Context, url string) (string, error) {
	key := cacheKey(url)

	if uri, ok := r.memory.Get(key); ok {
		return uri, nil
	}

	encoded, err := r.loadCached(key)
	if err != nil {
		encoded, err = r.fetch(ctx, url)
		if err != nil {
			return "", err
		}
		r.store(key, encoded)
	}

	uri := DataURIPrefix + base64.StdEncoding.EncodeToString(encoded)
	r.memory.Add(key, uri)
	return uri, nil
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	const op = "avatar.Resolve"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, avatarError(op, sverrors.KindFetch, fmt.Errorf("failed to create request: %w", err))
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, avatarError(op, sverrors.KindFetch, fmt.Errorf("failed to fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, avatarError(op, sverrors.KindFetch, fmt.Errorf("fetch failed: %s returned %s", url, resp.Status))
	}

	src, _, err := image.Decode(io.LimitReader(resp.Body, maxPictureBytes))
	if err != nil {
		return nil, avatarError(op, sverrors.KindDecode, fmt.Errorf("failed to decode %s: %w", url, err))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Thumbnail(src, r.size)); err != nil {
		return nil, avatarError(op, sverrors.KindDecode, err)
	}
	return buf.Bytes(), nil
}

// Thumbnail crops the centered square of src and scales it to size x size.
func Thumbnail(src image.Image, size int) *image.RGBA {
	b := src.Bounds()
	edge := min(b.Dx(), b.Dy())
	crop := image.Rect(0, 0, edge, edge).Add(image.Pt(
		b.Min.X+(b.Dx()-edge)/2,
		b.Min.Y+(b.Dy()-edge)/2,
	))

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}

func (r *Resolver) loadCached(key string) ([]byte, error) {
	if r.dir == "" {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(filepath.Join(r.dir, key+".png"))
}

// store writes the thumbnail atomically. A failed write only costs a refetch.
func (r *Resolver) store(key string, data []byte) {
	if r.dir == "" {
		return
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return
	}
	tmp, err := os.CreateTemp(r.dir, ".avatar-*")
	if err != nil {
		return
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return
	}
	if err := os.Rename(tmpPath, filepath.Join(r.dir, key+".png")); err != nil {
		os.Remove(tmpPath)
	}
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func avatarError(op string, kind sverrors.ErrorKind, err error) error {
	return &sverrors.ViewError{Op: op, Kind: kind, Err: err, Timestamp: time.Now()}
}
