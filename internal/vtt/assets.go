package vtt

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// MaxAssets caps the number of distinct assets the store will register.
const MaxAssets = 256

// AssetID is a handle into an AssetStore. The store is append-only, so
// handles stay valid for the life of the store.
type AssetID int

// NoAsset marks an unresolved asset reference.
const NoAsset AssetID = -1

// Asset is one decoded raster image. The store owns the pixel buffer
// exclusively; tokens and world state hold only AssetIDs.
type Asset struct {
	// Path is the cleaned, slash-normalized path as first registered.
	Path string
	// Width and Height are the decoded dimensions, 0 until decoded.
	Width, Height int
	// Pixels is the RGBA buffer, nil until first materialized.
	Pixels []byte
	// Failed records a decode failure so it is never retried per frame.
	Failed bool
}

// Loaded reports whether the asset has usable pixels.
func (a *Asset) Loaded() bool {
	return a != nil && !a.Failed && a.Pixels != nil
}

// RGBA wraps the pixel buffer as an image, or nil when not loaded.
func (a *Asset) RGBA() *image.RGBA {
	if !a.Loaded() {
		return nil
	}
	return &image.RGBA{
		Pix:    a.Pixels,
		Stride: a.Width * 4,
		Rect:   image.Rect(0, 0, a.Width, a.Height),
	}
}

// AssetKey normalizes a path into the store's identity form: forward
// slashes, lower case. Two load requests whose paths differ only in
// separators or casing resolve to the same asset.
func AssetKey(path string) string {
	return strings.ToLower(filepath.ToSlash(path))
}

// AssetStore is the identity-deduplicated registry of raster assets.
type AssetStore struct {
	assets []*Asset
	byKey  map[string]AssetID
}

// NewAssetStore creates an empty store.
func NewAssetStore() *AssetStore {
	return &AssetStore{byKey: make(map[string]AssetID)}
}

// Len returns the number of registered assets.
func (s *AssetStore) Len() int { return len(s.assets) }

// Get returns the asset for a handle, or nil for NoAsset or an
// out-of-range handle.
func (s *AssetStore) Get(id AssetID) *Asset {
	if id < 0 || int(id) >= len(s.assets) {
		return nil
	}
	return s.assets[id]
}

// Lookup returns the handle registered for a path, if any.
func (s *AssetStore) Lookup(path string) (AssetID, bool) {
	id, ok := s.byKey[AssetKey(path)]
	return id, ok
}

func (s *AssetStore) register(path string) (AssetID, error) {
	if len(s.assets) >= MaxAssets {
		return NoAsset, fmt.Errorf("%w: %d assets", ErrCapacity, MaxAssets)
	}
	id := AssetID(len(s.assets))
	s.assets = append(s.assets, &Asset{Path: filepath.ToSlash(path)})
	s.byKey[AssetKey(path)] = id
	return id, nil
}

// Register adds a path without decoding it, for lazy materialization.
// An existing entry with the same identity is returned as-is.
func (s *AssetStore) Register(path string) (AssetID, error) {
	if id, ok := s.byKey[AssetKey(path)]; ok {
		return id, nil
	}
	return s.register(path)
}

// GetOrLoad resolves a path to a handle, decoding the file on first
// sight. The handle is returned even when decoding failed; callers
// check Loaded. Only a full store is an error.
func (s *AssetStore) GetOrLoad(path string) (AssetID, error) {
	if id, ok := s.byKey[AssetKey(path)]; ok {
		return id, nil
	}
	id, err := s.register(path)
	if err != nil {
		return NoAsset, err
	}
	s.EnsureLoaded(id)
	return id, nil
}

// LoadFromMemory resolves an in-memory encoded image to a handle under
// the given identity, decoding it on first sight. Used when restoring
// embedded assets from a save file; the same dedup-by-identity rule
// applies before any new entry is allocated.
func (s *AssetStore) LoadFromMemory(data []byte, identity string) (AssetID, error) {
	if id, ok := s.byKey[AssetKey(identity)]; ok {
		return id, nil
	}
	id, err := s.register(identity)
	if err != nil {
		return NoAsset, err
	}
	a := s.assets[id]
	if err := decodeInto(a, bytes.NewReader(data)); err != nil {
		a.Failed = true
	}
	return id, nil
}

// EnsureLoaded materializes an asset's pixels from its file path if it
// has neither been decoded nor previously failed. Decode errors are
// recorded on the asset, not raised, and are not retried.
func (s *AssetStore) EnsureLoaded(id AssetID) {
	a := s.Get(id)
	if a == nil || a.Failed || a.Pixels != nil || a.Path == "" {
		return
	}
	f, err := os.Open(filepath.FromSlash(a.Path))
	if err != nil {
		a.Failed = true
		return
	}
	defer f.Close()
	if err := decodeInto(a, f); err != nil {
		a.Failed = true
	}
}

func decodeInto(a *Asset, r interface{ Read([]byte) (int, error) }) error {
	img, _, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, a.Path, err)
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	a.Width = b.Dx()
	a.Height = b.Dy()
	a.Pixels = rgba.Pix
	return nil
}
