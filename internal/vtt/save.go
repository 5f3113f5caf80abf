package vtt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// On-disk save format. Two generations exist: the legacy referenced-path
// layout (save_legacy.go, read only) and the current embedded-asset
// layout (written here). Both are little-endian dumps; the magic constant
// is the only generation discriminator.
const (
	magicLegacy  uint32 = 0x56545401
	magicCurrent uint32 = 0x56545402

	// maxEmbeddedPNG is the sanity ceiling for one embedded image blob.
	maxEmbeddedPNG = 50 << 20

	// maxFogDim and maxTokenRecords bound header-declared counts before
	// any allocation; larger values mean a corrupt header.
	maxFogDim       = 8192
	maxTokenRecords = 1 << 20

	// maxAssetPathSlot bounds an embedded record's declared path length.
	maxAssetPathSlot = 1024
)

// SaveSlots is the number of numbered save slots (1-based externally).
const SaveSlots = 12

// SlotPath returns the save file path for a slot number in 1..SaveSlots.
// File names stay zero-based for compatibility with existing saves.
func SlotPath(dir string, slot int) string {
	return filepath.Join(dir, fmt.Sprintf("slot_%d.vtt", slot-1))
}

// Save writes the world, its camera snapshot, and re-encoded copies of
// every referenced asset to path in the current embedded-asset format.
// The save stays viewable even if the source images are later deleted.
func Save(path string, w *WorldState, store *AssetStore) error {
	var buf bytes.Buffer
	writeU32(&buf, magicCurrent)
	writeI32(&buf, int32(w.Fog.Cols()))
	writeI32(&buf, int32(w.Fog.Rows()))
	writeI32(&buf, int32(w.Grid.CellSize))
	writeI32(&buf, int32(w.Grid.OffsetX))
	writeI32(&buf, int32(w.Grid.OffsetY))
	writeF32(&buf, w.Camera.X)
	writeF32(&buf, w.Camera.Y)
	writeF32(&buf, w.Camera.Zoom)

	writeEmbeddedAsset(&buf, store, w.MapAsset)

	writeI32(&buf, int32(len(w.Tokens)))
	for _, t := range w.Tokens {
		writeI32(&buf, int32(t.GridX))
		writeI32(&buf, int32(t.GridY))
		writeI32(&buf, int32(t.Span))
		writeI32(&buf, int32(t.Damage))
		writeI32(&buf, int32(t.Squad))
		buf.WriteByte(t.Opacity)
		writeBool(&buf, t.Hidden)
		for _, c := range t.Conditions {
			writeBool(&buf, c)
		}
		writeEmbeddedAsset(&buf, store, t.Asset)
	}

	for y := 0; y < w.Fog.Rows(); y++ {
		for x := 0; x < w.Fog.Cols(); x++ {
			writeBool(&buf, w.Fog.Get(x, y))
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// writeEmbeddedAsset appends one embedded-asset record: path length +
// path bytes, then PNG length + PNG bytes re-encoded from the asset's
// currently loaded pixels. A zero PNG length means "asset unavailable".
func writeEmbeddedAsset(buf *bytes.Buffer, store *AssetStore, id AssetID) {
	a := store.Get(id)
	if a == nil {
		writeI32(buf, 0)
		writeI32(buf, 0)
		return
	}
	p := portableSavePath(a.Path)
	writeI32(buf, int32(len(p)))
	buf.WriteString(p)

	store.EnsureLoaded(id)
	img := a.RGBA()
	if img == nil {
		writeI32(buf, 0)
		return
	}
	var blob bytes.Buffer
	if err := png.Encode(&blob, img); err != nil {
		writeI32(buf, 0)
		return
	}
	writeI32(buf, int32(blob.Len()))
	buf.Write(blob.Bytes())
}

// portableSavePath rewrites a stored path relative to the working
// directory with forward slashes, so saves travel across machines and
// invocation directories. Paths outside the working tree are kept as-is.
func portableSavePath(p string) string {
	abs, err := filepath.Abs(filepath.FromSlash(p))
	if err != nil {
		return filepath.ToSlash(p)
	}
	wd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// Load reads a save file of either generation into a fresh WorldState.
// Referenced or embedded assets are registered in store. Header-level
// failures (unreadable file, bad magic, truncated header) return an
// error and register nothing the caller must keep; the caller's live
// world is only replaced on success. Record-level failures degrade the
// affected token or asset and the load continues.
func Load(path string, store *AssetStore) (*WorldState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: file shorter than magic", ErrFormat)
	}
	switch magic := binary.LittleEndian.Uint32(data); magic {
	case magicCurrent:
		return loadCurrent(bytes.NewReader(data[4:]), store)
	case magicLegacy:
		return loadLegacy(data, store)
	default:
		return nil, fmt.Errorf("%w: unrecognized magic 0x%08x", ErrFormat, magic)
	}
}

func loadCurrent(r *bytes.Reader, store *AssetStore) (*WorldState, error) {
	var header [5]int32
	for i := range header {
		v, ok := readI32(r)
		if !ok {
			return nil, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		header[i] = v
	}
	fogCols, fogRows := int(header[0]), int(header[1])
	cell, offX, offY := int(header[2]), int(header[3]), int(header[4])
	if fogCols < 0 || fogCols > maxFogDim || fogRows < 0 || fogRows > maxFogDim {
		return nil, fmt.Errorf("%w: fog dimensions %dx%d", ErrFormat, fogCols, fogRows)
	}
	camX, okX := readF32(r)
	camY, okY := readF32(r)
	camZoom, okZ := readF32(r)
	if !okX || !okY || !okZ {
		return nil, fmt.Errorf("%w: truncated header", ErrFormat)
	}

	w := NewWorldState()
	if cell < 1 {
		cell = 1
	}
	w.Grid = Grid{CellSize: cell, OffsetX: offX, OffsetY: offY}
	w.Camera = CameraSnapshot{X: camX, Y: camY, Zoom: camZoom}

	// All embedded assets resolve before tokens bind to them; the map
	// record comes first in the stream.
	mapID, aligned := readEmbeddedAsset(r, store)
	w.MapAsset = mapID
	if a := store.Get(mapID); a.Loaded() {
		w.MapW, w.MapH = a.Width, a.Height
	} else {
		w.MapW, w.MapH = fogCols*cell, fogRows*cell
	}

	if aligned {
		count, ok := readI32(r)
		if ok && count >= 0 && count <= maxTokenRecords {
			for i := 0; i < int(count); i++ {
				t, ok := readCurrentToken(r, store)
				if !ok {
					break
				}
				if len(w.Tokens) >= MaxTokens {
					continue
				}
				t.ID = w.allocTokenID()
				w.Tokens = append(w.Tokens, t)
			}
		}
	}

	w.Fog.Resize(fogCols, fogRows)
	copyFogFrom(r, fogCols, fogRows, w.Fog)
	return w, nil
}

// readCurrentToken parses one fixed-layout token record plus its
// embedded asset. A short read returns ok=false; the partial token is
// dropped and the batch ends there.
func readCurrentToken(r *bytes.Reader, store *AssetStore) (*Token, bool) {
	var fields [5]int32
	for i := range fields {
		v, ok := readI32(r)
		if !ok {
			return nil, false
		}
		fields[i] = v
	}
	opacity, ok := readByte(r)
	if !ok {
		return nil, false
	}
	hidden, ok := readBoolByte(r)
	if !ok {
		return nil, false
	}
	var conds [ConditionCount]bool
	for i := range conds {
		b, ok := readBoolByte(r)
		if !ok {
			return nil, false
		}
		conds[i] = b
	}
	asset, aligned := readEmbeddedAsset(r, store)
	if !aligned {
		return nil, false
	}

	t := &Token{
		GridX:      int(fields[0]),
		GridY:      int(fields[1]),
		Asset:      asset,
		Opacity:    opacity,
		Hidden:     hidden,
		Conditions: conds,
	}
	t.SetSpan(int(fields[2]))
	t.Damage = int(fields[3])
	if t.Damage < 0 {
		t.Damage = 0
	}
	t.SetSquad(int(fields[4]))
	return t, true
}

// readEmbeddedAsset parses one embedded-asset record and registers the
// image with the store, reusing an existing handle when the identity is
// already present. Returns NoAsset for an absent or rejected blob. The
// second result reports whether the stream is still aligned on the next
// field: a declared PNG length that is non-positive or above the ceiling
// is untrustworthy, so no blob bytes are consumed and parsing continues
// at the next field with the reference left unresolved.
func readEmbeddedAsset(r *bytes.Reader, store *AssetStore) (AssetID, bool) {
	pathLen, ok := readI32(r)
	if !ok || pathLen < 0 || pathLen > maxAssetPathSlot {
		return NoAsset, false
	}
	pathBytes, ok := readBytes(r, int(pathLen))
	if !ok {
		return NoAsset, false
	}
	blobLen, ok := readI32(r)
	if !ok {
		return NoAsset, false
	}
	if blobLen <= 0 || blobLen > maxEmbeddedPNG {
		return NoAsset, true
	}
	blob, ok := readBytes(r, int(blobLen))
	if !ok {
		return NoAsset, false
	}
	id, err := store.LoadFromMemory(blob, string(pathBytes))
	if err != nil {
		// Store full: this one reference stays unresolved.
		return NoAsset, true
	}
	return id, true
}

// copyFogFrom reads a stored cols x rows fog matrix, one byte per cell
// row-major, into fog. Only min(stored, current) cells per axis are
// copied; excess stored bytes are skipped without touching fog, and a
// short stream leaves the remaining cells at their reset (visible) state.
func copyFogFrom(r io.Reader, storedCols, storedRows int, fog *FogOfWar) {
	if storedCols <= 0 || storedRows <= 0 {
		return
	}
	row := make([]byte, storedCols)
	copyCols := min(storedCols, fog.Cols())
	copyRows := min(storedRows, fog.Rows())
	for y := 0; y < storedRows; y++ {
		n, err := io.ReadFull(r, row)
		if y < copyRows {
			for x := 0; x < copyCols && x < n; x++ {
				fog.Set(x, y, row[x] != 0)
			}
		}
		if err != nil {
			return
		}
	}
}

// --- little-endian primitives ---

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeI32(buf *bytes.Buffer, v int32) {
	writeU32(buf, uint32(v))
}

func writeF32(buf *bytes.Buffer, v float32) {
	writeU32(buf, math.Float32bits(v))
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readBytes(r *bytes.Reader, n int) ([]byte, bool) {
	if n < 0 || int64(n) > int64(r.Len()) {
		return nil, false
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, false
	}
	return b, true
}

func readI32(r *bytes.Reader) (int32, bool) {
	b, ok := readBytes(r, 4)
	if !ok {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(b)), true
}

func readF32(r *bytes.Reader) (float32, bool) {
	b, ok := readBytes(r, 4)
	if !ok {
		return 0, false
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), true
}

func readByte(r *bytes.Reader) (byte, bool) {
	b, err := r.ReadByte()
	return b, err == nil
}

func readBoolByte(r *bytes.Reader) (bool, bool) {
	b, ok := readByte(r)
	return b != 0, ok
}
