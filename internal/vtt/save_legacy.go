package vtt

import (
	"bytes"
	"fmt"
)

// Legacy referenced-path format (read only). The layout went through
// five revisions that appended optional trailing fields to the token
// record without ever adding a version tag, so the revision has to be
// recovered heuristically from the total file size.
const (
	legacyPathSlot = 256
	legacyNameSlot = 64

	// magic + map path slot + token count + fog cols/rows + cell size +
	// offset x/y + grid flag byte + camera x/y/zoom.
	legacyHeaderSize = 4 + legacyPathSlot + 6*4 + 1 + 3*4

	// path slot + grid x/y + span + name slot + hidden byte.
	legacyBaseRecord = legacyPathSlot + 3*4 + legacyNameSlot + 1

	legacyVersionMax = 5

	// legacySizeTolerance absorbs stray trailing bytes when matching a
	// file size against a predicted layout.
	legacySizeTolerance = 100
)

// legacyRecordSize returns the per-token record size for a revision:
// V2 appended damage, V3 squad, V4 opacity, V5 the condition flags.
func legacyRecordSize(version int) int {
	size := legacyBaseRecord
	if version >= 2 {
		size += 4
	}
	if version >= 3 {
		size += 4
	}
	if version >= 4 {
		size++
	}
	if version >= 5 {
		size += int(ConditionCount)
	}
	return size
}

// legacyExpectedSize predicts the total file size a revision would
// produce for the header's token count and fog dimensions.
func legacyExpectedSize(version, tokenCount, fogCols, fogRows int) int {
	return legacyHeaderSize + tokenCount*legacyRecordSize(version) + fogCols*fogRows
}

// detectLegacyVersion classifies a legacy file as the highest revision
// whose predicted size fits within the tolerance. With zero tokens every
// revision predicts the same size and the highest wins, which is harmless
// because every optional field has a safe default.
func detectLegacyVersion(fileSize, tokenCount, fogCols, fogRows int) int {
	version := 1
	for v := 1; v <= legacyVersionMax; v++ {
		if fileSize >= legacyExpectedSize(v, tokenCount, fogCols, fogRows)-legacySizeTolerance {
			version = v
		}
	}
	return version
}

func loadLegacy(data []byte, store *AssetStore) (*WorldState, error) {
	r := bytes.NewReader(data[4:])

	mapPath, ok := readFixedString(r, legacyPathSlot)
	if !ok {
		return nil, fmt.Errorf("%w: truncated header", ErrFormat)
	}
	var header [6]int32
	for i := range header {
		v, hok := readI32(r)
		if !hok {
			return nil, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		header[i] = v
	}
	tokenCount := int(header[0])
	fogCols, fogRows := int(header[1]), int(header[2])
	cell, offX, offY := int(header[3]), int(header[4]), int(header[5])
	showGrid, okG := readBoolByte(r)
	camX, okX := readF32(r)
	camY, okY := readF32(r)
	camZoom, okZ := readF32(r)
	if !okG || !okX || !okY || !okZ {
		return nil, fmt.Errorf("%w: truncated header", ErrFormat)
	}
	if fogCols < 0 || fogCols > maxFogDim || fogRows < 0 || fogRows > maxFogDim {
		return nil, fmt.Errorf("%w: fog dimensions %dx%d", ErrFormat, fogCols, fogRows)
	}
	if tokenCount < 0 || tokenCount > maxTokenRecords {
		return nil, fmt.Errorf("%w: token count %d", ErrFormat, tokenCount)
	}

	version := detectLegacyVersion(len(data), tokenCount, fogCols, fogRows)

	w := NewWorldState()
	if cell < 1 {
		cell = 1
	}
	w.Grid = Grid{CellSize: cell, OffsetX: offX, OffsetY: offY}
	w.ShowGrid = showGrid
	w.Camera = CameraSnapshot{X: camX, Y: camY, Zoom: camZoom}
	w.MapW, w.MapH = fogCols*cell, fogRows*cell

	if mapPath != "" {
		if id, err := store.GetOrLoad(mapPath); err == nil {
			w.MapAsset = id
			if a := store.Get(id); a.Loaded() {
				w.MapW, w.MapH = a.Width, a.Height
			}
		}
	}

	for i := 0; i < tokenCount; i++ {
		t, tok := readLegacyToken(r, store, version)
		if !tok {
			break
		}
		if len(w.Tokens) >= MaxTokens {
			continue
		}
		t.ID = w.allocTokenID()
		w.Tokens = append(w.Tokens, t)
	}

	w.Fog.Resize(fogCols, fogRows)
	copyFogFrom(r, fogCols, fogRows, w.Fog)
	return w, nil
}

// readLegacyToken parses one legacy token record. Base fields are
// mandatory (a short read drops the token and ends the batch); optional
// trailing fields each degrade independently to their safe default:
// damage 0, squad none, opacity 255, conditions clear.
func readLegacyToken(r *bytes.Reader, store *AssetStore, version int) (*Token, bool) {
	path, ok := readFixedString(r, legacyPathSlot)
	if !ok {
		return nil, false
	}
	gx, okX := readI32(r)
	gy, okY := readI32(r)
	span, okS := readI32(r)
	if !okX || !okY || !okS {
		return nil, false
	}
	name, ok := readFixedString(r, legacyNameSlot)
	if !ok {
		return nil, false
	}
	hidden, ok := readBoolByte(r)
	if !ok {
		return nil, false
	}

	t := &Token{
		GridX:   int(gx),
		GridY:   int(gy),
		Asset:   NoAsset,
		Name:    name,
		Squad:   SquadNone,
		Opacity: 255,
		Hidden:  hidden,
	}
	t.SetSpan(int(span))

	if version >= 2 {
		if v, ok := readI32(r); ok {
			t.Damage = int(v)
			if t.Damage < 0 {
				t.Damage = 0
			}
		}
	}
	if version >= 3 {
		if v, ok := readI32(r); ok {
			t.SetSquad(int(v))
		}
	}
	if version >= 4 {
		if b, ok := readByte(r); ok {
			t.Opacity = b
		}
	}
	if version >= 5 {
		for i := range t.Conditions {
			if b, ok := readBoolByte(r); ok {
				t.Conditions[i] = b
			}
		}
	}

	if path != "" {
		if id, err := store.GetOrLoad(path); err == nil {
			t.Asset = id
		}
	}
	return t, true
}

// readFixedString reads a NUL-padded fixed-width path/name slot.
func readFixedString(r *bytes.Reader, slot int) (string, bool) {
	b, ok := readBytes(r, slot)
	if !ok {
		return "", false
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), true
}
