package vtt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// SaveInfo summarizes a save file header without loading any assets.
type SaveInfo struct {
	Path       string
	Size       int
	Generation int // 1 = legacy referenced-path, 2 = embedded-asset
	// LegacyVersion is the detected token-record revision; 0 for gen 2.
	LegacyVersion int

	MapPath    string // referenced path (gen 1) or embedded identity (gen 2)
	TokenCount int
	FogCols    int
	FogRows    int
	CellSize   int
	Camera     CameraSnapshot

	// Warnings carries per-record diagnostics that a load would degrade
	// over silently, each classified by a sentinel (ErrSizeSanity).
	Warnings []error
}

// InspectSave reads just enough of a save file to describe it.
func InspectSave(path string) (*SaveInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: file too short", ErrFormat)
	}
	info := &SaveInfo{Path: path, Size: len(data)}
	r := bytes.NewReader(data[4:])

	switch magic := binary.LittleEndian.Uint32(data); magic {
	case magicCurrent:
		info.Generation = 2
		cols, _ := readI32(r)
		rows, _ := readI32(r)
		cell, _ := readI32(r)
		_, _ = readI32(r)      // grid offset x
		_, okHdr := readI32(r) // grid offset y
		if !okHdr {
			return nil, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		info.FogCols, info.FogRows = int(cols), int(rows)
		info.CellSize = int(cell)
		x, _ := readF32(r)
		y, _ := readF32(r)
		z, okZ := readF32(r)
		if !okZ {
			return nil, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		info.Camera = CameraSnapshot{X: x, Y: y, Zoom: z}
		info.scanCurrentRecords(r)
	case magicLegacy:
		info.Generation = 1
		mapPath, ok := readFixedString(r, legacyPathSlot)
		if !ok {
			return nil, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		info.MapPath = mapPath
		var header [6]int32
		for i := range header {
			v, hok := readI32(r)
			if !hok {
				return nil, fmt.Errorf("%w: truncated header", ErrFormat)
			}
			header[i] = v
		}
		info.TokenCount = int(header[0])
		info.FogCols, info.FogRows = int(header[1]), int(header[2])
		info.CellSize = int(header[3])
		if _, ok := readBoolByte(r); !ok {
			return nil, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		x, _ := readF32(r)
		y, _ := readF32(r)
		z, okZ := readF32(r)
		if !okZ {
			return nil, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		info.Camera = CameraSnapshot{X: x, Y: y, Zoom: z}
		info.LegacyVersion = detectLegacyVersion(len(data), info.TokenCount, info.FogCols, info.FogRows)
	default:
		return nil, fmt.Errorf("%w: bad magic %#x", ErrFormat, magic)
	}
	return info, nil
}

// scanCurrentRecords walks the embedded map and token records of a
// current-generation file without decoding any blob, collecting the
// size-sanity diagnostics a load would degrade over. A short read ends
// the walk; the header fields already gathered stay valid.
func (info *SaveInfo) scanCurrentRecords(r *bytes.Reader) {
	mapPath, ok := info.skipEmbeddedRecord(r, "map")
	if !ok {
		return
	}
	info.MapPath = mapPath

	cnt, ok := readI32(r)
	if !ok || cnt < 0 || cnt > maxTokenRecords {
		return
	}
	info.TokenCount = int(cnt)

	for i := 0; i < int(cnt); i++ {
		// Fixed token fields: 5 i32, opacity, hidden, condition flags.
		if _, ok := readBytes(r, 5*4+2+int(ConditionCount)); !ok {
			return
		}
		if _, ok := info.skipEmbeddedRecord(r, fmt.Sprintf("token %d", i)); !ok {
			return
		}
	}
}

// skipEmbeddedRecord advances past one embedded-asset record, recording
// a warning for a blob length a load would refuse to trust. Returns
// ok=false when the stream is cut short or misaligned.
func (info *SaveInfo) skipEmbeddedRecord(r *bytes.Reader, label string) (string, bool) {
	pathLen, ok := readI32(r)
	if !ok || pathLen < 0 || pathLen > maxAssetPathSlot {
		return "", false
	}
	pathBytes, ok := readBytes(r, int(pathLen))
	if !ok {
		return "", false
	}
	blobLen, ok := readI32(r)
	if !ok {
		return "", false
	}
	if blobLen < 0 || blobLen > maxEmbeddedPNG {
		info.Warnings = append(info.Warnings,
			fmt.Errorf("%w: %s declares a %d-byte image", ErrSizeSanity, label, blobLen))
		return string(pathBytes), true
	}
	if blobLen > 0 {
		if _, ok := readBytes(r, int(blobLen)); !ok {
			return string(pathBytes), false
		}
	}
	return string(pathBytes), true
}
