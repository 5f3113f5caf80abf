package vtt

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func buildTestWorld(t *testing.T, store *AssetStore) *WorldState {
	t.Helper()
	w := NewWorldState()
	w.Grid = Grid{CellSize: 50, OffsetX: 12, OffsetY: 7}
	w.Camera = CameraSnapshot{X: 100.5, Y: -20.25, Zoom: 1.5}

	mapID, err := store.LoadFromMemory(encodePNG(t, 200, 150), "assets/maps/dungeon.png")
	if err != nil {
		t.Fatal(err)
	}
	w.SetMap(mapID, 200, 150)
	w.Fog.Set(1, 1, false)
	w.Fog.Set(2, 0, false)

	tokID, err := store.LoadFromMemory(encodePNG(t, 32, 32), "assets/tokens/orc.png")
	if err != nil {
		t.Fatal(err)
	}
	a, err := w.AddToken(3, 2, tokID)
	if err != nil {
		t.Fatal(err)
	}
	a.Damage = 9
	a.Squad = 2
	a.Opacity = 128
	a.Hidden = true
	a.SetSpan(2)
	a.ToggleCondition(CondBleeding)
	a.ToggleCondition(CondWeakened)
	a.Selected = true // transient, must not survive the round trip

	b, err := w.AddToken(-4, 11, NoAsset)
	if err != nil {
		t.Fatal(err)
	}
	b.Squad = SquadNone

	if err := w.AddDrawing(Drawing{Shape: ShapeCircle, X1: 10, Y1: 10, X2: 90, Y2: 10, Color: 3}); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slot_0.vtt")

	store := NewAssetStore()
	w := buildTestWorld(t, store)
	if err := Save(path, w, store); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Fresh store: everything must come back from the embedded blobs.
	store2 := NewAssetStore()
	got, err := Load(path, store2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Grid != w.Grid {
		t.Fatalf("grid = %+v, want %+v", got.Grid, w.Grid)
	}
	if got.Camera != w.Camera {
		t.Fatalf("camera = %+v, want %+v", got.Camera, w.Camera)
	}
	if got.Fog.Cols() != w.Fog.Cols() || got.Fog.Rows() != w.Fog.Rows() {
		t.Fatalf("fog dims = %dx%d", got.Fog.Cols(), got.Fog.Rows())
	}
	for y := 0; y < w.Fog.Rows(); y++ {
		for x := 0; x < w.Fog.Cols(); x++ {
			if got.Fog.Get(x, y) != w.Fog.Get(x, y) {
				t.Fatalf("fog cell (%d,%d) mismatch", x, y)
			}
		}
	}

	if len(got.Tokens) != 2 {
		t.Fatalf("tokens = %d, want 2", len(got.Tokens))
	}
	rt := got.Tokens[0]
	if rt.GridX != 3 || rt.GridY != 2 || rt.Span != 2 || rt.Damage != 9 ||
		rt.Squad != 2 || rt.Opacity != 128 || !rt.Hidden {
		t.Fatalf("token fields lost: %+v", rt)
	}
	if !rt.HasCondition(CondBleeding) || !rt.HasCondition(CondWeakened) || rt.HasCondition(CondDazed) {
		t.Fatalf("conditions lost: %v", rt.Conditions)
	}
	if rt.Selected {
		t.Fatal("transient selection persisted")
	}
	if rt.Asset == NoAsset || !store2.Get(rt.Asset).Loaded() {
		t.Fatal("embedded token image did not restore")
	}
	if got.Tokens[1].GridX != -4 || got.Tokens[1].GridY != 11 {
		t.Fatalf("second token at (%d,%d)", got.Tokens[1].GridX, got.Tokens[1].GridY)
	}
	if got.Tokens[1].Asset != NoAsset {
		t.Fatal("asset-less token gained an asset")
	}

	if got.MapAsset == NoAsset || !store2.Get(got.MapAsset).Loaded() {
		t.Fatal("embedded map did not restore")
	}
	if got.MapW != 200 || got.MapH != 150 {
		t.Fatalf("map dims = %dx%d, want 200x150", got.MapW, got.MapH)
	}
}

func TestSaveLoad_SharedAssetEmbedsTwiceRestoresOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.vtt")

	store := NewAssetStore()
	w := NewWorldState()
	id, err := store.LoadFromMemory(encodePNG(t, 16, 16), "assets/tokens/goblin.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddToken(0, 0, id); err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddToken(1, 0, id); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, w, store); err != nil {
		t.Fatal(err)
	}

	store2 := NewAssetStore()
	got, err := Load(path, store2)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tokens[0].Asset != got.Tokens[1].Asset {
		t.Fatal("shared asset split into two entries")
	}
	if store2.Len() != 1 {
		t.Fatalf("store holds %d assets, want 1", store2.Len())
	}
}

// buildCorruptibleSave writes a minimal current-generation save by hand
// so individual records can be corrupted precisely.
func buildCorruptibleSave(tokenRecords ...func(*bytes.Buffer)) []byte {
	var buf bytes.Buffer
	writeU32(&buf, magicCurrent)
	writeI32(&buf, 2) // fog cols
	writeI32(&buf, 2) // fog rows
	writeI32(&buf, 64)
	writeI32(&buf, 0)
	writeI32(&buf, 0)
	writeF32(&buf, 0)
	writeF32(&buf, 0)
	writeF32(&buf, 1)
	// Map record: no path, no blob.
	writeI32(&buf, 0)
	writeI32(&buf, 0)
	writeI32(&buf, int32(len(tokenRecords)))
	for _, rec := range tokenRecords {
		rec(&buf)
	}
	buf.Write(make([]byte, 4)) // fog, all hidden
	return buf.Bytes()
}

func tokenRecord(gx, gy int32, pngLen int32, blob []byte) func(*bytes.Buffer) {
	return func(buf *bytes.Buffer) {
		writeI32(buf, gx)
		writeI32(buf, gy)
		writeI32(buf, 1)  // span
		writeI32(buf, 0)  // damage
		writeI32(buf, -1) // squad
		buf.WriteByte(255)
		writeBool(buf, false)
		for i := 0; i < int(ConditionCount); i++ {
			writeBool(buf, false)
		}
		writeI32(buf, 5)
		buf.WriteString("a.png")
		writeI32(buf, pngLen)
		buf.Write(blob)
	}
}

func loadBytes(t *testing.T, data []byte) (*WorldState, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "x.vtt")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return Load(path, NewAssetStore())
}

func TestLoad_ZeroLengthBlobDegradesToUnresolved(t *testing.T) {
	data := buildCorruptibleSave(
		tokenRecord(1, 1, 0, nil),
		tokenRecord(2, 2, 0, nil),
	)
	w, err := loadBytes(t, data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(w.Tokens) != 2 {
		t.Fatalf("tokens = %d, want 2: later records must survive", len(w.Tokens))
	}
	for _, tok := range w.Tokens {
		if tok.Asset != NoAsset {
			t.Fatalf("token gained asset %d from empty blob", tok.Asset)
		}
	}
}

func TestLoad_OversizedBlobLengthKeepsStreamAligned(t *testing.T) {
	// Declared length above the ceiling: untrustworthy, so no blob bytes
	// are consumed and the next record parses normally.
	data := buildCorruptibleSave(
		tokenRecord(1, 1, maxEmbeddedPNG+1, nil),
		tokenRecord(7, 8, 0, nil),
	)
	w, err := loadBytes(t, data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(w.Tokens) != 2 {
		t.Fatalf("tokens = %d, want 2", len(w.Tokens))
	}
	if w.Tokens[0].Asset != NoAsset {
		t.Fatal("oversized blob resolved to an asset")
	}
	if w.Tokens[1].GridX != 7 || w.Tokens[1].GridY != 8 {
		t.Fatalf("stream misaligned: second token at (%d,%d)", w.Tokens[1].GridX, w.Tokens[1].GridY)
	}
}

func TestLoad_TruncatedTokenDropsTail(t *testing.T) {
	data := buildCorruptibleSave(tokenRecord(1, 1, 0, nil))
	// Claim a second token that is not there.
	// token count field sits right after the empty map record.
	countOff := 4 + 5*4 + 3*4 + 8
	data[countOff] = 2
	w, err := loadBytes(t, data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(w.Tokens) != 1 {
		t.Fatalf("tokens = %d, want 1", len(w.Tokens))
	}
}

func TestLoad_BadMagicFails(t *testing.T) {
	_, err := loadBytes(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 0})
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
	_, err = loadBytes(t, []byte{1, 2})
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("short file err = %v, want ErrFormat", err)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.vtt"), NewAssetStore())
	if !errors.Is(err, ErrIO) {
		t.Fatalf("err = %v, want ErrIO", err)
	}
}

func TestLoad_InsaneFogDimensionsFail(t *testing.T) {
	var buf bytes.Buffer
	writeU32(&buf, magicCurrent)
	writeI32(&buf, maxFogDim+1)
	writeI32(&buf, 2)
	writeI32(&buf, 64)
	writeI32(&buf, 0)
	writeI32(&buf, 0)
	writeF32(&buf, 0)
	writeF32(&buf, 0)
	writeF32(&buf, 1)
	_, err := loadBytes(t, buf.Bytes())
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
}

func TestCopyFogFrom_DimensionMismatch(t *testing.T) {
	// Stored mask larger than the live one on both axes.
	stored := make([]byte, 6*5)
	for i := range stored {
		stored[i] = 1
	}
	stored[0*6+1] = 0 // (1,0)
	stored[4*6+5] = 0 // outside the live 3x2 mask

	fog := NewFogOfWar(3, 2)
	copyFogFrom(bytes.NewReader(stored), 6, 5, fog)
	if fog.Get(1, 0) {
		t.Fatal("shared cell not copied")
	}
	if !fog.Get(2, 1) {
		t.Fatal("shared visible cell lost")
	}

	// Stored mask smaller: cells beyond it stay visible.
	fog2 := NewFogOfWar(4, 4)
	copyFogFrom(bytes.NewReader([]byte{0, 0, 0, 0}), 2, 2, fog2)
	if fog2.Get(0, 0) || fog2.Get(1, 1) {
		t.Fatal("stored cells not applied")
	}
	if !fog2.Get(3, 3) {
		t.Fatal("cell outside the stored mask went hidden")
	}

	// Short stream: remaining rows keep their reset (visible) state.
	fog3 := NewFogOfWar(2, 3)
	copyFogFrom(bytes.NewReader([]byte{0, 0}), 2, 3, fog3)
	if fog3.Get(0, 0) {
		t.Fatal("first row not applied")
	}
	if !fog3.Get(0, 2) {
		t.Fatal("row past the short stream went hidden")
	}
}

func TestCopyFogFrom_FuzzedDimensions(t *testing.T) {
	// Random stored/live dimension pairs up to 1000x1000, in both
	// directions, with randomly truncated streams. Sampled cells must
	// match the stored byte when one was read, and stay visible when
	// the stream or the stored mask did not reach them.
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		storedCols := rng.Intn(1000) + 1
		storedRows := rng.Intn(1000) + 1
		liveCols := rng.Intn(1000) + 1
		liveRows := rng.Intn(1000) + 1
		if i == 0 {
			storedCols, storedRows, liveCols, liveRows = 1000, 1000, 1000, 1000
		}

		data := make([]byte, storedCols*storedRows)
		for j := range data {
			data[j] = byte(rng.Intn(2))
		}
		if rng.Intn(2) == 0 {
			data = data[:rng.Intn(len(data)+1)]
		}

		fog := NewFogOfWar(liveCols, liveRows)
		copyFogFrom(bytes.NewReader(data), storedCols, storedRows, fog)

		for s := 0; s < 200; s++ {
			x := rng.Intn(liveCols)
			y := rng.Intn(liveRows)
			want := true
			if x < storedCols && y < storedRows {
				if idx := y*storedCols + x; idx < len(data) {
					want = data[idx] != 0
				}
			}
			if got := fog.Get(x, y); got != want {
				t.Fatalf("stored %dx%d (%d bytes) into live %dx%d: cell (%d,%d) = %v, want %v",
					storedCols, storedRows, len(data), liveCols, liveRows, x, y, got, want)
			}
		}
	}
}

func TestLoad_MaximalFogMask(t *testing.T) {
	var buf bytes.Buffer
	writeU32(&buf, magicCurrent)
	writeI32(&buf, 1000)
	writeI32(&buf, 1000)
	writeI32(&buf, 64)
	writeI32(&buf, 0)
	writeI32(&buf, 0)
	writeF32(&buf, 0)
	writeF32(&buf, 0)
	writeF32(&buf, 1)
	writeI32(&buf, 0) // map record: no path
	writeI32(&buf, 0) // no blob
	writeI32(&buf, 0) // no tokens
	cells := make([]byte, 1000*1000)
	for i := range cells {
		cells[i] = byte(i % 2)
	}
	buf.Write(cells)

	w, err := loadBytes(t, buf.Bytes())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.Fog.Cols() != 1000 || w.Fog.Rows() != 1000 {
		t.Fatalf("fog = %dx%d", w.Fog.Cols(), w.Fog.Rows())
	}
	for _, p := range [][2]int{{0, 0}, {999, 999}, {500, 321}, {1, 0}} {
		want := (p[1]*1000+p[0])%2 != 0
		if got := w.Fog.Get(p[0], p[1]); got != want {
			t.Fatalf("cell (%d,%d) = %v, want %v", p[0], p[1], got, want)
		}
	}
}

func TestSlotPath_ZeroBasedFilenames(t *testing.T) {
	got := SlotPath("saves", 1)
	want := filepath.Join("saves", "slot_0.vtt")
	if got != want {
		t.Fatalf("slot 1 = %q, want %q", got, want)
	}
	got = SlotPath("saves", 12)
	want = filepath.Join("saves", "slot_11.vtt")
	if got != want {
		t.Fatalf("slot 12 = %q, want %q", got, want)
	}
}
