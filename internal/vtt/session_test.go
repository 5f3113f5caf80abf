package vtt

import (
	"os"
	"path/filepath"
	"testing"
)

func testSessionConfig(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.MapsDir = filepath.Join(root, "maps")
	cfg.TokensDir = filepath.Join(root, "tokens")
	cfg.SavesDir = filepath.Join(root, "saves")
	for _, d := range []string{cfg.MapsDir, cfg.TokensDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writePNG(t, filepath.Join(cfg.MapsDir, "a_cave.png"), 192, 128)
	writePNG(t, filepath.Join(cfg.MapsDir, "b_forest.png"), 256, 256)
	writePNG(t, filepath.Join(cfg.TokensDir, "orc.png"), 32, 32)
	return cfg
}

func TestNewSession_ActivatesFirstMap(t *testing.T) {
	s := NewSession(testSessionConfig(t))
	if len(s.MapPaths) != 2 {
		t.Fatalf("maps = %d, want 2", len(s.MapPaths))
	}
	if s.MapCurrent != 0 {
		t.Fatalf("current map = %d, want 0", s.MapCurrent)
	}
	if s.World.MapAsset == NoAsset {
		t.Fatal("no active map")
	}
	if s.World.MapW != 192 || s.World.MapH != 128 {
		t.Fatalf("map dims = %dx%d, want 192x128", s.World.MapW, s.World.MapH)
	}
	// Default 64px grid over 192x128: 3x2 fog.
	if s.World.Fog.Cols() != 3 || s.World.Fog.Rows() != 2 {
		t.Fatalf("fog = %dx%d, want 3x2", s.World.Fog.Cols(), s.World.Fog.Rows())
	}
}

func TestSession_CycleMapWraps(t *testing.T) {
	s := NewSession(testSessionConfig(t))
	s.CycleMap(1)
	if s.MapCurrent != 1 || s.World.MapW != 256 {
		t.Fatalf("after +1: current=%d mapW=%d", s.MapCurrent, s.World.MapW)
	}
	s.CycleMap(1)
	if s.MapCurrent != 0 {
		t.Fatalf("cycle did not wrap forward: %d", s.MapCurrent)
	}
	s.CycleMap(-1)
	if s.MapCurrent != 1 {
		t.Fatalf("cycle did not wrap backward: %d", s.MapCurrent)
	}
}

func TestSession_DropToken(t *testing.T) {
	cfg := testSessionConfig(t)
	s := NewSession(cfg)
	tok, err := s.DropToken(s.TokenPaths[0], 4, 5)
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if tok.GridX != 4 || tok.GridY != 5 || tok.Span != 1 {
		t.Fatalf("token = %+v", tok)
	}
	if !s.Assets.Get(tok.Asset).Loaded() {
		t.Fatal("token image not loaded")
	}

	if _, err := s.DropToken(filepath.Join(cfg.TokensDir, "notes.txt"), 0, 0); err == nil {
		t.Fatal("non-image path accepted")
	}
	if _, err := s.DropToken(filepath.Join(cfg.TokensDir, "ghost.png"), 0, 0); err == nil {
		t.Fatal("missing file accepted")
	}
	if len(s.World.Tokens) != 1 {
		t.Fatalf("failed drops added tokens: %d", len(s.World.Tokens))
	}
}

func TestSession_TickCamerasSyncsPlayerView(t *testing.T) {
	s := NewSession(testSessionConfig(t))
	s.Cams[ViewDM].TargetX = 500
	s.Cams[ViewDM].TargetZoom = 2

	s.TickCameras()
	if s.Cams[ViewPlayer] != s.Cams[ViewDM] {
		t.Fatal("synced player camera diverged from DM camera")
	}

	s.SyncViews = false
	dmBefore := s.Cams[ViewDM]
	s.TickCameras()
	if s.Cams[ViewDM] == dmBefore {
		t.Fatal("DM camera did not advance")
	}
	if s.Cams[ViewPlayer] == s.Cams[ViewDM] {
		t.Fatal("unsynced player camera still mirrors DM")
	}
}

func TestSession_SaveLoadSlotRoundTrip(t *testing.T) {
	s := NewSession(testSessionConfig(t))
	tok, err := s.DropToken(s.TokenPaths[0], 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	tok.Damage = 5
	s.Cams[ViewDM].TargetX = 321
	s.Cams[ViewDM].TargetZoom = 2

	if err := s.SaveSlot(3); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(SlotPath(s.SavesDir, 3)); err != nil {
		t.Fatalf("slot file missing: %v", err)
	}

	// Mutate, then restore.
	s.World.Tokens[0].Damage = 99
	s.Cams[ViewDM].TargetX = 0
	if err := s.LoadSlot(3); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.World.Tokens) != 1 || s.World.Tokens[0].Damage != 5 {
		t.Fatalf("world not restored: %+v", s.World.Tokens)
	}
	if s.Cams[ViewDM].TargetX != 321 || s.Cams[ViewDM].TargetZoom != 2 {
		t.Fatalf("camera not restored: %+v", s.Cams[ViewDM])
	}
	if s.Cams[ViewPlayer].TargetX != 321 {
		t.Fatal("player camera not jumped to the restored snapshot")
	}
}

func TestSession_LoadSlotFailureKeepsLiveWorld(t *testing.T) {
	s := NewSession(testSessionConfig(t))
	if _, err := s.DropToken(s.TokenPaths[0], 1, 1); err != nil {
		t.Fatal(err)
	}
	live := s.World

	if err := s.LoadSlot(7); err == nil {
		t.Fatal("loading an empty slot succeeded")
	}
	if s.World != live {
		t.Fatal("failed load replaced the live world")
	}
	if len(s.World.Tokens) != 1 {
		t.Fatal("failed load mutated the live world")
	}

	if err := s.LoadSlot(0); err == nil {
		t.Fatal("slot 0 accepted")
	}
	if err := s.SaveSlot(SaveSlots + 1); err == nil {
		t.Fatal("slot out of range accepted")
	}
}
