package vtt

import (
	"fmt"
	"os"
)

// View indices: the privileged view sees everything, the restricted one
// hides fog, hidden tokens, and editor overlays.
const (
	ViewDM     = 0
	ViewPlayer = 1
)

// Session bundles the process's mutable state (world, asset store, one
// camera per view) into one explicit object owned by the application
// root and passed by reference. Nothing here is globally reachable, and
// only the main update step mutates it.
type Session struct {
	World  *WorldState
	Assets *AssetStore
	Cams   [2]Camera

	// SyncViews mirrors the DM camera onto the player view each tick.
	SyncViews bool

	// MapPaths is the sorted map candidate list; MapCurrent indexes it.
	MapPaths   []string
	MapCurrent int

	// TokenPaths is the sorted token image palette.
	TokenPaths []string

	SavesDir string
}

// NewSession scans the asset directories and activates the first map.
func NewSession(cfg Config) *Session {
	s := &Session{
		World:      NewWorldState(),
		Assets:     NewAssetStore(),
		Cams:       [2]Camera{NewCamera(), NewCamera()},
		SyncViews:  true,
		MapPaths:   ScanImageDir(cfg.MapsDir),
		TokenPaths: ScanImageDir(cfg.TokensDir),
		SavesDir:   cfg.SavesDir,
	}
	if len(s.MapPaths) > 0 {
		s.activateMap(0)
	}
	return s
}

// activateMap loads MapPaths[i] and installs it as the active map.
func (s *Session) activateMap(i int) {
	if i < 0 || i >= len(s.MapPaths) {
		return
	}
	s.MapCurrent = i
	id, err := s.Assets.GetOrLoad(s.MapPaths[i])
	if err != nil {
		return
	}
	if a := s.Assets.Get(id); a.Loaded() {
		s.World.SetMap(id, a.Width, a.Height)
	} else {
		s.World.SetMap(id, 0, 0)
	}
}

// CycleMap switches to the next (+1) or previous (-1) scanned map.
func (s *Session) CycleMap(step int) {
	n := len(s.MapPaths)
	if n == 0 {
		return
	}
	s.activateMap(((s.MapCurrent+step)%n + n) % n)
}

// DropToken resolves an image path and places a new token at a cell.
// A path that fails to decode skips the add; nothing is mutated.
func (s *Session) DropToken(path string, gx, gy int) (*Token, error) {
	if !IsImagePath(path) {
		return nil, fmt.Errorf("%w: %s", ErrDecode, path)
	}
	id, err := s.Assets.GetOrLoad(path)
	if err != nil {
		return nil, err
	}
	if !s.Assets.Get(id).Loaded() {
		return nil, fmt.Errorf("%w: %s", ErrDecode, path)
	}
	return s.World.AddToken(gx, gy, id)
}

// TickCameras advances camera smoothing for the frame. When the views
// are synced the player camera mirrors the DM camera wholesale.
func (s *Session) TickCameras() {
	s.Cams[ViewDM].Tick()
	if s.SyncViews {
		s.Cams[ViewPlayer].Sync(&s.Cams[ViewDM])
	} else {
		s.Cams[ViewPlayer].Tick()
	}
}

// SaveSlot snapshots the DM camera into the world and writes the slot.
func (s *Session) SaveSlot(slot int) error {
	if slot < 1 || slot > SaveSlots {
		return fmt.Errorf("%w: slot %d", ErrIO, slot)
	}
	if err := os.MkdirAll(s.SavesDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	s.World.Camera = s.Cams[ViewDM].Snapshot()
	return Save(SlotPath(s.SavesDir, slot), s.World, s.Assets)
}

// LoadSlot reads a slot and, on success, swaps in the restored world and
// jumps both cameras to its snapshot. On failure the live world is left
// untouched.
func (s *Session) LoadSlot(slot int) error {
	if slot < 1 || slot > SaveSlots {
		return fmt.Errorf("%w: slot %d", ErrIO, slot)
	}
	w, err := Load(SlotPath(s.SavesDir, slot), s.Assets)
	if err != nil {
		return err
	}
	s.World = w
	s.Cams[ViewDM].SetSnapshot(w.Camera)
	s.Cams[ViewPlayer].SetSnapshot(w.Camera)
	return nil
}
