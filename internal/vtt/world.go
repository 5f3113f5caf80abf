package vtt

import "fmt"

// Hard caps on the dynamically sized collections. Exceeding one raises
// ErrCapacity at the same limits the fixed arrays used to impose.
const (
	MaxTokens   = 256
	MaxDrawings = 256
)

// WorldState is the authoritative shared state of a session: the active
// map reference, grid calibration, fog mask, ordered token and drawing
// lists, the grid display flag, and one persisted camera snapshot. It is
// the unit of save/load. Assets live in an AssetStore owned alongside it;
// the world holds only handles.
type WorldState struct {
	MapAsset AssetID
	// MapW and MapH are the active map's pixel dimensions, retained so
	// fog can be resized when the grid changes even if the asset's
	// pixels are not materialized.
	MapW, MapH int

	Grid     Grid
	Fog      *FogOfWar
	Tokens   []*Token
	Drawings []Drawing
	ShowGrid bool
	Camera   CameraSnapshot

	nextTokenID TokenID
}

// NewWorldState returns an empty world with the default grid and an
// empty fog mask.
func NewWorldState() *WorldState {
	return &WorldState{
		MapAsset: NoAsset,
		Grid:     DefaultGrid(),
		Fog:      NewFogOfWar(0, 0),
		ShowGrid: true,
		Camera:   CameraSnapshot{Zoom: 1},
	}
}

func (w *WorldState) allocTokenID() TokenID {
	w.nextTokenID++
	return w.nextTokenID
}

// AddToken creates a token at a grid cell with defaults: span 1, full
// opacity, no squad.
func (w *WorldState) AddToken(gx, gy int, asset AssetID) (*Token, error) {
	if len(w.Tokens) >= MaxTokens {
		return nil, fmt.Errorf("%w: %d tokens", ErrCapacity, MaxTokens)
	}
	t := &Token{
		ID:      w.allocTokenID(),
		GridX:   gx,
		GridY:   gy,
		Span:    1,
		Asset:   asset,
		Squad:   SquadNone,
		Opacity: 255,
	}
	w.Tokens = append(w.Tokens, t)
	return t, nil
}

// CopyToken duplicates an existing token at a new cell. All persistent
// fields carry over; transient ones (selection) reset.
func (w *WorldState) CopyToken(id TokenID, gx, gy int) (*Token, error) {
	src := w.TokenByID(id)
	if src == nil {
		return nil, fmt.Errorf("%w: token %d not found", ErrFormat, id)
	}
	if len(w.Tokens) >= MaxTokens {
		return nil, fmt.Errorf("%w: %d tokens", ErrCapacity, MaxTokens)
	}
	t := *src
	t.ID = w.allocTokenID()
	t.GridX = gx
	t.GridY = gy
	t.Selected = false
	w.Tokens = append(w.Tokens, &t)
	return w.Tokens[len(w.Tokens)-1], nil
}

// RemoveToken deletes a token by ID, keeping the relative order of the
// survivors (render order matters for overlap).
func (w *WorldState) RemoveToken(id TokenID) bool {
	for i, t := range w.Tokens {
		if t.ID == id {
			w.Tokens = append(w.Tokens[:i], w.Tokens[i+1:]...)
			return true
		}
	}
	return false
}

// TokenByID resolves a stable handle, nil when the token is gone.
func (w *WorldState) TokenByID(id TokenID) *Token {
	for _, t := range w.Tokens {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TokenAt returns the topmost token anchored at a grid cell, nil if none.
func (w *WorldState) TokenAt(gx, gy int) *Token {
	for i := len(w.Tokens) - 1; i >= 0; i-- {
		if w.Tokens[i].GridX == gx && w.Tokens[i].GridY == gy {
			return w.Tokens[i]
		}
	}
	return nil
}

// SelectedTokens returns the currently selected tokens in list order.
func (w *WorldState) SelectedTokens() []*Token {
	var sel []*Token
	for _, t := range w.Tokens {
		if t.Selected {
			sel = append(sel, t)
		}
	}
	return sel
}

// DeselectAll clears the transient selection flag on every token.
func (w *WorldState) DeselectAll() {
	for _, t := range w.Tokens {
		t.Selected = false
	}
}

// AddDrawing appends an annotation shape.
func (w *WorldState) AddDrawing(d Drawing) error {
	if len(w.Drawings) >= MaxDrawings {
		return fmt.Errorf("%w: %d drawings", ErrCapacity, MaxDrawings)
	}
	w.Drawings = append(w.Drawings, d)
	return nil
}

// RemoveDrawingAt deletes the topmost drawing containing a world point.
// Surviving drawings keep their relative sequence.
func (w *WorldState) RemoveDrawingAt(wx, wy int) bool {
	for i := len(w.Drawings) - 1; i >= 0; i-- {
		if w.Drawings[i].Contains(wx, wy) {
			w.Drawings = append(w.Drawings[:i], w.Drawings[i+1:]...)
			return true
		}
	}
	return false
}

// ClearDrawings removes every annotation.
func (w *WorldState) ClearDrawings() {
	w.Drawings = w.Drawings[:0]
}

// SetMap switches the active map and resizes fog to cover it under the
// current grid. Token positions are untouched; they may now lie outside
// the map, which is allowed.
func (w *WorldState) SetMap(id AssetID, mapW, mapH int) {
	w.MapAsset = id
	w.MapW = mapW
	w.MapH = mapH
	w.Fog.Resize(w.Grid.FogDims(mapW, mapH))
}

// ApplyCalibration installs a grid derived from the reference rectangle
// and resets fog to the new dimensions. Returns false, with no state
// mutated, when the rectangle is rejected.
func (w *WorldState) ApplyCalibration(c Calibration) bool {
	grid, ok := c.Grid()
	if !ok {
		return false
	}
	w.Grid = grid
	w.Fog.Resize(grid.FogDims(w.MapW, w.MapH))
	return true
}
