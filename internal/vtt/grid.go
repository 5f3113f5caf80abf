package vtt

import "math"

// minCalibrationSpan is the smallest reference-rectangle edge (in world
// units) accepted by grid calibration. Smaller drags are treated as
// accidental and rejected without touching the grid.
const minCalibrationSpan = 10.0

// Grid holds the calibration of the infinite cell grid over the map:
// cell edge length in world pixels plus the origin offset of cell (0,0).
type Grid struct {
	CellSize int
	OffsetX  int
	OffsetY  int
}

// DefaultGrid is the grid used before any calibration has happened.
func DefaultGrid() Grid {
	return Grid{CellSize: 64}
}

// WorldToGrid maps a world-space point to the grid cell containing it.
// Cells extend infinitely in all directions, so negative indices are valid.
func (g Grid) WorldToGrid(wx, wy float64) (int, int) {
	cs := float64(g.CellSize)
	gx := int(math.Floor((wx - float64(g.OffsetX)) / cs))
	gy := int(math.Floor((wy - float64(g.OffsetY)) / cs))
	return gx, gy
}

// GridToWorld returns the world-space top-left corner of cell (gx, gy).
func (g Grid) GridToWorld(gx, gy int) (float64, float64) {
	return float64(gx*g.CellSize + g.OffsetX), float64(gy*g.CellSize + g.OffsetY)
}

// ScreenToWorld maps a view-local screen point to world space using the
// camera's current (smoothed) position and zoom.
func ScreenToWorld(sx, sy float64, c *Camera) (float64, float64) {
	return sx/c.Zoom + c.X, sy/c.Zoom + c.Y
}

// ScreenToGrid maps a view-local screen point straight to a grid cell.
// Convenience composition for input handling.
func (g Grid) ScreenToGrid(sx, sy float64, c *Camera) (int, int) {
	wx, wy := ScreenToWorld(sx, sy, c)
	return g.WorldToGrid(wx, wy)
}

// Calibration is a user-dragged reference rectangle spanning a known
// number of cells, from which the grid is derived.
type Calibration struct {
	X1, Y1 float64
	X2, Y2 float64
	CellsW int
	CellsH int
}

// Grid derives the cell size and origin offset from the reference
// rectangle. Returns ok=false (and a zero Grid) when either edge of the
// rectangle is under minCalibrationSpan or the cell counts are invalid;
// callers must leave the previous grid untouched in that case.
func (c Calibration) Grid() (Grid, bool) {
	w := math.Abs(c.X2 - c.X1)
	h := math.Abs(c.Y2 - c.Y1)
	if w < minCalibrationSpan || h < minCalibrationSpan {
		return Grid{}, false
	}
	if c.CellsW < 1 || c.CellsH < 1 {
		return Grid{}, false
	}
	cell := int(math.Round((w/float64(c.CellsW) + h/float64(c.CellsH)) / 2))
	if cell < 1 {
		return Grid{}, false
	}
	// Anchoring the offset at origin mod cell keeps the infinite grid
	// extrapolating correctly away from the dragged rectangle.
	ox := int(math.Min(c.X1, c.X2)) % cell
	oy := int(math.Min(c.Y1, c.Y2)) % cell
	if ox < 0 {
		ox += cell
	}
	if oy < 0 {
		oy += cell
	}
	return Grid{CellSize: cell, OffsetX: ox, OffsetY: oy}, true
}

// FogDims returns the fog matrix dimensions covering a map of the given
// pixel size under this grid.
func (g Grid) FogDims(mapW, mapH int) (cols, rows int) {
	if g.CellSize < 1 {
		return 0, 0
	}
	cols = (mapW + g.CellSize - 1) / g.CellSize
	rows = (mapH + g.CellSize - 1) / g.CellSize
	return cols, rows
}
