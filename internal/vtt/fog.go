package vtt

// FogOfWar is a per-cell visibility mask over the grid, row-major,
// true = visible. Out-of-range queries report hidden: unknown cells must
// never leak to the restricted view.
type FogOfWar struct {
	cols, rows int
	cells      []bool
}

// NewFogOfWar creates a fully visible mask of the given dimensions.
func NewFogOfWar(cols, rows int) *FogOfWar {
	f := &FogOfWar{}
	f.Resize(cols, rows)
	return f
}

// Cols returns the column count.
func (f *FogOfWar) Cols() int { return f.cols }

// Rows returns the row count.
func (f *FogOfWar) Rows() int { return f.rows }

func (f *FogOfWar) inBounds(x, y int) bool {
	return x >= 0 && x < f.cols && y >= 0 && y < f.rows
}

// Get reports whether cell (x, y) is visible. False outside the mask.
func (f *FogOfWar) Get(x, y int) bool {
	if !f.inBounds(x, y) {
		return false
	}
	return f.cells[y*f.cols+x]
}

// Set writes one cell; a no-op outside the mask.
func (f *FogOfWar) Set(x, y int, visible bool) {
	if !f.inBounds(x, y) {
		return
	}
	f.cells[y*f.cols+x] = visible
}

// Toggle flips one cell; a no-op outside the mask.
func (f *FogOfWar) Toggle(x, y int) {
	if !f.inBounds(x, y) {
		return
	}
	f.cells[y*f.cols+x] = !f.cells[y*f.cols+x]
}

// RevealAll marks every cell visible.
func (f *FogOfWar) RevealAll() {
	for i := range f.cells {
		f.cells[i] = true
	}
}

// HideAll marks every cell hidden.
func (f *FogOfWar) HideAll() {
	for i := range f.cells {
		f.cells[i] = false
	}
}

// Resize reallocates the mask to cols x rows, reset to fully visible.
// Safe to call repeatedly; the previous buffer is dropped.
func (f *FogOfWar) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	f.cols = cols
	f.rows = rows
	f.cells = make([]bool, cols*rows)
	f.RevealAll()
}

// VisibleCount returns how many cells are currently visible.
func (f *FogOfWar) VisibleCount() int {
	n := 0
	for _, v := range f.cells {
		if v {
			n++
		}
	}
	return n
}
