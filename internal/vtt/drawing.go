package vtt

// ShapeKind selects the geometry of a drawing.
type ShapeKind uint8

const (
	ShapeRect ShapeKind = iota
	ShapeCircle
)

// Drawing is an annotation shape in world space: two corner points and a
// colour index 0..7. Circles use the corners as diameter endpoints.
type Drawing struct {
	Shape  ShapeKind
	X1, Y1 int
	X2, Y2 int
	Color  int
}

// Contains reports whether a world point hits the shape, used for
// targeted removal.
func (d Drawing) Contains(wx, wy int) bool {
	if d.Shape == ShapeRect {
		x1, x2 := min(d.X1, d.X2), max(d.X1, d.X2)
		y1, y2 := min(d.Y1, d.Y2), max(d.Y1, d.Y2)
		return wx >= x1 && wx <= x2 && wy >= y1 && wy <= y2
	}
	cx := (d.X1 + d.X2) / 2
	cy := (d.Y1 + d.Y2) / 2
	dx := d.X2 - d.X1
	dy := d.Y2 - d.Y1
	r2 := (dx*dx + dy*dy) / 4
	px := wx - cx
	py := wy - cy
	return px*px+py*py <= r2
}
