package vtt

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var squadColors = [SquadCount]color.RGBA{
	{R: 255, G: 50, B: 50, A: 255},
	{R: 50, G: 150, B: 255, A: 255},
	{R: 50, G: 255, B: 50, A: 255},
	{R: 255, G: 255, B: 50, A: 255},
	{R: 255, G: 150, B: 50, A: 255},
	{R: 200, G: 50, B: 255, A: 255},
	{R: 50, G: 255, B: 255, A: 255},
	{R: 255, G: 255, B: 255, A: 255},
}

var conditionColors = [ConditionCount]color.RGBA{
	{R: 220, G: 20, B: 20, A: 255},
	{R: 255, G: 215, B: 0, A: 255},
	{R: 147, G: 51, B: 234, A: 255},
	{R: 255, G: 140, B: 0, A: 255},
	{R: 139, G: 69, B: 19, A: 255},
	{R: 30, G: 144, B: 255, A: 255},
	{R: 255, G: 20, B: 147, A: 255},
	{R: 50, G: 205, B: 50, A: 255},
}

var conditionTags = [ConditionCount]string{
	"BL", "DA", "FR", "GR", "RE", "SL", "TA", "WE",
}

var (
	tableBg     = color.RGBA{R: 22, G: 22, B: 26, A: 255}
	gridLineCol = color.RGBA{R: 255, G: 255, B: 255, A: 40}
	selectCol   = color.RGBA{R: 255, G: 230, B: 60, A: 255}
	fogDMCol    = color.RGBA{A: 180}
	fogPlayCol  = color.RGBA{A: 255}
	hudBg       = color.RGBA{R: 12, G: 12, B: 16, A: 230}
	calibCol    = color.RGBA{R: 60, G: 200, B: 255, A: 255}
	measureCol  = color.RGBA{R: 255, G: 200, B: 60, A: 255}
)

// surfaceFor returns the display surface for an asset, materializing and
// caching it on first use. Returns nil until the asset has pixels.
func (g *Game) surfaceFor(id AssetID) *ebiten.Image {
	if img, ok := g.surfaces[id]; ok {
		return img
	}
	a := g.session.Assets.Get(id)
	if !a.Loaded() {
		return nil
	}
	img := ebiten.NewImageFromImage(a.RGBA())
	g.surfaces[id] = img
	return img
}

func (g *Game) Draw(screen *ebiten.Image) {
	for view := ViewDM; view <= ViewPlayer; view++ {
		if g.viewBuf[view] == nil {
			g.viewBuf[view] = ebiten.NewImage(g.viewW, g.height)
		}
		g.renderView(g.viewBuf[view], view)
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Translate(float64(view*g.viewW), 0)
		screen.DrawImage(g.viewBuf[view], opts)
	}
	// Divider between the two views.
	vector.StrokeLine(screen, float32(g.viewW), 0, float32(g.viewW), float32(g.height),
		2.0, color.RGBA{R: 60, G: 60, B: 70, A: 255}, false)
}

func (g *Game) renderView(dst *ebiten.Image, view int) {
	dst.Fill(tableBg)
	w := g.session.World
	cam := &g.session.Cams[view]
	zoom := cam.Zoom

	if surf := g.surfaceFor(w.MapAsset); surf != nil {
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Scale(zoom, zoom)
		opts.GeoM.Translate(-cam.X*zoom, -cam.Y*zoom)
		dst.DrawImage(surf, opts)
	}

	if view == ViewDM && w.ShowGrid {
		g.renderGrid(dst, cam)
	}
	g.renderDrawings(dst, cam)
	if view == ViewDM && g.drawingShape {
		g.renderDrawingPreview(dst, cam)
	}
	g.renderTokens(dst, view, cam)
	g.renderFog(dst, view, cam)
	g.renderTokenMarkers(dst, view, cam)

	if view == ViewDM {
		if g.cal.Active && g.cal.Drag {
			g.renderCalibration(dst, cam)
		}
		if g.measureActive {
			g.renderMeasurement(dst, cam)
		}
		if g.condWheelOpen {
			g.renderConditionWheel(dst)
		}
		g.renderHUD(dst)
	}
}

// worldToView converts world coordinates to view-local pixels.
func worldToView(wx, wy float64, cam *Camera) (float32, float32) {
	return float32((wx - cam.X) * cam.Zoom), float32((wy - cam.Y) * cam.Zoom)
}

func (g *Game) renderGrid(dst *ebiten.Image, cam *Camera) {
	w := g.session.World
	cell := float64(w.Grid.CellSize)
	if cell <= 0 {
		return
	}
	offX, offY := float64(w.Grid.OffsetX), float64(w.Grid.OffsetY)

	// Only the lines crossing the viewport.
	left := cam.X
	top := cam.Y
	right := cam.X + float64(g.viewW)/cam.Zoom
	bottom := cam.Y + float64(g.height)/cam.Zoom

	start := math.Floor((left-offX)/cell)*cell + offX
	for x := start; x <= right; x += cell {
		sx, _ := worldToView(x, 0, cam)
		vector.StrokeLine(dst, sx, 0, sx, float32(g.height), 1.0, gridLineCol, false)
	}
	start = math.Floor((top-offY)/cell)*cell + offY
	for y := start; y <= bottom; y += cell {
		_, sy := worldToView(0, y, cam)
		vector.StrokeLine(dst, 0, sy, float32(g.viewW), sy, 1.0, gridLineCol, false)
	}
}

func drawShape(dst *ebiten.Image, d Drawing, cam *Camera) {
	base := squadColors[d.Color%SquadCount]
	fill := base
	fill.A = 110
	switch d.Shape {
	case ShapeRect:
		x1, y1 := worldToView(float64(min(d.X1, d.X2)), float64(min(d.Y1, d.Y2)), cam)
		x2, y2 := worldToView(float64(max(d.X1, d.X2)), float64(max(d.Y1, d.Y2)), cam)
		vector.FillRect(dst, x1, y1, x2-x1, y2-y1, fill, false)
		vector.StrokeRect(dst, x1, y1, x2-x1, y2-y1, 2.0, base, false)
	case ShapeCircle:
		cx, cy := worldToView(float64(d.X1+d.X2)/2, float64(d.Y1+d.Y2)/2, cam)
		dx := float64(d.X2 - d.X1)
		dy := float64(d.Y2 - d.Y1)
		r := float32(math.Hypot(dx, dy) / 2 * cam.Zoom)
		vector.FillCircle(dst, cx, cy, r, fill, false)
		vector.StrokeCircle(dst, cx, cy, r, 2.0, base, false)
	}
}

func (g *Game) renderDrawings(dst *ebiten.Image, cam *Camera) {
	for _, d := range g.session.World.Drawings {
		drawShape(dst, d, cam)
	}
}

func (g *Game) renderDrawingPreview(dst *ebiten.Image, cam *Camera) {
	mx, my := ebiten.CursorPosition()
	wx, wy := ScreenToWorld(float64(mx), float64(my), cam)
	drawShape(dst, Drawing{
		Shape: g.currentShape,
		X1:    g.drawStartX, Y1: g.drawStartY,
		X2: int(wx), Y2: int(wy),
		Color: g.currentColor,
	}, cam)
}

func (g *Game) renderTokens(dst *ebiten.Image, view int, cam *Camera) {
	w := g.session.World
	cell := float64(w.Grid.CellSize)
	for _, t := range w.Tokens {
		if view == ViewPlayer {
			if t.Hidden {
				continue
			}
			if !w.Fog.Get(t.GridX, t.GridY) {
				continue
			}
		}
		side := cell * float64(t.Span)
		wx := float64(t.GridX)*cell + float64(w.Grid.OffsetX)
		wy := float64(t.GridY)*cell + float64(w.Grid.OffsetY)
		sx, sy := worldToView(wx, wy, cam)
		sw := float32(side * cam.Zoom)

		surf := g.surfaceFor(t.Asset)
		if surf != nil {
			bw, bh := surf.Bounds().Dx(), surf.Bounds().Dy()
			scale := side / float64(bw) * cam.Zoom
			// Bottom edge sits on the cell row so tall art rises above it.
			sh := float32(float64(bh) * scale)
			opts := &ebiten.DrawImageOptions{}
			opts.GeoM.Scale(scale, scale)
			opts.GeoM.Translate(float64(sx), float64(sy)-float64(sh)+float64(sw))
			alpha := float32(t.Opacity) / 255
			if view == ViewDM && t.Hidden {
				alpha *= 0.5
			}
			opts.ColorScale.ScaleAlpha(alpha)
			dst.DrawImage(surf, opts)
		} else {
			vector.FillRect(dst, sx, sy, sw, sw,
				color.RGBA{R: 90, G: 90, B: 100, A: 200}, false)
		}

		if t.Squad != SquadNone {
			c := squadColors[t.Squad]
			th := float32(3)
			vector.FillRect(dst, sx, sy, sw, th, c, false)
			vector.FillRect(dst, sx, sy+sw-th, sw, th, c, false)
			vector.FillRect(dst, sx, sy, th, sw, c, false)
			vector.FillRect(dst, sx+sw-th, sy, th, sw, c, false)
		}
		if view == ViewDM && t.Selected {
			vector.StrokeRect(dst, sx-2, sy-2, sw+4, sw+4, 2.0, selectCol, false)
		}
	}
}

// renderTokenMarkers draws damage counters and condition tags above the
// fog so the DM can read them on obscured cells.
func (g *Game) renderTokenMarkers(dst *ebiten.Image, view int, cam *Camera) {
	w := g.session.World
	cell := float64(w.Grid.CellSize)
	for _, t := range w.Tokens {
		if view == ViewPlayer {
			if t.Hidden || !w.Fog.Get(t.GridX, t.GridY) {
				continue
			}
		}
		wx := float64(t.GridX)*cell + float64(w.Grid.OffsetX)
		wy := float64(t.GridY)*cell + float64(w.Grid.OffsetY)
		sx, sy := worldToView(wx, wy, cam)
		sw := float32(cell * float64(t.Span) * cam.Zoom)

		if t.Damage > 0 {
			label := fmt.Sprintf("%d", t.Damage)
			bw := float32(8*len(label) + 6)
			vector.FillRect(dst, sx+sw-bw, sy, bw, 16,
				color.RGBA{R: 170, G: 20, B: 20, A: 230}, false)
			ebitenutil.DebugPrintAt(dst, label, int(sx+sw-bw)+3, int(sy))
		}

		tagX := sx
		for c := Condition(0); c < ConditionCount; c++ {
			if !t.Conditions[c] {
				continue
			}
			vector.FillRect(dst, tagX, sy+sw-14, 20, 14, conditionColors[c], false)
			ebitenutil.DebugPrintAt(dst, conditionTags[c], int(tagX)+2, int(sy+sw)-15)
			tagX += 22
		}
	}
}

func (g *Game) renderFog(dst *ebiten.Image, view int, cam *Camera) {
	w := g.session.World
	cols, rows := w.Fog.Cols(), w.Fog.Rows()
	if cols == 0 || rows == 0 {
		return
	}
	cell := float64(w.Grid.CellSize)
	fogCol := fogDMCol
	if view == ViewPlayer {
		fogCol = fogPlayCol
	}

	x0 := int(math.Floor((cam.X - float64(w.Grid.OffsetX)) / cell))
	y0 := int(math.Floor((cam.Y - float64(w.Grid.OffsetY)) / cell))
	x1 := int(math.Ceil((cam.X + float64(g.viewW)/cam.Zoom - float64(w.Grid.OffsetX)) / cell))
	y1 := int(math.Ceil((cam.Y + float64(g.height)/cam.Zoom - float64(w.Grid.OffsetY)) / cell))
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, cols-1), min(y1, rows-1)

	for gy := y0; gy <= y1; gy++ {
		for gx := x0; gx <= x1; gx++ {
			if w.Fog.Get(gx, gy) {
				continue
			}
			wx := float64(gx)*cell + float64(w.Grid.OffsetX)
			wy := float64(gy)*cell + float64(w.Grid.OffsetY)
			sx, sy := worldToView(wx, wy, cam)
			side := float32(cell*cam.Zoom) + 1
			vector.FillRect(dst, sx, sy, side, side, fogCol, false)
		}
	}
}

func (g *Game) renderCalibration(dst *ebiten.Image, cam *Camera) {
	x1, y1 := worldToView(math.Min(g.cal.X1, g.cal.X2), math.Min(g.cal.Y1, g.cal.Y2), cam)
	x2, y2 := worldToView(math.Max(g.cal.X1, g.cal.X2), math.Max(g.cal.Y1, g.cal.Y2), cam)
	vector.StrokeRect(dst, x1, y1, x2-x1, y2-y1, 2.0, calibCol, false)
	label := fmt.Sprintf("%d x %d cells  (arrows adjust, Enter apply)", g.cal.CellsW, g.cal.CellsH)
	ebitenutil.DebugPrintAt(dst, label, int(x1), int(y1)-16)
}

func (g *Game) renderMeasurement(dst *ebiten.Image, cam *Camera) {
	w := g.session.World
	mx, my := ebiten.CursorPosition()
	if !g.inDMView(mx, my) {
		return
	}
	gx, gy := w.Grid.ScreenToGrid(float64(mx), float64(my), cam)

	cell := float64(w.Grid.CellSize)
	cx1 := float64(g.measureGX)*cell + float64(w.Grid.OffsetX) + cell/2
	cy1 := float64(g.measureGY)*cell + float64(w.Grid.OffsetY) + cell/2
	cx2 := float64(gx)*cell + float64(w.Grid.OffsetX) + cell/2
	cy2 := float64(gy)*cell + float64(w.Grid.OffsetY) + cell/2
	sx1, sy1 := worldToView(cx1, cy1, cam)
	sx2, sy2 := worldToView(cx2, cy2, cam)
	vector.StrokeLine(dst, sx1, sy1, sx2, sy2, 2.0, measureCol, false)
	vector.FillCircle(dst, sx1, sy1, 4, measureCol, false)
	vector.FillCircle(dst, sx2, sy2, 4, measureCol, false)

	// Chebyshev distance, diagonal moves cost one square.
	dist := max(absInt(gx-g.measureGX), absInt(gy-g.measureGY))
	ebitenutil.DebugPrintAt(dst, fmt.Sprintf("%d squares", dist), int(sx2)+8, int(sy2)-8)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (g *Game) renderConditionWheel(dst *ebiten.Image) {
	t := g.session.World.TokenByID(g.condWheelToken)
	if t == nil {
		return
	}
	cx := float64(g.viewW) / 2
	cy := float64(g.height) / 2
	vector.FillCircle(dst, float32(cx), float32(cy), wheelOuterRadius,
		color.RGBA{A: 160}, false)
	vector.StrokeCircle(dst, float32(cx), float32(cy), wheelOuterRadius, 1.5,
		color.RGBA{R: 200, G: 200, B: 210, A: 255}, false)
	vector.StrokeCircle(dst, float32(cx), float32(cy), wheelInnerRadius, 1.5,
		color.RGBA{R: 200, G: 200, B: 210, A: 255}, false)

	seg := 2 * math.Pi / float64(ConditionCount)
	mid := (wheelInnerRadius + wheelOuterRadius) / 2
	for c := Condition(0); c < ConditionCount; c++ {
		a := (float64(c) + 0.5) * seg
		bx := cx + math.Cos(a)*mid
		by := cy + math.Sin(a)*mid
		col := conditionColors[c]
		if !t.Conditions[c] {
			col = color.RGBA{R: 70, G: 70, B: 80, A: 255}
		}
		vector.FillRect(dst, float32(bx)-36, float32(by)-10, 72, 20, col, false)
		ebitenutil.DebugPrintAt(dst, c.String(), int(bx)-int(len(c.String())*3), int(by)-6)
	}
	ebitenutil.DebugPrintAt(dst, "conditions", int(cx)-30, int(cy)-6)
}

func (g *Game) renderHUD(dst *ebiten.Image) {
	s := g.session
	w := s.World

	vector.FillRect(dst, 0, 0, float32(g.viewW), 20, hudBg, false)
	line := toolNames[g.tool]
	if g.tool == ToolSquad || g.tool == ToolDraw {
		vector.FillRect(dst, float32(8*len(line)+12), 4, 12, 12,
			squadColors[g.currentColor], false)
	}
	if g.tool == ToolDraw {
		if g.currentShape == ShapeRect {
			line += "  [rect]"
		} else {
			line += "  [circle]"
		}
	}
	if s.SyncViews {
		line += "  |  views synced"
	}
	if len(s.MapPaths) > 0 {
		line += "  |  map " + s.MapPaths[s.MapCurrent]
	}
	ebitenutil.DebugPrintAt(dst, line, 4, 2)

	y := g.height - 20
	vector.FillRect(dst, 0, float32(y), float32(g.viewW), 20, hudBg, false)
	bottom := fmt.Sprintf("tokens %d  drawings %d", len(w.Tokens), len(w.Drawings))
	if n := len(s.TokenPaths); n > 0 {
		bottom += "  |  palette " + s.TokenPaths[g.paletteIdx]
	}
	if g.status != "" {
		bottom += "  |  " + g.status
	}
	ebitenutil.DebugPrintAt(dst, bottom, 4, y+2)

	if g.dmgInputActive {
		box := "damage: " + g.dmgBuf + "_"
		vector.FillRect(dst, float32(g.viewW/2-80), float32(g.height/2-14), 160, 28,
			color.RGBA{R: 40, G: 10, B: 10, A: 240}, false)
		ebitenutil.DebugPrintAt(dst, box, g.viewW/2-70, g.height/2-8)
	}
	if g.cal.Active && !g.cal.Drag {
		ebitenutil.DebugPrintAt(dst, "calibration: drag a region of known size", 4, 24)
	}
}
