package vtt

import (
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

// Tool selects what a left click does in the DM view.
type Tool int

const (
	ToolSelect Tool = iota
	ToolFog
	ToolSquad
	ToolDraw
)

var toolNames = [...]string{"SELECT TOOL", "FOG OF WAR", "SQUAD ASSIGN", "DRAWING"}

// Condition wheel geometry (view-local pixels).
const (
	wheelOuterRadius = 220.0
	wheelInnerRadius = 70.0
)

// dragTracker turns per-frame button state and cursor position into
// drag deltas. The first pressed frame only anchors, wherever the
// cursor sits, so a drag starting at the window origin tracks cleanly.
type dragTracker struct {
	active bool
	lastX  int
	lastY  int
}

// Update feeds one frame; ok reports a live drag with a usable delta.
func (d *dragTracker) Update(pressed bool, x, y int) (dx, dy int, ok bool) {
	if !pressed {
		d.active = false
		return 0, 0, false
	}
	if !d.active {
		d.active = true
		d.lastX, d.lastY = x, y
		return 0, 0, false
	}
	dx, dy = x-d.lastX, y-d.lastY
	d.lastX, d.lastY = x, y
	return dx, dy, true
}

// calibrationState tracks an in-progress grid calibration drag.
type calibrationState struct {
	Active bool
	Drag   bool
	X1, Y1 float64
	X2, Y2 float64
	CellsW int
	CellsH int
}

// Game drives the two views: it owns the session, translates input into
// world commands each update, and renders both views side by side.
// Everything runs on the single ebiten update goroutine, which enforces
// the single-writer rule structurally.
type Game struct {
	session *Session
	log     *logrus.Logger

	width, height int
	viewW         int // each view is viewW x height

	tool         Tool
	currentColor int // squad / drawing colour index
	currentShape ShapeKind

	dragToken   TokenID // 0 = not dragging
	paintingFog bool
	fogPaintTo  bool

	drawingShape           bool
	drawStartX, drawStartY int

	cal calibrationState

	condWheelOpen  bool
	condWheelToken TokenID

	dmgInputActive bool
	dmgBuf         string

	measureActive        bool
	measureGX, measureGY int

	paletteIdx int // selected entry in the token palette

	pan        dragTracker
	prevKeys   map[ebiten.Key]bool
	curKeys    map[ebiten.Key]bool
	prevLeft   bool
	prevMiddle bool

	// Per-asset display surfaces, materialized lazily from the store.
	surfaces map[AssetID]*ebiten.Image
	viewBuf  [2]*ebiten.Image

	status string // last save/load/report outcome, shown in the HUD
}

// NewGame builds the session from config and an empty input state.
func NewGame(cfg Config, log *logrus.Logger) *Game {
	return &Game{
		session:      NewSession(cfg),
		log:          log,
		width:        cfg.WindowWidth,
		height:       cfg.WindowHeight,
		viewW:        cfg.WindowWidth / 2,
		cal:          calibrationState{CellsW: 2, CellsH: 2},
		currentShape: ShapeRect,
		prevKeys:     map[ebiten.Key]bool{},
		surfaces:     map[AssetID]*ebiten.Image{},
	}
}

// Session exposes the state bundle, mainly for the headless tool.
func (g *Game) Session() *Session { return g.session }

// keyJust reports an edge-triggered key press.
func (g *Game) keyJust(k ebiten.Key) bool {
	g.curKeys[k] = ebiten.IsKeyPressed(k)
	return g.curKeys[k] && !g.prevKeys[k]
}

func (g *Game) Update() error {
	g.curKeys = map[ebiten.Key]bool{}
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
	alt := ebiten.IsKeyPressed(ebiten.KeyAlt)

	switch {
	case g.cal.Active:
		g.handleCalibrationKeys()
	case g.dmgInputActive:
		g.handleDamageEntryKeys(shift)
	default:
		g.handleKeys(shift)
	}
	g.handleSaveLoadKeys(shift)
	g.handleMouse(shift, ctrl, alt)

	g.session.TickCameras()
	g.prevKeys = g.curKeys
	return nil
}

func (g *Game) handleCalibrationKeys() {
	if g.keyJust(ebiten.KeyEnter) {
		if g.session.World.ApplyCalibration(Calibration{
			X1: g.cal.X1, Y1: g.cal.Y1, X2: g.cal.X2, Y2: g.cal.Y2,
			CellsW: g.cal.CellsW, CellsH: g.cal.CellsH,
		}) {
			g.status = "grid calibrated"
		} else {
			g.status = "calibration rectangle too small"
		}
		g.cal.Active = false
	}
	if g.keyJust(ebiten.KeyEscape) {
		g.cal.Active = false
	}
	if g.cal.Drag {
		if g.keyJust(ebiten.KeyArrowUp) {
			g.cal.CellsH++
		}
		if g.keyJust(ebiten.KeyArrowDown) && g.cal.CellsH > 1 {
			g.cal.CellsH--
		}
		if g.keyJust(ebiten.KeyArrowRight) {
			g.cal.CellsW++
		}
		if g.keyJust(ebiten.KeyArrowLeft) && g.cal.CellsW > 1 {
			g.cal.CellsW--
		}
	}
}

func (g *Game) handleDamageEntryKeys(shift bool) {
	if g.keyJust(ebiten.KeyEnter) {
		val, err := strconv.Atoi(g.dmgBuf)
		if err == nil {
			if shift {
				val = -val
			}
			for _, t := range g.session.World.SelectedTokens() {
				t.ApplyDamage(val)
			}
		}
		g.dmgInputActive = false
		return
	}
	if g.keyJust(ebiten.KeyEscape) {
		g.dmgInputActive = false
		return
	}
	if g.keyJust(ebiten.KeyBackspace) && len(g.dmgBuf) > 0 {
		g.dmgBuf = g.dmgBuf[:len(g.dmgBuf)-1]
	}
	for d := 0; d < 10; d++ {
		if len(g.dmgBuf) >= 9 {
			break
		}
		if g.keyJust(ebiten.Key0+ebiten.Key(d)) || g.keyJust(ebiten.KeyKP0+ebiten.Key(d)) {
			g.dmgBuf += string(rune('0' + d))
		}
	}
}

func (g *Game) handleKeys(shift bool) {
	w := g.session.World
	sel := w.SelectedTokens()

	// Tool switching is reserved for 1-4 when nothing is selected;
	// with a selection the digits deal damage instead.
	if !g.condWheelOpen {
		if len(sel) == 0 {
			if g.keyJust(ebiten.Key1) {
				g.tool = ToolSelect
			}
			if g.keyJust(ebiten.Key2) {
				g.tool = ToolFog
			}
			if g.keyJust(ebiten.Key3) {
				g.tool = ToolSquad
			}
			if g.keyJust(ebiten.Key4) {
				g.tool = ToolDraw
			}
		} else {
			for d := 1; d <= 9; d++ {
				if g.keyJust(ebiten.Key0 + ebiten.Key(d)) {
					dmg := d
					if shift {
						dmg = -dmg
					}
					for _, t := range sel {
						t.ApplyDamage(dmg)
					}
				}
			}
			if g.keyJust(ebiten.Key0) {
				dmg := 10
				if shift {
					dmg = -10
				}
				for _, t := range sel {
					t.ApplyDamage(dmg)
				}
			}
		}
	}

	if g.tool == ToolSquad || g.tool == ToolDraw {
		if g.keyJust(ebiten.KeyQ) {
			g.currentColor = (g.currentColor + SquadCount - 1) % SquadCount
		}
		if g.keyJust(ebiten.KeyE) {
			g.currentColor = (g.currentColor + 1) % SquadCount
		}
	}
	if g.tool == ToolDraw && g.keyJust(ebiten.KeyW) {
		if g.currentShape == ShapeRect {
			g.currentShape = ShapeCircle
		} else {
			g.currentShape = ShapeRect
		}
	}
	if g.tool == ToolDraw && g.keyJust(ebiten.KeyX) {
		w.ClearDrawings()
	}

	if g.keyJust(ebiten.KeyC) {
		g.cal = calibrationState{Active: true, CellsW: 2, CellsH: 2}
	}

	if g.keyJust(ebiten.KeyDelete) || g.keyJust(ebiten.KeyBackspace) {
		for _, t := range sel {
			w.RemoveToken(t.ID)
		}
	}
	if g.keyJust(ebiten.KeyH) {
		for _, t := range sel {
			t.Hidden = !t.Hidden
		}
	}
	if g.keyJust(ebiten.KeyD) {
		if shift {
			for _, t := range w.Tokens {
				t.Opacity = 255
			}
		} else {
			for _, t := range sel {
				if t.Opacity == 255 {
					t.Opacity = 128
				} else {
					t.Opacity = 255
				}
			}
		}
	}
	if g.keyJust(ebiten.KeyEqual) || g.keyJust(ebiten.KeyKPAdd) {
		for _, t := range sel {
			t.SetSpan(t.Span + 1)
		}
	}
	if g.keyJust(ebiten.KeyMinus) || g.keyJust(ebiten.KeyKPSubtract) {
		for _, t := range sel {
			t.SetSpan(t.Span - 1)
		}
	}

	if g.keyJust(ebiten.KeyEnter) && len(sel) > 0 {
		g.dmgInputActive = true
		g.dmgBuf = ""
	}

	if g.keyJust(ebiten.KeyA) {
		if g.condWheelOpen {
			g.condWheelOpen = false
		} else if len(sel) > 0 {
			g.condWheelOpen = true
			g.condWheelToken = sel[0].ID
		}
	}

	if g.keyJust(ebiten.KeyM) {
		step := 1
		if shift {
			step = -1
		}
		g.session.CycleMap(step)
	}
	if g.keyJust(ebiten.KeyP) {
		g.session.SyncViews = !g.session.SyncViews
	}
	if g.keyJust(ebiten.KeyG) {
		w.ShowGrid = !w.ShowGrid
	}

	// Token palette: [ and ] choose, T places at the cursor cell.
	if n := len(g.session.TokenPaths); n > 0 {
		if g.keyJust(ebiten.KeyLeftBracket) {
			g.paletteIdx = (g.paletteIdx + n - 1) % n
		}
		if g.keyJust(ebiten.KeyRightBracket) {
			g.paletteIdx = (g.paletteIdx + 1) % n
		}
		if g.keyJust(ebiten.KeyT) {
			mx, my := ebiten.CursorPosition()
			if g.inDMView(mx, my) {
				gx, gy := w.Grid.ScreenToGrid(float64(mx), float64(my), &g.session.Cams[ViewDM])
				if _, err := g.session.DropToken(g.session.TokenPaths[g.paletteIdx], gx, gy); err != nil {
					g.log.WithError(err).Warn("token drop skipped")
				}
			}
		}
	}

	if g.keyJust(ebiten.KeyR) {
		if err := g.session.CopyReportToClipboard(); err != nil {
			g.log.WithError(err).Warn("clipboard copy failed")
			g.status = "report copy failed"
		} else {
			g.status = "report copied to clipboard"
		}
	}

	if g.keyJust(ebiten.KeyEscape) {
		switch {
		case g.condWheelOpen:
			g.condWheelOpen = false
		case g.measureActive:
			g.measureActive = false
		default:
			w.DeselectAll()
		}
	}
}

func (g *Game) handleSaveLoadKeys(shift bool) {
	for slot := 1; slot <= SaveSlots; slot++ {
		if !g.keyJust(ebiten.KeyF1 + ebiten.Key(slot-1)) {
			continue
		}
		if shift {
			if err := g.session.SaveSlot(slot); err != nil {
				g.log.WithError(err).WithField("slot", slot).Error("save failed")
				g.status = "save failed"
			} else {
				g.log.WithField("slot", slot).Info("saved")
				g.status = "saved slot " + strconv.Itoa(slot)
			}
		} else {
			if err := g.session.LoadSlot(slot); err != nil {
				g.log.WithError(err).WithField("slot", slot).Error("load failed")
				g.status = "load failed"
			} else {
				g.log.WithField("slot", slot).Info("loaded")
				g.status = "loaded slot " + strconv.Itoa(slot)
			}
		}
	}
}

// inDMView reports whether a window coordinate is inside the DM view.
func (g *Game) inDMView(mx, my int) bool {
	return mx >= 0 && mx < g.viewW && my >= 0 && my < g.height
}

func (g *Game) handleMouse(shift, ctrl, alt bool) {
	w := g.session.World
	cam := &g.session.Cams[ViewDM]
	mx, my := ebiten.CursorPosition()
	inDM := g.inDMView(mx, my)
	wxf, wyf := ScreenToWorld(float64(mx), float64(my), cam)
	wx, wy := int(wxf), int(wyf)
	gx, gy := w.Grid.WorldToGrid(wxf, wyf)

	if _, wheelY := ebiten.Wheel(); wheelY != 0 && inDM {
		factor := 0.9
		if wheelY > 0 {
			factor = 1.1
		}
		cam.ZoomToward(float64(mx), float64(my), factor)
	}

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	leftJust := left && !g.prevLeft
	middleJust := middle && !g.prevMiddle

	if leftJust && inDM {
		switch {
		case alt:
			if g.measureActive {
				g.measureActive = false
			} else {
				g.measureActive = true
				g.measureGX, g.measureGY = gx, gy
			}
		case g.measureActive:
			g.measureActive = false
		case g.cal.Active:
			g.cal.X1, g.cal.Y1 = wxf, wyf
			g.cal.X2, g.cal.Y2 = wxf, wyf
			g.cal.Drag = true
		case g.condWheelOpen:
			g.handleWheelClick(mx, my)
		default:
			g.handleToolClick(gx, gy, wx, wy, shift, ctrl)
		}
	}

	if left && !leftJust {
		switch {
		case g.cal.Drag:
			g.cal.X2, g.cal.Y2 = wxf, wyf
		case g.dragToken != 0:
			if t := w.TokenByID(g.dragToken); t != nil {
				t.GridX, t.GridY = gx, gy
			}
		case g.paintingFog:
			w.Fog.Set(gx, gy, g.fogPaintTo)
		}
	}

	if !left && g.prevLeft {
		g.cal.Drag = false
		if g.drawingShape {
			dx := wx - g.drawStartX
			dy := wy - g.drawStartY
			if dx*dx > 25 || dy*dy > 25 {
				err := w.AddDrawing(Drawing{
					Shape: g.currentShape,
					X1:    g.drawStartX, Y1: g.drawStartY,
					X2: wx, Y2: wy,
					Color: g.currentColor,
				})
				if err != nil {
					g.log.WithError(err).Warn("drawing rejected")
				}
			}
			g.drawingShape = false
		}
		g.dragToken = 0
		g.paintingFog = false
	}

	if dx, dy, ok := g.pan.Update(right && inDM, mx, my); ok {
		cam.Pan(float64(dx), float64(dy))
	}

	if middleJust && inDM && g.tool == ToolDraw {
		w.RemoveDrawingAt(wx, wy)
	}

	g.prevLeft = left
	g.prevMiddle = middle
}

func (g *Game) handleToolClick(gx, gy, wx, wy int, shift, ctrl bool) {
	w := g.session.World
	switch g.tool {
	case ToolSelect:
		hit := w.TokenAt(gx, gy)
		switch {
		case hit != nil && (shift || ctrl):
			cp, err := w.CopyToken(hit.ID, gx, gy)
			if err != nil {
				g.log.WithError(err).Warn("token copy rejected")
				return
			}
			w.DeselectAll()
			cp.Selected = true
			g.dragToken = cp.ID
		case hit != nil:
			w.DeselectAll()
			hit.Selected = true
			g.dragToken = hit.ID
		default:
			w.DeselectAll()
		}
	case ToolFog:
		g.paintingFog = true
		g.fogPaintTo = !w.Fog.Get(gx, gy)
		w.Fog.Set(gx, gy, g.fogPaintTo)
	case ToolSquad:
		for _, t := range w.Tokens {
			if t.GridX == gx && t.GridY == gy {
				if t.Squad == g.currentColor {
					t.SetSquad(SquadNone)
				} else {
					t.SetSquad(g.currentColor)
				}
			}
		}
	case ToolDraw:
		g.drawingShape = true
		g.drawStartX, g.drawStartY = wx, wy
	}
}

// handleWheelClick toggles the condition whose wheel segment contains
// the cursor.
func (g *Game) handleWheelClick(mx, my int) {
	t := g.session.World.TokenByID(g.condWheelToken)
	if t == nil {
		g.condWheelOpen = false
		return
	}
	cx := float64(g.viewW) / 2
	cy := float64(g.height) / 2
	dx := float64(mx) - cx
	dy := float64(my) - cy
	dist := math.Hypot(dx, dy)
	if dist < wheelInnerRadius || dist > wheelOuterRadius {
		return
	}
	angle := math.Atan2(dy, dx)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	idx := int(angle / (2 * math.Pi / float64(ConditionCount)))
	if idx >= int(ConditionCount) {
		idx = int(ConditionCount) - 1
	}
	t.ToggleCondition(Condition(idx))
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
