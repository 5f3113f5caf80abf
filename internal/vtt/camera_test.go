package vtt

import (
	"math"
	"testing"
)

func TestCamera_TickConvergesOnTarget(t *testing.T) {
	c := NewCamera()
	c.TargetX, c.TargetY, c.TargetZoom = 500, -200, 3
	for i := 0; i < 200; i++ {
		c.Tick()
	}
	if math.Abs(c.X-500) > 0.01 || math.Abs(c.Y+200) > 0.01 || math.Abs(c.Zoom-3) > 0.01 {
		t.Fatalf("camera did not converge: pos=(%.3f,%.3f) zoom=%.3f", c.X, c.Y, c.Zoom)
	}
}

func TestCamera_ZoomTowardKeepsAnchorFixed(t *testing.T) {
	c := NewCamera()
	c.TargetX, c.TargetY, c.TargetZoom = 120, 80, 1.5

	// World point under the cursor before zooming, computed from targets.
	cx, cy := 333.0, 217.0
	wxBefore := cx/c.TargetZoom + c.TargetX
	wyBefore := cy/c.TargetZoom + c.TargetY

	c.ZoomToward(cx, cy, 1.1)

	wxAfter := cx/c.TargetZoom + c.TargetX
	wyAfter := cy/c.TargetZoom + c.TargetY
	if math.Abs(wxAfter-wxBefore) > 1e-9 || math.Abs(wyAfter-wyBefore) > 1e-9 {
		t.Fatalf("anchor moved: (%.6f,%.6f) -> (%.6f,%.6f)", wxBefore, wyBefore, wxAfter, wyAfter)
	}
}

func TestCamera_ZoomClamps(t *testing.T) {
	c := NewCamera()
	for i := 0; i < 100; i++ {
		c.ZoomToward(0, 0, 1.5)
	}
	if c.TargetZoom != zoomMax {
		t.Fatalf("zoom in did not clamp: %.3f, want %.3f", c.TargetZoom, zoomMax)
	}
	for i := 0; i < 100; i++ {
		c.ZoomToward(0, 0, 0.5)
	}
	if c.TargetZoom != zoomMin {
		t.Fatalf("zoom out did not clamp: %.3f, want %.3f", c.TargetZoom, zoomMin)
	}
}

func TestCamera_ZoomAtClampBoundaryStillAnchors(t *testing.T) {
	c := NewCamera()
	c.TargetZoom = zoomMax / 1.05 // next 1.1x step clamps
	cx, cy := 100.0, 100.0
	wx := cx/c.TargetZoom + c.TargetX
	wy := cy/c.TargetZoom + c.TargetY
	c.ZoomToward(cx, cy, 1.1)
	if c.TargetZoom != zoomMax {
		t.Fatalf("zoom = %.4f, want clamp at %.4f", c.TargetZoom, zoomMax)
	}
	wxAfter := cx/c.TargetZoom + c.TargetX
	wyAfter := cy/c.TargetZoom + c.TargetY
	if math.Abs(wxAfter-wx) > 1e-9 || math.Abs(wyAfter-wy) > 1e-9 {
		t.Fatal("anchor moved when zoom clamped")
	}
}

func TestCamera_PanUsesCurrentZoom(t *testing.T) {
	c := NewCamera()
	c.Zoom = 2
	c.Pan(100, -50)
	if c.TargetX != -50 || c.TargetY != 25 {
		t.Fatalf("pan target = (%.1f,%.1f), want (-50,25)", c.TargetX, c.TargetY)
	}
}

func TestCamera_SyncCopiesEverything(t *testing.T) {
	src := Camera{X: 1, Y: 2, Zoom: 3, TargetX: 4, TargetY: 5, TargetZoom: 6}
	var dst Camera
	dst.Sync(&src)
	if dst != src {
		t.Fatalf("sync mismatch: %+v vs %+v", dst, src)
	}
}

func TestCamera_SnapshotRoundTrip(t *testing.T) {
	c := NewCamera()
	c.TargetX, c.TargetY, c.TargetZoom = 64, -32, 2
	snap := c.Snapshot()

	var restored Camera
	restored.SetSnapshot(snap)
	if restored.X != 64 || restored.Y != -32 || restored.Zoom != 2 {
		t.Fatalf("restored camera = %+v", restored)
	}
	// No smoothing after a restore: the jump is immediate.
	if restored.TargetX != restored.X || restored.TargetZoom != restored.Zoom {
		t.Fatal("snapshot restore left targets detached")
	}
}
