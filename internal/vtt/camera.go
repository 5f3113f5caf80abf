package vtt

// Camera smoothing and zoom limits.
const (
	camSmoothing = 0.15
	zoomMin      = 0.25
	zoomMax      = 4.0
)

// Camera is a smoothed 2D view: the current position/zoom exponentially
// approach their targets, one step per frame.
type Camera struct {
	X, Y, Zoom                   float64
	TargetX, TargetY, TargetZoom float64
}

// NewCamera returns a camera at the origin with 1:1 zoom.
func NewCamera() Camera {
	return Camera{Zoom: 1, TargetZoom: 1}
}

// Tick advances the smoothing by one frame.
func (c *Camera) Tick() {
	c.X += (c.TargetX - c.X) * camSmoothing
	c.Y += (c.TargetY - c.Y) * camSmoothing
	c.Zoom += (c.TargetZoom - c.Zoom) * camSmoothing
}

// ZoomToward scales the target zoom by factor, keeping the world point
// under the view-local cursor (cx, cy) fixed. The anchor is computed
// against the targets, not the smoothed values, so the invariant holds
// even while smoothing is still catching up.
func (c *Camera) ZoomToward(cx, cy, factor float64) {
	nz := c.TargetZoom * factor
	if nz < zoomMin {
		nz = zoomMin
	}
	if nz > zoomMax {
		nz = zoomMax
	}
	wx := cx/c.TargetZoom + c.TargetX
	wy := cy/c.TargetZoom + c.TargetY
	c.TargetZoom = nz
	c.TargetX = wx - cx/nz
	c.TargetY = wy - cy/nz
}

// Pan shifts the target position by a screen-space delta. The delta is
// divided by the current zoom, not the target, so dragging tracks the
// visual scale mid-smoothing.
func (c *Camera) Pan(dx, dy float64) {
	c.TargetX -= dx / c.Zoom
	c.TargetY -= dy / c.Zoom
}

// Sync copies both target and current position/zoom wholesale from src,
// mirroring one view's camera onto the other.
func (c *Camera) Sync(src *Camera) {
	*c = *src
}

// SetSnapshot jumps the camera to a restored position with no smoothing.
func (c *Camera) SetSnapshot(s CameraSnapshot) {
	c.TargetX = float64(s.X)
	c.TargetY = float64(s.Y)
	c.TargetZoom = float64(s.Zoom)
	c.X, c.Y, c.Zoom = c.TargetX, c.TargetY, c.TargetZoom
}

// Snapshot captures the target position/zoom for persistence.
func (c *Camera) Snapshot() CameraSnapshot {
	return CameraSnapshot{
		X:    float32(c.TargetX),
		Y:    float32(c.TargetY),
		Zoom: float32(c.TargetZoom),
	}
}

// CameraSnapshot is the persisted subset of a camera: position and zoom
// only, never the owning Camera.
type CameraSnapshot struct {
	X, Y, Zoom float32
}
