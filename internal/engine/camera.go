package engine

import "github.com/shainyguy/followercity/internal/geom"

// Zoom limits and easing.
const (
	MinZoom    = 0.5
	MaxZoom    = 2.0
	FocusZoom  = 1.5
	CameraEase = 0.1
)

// Camera is a screen offset and zoom that ease toward their targets.
type Camera struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Zoom       float64 `json:"zoom"`
	TargetX    float64 `json:"target_x"`
	TargetY    float64 `json:"target_y"`
	TargetZoom float64 `json:"target_zoom"`
}

// NewCamera returns a camera at rest at (x, y) with zoom 1.
func NewCamera(x, y float64) Camera {
	return Camera{X: x, Y: y, Zoom: 1, TargetX: x, TargetY: y, TargetZoom: 1}
}

// Ease moves the camera a fraction f of the way to its targets.
func (c *Camera) Ease(f float64) {
	c.X += (c.TargetX - c.X) * f
	c.Y += (c.TargetY - c.Y) * f
	c.Zoom += (c.TargetZoom - c.Zoom) * f
}

// Pan shifts the target offset.
func (c *Camera) Pan(dx, dy float64) {
	c.TargetX += dx
	c.TargetY += dy
}

// ZoomBy scales the target zoom, clamped to [MinZoom, MaxZoom].
func (c *Camera) ZoomBy(f float64) {
	c.SetZoom(c.TargetZoom * f)
}

// SetZoom sets the target zoom, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(z float64) {
	c.TargetZoom = geom.Clamp(z, MinZoom, MaxZoom)
}

// Project maps an isometric point to the screen of size w x h. The zoom
// pivots on the screen center.
func (c *Camera) Project(iso geom.Point, w, h float64) geom.Point {
	return geom.Point{
		X: (iso.X+c.X)*c.Zoom + w*(1-c.Zoom)/2,
		Y: (iso.Y+c.Y)*c.Zoom + h*(1-c.Zoom)/2,
	}
}
