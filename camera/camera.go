// Package camera provides a free-moving viewer that distance blend queries
// can target. Distances resolve to the eye point rather than the rig
// position, the way a host engine measures from its render camera.
package camera

import "gonum.org/v1/gonum/spatial/r3"

// DefaultEyeHeight is the eye offset above the rig when none is configured.
const DefaultEyeHeight = 1.7

// Camera is the viewer rig. It satisfies both blend.Target and
// blend.ViewPointer.
type Camera struct {
	// Pos is the rig position in world coordinates.
	Pos r3.Vec

	// EyeOffset is the offset from the rig to the eye. Distance queries
	// measure from Pos + EyeOffset.
	EyeOffset r3.Vec

	// World bounds for clamping movement
	WorldW, WorldH, WorldD float64
}

// New creates a camera centered on the world floor with the default eye
// height.
func New(worldW, worldH, worldD float64) *Camera {
	return &Camera{
		Pos:       r3.Vec{X: worldW / 2, Y: worldH / 2},
		EyeOffset: r3.Vec{Z: DefaultEyeHeight},
		WorldW:    worldW,
		WorldH:    worldH,
		WorldD:    worldD,
	}
}

// Position returns the rig position.
func (c *Camera) Position() r3.Vec {
	return c.Pos
}

// ViewPoint returns the eye position.
func (c *Camera) ViewPoint() r3.Vec {
	return r3.Add(c.Pos, c.EyeOffset)
}

// Pan moves the rig in the ground plane, clamped to the world bounds.
func (c *Camera) Pan(dx, dy float64) {
	c.Pos.X = clamp(c.Pos.X+dx, 0, c.WorldW)
	c.Pos.Y = clamp(c.Pos.Y+dy, 0, c.WorldH)
}

// Elevate moves the rig vertically, clamped to the world depth.
func (c *Camera) Elevate(dz float64) {
	c.Pos.Z = clamp(c.Pos.Z+dz, 0, c.WorldD)
}

// MoveTo places the rig at the given point, clamped to the world bounds.
func (c *Camera) MoveTo(p r3.Vec) {
	c.Pos = r3.Vec{
		X: clamp(p.X, 0, c.WorldW),
		Y: clamp(p.Y, 0, c.WorldH),
		Z: clamp(p.Z, 0, c.WorldD),
	}
}

// Follow moves the rig a fraction of the way toward the given point.
// rate is in [0, 1]; 1 snaps immediately.
func (c *Camera) Follow(p r3.Vec, rate float64) {
	rate = clamp(rate, 0, 1)
	c.MoveTo(r3.Add(c.Pos, r3.Scale(rate, r3.Sub(p, c.Pos))))
}

// Reset returns the rig to the world floor center.
func (c *Camera) Reset() {
	c.Pos = r3.Vec{X: c.WorldW / 2, Y: c.WorldH / 2}
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
