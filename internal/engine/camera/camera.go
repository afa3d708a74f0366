// Package camera provides the orbiting viewer the water surface follows.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center mgl32.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:    20,
		Pitch:       0.5,
		MinDistance: 1,
		MaxDistance: 500,
		MinPitch:    0.1,
		MaxPitch:    1.5,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cosPitch := math.Cos(float64(c.Pitch))
	offset := mgl32.Vec3{
		float32(cosPitch * math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		float32(cosPitch * math.Cos(float64(c.Yaw))),
	}
	return c.Center.Add(offset.Mul(c.Distance))
}

// Orbit rotates the camera around its center, clamping pitch.
func (c *OrbitCamera) Orbit(dyaw, dpitch float32) {
	c.Yaw += dyaw
	c.Pitch = mgl32.Clamp(c.Pitch+dpitch, c.MinPitch, c.MaxPitch)
}

// Zoom scales the distance by (1 - delta), clamped to the distance limits.
func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta*c.Distance, c.MinDistance, c.MaxDistance)
}

// Pan moves the center point by delta in world space.
func (c *OrbitCamera) Pan(delta mgl32.Vec3) {
	c.Center = c.Center.Add(delta)
}

// FitToExtent centers the camera on center and backs off far enough to see
// a square of the given edge length.
func (c *OrbitCamera) FitToExtent(center mgl32.Vec3, extent float32) {
	c.Center = center
	c.Distance = mgl32.Clamp(extent*0.3, c.MinDistance, c.MaxDistance)
	c.Pitch = mgl32.Clamp(0.6, c.MinPitch, c.MaxPitch) // look down at ~35 degrees
	c.Yaw = 0
}
