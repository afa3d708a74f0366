package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPositionLooksDownAtCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = mgl32.Vec3{5, 0, -3}
	c.Distance = 10
	c.Pitch = math.Pi / 2
	c.MaxPitch = math.Pi / 2

	got := c.Position()
	if !got.ApproxEqualThreshold(mgl32.Vec3{5, 10, -3}, 1e-5) {
		t.Errorf("Position = %v, want (5, 10, -3)", got)
	}
}

func TestPositionYaw(t *testing.T) {
	c := NewOrbitCamera()
	c.Distance = 2
	c.Pitch = 0
	c.Yaw = math.Pi / 2

	got := c.Position()
	if !got.ApproxEqualThreshold(mgl32.Vec3{2, 0, 0}, 1e-5) {
		t.Errorf("Position = %v, want (2, 0, 0)", got)
	}
}

func TestOrbitClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.Orbit(0.25, 10)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, c.MaxPitch)
	}
	if c.Yaw != 0.25 {
		t.Errorf("Yaw = %v, want 0.25", c.Yaw)
	}
	c.Orbit(0, -10)
	if c.Pitch != c.MinPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, c.MinPitch)
	}
}

func TestZoomClampsDistance(t *testing.T) {
	c := NewOrbitCamera()
	c.Zoom(0.5)
	if c.Distance != 10 {
		t.Errorf("Distance = %v, want 10", c.Distance)
	}
	c.Zoom(1)
	if c.Distance != c.MinDistance {
		t.Errorf("Distance = %v, want %v", c.Distance, c.MinDistance)
	}
}

func TestFitToExtent(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToExtent(mgl32.Vec3{0, 1, 0}, 96)

	if c.Center != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("Center = %v", c.Center)
	}
	if math.Abs(float64(c.Distance-28.8)) > 1e-4 {
		t.Errorf("Distance = %v, want 28.8", c.Distance)
	}
}
