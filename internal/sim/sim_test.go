package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-water/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Sim.Ticks = 10
	cfg.Sim.DT = 0.1
	cfg.Sim.ReportEvery = 5
	cfg.Sim.Probes = []mgl32.Vec3{{0, 0, 0}, {1.5, 0, -2.25}}
	return cfg
}

func TestRunRecordsProbes(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	samples := s.Samples()
	if len(samples) != 4 {
		t.Fatalf("samples = %d, want 4", len(samples))
	}
	if samples[0].Tick != 5 || samples[3].Tick != 10 {
		t.Errorf("sample ticks = %d..%d, want 5..10", samples[0].Tick, samples[3].Tick)
	}

	last := samples[3]
	want := s.Surface().GetWaterHeight(last.Probe)
	if last.Height != want {
		t.Errorf("height = %v, want %v", last.Height, want)
	}
	if frame := s.Surface().AnimFrame(32); last.Frame != frame {
		t.Errorf("frame = %d, want %d", last.Frame, frame)
	}
}

func TestRunZoomsCamera(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.Camera.ZoomRate = 0.5

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	want := float64(s.Camera().Distance) * math.Pow(1-0.5*0.1, 10)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := float64(s.Camera().Distance); math.Abs(got-want) > 1e-3 {
		t.Errorf("distance = %v, want %v", got, want)
	}
}

func TestRunFollowsCamera(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.Camera.Velocity = mgl32.Vec3{10, 0, -5}
	cfg.Sim.Camera.YawRate = 0.3

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	center := s.Camera().Center
	if !center.ApproxEqualThreshold(mgl32.Vec3{10, 0, -5}, 1e-4) {
		t.Errorf("camera center = %v, want (10, 0, -5)", center)
	}

	// With an anchor step of 1 the surface trails the camera by less than a step.
	cam := s.Camera().Position()
	got := s.Surface().Position()
	if dx, dz := cam.X()-got.X(), cam.Z()-got.Z(); dx < 0 || dx >= 1 || dz < 0 || dz >= 1 {
		t.Errorf("surface at %v does not trail camera at %v", got, cam)
	}
}

func TestRunCancelled(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(s.Samples()) != 0 {
		t.Errorf("samples recorded after cancellation")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.DT = 0
	if _, err := New(cfg); err == nil {
		t.Error("expected error for zero time step")
	}

	cfg = testConfig()
	cfg.Waves[0].Type = "square"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown wave type")
	}

	cfg = testConfig()
	cfg.Surface.Levels = nil
	if _, err := New(cfg); err == nil {
		t.Error("expected error for empty grid")
	}
}
