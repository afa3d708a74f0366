// Package sim runs the water surface headless at a fixed time step.
package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/config"
	"github.com/Faultbox/midgard-water/internal/engine/camera"
	"github.com/Faultbox/midgard-water/internal/engine/grid"
	"github.com/Faultbox/midgard-water/internal/engine/water"
	"github.com/Faultbox/midgard-water/internal/engine/wave"
	"github.com/Faultbox/midgard-water/internal/logger"
)

// Sample is one probe reading.
type Sample struct {
	Tick      int
	Time      float32
	Probe     mgl32.Vec3
	Height    float32 // interpolated
	Optimized float32 // nearest corner
	Frame     int     // water texture frame
}

// Sim owns a surface, its wave field and the camera the surface follows.
type Sim struct {
	config  config.SimConfig
	field   *wave.Field
	surface *water.Surface
	camera  *camera.OrbitCamera

	samples []Sample
}

// New builds the wave field and surface described by cfg.
func New(cfg *config.Config) (*Sim, error) {
	logger.Info("initializing simulation",
		zap.Int("ticks", cfg.Sim.Ticks),
		zap.Float32("dt", cfg.Sim.DT),
		zap.Int("waves", len(cfg.Waves)),
	)

	if cfg.Sim.DT <= 0 {
		return nil, fmt.Errorf("invalid time step %v", cfg.Sim.DT)
	}

	field, err := cfg.BuildField()
	if err != nil {
		return nil, fmt.Errorf("failed to build wave field: %w", err)
	}

	surface, err := water.New(cfg.WaterSettings(), field)
	if err != nil {
		return nil, fmt.Errorf("failed to create surface: %w", err)
	}

	cam := camera.NewOrbitCamera()
	cam.FitToExtent(cfg.Surface.Position, surface.Mesh().Extent())
	if cfg.Sim.Camera.Distance > 0 {
		cam.Distance = cfg.Sim.Camera.Distance
	}

	return &Sim{
		config:  cfg.Sim,
		field:   field,
		surface: surface,
		camera:  cam,
	}, nil
}

// Camera returns the viewer the surface follows.
func (s *Sim) Camera() *camera.OrbitCamera {
	return s.camera
}

// Surface returns the simulated surface.
func (s *Sim) Surface() *water.Surface {
	return s.surface
}

// Field returns the wave field driving the surface.
func (s *Sim) Field() *wave.Field {
	return s.field
}

// Samples returns the probe readings recorded so far.
func (s *Sim) Samples() []Sample {
	return s.samples
}

// Run advances the simulation for the configured number of ticks or until
// ctx is cancelled.
func (s *Sim) Run(ctx context.Context) error {
	logger.Info("starting simulation loop")

	dt := s.config.DT
	for tick := 1; tick <= s.config.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			logger.Info("simulation interrupted", zap.Int("tick", tick))
			return err
		}

		if err := s.update(dt); err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}

		if s.reportDue(tick) {
			s.report(tick)
		}
	}

	logger.Info("simulation finished",
		zap.Float32("time", s.surface.Time()),
		zap.Float32("fps", s.surface.Heights().FPS()),
		zap.Float32("refresh_rate", s.surface.Heights().Rate()),
	)
	return nil
}

// update moves the camera, then ticks the surface.
func (s *Sim) update(dt float32) error {
	s.camera.Pan(s.config.Camera.Velocity.Mul(dt))
	s.camera.Orbit(s.config.Camera.YawRate*dt, 0)
	s.camera.Zoom(s.config.Camera.ZoomRate * dt)
	if s.surface.Follow(s.camera.Position()) {
		logger.Debug("surface moved", zap.Any("position", s.surface.Position()))
	}

	// A rejected configuration keeps the previous mesh; the mesher has
	// already warned about it.
	if err := s.surface.Tick(dt); err != nil && !errors.Is(err, grid.ErrInvalidLevels) {
		return err
	}
	return nil
}

func (s *Sim) reportDue(tick int) bool {
	if tick == s.config.Ticks {
		return true
	}
	return s.config.ReportEvery > 0 && tick%s.config.ReportEvery == 0
}

func (s *Sim) report(tick int) {
	for _, p := range s.config.Probes {
		sample := Sample{
			Tick:      tick,
			Time:      s.surface.Time(),
			Probe:     p,
			Height:    s.surface.GetWaterHeight(p),
			Optimized: s.surface.GetWaterHeightOptimized(p),
			Frame:     s.surface.AnimFrame(s.config.TextureFrames),
		}
		s.samples = append(s.samples, sample)

		logger.Info("probe",
			zap.Int("tick", tick),
			zap.Float32("time", sample.Time),
			zap.Float32s("probe", p[:]),
			zap.Float32("height", sample.Height),
			zap.Float32("optimized", sample.Optimized),
			zap.Int("frame", sample.Frame),
		)
	}
}
