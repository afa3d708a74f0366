// Package water ties the grid mesher, the wave field and the height cache
// into a single tick-driven water surface.
package water

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/engine/grid"
	"github.com/Faultbox/midgard-water/internal/engine/heightfield"
	"github.com/Faultbox/midgard-water/internal/engine/wave"
	"github.com/Faultbox/midgard-water/internal/logger"
)

// ErrNilField is returned by New when no wave field is given.
var ErrNilField = errors.New("water: nil wave field")

// DefaultAnimSpeed is the texture animation speed used when none is set.
const DefaultAnimSpeed = 30.0

// Settings configures a Surface.
type Settings struct {
	Grid        grid.Configuration   `yaml:"grid"`
	HeightField heightfield.Settings `yaml:"height_field"`
	Position    mgl32.Vec3           `yaml:"position"` // Y is the rest level of the water
	AnimSpeed   float32              `yaml:"anim_speed"`
}

// DefaultSettings returns a surface at the world origin with the default
// three-ring grid.
func DefaultSettings() Settings {
	return Settings{
		Grid:        grid.DefaultConfiguration(),
		HeightField: heightfield.DefaultSettings(),
		AnimSpeed:   DefaultAnimSpeed,
	}
}

// Surface is a water surface following a target over a wave field.
// The caller owns the wave field and may register waveforms at any time.
type Surface struct {
	mesher  *grid.Mesher
	config  grid.Configuration
	mesh    *grid.GridMesh
	field   *wave.Field
	heights *heightfield.HeightField

	animSpeed float32
	time      float32
	stale     bool

	// Flat array: x,y,z for each mesh vertex, local to Position.
	vertices []float32
}

// New builds the initial mesh for cfg. An invalid grid configuration is an
// error here because there is no previous mesh to fall back to.
func New(cfg Settings, field *wave.Field) (*Surface, error) {
	if field == nil {
		return nil, ErrNilField
	}

	s := &Surface{
		mesher:    grid.NewMesher(),
		config:    cfg.Grid.Clone(),
		field:     field,
		heights:   heightfield.New(cfg.HeightField, field),
		animSpeed: cfg.AnimSpeed,
		stale:     true,
	}
	if s.animSpeed <= 0 {
		s.animSpeed = DefaultAnimSpeed
	}
	s.heights.SetPosition(cfg.Position)

	mesh, err := s.mesher.GenerateMesh(s.config)
	if err != nil {
		return nil, fmt.Errorf("water: initial mesh: %w", err)
	}
	s.adopt(mesh)

	logger.Info("water surface created",
		zap.Int("vertices", mesh.VertexCount()),
		zap.Float32("extent", mesh.Extent()),
	)
	return s, nil
}

// SetConfiguration schedules a grid change. The mesh is rebuilt on the next
// Tick, before any heights are refreshed.
func (s *Surface) SetConfiguration(cfg grid.Configuration) {
	s.config = cfg.Clone()
}

// Configuration returns the most recently requested grid configuration.
func (s *Surface) Configuration() grid.Configuration {
	return s.config
}

// Tick advances the surface by dt seconds: topology first, then waveform
// state, then the height cache when throttling allows it.
//
// A rejected grid configuration is returned as an error while the previous
// mesh stays in use.
func (s *Surface) Tick(dt float32) error {
	s.time += dt

	mesh, err := s.mesher.GenerateMesh(s.config)
	if mesh != nil && mesh != s.mesh {
		s.adopt(mesh)
	}

	s.field.Advance(s.time)

	due := s.heights.ShouldRefresh(dt)
	if due || s.stale {
		s.heights.Refresh(s.time)
		s.displace()
		s.stale = false
	}
	return err
}

func (s *Surface) adopt(mesh *grid.GridMesh) {
	s.mesh = mesh
	s.heights.Rebuild(mesh)
	if n := 3 * len(mesh.Vertices); cap(s.vertices) >= n {
		s.vertices = s.vertices[:n]
	} else {
		s.vertices = make([]float32, n)
	}
	s.stale = true
}

// displace writes the cached heights into the render vertices.
func (s *Surface) displace() {
	origin := s.heights.Position()
	for i, v := range s.mesh.Vertices {
		s.vertices[3*i] = v.X()
		s.vertices[3*i+1] = s.heights.GetHeight(origin.X()+v.X(), origin.Z()+v.Z())
		s.vertices[3*i+2] = v.Z()
	}
}

// Follow moves the surface toward target in anchor steps. The cache is
// refreshed on the next Tick when the surface moved.
func (s *Surface) Follow(target mgl32.Vec3) bool {
	if !s.heights.Follow(target) {
		return false
	}
	s.stale = true
	return true
}

// Mesh returns the current grid mesh.
func (s *Surface) Mesh() *grid.GridMesh {
	return s.mesh
}

// RenderVertices returns the displaced mesh vertices as a flat x,y,z array
// ready for GPU upload. Coordinates are local to Position; the slice is
// reused across ticks.
func (s *Surface) RenderVertices() []float32 {
	return s.vertices
}

// Position returns the world origin of the surface.
func (s *Surface) Position() mgl32.Vec3 {
	return s.heights.Position()
}

// TextureOffset returns the UV shift that keeps textures fixed in world
// space while the surface follows its target.
func (s *Surface) TextureOffset() mgl32.Vec2 {
	return s.heights.TextureOffset()
}

// Time returns the accumulated simulation time.
func (s *Surface) Time() float32 {
	return s.time
}

// Heights exposes the height cache for diagnostics.
func (s *Surface) Heights() *heightfield.HeightField {
	return s.heights
}

// GetWaterHeight returns the world Y of the water under pos, interpolated
// from the cache.
func (s *Surface) GetWaterHeight(pos mgl32.Vec3) float32 {
	return s.heights.Position().Y() + s.heights.GetWaterHeight(pos)
}

// GetWaterHeightOptimized is GetWaterHeight without interpolation.
func (s *Surface) GetWaterHeightOptimized(pos mgl32.Vec3) float32 {
	return s.heights.Position().Y() + s.heights.GetWaterHeightOptimized(pos)
}

// GetHeight returns the world Y of the lattice node nearest to (x, z).
func (s *Surface) GetHeight(x, z float32) float32 {
	return s.heights.Position().Y() + s.heights.GetHeight(x, z)
}

// AnimFrame returns the current texture animation frame out of numFrames.
func (s *Surface) AnimFrame(numFrames int) int {
	return CalculateAnimFrame(s.time, s.animSpeed, numFrames)
}

// CalculateAnimFrame returns the animation frame index for elapsed time at
// the given speed.
func CalculateAnimFrame(time, speed float32, numFrames int) int {
	if numFrames <= 0 {
		return 0
	}
	// Speed counts half frames per second.
	frameTime := time * speed * 0.5
	return int(frameTime) % numFrames
}
