// Package grid builds the concentric multi-resolution water surface mesh.
package grid

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxVertices is the vertex cap of a generated mesh (16-bit index range).
const MaxVertices = 65535

var (
	ErrInvalidLevels = errors.New("invalid grid levels")
	ErrMeshTooBig    = errors.New("grid mesh exceeds vertex limit")
)

// Level is one resolution ring of the surface.
//
// Factor multiplies the cell size of the previous level; Count is the width
// of the ring in cells. The remaining fields are derived by ValidateLevels.
type Level struct {
	Factor int `yaml:"factor"`
	Count  int `yaml:"count"`

	Step      float32 `yaml:"-"` // cell edge length
	Size      float32 `yaml:"-"` // edge length of the whole square, inner levels included
	MaxSize   float32 `yaml:"-"` // Size before the max size limit was applied
	Offset    float32 `yaml:"-"` // Size/2
	VertWidth int     `yaml:"-"` // lattice nodes per axis
}

// Configuration is everything the mesh depends on. It is compared by value
// to decide whether the mesh must be rebuilt.
type Configuration struct {
	Levels       []Level `yaml:"levels"`
	BaseCellSize float32 `yaml:"base_cell_size"`
	MaxSize      float32 `yaml:"max_size"` // 0 means unbounded
	Top          bool    `yaml:"top"`
	Bottom       bool    `yaml:"bottom"`
	LowPoly      bool    `yaml:"low_poly"`
}

// DefaultConfiguration returns a three-ring top-only surface.
func DefaultConfiguration() Configuration {
	return Configuration{
		Levels: []Level{
			{Factor: 1, Count: 8},
			{Factor: 2, Count: 4},
			{Factor: 4, Count: 4},
		},
		BaseCellSize: 1,
		Top:          true,
	}
}

// Equal reports whether two configurations produce the same mesh.
// Only the user-set Factor and Count of each level take part.
func (c Configuration) Equal(o Configuration) bool {
	if c.BaseCellSize != o.BaseCellSize || c.MaxSize != o.MaxSize ||
		c.Top != o.Top || c.Bottom != o.Bottom || c.LowPoly != o.LowPoly ||
		len(c.Levels) != len(o.Levels) {
		return false
	}
	for i := range c.Levels {
		if c.Levels[i].Factor != o.Levels[i].Factor || c.Levels[i].Count != o.Levels[i].Count {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no memory with c.
func (c Configuration) Clone() Configuration {
	out := c
	out.Levels = make([]Level, len(c.Levels))
	copy(out.Levels, c.Levels)
	return out
}

// Face selects the top or bottom side of the surface.
type Face int

const (
	FaceTop Face = iota
	FaceBottom
)

// Normal returns the face's vertex normal.
func (f Face) Normal() mgl32.Vec3 {
	if f == FaceBottom {
		return mgl32.Vec3{0, -1, 0}
	}
	return mgl32.Vec3{0, 1, 0}
}

// GridMesh holds generated surface geometry ready for upload.
type GridMesh struct {
	Vertices        []mgl32.Vec3
	UV              []mgl32.Vec2
	Normals         []mgl32.Vec3
	TopTriangles    []uint32
	BottomTriangles []uint32

	// Levels are the validated levels the mesh was built from.
	Levels []Level
	Config Configuration

	// TooBig is set when generation stopped at MaxVertices.
	TooBig bool
}

// VertexCount returns the number of vertices.
func (m *GridMesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles over both faces.
func (m *GridMesh) TriangleCount() int {
	return (len(m.TopTriangles) + len(m.BottomTriangles)) / 3
}

// Extent returns the edge length of the outermost level.
func (m *GridMesh) Extent() float32 {
	if len(m.Levels) == 0 {
		return 0
	}
	return m.Levels[len(m.Levels)-1].Size
}
