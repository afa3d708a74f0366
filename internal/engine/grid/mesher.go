package grid

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/logger"
)

// Mesher rebuilds the surface mesh whenever its configuration changes and
// keeps the last good mesh when a change is rejected.
type Mesher struct {
	mesh *GridMesh
	last Configuration

	rejected    *Configuration
	rejectedErr error
}

// NewMesher creates a mesher with no mesh yet.
func NewMesher() *Mesher {
	return &Mesher{}
}

// Mesh returns the current mesh, or nil before the first successful build.
func (m *Mesher) Mesh() *GridMesh {
	return m.mesh
}

// Dirty reports whether cfg differs from the configuration of the current mesh.
func (m *Mesher) Dirty(cfg Configuration) bool {
	return m.mesh == nil || !m.last.Equal(cfg)
}

// GenerateMesh returns the mesh for cfg, rebuilding it only when cfg changed.
//
// An invalid cfg is logged once and answered with the previous mesh together
// with an error wrapping ErrInvalidLevels. Submitting the same invalid cfg
// again returns the same error without logging.
func (m *Mesher) GenerateMesh(cfg Configuration) (*GridMesh, error) {
	if !m.Dirty(cfg) {
		return m.mesh, nil
	}
	if m.rejected != nil && m.rejected.Equal(cfg) {
		return m.mesh, m.rejectedErr
	}

	levels, err := ValidateLevels(cfg)
	if err != nil {
		logger.Warn("invalid grid configuration, keeping previous mesh",
			zap.Int("levels", len(cfg.Levels)),
			zap.Float32("base_cell_size", cfg.BaseCellSize),
			zap.Error(err),
		)
		rejected := cfg.Clone()
		m.rejected = &rejected
		m.rejectedErr = err
		return m.mesh, err
	}
	m.rejected = nil
	m.rejectedErr = nil

	cfg = cfg.Clone()
	mesh := Generate(cfg, levels)
	if mesh.TooBig {
		logger.Warn("grid mesh too big, keeping truncated mesh",
			zap.Int("vertices", mesh.VertexCount()),
			zap.Int("limit", MaxVertices),
			zap.Error(ErrMeshTooBig),
		)
	}

	m.mesh = mesh
	m.last = cfg

	logger.Debug("grid mesh generated",
		zap.Int("levels", len(levels)),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Float32("extent", mesh.Extent()),
	)
	return mesh, nil
}
