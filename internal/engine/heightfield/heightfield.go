// Package heightfield caches per-vertex water heights on the grid topology
// and answers height queries at arbitrary points.
package heightfield

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/engine/grid"
	"github.com/Faultbox/midgard-water/internal/logger"
	"github.com/Faultbox/midgard-water/pkg/mathf"
)

// boundsEpsilon keeps points on a level's edge inside it despite float error.
const boundsEpsilon = 1e-4

// nodeEpsilon is how close a cell fraction must be to 0 or 1 to count as
// sitting on the grid node.
const nodeEpsilon = 1e-4

// HeightSource sums waveform heights. *wave.Field implements it.
type HeightSource interface {
	SumHeight(x, y, t float32) float32
}

// HeightField holds one height array per grid level plus a fallback map for
// points outside them. Nodes carrying a mesh vertex are overwritten wholesale
// by Refresh; the rest are evaluated on first read and kept until the next
// Refresh.
type HeightField struct {
	settings Settings
	source   HeightSource

	levels     []grid.Level
	cache      []levelCache
	generation uint64
	fallback   map[int64]float32
	points     []point // unique local vertex positions of the bound mesh

	origin        mgl32.Vec3
	textureOffset mgl32.Vec2
	time          float32

	throttle throttle
}

// levelCache is the row-major node array of one level.
type levelCache struct {
	width   int
	heights []float32
	vertex  []bool   // node has a mesh vertex
	stamp   []uint64 // generation a vertex-less node was last evaluated in
}

func newLevelCache(width int) levelCache {
	n := width * width
	return levelCache{
		width:   width,
		heights: make([]float32, n),
		vertex:  make([]bool, n),
		stamp:   make([]uint64, n),
	}
}

func (c *levelCache) index(xi, yi int) int {
	return xi*c.width + yi
}

// point is a mesh vertex and the array slots its height is stored in.
type point struct {
	pos   mgl32.Vec3
	slots []slot
}

type slot struct {
	level, index int
}

// New creates an empty height field reading from source.
func New(settings Settings, source HeightSource) *HeightField {
	return &HeightField{
		settings: settings,
		source:   source,
		fallback: make(map[int64]float32),
		throttle: newThrottle(settings),
	}
}

// Rebuild adopts the topology of mesh and reallocates the level arrays.
// It must run before Refresh whenever the mesh is regenerated.
func (h *HeightField) Rebuild(mesh *grid.GridMesh) {
	h.levels = mesh.Levels
	h.cache = make([]levelCache, len(h.levels))
	for i, lvl := range h.levels {
		h.cache[i] = newLevelCache(lvl.VertWidth)
	}
	h.generation = 1

	// Both faces and faceted copies share positions; keep each once.
	type key struct{ x, z float32 }
	seen := make(map[key]struct{}, len(mesh.Vertices))
	h.points = h.points[:0]
	for _, v := range mesh.Vertices {
		k := key{v.X(), v.Z()}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}

		slots := h.slotsAt(v.X(), v.Z())
		for _, s := range slots {
			h.cache[s.level].vertex[s.index] = true
		}
		h.points = append(h.points, point{pos: v, slots: slots})
	}

	clear(h.fallback)
	logger.Debug("height field rebuilt",
		zap.Int("levels", len(h.levels)),
		zap.Int("points", len(h.points)),
		zap.Bool("truncated", mesh.TooBig),
	)
}

// slotsAt lists the array slots of every level whose lattice has a node at
// local (lx, lz). A vertex on the border between two levels is in both.
func (h *HeightField) slotsAt(lx, lz float32) []slot {
	var slots []slot
	for i, lvl := range h.levels {
		if !inBounds(lvl, lx, lz) {
			continue
		}
		xi, xok := nodeIndex(lvl, lx)
		yi, yok := nodeIndex(lvl, lz)
		if xok && yok {
			slots = append(slots, slot{level: i, index: h.cache[i].index(xi, yi)})
		}
	}
	return slots
}

// Levels returns the levels the field is bound to.
func (h *HeightField) Levels() []grid.Level {
	return h.levels
}

// Refresh recomputes the height of every bound vertex at time t.
func (h *HeightField) Refresh(t float32) {
	h.time = t
	h.invalidate()

	nonFinite := 0
	for _, p := range h.points {
		height := h.source.SumHeight(h.origin.X()+p.pos.X(), h.origin.Z()+p.pos.Z(), t)
		if !mathf.IsFinite(height) {
			nonFinite++
		}
		for _, s := range p.slots {
			h.cache[s.level].heights[s.index] = height
		}
	}

	// Stored as computed; renderers and physics see the same value.
	if nonFinite > 0 {
		logger.Warn("non-finite water heights",
			zap.Int("count", nonFinite),
			zap.Float32("time", t),
		)
	}
}

// invalidate drops every height not written by Refresh.
func (h *HeightField) invalidate() {
	clear(h.fallback)
	h.generation++
}

// node returns the height of lattice node (xi, yi) of level li, which must be
// inside the level's array. Nodes without a vertex, as left by a truncated
// mesh, are summed directly and kept until the next Refresh.
func (h *HeightField) node(li, xi, yi int) float32 {
	c := &h.cache[li]
	i := c.index(xi, yi)
	if c.vertex[i] || c.stamp[i] == h.generation {
		return c.heights[i]
	}
	nx, nz := h.nodeWorld(h.levels[li], xi, yi)
	v := h.source.SumHeight(nx, nz, h.time)
	c.heights[i] = v
	c.stamp[i] = h.generation
	return v
}

// Time returns the time of the last refresh.
func (h *HeightField) Time() float32 {
	return h.time
}

// Position returns the world origin of the surface.
func (h *HeightField) Position() mgl32.Vec3 {
	return h.origin
}

// SetPosition moves the surface origin without snapping.
func (h *HeightField) SetPosition(p mgl32.Vec3) {
	h.origin = p
	h.invalidate()
}

// TextureOffset returns the UV shift accumulated by Follow.
func (h *HeightField) TextureOffset() mgl32.Vec2 {
	return h.textureOffset
}

// Follow moves the origin toward target in whole anchor steps along X and Z.
// It reports whether the origin moved, in which case the cache is stale
// until the next Refresh.
func (h *HeightField) Follow(target mgl32.Vec3) bool {
	step := h.settings.AnchorStep
	dx := target.X() - h.origin.X()
	dz := target.Z() - h.origin.Z()

	var mx, mz float32
	if step > 0 {
		mx = step * float32(math.Floor(float64(dx/step)))
		mz = step * float32(math.Floor(float64(dz/step)))
	} else {
		mx, mz = dx, dz
	}
	if mx == 0 && mz == 0 {
		return false
	}

	h.origin = mgl32.Vec3{h.origin.X() + mx, h.origin.Y(), h.origin.Z() + mz}
	if extent := h.extent(); extent > 0 {
		h.textureOffset = mgl32.Vec2{
			mathf.Frac(h.textureOffset.X() + mx/extent),
			mathf.Frac(h.textureOffset.Y() + mz/extent),
		}
	}
	h.invalidate()
	return true
}

func (h *HeightField) extent() float32 {
	if len(h.levels) == 0 {
		return 0
	}
	return h.levels[len(h.levels)-1].Size
}

// ShouldRefresh feeds the frame time dt to the adaptive rate control and
// reports whether a refresh is due.
func (h *HeightField) ShouldRefresh(dt float32) bool {
	return h.throttle.due(dt)
}

// FPS returns the smoothed frame rate.
func (h *HeightField) FPS() float32 {
	return h.throttle.fps
}

// Rate returns the current target refresh rate in refreshes per second.
func (h *HeightField) Rate() float32 {
	return h.throttle.rate
}

func inBounds(lvl grid.Level, lx, lz float32) bool {
	limit := lvl.Size + boundsEpsilon
	return abs(2*lx) <= limit && abs(2*lz) <= limit
}

// nodeIndex returns the lattice index of local coordinate v on lvl when v
// sits on a node inside the level's array.
func nodeIndex(lvl grid.Level, v float32) (int, bool) {
	f := (v + lvl.Offset) / lvl.Step
	i := mathf.FloorToInt(f + 0.5)
	if abs(f-float32(i)) > nodeEpsilon {
		return 0, false
	}
	return i, i >= 0 && i < lvl.VertWidth
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
