package heightfield

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-water/internal/engine/grid"
	"github.com/Faultbox/midgard-water/pkg/mathf"
)

// TierKind says where a cached height lives.
type TierKind uint8

const (
	TierGrid     TierKind = iota // per-level array
	TierFallback                 // pairing-keyed map outside every level
)

func (k TierKind) String() string {
	if k == TierGrid {
		return "grid"
	}
	return "fallback"
}

// CacheTier is the resolved cache location of a point. Level, X and Y are
// set for TierGrid; Key, X and Y (outermost lattice indices) for TierFallback.
type CacheTier struct {
	Kind  TierKind
	Level int
	X, Y  int
	Key   int64
}

// Resolve maps world coordinates (x, y) on the XZ plane to the cache slot
// holding the height of the nearest lattice node. Levels are tested innermost
// first.
func (h *HeightField) Resolve(x, y float32) CacheTier {
	lx, lz := x-h.origin.X(), y-h.origin.Z()
	if li, ok := h.levelAt(lx, lz); ok {
		lvl := h.levels[li]
		xi := nearestNode(lvl, lx)
		yi := nearestNode(lvl, lz)
		if xi >= 0 && xi < lvl.VertWidth && yi >= 0 && yi < lvl.VertWidth {
			return CacheTier{Kind: TierGrid, Level: li, X: xi, Y: yi}
		}
	}
	return h.fallbackTier(lx, lz)
}

func (h *HeightField) fallbackTier(lx, lz float32) CacheTier {
	tier := CacheTier{Kind: TierFallback}
	if len(h.levels) == 0 {
		tier.X, tier.Y = mathf.FloorToInt(lx+0.5), mathf.FloorToInt(lz+0.5)
	} else {
		outer := h.levels[len(h.levels)-1]
		tier.X, tier.Y = nearestNode(outer, lx), nearestNode(outer, lz)
	}
	tier.Key = mathf.Pair(tier.X, tier.Y)
	return tier
}

// GetHeight returns the cached height of the lattice node nearest to (x, y).
// Points outside every level are evaluated once per refresh and memoized.
func (h *HeightField) GetHeight(x, y float32) float32 {
	tier := h.Resolve(x, y)
	if tier.Kind == TierGrid {
		return h.node(tier.Level, tier.X, tier.Y)
	}
	if len(h.levels) == 0 {
		return h.source.SumHeight(x, y, h.time)
	}
	if v, ok := h.fallback[tier.Key]; ok {
		return v
	}
	nx, nz := h.nodeWorld(h.levels[len(h.levels)-1], tier.X, tier.Y)
	v := h.source.SumHeight(nx, nz, h.time)
	h.fallback[tier.Key] = v
	return v
}

// GetWaterHeight returns the surface height under pos, interpolated from the
// enclosing cell of the innermost level containing it. Cells are bilinear,
// except that an edge lying on the border of the next inner level follows
// that level's finer nodes so the two levels meet without a step. Outside
// every level the waves are summed directly.
func (h *HeightField) GetWaterHeight(pos mgl32.Vec3) float32 {
	lx, lz := pos.X()-h.origin.X(), pos.Z()-h.origin.Z()
	li, ok := h.levelAt(lx, lz)
	if !ok {
		return h.source.SumHeight(pos.X(), pos.Z(), h.time)
	}

	lvl := h.levels[li]
	xi, rx := cellCoord(lvl, lx)
	yi, ry := cellCoord(lvl, lz)

	c00 := h.corner(li, xi, yi)
	if rx == 0 && ry == 0 {
		return c00
	}
	c01 := h.corner(li, xi, yi+1)
	c10 := h.corner(li, xi+1, yi)
	c11 := h.corner(li, xi+1, yi+1)

	bilinear := mathf.Lerp(mathf.Lerp(c00, c01, ry), mathf.Lerp(c10, c11, ry), rx)
	if li == 0 {
		return bilinear
	}

	inner := h.levels[li-1]
	x0, z0 := nodeLocal(lvl, xi), nodeLocal(lvl, yi)
	x1, z1 := x0+lvl.Step, z0+lvl.Step
	if !onSeam(inner, x0, z0, z1) && !onSeam(inner, x1, z0, z1) &&
		!onSeam(inner, z0, x0, x1) && !onSeam(inner, z1, x0, x1) {
		return bilinear
	}

	// Coons patch over the four edges; it equals each edge on that edge.
	left := h.seam(li, x0, z0, z1, ry, c00, c01, false)
	right := h.seam(li, x1, z0, z1, ry, c10, c11, false)
	bottom := h.seam(li, z0, x0, x1, rx, c00, c10, true)
	top := h.seam(li, z1, x0, x1, rx, c01, c11, true)
	return mathf.Lerp(left, right, rx) + mathf.Lerp(bottom, top, ry) - bilinear
}

// seam returns the height at fraction r along the cell edge of level li at
// local coordinate fixed, running from a to b; along X when horizontal, else
// along Z. c0 and c1 are the edge's end nodes.
func (h *HeightField) seam(li int, fixed, a, b, r, c0, c1 float32, horizontal bool) float32 {
	inner := h.levels[li-1]
	if !onSeam(inner, fixed, a, b) {
		return mathf.Lerp(c0, c1, r)
	}

	k := nearestNode(inner, fixed)
	j, fr := cellCoord(inner, mathf.Lerp(a, b, r))
	at := func(j int) float32 {
		if horizontal {
			return h.corner(li-1, j, k)
		}
		return h.corner(li-1, k, j)
	}
	v0 := at(j)
	if fr == 0 {
		return v0
	}
	return mathf.Lerp(v0, at(j+1), fr)
}

// onSeam reports whether the edge at fixed, spanning a to b, lies on the
// border of inner.
func onSeam(inner grid.Level, fixed, a, b float32) bool {
	half := inner.Offset
	return abs(abs(fixed)-half) <= boundsEpsilon &&
		min(a, b) >= -half-boundsEpsilon && max(a, b) <= half+boundsEpsilon
}

// GetWaterHeightOptimized skips interpolation and returns the cached height
// of the cell corner reached by rounding up.
func (h *HeightField) GetWaterHeightOptimized(pos mgl32.Vec3) float32 {
	lx, lz := pos.X()-h.origin.X(), pos.Z()-h.origin.Z()
	li, ok := h.levelAt(lx, lz)
	if !ok {
		return h.source.SumHeight(pos.X(), pos.Z(), h.time)
	}

	lvl := h.levels[li]
	// Within nodeEpsilon of a node counts as on it.
	xi := mathf.CeilToInt((lx+lvl.Offset)/lvl.Step - nodeEpsilon)
	yi := mathf.CeilToInt((lz+lvl.Offset)/lvl.Step - nodeEpsilon)
	return h.corner(li, xi, yi)
}

func (h *HeightField) levelAt(lx, lz float32) (int, bool) {
	for i, lvl := range h.levels {
		if inBounds(lvl, lx, lz) {
			return i, true
		}
	}
	return 0, false
}

// corner reads a lattice node of level li. Nodes past the array edge go
// through GetHeight so they land in a neighbouring tier.
func (h *HeightField) corner(li, xi, yi int) float32 {
	lvl := h.levels[li]
	if xi >= 0 && xi < lvl.VertWidth && yi >= 0 && yi < lvl.VertWidth {
		return h.node(li, xi, yi)
	}
	return h.GetHeight(h.nodeWorld(lvl, xi, yi))
}

func (h *HeightField) nodeWorld(lvl grid.Level, xi, yi int) (float32, float32) {
	return h.origin.X() + nodeLocal(lvl, xi), h.origin.Z() + nodeLocal(lvl, yi)
}

func nodeLocal(lvl grid.Level, i int) float32 {
	return float32(i)*lvl.Step - lvl.Offset
}

func nearestNode(lvl grid.Level, v float32) int {
	return mathf.FloorToInt((v+lvl.Offset)/lvl.Step + 0.5)
}

// cellCoord returns the lower node index of the cell containing v and the
// fraction across it. Fractions within nodeEpsilon of a node snap onto it.
func cellCoord(lvl grid.Level, v float32) (int, float32) {
	f := (v + lvl.Offset) / lvl.Step
	i := mathf.FloorToInt(f)
	r := f - float32(i)
	switch {
	case r > 1-nodeEpsilon:
		return i + 1, 0
	case r < nodeEpsilon:
		return i, 0
	}
	return i, r
}
