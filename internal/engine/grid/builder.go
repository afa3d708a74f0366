package grid

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// quantum is the fixed-point resolution of coordinate keys (1/4096 unit).
const quantum = 4096

type coordKey = int64

func quantize(v float32) coordKey {
	return coordKey(math.Round(float64(v) * quantum))
}

type pointKey struct {
	x, z coordKey
}

// faceIndex maps positions to vertex indices for one face. The maps index
// into GridMesh.Vertices and never own vertices.
type faceIndex struct {
	positions map[pointKey]uint32
	xByY      map[coordKey][]float32 // x of every vertex on a given z
	yByX      map[coordKey][]float32 // z of every vertex on a given x
}

func newFaceIndex() *faceIndex {
	return &faceIndex{
		positions: make(map[pointKey]uint32),
		xByY:      make(map[coordKey][]float32),
		yByX:      make(map[coordKey][]float32),
	}
}

type builder struct {
	mesh   *GridMesh
	faces  map[Face]*faceIndex
	extent float32
}

// Generate builds a mesh from cfg and the levels ValidateLevels derived from
// it. It never fails; a mesh that hits MaxVertices is returned partial with
// TooBig set.
func Generate(cfg Configuration, levels []Level) *GridMesh {
	b := &builder{
		mesh: &GridMesh{
			Levels: levels,
			Config: cfg,
		},
		faces: make(map[Face]*faceIndex),
	}
	if len(levels) > 0 {
		b.extent = levels[len(levels)-1].Size
	}

	var faces []Face
	if cfg.Top {
		faces = append(faces, FaceTop)
	}
	if cfg.Bottom {
		faces = append(faces, FaceBottom)
	}
	for _, f := range faces {
		b.faces[f] = newFaceIndex()
	}

levels:
	for i, lvl := range levels {
		var inner float32
		if i > 0 {
			inner = levels[i-1].Size
		}
		for _, f := range faces {
			if !b.buildLevel(f, lvl, inner) {
				b.mesh.TooBig = true
				break levels
			}
		}
	}

	if cfg.LowPoly {
		b.facet()
	}
	return b.mesh
}

// buildLevel adds the cells of lvl lying outside the inner square of edge
// length inner. It returns false when the vertex cap stopped it.
func (b *builder) buildLevel(face Face, lvl Level, inner float32) bool {
	cells := lvl.VertWidth - 1
	half := float64(inner) / 2
	step := float64(lvl.Step)
	offset := float64(lvl.Offset)

	for j := 0; j < cells; j++ {
		for i := 0; i < cells; i++ {
			x0 := float64(i)*step - offset
			z0 := float64(j)*step - offset

			// Cells are aligned with the inner square, so the centre decides.
			cx, cz := x0+step/2, z0+step/2
			if inner > 0 && math.Abs(cx) < half && math.Abs(cz) < half {
				continue
			}

			lo := mgl32.Vec2{float32(x0), float32(z0)}
			hi := mgl32.Vec2{float32(x0 + step), float32(z0 + step)}
			if !b.addCell(face, lo, hi) {
				return false
			}
		}
	}
	return true
}

func (b *builder) addCell(face Face, lo, hi mgl32.Vec2) bool {
	idx := b.faces[face]
	corners := [4]mgl32.Vec2{
		{lo.X(), lo.Y()},
		{lo.X(), hi.Y()},
		{hi.X(), hi.Y()},
		{hi.X(), lo.Y()},
	}

	missing := 0
	for _, c := range corners {
		if _, ok := idx.positions[pointKey{quantize(c.X()), quantize(c.Y())}]; !ok {
			missing++
		}
	}
	if len(b.mesh.Vertices)+missing > MaxVertices {
		return false
	}

	for _, c := range corners {
		b.addVertex(face, c.X(), c.Y())
	}
	b.triangulate(face, b.pointsInSquare(face, lo, hi))
	return true
}

func (b *builder) addVertex(face Face, x, z float32) uint32 {
	idx := b.faces[face]
	key := pointKey{quantize(x), quantize(z)}
	if i, ok := idx.positions[key]; ok {
		return i
	}

	i := uint32(len(b.mesh.Vertices))
	b.mesh.Vertices = append(b.mesh.Vertices, mgl32.Vec3{x, 0, z})
	b.mesh.Normals = append(b.mesh.Normals, face.Normal())

	// One texture space across all levels.
	half := b.extent / 2
	b.mesh.UV = append(b.mesh.UV, mgl32.Vec2{(x + half) / b.extent, (z + half) / b.extent})

	idx.positions[key] = i
	idx.xByY[key.z] = append(idx.xByY[key.z], x)
	idx.yByX[key.x] = append(idx.yByX[key.x], z)
	return i
}

// squarePoints is the boundary of one cell: every vertex on its edges in
// clockwise order from the minimum corner, and where each corner sits.
type squarePoints struct {
	indices []uint32
	corners [4]int
}

// pointsInSquare collects the vertices of face lying on the edges of the
// cell [lo, hi]. A finer level may have put several vertices on an edge the
// coarser level treats as one segment.
func (b *builder) pointsInSquare(face Face, lo, hi mgl32.Vec2) squarePoints {
	idx := b.faces[face]
	x0, z0, x1, z1 := lo.X(), lo.Y(), hi.X(), hi.Y()

	var sp squarePoints
	add := func(x, z float32) {
		if i, ok := idx.positions[pointKey{quantize(x), quantize(z)}]; ok {
			sp.indices = append(sp.indices, i)
		}
	}

	// x = x0, z ascending.
	sp.corners[0] = len(sp.indices)
	add(x0, z0)
	for _, z := range between(idx.yByX[quantize(x0)], z0, z1, false) {
		add(x0, z)
	}
	// z = z1, x ascending.
	sp.corners[1] = len(sp.indices)
	add(x0, z1)
	for _, x := range between(idx.xByY[quantize(z1)], x0, x1, false) {
		add(x, z1)
	}
	// x = x1, z descending.
	sp.corners[2] = len(sp.indices)
	add(x1, z1)
	for _, z := range between(idx.yByX[quantize(x1)], z0, z1, true) {
		add(x1, z)
	}
	// z = z0, x descending.
	sp.corners[3] = len(sp.indices)
	add(x1, z0)
	for _, x := range between(idx.xByY[quantize(z0)], x0, x1, true) {
		add(x, z0)
	}
	return sp
}

// between returns the values strictly inside (lo, hi), sorted.
func between(values []float32, lo, hi float32, descending bool) []float32 {
	qlo, qhi := quantize(lo), quantize(hi)
	var out []float32
	for _, v := range values {
		if q := quantize(v); q > qlo && q < qhi {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	if descending {
		slices.Reverse(out)
	}
	return out
}

// lonelyCorner returns the position in sp.indices of a corner whose two
// edges carry no other vertex. Such a corner belongs to the coarse level
// only, and a fan from it never produces a degenerate triangle.
func (sp squarePoints) lonelyCorner() (int, bool) {
	n := len(sp.indices)
	for k := 0; k < 4; k++ {
		prev := sp.corners[(k+3)%4]
		next := sp.corners[(k+1)%4]
		cur := sp.corners[k]
		if (cur-prev+n)%n == 1 && (next-cur+n)%n == 1 {
			return cur, true
		}
	}
	return 0, false
}

// triangulate fans the cell boundary from its lonely corner.
func (b *builder) triangulate(face Face, sp squarePoints) {
	n := len(sp.indices)
	if n < 3 {
		return
	}
	apex, ok := sp.lonelyCorner()

	for k := 1; k < n-1; k++ {
		i1 := sp.indices[(apex+k)%n]
		i2 := sp.indices[(apex+k+1)%n]
		a := sp.indices[apex]
		if !ok && b.collinear(a, i1, i2) {
			continue
		}
		if face == FaceBottom {
			b.mesh.BottomTriangles = append(b.mesh.BottomTriangles, a, i2, i1)
		} else {
			b.mesh.TopTriangles = append(b.mesh.TopTriangles, a, i1, i2)
		}
	}
}

func (b *builder) collinear(a, i1, i2 uint32) bool {
	va, v1, v2 := b.mesh.Vertices[a], b.mesh.Vertices[i1], b.mesh.Vertices[i2]
	cross := v1.Sub(va).Cross(v2.Sub(va))
	return cross.Len() < 1e-9
}

// facet gives every triangle three unshared vertices so flat shading can
// be derived without touching the normals.
func (b *builder) facet() {
	m := b.mesh
	if len(m.Vertices) == len(m.TopTriangles)+len(m.BottomTriangles) {
		return
	}

	// The faceted mesh needs one vertex per index, so the cap applies here.
	for len(m.TopTriangles)+len(m.BottomTriangles) > MaxVertices {
		m.TooBig = true
		if len(m.BottomTriangles) > 0 {
			m.BottomTriangles = m.BottomTriangles[:len(m.BottomTriangles)-3]
		} else {
			m.TopTriangles = m.TopTriangles[:len(m.TopTriangles)-3]
		}
	}

	total := len(m.TopTriangles) + len(m.BottomTriangles)
	vertices := make([]mgl32.Vec3, 0, total)
	uv := make([]mgl32.Vec2, 0, total)
	normals := make([]mgl32.Vec3, 0, total)

	remap := func(tris []uint32) []uint32 {
		out := make([]uint32, len(tris))
		for i, src := range tris {
			out[i] = uint32(len(vertices))
			vertices = append(vertices, m.Vertices[src])
			uv = append(uv, m.UV[src])
			normals = append(normals, m.Normals[src])
		}
		return out
	}
	m.TopTriangles = remap(m.TopTriangles)
	m.BottomTriangles = remap(m.BottomTriangles)
	m.Vertices, m.UV, m.Normals = vertices, uv, normals
}
