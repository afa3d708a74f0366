package grid

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func mustGenerate(t *testing.T, cfg Configuration) *GridMesh {
	t.Helper()
	levels, err := ValidateLevels(cfg)
	if err != nil {
		t.Fatalf("ValidateLevels failed: %v", err)
	}
	return Generate(cfg, levels)
}

func triangleNormal(m *GridMesh, a, b, c uint32) mgl32.Vec3 {
	va, vb, vc := m.Vertices[a], m.Vertices[b], m.Vertices[c]
	return vb.Sub(va).Cross(vc.Sub(va))
}

func TestSingleLevelTopOnly(t *testing.T) {
	m := mustGenerate(t, Configuration{
		Levels:       []Level{{Factor: 1, Count: 5}},
		BaseCellSize: 1,
		Top:          true,
	})

	if m.VertexCount() != 121 {
		t.Errorf("vertex count = %d, want 121", m.VertexCount())
	}
	if m.TriangleCount() != 200 {
		t.Errorf("triangle count = %d, want 200", m.TriangleCount())
	}
	if len(m.BottomTriangles) != 0 {
		t.Errorf("unexpected bottom triangles: %d", len(m.BottomTriangles))
	}
	if m.TooBig {
		t.Error("small mesh flagged too big")
	}
	if len(m.UV) != len(m.Vertices) || len(m.Normals) != len(m.Vertices) {
		t.Error("attribute arrays out of step with vertices")
	}
}

func TestFacesWinding(t *testing.T) {
	m := mustGenerate(t, Configuration{
		Levels:       []Level{{Factor: 1, Count: 2}, {Factor: 2, Count: 2}},
		BaseCellSize: 1,
		Top:          true,
		Bottom:       true,
	})

	check := func(name string, tris []uint32, wantY float32) {
		if len(tris) == 0 {
			t.Fatalf("%s: no triangles", name)
		}
		for i := 0; i < len(tris); i += 3 {
			n := triangleNormal(m, tris[i], tris[i+1], tris[i+2])
			if n.Y()*wantY <= 0 {
				t.Fatalf("%s triangle %d has normal %v", name, i/3, n)
			}
			for _, v := range tris[i : i+3] {
				if m.Normals[v].Y() != wantY {
					t.Fatalf("%s vertex %d has normal %v", name, v, m.Normals[v])
				}
			}
		}
	}
	check("top", m.TopTriangles, 1)
	check("bottom", m.BottomTriangles, -1)

	if len(m.TopTriangles) != len(m.BottomTriangles) {
		t.Errorf("faces differ: %d vs %d indices", len(m.TopTriangles), len(m.BottomTriangles))
	}
}

// TestCrackFree checks the faces tile the outer square exactly: areas add
// up and every edge not on the outer border is shared by two triangles.
func TestCrackFree(t *testing.T) {
	configs := map[string]Configuration{
		"two levels": {
			Levels:       []Level{{Factor: 1, Count: 2}, {Factor: 2, Count: 1}},
			BaseCellSize: 1,
			Top:          true,
		},
		"three levels": {
			Levels:       []Level{{Factor: 1, Count: 3}, {Factor: 3, Count: 2}, {Factor: 2, Count: 2}},
			BaseCellSize: 0.5,
			Top:          true,
		},
		"factor four": {
			Levels:       []Level{{Factor: 1, Count: 4}, {Factor: 4, Count: 1}},
			BaseCellSize: 1,
			Top:          true,
		},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			m := mustGenerate(t, cfg)
			extent := m.Extent()
			half := extent / 2

			var area float64
			edges := make(map[[2]uint32]int)
			tris := m.TopTriangles
			for i := 0; i < len(tris); i += 3 {
				n := triangleNormal(m, tris[i], tris[i+1], tris[i+2])
				a := float64(n.Y()) / 2
				if a <= 0 {
					t.Fatalf("degenerate or flipped triangle %d (area %v)", i/3, a)
				}
				area += a
				for k := 0; k < 3; k++ {
					u, v := tris[i+k], tris[i+(k+1)%3]
					if u > v {
						u, v = v, u
					}
					edges[[2]uint32{u, v}]++
				}
			}

			if want := float64(extent) * float64(extent); math.Abs(area-want) > 1e-3 {
				t.Errorf("covered area = %v, want %v", area, want)
			}

			onBorder := func(p mgl32.Vec3) bool {
				return abs32(p.X()) == half || abs32(p.Z()) == half
			}
			for e, count := range edges {
				switch count {
				case 1:
					a, b := m.Vertices[e[0]], m.Vertices[e[1]]
					if !onBorder(a) || !onBorder(b) {
						t.Fatalf("open edge %v-%v inside the surface", a, b)
					}
				case 2:
				default:
					t.Fatalf("edge %v shared by %d triangles", e, count)
				}
			}
		})
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestStitchingAddsFineVertices(t *testing.T) {
	m := mustGenerate(t, Configuration{
		Levels:       []Level{{Factor: 1, Count: 2}, {Factor: 2, Count: 1}},
		BaseCellSize: 1,
		Top:          true,
	})

	// 5x5 inner lattice plus the 16 outer ring nodes of the coarse level.
	if m.VertexCount() != 41 {
		t.Errorf("vertex count = %d, want 41", m.VertexCount())
	}
	// 16 fine cells, 8 stitched coarse cells of 3 triangles, 4 plain corner cells.
	if m.TriangleCount() != 32+8*3+4*2 {
		t.Errorf("triangle count = %d, want %d", m.TriangleCount(), 32+8*3+4*2)
	}
}

func TestPointsInSquareOrder(t *testing.T) {
	cfg := Configuration{
		Levels:       []Level{{Factor: 1, Count: 2}, {Factor: 2, Count: 1}},
		BaseCellSize: 1,
		Top:          true,
	}
	levels, err := ValidateLevels(cfg)
	if err != nil {
		t.Fatalf("ValidateLevels failed: %v", err)
	}
	b := &builder{mesh: &GridMesh{Levels: levels}, faces: map[Face]*faceIndex{FaceTop: newFaceIndex()}, extent: 8}
	b.buildLevel(FaceTop, levels[0], 0)

	// Coarse cell right of the inner square; its left edge carries a fine vertex.
	for _, c := range []mgl32.Vec2{{2, -2}, {2, 0}, {4, 0}, {4, -2}} {
		b.addVertex(FaceTop, c.X(), c.Y())
	}
	sp := b.pointsInSquare(FaceTop, mgl32.Vec2{2, -2}, mgl32.Vec2{4, 0})

	want := []mgl32.Vec3{{2, 0, -2}, {2, 0, -1}, {2, 0, 0}, {4, 0, 0}, {4, 0, -2}}
	if len(sp.indices) != len(want) {
		t.Fatalf("got %d points, want %d", len(sp.indices), len(want))
	}
	for i, idx := range sp.indices {
		if b.mesh.Vertices[idx] != want[i] {
			t.Errorf("point %d = %v, want %v", i, b.mesh.Vertices[idx], want[i])
		}
	}

	apex, ok := sp.lonelyCorner()
	if !ok {
		t.Fatal("no lonely corner found")
	}
	if got := b.mesh.Vertices[sp.indices[apex]]; got != (mgl32.Vec3{4, 0, 0}) {
		t.Errorf("apex = %v, want (4, 0, 0)", got)
	}
}

func TestUVSharesOneTextureSpace(t *testing.T) {
	m := mustGenerate(t, Configuration{
		Levels:       []Level{{Factor: 1, Count: 2}, {Factor: 2, Count: 2}},
		BaseCellSize: 1,
		Top:          true,
	})
	half := m.Extent() / 2
	for i, v := range m.Vertices {
		uv := m.UV[i]
		if uv.X() < 0 || uv.X() > 1 || uv.Y() < 0 || uv.Y() > 1 {
			t.Fatalf("uv %v out of range at %v", uv, v)
		}
		if v.X() == -half && uv.X() != 0 {
			t.Errorf("left edge uv %v", uv)
		}
		if v.Z() == half && uv.Y() != 1 {
			t.Errorf("far edge uv %v", uv)
		}
	}
}

func TestVertexCap(t *testing.T) {
	m := mustGenerate(t, Configuration{
		Levels:       []Level{{Factor: 1, Count: 200}},
		BaseCellSize: 1,
		Top:          true,
	})
	if !m.TooBig {
		t.Error("expected TooBig")
	}
	if m.VertexCount() > MaxVertices {
		t.Errorf("vertex count %d exceeds %d", m.VertexCount(), MaxVertices)
	}
	if m.TriangleCount() == 0 {
		t.Error("partial mesh should keep the cells built before the cap")
	}
	for _, i := range m.TopTriangles {
		if int(i) >= m.VertexCount() {
			t.Fatalf("index %d out of range", i)
		}
	}
}

func TestLowPoly(t *testing.T) {
	m := mustGenerate(t, Configuration{
		Levels:       []Level{{Factor: 1, Count: 2}, {Factor: 2, Count: 1}},
		BaseCellSize: 1,
		Top:          true,
		Bottom:       true,
		LowPoly:      true,
	})

	total := len(m.TopTriangles) + len(m.BottomTriangles)
	if m.VertexCount() != total {
		t.Fatalf("vertex count %d, want one per index (%d)", m.VertexCount(), total)
	}
	seen := make(map[uint32]bool)
	for _, tris := range [][]uint32{m.TopTriangles, m.BottomTriangles} {
		for _, i := range tris {
			if seen[i] {
				t.Fatalf("vertex %d shared in low poly mesh", i)
			}
			seen[i] = true
		}
	}
	for i := 0; i < len(m.BottomTriangles); i += 3 {
		n := triangleNormal(m, m.BottomTriangles[i], m.BottomTriangles[i+1], m.BottomTriangles[i+2])
		if n.Y() >= 0 {
			t.Fatalf("bottom winding lost in faceting")
		}
	}
}

func TestLowPolyRespectsCap(t *testing.T) {
	m := mustGenerate(t, Configuration{
		Levels:       []Level{{Factor: 1, Count: 100}},
		BaseCellSize: 1,
		Top:          true,
		LowPoly:      true,
	})
	if !m.TooBig {
		t.Error("expected TooBig")
	}
	if m.VertexCount() > MaxVertices {
		t.Errorf("vertex count %d exceeds %d", m.VertexCount(), MaxVertices)
	}
	if m.VertexCount()%3 != 0 {
		t.Errorf("faceted vertex count %d is not whole triangles", m.VertexCount())
	}
}
