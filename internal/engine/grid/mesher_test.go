package grid

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-water/internal/logger"
)

func observeWarnings(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	t.Cleanup(logger.SetLogger(zap.New(core)))
	return logs
}

func TestMesherCachesUnchangedConfiguration(t *testing.T) {
	m := NewMesher()
	cfg := DefaultConfiguration()

	first, err := m.GenerateMesh(cfg)
	if err != nil {
		t.Fatalf("GenerateMesh failed: %v", err)
	}
	second, err := m.GenerateMesh(cfg.Clone())
	if err != nil {
		t.Fatalf("GenerateMesh failed: %v", err)
	}
	if first != second {
		t.Error("unchanged configuration rebuilt the mesh")
	}

	cfg.Bottom = true
	third, err := m.GenerateMesh(cfg)
	if err != nil {
		t.Fatalf("GenerateMesh failed: %v", err)
	}
	if third == first {
		t.Error("changed configuration did not rebuild the mesh")
	}
	if len(third.BottomTriangles) == 0 {
		t.Error("rebuilt mesh has no bottom face")
	}
}

func TestMesherKeepsPreviousMeshOnInvalidLevels(t *testing.T) {
	logs := observeWarnings(t)
	m := NewMesher()

	valid := Configuration{
		Levels:       []Level{{Factor: 1, Count: 5}},
		BaseCellSize: 1,
		Top:          true,
	}
	good, err := m.GenerateMesh(valid)
	if err != nil {
		t.Fatalf("GenerateMesh failed: %v", err)
	}
	vertices := good.VertexCount()

	invalid := valid.Clone()
	invalid.Levels = append(invalid.Levels, Level{Factor: 3, Count: 5})

	for i := 0; i < 3; i++ {
		got, err := m.GenerateMesh(invalid)
		if !errors.Is(err, ErrInvalidLevels) {
			t.Fatalf("attempt %d: expected ErrInvalidLevels, got %v", i, err)
		}
		if got != good || got.VertexCount() != vertices {
			t.Fatalf("attempt %d: previous mesh not retained", i)
		}
	}

	if n := logs.FilterMessage("invalid grid configuration, keeping previous mesh").Len(); n != 1 {
		t.Errorf("expected exactly one warning, got %d", n)
	}
	if m.Mesh() != good {
		t.Error("Mesh() changed after rejection")
	}

	// Going back to the valid configuration is a cache hit.
	back, err := m.GenerateMesh(valid)
	if err != nil || back != good {
		t.Errorf("valid configuration after rejection: mesh %p err %v", back, err)
	}
}

func TestMesherWarnsWhenTooBig(t *testing.T) {
	logs := observeWarnings(t)
	m := NewMesher()

	mesh, err := m.GenerateMesh(Configuration{
		Levels:       []Level{{Factor: 1, Count: 150}},
		BaseCellSize: 1,
		Top:          true,
	})
	if err != nil {
		t.Fatalf("too big mesh must not be an error, got %v", err)
	}
	if !mesh.TooBig || mesh.VertexCount() > MaxVertices {
		t.Errorf("TooBig=%v vertices=%d", mesh.TooBig, mesh.VertexCount())
	}
	if n := logs.FilterMessage("grid mesh too big, keeping truncated mesh").Len(); n != 1 {
		t.Errorf("expected one too-big warning, got %d", n)
	}
}

func TestMesherFirstConfigurationInvalid(t *testing.T) {
	observeWarnings(t)
	m := NewMesher()

	mesh, err := m.GenerateMesh(Configuration{BaseCellSize: 1})
	if !errors.Is(err, ErrInvalidLevels) {
		t.Fatalf("expected ErrInvalidLevels, got %v", err)
	}
	if mesh != nil {
		t.Error("expected nil mesh with no previous build")
	}
}
