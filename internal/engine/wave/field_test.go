package wave

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-water/internal/logger"
)

func TestFieldRegisterUnregister(t *testing.T) {
	f := NewField()
	a := plain(Rounded)
	b := plain(Ripple)
	c := plain(Pointed)

	for _, w := range []*Waveform{a, b, c} {
		if err := f.Register(w); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	if f.Len() != 3 {
		t.Fatalf("Len = %d, want 3", f.Len())
	}
	if err := f.Register(b); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}

	if !f.Unregister(b) {
		t.Fatal("Unregister(b) = false")
	}
	if f.Unregister(b) {
		t.Error("second Unregister(b) = true")
	}

	ws := f.Waveforms()
	if len(ws) != 2 || ws[0] != a || ws[1] != c {
		t.Errorf("unexpected order after removal: %v", ws)
	}
	if !f.Unregister(c) || f.Len() != 1 {
		t.Error("Unregister(c) failed after index shift")
	}
}

func TestFieldAssignsMissingID(t *testing.T) {
	f := NewField()
	w := &Waveform{Type: Bell, Enabled: true, Height: 1, Scale: mgl32.Vec2{1, 1}}
	if err := f.Register(w); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if w.ID == uuid.Nil {
		t.Error("Register did not assign an ID")
	}
}

func TestSumHeight(t *testing.T) {
	f := NewField()
	a := plain(Rounded)
	b := plain(Ripple)
	b.Height = 0.5
	disabled := plain(Pointed)
	disabled.Enabled = false

	for _, w := range []*Waveform{a, b, disabled} {
		if err := f.Register(w); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	f.Advance(1.25)

	x, y, tm := float32(3.5), float32(-7.25), float32(1.25)
	want := a.GetHeight(x, y, tm, false) + b.GetHeight(x, y, tm, false)
	if got := f.SumHeight(x, y, tm); !almostEqual(got, want, 1e-6) {
		t.Errorf("SumHeight = %v, want %v", got, want)
	}
}

func TestSumHeightDeterministic(t *testing.T) {
	f := NewField()
	for _, typ := range []Type{Rounded, Pointed, Ripple, Bell, Random, Custom} {
		w := New(typ)
		w.Speed = mgl32.Vec2{0.4, 0.1}
		w.RotationDegrees = 33
		w.SpreadEnabled = typ == Ripple
		w.SpreadRadius = 40
		if err := f.Register(w); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	f.Advance(2)

	for _, p := range [][2]float32{{0, 0}, {12.5, -3}, {-40, 17.75}} {
		first := f.SumHeight(p[0], p[1], 2)
		second := f.SumHeight(p[0], p[1], 2)
		if first != second {
			t.Errorf("SumHeight%v not bit-identical: %v vs %v", p, first, second)
		}
	}
}

func TestRegisterWarnsOnDegenerateWaveform(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer logger.SetLogger(zap.New(core))()

	f := NewField()
	w := plain(Bell)
	w.Scale = mgl32.Vec2{0, 0}
	if err := f.Register(w); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if logs.FilterMessage("waveform has degenerate parameters").Len() != 1 {
		t.Errorf("expected one degenerate-parameter warning, got %d entries", logs.Len())
	}
}
