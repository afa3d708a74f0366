// Package wave implements closed-form periodic waveforms and the field that
// sums them into a water surface height.
package wave

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/midgard-water/internal/engine/curve"
	"github.com/Faultbox/midgard-water/pkg/mathf"
)

var (
	ErrUnknownType      = errors.New("unknown waveform type")
	ErrInvalidParameter = errors.New("invalid waveform parameter")
)

// Type selects the shape formula of a waveform.
type Type int

const (
	Rounded Type = iota
	Pointed
	Ripple
	Bell
	Random
	Custom
)

var typeNames = [...]string{"rounded", "pointed", "ripple", "bell", "random", "custom"}

// String returns the lower-case name of the type.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType converts a type name (case-insensitive) to a Type.
func ParseType(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, tn := range typeNames {
		if tn == n {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Waveform is a single periodic height contribution.
//
// Exported fields are configuration. The interpolation state is primed by
// Field.Register, advanced once per tick by Advance and only read by GetHeight.
// Before the first Advance, GetHeight uses the settled amplitude.
type Waveform struct {
	ID   uuid.UUID
	Type Type

	Enabled bool
	Height  float32
	Scale   mgl32.Vec2
	Offset  mgl32.Vec2
	Speed   mgl32.Vec2

	// Origin is the waveform's position on the XZ plane. Spread, rotation,
	// ripple and bell shapes are measured from it.
	Origin          mgl32.Vec2
	RotationDegrees float32

	SpreadEnabled bool
	SpreadRadius  float32
	SpreadCurve   curve.Curve

	InterpolateEnabled bool
	InterpolationTime  float32
	InterpolationCurve curve.Curve

	FluctuateEnabled bool
	FluctuatePeriod  float32
	FluctuateOffset  float32
	FluctuateCurve   curve.Curve

	CustomCurve curve.Curve

	// Noise feeds the Random shape. Nil uses DefaultNoise.
	Noise NoiseSource

	inactive bool

	started              bool
	adjustedHeight       float32
	ratio                float32
	previousEnabled      bool
	previousInterpolate  bool
	interpolateStartTime float32
}

// New creates an enabled waveform of the given type with unit height and scale.
func New(typ Type) *Waveform {
	return &Waveform{
		ID:                 uuid.New(),
		Type:               typ,
		Enabled:            true,
		Height:             1,
		Scale:              mgl32.Vec2{1, 1},
		SpreadRadius:       10,
		SpreadCurve:        curve.Linear(0, 1, 1, 0),
		InterpolationTime:  1,
		InterpolationCurve: curve.EaseInOut(0, 0, 1, 1),
		FluctuatePeriod:    1,
		FluctuateCurve:     curve.Constant(0, 1, 1),
		CustomCurve: curve.New(
			curve.Keyframe{Time: 0, Value: -1, OutTangent: 4},
			curve.Keyframe{Time: 0.5, Value: 1, InTangent: 4, OutTangent: -4},
			curve.Keyframe{Time: 1, Value: -1, InTangent: -4},
		),
	}
}

// SetActive toggles whether the waveform takes part in its scene at all.
// An inactive waveform contributes nothing regardless of Enabled.
func (w *Waveform) SetActive(active bool) {
	w.inactive = !active
}

// Active reports whether the waveform is active in its scene.
func (w *Waveform) Active() bool {
	return !w.inactive
}

// AdjustedHeight returns the amplitude after interpolation and fluctuation,
// as computed by the last Advance.
func (w *Waveform) AdjustedHeight() float32 {
	return w.adjustedHeight
}

// Contributing reports whether the waveform currently adds any height:
// it is enabled, or it is still fading out.
func (w *Waveform) Contributing() bool {
	return !w.inactive && (w.Enabled || w.ratio > 0)
}

// GetHeight returns the waveform's contribution at world (x, y) and time t.
// With ignoreInterpolation the configured Height is used in place of the
// interpolated and fluctuating amplitude.
func (w *Waveform) GetHeight(x, y, t float32, ignoreInterpolation bool) float32 {
	if w.inactive {
		return 0
	}
	spread := float32(1)
	if w.SpreadEnabled {
		spread = w.spreadMultiplier(x, y)
		if spread <= 0 {
			return 0
		}
	}

	if w.RotationDegrees != 0 {
		rot := mgl32.Rotate2D(mgl32.DegToRad(-w.RotationDegrees))
		p := rot.Mul2x1(mgl32.Vec2{x - w.Origin.X(), y - w.Origin.Y()})
		x = p.X() + w.Origin.X()
		y = p.Y() + w.Origin.Y()
	}

	h := w.shape(x, y, t)

	amp := w.adjustedHeight
	switch {
	case ignoreInterpolation:
		amp = w.Height
	case !w.started:
		amp = w.Height * w.settledRatio() * w.fluctuation(t)
	}
	return h * amp * spread
}

func (w *Waveform) spreadMultiplier(x, y float32) float32 {
	dx := x - w.Origin.X()
	dy := y - w.Origin.Y()

	r2 := w.SpreadRadius * w.SpreadRadius
	ax, ay := float32(1), float32(1)
	if r2 > 0 {
		ax = mathf.InverseLerp(0, r2, dx*dx)
		ay = mathf.InverseLerp(0, r2, dy*dy)
	}
	return w.SpreadCurve.Evaluate(1 - (1-ax)*(1-ay))
}

// Validate reports parameters that evaluate to degenerate heights.
// Evaluation still proceeds with them.
func (w *Waveform) Validate() error {
	var errs []error
	if !mathf.IsFinite(w.Height) {
		errs = append(errs, fmt.Errorf("%w: height %v", ErrInvalidParameter, w.Height))
	}
	if w.Type == Bell && w.Scale.X() == 0 {
		errs = append(errs, fmt.Errorf("%w: bell scale.x is zero", ErrInvalidParameter))
	}
	if w.SpreadEnabled && w.SpreadRadius <= 0 {
		errs = append(errs, fmt.Errorf("%w: spread radius %v", ErrInvalidParameter, w.SpreadRadius))
	}
	if w.InterpolateEnabled && w.InterpolationTime <= 0 {
		errs = append(errs, fmt.Errorf("%w: interpolation time %v", ErrInvalidParameter, w.InterpolationTime))
	}
	if w.FluctuateEnabled && w.FluctuatePeriod == 0 {
		errs = append(errs, fmt.Errorf("%w: fluctuate period is zero", ErrInvalidParameter))
	}
	if w.Type == Custom && w.CustomCurve.Len() == 0 {
		errs = append(errs, fmt.Errorf("%w: custom curve has no keys", ErrInvalidParameter))
	}
	return errors.Join(errs...)
}
