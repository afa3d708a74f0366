package wave

import (
	"math"

	"github.com/Faultbox/midgard-water/pkg/mathf"
)

// noiseShift moves Random samples far from the origin, where the noise
// lattice would otherwise mirror itself across the axes.
const noiseShift = 1000

// pointedMax is the largest value of one pointed term, sqrt(2*pi).
var pointedMax = math.Sqrt(2 * math.Pi)

// shape evaluates the unit-amplitude formula for the waveform's type.
func (w *Waveform) shape(x, y, t float32) float32 {
	fx, fy, ft := float64(x), float64(y), float64(t)
	sx, sy := float64(w.Scale.X()), float64(w.Scale.Y())
	ox, oy := float64(w.Origin.X()), float64(w.Origin.Y())

	// Offset advanced by speed over time.
	ax := float64(w.Offset.X()) + float64(w.Speed.X())*ft
	ay := float64(w.Offset.Y()) + float64(w.Speed.Y())*ft

	switch w.Type {
	case Rounded:
		return float32(math.Sin((fx*sx/10+ax)*math.Pi+1) * math.Sin((fy*sy/10+ay)*math.Pi+1))

	case Pointed:
		px := math.Sqrt(math.Sin(fx*sx*2*math.Pi/10+ax)*math.Pi + math.Pi)
		py := math.Sqrt(math.Sin(fy*sy*2*math.Pi/10+ay)*math.Pi + math.Pi)
		return float32(-((px+py)/pointedMax - 1))

	case Ripple:
		// Radial: the x scale and offset drive both axes.
		dx := (fx - ox) * sx
		dy := (fy - oy) * sx
		d := math.Sqrt(dx*dx + dy*dy)
		return float32(math.Sin(d/10*2*math.Pi + ax))

	case Bell:
		// The x scale drives both axes here as well.
		slope := 1.0
		if w.Offset.X() > 0 {
			slope += 1 / float64(w.Offset.X())
		}
		distance := 1 + float64(w.Offset.Y())/10
		dx := (fx - ox) * 10 / sx
		dy := (fy - oy) * 10 / sx
		twoD2 := 2 * distance * distance
		return float32(math.Pow(slope, -dx*dx/twoD2-dy*dy/twoD2))

	case Random:
		src := w.Noise
		if src == nil {
			src = DefaultNoise
		}
		n := src.Noise01(fx*0.1*sx+ax+noiseShift, fy*0.1*sy+ay+noiseShift)
		return float32(2*n - 1)

	case Custom:
		u := mathf.Frac(float32(fx*sx/10 + ax))
		v := mathf.Frac(float32(fy*sy/10 + ay))
		return (w.CustomCurve.Evaluate(u) + w.CustomCurve.Evaluate(v)) / 2
	}
	return 0
}
