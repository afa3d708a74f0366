// Package curve provides keyframed Hermite curves used to shape waveform
// spread, interpolation, fluctuation and custom profiles.
package curve

import (
	"math"
	"sort"
)

// Keyframe is a single curve key with Hermite tangents.
type Keyframe struct {
	Time       float32 `yaml:"time"`
	Value      float32 `yaml:"value"`
	InTangent  float32 `yaml:"in"`
	OutTangent float32 `yaml:"out"`
}

// Curve is an ordered set of keyframes evaluated with cubic Hermite
// interpolation. Outside the key range the curve clamps to the end values.
type Curve struct {
	Keys []Keyframe `yaml:"keys"`
}

// New creates a curve from keys, sorting them by time.
func New(keys ...Keyframe) Curve {
	sorted := make([]Keyframe, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return Curve{Keys: sorted}
}

// Constant returns a flat curve between t0 and t1.
func Constant(t0, t1, value float32) Curve {
	return New(
		Keyframe{Time: t0, Value: value},
		Keyframe{Time: t1, Value: value},
	)
}

// Linear returns a straight line from (t0, v0) to (t1, v1).
func Linear(t0, v0, t1, v1 float32) Curve {
	if t0 == t1 {
		return New(Keyframe{Time: t0, Value: v1})
	}
	slope := (v1 - v0) / (t1 - t0)
	return New(
		Keyframe{Time: t0, Value: v0, InTangent: 0, OutTangent: slope},
		Keyframe{Time: t1, Value: v1, InTangent: slope, OutTangent: 0},
	)
}

// EaseInOut returns an S-shaped curve from (t0, v0) to (t1, v1) with flat tangents.
func EaseInOut(t0, v0, t1, v1 float32) Curve {
	if t0 == t1 {
		return New(Keyframe{Time: t0, Value: v1})
	}
	return New(
		Keyframe{Time: t0, Value: v0},
		Keyframe{Time: t1, Value: v1},
	)
}

// Len returns the number of keys.
func (c Curve) Len() int {
	return len(c.Keys)
}

// FirstKeyTime returns the time of the first key, or 0 for an empty curve.
func (c Curve) FirstKeyTime() float32 {
	if len(c.Keys) == 0 {
		return 0
	}
	return c.Keys[0].Time
}

// LastKeyTime returns the time of the last key, or 0 for an empty curve.
func (c Curve) LastKeyTime() float32 {
	if len(c.Keys) == 0 {
		return 0
	}
	return c.Keys[len(c.Keys)-1].Time
}

// Evaluate samples the curve at t.
func (c Curve) Evaluate(t float32) float32 {
	keys := c.Keys
	switch len(keys) {
	case 0:
		return 0
	case 1:
		return keys[0].Value
	}

	if t <= keys[0].Time {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if t >= last.Time {
		return last.Value
	}

	// Keys are sorted, so the first key after t closes the segment.
	next := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	k0 := keys[next-1]
	k1 := keys[next]

	return hermite(k0, k1, t)
}

func hermite(k0, k1 Keyframe, t float32) float32 {
	dt := k1.Time - k0.Time
	if dt <= 0 {
		return k1.Value
	}

	m0 := float64(k0.OutTangent)
	m1 := float64(k1.InTangent)
	// Infinite tangents hold the left value, producing a step.
	if math.IsInf(m0, 0) || math.IsInf(m1, 0) {
		return k0.Value
	}

	s := float64((t - k0.Time) / dt)
	s2 := s * s
	s3 := s2 * s

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	d := float64(dt)
	v := h00*float64(k0.Value) + h10*d*m0 + h01*float64(k1.Value) + h11*d*m1
	return float32(v)
}

// Solve returns the time in the key range at which the curve reaches value,
// assuming the curve is monotonic over that range. Values outside the curve's
// range resolve to the nearest end.
func (c Curve) Solve(value float32) float32 {
	if len(c.Keys) < 2 {
		return c.FirstKeyTime()
	}

	lo := c.FirstKeyTime()
	hi := c.LastKeyTime()
	vlo := c.Evaluate(lo)
	vhi := c.Evaluate(hi)
	increasing := vhi >= vlo

	if increasing {
		if value <= vlo {
			return lo
		}
		if value >= vhi {
			return hi
		}
	} else {
		if value >= vlo {
			return lo
		}
		if value <= vhi {
			return hi
		}
	}

	for i := 0; i < 48; i++ {
		mid := lo + (hi-lo)/2
		v := c.Evaluate(mid)
		if v == value {
			return mid
		}
		if (v < value) == increasing {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo + (hi-lo)/2
}
