// Package mathf provides float32 scalar helpers shared by the water engine.
package mathf

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Clamp01 clamps v to [0, 1].
func Clamp01(v float32) float32 {
	return mgl32.Clamp(v, 0, 1)
}

// Lerp interpolates between a and b.
// The a*(1-t) + b*t form returns a and b exactly at t=0 and t=1.
func Lerp(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

// InverseLerp returns where v lies between a and b, clamped to [0, 1].
func InverseLerp(a, b, v float32) float32 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

// Repeat wraps t into [0, length). Negative inputs wrap from the top.
func Repeat(t, length float32) float32 {
	if length <= 0 {
		return 0
	}
	r := t - float32(math.Floor(float64(t/length)))*length
	if r >= length || r < 0 {
		return 0
	}
	return r
}

// Frac returns the fractional part of v in [0, 1).
func Frac(v float32) float32 {
	return Repeat(v, 1)
}

// FloorToInt rounds v down to the nearest integer.
func FloorToInt(v float32) int {
	return int(math.Floor(float64(v)))
}

// CeilToInt rounds v up to the nearest integer.
func CeilToInt(v float32) int {
	return int(math.Ceil(float64(v)))
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Pair maps a signed integer coordinate pair to a unique int64 key.
// Coordinates are zigzag encoded and combined with Szudzik's pairing function.
func Pair(x, y int) int64 {
	a := zigzag(int64(x))
	b := zigzag(int64(y))
	if a >= b {
		return int64(a*a + a + b)
	}
	return int64(b*b + a)
}

func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}
