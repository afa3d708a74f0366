package wave

import (
	"errors"
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"
)

var ErrUnknownNoise = errors.New("unknown noise kind")

// DefaultSeed seeds DefaultNoise.
const DefaultSeed = 1337

// NoiseSource samples 2D noise normalized to [0, 1].
type NoiseSource interface {
	Noise01(x, y float64) float64
}

// DefaultNoise backs Random waveforms that have no source of their own.
var DefaultNoise NoiseSource = NewPerlinNoise(DefaultSeed)

// PerlinNoise is single-octave Perlin noise.
type PerlinNoise struct {
	p *perlin.Perlin
}

// NewPerlinNoise creates a Perlin source with the given seed.
func NewPerlinNoise(seed int64) *PerlinNoise {
	return &PerlinNoise{p: perlin.NewPerlin(2, 2, 1, seed)}
}

// Noise01 implements NoiseSource.
func (n *PerlinNoise) Noise01(x, y float64) float64 {
	return mgl64.Clamp((n.p.Noise2D(x, y)+1)/2, 0, 1)
}

// SimplexNoise is OpenSimplex noise.
type SimplexNoise struct {
	n opensimplex.Noise
}

// NewSimplexNoise creates an OpenSimplex source with the given seed.
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{n: opensimplex.NewNormalized(seed)}
}

// Noise01 implements NoiseSource.
func (n *SimplexNoise) Noise01(x, y float64) float64 {
	return n.n.Eval2(x, y)
}

// NewNoise builds a source by kind name: "perlin" or "simplex".
func NewNoise(kind string, seed int64) (NoiseSource, error) {
	switch kind {
	case "", "perlin":
		return NewPerlinNoise(seed), nil
	case "simplex":
		return NewSimplexNoise(seed), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNoise, kind)
}
