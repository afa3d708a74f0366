package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-water/internal/engine/curve"
	"github.com/Faultbox/midgard-water/internal/engine/wave"
)

// WaveConfig declares one waveform. Missing curves keep the waveform
// defaults.
type WaveConfig struct {
	Type     string     `yaml:"type"`
	Enabled  bool       `yaml:"enabled"`
	Inactive bool       `yaml:"inactive,omitempty"`
	Height   float32    `yaml:"height"`
	Scale    mgl32.Vec2 `yaml:"scale"`
	Offset   mgl32.Vec2 `yaml:"offset"`
	Speed    mgl32.Vec2 `yaml:"speed"`
	Origin   mgl32.Vec2 `yaml:"origin"`
	Rotation float32    `yaml:"rotation"` // degrees

	Spread      SpreadConfig      `yaml:"spread"`
	Interpolate InterpolateConfig `yaml:"interpolate"`
	Fluctuate   FluctuateConfig   `yaml:"fluctuate"`
	CustomCurve *curve.Curve      `yaml:"custom_curve,omitempty"`
}

// SpreadConfig fades a waveform out with distance from its origin.
type SpreadConfig struct {
	Enabled bool         `yaml:"enabled"`
	Radius  float32      `yaml:"radius"`
	Curve   *curve.Curve `yaml:"curve,omitempty"`
}

// InterpolateConfig eases a waveform in and out when it is toggled.
type InterpolateConfig struct {
	Enabled bool         `yaml:"enabled"`
	Time    float32      `yaml:"time"`
	Curve   *curve.Curve `yaml:"curve,omitempty"`
}

// FluctuateConfig modulates a waveform's height over time.
type FluctuateConfig struct {
	Enabled bool         `yaml:"enabled"`
	Period  float32      `yaml:"period"`
	Offset  float32      `yaml:"offset"`
	Curve   *curve.Curve `yaml:"curve,omitempty"`
}

// DefaultWave returns an enabled rounded waveform of unit height.
func DefaultWave() WaveConfig {
	return WaveConfig{
		Type:        "rounded",
		Enabled:     true,
		Height:      1,
		Scale:       mgl32.Vec2{1, 1},
		Spread:      SpreadConfig{Radius: 10},
		Interpolate: InterpolateConfig{Time: 1},
		Fluctuate:   FluctuateConfig{Period: 1},
	}
}

// UnmarshalYAML fills fields missing from the document with DefaultWave
// values.
func (w *WaveConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain WaveConfig
	out := plain(DefaultWave())
	if err := value.Decode(&out); err != nil {
		return err
	}
	*w = WaveConfig(out)
	return nil
}

// Waveform builds the runtime waveform. noise feeds random waveforms; nil
// leaves the package default.
func (w WaveConfig) Waveform(noise wave.NoiseSource) (*wave.Waveform, error) {
	typ, err := wave.ParseType(w.Type)
	if err != nil {
		return nil, err
	}

	out := wave.New(typ)
	out.Enabled = w.Enabled
	out.SetActive(!w.Inactive)
	out.Height = w.Height
	out.Scale = w.Scale
	out.Offset = w.Offset
	out.Speed = w.Speed
	out.Origin = w.Origin
	out.RotationDegrees = w.Rotation

	out.SpreadEnabled = w.Spread.Enabled
	out.SpreadRadius = w.Spread.Radius
	if w.Spread.Curve != nil {
		out.SpreadCurve = curve.New(w.Spread.Curve.Keys...)
	}

	out.InterpolateEnabled = w.Interpolate.Enabled
	out.InterpolationTime = w.Interpolate.Time
	if w.Interpolate.Curve != nil {
		out.InterpolationCurve = curve.New(w.Interpolate.Curve.Keys...)
	}

	out.FluctuateEnabled = w.Fluctuate.Enabled
	out.FluctuatePeriod = w.Fluctuate.Period
	out.FluctuateOffset = w.Fluctuate.Offset
	if w.Fluctuate.Curve != nil {
		out.FluctuateCurve = curve.New(w.Fluctuate.Curve.Keys...)
	}

	if w.CustomCurve != nil {
		out.CustomCurve = curve.New(w.CustomCurve.Keys...)
	}
	if noise != nil {
		out.Noise = noise
	}
	return out, nil
}

// BuildField creates the noise source and registers every configured
// waveform, in order, on a new field.
func (c *Config) BuildField() (*wave.Field, error) {
	noise, err := wave.NewNoise(c.Noise.Kind, c.Noise.Seed)
	if err != nil {
		return nil, fmt.Errorf("noise: %w", err)
	}

	field := wave.NewField()
	for i, wc := range c.Waves {
		w, err := wc.Waveform(noise)
		if err != nil {
			return nil, fmt.Errorf("wave %d: %w", i, err)
		}
		if err := field.Register(w); err != nil {
			return nil, fmt.Errorf("wave %d: %w", i, err)
		}
	}
	return field, nil
}
