// Package config handles simulation configuration loading and management.
package config

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-water/internal/engine/grid"
	"github.com/Faultbox/midgard-water/internal/engine/heightfield"
	"github.com/Faultbox/midgard-water/internal/engine/water"
)

// Config holds all simulation settings.
type Config struct {
	Surface     SurfaceConfig        `yaml:"surface"`
	HeightField heightfield.Settings `yaml:"height_field"`
	Waves       []WaveConfig         `yaml:"waves"`
	Noise       NoiseConfig          `yaml:"noise"`
	Sim         SimConfig            `yaml:"sim"`
	Logging     LoggingConfig        `yaml:"logging"`
}

// SurfaceConfig holds the grid layout and placement of the water surface.
type SurfaceConfig struct {
	grid.Configuration `yaml:",inline"`

	Position  mgl32.Vec3 `yaml:"position"` // Y is the rest level
	AnimSpeed float32    `yaml:"anim_speed"`
}

// NoiseConfig selects the noise generator behind random waveforms.
type NoiseConfig struct {
	Kind string `yaml:"kind"` // "perlin" or "simplex"
	Seed int64  `yaml:"seed"`
}

// SimConfig holds headless simulation settings.
type SimConfig struct {
	Ticks       int          `yaml:"ticks"`
	DT          float32      `yaml:"dt"`           // seconds per tick
	Camera      CameraConfig `yaml:"camera"`       // viewer the surface follows
	Probes      []mgl32.Vec3 `yaml:"probes"`       // points sampled with GetWaterHeight
	ReportEvery int          `yaml:"report_every"` // ticks between probe reports, 0 reports only the last tick

	TextureFrames int `yaml:"texture_frames"` // frames in the animated water texture
}

// CameraConfig moves the simulated viewer.
type CameraConfig struct {
	Velocity mgl32.Vec3 `yaml:"velocity"`  // center movement per second
	YawRate  float32    `yaml:"yaw_rate"`  // radians per second
	ZoomRate float32    `yaml:"zoom_rate"` // fraction of the distance closed per second
	Distance float32    `yaml:"distance"`  // 0 frames the whole surface
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Surface: SurfaceConfig{
			Configuration: grid.DefaultConfiguration(),
			AnimSpeed:     water.DefaultAnimSpeed,
		},
		HeightField: heightfield.DefaultSettings(),
		Waves: []WaveConfig{
			DefaultWave(),
		},
		Noise: NoiseConfig{
			Kind: "perlin",
			Seed: 1337,
		},
		Sim: SimConfig{
			Ticks:       600,
			DT:          1.0 / 60,
			Probes:      []mgl32.Vec3{{0, 0, 0}},
			ReportEvery: 60,

			TextureFrames: 32,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// WaterSettings returns the settings for water.New.
func (c *Config) WaterSettings() water.Settings {
	return water.Settings{
		Grid:        c.Surface.Configuration.Clone(),
		HeightField: c.HeightField,
		Position:    c.Surface.Position,
		AnimSpeed:   c.Surface.AnimSpeed,
	}
}
