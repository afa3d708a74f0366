package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagTicks  = flag.Int("ticks", 0, "Number of simulation ticks")
	flagDT     = flag.Float64("dt", 0, "Seconds per simulation tick")
	flagNoise  = flag.String("noise", "", "Noise generator for random waves (perlin, simplex)")
	flagSeed   = flag.Int64("seed", 0, "Noise seed")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagTicks > 0 {
		cfg.Sim.Ticks = *flagTicks
	}
	if *flagDT > 0 {
		cfg.Sim.DT = float32(*flagDT)
	}
	if *flagNoise != "" {
		cfg.Noise.Kind = *flagNoise
	}
	if *flagSeed != 0 {
		cfg.Noise.Seed = *flagSeed
	}
}
