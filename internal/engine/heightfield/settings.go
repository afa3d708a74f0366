package heightfield

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	minRate = 1
	maxRate = 60

	// fpsSmoothing is the weight of a new frame in the fps average.
	fpsSmoothing = 0.1
	// rateSmoothing is how far the refresh rate moves toward its target per frame.
	rateSmoothing = 0.1
)

// Settings controls refresh throttling and anchor snapping.
//
// With AutoThrottle off, heights refresh RefreshRate times per second. With it
// on, the rate eases toward the smoothed frame rate while that rate is under
// FPSThreshold, and back toward 60 once it recovers. The rate always stays
// within 1..60.
type Settings struct {
	AutoThrottle bool    `yaml:"auto_throttle"`
	FPSThreshold float32 `yaml:"fps_threshold"` // below this the refresh rate drops
	RefreshRate  float32 `yaml:"refresh_rate"`  // refreshes per second, 1..60
	AnchorStep   float32 `yaml:"anchor_step"`   // 0 follows the target exactly
}

// DefaultSettings returns settings that refresh every frame at 60 fps and
// back off when the frame rate falls under 30.
func DefaultSettings() Settings {
	return Settings{
		AutoThrottle: true,
		FPSThreshold: 30,
		RefreshRate:  maxRate,
		AnchorStep:   1,
	}
}

type throttle struct {
	auto      bool
	threshold float32

	fps     float32
	rate    float32
	elapsed float32
	primed  bool
}

func newThrottle(s Settings) throttle {
	rate := s.RefreshRate
	if rate <= 0 {
		rate = maxRate
	}
	return throttle{
		auto:      s.AutoThrottle,
		threshold: s.FPSThreshold,
		fps:       maxRate,
		rate:      mgl32.Clamp(rate, minRate, maxRate),
	}
}

// due advances the throttle by one frame of length dt. The first call is
// always due so the cache never starts empty.
func (th *throttle) due(dt float32) bool {
	if dt > 0 {
		th.fps += (1/dt - th.fps) * fpsSmoothing
	}
	if th.auto {
		if th.fps < th.threshold {
			th.rate += rateSmoothing * (th.fps - th.rate)
		} else {
			th.rate += rateSmoothing * (maxRate - th.rate)
		}
		th.rate = mgl32.Clamp(th.rate, minRate, maxRate)
	}

	interval := 1 / th.rate
	th.elapsed += dt
	if th.primed && th.elapsed < interval {
		return false
	}
	th.primed = true

	// Keep the remainder so a rate just under the frame rate still skips
	// only the occasional frame.
	th.elapsed -= interval
	if th.elapsed < 0 || th.elapsed > interval {
		th.elapsed = 0
	}
	return true
}
