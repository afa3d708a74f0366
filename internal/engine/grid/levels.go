package grid

import (
	"fmt"
	"math"
)

// alignEpsilon absorbs float error in divisibility checks.
const alignEpsilon = 1e-4

// ValidateLevels derives Step, Size, Offset and VertWidth for every level of
// cfg and checks that each level's ring is aligned with the one inside it.
func ValidateLevels(cfg Configuration) ([]Level, error) {
	if len(cfg.Levels) == 0 {
		return nil, fmt.Errorf("%w: no levels", ErrInvalidLevels)
	}
	if cfg.BaseCellSize <= 0 {
		return nil, fmt.Errorf("%w: base cell size %v", ErrInvalidLevels, cfg.BaseCellSize)
	}

	base := float64(cfg.BaseCellSize)
	levels := make([]Level, len(cfg.Levels))
	step := base
	prevSize := 0.0

	for i, in := range cfg.Levels {
		if in.Factor < 1 || in.Count < 1 {
			return nil, fmt.Errorf("%w: level %d has factor %d and count %d", ErrInvalidLevels, i, in.Factor, in.Count)
		}
		step *= float64(in.Factor)

		if i > 0 && !divisible(prevSize, step) {
			return nil, fmt.Errorf("%w: level %d step %v does not divide level %d size %v",
				ErrInvalidLevels, i, step, i-1, prevSize)
		}

		maxSize := prevSize + 2*float64(in.Count)*step
		size := maxSize
		if cfg.MaxSize > 0 {
			size = clampSize(size, prevSize, step, base, float64(cfg.MaxSize), i > 0)
		}

		levels[i] = Level{
			Factor:    in.Factor,
			Count:     in.Count,
			Step:      float32(step),
			Size:      float32(size),
			MaxSize:   float32(maxSize),
			Offset:    float32(size / 2),
			VertWidth: int(math.Floor(size/step+alignEpsilon)) + 1,
		}
		prevSize = size
	}

	if levels[0].Size < levels[0].Step {
		return nil, fmt.Errorf("%w: innermost level has no whole cell under max size %v", ErrInvalidLevels, cfg.MaxSize)
	}
	return levels, nil
}

// clampSize shrinks size in base-cell-size decrements until it fits under
// limit. A ring around an inner square must also stay whole cells wide.
func clampSize(size, prevSize, step, base, limit float64, ring bool) float64 {
	if size <= limit {
		return size
	}
	// Jump close to the limit first, then walk down one base cell at a time.
	size -= math.Floor((size-limit)/base) * base
	for size > prevSize {
		if size <= limit+alignEpsilon && (!ring || divisible((size-prevSize)/2, step)) {
			return size
		}
		size -= base
	}
	return prevSize
}

func divisible(a, b float64) bool {
	if b <= 0 {
		return false
	}
	r := a / b
	return math.Abs(r-math.Round(r)) < alignEpsilon
}
