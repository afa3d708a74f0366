package wave

import "github.com/Faultbox/midgard-water/pkg/mathf"

// Advance moves the enable/disable interpolation and fluctuation state to
// time t. It runs once per tick, before any GetHeight call for that tick.
func (w *Waveform) Advance(t float32) {
	if !w.started {
		w.prime(t)
	}

	switch {
	case w.InterpolateEnabled && !w.previousInterpolate:
		// Without interpolation the visible ratio was fully on or off.
		visible := float32(0)
		if w.previousEnabled {
			visible = 1
		}
		w.backdate(t, visible)
	case w.InterpolateEnabled && w.Enabled != w.previousEnabled:
		w.backdate(t, w.ratio)
	}
	w.previousEnabled = w.Enabled
	w.previousInterpolate = w.InterpolateEnabled

	w.ratio = w.interpolationRatio(t)
	w.adjustedHeight = w.Height * w.ratio * w.fluctuation(t)
}

// prime starts the interpolation state settled at time t.
func (w *Waveform) prime(t float32) {
	w.started = true
	w.previousEnabled = w.Enabled
	w.previousInterpolate = w.InterpolateEnabled
	if w.InterpolateEnabled {
		w.backdate(t, w.settledRatio())
	}
	w.ratio = w.settledRatio()
	w.adjustedHeight = w.Height * w.ratio * w.fluctuation(t)
}

func (w *Waveform) settledRatio() float32 {
	if w.Enabled {
		return 1
	}
	return 0
}

// interpolationRatio is the fraction of Height currently visible.
func (w *Waveform) interpolationRatio(t float32) float32 {
	if !w.InterpolateEnabled || w.InterpolationTime <= 0 {
		return w.settledRatio()
	}
	progress := (t - w.interpolateStartTime) / w.InterpolationTime
	r := mathf.Clamp01(w.InterpolationCurve.Evaluate(progress))
	if !w.Enabled {
		r = 1 - r
	}
	return r
}

// backdate moves the interpolation start so that the ratio under the current
// direction equals visible at time t.
func (w *Waveform) backdate(t, visible float32) {
	target := visible
	if !w.Enabled {
		target = 1 - visible
	}
	progress := w.InterpolationCurve.Solve(target)
	w.interpolateStartTime = t - progress*w.InterpolationTime
}

// fluctuation is the periodic amplitude multiplier at time t.
func (w *Waveform) fluctuation(t float32) float32 {
	if !w.FluctuateEnabled {
		return 1
	}
	phase := w.FluctuateOffset
	if w.FluctuatePeriod != 0 {
		phase += t / w.FluctuatePeriod
	}
	return w.FluctuateCurve.Evaluate(mathf.Repeat(phase, w.FluctuateCurve.LastKeyTime()))
}
