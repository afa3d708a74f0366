package wave

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/logger"
)

var ErrAlreadyRegistered = errors.New("waveform already registered")

// Field is the set of waveforms whose heights sum to the water surface.
// The owner (surface or scene) creates it and registers waveforms explicitly.
type Field struct {
	waves []*Waveform
	index map[uuid.UUID]int
}

// NewField creates an empty field.
func NewField() *Field {
	return &Field{index: make(map[uuid.UUID]int)}
}

// Register adds w to the field. A waveform without an ID is assigned one, and
// one that was never advanced is primed in its settled state at time zero.
func (f *Field) Register(w *Waveform) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if _, ok := f.index[w.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, w.ID)
	}
	if err := w.Validate(); err != nil {
		logger.Warn("waveform has degenerate parameters",
			zap.Stringer("id", w.ID),
			zap.Stringer("type", w.Type),
			zap.Error(err),
		)
	}

	if !w.started {
		w.prime(0)
	}

	f.index[w.ID] = len(f.waves)
	f.waves = append(f.waves, w)

	logger.Debug("waveform registered", zap.Stringer("id", w.ID), zap.Stringer("type", w.Type))
	return nil
}

// Unregister removes w. It reports whether w was registered.
func (f *Field) Unregister(w *Waveform) bool {
	i, ok := f.index[w.ID]
	if !ok {
		return false
	}

	// Shift rather than swap so summation order stays the registration order.
	copy(f.waves[i:], f.waves[i+1:])
	f.waves[len(f.waves)-1] = nil
	f.waves = f.waves[:len(f.waves)-1]

	delete(f.index, w.ID)
	for j := i; j < len(f.waves); j++ {
		f.index[f.waves[j].ID] = j
	}

	logger.Debug("waveform unregistered", zap.Stringer("id", w.ID))
	return true
}

// Len returns the number of registered waveforms.
func (f *Field) Len() int {
	return len(f.waves)
}

// Waveforms returns the registered waveforms in registration order.
func (f *Field) Waveforms() []*Waveform {
	out := make([]*Waveform, len(f.waves))
	copy(out, f.waves)
	return out
}

// Advance steps every waveform's interpolation state to time t.
func (f *Field) Advance(t float32) {
	for _, w := range f.waves {
		w.Advance(t)
	}
}

// SumHeight returns the summed height of all contributing waveforms.
func (f *Field) SumHeight(x, y, t float32) float32 {
	var sum float32
	for _, w := range f.waves {
		if !w.Contributing() {
			continue
		}
		sum += w.GetHeight(x, y, t, false)
	}
	return sum
}
