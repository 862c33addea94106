// Package memorymodel estimates how well a verse is remembered and when it
// should next be tested.
package memorymodel

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidAccuracy is returned for accuracies outside 0..1.
var ErrInvalidAccuracy = errors.New("accuracy must be between 0 and 1")

const day = 24 * time.Hour

// Model applies Params to strength calculations. The zero value is not usable;
// create one with New or NewDefault.
type Model struct {
	params *Params
}

// New creates a Model with the given parameters.
func New(params *Params) *Model {
	return &Model{params: params}
}

// NewDefault creates a Model with NewDefaultParams.
func NewDefault() *Model {
	return New(NewDefaultParams())
}

// Params returns the model parameters.
func (m *Model) Params() Params {
	return *m.params
}

// S is the strength reached after t days on the forgetting curve.
func (m *Model) S(t float64) float64 {
	if t <= 0 {
		return 0
	}
	return 1 - math.Exp(-m.params.Alpha*math.Pow(t, m.params.Beta))
}

// T is the inverse of S: the number of days needed to reach strength s.
func (m *Model) T(s float64) float64 {
	if s <= 0 {
		return 0
	}
	s = math.Min(s, m.params.MaxStrength)
	return math.Pow(-math.Log(1-s)/m.params.Alpha, 1/m.params.Beta)
}

// StrengthEstimate returns the new strength after a test.
//
// The first test of a verse sets strength to InitialStrengthFactor*accuracy.
// Later passing tests move along the curve by the time elapsed since the last
// test, scaled by accuracy, so cramming (tiny elapsed) gains little. Failed
// tests scale the old strength down by accuracy.
func (m *Model) StrengthEstimate(old, accuracy float64, elapsed time.Duration, firstTest bool) (float64, error) {
	if accuracy < 0 || accuracy > 1 || math.IsNaN(accuracy) {
		return 0, ErrInvalidAccuracy
	}

	var s float64
	switch {
	case firstTest:
		s = m.params.InitialStrengthFactor * accuracy
	case accuracy >= m.params.PassThreshold:
		if elapsed < 0 {
			elapsed = 0
		}
		target := m.S(m.T(old) + elapsed.Hours()/24)
		s = old + (target-old)*accuracy
		// A pass never lowers strength.
		s = math.Max(s, old)
	default:
		s = old * accuracy
	}

	return clamp(s, 0, m.params.MaxStrength), nil
}

// NextTestDue returns when a verse with the given strength should next be tested.
func (m *Model) NextTestDue(now time.Time, strength float64) time.Time {
	interval := time.Duration(m.T(strength) * float64(day))
	if interval < m.params.MinInterval {
		interval = m.params.MinInterval
	}
	return now.Add(interval)
}

// IsLearnt reports whether strength has reached the learnt threshold.
func (m *Model) IsLearnt(strength float64) bool {
	return strength >= m.params.LearntThreshold
}

// Passed reports whether accuracy counts as a successful recall.
func (m *Model) Passed(accuracy float64) bool {
	return accuracy >= m.params.PassThreshold
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
