package memorymodel

import "time"

// Params defines all configurable parameters of the memory model.
type Params struct {
	// Alpha and Beta shape the forgetting curve S(t) = 1 - exp(-Alpha * t^Beta).
	Alpha float64
	Beta  float64

	// InitialStrengthFactor scales the accuracy of the very first test.
	InitialStrengthFactor float64

	// PassThreshold is the lowest accuracy that counts as a successful recall.
	PassThreshold float64

	// LearntThreshold is the strength at which a verse counts as learnt.
	LearntThreshold float64

	// MaxStrength caps strength below 1, where T(s) is undefined.
	MaxStrength float64

	// MinInterval is the shortest gap between two tests of a verse.
	MinInterval time.Duration
}

// NewDefaultParams returns parameters tuned so a verse tested on schedule is
// due again after roughly 1, 2, 4, 8... days and counts as learnt after about
// three months.
func NewDefaultParams() *Params {
	return &Params{
		Alpha:                 0.357,
		Beta:                  0.359,
		InitialStrengthFactor: 0.1,
		PassThreshold:         0.5,
		LearntThreshold:       0.85,
		MaxStrength:           0.999,
		MinInterval:           time.Hour,
	}
}
