package timeline

import (
	"math"

	"github.com/seistrack/famview/pkg/errors"
)

// Scoring selects how occupancy bins are mapped to a palette index in
// [0, 255].  It is a closed set: RateScoring and FIScoring are the only
// implementations.
type Scoring interface {
	// binIndex maps one nonempty bin (its event count and the values of the
	// events it holds) to a palette index.
	binIndex(count int, values []float64) int

	// Validate rejects unusable parameter bundles.
	Validate() error

	isScoring()
}

// RateScoring colours bins by event count on a logarithmic scale.
//
// The palette index is ⌊255·log10(count)/divisor⌋ clamped to [0, 255], with
// divisor 3 for day-or-longer bins and 2 for sub-day bins, matching the
// log colour ranges 1–1000 events/day and 1–100 events/hour.
type RateScoring struct {
	// BinWidth is the bin width in days; it selects the divisor.
	BinWidth float64
}

func (RateScoring) isScoring() {}

// Validate implements Scoring.
func (s RateScoring) Validate() error {
	if s.BinWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidBinWidth,
			"rate scoring requires a positive bin width")
	}
	return nil
}

func (s RateScoring) binIndex(count int, _ []float64) int {
	divisor := 3.0
	if s.BinWidth < 1 {
		divisor = 2.0
	}
	idx := 255 * math.Log10(float64(count)) / divisor
	return clampIndex(idx)
}

// FIScoring colours bins by the mean frequency index of their events,
// linearly mapped from the [Low, High] span onto [0, 255].
type FIScoring struct {
	Low  float64
	High float64
}

func (FIScoring) isScoring() {}

// Validate implements Scoring.
func (s FIScoring) Validate() error {
	if s.High <= s.Low {
		return errors.New(errors.ErrCodeInvalidFISpan,
			"frequency-index span high bound must exceed low bound")
	}
	return nil
}

func (s FIScoring) binIndex(count int, values []float64) int {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(count)
	idx := 255 * (mean - s.Low) / (s.High - s.Low)
	return clampIndex(idx)
}

// clampIndex clamps to [0, 255] and floors to an integer.
func clampIndex(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v)
}
