// Package similarity implements the sparse pair store and dense matrix view
// of pairwise event similarity, and the completion of missing pairs through
// an injected comparator.
package similarity

import (
	"context"

	"github.com/seistrack/famview/internal/domain/catalog"
)

// PairValue is the result of comparing two events.
type PairValue struct {
	// Coefficient is the peak cross-correlation coefficient in [-1, 1].
	Coefficient float64

	// Lag is the sample offset at which the peak coefficient occurred.
	Lag float64

	// SampleCount is the number of samples that contributed to the
	// correlation, used downstream to judge reliability.
	SampleCount int
}

// PairKey is the canonical key of an unordered event pair.  Lo < Hi always
// holds for keys built through NewPairKey, so (a,b) and (b,a) address the
// same entry.
type PairKey struct {
	Lo catalog.EventID
	Hi catalog.EventID
}

// NewPairKey returns the canonical key for the unordered pair {a, b}.
func NewPairKey(a, b catalog.EventID) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// PairStore is the sparse, thresholded store of pairwise similarity values.
// Only pairs whose comparison cleared the detection threshold are present;
// absence is reported explicitly through the second return of Lookup, never
// through a sentinel value.
//
// A PairStore is an explicitly owned object scoped to a run and passed by
// reference; implementations live in internal/infrastructure/database.
type PairStore interface {
	// Lookup returns the stored value for the unordered pair {a, b} and
	// whether it is present.
	Lookup(ctx context.Context, a, b catalog.EventID) (PairValue, bool, error)

	// Insert stores the value for the unordered pair {a, b}, overwriting any
	// existing entry.
	Insert(ctx context.Context, a, b catalog.EventID, v PairValue) error
}

// Comparator computes the similarity of two events from their waveform data.
// It is the injected capability behind matrix completion; the completer never
// sees waveforms.
type Comparator interface {
	// Compare returns the similarity of events a and b.  Implementations
	// should honour ctx cancellation for long-running transforms.
	Compare(ctx context.Context, a, b catalog.EventID) (PairValue, error)
}

// BelowThresholdComparator treats every absent pair as sub-threshold,
// returning a zero coefficient without touching waveform data.  It is the
// comparator of choice when the pair store was populated by the detection
// pipeline and no waveform archive is reachable: the stored pairs are exactly
// the ones that cleared the threshold, so the rest correlate at noise level.
type BelowThresholdComparator struct{}

// Compare implements Comparator.
func (BelowThresholdComparator) Compare(_ context.Context, _, _ catalog.EventID) (PairValue, error) {
	return PairValue{}, nil
}

// ComparatorFunc adapts a plain function to the Comparator interface.
type ComparatorFunc func(ctx context.Context, a, b catalog.EventID) (PairValue, error)

// Compare implements Comparator.
func (f ComparatorFunc) Compare(ctx context.Context, a, b catalog.EventID) (PairValue, error) {
	return f(ctx, a, b)
}
