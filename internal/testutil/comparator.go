package testutil

import (
	"context"
	"sync"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/similarity"
)

// CountingComparator is a similarity.Comparator instrumented for tests: it
// records how many times each unordered pair was compared and can be told to
// fail specific pairs.
type CountingComparator struct {
	mu sync.Mutex

	// Values maps pair keys to the value returned on comparison.  Pairs
	// without an entry return DefaultValue.
	Values map[similarity.PairKey]similarity.PairValue

	// Failures maps pair keys to the error returned on comparison.
	Failures map[similarity.PairKey]error

	// DefaultValue is returned for pairs with no Values entry.
	DefaultValue similarity.PairValue

	calls map[similarity.PairKey]int
}

// NewCountingComparator returns an instrumented comparator whose default
// result carries the given coefficient.
func NewCountingComparator(defaultCoeff float64) *CountingComparator {
	return &CountingComparator{
		Values:       make(map[similarity.PairKey]similarity.PairValue),
		Failures:     make(map[similarity.PairKey]error),
		DefaultValue: similarity.PairValue{Coefficient: defaultCoeff, SampleCount: 1},
		calls:        make(map[similarity.PairKey]int),
	}
}

// SetValue fixes the result for the unordered pair {a, b}.
func (c *CountingComparator) SetValue(a, b catalog.EventID, v similarity.PairValue) {
	c.mu.Lock()
	c.Values[similarity.NewPairKey(a, b)] = v
	c.mu.Unlock()
}

// FailPair makes comparisons of the unordered pair {a, b} return err.
func (c *CountingComparator) FailPair(a, b catalog.EventID, err error) {
	c.mu.Lock()
	c.Failures[similarity.NewPairKey(a, b)] = err
	c.mu.Unlock()
}

// Compare implements similarity.Comparator.
func (c *CountingComparator) Compare(ctx context.Context, a, b catalog.EventID) (similarity.PairValue, error) {
	if err := ctx.Err(); err != nil {
		return similarity.PairValue{}, err
	}

	key := similarity.NewPairKey(a, b)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[key]++

	if err, ok := c.Failures[key]; ok {
		return similarity.PairValue{}, err
	}
	if v, ok := c.Values[key]; ok {
		return v, nil
	}
	return c.DefaultValue, nil
}

// Calls returns how many times the unordered pair {a, b} was compared.
func (c *CountingComparator) Calls(a, b catalog.EventID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[similarity.NewPairKey(a, b)]
}

// TotalCalls returns the total number of comparisons across all pairs.
func (c *CountingComparator) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}
