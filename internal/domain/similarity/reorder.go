package similarity

import (
	"context"
	"fmt"

	"github.com/seistrack/famview/pkg/errors"
)

// Reorderer produces an ordering of matrix rows from a distance matrix
// (1 − similarity).  The ordering algorithm itself (density-reachability
// clustering) is an external capability; the core only validates and applies
// the permutation it returns.
type Reorderer interface {
	// Reorder returns a permutation of 0..n-1, where n is the distance
	// matrix dimension.  Result index k names the source row that should
	// appear at position k.
	Reorder(ctx context.Context, distance *Matrix) ([]int, error)
}

// ReordererFunc adapts a plain function to the Reorderer interface.
type ReordererFunc func(ctx context.Context, distance *Matrix) ([]int, error)

// Reorder implements Reorderer.
func (f ReordererFunc) Reorder(ctx context.Context, distance *Matrix) ([]int, error) {
	return f(ctx, distance)
}

// ValidateOrdering checks that perm is a permutation of 0..n-1.  A wrong
// length, an out-of-range value, or a duplicate yields an
// ErrCodeOrderingInvalid error.
func ValidateOrdering(perm []int, n int) error {
	if len(perm) != n {
		return errors.New(errors.ErrCodeOrderingInvalid,
			fmt.Sprintf("ordering has %d entries, want %d", len(perm), n))
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n {
			return errors.New(errors.ErrCodeOrderingInvalid,
				fmt.Sprintf("ordering entry %d out of range [0,%d)", p, n))
		}
		if seen[p] {
			return errors.New(errors.ErrCodeOrderingInvalid,
				fmt.Sprintf("ordering entry %d appears more than once", p))
		}
		seen[p] = true
	}
	return nil
}

// ApplyOrdering rearranges the completion's members and both matrices
// according to perm, so that position k of the result corresponds to source
// position perm[k].  The permutation is validated first; on rejection the
// completion is left untouched.
func ApplyOrdering(c *Completion, perm []int) error {
	n := len(c.Members)
	if err := ValidateOrdering(perm, n); err != nil {
		return err
	}

	members := make([]int64, n)
	for k, p := range perm {
		members[k] = c.Members[p]
	}
	c.Members = members
	c.Stored = c.Stored.Permute(perm)
	c.Full = c.Full.Permute(perm)
	return nil
}
