package similarity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/logging"
	"github.com/seistrack/famview/pkg/errors"
)

// ComputedPair is a pair whose similarity was computed during completion.
type ComputedPair struct {
	A, B  catalog.EventID
	Value PairValue
}

// FailedPair is a pair whose comparison failed during completion.  The
// corresponding matrix cells keep their pre-completion value.
type FailedPair struct {
	A, B catalog.EventID
	Err  error
}

// Completion is the result of completing a family's similarity matrix.
//
// Stored holds only the values found in the pair store (zero where absent,
// unit diagonal).  Full additionally holds the comparator's results for every
// pair that was absent.  Index k of Members labels row/column k of both
// matrices.
type Completion struct {
	Members  []catalog.EventID
	Stored   *Matrix
	Full     *Matrix
	NewPairs []ComputedPair
	Failed   []FailedPair
}

// Completer fills the missing cells of a family's similarity matrix by
// invoking a Comparator once per absent unordered pair.
//
// The completer never writes back into the pair store: the caller owns
// persistence of Completion.NewPairs, keeping the store the single source of
// truth and the dense matrices derived views.
type Completer struct {
	store          PairStore
	cmp            Comparator
	concurrency    int
	compareTimeout time.Duration
	log            logging.Logger
}

// CompleterOption customises a Completer.
type CompleterOption func(*Completer)

// WithConcurrency bounds the number of comparator invocations in flight.
// Values below 1 are coerced to 1.
func WithConcurrency(n int) CompleterOption {
	return func(c *Completer) {
		if n < 1 {
			n = 1
		}
		c.concurrency = n
	}
}

// WithCompareTimeout bounds each individual comparison.  Zero disables the
// per-pair deadline.
func WithCompareTimeout(d time.Duration) CompleterOption {
	return func(c *Completer) { c.compareTimeout = d }
}

// WithLogger sets the completer's logger.
func WithLogger(l logging.Logger) CompleterOption {
	return func(c *Completer) { c.log = l }
}

// NewCompleter constructs a Completer over the given store and comparator.
func NewCompleter(store PairStore, cmp Comparator, opts ...CompleterOption) *Completer {
	c := &Completer{
		store:       store,
		cmp:         cmp,
		concurrency: 8,
		log:         logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pairTask is one absent unordered pair scheduled for comparison, addressed
// by its row/column position in the matrix.
type pairTask struct {
	i, j int
}

// Complete builds the stored and full similarity matrices for members.
//
// Guarantees:
//   - the comparator is invoked at most once per absent unordered pair, and
//     never for pairs already present in the store;
//   - both returned matrices are symmetric with a unit diagonal;
//   - an individual comparison failure does not abort the completion: the
//     cell keeps its pre-completion value and the pair is recorded in
//     Failed;
//   - the call returns only after every dispatched comparison has finished,
//     so no partially-filled Full matrix is ever observed.
//
// An empty member list is rejected with ErrCodeEmptyMemberList before any
// computation.  Context cancellation aborts outstanding comparisons and
// returns ErrCodeCompletionCancelled.
func (c *Completer) Complete(ctx context.Context, members []catalog.EventID) (*Completion, error) {
	if len(members) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyMemberList,
			"cannot complete a matrix for an empty member list")
	}

	n := len(members)
	stored := NewMatrix(n)

	// Phase 1: populate the stored view and collect the absent pairs.
	var missing []pairTask
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			v, ok, err := c.store.Lookup(ctx, members[i], members[j])
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodePairStoreFailure,
					fmt.Sprintf("lookup of pair (%d,%d) failed", members[i], members[j]))
			}
			if ok {
				stored.SetSym(i, j, v.Coefficient)
			} else {
				missing = append(missing, pairTask{i: i, j: j})
			}
		}
	}

	full := stored.Clone()
	result := &Completion{
		Members: append([]catalog.EventID(nil), members...),
		Stored:  stored,
		Full:    full,
	}

	if len(missing) == 0 {
		return result, nil
	}

	c.log.Debug("completing similarity matrix",
		logging.Int("members", n),
		logging.Int("missing_pairs", len(missing)),
		logging.Int("concurrency", c.concurrency))

	// Phase 2: compare every absent pair across a bounded worker pool.
	// Distinct tasks write distinct (i,j)/(j,i) cells, so the matrix needs
	// no lock; only the result slices are shared.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, task := range missing {
		task := task
		g.Go(func() error {
			a, b := members[task.i], members[task.j]

			cmpCtx := gctx
			cancel := context.CancelFunc(func() {})
			if c.compareTimeout > 0 {
				cmpCtx, cancel = context.WithTimeout(gctx, c.compareTimeout)
			}
			v, err := c.cmp.Compare(cmpCtx, a, b)
			cancel()

			if err != nil {
				// A cancelled run aborts; an individual comparison failure
				// is recorded and the completion continues.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.log.Warn("pairwise comparison failed",
					logging.Int64("event_a", a),
					logging.Int64("event_b", b),
					logging.Err(err))
				mu.Lock()
				result.Failed = append(result.Failed, FailedPair{A: a, B: b, Err: err})
				mu.Unlock()
				return nil
			}

			full.SetSym(task.i, task.j, v.Coefficient)
			mu.Lock()
			result.NewPairs = append(result.NewPairs, ComputedPair{A: a, B: b, Value: v})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCompletionCancelled,
			"matrix completion aborted")
	}

	// Workers finish in arbitrary order; sort for deterministic output.
	sort.Slice(result.NewPairs, func(x, y int) bool {
		if result.NewPairs[x].A != result.NewPairs[y].A {
			return result.NewPairs[x].A < result.NewPairs[y].A
		}
		return result.NewPairs[x].B < result.NewPairs[y].B
	})
	sort.Slice(result.Failed, func(x, y int) bool {
		if result.Failed[x].A != result.Failed[y].A {
			return result.Failed[x].A < result.Failed[y].A
		}
		return result.Failed[x].B < result.Failed[y].B
	})

	return result, nil
}
