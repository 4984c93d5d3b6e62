package similarity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/similarity"
	"github.com/seistrack/famview/internal/testutil"
	"github.com/seistrack/famview/pkg/errors"
)

func completionOfThree(t *testing.T) *similarity.Completion {
	t.Helper()

	ctx := context.Background()
	store := similarity.NewMemStore()
	require.NoError(t, store.Insert(ctx, 1, 2, similarity.PairValue{Coefficient: 0.9}))
	require.NoError(t, store.Insert(ctx, 1, 3, similarity.PairValue{Coefficient: 0.8}))
	require.NoError(t, store.Insert(ctx, 2, 3, similarity.PairValue{Coefficient: 0.7}))

	c := similarity.NewCompleter(store, testutil.NewCountingComparator(0))
	res, err := c.Complete(ctx, []catalog.EventID{1, 2, 3})
	require.NoError(t, err)
	return res
}

func TestValidateOrdering(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		perm    []int
		n       int
		wantErr bool
	}{
		{"identity", []int{0, 1, 2}, 3, false},
		{"reverse", []int{2, 1, 0}, 3, false},
		{"too short", []int{0, 1}, 3, true},
		{"too long", []int{0, 1, 2, 3}, 3, true},
		{"out of range high", []int{0, 1, 3}, 3, true},
		{"out of range negative", []int{0, -1, 2}, 3, true},
		{"duplicate", []int{0, 1, 1}, 3, true},
		{"empty for zero", nil, 0, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := similarity.ValidateOrdering(tc.perm, tc.n)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeOrderingInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyOrdering_PermutesMembersAndMatrices(t *testing.T) {
	t.Parallel()

	res := completionOfThree(t)

	require.NoError(t, similarity.ApplyOrdering(res, []int{2, 0, 1}))

	assert.Equal(t, []catalog.EventID{3, 1, 2}, res.Members)

	// Position 0 is old row 2, position 1 is old row 0: cell (0,1) must be
	// the old (2,0) value 0.8.
	assert.Equal(t, 0.8, res.Full.At(0, 1))
	// Positions (1,2) are old rows (0,1): 0.9.
	assert.Equal(t, 0.9, res.Full.At(1, 2))
	// Positions (0,2) are old rows (2,1): 0.7.
	assert.Equal(t, 0.7, res.Full.At(0, 2))

	assert.True(t, res.Stored.IsSymmetric())
	assert.True(t, res.Full.IsSymmetric())
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1.0, res.Full.At(i, i))
	}
}

func TestApplyOrdering_RejectionLeavesCompletionUntouched(t *testing.T) {
	t.Parallel()

	res := completionOfThree(t)
	wantMembers := append([]catalog.EventID(nil), res.Members...)
	wantFull := res.Full.Clone()

	err := similarity.ApplyOrdering(res, []int{0, 0, 1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeOrderingInvalid))

	assert.Equal(t, wantMembers, res.Members)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, wantFull.At(i, j), res.Full.At(i, j))
		}
	}
}

func TestReordererFunc_Adapts(t *testing.T) {
	t.Parallel()

	r := similarity.ReordererFunc(func(_ context.Context, d *similarity.Matrix) ([]int, error) {
		perm := make([]int, d.Dim())
		for i := range perm {
			perm[i] = d.Dim() - 1 - i
		}
		return perm, nil
	})

	perm, err := r.Reorder(context.Background(), similarity.NewMatrix(3))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, perm)
}
