package similarity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seistrack/famview/internal/domain/similarity"
)

func TestNewPairKey_Canonical(t *testing.T) {
	t.Parallel()

	assert.Equal(t, similarity.NewPairKey(1, 2), similarity.NewPairKey(2, 1))
	assert.Equal(t, similarity.PairKey{Lo: 1, Hi: 2}, similarity.NewPairKey(2, 1))
	assert.Equal(t, similarity.PairKey{Lo: 5, Hi: 5}, similarity.NewPairKey(5, 5))
}

func TestMemStore_LookupAbsentIsExplicit(t *testing.T) {
	t.Parallel()

	store := similarity.NewMemStore()

	v, ok, err := store.Lookup(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, ok, "absence must be reported through the second return")
	assert.Zero(t, v)
}

func TestMemStore_InsertAndSymmetricLookup(t *testing.T) {
	t.Parallel()

	store := similarity.NewMemStore()
	want := similarity.PairValue{Coefficient: 0.93, Lag: 2, SampleCount: 128}

	require.NoError(t, store.Insert(context.Background(), 4, 9, want))

	// Both orientations address the same entry.
	v, ok, err := store.Lookup(context.Background(), 4, 9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, v)

	v, ok, err = store.Lookup(context.Background(), 9, 4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, v)

	assert.Equal(t, 1, store.Len())
}

func TestMemStore_InsertOverwrites(t *testing.T) {
	t.Parallel()

	store := similarity.NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, 1, 2, similarity.PairValue{Coefficient: 0.7}))
	require.NoError(t, store.Insert(ctx, 2, 1, similarity.PairValue{Coefficient: 0.8}))

	v, ok, err := store.Lookup(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.8, v.Coefficient)
	assert.Equal(t, 1, store.Len())
}

func TestMemStore_ZeroCoefficientIsPresent(t *testing.T) {
	t.Parallel()

	// A stored coefficient of exactly 0 is a legitimate value, distinct
	// from absence.
	store := similarity.NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, 1, 2, similarity.PairValue{Coefficient: 0}))

	v, ok, err := store.Lookup(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v.Coefficient)
}
