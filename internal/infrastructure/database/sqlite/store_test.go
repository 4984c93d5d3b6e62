package sqlite_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/similarity"
	"github.com/seistrack/famview/internal/infrastructure/database/sqlite"
	"github.com/seistrack/famview/pkg/errors"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.Open(sqlite.Config{
		Path:        filepath.Join(t.TempDir(), "famview.db"),
		BusyTimeout: time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := sqlite.Open(sqlite.Config{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestEvents_PutGetRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	want := &catalog.Event{
		ID: 7, UID: "ev-7", Time: 123.45, FI: -0.31, Amps: []float64{1.5, 2.5, 3.5},
	}
	require.NoError(t, s.PutEvent(ctx, want))

	got, err := s.GetEvent(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEvents_NaNFIRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.PutEvent(ctx, &catalog.Event{ID: 1, Time: 10, FI: math.NaN()}))

	got, err := s.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.FI))
	assert.Empty(t, got.Amps)
}

func TestEvents_UpsertOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.PutEvent(ctx, &catalog.Event{ID: 1, UID: "a", Time: 10, FI: 0.1}))
	require.NoError(t, s.PutEvent(ctx, &catalog.Event{ID: 1, UID: "b", Time: 11, FI: 0.2}))

	got, err := s.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "b", got.UID)
	assert.Equal(t, 11.0, got.Time)
}

func TestEvents_NotFound(t *testing.T) {
	t.Parallel()

	_, err := openTestStore(t).GetEvent(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEventNotFound))
}

func TestListEventTimes_Sorted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	for i, tt := range []float64{30.5, 10.5, 20.5} {
		require.NoError(t, s.PutEvent(ctx, &catalog.Event{ID: catalog.EventID(i + 1), Time: tt}))
	}

	times, err := s.ListEventTimes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 20.5, 30.5}, times)
}

func TestFamilies_RoundtripPreservesMemberOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	want := &catalog.Family{
		ID: 3, Members: []catalog.EventID{9, 4, 7}, Core: 4, Start: 100.5, Longevity: 12.25,
	}
	require.NoError(t, s.PutFamily(ctx, want))

	got, err := s.GetFamily(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Replacing the member list drops the old one entirely.
	want.Members = []catalog.EventID{4, 7}
	require.NoError(t, s.PutFamily(ctx, want))
	got, err = s.GetFamily(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []catalog.EventID{4, 7}, got.Members)
}

func TestFamilies_InvalidRejected(t *testing.T) {
	t.Parallel()

	err := openTestStore(t).PutFamily(context.Background(), &catalog.Family{ID: 1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFamilyInvalid))
}

func TestFamilies_NotFound(t *testing.T) {
	t.Parallel()

	_, err := openTestStore(t).GetFamily(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFamilyNotFound))
}

func TestListFamilies_OrderedByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.PutFamily(ctx, &catalog.Family{
		ID: 2, Members: []catalog.EventID{3}, Core: 3, Start: 2}))
	require.NoError(t, s.PutFamily(ctx, &catalog.Family{
		ID: 1, Members: []catalog.EventID{5}, Core: 5, Start: 1}))

	fams, err := s.ListFamilies(ctx)
	require.NoError(t, err)
	require.Len(t, fams, 2)
	assert.Equal(t, catalog.FamilyID(1), fams[0].ID)
	assert.Equal(t, catalog.FamilyID(2), fams[1].ID)
}

func TestTriggers_Roundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	for _, tt := range []float64{5.5, 1.5, 3.5} {
		require.NoError(t, s.PutTrigger(ctx, tt))
	}

	times, err := s.ListTriggerTimes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 3.5, 5.5}, times)
}

func TestPairStore_SymmetricLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	v := similarity.PairValue{Coefficient: 0.87, Lag: -3, SampleCount: 2048}
	require.NoError(t, s.Insert(ctx, 9, 2, v))

	got, ok, err := s.Lookup(ctx, 2, 9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v, got)

	got, ok, err = s.Lookup(ctx, 9, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v, got)
}

func TestPairStore_AbsenceIsExplicit(t *testing.T) {
	t.Parallel()

	_, ok, err := openTestStore(t).Lookup(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPairStore_InsertOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Insert(ctx, 1, 2, similarity.PairValue{Coefficient: 0.5}))
	require.NoError(t, s.Insert(ctx, 2, 1, similarity.PairValue{Coefficient: 0.9}))

	got, ok, err := s.Lookup(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.9, got.Coefficient)

	n, err := s.PairCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.PutEvent(ctx, &catalog.Event{ID: 1, Time: 1}))
	require.NoError(t, s.PutEvent(ctx, &catalog.Event{ID: 2, Time: 2}))
	require.NoError(t, s.PutFamily(ctx, &catalog.Family{
		ID: 1, Members: []catalog.EventID{1, 2}, Core: 1, Start: 1, Longevity: 1}))

	families, events, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), families)
	assert.Equal(t, int64(2), events)
}
