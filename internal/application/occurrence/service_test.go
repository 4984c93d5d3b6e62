package occurrence_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seistrack/famview/internal/application/occurrence"
	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/timeline"
	"github.com/seistrack/famview/internal/testutil"
	"github.com/seistrack/famview/pkg/errors"
)

func seedCatalog(t *testing.T) *testutil.MemCatalog {
	t.Helper()

	ctx := context.Background()
	cat := testutil.NewMemCatalog()

	// Family 1: two events a day apart.
	require.NoError(t, cat.PutEvent(ctx, &catalog.Event{ID: 1, Time: 10.2, FI: -0.4}))
	require.NoError(t, cat.PutEvent(ctx, &catalog.Event{ID: 2, Time: 11.3, FI: 0.4}))
	require.NoError(t, cat.PutFamily(ctx, &catalog.Family{
		ID: 1, Members: []catalog.EventID{1, 2}, Core: 1, Start: 10.2, Longevity: 1.1,
	}))

	// Family 2: three events in one bin.
	require.NoError(t, cat.PutEvent(ctx, &catalog.Event{ID: 3, Time: 20.1, FI: 0.1}))
	require.NoError(t, cat.PutEvent(ctx, &catalog.Event{ID: 4, Time: 20.2, FI: 0.2}))
	require.NoError(t, cat.PutEvent(ctx, &catalog.Event{ID: 5, Time: 20.3, FI: 0.3}))
	require.NoError(t, cat.PutFamily(ctx, &catalog.Family{
		ID: 2, Members: []catalog.EventID{3, 4, 5}, Core: 4, Start: 20.1, Longevity: 0.2,
	}))

	// Triggers: every repeater plus two orphans.
	for _, tt := range []float64{10.2, 11.3, 20.1, 20.2, 20.3, 30.5, 31.5} {
		require.NoError(t, cat.PutTrigger(ctx, tt))
	}

	return cat
}

func TestLayout_BinsFamilies(t *testing.T) {
	t.Parallel()

	cat := seedCatalog(t)
	svc := occurrence.NewService(cat, cat, cat, nil)

	res, err := svc.Layout(context.Background(), &occurrence.LayoutInput{
		Window:       timeline.TimeWindow{Min: 0, Max: 100, Padding: 1},
		BinWidthDays: 1,
		Mode:         occurrence.ScoreByRate,
	})
	require.NoError(t, err)
	require.Len(t, res.Layout.Rows, 2)
	assert.Empty(t, res.Skipped)

	assert.Equal(t, catalog.FamilyID(1), res.Layout.Rows[0].Family)
	assert.Equal(t, 2, res.Layout.Rows[0].Count)
	assert.Len(t, res.Layout.Rows[0].Blocks, 2)

	assert.Equal(t, catalog.FamilyID(2), res.Layout.Rows[1].Family)
	require.Len(t, res.Layout.Rows[1].Blocks, 1)
	assert.Equal(t, 3, res.Layout.Rows[1].Blocks[0].Count)
}

func TestLayout_SkipsFamilyWithUnloadableEvents(t *testing.T) {
	t.Parallel()

	cat := seedCatalog(t)
	cat.FailEvent(4, stderrors.New("row corrupt"))

	svc := occurrence.NewService(cat, cat, cat, nil)
	res, err := svc.Layout(context.Background(), &occurrence.LayoutInput{
		Window:       timeline.TimeWindow{Min: 0, Max: 100, Padding: 1},
		BinWidthDays: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, []catalog.FamilyID{2}, res.Skipped)
	require.Len(t, res.Layout.Rows, 1)
	assert.Equal(t, catalog.FamilyID(1), res.Layout.Rows[0].Family)
}

func TestLayout_UnknownModeRejected(t *testing.T) {
	t.Parallel()

	cat := seedCatalog(t)
	svc := occurrence.NewService(cat, cat, cat, nil)

	_, err := svc.Layout(context.Background(), &occurrence.LayoutInput{
		Window:       timeline.TimeWindow{Min: 0, Max: 100, Padding: 1},
		BinWidthDays: 1,
		Mode:         "sparkline",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestLayout_FIMode(t *testing.T) {
	t.Parallel()

	cat := seedCatalog(t)
	svc := occurrence.NewService(cat, cat, cat, nil)

	res, err := svc.Layout(context.Background(), &occurrence.LayoutInput{
		Window:       timeline.TimeWindow{Min: 0, Max: 100, Padding: 1},
		BinWidthDays: 1,
		Mode:         occurrence.ScoreByFI,
		FILow:        -1,
		FIHigh:       1,
	})
	require.NoError(t, err)
	require.Len(t, res.Layout.Rows, 2)

	// Family 2's single bin has mean FI 0.2: 255*(0.2+1)/2 = 153.
	require.Len(t, res.Layout.Rows[1].Blocks, 1)
	assert.Equal(t, 153, res.Layout.Rows[1].Blocks[0].ColorIndex)
}

func TestOverview_Series(t *testing.T) {
	t.Parallel()

	cat := seedCatalog(t)
	svc := occurrence.NewService(cat, cat, cat, nil)

	win := timeline.TimeWindow{Min: 0, Max: 40, Padding: 1}
	ov, err := svc.Overview(context.Background(), &occurrence.OverviewInput{
		Window:       win,
		BinWidthDays: 10,
	})
	require.NoError(t, err)

	// Five bins of width 10 starting at the window edge, points centered.
	require.Len(t, ov.Rate, 5)
	assert.Equal(t, 5.0, ov.Rate[0].Time)
	assert.Equal(t, 15.0, ov.Rate[1].Time)

	// [10,20): repeaters 10.2, 11.3; matching triggers, no orphans.
	assert.Equal(t, 2, ov.Rate[1].Repeaters)
	assert.Equal(t, 0, ov.Rate[1].Orphans)

	// [30,40): two orphan triggers, no repeaters.
	assert.Equal(t, 0, ov.Rate[3].Repeaters)
	assert.Equal(t, 2, ov.Rate[3].Orphans)

	// All five repeaters fall inside the window.
	assert.Len(t, ov.FI, 5)

	require.Len(t, ov.Longevity, 2)
	assert.Equal(t, 1.1, ov.Longevity[0].Longevity)
	assert.True(t, ov.Longevity[0].Segment.Draw)
}

func TestOverview_RejectsBadBinWidth(t *testing.T) {
	t.Parallel()

	cat := seedCatalog(t)
	svc := occurrence.NewService(cat, cat, cat, nil)

	_, err := svc.Overview(context.Background(), &occurrence.OverviewInput{
		Window:       timeline.TimeWindow{Min: 0, Max: 40, Padding: 1},
		BinWidthDays: 0,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidBinWidth))
}
