package timeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/timeline"
	"github.com/seistrack/famview/pkg/errors"
)

func newRateBinner(t *testing.T, win timeline.TimeWindow, w float64, minMembers int) *timeline.Binner {
	t.Helper()

	b, err := timeline.NewBinner(win, w, minMembers, timeline.RateScoring{BinWidth: w})
	require.NoError(t, err)
	return b
}

func TestNewBinner_Validation(t *testing.T) {
	t.Parallel()

	win := timeline.TimeWindow{Min: 0, Max: 100, Padding: 1}

	cases := []struct {
		name     string
		win      timeline.TimeWindow
		binWidth float64
		scoring  timeline.Scoring
		wantCode errors.ErrorCode
	}{
		{"inverted window", timeline.TimeWindow{Min: 10, Max: 0}, 1,
			timeline.RateScoring{BinWidth: 1}, errors.ErrCodeInvalidWindow},
		{"zero bin width", win, 0,
			timeline.RateScoring{BinWidth: 1}, errors.ErrCodeInvalidBinWidth},
		{"negative bin width", win, -2,
			timeline.RateScoring{BinWidth: 1}, errors.ErrCodeInvalidBinWidth},
		{"nil scoring", win, 1, nil, errors.ErrCodeBadRequest},
		{"rate scoring without width", win, 1,
			timeline.RateScoring{}, errors.ErrCodeInvalidBinWidth},
		{"degenerate fi span", win, 1,
			timeline.FIScoring{Low: 1, High: 1}, errors.ErrCodeInvalidFISpan},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := timeline.NewBinner(tc.win, tc.binWidth, 0, tc.scoring)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.wantCode), "got %v", err)
		})
	}
}

// Day-wide bins use the 1–1000 events/day log colour range: counts 2 and 50
// land on palette indices 25 and 144.
func TestLayout_RateColorIndices(t *testing.T) {
	t.Parallel()

	win := timeline.TimeWindow{Min: 0, Max: 100, Padding: 1}
	b := newRateBinner(t, win, 1, 0)

	fifty := make([]float64, 50)
	for i := range fifty {
		fifty[i] = 20 + float64(i)*0.01
	}

	got, err := b.Layout([]timeline.FamilySeries{
		{Family: 1, Times: []float64{10.2, 10.4}},
		{Family: 2, Times: fifty},
	})
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)

	require.Len(t, got.Rows[0].Blocks, 1)
	assert.Equal(t, 2, got.Rows[0].Blocks[0].Count)
	assert.Equal(t, 25, got.Rows[0].Blocks[0].ColorIndex)

	require.Len(t, got.Rows[1].Blocks, 1)
	assert.Equal(t, 50, got.Rows[1].Blocks[0].Count)
	assert.Equal(t, 144, got.Rows[1].Blocks[0].ColorIndex)
}

// Sub-day bins switch to the 1–100 events/bin log colour range.
func TestLayout_SubDayDivisor(t *testing.T) {
	t.Parallel()

	win := timeline.TimeWindow{Min: 0, Max: 100, Padding: 1}
	b, err := timeline.NewBinner(win, 0.5, 0, timeline.RateScoring{BinWidth: 0.5})
	require.NoError(t, err)

	ten := make([]float64, 10)
	for i := range ten {
		ten[i] = 30 + float64(i)*0.01
	}

	got, err := b.Layout([]timeline.FamilySeries{{Family: 7, Times: ten}})
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	require.Len(t, got.Rows[0].Blocks, 1)

	// 255*log10(10)/2 = 127.5, floored.
	assert.Equal(t, 127, got.Rows[0].Blocks[0].ColorIndex)
}

func TestLayout_RowGeometry(t *testing.T) {
	t.Parallel()

	win := timeline.TimeWindow{Min: 0, Max: 100, Padding: 1}
	b := newRateBinner(t, win, 1, 0)

	// Family straddling the window start: early bins are invisible, the
	// lifespan is clipped with a left arrow, hover clamps to the window.
	got, err := b.Layout([]timeline.FamilySeries{
		{Family: 3, Times: []float64{-5, 0.5, 3.5}},
	})
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	row := got.Rows[0]

	assert.Equal(t, 3, row.Count)

	// Bins at left edges -5 and 0 are dropped: only edges strictly inside
	// the window are drawn.
	require.Len(t, row.Blocks, 1)
	assert.Equal(t, 3.0, row.Blocks[0].Left)
	assert.Equal(t, 4.0, row.Blocks[0].Right)
	assert.Equal(t, 1, row.Blocks[0].Count)

	assert.True(t, row.Lifespan.Draw)
	assert.True(t, row.Lifespan.LeftArrow)
	assert.Equal(t, -1.0, row.Lifespan.X1)
	assert.Equal(t, 3.5, row.Lifespan.X2)

	assert.Equal(t, -1.0, row.Hover.Left)
	assert.Equal(t, 4.5, row.Hover.Right)
	assert.Equal(t, 0.5, row.Hover.Top)
	assert.Equal(t, -0.5, row.Hover.Bottom)

	// Label sits past the last block, which outreaches the lifespan bar.
	assert.Equal(t, 4.0, row.LabelX)
}

func TestLayout_ExclusionRules(t *testing.T) {
	t.Parallel()

	win := timeline.TimeWindow{Min: 0, Max: 100, Padding: 1}
	b := newRateBinner(t, win, 1, 3)

	got, err := b.Layout([]timeline.FamilySeries{
		{Family: 1, Times: []float64{5, 6}},            // too few members
		{Family: 2, Times: []float64{-10, -5, -2}},     // entirely before the window
		{Family: 3, Times: []float64{-10, -5, 0}},      // last event at window start
		{Family: 4, Times: []float64{10, 11, 12}},      // included
		{Family: 5, Times: []float64{20, 21, 22, 23}},  // included
	})
	require.NoError(t, err)

	assert.Equal(t, []catalog.FamilyID{1, 2, 3}, got.Excluded)
	require.Len(t, got.Rows, 2)

	// Rows follow inclusion order.
	assert.Equal(t, catalog.FamilyID(4), got.Rows[0].Family)
	assert.Equal(t, 0, got.Rows[0].Row)
	assert.Equal(t, catalog.FamilyID(5), got.Rows[1].Family)
	assert.Equal(t, 1, got.Rows[1].Row)
}

func TestLayout_EmptyTimesRejected(t *testing.T) {
	t.Parallel()

	win := timeline.TimeWindow{Min: 0, Max: 100, Padding: 1}
	b := newRateBinner(t, win, 1, 0)

	_, err := b.Layout([]timeline.FamilySeries{{Family: 9}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyTimestamps))
}

func TestLayout_FIScoring(t *testing.T) {
	t.Parallel()

	win := timeline.TimeWindow{Min: 0, Max: 100, Padding: 1}
	b, err := timeline.NewBinner(win, 1, 0, timeline.FIScoring{Low: -1, High: 1})
	require.NoError(t, err)

	// Unsorted input: values travel with their times.
	got, err := b.Layout([]timeline.FamilySeries{
		{Family: 1, Times: []float64{12.5, 10.5}, Values: []float64{1.0, -1.0}},
	})
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	require.Len(t, got.Rows[0].Blocks, 2)

	assert.Equal(t, 10.5, got.Rows[0].Blocks[0].Left)
	assert.Equal(t, 0, got.Rows[0].Blocks[0].ColorIndex)
	assert.Equal(t, 12.5, got.Rows[0].Blocks[1].Left)
	assert.Equal(t, 255, got.Rows[0].Blocks[1].ColorIndex)
}

func TestLayout_FIValuesLengthMismatch(t *testing.T) {
	t.Parallel()

	win := timeline.TimeWindow{Min: 0, Max: 100, Padding: 1}
	b, err := timeline.NewBinner(win, 1, 0, timeline.FIScoring{Low: -1, High: 1})
	require.NoError(t, err)

	_, err = b.Layout([]timeline.FamilySeries{
		{Family: 1, Times: []float64{10, 11}, Values: []float64{0.5}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

// FI means outside the configured span clamp to the palette ends.
func TestFIScoring_Clamping(t *testing.T) {
	t.Parallel()

	win := timeline.TimeWindow{Min: 0, Max: 100, Padding: 1}
	b, err := timeline.NewBinner(win, 1, 0, timeline.FIScoring{Low: -0.5, High: 0.5})
	require.NoError(t, err)

	got, err := b.Layout([]timeline.FamilySeries{
		{Family: 1, Times: []float64{10.1}, Values: []float64{3.0}},
		{Family: 2, Times: []float64{10.1}, Values: []float64{-3.0}},
	})
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)

	assert.Equal(t, 255, got.Rows[0].Blocks[0].ColorIndex)
	assert.Equal(t, 0, got.Rows[1].Blocks[0].ColorIndex)
}
