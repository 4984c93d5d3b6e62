package timeline

import (
	"fmt"
	"sort"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/pkg/errors"
)

// FamilySeries is the binning input for one family: its event times in days
// and, for frequency-index scoring, one value per event.
type FamilySeries struct {
	Family catalog.FamilyID
	Times  []float64

	// Values carries the per-event frequency indices.  Required when the
	// binner scores by FI, ignored for rate scoring.
	Values []float64
}

// OccupancyBlock is one nonempty occupancy bin of a family row.
type OccupancyBlock struct {
	Left       float64 `json:"left"`
	Right      float64 `json:"right"`
	Count      int     `json:"count"`
	ColorIndex int     `json:"color_index"`
}

// HoverBox is the interactive hit region of a family row.
type HoverBox struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// FamilyRow is the laid-out occupancy strip of one family.
type FamilyRow struct {
	Family catalog.FamilyID `json:"family"`

	// Row is the vertical slot, assigned in inclusion order from zero.
	Row int `json:"row"`

	// Count is the total number of events in the family.
	Count int `json:"count"`

	// Lifespan is the family's [first, last] interval clipped to the view.
	Lifespan ClippedSegment `json:"lifespan"`

	Hover  HoverBox         `json:"hover"`
	LabelX float64          `json:"label_x"`
	Blocks []OccupancyBlock `json:"blocks,omitempty"`
}

// Layout is the full occurrence view: one row per included family plus the
// identities of the families the filters removed.
type Layout struct {
	Window   TimeWindow         `json:"window"`
	BinWidth float64            `json:"bin_width"`
	Rows     []FamilyRow        `json:"rows"`
	Excluded []catalog.FamilyID `json:"excluded,omitempty"`
}

// Binner assigns family event times to fixed-width occupancy bins and lays
// the resulting rows out against a visible window.
type Binner struct {
	window     TimeWindow
	binWidth   float64
	minMembers int
	scoring    Scoring
}

// NewBinner validates the parameter bundle and returns a ready binner.
func NewBinner(window TimeWindow, binWidth float64, minMembers int, scoring Scoring) (*Binner, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if binWidth <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidBinWidth,
			fmt.Sprintf("bin width must be positive: binWidth=%g", binWidth))
	}
	if scoring == nil {
		return nil, errors.New(errors.ErrCodeBadRequest, "scoring is required")
	}
	if err := scoring.Validate(); err != nil {
		return nil, err
	}
	return &Binner{
		window:     window,
		binWidth:   binWidth,
		minMembers: minMembers,
		scoring:    scoring,
	}, nil
}

// Window returns the visible window the binner lays rows out against.
func (b *Binner) Window() TimeWindow { return b.window }

// Layout bins every family and assigns rows in inclusion order.  Families
// with fewer than the minimum member count, or whose last event does not
// reach past the window start, are listed in Excluded instead of drawn.
// An empty time series is a hard error: exclusion filters families, it does
// not repair broken input.
func (b *Binner) Layout(series []FamilySeries) (*Layout, error) {
	out := &Layout{Window: b.window, BinWidth: b.binWidth}

	for _, s := range series {
		if len(s.Times) == 0 {
			return nil, errors.New(errors.ErrCodeEmptyTimestamps,
				fmt.Sprintf("family %d has no event times", s.Family))
		}
		if len(s.Times) < b.minMembers {
			out.Excluded = append(out.Excluded, s.Family)
			continue
		}
		if maxOf(s.Times) <= b.window.Min {
			out.Excluded = append(out.Excluded, s.Family)
			continue
		}

		row, err := b.binFamily(s)
		if err != nil {
			return nil, err
		}

		row.Row = len(out.Rows)
		row.Hover.Top = float64(row.Row) + 0.5
		row.Hover.Bottom = float64(row.Row) - 0.5
		out.Rows = append(out.Rows, row)
	}

	return out, nil
}

// binFamily computes one family's row, leaving Row and the hover verticals
// for Layout to fill in.
func (b *Binner) binFamily(s FamilySeries) (FamilyRow, error) {
	if _, fi := b.scoring.(FIScoring); fi && len(s.Values) != len(s.Times) {
		return FamilyRow{}, errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("family %d has %d values for %d times",
				s.Family, len(s.Values), len(s.Times)))
	}

	times := append([]float64(nil), s.Times...)
	values := append([]float64(nil), s.Values...)
	if len(values) == len(times) {
		sortByTime(times, values)
	} else {
		sort.Float64s(times)
	}

	minT, maxT := times[0], times[len(times)-1]
	w := b.binWidth

	// Bin edges run from the first event in binWidth steps; the last event
	// falls in the final bin.
	nbins := int((maxT-minT)/w) + 1
	counts := make([]int, nbins)
	binValues := make([][]float64, nbins)
	for k, t := range times {
		idx := int((t - minT) / w)
		if idx >= nbins {
			idx = nbins - 1
		}
		counts[idx]++
		if len(values) == len(times) {
			binValues[idx] = append(binValues[idx], values[k])
		}
	}

	row := FamilyRow{
		Family:   s.Family,
		Count:    len(times),
		Lifespan: Clip(b.window, minT, maxT-minT),
	}

	// Only bins whose left edge lies strictly inside the window are drawn.
	for i, c := range counts {
		if c == 0 {
			continue
		}
		left := minT + float64(i)*w
		if left <= b.window.Min {
			continue
		}
		row.Blocks = append(row.Blocks, OccupancyBlock{
			Left:       left,
			Right:      left + w,
			Count:      c,
			ColorIndex: b.scoring.binIndex(c, binValues[i]),
		})
	}

	hoverLeft := minT
	if b.window.Min > hoverLeft {
		hoverLeft = b.window.Min
	}
	row.Hover = HoverBox{
		Left:  hoverLeft - b.window.Padding,
		Right: maxT + b.window.Padding,
	}

	// The count label sits past both the lifespan bar and the last block.
	row.LabelX = row.Lifespan.X2
	for _, blk := range row.Blocks {
		if blk.Right > row.LabelX {
			row.LabelX = blk.Right
		}
	}

	return row, nil
}

// sortByTime sorts times ascending, carrying values along.
func sortByTime(times, values []float64) {
	idx := make([]int, len(times))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return times[idx[a]] < times[idx[b]] })

	st := make([]float64, len(times))
	sv := make([]float64, len(values))
	for k, i := range idx {
		st[k] = times[i]
		sv[k] = values[i]
	}
	copy(times, st)
	copy(values, sv)
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
