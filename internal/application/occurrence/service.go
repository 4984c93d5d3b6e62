// Package occurrence provides the application-level service for the
// occurrence views: the per-family occupancy layout and the catalog-wide
// overview series.  It sits between the HTTP/CLI handlers and the timeline
// domain logic.
package occurrence

import (
	"context"
	"fmt"
	"math"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/timeline"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/logging"
	"github.com/seistrack/famview/pkg/errors"
)

// ScoringMode selects how layout rows are coloured.
type ScoringMode string

const (
	// ScoreByRate colours bins by event count.
	ScoreByRate ScoringMode = "rate"
	// ScoreByFI colours bins by mean frequency index.
	ScoreByFI ScoringMode = "fi"
)

// LayoutInput parameterizes one occupancy layout.
type LayoutInput struct {
	Window       timeline.TimeWindow
	BinWidthDays float64
	MinMembers   int
	Mode         ScoringMode

	// FILow and FIHigh bound the colour span for ScoreByFI.
	FILow  float64
	FIHigh float64
}

// LayoutResult is the laid-out view plus the families that were skipped
// because their events could not be loaded.
type LayoutResult struct {
	Layout  *timeline.Layout   `json:"layout"`
	Skipped []catalog.FamilyID `json:"skipped,omitempty"`
}

// RatePoint is one bin of the overview rate series, anchored at the bin
// center.
type RatePoint struct {
	Time      float64 `json:"time"`
	Orphans   int     `json:"orphans"`
	Repeaters int     `json:"repeaters"`
}

// FIPoint is one repeater in the frequency-index scatter.
type FIPoint struct {
	Time float64 `json:"time"`
	FI   float64 `json:"fi"`
}

// LongevityRow is one family in the longevity view: its lifespan clipped to
// the window, plotted at its longevity value.
type LongevityRow struct {
	Family    catalog.FamilyID        `json:"family"`
	Longevity float64                 `json:"longevity"`
	Segment   timeline.ClippedSegment `json:"segment"`
}

// Overview bundles the catalog-wide series drawn above the family rows.
type Overview struct {
	Window    timeline.TimeWindow `json:"window"`
	BinWidth  float64             `json:"bin_width"`
	Rate      []RatePoint         `json:"rate"`
	FI        []FIPoint           `json:"fi"`
	Longevity []LongevityRow      `json:"longevity"`
}

// OverviewInput parameterizes the overview series.
type OverviewInput struct {
	Window       timeline.TimeWindow
	BinWidthDays float64
}

// Service defines the occurrence application operations.
type Service interface {
	Layout(ctx context.Context, input *LayoutInput) (*LayoutResult, error)
	Overview(ctx context.Context, input *OverviewInput) (*Overview, error)
}

type serviceImpl struct {
	families catalog.FamilyRepository
	events   catalog.EventRepository
	triggers catalog.TriggerRepository
	logger   logging.Logger
}

// NewService creates the occurrence application service.
func NewService(
	families catalog.FamilyRepository,
	events catalog.EventRepository,
	triggers catalog.TriggerRepository,
	logger logging.Logger,
) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		families: families,
		events:   events,
		triggers: triggers,
		logger:   logger,
	}
}

// Layout bins every family against the requested window.  A family whose
// events cannot be loaded is skipped and reported, not fatal: one corrupt
// family must not blank the whole view.
func (s *serviceImpl) Layout(ctx context.Context, input *LayoutInput) (*LayoutResult, error) {
	scoring, err := scoringFor(input)
	if err != nil {
		return nil, err
	}

	binner, err := timeline.NewBinner(input.Window, input.BinWidthDays, input.MinMembers, scoring)
	if err != nil {
		return nil, err
	}

	fams, err := s.families.ListFamilies(ctx)
	if err != nil {
		return nil, err
	}

	result := &LayoutResult{}
	series := make([]timeline.FamilySeries, 0, len(fams))
	for _, fam := range fams {
		evs, err := s.events.GetEvents(ctx, fam.Members)
		if err != nil {
			s.logger.Warn("skipping family with unloadable events",
				logging.Int64("family", fam.ID), logging.Err(err))
			result.Skipped = append(result.Skipped, fam.ID)
			continue
		}

		fs := timeline.FamilySeries{Family: fam.ID}
		for _, ev := range evs {
			fs.Times = append(fs.Times, ev.Time)
			if input.Mode == ScoreByFI {
				fs.Values = append(fs.Values, ev.FI)
			}
		}
		series = append(series, fs)
	}

	layout, err := binner.Layout(series)
	if err != nil {
		return nil, err
	}
	result.Layout = layout

	s.logger.Debug("occurrence layout computed",
		logging.Int("rows", len(layout.Rows)),
		logging.Int("excluded", len(layout.Excluded)),
		logging.Int("skipped", len(result.Skipped)))
	return result, nil
}

// Overview computes the catalog-wide rate, frequency-index, and longevity
// series over the requested window.
func (s *serviceImpl) Overview(ctx context.Context, input *OverviewInput) (*Overview, error) {
	if err := input.Window.Validate(); err != nil {
		return nil, err
	}
	if input.BinWidthDays <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidBinWidth,
			fmt.Sprintf("bin width must be positive: binWidth=%g", input.BinWidthDays))
	}

	triggerTimes, err := s.triggers.ListTriggerTimes(ctx)
	if err != nil {
		return nil, err
	}
	repeaterTimes, err := s.events.ListEventTimes(ctx)
	if err != nil {
		return nil, err
	}

	out := &Overview{Window: input.Window, BinWidth: input.BinWidthDays}

	// Rate: fixed bins across the window, orphans contrasted against
	// repeaters, each point at the bin center.
	w := input.BinWidthDays
	nbins := int(input.Window.Span()/w) + 1
	histT := histogram(triggerTimes, input.Window.Min, w, nbins)
	histR := histogram(repeaterTimes, input.Window.Min, w, nbins)
	for i := 0; i < nbins; i++ {
		out.Rate = append(out.Rate, RatePoint{
			Time:      input.Window.Min + (float64(i)+0.5)*w,
			Orphans:   histT[i] - histR[i],
			Repeaters: histR[i],
		})
	}

	fams, err := s.families.ListFamilies(ctx)
	if err != nil {
		return nil, err
	}

	for _, fam := range fams {
		out.Longevity = append(out.Longevity, LongevityRow{
			Family:    fam.ID,
			Longevity: fam.Longevity,
			Segment:   timeline.Clip(input.Window, fam.Start, fam.Longevity),
		})

		evs, err := s.events.GetEvents(ctx, fam.Members)
		if err != nil {
			s.logger.Warn("omitting family from fi scatter",
				logging.Int64("family", fam.ID), logging.Err(err))
			continue
		}
		for _, ev := range evs {
			if math.IsNaN(ev.FI) {
				continue
			}
			if ev.Time < input.Window.Min || ev.Time > input.Window.Max {
				continue
			}
			out.FI = append(out.FI, FIPoint{Time: ev.Time, FI: ev.FI})
		}
	}

	return out, nil
}

func scoringFor(input *LayoutInput) (timeline.Scoring, error) {
	switch input.Mode {
	case ScoreByRate, "":
		return timeline.RateScoring{BinWidth: input.BinWidthDays}, nil
	case ScoreByFI:
		return timeline.FIScoring{Low: input.FILow, High: input.FIHigh}, nil
	default:
		return nil, errors.New(errors.ErrCodeBadRequest,
			fmt.Sprintf("unknown scoring mode %q", input.Mode))
	}
}

// histogram counts values into nbins fixed-width bins starting at min,
// dropping values outside the binned range.
func histogram(values []float64, min, width float64, nbins int) []int {
	counts := make([]int, nbins)
	for _, v := range values {
		if v < min {
			continue
		}
		idx := int((v - min) / width)
		if idx >= nbins {
			continue
		}
		counts[idx]++
	}
	return counts
}
