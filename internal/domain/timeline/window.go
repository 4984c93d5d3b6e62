// Package timeline implements the pure time-axis geometry of the occurrence
// views: interval clipping against a visible window and the occupancy
// binning of family event times.
//
// All times are float64 days on the same continuous day axis the catalog
// uses; durations and bin widths are day counts.
package timeline

import (
	"fmt"

	"github.com/seistrack/famview/pkg/errors"
)

// TimeWindow is the visible span of a timeline view.
type TimeWindow struct {
	// Min and Max bound the visible axis.
	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// Padding widens clipped endpoints that overflow the window, leaving
	// room for the continuation arrows.
	Padding float64 `json:"padding"`
}

// Validate rejects inverted or empty windows and negative padding.
func (w TimeWindow) Validate() error {
	if w.Min >= w.Max {
		return errors.New(errors.ErrCodeInvalidWindow,
			fmt.Sprintf("window min %g must precede max %g", w.Min, w.Max))
	}
	if w.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidWindow,
			fmt.Sprintf("window padding %g must be non-negative", w.Padding))
	}
	return nil
}

// Span returns the window width in days.
func (w TimeWindow) Span() float64 { return w.Max - w.Min }

// ClippedSegment is the drawable form of an interval clipped against a
// window.  When Draw is false the interval does not intersect the window and
// X1/X2 are meaningless.  LeftArrow / RightArrow signal that the interval
// continues beyond the respective window edge.
type ClippedSegment struct {
	Draw       bool    `json:"draw"`
	LeftArrow  bool    `json:"left_arrow"`
	RightArrow bool    `json:"right_arrow"`
	X1         float64 `json:"x1"`
	X2         float64 `json:"x2"`
}

// Clip maps an interval (start, length) onto the window, deciding whether
// and where a segment is drawn.  The six configurations are evaluated in
// order; exactly one fires for any input:
//
//	A  interval fully inside            → [start, start+length]
//	B  interval starts past the window  → nothing drawn
//	C  right end overflows              → [start, max+padding], right arrow
//	D  left end overflows               → [min−padding, start+length], left arrow
//	E  both ends overflow               → [min−padding, max+padding], both arrows
//	F  disjoint (interval ends before the window) → nothing drawn
//
// Boundary-equal inputs resolve to the earliest matching case, so an
// interval that exactly spans the window is case A, not E.
func Clip(w TimeWindow, start, length float64) ClippedSegment {
	end := start + length

	switch {
	// A: starts at or after min, ends at or before max.
	case w.Min <= start && w.Max >= end:
		return ClippedSegment{Draw: true, X1: start, X2: end}

	// B: starts at or past the right edge.
	case w.Min <= start && w.Max <= start:
		return ClippedSegment{}

	// C: starts inside, runs past the right edge.
	case w.Min <= start && w.Max <= end:
		return ClippedSegment{Draw: true, RightArrow: true, X1: start, X2: w.Max + w.Padding}

	// D: starts before the window, ends inside it.
	case w.Min >= start && w.Max >= end && w.Min <= end:
		return ClippedSegment{Draw: true, LeftArrow: true, X1: w.Min - w.Padding, X2: end}

	// E: starts before and ends past the window.
	case w.Min >= start && w.Max <= end:
		return ClippedSegment{Draw: true, LeftArrow: true, RightArrow: true,
			X1: w.Min - w.Padding, X2: w.Max + w.Padding}

	// F: disjoint on the left.
	default:
		return ClippedSegment{}
	}
}
