// Package catalog defines the core entities of a detection run: events
// (individual repeating-signal detections) and families (groups of mutually
// similar events), together with their repository contracts.
//
// Times throughout the catalog are expressed as float64 days on a continuous
// day axis (days since the Unix epoch).  Durations such as family longevity
// are likewise day counts.  This keeps window arithmetic, binning, and
// clipping in plain float math; conversion to wall-clock time happens only at
// the interface layer.
package catalog

import (
	"fmt"

	"github.com/seistrack/famview/pkg/errors"
)

// EventID identifies a single catalogued event.
type EventID = int64

// FamilyID identifies a family of mutually similar events.
type FamilyID = int64

// Event is a single detection in the catalog.
type Event struct {
	// ID is the stable catalog identifier.
	ID EventID

	// UID is a globally unique identifier assigned at ingest, used to key
	// events across exported artifacts.
	UID string

	// Time is the event onset on the day axis.
	Time float64

	// FI is the event's frequency index, a spectral-shape scalar.  NaN when
	// not computed.
	FI float64

	// Amps holds the per-channel window amplitude of the event, indexed by
	// channel position.  May be empty when amplitudes were not extracted.
	Amps []float64
}

// Family is an ordered group of mutually similar events.
type Family struct {
	// ID is the family's position in the catalog's family table.
	ID FamilyID

	// Members lists the IDs of the events belonging to this family.
	Members []EventID

	// Core is the ID of the representative (most central) member event.
	Core EventID

	// Start is the onset of the family's earliest member on the day axis.
	Start float64

	// Longevity is the span in days between the earliest and latest member.
	Longevity float64
}

// Validate checks the family's structural invariants: a family must have at
// least one member, its core must be one of its members, and its longevity
// must be non-negative.
func (f *Family) Validate() error {
	if len(f.Members) == 0 {
		return errors.New(errors.ErrCodeFamilyInvalid,
			fmt.Sprintf("family %d has no members", f.ID))
	}
	if !f.HasMember(f.Core) {
		return errors.New(errors.ErrCodeFamilyInvalid,
			fmt.Sprintf("family %d core %d is not a member", f.ID, f.Core))
	}
	if f.Longevity < 0 {
		return errors.New(errors.ErrCodeFamilyInvalid,
			fmt.Sprintf("family %d has negative longevity %g", f.ID, f.Longevity))
	}
	return nil
}

// HasMember reports whether id is one of the family's members.
func (f *Family) HasMember(id EventID) bool {
	for _, m := range f.Members {
		if m == id {
			return true
		}
	}
	return false
}

// Size returns the member count.
func (f *Family) Size() int { return len(f.Members) }

// End returns the family's last-event time on the day axis.
func (f *Family) End() float64 { return f.Start + f.Longevity }
