package sync

import (
	"fmt"
	"time"

	"github.com/erpsync/backend/internal/domain/shared"
)

// DateRange is an inclusive day range
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two inclusive ranges share at least one day.
// Touching boundaries count as an overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

// Contains reports whether the given day falls inside the range,
// boundaries included
func (r DateRange) Contains(day time.Time) bool {
	return !day.Before(r.Start) && !day.After(r.End)
}

// sanityWindow bounds how far a validity range may reach into the past
// or the future. Exports with ranges outside it are corrupt, typically
// a mangled date column.
const sanityWindowYears = 10

// Validate checks range shape: both bounds set, start not after end,
// both bounds inside the sanity window around today
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return shared.NewValidationError("both range bounds are required")
	}
	if r.Start.After(r.End) {
		return shared.NewValidationError("range start %s is after end %s",
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}
	now := time.Now()
	if r.Start.Before(now.AddDate(-sanityWindowYears, 0, 0)) {
		return shared.NewValidationError("range start %s is more than %d years in the past",
			r.Start.Format("2006-01-02"), sanityWindowYears)
	}
	if r.End.After(now.AddDate(sanityWindowYears, 0, 0)) {
		return shared.NewValidationError("range end %s is more than %d years in the future",
			r.End.Format("2006-01-02"), sanityWindowYears)
	}
	return nil
}

// LabeledRange ties a range to the record it came from, for conflict
// reporting
type LabeledRange struct {
	Label string
	Range DateRange
}

// FindOverlaps returns one conflict message per existing range the
// candidate collides with, in input order. Overlapping tariffs are
// legal at write time, so callers decide whether a non-empty result
// blocks the operation or only gets reported.
func FindOverlaps(candidate DateRange, existing []LabeledRange) []string {
	var conflicts []string
	for _, lr := range existing {
		if candidate.Overlaps(lr.Range) {
			conflicts = append(conflicts, fmt.Sprintf("overlaps %s (%s to %s)",
				lr.Label,
				lr.Range.Start.Format("2006-01-02"),
				lr.Range.End.Format("2006-01-02")))
		}
	}
	return conflicts
}
