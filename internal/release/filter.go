package release

import (
	"errors"
	"fmt"
	"time"
)

// DefaultDays is the default lookback window.
const DefaultDays = 7

const releaseDateLayout = "2006-01-02"

// ErrUnparseableDate is returned for release dates that are not in
// YYYY-MM-DD form, such as year or year-month precision dates.
var ErrUnparseableDate = errors.New("release date is not YYYY-MM-DD")

// Filter decides whether an album counts as a new release.
type Filter struct {
	cutoff time.Time
}

// NewFilter returns a filter whose cutoff is the start of the calendar day
// that lies days before now, in now's location.
func NewFilter(now time.Time, days int) Filter {
	y, m, d := now.Date()
	return Filter{cutoff: time.Date(y, m, d-days, 0, 0, 0, 0, now.Location())}
}

// Cutoff returns the earliest qualifying instant.
func (f Filter) Cutoff() time.Time {
	return f.cutoff
}

// Qualifies reports whether a release date is on or after the cutoff.
// The date is read as midnight in the cutoff's location.
func (f Filter) Qualifies(date string) (bool, error) {
	if len(date) != len(releaseDateLayout) {
		return false, fmt.Errorf("%w: %q", ErrUnparseableDate, date)
	}
	released, err := time.ParseInLocation(releaseDateLayout, date, f.cutoff.Location())
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrUnparseableDate, date)
	}
	return !released.Before(f.cutoff), nil
}
