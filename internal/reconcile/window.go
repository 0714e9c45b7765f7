package reconcile

import (
	"fmt"
	"time"
)

// DateLayout is the DD/MM/YYYY format Omie uses on the wire and the dashboard
// exposes in its query parameters and line items.
const DateLayout = "02/01/2006"

// Window is an inclusive calendar-date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow parses DD/MM/YYYY bounds into a window.
func ParseWindow(from, to string) (Window, error) {
	start, err := time.Parse(DateLayout, from)
	if err != nil {
		return Window{}, fmt.Errorf("invalid start date %q, expected DD/MM/YYYY: %w", from, err)
	}
	end, err := time.Parse(DateLayout, to)
	if err != nil {
		return Window{}, fmt.Errorf("invalid end date %q, expected DD/MM/YYYY: %w", to, err)
	}
	if end.Before(start) {
		return Window{}, fmt.Errorf("end date %s precedes start date %s", to, from)
	}
	return Window{Start: start, End: end}, nil
}

// CurrentMonth returns the default window: the first day of now's month
// through today.
func CurrentMonth(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: end}
}

// Contains reports window membership, inclusive on both ends.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartText returns the start bound in wire format.
func (w Window) StartText() string {
	return w.Start.Format(DateLayout)
}

// EndText returns the end bound in wire format.
func (w Window) EndText() string {
	return w.End.Format(DateLayout)
}
