package timeutil

import "time"

// TimePeriod is an immutable span between two instants. The model is
// deliberately permissive: End is not validated against Start, matching the
// upstream planning data which occasionally carries inverted spans.
type TimePeriod struct {
	Start time.Time
	End   time.Time
}

// NewTimePeriod builds a period from its two bounds.
func NewTimePeriod(start, end time.Time) TimePeriod {
	return TimePeriod{Start: start, End: end}
}

// Duration returns End - Start.
func (p TimePeriod) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// ContainsDate reports whether d falls inside the period, both bounds
// inclusive.
func (p TimePeriod) ContainsDate(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Merge returns the smallest period covering both a and b.
func Merge(a, b TimePeriod) TimePeriod {
	merged := a
	if b.Start.Before(merged.Start) {
		merged.Start = b.Start
	}
	if b.End.After(merged.End) {
		merged.End = b.End
	}
	return merged
}

// PeriodCollection is the ordered set of work periods attached to a single
// work order. A valid work order always carries at least one period.
type PeriodCollection []TimePeriod

// GlobalStart returns the earliest start across the collection.
func (c PeriodCollection) GlobalStart() time.Time {
	var min time.Time
	for i, p := range c {
		if i == 0 || p.Start.Before(min) {
			min = p.Start
		}
	}
	return min
}

// GlobalEnd returns the latest end across the collection.
func (c PeriodCollection) GlobalEnd() time.Time {
	var max time.Time
	for i, p := range c {
		if i == 0 || p.End.After(max) {
			max = p.End
		}
	}
	return max
}
