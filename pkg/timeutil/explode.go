package timeutil

import "time"

// NightCutoff is the time of day after which a work period counts as a night
// shift for display purposes. Fixed by reporting convention.
const NightCutoff = 19 * time.Hour

// WorkSlot is a single-day share of a work period. The boundary flags tell a
// renderer to print truncation markers instead of clock times when the work
// continues past the displayed day.
type WorkSlot struct {
	Start        time.Time
	End          time.Time
	StartsBefore bool
	EndsAfter    bool
}

// TimeOfDay returns the duration elapsed since midnight at d.
func TimeOfDay(d time.Time) time.Duration {
	return d.Sub(Date(d))
}

// ExplodePeriod splits a work period into one slot per calendar day it
// crosses. Periods confined to a single day stay whole, as do night works
// that start after the cutoff and run less than 24 hours even when they
// cross midnight.
func ExplodePeriod(p TimePeriod) []WorkSlot {
	if Date(p.Start).Equal(Date(p.End)) {
		return []WorkSlot{{Start: p.Start, End: p.End}}
	}
	if TimeOfDay(p.Start) > NightCutoff && p.Duration() < 24*time.Hour {
		return []WorkSlot{{Start: p.Start, End: p.End}}
	}

	var slots []WorkSlot
	lastDate := Date(p.End)
	EachDay(p.Start, p.End, func(day time.Time) bool {
		switch {
		case len(slots) == 0:
			slots = append(slots, WorkSlot{Start: p.Start, End: EndOfDay(day), EndsAfter: true})
		case day.Equal(lastDate):
			slots = append(slots, WorkSlot{Start: day, End: p.End, StartsBefore: true})
		default:
			slots = append(slots, WorkSlot{Start: day, End: EndOfDay(day), StartsBefore: true, EndsAfter: true})
		}
		return true
	})
	return slots
}
