package timeutil

import "time"

// fullWeekDuration spans Monday 00:00:00 through Sunday 23:59:59.
const fullWeekDuration = 6*24*time.Hour + 23*time.Hour + 59*time.Minute + 59*time.Second

// Week is a calendar week derived from any date inside it.
type Week struct {
	// Number is the ISO-8601 week number.
	Number int
	// Start is Monday at 00:00:00.
	Start time.Time
	// End is Sunday at 23:59:59.
	End time.Time
}

// WeekOf returns the calendar week containing the given date.
func WeekOf(d time.Time) Week {
	return Week{
		Number: ISOWeekNumber(d),
		Start:  FirstDateOfWeek(d),
		End:    LastDateOfWeek(d),
	}
}

// Duration returns End - Start.
func (w Week) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether d falls inside the week, both bounds inclusive.
func (w Week) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Period returns the week as a TimePeriod.
func (w Week) Period() TimePeriod {
	return TimePeriod{Start: w.Start, End: w.End}
}

// Next returns the following calendar week, anchored on this week's End so
// that chained calls step whole weeks regardless of the seed date.
func (w Week) Next() Week {
	return WeekOf(w.End.AddDate(0, 0, 1))
}

// Previous returns the preceding calendar week, anchored on this week's Start.
func (w Week) Previous() Week {
	return WeekOf(w.Start.AddDate(0, 0, -1))
}

// ISOWeekNumber computes the ISO-8601 week number of d. Dates falling
// Monday through Wednesday are shifted three days forward before numbering
// Monday-started weeks, so the week containing the year's first Thursday
// counts as week one.
func ISOWeekNumber(d time.Time) int {
	if wd := d.Weekday(); wd >= time.Monday && wd <= time.Wednesday {
		d = d.AddDate(0, 0, 3)
	}
	return weekOfYear(d)
}

// weekOfYear numbers Monday-started weeks where week one is the first week
// holding at least four days of the year. Earlier days roll into the last
// week of the previous year.
func weekOfYear(d time.Time) int {
	jan1 := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, d.Location())
	offset := (int(time.Monday) - int(jan1.Weekday()) + 14) % 7
	if offset >= 4 {
		offset -= 7
	}
	day := d.YearDay() - 1 - offset
	if day >= 0 {
		return day/7 + 1
	}
	return weekOfYear(time.Date(d.Year()-1, time.December, 31, 0, 0, 0, 0, d.Location()))
}

// FirstDateOfWeek returns the Monday 00:00:00 of the week containing d.
func FirstDateOfWeek(d time.Time) time.Time {
	delta := int(time.Monday) - int(d.Weekday())
	if delta > 0 {
		delta -= 7
	}
	return Date(d).AddDate(0, 0, delta)
}

// LastDateOfWeek returns the Sunday 23:59:59 of the week containing d.
func LastDateOfWeek(d time.Time) time.Time {
	return FirstDateOfWeek(d).Add(fullWeekDuration)
}

// Date truncates d to midnight in its own location.
func Date(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// EndOfDay returns 23:59:59 on the day of d.
func EndOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
}

// EachDay calls fn for each calendar day from start's date to end's date
// inclusive, stopping early when fn returns false.
func EachDay(start, end time.Time, fn func(day time.Time) bool) {
	endDate := Date(end)
	for current := Date(start); !current.After(endDate); current = current.AddDate(0, 0, 1) {
		if !fn(current) {
			return
		}
	}
}

// EachWeek calls fn for each calendar week stepping seven days from start's
// date while the anchor date stays within end, stopping early when fn
// returns false.
func EachWeek(start, end time.Time, fn func(week Week) bool) {
	endDate := Date(end)
	for current := Date(start); !current.After(endDate); current = current.AddDate(0, 0, 7) {
		if !fn(WeekOf(current)) {
			return
		}
	}
}
