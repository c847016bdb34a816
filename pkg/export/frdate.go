package export

import (
	"fmt"
	"time"
)

var frenchDays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

var frenchMonths = [...]string{"", "janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre"}

// FrenchWeekday returns the lowercase French day name.
func FrenchWeekday(d time.Weekday) string {
	return frenchDays[int(d)]
}

// FrenchLongDate renders a date as "mardi 5 mars 2024".
func FrenchLongDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", frenchDays[int(t.Weekday())], t.Day(), frenchMonths[int(t.Month())], t.Year())
}

// FrenchShortDate renders a date as "05/03/2024".
func FrenchShortDate(t time.Time) string {
	return t.Format("02/01/2006")
}
