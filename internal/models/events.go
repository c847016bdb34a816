package models

import (
	"fmt"
	"time"
)

// TechnicalEvent is an unplanned equipment incident reported on a SIAM
// daybook page.
type TechnicalEvent struct {
	// Reference is the human readable event reference ("CDG-qst-24-123").
	Reference string
	// SourceID is the numeric id of the event in the source portal.
	SourceID int

	Pole           Pole
	Entity         Entity
	StartDate      time.Time
	Duration       time.Duration
	Title          string
	Description    string
	EquipmentGroup string

	// IsAmendment marks later edits of an already reported event. Those
	// rows are parsed but never make it into a report.
	IsAmendment bool
	// ReexAsked is set when a re-examination of the event was requested.
	ReexAsked bool
	// IsAtSecondarySite is set for events reported from the remote site.
	IsAtSecondarySite bool
}

// HumanDuration renders the outage duration the way operators read it.
func (e *TechnicalEvent) HumanDuration() string {
	return HumanDuration(e.Duration)
}

// HumanDuration renders a duration with a single coarse unit, the way
// the daybook pages display outage times.
func HumanDuration(d time.Duration) string {
	switch {
	case d <= time.Second:
		return "sD"
	case d <= time.Minute:
		return fmt.Sprintf("%02d s", int(d.Seconds())%60)
	case d <= time.Hour:
		return fmt.Sprintf("%02d m", int(d.Minutes())%60)
	case d <= 24*time.Hour:
		return fmt.Sprintf("%02d h", int(d.Hours())%24)
	default:
		return fmt.Sprintf("%02d j", int(d.Hours()/24))
	}
}

// ExploitationEvent is an operational event published on the EPEIRES
// portal (runway closures, de-icing campaigns and the like).
type ExploitationEvent struct {
	StartDate   time.Time
	EndDate     time.Time
	Title       string
	Description string
	// Location is the site the event belongs to (CDG, BRIA or LBG).
	Location string
}
