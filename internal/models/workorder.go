package models

import (
	"github.com/qst-do/qstreport/pkg/timeutil"
)

// WorkOrder is a planned maintenance notice, normalized from any of the
// upstream portals. InternalReference is the cross-portal dedup key.
type WorkOrder struct {
	InternalReference string
	// Source names the portal the order was acquired from.
	Source       string
	PublicID     string
	Title        string
	Description  string
	Consequences string

	Pole   Pole
	Entity Entity
	Kind   WorkOrderKind

	ImpactedAirports    []string
	ImpactedEquipment   []string
	ImpactedSupervisors []Supervisor

	IsCancelled bool
	IsValidated bool

	WorkPeriods timeutil.PeriodCollection
}

// GlobalPeriod is the envelope of all work periods of the order.
func (w *WorkOrder) GlobalPeriod() timeutil.TimePeriod {
	return timeutil.TimePeriod{Start: w.WorkPeriods.GlobalStart(), End: w.WorkPeriods.GlobalEnd()}
}

// WorkSlots explodes every work period of the order into day and night
// slots for the planning sheets.
func (w *WorkOrder) WorkSlots() []timeutil.WorkSlot {
	var slots []timeutil.WorkSlot
	for _, p := range w.WorkPeriods {
		slots = append(slots, timeutil.ExplodePeriod(p)...)
	}
	return slots
}
