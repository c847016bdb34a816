package models

import (
	"time"

	"github.com/qst-do/qstreport/pkg/timeutil"
)

// ReportKind selects the acquisition window of a report.
type ReportKind string

const (
	// ReportKindWeekly is the weekly operations review (RCO). Its window
	// spans the previous week and the current week.
	ReportKindWeekly ReportKind = "weekly"
	// ReportKindCommittee is the safety committee review (GSST). Its
	// window starts two weeks back.
	ReportKindCommittee ReportKind = "committee"
)

// Valid reports whether k is a known report kind.
func (k ReportKind) Valid() bool {
	return k == ReportKindWeekly || k == ReportKindCommittee
}

// ReportData carries everything a rendered report needs: the time
// windows and the normalized event collections gathered from the
// upstream portals.
type ReportData struct {
	Kind ReportKind

	// ReportPeriod is the full window covered by the report.
	ReportPeriod timeutil.TimePeriod
	// PastDataPeriod covers the already elapsed part of the window.
	PastDataPeriod timeutil.TimePeriod
	// CurrentDataPeriod covers the week being planned.
	CurrentDataPeriod timeutil.TimePeriod

	WorkOrders         []*WorkOrder
	TechnicalEvents    []*TechnicalEvent
	ExploitationEvents []*ExploitationEvent

	// Warnings lists the sources that failed during acquisition. A
	// report with warnings is partial, not aborted.
	Warnings []string
}

// ReportWindows computes the acquisition windows of a report anchored on
// the given date.
func ReportWindows(kind ReportKind, anchor time.Time) (report, past, current timeutil.TimePeriod) {
	week := timeutil.WeekOf(anchor)

	var start time.Time
	switch kind {
	case ReportKindCommittee:
		start = week.Previous().Previous().Start
	default:
		start = week.Previous().Start
	}

	current = week.Period()
	past = timeutil.TimePeriod{Start: start, End: current.Start.AddDate(0, 0, -1)}
	report = timeutil.Merge(past, current)
	return report, past, current
}

// TechnicalEventsInPeriod filters the technical events down to those
// starting inside p.
func (r *ReportData) TechnicalEventsInPeriod(p timeutil.TimePeriod) []*TechnicalEvent {
	var out []*TechnicalEvent
	for _, e := range r.TechnicalEvents {
		if p.ContainsDate(e.StartDate) {
			out = append(out, e)
		}
	}
	return out
}
