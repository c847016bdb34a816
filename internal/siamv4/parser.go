package siamv4

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/qst-do/qstreport/internal/classify"
	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/internal/scrape"
	"github.com/qst-do/qstreport/pkg/timeutil"
)

// agendaEntry is one row of the weekly agenda listing.
type agendaEntry struct {
	// ID is the numeric key of the detail page.
	ID int
	// PublicID is the identifier shown in the row title, used to drop
	// duplicate rows of multi week orders.
	PublicID string
}

// parseAgendaEntries extracts the work order references listed on a
// weekly agenda page. Rows without a well formed id or title are
// skipped.
func parseAgendaEntries(doc scrape.Node) []agendaEntry {
	var entries []agendaEntry

	for _, row := range doc.SelectAll("table.tblContext > tbody > tr") {
		idAttr := row.Attr("id")
		cut := strings.LastIndex(idAttr, "-")
		if cut < 0 {
			continue
		}
		id, err := strconv.Atoi(idAttr[cut+1:])
		if err != nil {
			continue
		}

		// row titles are shaped "[pole/identifier] label"
		title := scrape.TextOf(row.SelectSingle("a"))
		end := strings.Index(title, "]")
		if end < 1 {
			continue
		}

		entries = append(entries, agendaEntry{ID: id, PublicID: title[1:end]})
	}

	return entries
}

// parseWorkOrder extracts a work order from its detail page. The page
// comes in two layouts, a single period one and a multi period one,
// told apart by the label of the second form row.
func parseWorkOrder(doc scrape.Node) (*models.WorkOrder, error) {
	banner := scrape.TextOf(doc.SelectSingle("h1.bandeau"))
	reference := strings.TrimSpace(strings.Replace(banner, "Avis Travaux", "", 1))
	if reference == "" {
		return nil, fmt.Errorf("missing reference banner")
	}

	rawTitle := scrape.TextOf(doc.SelectSingle("div.w900 h2"))
	cut := strings.Index(rawTitle, "]")
	if cut < 1 {
		return nil, fmt.Errorf("malformed title %q", rawTitle)
	}
	publicID := rawTitle[1:cut]
	title := strings.TrimSpace(rawTitle[cut+1:])

	rows := doc.SelectAll("table.form > tbody > tr")
	if len(rows) < 2 {
		return nil, fmt.Errorf("missing detail rows")
	}

	order := &models.WorkOrder{
		InternalReference: reference,
		PublicID:          publicID,
		Title:             title,
		Pole:              classify.PoleFromReference(reference),
		Entity:            classify.EntityFromReference(reference),
		Kind:              models.KindSimple,
	}

	var err error
	if strings.HasPrefix(scrape.TextOf(rows[1]), "Début") {
		err = parseSinglePeriodLayout(rows, order)
	} else {
		err = parseMultiPeriodLayout(rows, order)
	}
	if err != nil {
		return nil, err
	}

	return order, nil
}

// cellText returns the cleaned text of the given cell of a form row,
// empty when the row or cell is missing.
func cellText(rows []scrape.Node, row, cell int) string {
	r := scrape.Nth(rows, row)
	if r == nil {
		return ""
	}
	return scrape.TextOf(scrape.Nth(r.SelectAll("td"), cell))
}

// single period pages carry the start and end on rows 1 and 2 as
// verbose French dates, and shift the remaining rows down by one.
func parseSinglePeriodLayout(rows []scrape.Node, order *models.WorkOrder) error {
	start, err := scrape.ParseLongDate(cellText(rows, 1, 1))
	if err != nil {
		return fmt.Errorf("work period start: %w", err)
	}
	end, err := scrape.ParseLongDate(cellText(rows, 2, 1))
	if err != nil {
		return fmt.Errorf("work period end: %w", err)
	}

	order.WorkPeriods = timeutil.PeriodCollection{timeutil.NewTimePeriod(start, end)}
	order.ImpactedEquipment = scrape.SplitList(cellText(rows, 5, 1))
	order.Description = scrape.TextOf(scrape.Nth(rows, 8))
	order.Consequences = cellText(rows, 10, 1)
	order.ImpactedAirports = airportCodes(cellText(rows, 15, 1))
	return nil
}

// multi period pages embed a nested table of periods in row 1 with
// compact timestamps prefixed by the weekday abbreviation.
func parseMultiPeriodLayout(rows []scrape.Node, order *models.WorkOrder) error {
	var periods timeutil.PeriodCollection

	for _, period := range rows[1].SelectAll("tbody tr") {
		cells := period.SelectAll("td")

		start, err := parsePrefixedDateTime(scrape.TextOf(scrape.Nth(cells, 0)))
		if err != nil {
			return fmt.Errorf("work period start: %w", err)
		}
		end, err := parsePrefixedDateTime(scrape.TextOf(scrape.Nth(cells, 2)))
		if err != nil {
			return fmt.Errorf("work period end: %w", err)
		}

		periods = append(periods, timeutil.NewTimePeriod(start, end))
	}
	if len(periods) == 0 {
		return fmt.Errorf("no work periods found")
	}

	order.WorkPeriods = periods
	order.ImpactedEquipment = scrape.SplitList(cellText(rows, 4, 1))
	order.Description = scrape.TextOf(scrape.Nth(rows, 7))
	order.Consequences = cellText(rows, 9, 1)
	order.ImpactedAirports = airportCodes(cellText(rows, 14, 1))
	return nil
}

// parsePrefixedDateTime drops the 4 character weekday prefix ("mar. ")
// before the compact timestamp.
func parsePrefixedDateTime(s string) (time.Time, error) {
	s = scrape.CleanText(s)
	if len(s) <= 4 {
		return time.Time{}, fmt.Errorf("timestamp %q too short", s)
	}
	return scrape.ParseShortDateTime(s[4:])
}

func airportCodes(cell string) []string {
	raw := scrape.SplitList(cell)
	out := make([]string, 0, len(raw))
	for _, loc := range raw {
		out = append(out, classify.AirportCode(loc))
	}
	return out
}

// parseTechnicalEvents extracts the incidents listed on a daybook page.
// day anchors the row times, which only carry hours and minutes.
func parseTechnicalEvents(doc scrape.Node, day time.Time) []*models.TechnicalEvent {
	var events []*models.TechnicalEvent

	for _, row := range doc.SelectAll("table.tblContext > tbody > tr") {
		if ev := parseTechnicalEventRow(row, day); ev != nil {
			events = append(events, ev)
		}
	}

	return events
}

func parseTechnicalEventRow(row scrape.Node, day time.Time) *models.TechnicalEvent {
	cells := row.SelectAll("td")
	if len(cells) < 8 {
		return nil
	}

	reference := scrape.TextOf(cells[1])
	if reference == "" {
		return nil
	}

	start, err := anchorTime(day, scrape.TextOf(cells[0]))
	if err != nil {
		return nil
	}

	duration, err := parseClockDuration(scrape.TextOf(cells[3]))
	if err != nil {
		duration = 0
	}

	ev := &models.TechnicalEvent{
		Reference:      reference,
		Pole:           classify.PoleFromReference(reference),
		Entity:         classify.EntityFromReference(reference),
		StartDate:      start,
		Duration:       duration,
		EquipmentGroup: scrape.TextOf(cells[5]),
		Title:          scrape.TextOf(cells[7]),
	}

	applyIconFlags(cells[7], ev)

	return ev
}

// applyIconFlags reads the marker icons appended to the title cell.
func applyIconFlags(cell scrape.Node, ev *models.TechnicalEvent) {
	for _, icon := range cell.SelectAll("img") {
		alt := strings.ToLower(icon.Attr("alt"))
		switch {
		case strings.HasPrefix(alt, "évè"):
			ev.IsAmendment = true
		case strings.HasPrefix(alt, "rex"):
			ev.ReexAsked = true
		case strings.HasPrefix(alt, "lbg"):
			ev.IsAtSecondarySite = true
		}
	}
}

func anchorTime(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func parseClockDuration(s string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
