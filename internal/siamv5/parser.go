package siamv5

import (
	"fmt"
	"strings"
	"time"

	"github.com/qst-do/qstreport/internal/classify"
	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/internal/scrape"
	"github.com/qst-do/qstreport/pkg/timeutil"
)

// parseWorkOrder extracts a work order from an occurrence popup page.
// Pages whose title lacks the "[id]" prefix belong to other modules and
// yield a nil order without error.
func parseWorkOrder(doc scrape.Node) (*models.WorkOrder, error) {
	popup := doc.SelectSingle("div#contentPopup")
	if popup == nil {
		return nil, fmt.Errorf("missing popup container")
	}

	rawTitle := scrape.TextOf(popup.SelectSingle("h2.alignCenter"))
	cut := strings.Index(rawTitle, "]")
	if cut < 1 {
		return nil, nil
	}

	order := &models.WorkOrder{
		PublicID: rawTitle[1:cut],
		Title:    strings.TrimSpace(rawTitle[cut+1:]),
	}

	periods, err := parseWorkPeriods(popup)
	if err != nil {
		return nil, err
	}
	order.WorkPeriods = periods

	order.Description = legendBlockText(popup, "Description")
	order.Consequences = legendBlockText(popup, "Analyse")
	order.ImpactedAirports = labelRangeValues(popup, "Sites", "Cha", classify.AirportCode)

	entity, supervisors := parseEntities(popup)
	order.Entity = entity
	order.Pole = classify.PoleFromEntity(entity)
	order.ImpactedSupervisors = supervisors

	order.Kind = models.KindSimple
	if hasProcedureAttachment(popup) {
		order.Kind = models.KindInterventionProcedure
	}
	order.IsCancelled = popup.SelectSingle("p.status3") != nil
	order.IsValidated = popup.SelectSingle("p.status1") != nil

	return order, nil
}

// parseWorkPeriods reads the occurrence timestamps. Multi occurrence
// orders list one div per period, single occurrence orders put both
// timestamps in one block, concatenated without a separator.
func parseWorkPeriods(popup scrape.Node) (timeutil.PeriodCollection, error) {
	container := legendBlock(popup, "Occu")
	if container == nil {
		return nil, fmt.Errorf("missing occurrence block")
	}

	var periods timeutil.PeriodCollection

	children := container.SelectAll("> div")
	if len(children) > 0 {
		for _, node := range children {
			p, err := splitPeriodText(node.Text())
			if err != nil {
				return nil, err
			}
			periods = append(periods, p)
		}
	} else {
		p, err := splitPeriodText(container.Text())
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}

	return periods, nil
}

// splitPeriodText splits "12/03/2024 22:0013/03/2024 05:30" into its
// two fixed width timestamps.
func splitPeriodText(text string) (timeutil.TimePeriod, error) {
	text = scrape.CleanText(text)
	if len(text) < 32 {
		return timeutil.TimePeriod{}, fmt.Errorf("malformed occurrence period %q", text)
	}

	start, err := scrape.ParseShortDateTime(text[:16])
	if err != nil {
		return timeutil.TimePeriod{}, fmt.Errorf("occurrence start: %w", err)
	}
	end, err := scrape.ParseShortDateTime(text[16:32])
	if err != nil {
		return timeutil.TimePeriod{}, fmt.Errorf("occurrence end: %w", err)
	}

	return timeutil.NewTimePeriod(start, end), nil
}

// legendBlock returns the div following the legend whose text contains
// the given prefix.
func legendBlock(popup scrape.Node, legend string) scrape.Node {
	for _, l := range popup.SelectAll("div#occ legend") {
		if !strings.Contains(l.Text(), legend) {
			continue
		}
		for node := l.Next(); node != nil; node = node.Next() {
			if node.Is("div") {
				return node
			}
		}
		return nil
	}
	return nil
}

func legendBlockText(popup scrape.Node, legend string) string {
	return scrape.TextOf(legendBlock(popup, legend))
}

// labelRangeValues collects the div values sitting between the label
// starting with from and the next label starting with until.
func labelRangeValues(popup scrape.Node, from, until string, convert func(string) string) []string {
	var start scrape.Node
	for _, l := range popup.SelectAll("div#occ label") {
		if strings.HasPrefix(scrape.TextOf(l), from) {
			start = l
			break
		}
	}
	if start == nil {
		return nil
	}

	var values []string
	for node := start.Next(); node != nil; node = node.Next() {
		if node.Is("label") {
			if strings.HasPrefix(scrape.TextOf(node), until) {
				break
			}
			continue
		}
		if !node.Is("div") {
			continue
		}
		if v := scrape.TextOf(node); v != "" {
			values = append(values, convert(v))
		}
	}

	return values
}

// parseEntities reads the notifying entity block. The same list mixes
// the entity labels with the impacted supervision desks.
func parseEntities(popup scrape.Node) (models.Entity, []models.Supervisor) {
	entity := models.EntityUnknown
	var supervisors []models.Supervisor

	for _, value := range labelRangeValues(popup, "Enti", "Super", func(s string) string { return s }) {
		for _, item := range strings.Split(value, ",") {
			item = scrape.CleanText(item)
			if item == "" {
				continue
			}
			if strings.HasPrefix(item, "Super") {
				if s, ok := supervisorFromLabel(item); ok {
					supervisors = append(supervisors, s)
				}
				continue
			}
			if entity == models.EntityUnknown {
				entity = classify.EntityFromLabel(item)
			}
		}
	}

	return entity, supervisors
}

func supervisorFromLabel(label string) (models.Supervisor, bool) {
	switch {
	case strings.Contains(label, "ASMGCS"):
		return models.SupervisorASMGCS, true
	case strings.Contains(label, "ATM"):
		return models.SupervisorATM, true
	case strings.Contains(label, "CNS"):
		return models.SupervisorCNS, true
	default:
		return 0, false
	}
}

func hasProcedureAttachment(popup scrape.Node) bool {
	for _, a := range popup.SelectAll("div.attachment a") {
		if strings.Contains(a.Text(), "MISO") {
			return true
		}
	}
	return false
}

// parseDaybookEvent converts a daybook item into a technical event. The
// displayed columns live in the embedded row markup, the timestamps in
// the item itself.
func parseDaybookEvent(item daybookItem) (*models.TechnicalEvent, error) {
	// the fragment is a bare table row, which the HTML5 parser drops
	// outside of a table context
	doc, err := scrape.NewFragment("<table><tbody>" + item.HTML + "</tbody></table>")
	if err != nil {
		return nil, fmt.Errorf("daybook row %s: %w", item.ID, err)
	}

	cells := doc.SelectAll("td")
	if len(cells) < 8 {
		return nil, fmt.Errorf("daybook row %s: truncated markup", item.ID)
	}

	reference := scrape.TextOf(cells[1])
	duration := time.Duration(item.To-item.From) * time.Second

	ev := &models.TechnicalEvent{
		Reference:      reference,
		SourceID:       item.EventID,
		Pole:           classify.PoleFromReference(reference),
		Entity:         classify.EntityFromReference(reference),
		StartDate:      time.Unix(item.From, 0).UTC(),
		Duration:       duration,
		EquipmentGroup: scrape.TextOf(cells[5]),
		Title:          scrape.TextOf(cells[7]),
	}

	for _, icon := range cells[7].SelectAll("img") {
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

	return ev, nil
}
