package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/pkg/timeutil"
)

const (
	sheetCurrentWeek   = "AVT Semaine courante"
	sheetPastWeek      = "AVT Semaine passée"
	sheetTechEvents    = "Evènements techniques"
	sheetExploitEvents = "Evènements exploitation"
)

const (
	misoStatusList    = "Nominal,Ecart,Auc. Info,Hors ST"
	misoErrorCodeList = "COOR,ECH,ENV. TECH,MTO,REP,RH,SUR,TECH,TPS"
)

// XLSXExporter renders report data into the four-sheet workbook the
// operations reviews are built on.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// sheetStyles holds the style ids registered once per workbook.
type sheetStyles struct {
	title       int
	header      int
	dateHeader  int
	poleHeader  int
	entityGroup int
	highlight   int
	dim         int
	row         int
	cancelled   int
	footer      int
}

func registerStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	borders := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D3D3D3"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    borders,
	}); err != nil {
		return s, err
	}
	if s.dateHeader, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D2691E"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    borders,
	}); err != nil {
		return s, err
	}
	if s.poleHeader, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"006400"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    borders,
	}); err != nil {
		return s, err
	}
	if s.entityGroup, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"90EE90"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    borders,
	}); err != nil {
		return s, err
	}
	if s.highlight, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F5DEB3"}},
		Border: borders,
	}); err != nil {
		return s, err
	}
	if s.dim, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Color: "808080"},
		Border: borders,
	}); err != nil {
		return s, err
	}
	if s.row, err = f.NewStyle(&excelize.Style{Border: borders}); err != nil {
		return s, err
	}
	if s.cancelled, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Strike: true},
		Border: borders,
	}); err != nil {
		return s, err
	}
	if s.footer, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}
	return s, nil
}

// Render produces the workbook bytes for the given report data.
func (e *XLSXExporter) Render(data *models.ReportData) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("report data nil")
	}
	f := excelize.NewFile()
	styles, err := registerStyles(f)
	if err != nil {
		return nil, fmt.Errorf("register styles: %w", err)
	}

	f.SetSheetName("Sheet1", sheetCurrentWeek)
	if err := e.writeCurrentWeekSheet(f, styles, data); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetPastWeek); err != nil {
		return nil, err
	}
	if err := e.writePastWeekSheet(f, styles, data); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetTechEvents); err != nil {
		return nil, err
	}
	if err := e.writeTechEventsSheet(f, styles, data); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetExploitEvents); err != nil {
		return nil, err
	}
	if err := e.writeExploitationSheet(f, styles, data); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// slotRef pairs one exploded work slot with its order.
type slotRef struct {
	slot  timeutil.WorkSlot
	order *models.WorkOrder
}

func (e *XLSXExporter) writeCurrentWeekSheet(f *excelize.File, styles sheetStyles, data *models.ReportData) error {
	sheet := sheetCurrentWeek
	period := data.CurrentDataPeriod
	headers := []string{"Ref SIAM", "Ref AVT", "Libellé", "Heure début", "Heure fin", "LBG"}
	cols := len(headers)
	row := 1

	var slots []slotRef
	for _, order := range data.WorkOrders {
		for _, slot := range order.WorkSlots() {
			if period.ContainsDate(slot.Start) {
				slots = append(slots, slotRef{slot: slot, order: order})
			}
		}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].slot.Start.Before(slots[j].slot.Start)
	})

	title := fmt.Sprintf("Programme des AVT pour la période du %s au %s",
		FrenchShortDate(period.Start), FrenchShortDate(period.End))
	n, err := writeMergedLine(f, sheet, row, cols, styles.title, title)
	if err != nil {
		return err
	}
	row += n + 1

	n, err = e.writeDetailedCount(f, sheet, styles, row, cols, period, data.WorkOrders)
	if err != nil {
		return err
	}
	row += n

	if err := writeHeaderRow(f, sheet, row, headers, styles.header); err != nil {
		return err
	}
	row++

	seen := map[string]bool{}
	for i := 0; i < len(slots); {
		day := timeutil.Date(slots[i].slot.Start)
		j := i
		for j < len(slots) && timeutil.Date(slots[j].slot.Start).Equal(day) {
			j++
		}
		group := slots[i:j]
		i = j

		if _, err := writeMergedLine(f, sheet, row, cols, styles.dateHeader, FrenchLongDate(day)); err != nil {
			return err
		}
		row++

		daySlots, nightSlots := splitByNight(group)
		for _, ref := range daySlots {
			if err := e.writeSlotRow(f, sheet, styles, row, ref, seen); err != nil {
				return err
			}
			row++
		}
		if len(nightSlots) > 0 {
			label := fmt.Sprintf("Nuit de %s à %s",
				FrenchWeekday(day.Weekday()), FrenchWeekday(day.AddDate(0, 0, 1).Weekday()))
			if _, err := writeMergedLine(f, sheet, row, cols, styles.dateHeader, label); err != nil {
				return err
			}
			row++
			for _, ref := range nightSlots {
				if err := e.writeSlotRow(f, sheet, styles, row, ref, seen); err != nil {
					return err
				}
				row++
			}
		}
	}

	row++
	if _, err := writeMergedLine(f, sheet, row, cols, styles.footer, editedFooter()); err != nil {
		return err
	}

	widths := []float64{16.5, 11.5, 86, 8.5, 8.5, 4}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// writeSlotRow writes one exploded work period line. The first line of an
// order is highlighted, repeats are dimmed, cancellations struck through.
func (e *XLSXExporter) writeSlotRow(f *excelize.File, sheet string, styles sheetStyles, row int, ref slotRef, seen map[string]bool) error {
	order := ref.order
	first := !seen[order.InternalReference]
	seen[order.InternalReference] = true

	start := ref.slot.Start.Format("15:04")
	if ref.slot.StartsBefore {
		start = "<<<"
	}
	end := ref.slot.End.Format("15:04")
	if ref.slot.EndsAfter {
		end = ">>>"
	}
	lbg := ""
	for _, a := range order.ImpactedAirports {
		if a == "LFPB" {
			lbg = "X"
		}
	}

	values := []interface{}{order.InternalReference, order.PublicID, order.Title, start, end, lbg}
	if err := setRowValues(f, sheet, row, values); err != nil {
		return err
	}

	style := styles.row
	switch {
	case order.IsCancelled:
		style = styles.cancelled
	case first:
		style = styles.highlight
	default:
		style = styles.dim
	}
	return styleRow(f, sheet, row, len(values), style)
}

func (e *XLSXExporter) writeDetailedCount(f *excelize.File, sheet string, styles sheetStyles, row, cols int, week timeutil.TimePeriod, orders []*models.WorkOrder) (int, error) {
	unique := map[string]*models.WorkOrder{}
	var refs []string
	for _, order := range orders {
		inWeek := false
		for _, p := range order.WorkPeriods {
			if week.ContainsDate(p.Start) {
				inWeek = true
				break
			}
		}
		if !inWeek {
			continue
		}
		if _, ok := unique[order.InternalReference]; !ok {
			unique[order.InternalReference] = order
			refs = append(refs, order.InternalReference)
		}
	}

	count := func(fn func(*models.WorkOrder) bool) int {
		n := 0
		for _, ref := range refs {
			if fn(unique[ref]) {
				n++
			}
		}
		return n
	}

	atm := count(func(w *models.WorkOrder) bool { return w.Pole == models.PoleATM })
	cns := count(func(w *models.WorkOrder) bool { return w.Pole == models.PoleCNS })
	asmgcs := count(func(w *models.WorkOrder) bool { return w.Pole == models.PoleATM && w.Entity == models.EntityRadars })
	res := count(func(w *models.WorkOrder) bool { return w.Entity == models.EntityNetworks })
	simu := count(func(w *models.WorkOrder) bool { return w.Entity == models.EntitySimulationSupervision })
	tpv := count(func(w *models.WorkOrder) bool { return w.Entity == models.EntityFlightPlanProcessing })
	tr := count(func(w *models.WorkOrder) bool { return w.Entity == models.EntityRadarProcessing })
	nrj := count(func(w *models.WorkOrder) bool { return w.Entity == models.EntityEnergyClimate })
	rad := count(func(w *models.WorkOrder) bool { return w.Pole == models.PoleCNS && w.Entity == models.EntityRadars })
	rnav := count(func(w *models.WorkOrder) bool { return w.Entity == models.EntityRadionavigation })
	rte := count(func(w *models.WorkOrder) bool { return w.Entity == models.EntityRadioTelephone })

	if err := f.SetCellValue(sheet, cellName(1, row), "Nb AVT :"); err != nil {
		return 0, err
	}
	if err := f.SetCellValue(sheet, cellName(2, row), len(refs)); err != nil {
		return 0, err
	}
	atmLine := fmt.Sprintf("dont Pôle ATM : %d ( ASMGCS : %d ; RES : %d ; SIMU : %d ; TPV : %d ; TR : %d )",
		atm, asmgcs, res, simu, tpv, tr)
	cnsLine := fmt.Sprintf("           Pôle CNS : %d ( NRJ : %d ; RAD : %d ; RNAV : %d ; RTE : %d )",
		cns, nrj, rad, rnav, rte)
	if err := f.MergeCell(sheet, cellName(3, row), cellName(cols, row)); err != nil {
		return 0, err
	}
	if err := f.SetCellValue(sheet, cellName(3, row), atmLine); err != nil {
		return 0, err
	}
	if err := f.MergeCell(sheet, cellName(3, row+1), cellName(cols, row+1)); err != nil {
		return 0, err
	}
	if err := f.SetCellValue(sheet, cellName(3, row+1), cnsLine); err != nil {
		return 0, err
	}
	return 3, nil
}

func (e *XLSXExporter) writePastWeekSheet(f *excelize.File, styles sheetStyles, data *models.ReportData) error {
	sheet := sheetPastWeek
	week := timeutil.WeekOf(data.ReportPeriod.Start)
	headers := []string{"Ref SIAM", "Ref AVT", "Libellé", "Date début", "Date fin", "MISO", "Bilan", "Code"}
	cols := len(headers)
	row := 1

	var orders []*models.WorkOrder
	for _, order := range data.WorkOrders {
		if week.Contains(order.WorkPeriods.GlobalStart()) {
			orders = append(orders, order)
		}
	}

	title := fmt.Sprintf("Bilan des AVT de la semaine n°%d (du %s au %s)",
		week.Number, FrenchShortDate(week.Start), FrenchShortDate(week.End))
	n, err := writeMergedLine(f, sheet, row, cols, styles.title, title)
	if err != nil {
		return err
	}
	row += n + 1

	if err := f.SetCellValue(sheet, cellName(1, row), "Nb AVT :"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cellName(2, row), uniqueReferenceCount(orders)); err != nil {
		return err
	}
	row += 2

	if err := writeHeaderRow(f, sheet, row, headers, styles.header); err != nil {
		return err
	}
	row++

	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Pole != orders[j].Pole {
			return orders[i].Pole < orders[j].Pole
		}
		return orders[i].Entity < orders[j].Entity
	})

	for i := 0; i < len(orders); {
		pole := orders[i].Pole
		if _, err := writeMergedLine(f, sheet, row, cols, styles.poleHeader, pole.DisplayName()); err != nil {
			return err
		}
		row++
		for i < len(orders) && orders[i].Pole == pole {
			entity := orders[i].Entity
			if _, err := writeMergedLine(f, sheet, row, cols, styles.entityGroup, entity.DisplayName()); err != nil {
				return err
			}
			row++
			for i < len(orders) && orders[i].Pole == pole && orders[i].Entity == entity {
				order := orders[i]
				miso := ""
				if order.Kind == models.KindInterventionProcedure {
					miso = "X"
				}
				values := []interface{}{
					order.InternalReference,
					order.PublicID,
					order.Title,
					FrenchShortDate(order.WorkPeriods.GlobalStart()),
					FrenchShortDate(order.WorkPeriods.GlobalEnd()),
					miso,
					"",
					"",
				}
				if err := setRowValues(f, sheet, row, values); err != nil {
					return err
				}
				style := styles.row
				if order.IsCancelled {
					style = styles.cancelled
				}
				if err := styleRow(f, sheet, row, cols, style); err != nil {
					return err
				}
				if err := addDropList(f, sheet, cellName(7, row), misoStatusList); err != nil {
					return err
				}
				if err := addDropList(f, sheet, cellName(8, row), misoErrorCodeList); err != nil {
					return err
				}
				row++
				i++
			}
		}
	}

	row++
	if _, err := writeMergedLine(f, sheet, row, cols, styles.footer, editedFooter()); err != nil {
		return err
	}

	widths := []float64{16, 11, 56, 10.5, 10.5, 8, 10, 13}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func (e *XLSXExporter) writeTechEventsSheet(f *excelize.File, styles sheetStyles, data *models.ReportData) error {
	sheet := sheetTechEvents
	period := data.PastDataPeriod
	headers := []string{"REX", "Significatif", "Ref SIAM", "Heure", "Durée", "Chaîne", "Description"}
	cols := len(headers)
	row := 1

	events := data.TechnicalEventsInPeriod(period)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})

	title := fmt.Sprintf("Bilan des évènements reportés dans SIAM pour la période du %s au %s",
		FrenchShortDate(period.Start), FrenchShortDate(period.End))
	n, err := writeMergedLine(f, sheet, row, cols, styles.title, title)
	if err != nil {
		return err
	}
	row += n + 1

	rex := 0
	for _, ev := range events {
		if ev.ReexAsked {
			rex++
		}
	}
	if err := f.SetCellValue(sheet, cellName(1, row), "Nb évènements :"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cellName(2, row), len(events)); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cellName(3, row), fmt.Sprintf("dont %d REX demandés", rex)); err != nil {
		return err
	}
	row += 2

	if err := writeHeaderRow(f, sheet, row, headers, styles.header); err != nil {
		return err
	}
	row++

	for i := 0; i < len(events); {
		day := timeutil.Date(events[i].StartDate)
		if _, err := writeMergedLine(f, sheet, row, cols, styles.dateHeader, FrenchLongDate(day)); err != nil {
			return err
		}
		row++

		j := i
		for j < len(events) && timeutil.Date(events[j].StartDate).Equal(day) {
			j++
		}
		group := append([]*models.TechnicalEvent(nil), events[i:j]...)
		i = j
		sort.SliceStable(group, func(a, b int) bool { return group[a].Reference < group[b].Reference })

		for _, ev := range group {
			rexMark := ""
			if ev.ReexAsked {
				rexMark = "X"
			}
			values := []interface{}{
				rexMark,
				"",
				ev.Reference,
				ev.StartDate.Format("15:04"),
				ev.HumanDuration(),
				ev.EquipmentGroup,
				ev.Title,
			}
			if err := setRowValues(f, sheet, row, values); err != nil {
				return err
			}
			if err := styleRow(f, sheet, row, cols, styles.row); err != nil {
				return err
			}
			row++
		}
	}

	row++
	if _, err := writeMergedLine(f, sheet, row, cols, styles.footer, editedFooter()); err != nil {
		return err
	}
	return nil
}

func (e *XLSXExporter) writeExploitationSheet(f *excelize.File, styles sheetStyles, data *models.ReportData) error {
	sheet := sheetExploitEvents
	period := data.PastDataPeriod
	headers := []string{"Date début", "Date fin", "Lieu", "Titre", "Description"}
	cols := len(headers)
	row := 1

	events := append([]*models.ExploitationEvent(nil), data.ExploitationEvents...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})

	title := fmt.Sprintf("Evènements exploitation pour la période du %s au %s",
		FrenchShortDate(period.Start), FrenchShortDate(period.End))
	n, err := writeMergedLine(f, sheet, row, cols, styles.title, title)
	if err != nil {
		return err
	}
	row += n + 1

	if err := writeHeaderRow(f, sheet, row, headers, styles.header); err != nil {
		return err
	}
	row++

	for _, ev := range events {
		end := ""
		if !ev.EndDate.IsZero() {
			end = ev.EndDate.Format("02/01/2006 15:04")
		}
		values := []interface{}{
			ev.StartDate.Format("02/01/2006 15:04"),
			end,
			ev.Location,
			ev.Title,
			ev.Description,
		}
		if err := setRowValues(f, sheet, row, values); err != nil {
			return err
		}
		if err := styleRow(f, sheet, row, cols, styles.row); err != nil {
			return err
		}
		row++
	}

	row++
	if _, err := writeMergedLine(f, sheet, row, cols, styles.footer, editedFooter()); err != nil {
		return err
	}
	return nil
}

func splitByNight(slots []slotRef) (day, night []slotRef) {
	for _, ref := range slots {
		if timeutil.TimeOfDay(ref.slot.Start) < timeutil.NightCutoff {
			day = append(day, ref)
		} else {
			night = append(night, ref)
		}
	}
	sortByPole := func(s []slotRef) {
		sort.SliceStable(s, func(i, j int) bool {
			if s[i].order.Pole != s[j].order.Pole {
				return s[i].order.Pole < s[j].order.Pole
			}
			return s[i].order.Entity < s[j].order.Entity
		})
	}
	sortByPole(day)
	sortByPole(night)
	return day, night
}

func uniqueReferenceCount(orders []*models.WorkOrder) int {
	seen := map[string]bool{}
	for _, order := range orders {
		seen[order.InternalReference] = true
	}
	return len(seen)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeMergedLine(f *excelize.File, sheet string, row, cols, style int, text string) (int, error) {
	if err := f.MergeCell(sheet, cellName(1, row), cellName(cols, row)); err != nil {
		return 0, err
	}
	if err := f.SetCellValue(sheet, cellName(1, row), text); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(sheet, cellName(1, row), cellName(cols, row), style); err != nil {
		return 0, err
	}
	return 1, nil
}

func writeHeaderRow(f *excelize.File, sheet string, row int, headers []string, style int) error {
	for i, header := range headers {
		if err := f.SetCellValue(sheet, cellName(i+1, row), header); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheet, cellName(1, row), cellName(len(headers), row), style)
}

func setRowValues(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		if err := f.SetCellValue(sheet, cellName(i+1, row), v); err != nil {
			return err
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	return f.SetCellStyle(sheet, cellName(1, row), cellName(cols, row), style)
}

func addDropList(f *excelize.File, sheet, cell, list string) error {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = cell + ":" + cell
	if err := dv.SetDropList(strings.Split(list, ",")); err != nil {
		return err
	}
	return f.AddDataValidation(sheet, dv)
}

func editedFooter() string {
	now := time.Now()
	return fmt.Sprintf("Edité le %s à %s", FrenchShortDate(now), now.Format("15:04"))
}
