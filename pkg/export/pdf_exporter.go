package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/qst-do/qstreport/internal/models"
)

// PDFExporter renders report data into a printable summary document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the summary PDF: work order recap grouped by pole, then
// the technical events of the elapsed window.
func (e *PDFExporter) Render(data *models.ReportData, title string) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("report data nil")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Période du %s au %s",
		FrenchShortDate(data.ReportPeriod.Start), FrenchShortDate(data.ReportPeriod.End))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	e.writeWorkOrders(pdf, tr, data)
	e.writeTechnicalEvents(pdf, tr, data)

	if len(data.Warnings) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		for _, w := range data.Warnings {
			pdf.CellFormat(0, 5, tr("Avertissement : "+w), "", 1, "L", false, 0, "")
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) writeWorkOrders(pdf *gofpdf.Fpdf, tr func(string) string, data *models.ReportData) {
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Avis de travaux (%d)", len(data.WorkOrders))), "", 1, "L", false, 0, "")

	headers := []string{"Ref SIAM", "Libellé", "Début", "Fin"}
	widths := []float64{32, 98, 30, 30}

	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, order := range data.WorkOrders {
		period := order.GlobalPeriod()
		title := order.Title
		if order.IsCancelled {
			title = "[ANNULÉ] " + title
		}
		pdf.CellFormat(widths[0], 6, tr(order.InternalReference), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(truncate(title, 70)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, FrenchShortDate(period.Start), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, FrenchShortDate(period.End), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func (e *PDFExporter) writeTechnicalEvents(pdf *gofpdf.Fpdf, tr func(string) string, data *models.ReportData) {
	events := data.TechnicalEventsInPeriod(data.PastDataPeriod)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Evènements techniques (%d)", len(events))), "", 1, "L", false, 0, "")

	headers := []string{"Ref SIAM", "Date", "Durée", "Chaîne", "Libellé"}
	widths := []float64{30, 25, 15, 35, 85}

	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, ev := range events {
		pdf.CellFormat(widths[0], 6, tr(ev.Reference), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, FrenchShortDate(ev.StartDate), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(ev.HumanDuration()), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, tr(truncate(ev.EquipmentGroup, 22)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, tr(truncate(ev.Title, 60)), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
