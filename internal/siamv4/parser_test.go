package siamv4

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/internal/scrape"
)

const agendaPage = `<html><body>
<table class="tblContext">
  <tbody>
    <tr id="agenda-ligne-2041"><td><a href="#">[CNS/458] Maintenance ILS 08R</a></td></tr>
    <tr id="agenda-ligne-2042"><td><a href="#">[ATM/512] Bascule chaîne radar</a></td></tr>
    <tr id="agenda-ligne-broken"><td><a href="#">[TSV/100] Ligne sans id</a></td></tr>
    <tr id="agenda-ligne-2043"><td><a href="#">Titre sans reference</a></td></tr>
  </tbody>
</table>
</body></html>`

func TestParseAgendaEntries(t *testing.T) {
	doc, err := scrape.NewDocument(strings.NewReader(agendaPage))
	require.NoError(t, err)

	entries := parseAgendaEntries(doc)
	require.Len(t, entries, 2)
	assert.Equal(t, agendaEntry{ID: 2041, PublicID: "CNS/458"}, entries[0])
	assert.Equal(t, agendaEntry{ID: 2042, PublicID: "ATM/512"}, entries[1])
}

func detailPage(rows []string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><h1 class="bandeau">Avis Travaux TVX-rnv-24-042</h1>`)
	sb.WriteString(`<div class="w900"><h2>[CNS/458] Maintenance ILS 08R</h2></div>`)
	sb.WriteString(`<table class="form"><tbody>`)
	for _, r := range rows {
		sb.WriteString(r)
	}
	sb.WriteString(`</tbody></table></body></html>`)
	return sb.String()
}

func TestParseWorkOrderSinglePeriod(t *testing.T) {
	rows := make([]string, 16)
	for i := range rows {
		rows[i] = "<tr><td>libelle</td><td>valeur</td></tr>"
	}
	rows[1] = "<tr><td>Début des travaux</td><td>lundi 11 mars 2024 à 22:00 UTC</td></tr>"
	rows[2] = "<tr><td>Fin des travaux</td><td>mardi 12 mars 2024 à 05:30 UTC</td></tr>"
	rows[5] = "<tr><td>Equipements</td><td>ILS 08R, DME</td></tr>"
	rows[8] = "<tr><td>Remplacement du coupleur d'antenne</td></tr>"
	rows[10] = "<tr><td>Conséquences</td><td>ILS indisponible</td></tr>"
	rows[15] = "<tr><td>Sites</td><td>Aéroport Roissy/CDG, Aéroport Le Bourget</td></tr>"

	doc, err := scrape.NewDocument(strings.NewReader(detailPage(rows)))
	require.NoError(t, err)

	order, err := parseWorkOrder(doc)
	require.NoError(t, err)

	assert.Equal(t, "TVX-rnv-24-042", order.InternalReference)
	assert.Equal(t, "CNS/458", order.PublicID)
	assert.Equal(t, "Maintenance ILS 08R", order.Title)
	assert.Equal(t, models.PoleCNS, order.Pole)
	assert.Equal(t, models.EntityRadionavigation, order.Entity)
	assert.Equal(t, models.KindSimple, order.Kind)
	assert.Equal(t, []string{"ILS 08R", "DME"}, order.ImpactedEquipment)
	assert.Equal(t, "Remplacement du coupleur d'antenne", order.Description)
	assert.Equal(t, "ILS indisponible", order.Consequences)
	assert.Equal(t, []string{"LFPG", "LFPB"}, order.ImpactedAirports)

	require.Len(t, order.WorkPeriods, 1)
	assert.Equal(t, time.Date(2024, time.March, 11, 22, 0, 0, 0, time.UTC), order.WorkPeriods[0].Start)
	assert.Equal(t, time.Date(2024, time.March, 12, 5, 30, 0, 0, time.UTC), order.WorkPeriods[0].End)
}

func TestParseWorkOrderMultiPeriod(t *testing.T) {
	rows := make([]string, 15)
	for i := range rows {
		rows[i] = "<tr><td>libelle</td><td>valeur</td></tr>"
	}
	rows[1] = `<tr><td><table><tbody>
	  <tr><td>lun. 11/03/2024 22:00</td><td>-</td><td>mar. 12/03/2024 05:30</td></tr>
	  <tr><td>mar. 12/03/2024 22:00</td><td>-</td><td>mer. 13/03/2024 05:30</td></tr>
	</tbody></table></td></tr>`
	rows[4] = "<tr><td>Equipements</td><td>Radar sol</td></tr>"
	rows[7] = "<tr><td>Travaux de nuit sur deux vacations</td></tr>"
	rows[9] = "<tr><td>Conséquences</td><td>Couverture dégradée</td></tr>"
	rows[14] = "<tr><td>Sites</td><td>Aéroport Le Bourget</td></tr>"

	doc, err := scrape.NewDocument(strings.NewReader(detailPage(rows)))
	require.NoError(t, err)

	order, err := parseWorkOrder(doc)
	require.NoError(t, err)

	require.Len(t, order.WorkPeriods, 2)
	assert.Equal(t, time.Date(2024, time.March, 11, 22, 0, 0, 0, time.UTC), order.WorkPeriods[0].Start)
	assert.Equal(t, time.Date(2024, time.March, 12, 5, 30, 0, 0, time.UTC), order.WorkPeriods[0].End)
	assert.Equal(t, time.Date(2024, time.March, 12, 22, 0, 0, 0, time.UTC), order.WorkPeriods[1].Start)
	assert.Equal(t, time.Date(2024, time.March, 13, 5, 30, 0, 0, time.UTC), order.WorkPeriods[1].End)

	assert.Equal(t, []string{"Radar sol"}, order.ImpactedEquipment)
	assert.Equal(t, "Travaux de nuit sur deux vacations", order.Description)
	assert.Equal(t, "Couverture dégradée", order.Consequences)
	assert.Equal(t, []string{"LFPB"}, order.ImpactedAirports)
}

func TestParseWorkOrderMalformedTitle(t *testing.T) {
	page := `<html><body><h1 class="bandeau">Avis Travaux TVX-rnv-24-042</h1>
	<div class="w900"><h2>Titre sans crochets</h2></div></body></html>`

	doc, err := scrape.NewDocument(strings.NewReader(page))
	require.NoError(t, err)

	_, err = parseWorkOrder(doc)
	assert.Error(t, err)
}

const daybookPage = `<html><body>
<table class="tblContext">
  <tbody>
    <tr>
      <td>06:45</td><td>CDG-str-24-118</td><td></td><td>01:30</td><td></td>
      <td>Chaîne radar nord</td><td></td>
      <td>Perte de la visualisation <img src="rex.png" alt="REX demandé"/></td>
    </tr>
    <tr>
      <td>14:10</td><td>CDG-ene-24-119</td><td></td><td>00:05</td><td></td>
      <td>Centrale</td><td></td>
      <td>Microcoupure secteur <img src="amend.png" alt="évènement modifié"/></td>
    </tr>
    <tr>
      <td>18:00</td><td>LBG-rdo-24-016</td><td></td><td>02:00</td><td></td>
      <td>Emetteurs</td><td></td>
      <td>Emetteur secours HS <img src="lbg.png" alt="LBG"/></td>
    </tr>
  </tbody>
</table>
</body></html>`

func TestParseTechnicalEvents(t *testing.T) {
	doc, err := scrape.NewDocument(strings.NewReader(daybookPage))
	require.NoError(t, err)

	day := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)
	events := parseTechnicalEvents(doc, day)
	require.Len(t, events, 3)

	first := events[0]
	assert.Equal(t, "CDG-str-24-118", first.Reference)
	assert.Equal(t, models.PoleATM, first.Pole)
	assert.Equal(t, models.EntityRadarProcessing, first.Entity)
	assert.Equal(t, time.Date(2024, time.March, 12, 6, 45, 0, 0, time.UTC), first.StartDate)
	assert.Equal(t, 90*time.Minute, first.Duration)
	assert.Equal(t, "Chaîne radar nord", first.EquipmentGroup)
	assert.True(t, first.ReexAsked)
	assert.False(t, first.IsAmendment)

	assert.True(t, events[1].IsAmendment)
	assert.True(t, events[2].IsAtSecondarySite)
	assert.Equal(t, models.PoleCNS, events[2].Pole)
}

func TestParseTechnicalEventsEmptyPage(t *testing.T) {
	doc, err := scrape.NewDocument(strings.NewReader("<html><body><p>Aucun évènement</p></body></html>"))
	require.NoError(t, err)

	events := parseTechnicalEvents(doc, time.Now())
	assert.Empty(t, events)
}
