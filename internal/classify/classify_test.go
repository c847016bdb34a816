package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qst-do/qstreport/internal/models"
)

func TestEntityFromReference(t *testing.T) {
	tests := []struct {
		reference string
		expected  models.Entity
	}{
		{"TVX-qst-24-001", models.EntityQualityOfService},
		{"TVX-RNV-24-012", models.EntityRadionavigation},
		{"TVX-sol-23-104", models.EntityRadars},
		{"TVX-app-24-001", models.EntityRadars},
		{"TVX-sur-24-001", models.EntityRadars},
		{"TVX-str-24-033", models.EntityRadarProcessing},
		{"TVX-tpv-24-009", models.EntityFlightPlanProcessing},
		{"TVX-sim-24-002", models.EntitySimulationSupervision},
		{"TVX-rsx-24-150", models.EntityNetworks},
		{"TVX-rdo-15-001", models.EntityRadioTelephone},
		{"TVX-rte-24-001", models.EntityRadioTelephone},
		{"TVX-ene-24-077", models.EntityEnergyClimate},
		{"TVX-xyz-24-001", models.EntityQualityOfService},
		{"TVX", models.EntityQualityOfService},
		{"", models.EntityQualityOfService},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, EntityFromReference(tt.reference), "reference %q", tt.reference)
	}
}

func TestPoleFromReference(t *testing.T) {
	tests := []struct {
		reference string
		expected  models.Pole
	}{
		{"TVX-qst-24-001", models.PoleTransverse},
		{"TVX-rnv-24-012", models.PoleCNS},
		{"TVX-sol-23-104", models.PoleCNS},
		{"TVX-rdo-15-001", models.PoleCNS},
		{"TVX-ene-24-077", models.PoleCNS},
		{"TVX-sur-24-001", models.PoleCNS},
		{"TVX-app-24-001", models.PoleATM},
		{"TVX-str-24-033", models.PoleATM},
		{"TVX-tpv-24-009", models.PoleATM},
		{"TVX-rsx-24-150", models.PoleATM},
		{"TVX-sim-24-002", models.PoleATM},
		{"TVX-xyz-24-001", models.PoleTransverse},
		{"", models.PoleTransverse},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PoleFromReference(tt.reference), "reference %q", tt.reference)
	}
}

func TestEntityFromLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected models.Entity
	}{
		{"Traitement Radar", models.EntityRadarProcessing},
		{"radionavigation", models.EntityRadionavigation},
		{"Installations", models.EntityInstallations},
		{"QST DO", models.EntityQualityOfService},
		{"Simulation et Supervision", models.EntitySimulationSupervision},
		{"Traitement plans de vols", models.EntityFlightPlanProcessing},
		{"Energie et climatisation", models.EntityEnergyClimate},
		{"Radars", models.EntityRadars},
		{"Radio téléphone", models.EntityRadioTelephone},
		{"radio tã©lã©phone", models.EntityRadioTelephone},
		{"Réseaux", models.EntityNetworks},
		{"rã©seaux", models.EntityNetworks},
		{"Instruction", models.EntityInstruction},
		{"Informatique bureautique", models.EntityOfficeAutomation},
		{"  Radars  ", models.EntityRadars},
		{"something else", models.EntityUnknown},
		{"", models.EntityUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, EntityFromLabel(tt.label), "label %q", tt.label)
	}
}

func TestPoleFromEntity(t *testing.T) {
	tests := []struct {
		entity   models.Entity
		expected models.Pole
	}{
		{models.EntityOfficeAutomation, models.PoleTransverse},
		{models.EntityQualityOfService, models.PoleTransverse},
		{models.EntityInstruction, models.PoleTransverse},
		{models.EntityEnergyClimate, models.PoleCNS},
		{models.EntityRadars, models.PoleCNS},
		{models.EntityRadionavigation, models.PoleCNS},
		{models.EntityRadioTelephone, models.PoleCNS},
		{models.EntityInstallations, models.PoleCNS},
		{models.EntitySimulationSupervision, models.PoleATM},
		{models.EntityFlightPlanProcessing, models.PoleATM},
		{models.EntityRadarProcessing, models.PoleATM},
		{models.EntityNetworks, models.PoleUnknown},
		{models.EntityUnknown, models.PoleUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PoleFromEntity(tt.entity))
	}
}

func TestAirportCode(t *testing.T) {
	assert.Equal(t, "LFPB", AirportCode("Aéroport Le Bourget"))
	assert.Equal(t, "LFPG", AirportCode("Aéroport Roissy/CDG"))
	assert.Equal(t, "Orly", AirportCode("Orly"))
}
