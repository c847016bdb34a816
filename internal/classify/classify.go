// Package classify maps raw portal references and labels onto the
// Pole/Entity taxonomy.
package classify

import (
	"strings"

	"github.com/qst-do/qstreport/internal/models"
)

// sectionOffset and sectionLen locate the originating section trigram in
// a work order reference shaped "TVX-SSS-YY-iii".
const (
	sectionOffset = 4
	sectionLen    = 3
)

// Section extracts the lowercased section trigram from a reference.
// References too short to carry one yield an empty string.
func Section(reference string) string {
	if len(reference) < sectionOffset+sectionLen {
		return ""
	}
	return strings.ToLower(reference[sectionOffset : sectionOffset+sectionLen])
}

// EntityFromReference resolves the owning entity from a work order
// reference. Unknown sections default to the quality of service desk.
func EntityFromReference(reference string) models.Entity {
	switch Section(reference) {
	case "qst":
		return models.EntityQualityOfService
	case "rnv":
		return models.EntityRadionavigation
	case "sol", "app", "sur":
		return models.EntityRadars
	case "str":
		return models.EntityRadarProcessing
	case "tpv":
		return models.EntityFlightPlanProcessing
	case "sim":
		return models.EntitySimulationSupervision
	case "rsx":
		return models.EntityNetworks
	case "rdo", "rte": // section radio renommée rte en 2016
		return models.EntityRadioTelephone
	case "ene":
		return models.EntityEnergyClimate
	default:
		return models.EntityQualityOfService
	}
}

// PoleFromReference resolves the owning pole from a work order
// reference. Unknown sections default to the transverse pole.
func PoleFromReference(reference string) models.Pole {
	switch Section(reference) {
	case "qst":
		return models.PoleTransverse
	case "rnv", "sol", "rdo", "rte", "ene", "sur":
		return models.PoleCNS
	case "app", "str", "tpv", "rsx", "sim":
		return models.PoleATM
	default:
		return models.PoleTransverse
	}
}

// EntityFromLabel resolves an entity from the display label used on the
// newer portal. Labels come back with broken encodings often enough that
// the mojibake variants are matched too.
func EntityFromLabel(label string) models.Entity {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "traitement radar":
		return models.EntityRadarProcessing
	case "radionavigation":
		return models.EntityRadionavigation
	case "installations":
		return models.EntityInstallations
	case "qst do":
		return models.EntityQualityOfService
	case "simulation et supervision":
		return models.EntitySimulationSupervision
	case "traitement plans de vols":
		return models.EntityFlightPlanProcessing
	case "energie et climatisation":
		return models.EntityEnergyClimate
	case "radars":
		return models.EntityRadars
	case "radio téléphone", "radio tã©lã©phone":
		return models.EntityRadioTelephone
	case "réseaux", "rã©seaux":
		return models.EntityNetworks
	case "instruction":
		return models.EntityInstruction
	case "informatique bureautique":
		return models.EntityOfficeAutomation
	default:
		return models.EntityUnknown
	}
}

// PoleFromEntity resolves the pole owning an entity. Entities outside
// the three poles, networks included, resolve to Unknown.
func PoleFromEntity(e models.Entity) models.Pole {
	switch e {
	case models.EntityOfficeAutomation, models.EntityQualityOfService, models.EntityInstruction:
		return models.PoleTransverse
	case models.EntityEnergyClimate, models.EntityRadars, models.EntityRadionavigation,
		models.EntityRadioTelephone, models.EntityInstallations:
		return models.PoleCNS
	case models.EntitySimulationSupervision, models.EntityFlightPlanProcessing, models.EntityRadarProcessing:
		return models.PoleATM
	default:
		return models.PoleUnknown
	}
}

// AirportCode converts a portal location label to its ICAO code.
// Locations without a known mapping pass through untouched.
func AirportCode(location string) string {
	switch location {
	case "Aéroport Le Bourget":
		return "LFPB"
	case "Aéroport Roissy/CDG":
		return "LFPG"
	default:
		return location
	}
}
