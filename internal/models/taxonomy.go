package models

// Pole is the top level of the organisational taxonomy used for report
// grouping. It never drives acquisition logic.
type Pole int

const (
	PoleATM Pole = iota
	PoleCNS
	PoleTransverse
	PoleUnknown
)

var poleNames = map[Pole]struct{ long, short string }{
	PoleATM:        {"Pôle ATM", "ATM"},
	PoleCNS:        {"Pôle CNS", "CNS"},
	PoleTransverse: {"Pôle Transverse", "TSV"},
	PoleUnknown:    {"Autres", "Autres"},
}

// DisplayName returns the long label used in report headers.
func (p Pole) DisplayName() string { return poleNames[p].long }

func (p Pole) String() string { return poleNames[p].short }

// PoleByName resolves a short label ("ATM") back to its pole.
func PoleByName(name string) (Pole, bool) {
	for p, n := range poleNames {
		if n.short == name {
			return p, true
		}
	}
	return PoleUnknown, false
}

// Entity is the sub-unit level of the organisational taxonomy.
type Entity int

const (
	EntityRadarProcessing Entity = iota
	EntityFlightPlanProcessing
	EntitySimulationSupervision
	EntityEnergyClimate
	EntityRadioTelephone
	EntityRadionavigation
	EntityInstallations
	EntityNetworks
	EntityRadars
	EntityQualityOfService
	EntityInstruction
	EntityOfficeAutomation
	EntityGeneralMeans
	EntityUnknown
)

var entityNames = map[Entity]struct{ long, short string }{
	EntityRadarProcessing:       {"Traitement Radar", "TR"},
	EntityFlightPlanProcessing:  {"Traitement PLN", "TPV"},
	EntitySimulationSupervision: {"Simulation", "SIMU"},
	EntityEnergyClimate:         {"Energie / Clim", "NRJ"},
	EntityRadioTelephone:        {"Radio / Téléphone", "RADIO"},
	EntityRadionavigation:       {"Radionavigation", "RNAV"},
	EntityInstallations:         {"Installations", "Installs"},
	EntityNetworks:              {"Réseaux", "RSX"},
	EntityRadars:                {"Radars", "RADAR"},
	EntityQualityOfService:      {"QST", "QST"},
	EntityInstruction:           {"Instruction", "INS"},
	EntityOfficeAutomation:      {"Bureautique", "CANARI"},
	EntityGeneralMeans:          {"Moyens généraux", "MG"},
	EntityUnknown:               {"Autres", "Autres"},
}

// DisplayName returns the long label used in report headers.
func (e Entity) DisplayName() string { return entityNames[e].long }

func (e Entity) String() string { return entityNames[e].short }

// EntityByName resolves a short label ("RNAV") back to its entity.
func EntityByName(name string) (Entity, bool) {
	for e, n := range entityNames {
		if n.short == name {
			return e, true
		}
	}
	return EntityUnknown, false
}

// Supervisor tags the supervision desks impacted by a work order.
type Supervisor int

const (
	SupervisorATM Supervisor = iota
	SupervisorASMGCS
	SupervisorCNS
)

var supervisorNames = map[Supervisor]struct{ long, short string }{
	SupervisorATM:    {"Superviseur ATM", "SPV ATM"},
	SupervisorASMGCS: {"Superviseur ASMGCS", "SPV ASMGCS"},
	SupervisorCNS:    {"Superviseur CNS", "SPV CNS"},
}

// DisplayName returns the long label.
func (s Supervisor) DisplayName() string { return supervisorNames[s].long }

func (s Supervisor) String() string { return supervisorNames[s].short }

// WorkOrderKind distinguishes plain work notices from procedure-backed
// interventions. It modifies report highlighting only.
type WorkOrderKind int

const (
	KindSimple WorkOrderKind = iota
	KindInterventionProcedure
	KindOperationalConduct
)

var kindNames = map[WorkOrderKind]struct{ long, short string }{
	KindSimple:                {"Avis de travaux", "AVT"},
	KindInterventionProcedure: {"Méthodologie d'interventions sur système opérationnel", "MISO"},
	KindOperationalConduct:    {"Conduite de système opérationnel", "MICSO"},
}

// DisplayName returns the long label.
func (k WorkOrderKind) DisplayName() string { return kindNames[k].long }

func (k WorkOrderKind) String() string { return kindNames[k].short }
