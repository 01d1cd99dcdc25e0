package models

// TrackerSource is one of the fixed telemetry providers feeding odometer data.
type TrackerSource string

const (
	SourceThreeS  TrackerSource = "3S"
	SourceIturan  TrackerSource = "Ituran"
	SourceSafeCar TrackerSource = "SafeCar"
)

// SourcePanel marks an odometer reading taken from the fleet registry itself.
const SourcePanel = "Painel"

// SourceUnknown is logged for import files whose provider could not be detected.
const SourceUnknown = "Desconhecida"

// AllTrackerSources lists every known provider, in display order.
var AllTrackerSources = []TrackerSource{SourceThreeS, SourceIturan, SourceSafeCar}

// VehicleBase is one row of the fleet registry. The registry is authoritative
// for which vehicles exist and is wholesale-replaced on every panel import.
type VehicleBase struct {
	Plate           string `json:"plate" db:"plate"`
	Model           string `json:"model" db:"model"`
	KmAtLastService int    `json:"km_at_last_service" db:"km_at_last_service"`
	LastServiceDate string `json:"last_service_date" db:"last_service_date"`
	KmFromPanel     *int   `json:"km_from_panel,omitempty" db:"km_from_panel"`
}
