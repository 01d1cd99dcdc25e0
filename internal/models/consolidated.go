package models

// MaintenanceStatus is the raw KM-threshold status of a vehicle. Values are
// the Portuguese labels the dashboard and exports show.
type MaintenanceStatus string

const (
	StatusExceeded    MaintenanceStatus = "EXCEDEU 10.000"
	StatusApproaching MaintenanceStatus = "PRÓXIMO"
	StatusOK          MaintenanceStatus = "OK"
	StatusNoData      MaintenanceStatus = "SEM DADOS"
)

// Consolidated is a fleet vehicle merged with its best available odometer
// reading. Derived data: recomputed on demand, never persisted.
type Consolidated struct {
	VehicleBase
	CurrentKm      *int              `json:"current_km"`
	KmSinceService *int              `json:"km_since_service"`
	Status         MaintenanceStatus `json:"status"`
	SourceUsed     string            `json:"source_used,omitempty"`
}
