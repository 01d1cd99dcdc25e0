// Package consolidate merges the fleet registry with tracker telemetry into
// one best-known odometer figure per vehicle. Pure: no I/O, no clock, no
// hidden state, so repeated runs over the same inputs give the same output.
package consolidate

import "github.com/cadugr/frotawatch/internal/models"

// Maintenance thresholds in km since the last service.
const (
	ExceededThresholdKm    = 10000
	ApproachingThresholdKm = 9000
)

// StatusFor derives the KM-threshold status from km since last service.
// A nil value means no odometer data at all.
func StatusFor(kmSinceService *int) models.MaintenanceStatus {
	if kmSinceService == nil {
		return models.StatusNoData
	}
	switch {
	case *kmSinceService >= ExceededThresholdKm:
		return models.StatusExceeded
	case *kmSinceService >= ApproachingThresholdKm:
		return models.StatusApproaching
	default:
		return models.StatusOK
	}
}

// Consolidate merges base fleet records with telemetry readings. Output order
// follows base; telemetry for plates absent from the registry is dropped.
//
// Per vehicle: the panel reading seeds the candidate, then the plate's best
// telemetry reading (highest non-null km, first encountered wins ties)
// replaces it only when strictly greater. Telemetry never loses to a lower
// panel reading on recency grounds.
func Consolidate(base []models.VehicleBase, telemetry []models.TelemetryReading) []models.Consolidated {
	byPlate := make(map[string][]models.TelemetryReading, len(telemetry))
	for _, r := range telemetry {
		byPlate[r.Plate] = append(byPlate[r.Plate], r)
	}

	out := make([]models.Consolidated, 0, len(base))
	for _, v := range base {
		var currentKm *int
		var sourceUsed string
		if v.KmFromPanel != nil {
			km := *v.KmFromPanel
			currentKm = &km
			sourceUsed = models.SourcePanel
		}

		if best := bestReading(byPlate[v.Plate]); best != nil && best.CurrentKm != nil {
			if currentKm == nil || *best.CurrentKm > *currentKm {
				km := *best.CurrentKm
				currentKm = &km
				sourceUsed = string(best.Source)
			}
		}

		var kmSince *int
		if currentKm != nil {
			d := *currentKm - v.KmAtLastService
			kmSince = &d
		}

		out = append(out, models.Consolidated{
			VehicleBase:    v,
			CurrentKm:      currentKm,
			KmSinceService: kmSince,
			Status:         StatusFor(kmSince),
			SourceUsed:     sourceUsed,
		})
	}
	return out
}

// bestReading picks the reading with the greatest non-null km; the first
// encountered wins ties, keeping the result deterministic for a fixed
// insertion order.
func bestReading(readings []models.TelemetryReading) *models.TelemetryReading {
	var best *models.TelemetryReading
	for i := range readings {
		r := &readings[i]
		if best == nil {
			best = r
			continue
		}
		if best.CurrentKm == nil || (r.CurrentKm != nil && *r.CurrentKm > *best.CurrentKm) {
			best = r
		}
	}
	return best
}
