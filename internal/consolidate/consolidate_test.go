package consolidate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cadugr/frotawatch/internal/consolidate"
	"github.com/cadugr/frotawatch/internal/models"
)

func ptr(v int) *int { return &v }

func reading(src models.TrackerSource, plate string, km *int) models.TelemetryReading {
	return models.TelemetryReading{Source: src, Plate: plate, CurrentKm: km, FileTimestamp: time.Now()}
}

func TestConsolidateTelemetryBeatsPanel(t *testing.T) {
	base := []models.VehicleBase{{
		Plate:           "ABC1234",
		Model:           "Fiorino",
		KmAtLastService: 50000,
		KmFromPanel:     ptr(58000),
	}}
	telemetry := []models.TelemetryReading{
		reading(models.SourceThreeS, "ABC1234", ptr(60000)),
		reading(models.SourceIturan, "ABC1234", ptr(59000)),
	}

	out := consolidate.Consolidate(base, telemetry)
	require.Len(t, out, 1)
	require.Equal(t, 60000, *out[0].CurrentKm)
	require.Equal(t, "3S", out[0].SourceUsed)
	require.Equal(t, 10000, *out[0].KmSinceService)
	require.Equal(t, models.StatusExceeded, out[0].Status)
}

func TestConsolidatePanelWinsTies(t *testing.T) {
	base := []models.VehicleBase{{Plate: "AAA1111", KmAtLastService: 1000, KmFromPanel: ptr(5000)}}
	telemetry := []models.TelemetryReading{reading(models.SourceIturan, "AAA1111", ptr(5000))}

	out := consolidate.Consolidate(base, telemetry)
	require.Equal(t, 5000, *out[0].CurrentKm)
	// Strictly-greater rule: equal telemetry does not displace the panel.
	require.Equal(t, models.SourcePanel, out[0].SourceUsed)
}

func TestConsolidateTelemetryNeverLosesToLowerPanel(t *testing.T) {
	base := []models.VehicleBase{{Plate: "AAA1111", KmAtLastService: 1000, KmFromPanel: ptr(4000)}}
	telemetry := []models.TelemetryReading{reading(models.SourceSafeCar, "AAA1111", ptr(4001))}

	out := consolidate.Consolidate(base, telemetry)
	require.Equal(t, 4001, *out[0].CurrentKm)
	require.Equal(t, "SafeCar", out[0].SourceUsed)
}

func TestConsolidateFirstEncounteredWinsEqualTelemetry(t *testing.T) {
	base := []models.VehicleBase{{Plate: "AAA1111", KmAtLastService: 0}}
	telemetry := []models.TelemetryReading{
		reading(models.SourceThreeS, "AAA1111", ptr(7000)),
		reading(models.SourceIturan, "AAA1111", ptr(7000)),
	}

	out := consolidate.Consolidate(base, telemetry)
	require.Equal(t, "3S", out[0].SourceUsed)
}

func TestConsolidateNoData(t *testing.T) {
	base := []models.VehicleBase{{Plate: "AAA1111", KmAtLastService: 1000}}
	telemetry := []models.TelemetryReading{reading(models.SourceThreeS, "AAA1111", nil)}

	out := consolidate.Consolidate(base, telemetry)
	require.Nil(t, out[0].CurrentKm)
	require.Nil(t, out[0].KmSinceService)
	require.Equal(t, models.StatusNoData, out[0].Status)
	require.Empty(t, out[0].SourceUsed)
}

func TestConsolidateNegativeKmSinceServiceIsOK(t *testing.T) {
	base := []models.VehicleBase{{Plate: "AAA1111", KmAtLastService: 10000, KmFromPanel: ptr(9500)}}

	out := consolidate.Consolidate(base, nil)
	require.Equal(t, -500, *out[0].KmSinceService)
	require.Equal(t, models.StatusOK, out[0].Status)
}

func TestConsolidateDropsUnknownPlatesAndKeepsBaseOrder(t *testing.T) {
	base := []models.VehicleBase{
		{Plate: "BBB2222", KmAtLastService: 0},
		{Plate: "AAA1111", KmAtLastService: 0},
	}
	telemetry := []models.TelemetryReading{
		reading(models.SourceThreeS, "ZZZ9999", ptr(1)), // not in registry
		reading(models.SourceThreeS, "AAA1111", ptr(5)),
	}

	out := consolidate.Consolidate(base, telemetry)
	require.Len(t, out, 2)
	require.Equal(t, "BBB2222", out[0].Plate)
	require.Equal(t, "AAA1111", out[1].Plate)
}

func TestStatusThresholds(t *testing.T) {
	tests := []struct {
		km   *int
		want models.MaintenanceStatus
	}{
		{ptr(10000), models.StatusExceeded},
		{ptr(15000), models.StatusExceeded},
		{ptr(9999), models.StatusApproaching},
		{ptr(9000), models.StatusApproaching},
		{ptr(8999), models.StatusOK},
		{ptr(0), models.StatusOK},
		{ptr(-100), models.StatusOK},
		{nil, models.StatusNoData},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, consolidate.StatusFor(tt.km))
	}
}

func TestConsolidateIdempotent(t *testing.T) {
	base := []models.VehicleBase{{Plate: "AAA1111", KmAtLastService: 100, KmFromPanel: ptr(9500)}}
	telemetry := []models.TelemetryReading{
		reading(models.SourceThreeS, "AAA1111", ptr(9400)),
		reading(models.SourceIturan, "AAA1111", nil),
	}

	first := consolidate.Consolidate(base, telemetry)
	second := consolidate.Consolidate(base, telemetry)
	require.Equal(t, first, second)
}
