package importer

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cadugr/frotawatch/internal/models"
)

// workbook builds an in-memory xlsx with the given rows on the first sheet.
func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		filename string
		want     models.TrackerSource
		wantErr  bool
	}{
		{"relatorio_3s_agosto.xlsx", models.SourceThreeS, false},
		{"ITURAN-frota.xlsx", models.SourceIturan, false},
		{"SafeCar export.xlsx", models.SourceSafeCar, false},
		{"frota.xlsx", "", true},
	}
	for _, tt := range tests {
		got, err := DetectSource(tt.filename)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrUnknownSource, tt.filename)
			continue
		}
		require.NoError(t, err, tt.filename)
		require.Equal(t, tt.want, got, tt.filename)
	}
}

func TestParseTrackerByAlias(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"ID", "PLACA", "Motorista", "Km Atual"},
		{"1", "abc-1234", "João", "58.000,5"},
		{"2", "xyz 9876", "Maria", ""},
		{"3", "", "Sem placa", "100"},
	})

	readings, details, err := ParseTracker(buf, models.SourceThreeS, time.Now())
	require.NoError(t, err)
	require.Len(t, readings, 2)

	require.Equal(t, "ABC1234", readings[0].Plate)
	require.Equal(t, models.SourceThreeS, readings[0].Source)
	require.NotNil(t, readings[0].CurrentKm)
	require.Equal(t, 58000, *readings[0].CurrentKm)

	// Empty km stays nil, never zero.
	require.Equal(t, "XYZ9876", readings[1].Plate)
	require.Nil(t, readings[1].CurrentKm)

	require.NotEmpty(t, details)
}

func TestParseTrackerFallbackColumns(t *testing.T) {
	// No recognizable headers: plate falls back to column B, km to column F.
	buf := workbook(t, [][]interface{}{
		{"c1", "c2", "c3", "c4", "c5", "c6"},
		{"x", "AAA1111", "x", "x", "x", "42.000"},
	})

	readings, details, err := ParseTracker(buf, models.SourceThreeS, time.Now())
	require.NoError(t, err)
	require.Len(t, readings, 1)
	require.Equal(t, "AAA1111", readings[0].Plate)
	require.Equal(t, 42, *readings[0].CurrentKm)
	require.NotEmpty(t, details)
}

func TestParseTrackerIturanSkipsLeadingRows(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Relatório Ituran"},
		{"Gerado em 01/08/2026"},
		{"Seq", "Placa", "Cliente", "Data", "Hora", "Km J"},
		{"1", "bbb2b22", "Frota", "01/08/2026", "08:00", "61.234"},
	})

	readings, _, err := ParseTracker(buf, models.SourceIturan, time.Now())
	require.NoError(t, err)
	require.Len(t, readings, 1)
	require.Equal(t, "BBB2B22", readings[0].Plate)
	require.Equal(t, 61234, *readings[0].CurrentKm)
}

func TestParseTrackerEmptySheet(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"PLACA", "Km Atual"},
	})

	_, _, err := ParseTracker(buf, models.SourceThreeS, time.Now())
	require.Error(t, err)
}

func TestParsePanelFindsHeaderRowAndValidates(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Controle de Frota"}, // title row above the header
		{},
		{"Placa", "Modelo", "Km Última Revisão", "Data Última Revisão", "Km Atual"},
		{"abc-1234", "Fiorino", "50.000", "15/07/2026", "58.000"},
		{"def5678", "Strada", "", "01/06/2026", "30.000"}, // missing required km: excluded
		{"", "Saveiro", "10.000", "", ""},                 // missing plate: excluded
		{"ghi9012", "", "10.000", "", ""},                 // missing model: excluded
		{"abc1234", "Fiorino duplicada", "1", "", ""},     // duplicate plate: first wins
	})

	vehicles, err := ParsePanel(buf)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)

	v := vehicles[0]
	require.Equal(t, "ABC1234", v.Plate)
	require.Equal(t, "Fiorino", v.Model)
	require.Equal(t, 50000, v.KmAtLastService)
	require.Equal(t, "15/07/2026", v.LastServiceDate)
	require.NotNil(t, v.KmFromPanel)
	require.Equal(t, 58000, *v.KmFromPanel)
}

func TestParsePanelMissingRequiredColumns(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Placa", "Modelo"},
		{"abc1234", "Fiorino"},
	})

	_, err := ParsePanel(buf)
	require.Error(t, err)
}

func TestFormatServiceDate(t *testing.T) {
	require.Equal(t, "05/07/2026", formatServiceDate("5/7/2026"))
	require.Equal(t, "15/07/2026", formatServiceDate("15-07-2026"))
	require.Equal(t, "", formatServiceDate(""))
	// Excel serial for 2026-07-15.
	require.Equal(t, "15/07/2026", formatServiceDate("46218"))
	// Free text passes through.
	require.Equal(t, "julho", formatServiceDate("julho"))
}
