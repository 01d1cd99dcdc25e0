// Package importer parses panel and tracker spreadsheets into typed records
// and feeds them to the stores, logging one entry per attempted file.
package importer

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cadugr/frotawatch/internal/models"
	"github.com/cadugr/frotawatch/internal/normalize"
)

// ErrUnknownSource is returned when a tracker filename names no known provider.
var ErrUnknownSource = errors.New(`fonte do arquivo não reconhecida: use "3S", "Ituran" ou "SafeCar" no nome do arquivo`)

// columnSpec locates a column by header aliases, with a positional fallback.
type columnSpec struct {
	aliases       []string
	fallbackIndex int
}

// trackerConfig describes one provider's spreadsheet layout.
type trackerConfig struct {
	source   models.TrackerSource
	skipRows int
	plate    columnSpec
	km       columnSpec
}

var trackerConfigs = map[models.TrackerSource]trackerConfig{
	models.SourceThreeS: {
		source: models.SourceThreeS,
		plate:  columnSpec{aliases: []string{"PLACA", "Placa"}, fallbackIndex: 1},
		km:     columnSpec{aliases: []string{"Km Atual", "KM ATUAL"}, fallbackIndex: 5},
	},
	models.SourceIturan: {
		source:   models.SourceIturan,
		skipRows: 2,
		plate:    columnSpec{aliases: []string{"PLACA", "Placa"}, fallbackIndex: 1},
		km:       columnSpec{aliases: []string{"Km J", "KmJ", "Km", "KM", "KM J", "KMJ"}, fallbackIndex: 5},
	},
	models.SourceSafeCar: {
		source: models.SourceSafeCar,
		plate:  columnSpec{aliases: []string{"Unidade rastreada"}, fallbackIndex: 1},
		km:     columnSpec{aliases: []string{"Odômetro", "Odometro"}, fallbackIndex: 13},
	},
}

// DetectSource infers the tracker provider from the filename.
func DetectSource(filename string) (models.TrackerSource, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "3s"):
		return models.SourceThreeS, nil
	case strings.Contains(name, "ituran"):
		return models.SourceIturan, nil
	case strings.Contains(name, "safecar"):
		return models.SourceSafeCar, nil
	default:
		return "", ErrUnknownSource
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// findColumn matches a header against the aliases, returning the index and
// the header text that matched.
func findColumn(headerRow []string, aliases []string) (int, string, bool) {
	for _, alias := range aliases {
		for i, h := range headerRow {
			if normalize.HeaderEquals(h, alias) {
				return i, h, true
			}
		}
	}
	return 0, "", false
}

func firstSheetRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("planilha vazia")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// columnLetter names a zero-based column index the way a spreadsheet does.
func columnLetter(idx int) string {
	name, err := excelize.ColumnNumberToName(idx + 1)
	if err != nil {
		return strconv.Itoa(idx)
	}
	return name
}

// ParseTracker reads one tracker workbook for the given provider. The
// returned details are human-readable notes about column mapping and value
// normalization for the import log.
func ParseTracker(r io.Reader, source models.TrackerSource, fileTimestamp time.Time) ([]models.TelemetryReading, []string, error) {
	config, ok := trackerConfigs[source]
	if !ok {
		return nil, nil, ErrUnknownSource
	}

	rows, err := firstSheetRows(r)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < config.skipRows+2 {
		return nil, nil, errors.New("planilha vazia ou sem dados suficientes")
	}

	headerRow := rows[config.skipRows]
	contentRows := rows[config.skipRows+1:]

	var details []string

	plateIdx, plateHeader, found := findColumn(headerRow, config.plate.aliases)
	if found {
		details = append(details, fmt.Sprintf("Coluna 'Placa' mapeada para %q via alias.", plateHeader))
	} else {
		plateIdx = config.plate.fallbackIndex
		details = append(details, fmt.Sprintf("Coluna 'Placa' não encontrada pelos aliases [%s]. Usando fallback para a coluna %s.",
			strings.Join(config.plate.aliases, ", "), columnLetter(plateIdx)))
	}

	kmIdx, kmHeader, found := findColumn(headerRow, config.km.aliases)
	if found {
		details = append(details, fmt.Sprintf("Coluna 'Km Atual' mapeada para %q via alias.", kmHeader))
	} else {
		kmIdx = config.km.fallbackIndex
		details = append(details, fmt.Sprintf("Coluna 'Km Atual' não encontrada pelos aliases [%s]. Usando fallback para a coluna %s.",
			strings.Join(config.km.aliases, ", "), columnLetter(kmIdx)))
	}

	loggedExample := false
	var readings []models.TelemetryReading
	for _, row := range contentRows {
		plate := normalize.Plate(cell(row, plateIdx))
		if plate == "" {
			continue
		}

		rawKm := cell(row, kmIdx)
		km := normalize.ParseKm(rawKm)
		if !loggedExample && km != nil && rawKm != strconv.Itoa(*km) {
			details = append(details, fmt.Sprintf("Valores de KM normalizados para inteiro (ex: %q → %d).", rawKm, *km))
			loggedExample = true
		}

		readings = append(readings, models.TelemetryReading{
			Source:        source,
			Plate:         plate,
			CurrentKm:     km,
			FileTimestamp: fileTimestamp,
		})
	}

	return readings, details, nil
}

// Panel registry headers.
var panelRequiredHeaders = []string{"Placa", "Modelo", "Km Última Revisão", "Data Última Revisão"}

const panelKmAtualHeader = "Km Atual"

// findHeaderRowIndex scans for the first row containing every required header.
func findHeaderRowIndex(rows [][]string) int {
	for i, row := range rows {
		all := true
		for _, header := range panelRequiredHeaders {
			found := false
			for _, c := range row {
				if normalize.HeaderEquals(header, c) {
					found = true
					break
				}
			}
			if !found {
				all = false
				break
			}
		}
		if all {
			return i
		}
	}
	return -1
}

var dateDMY = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)

// formatServiceDate normalizes a last-service date cell to dd/mm/yyyy. An
// Excel serial number is converted from the 1900 epoch; anything else passes
// through unchanged.
func formatServiceDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if m := dateDMY.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d/%02d/%s", day, month, m[3])
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		d := epoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
		return d.Format("02/01/2006")
	}
	return raw
}

// ParsePanel reads the fleet registry workbook. Rows missing a plate, a
// model or a parseable last-service km are excluded here, before they ever
// reach consolidation. Duplicate plates keep the first occurrence.
func ParsePanel(r io.Reader) ([]models.VehicleBase, error) {
	rows, err := firstSheetRows(r)
	if err != nil {
		return nil, err
	}

	headerIdx := findHeaderRowIndex(rows)
	if headerIdx == -1 {
		return nil, fmt.Errorf("colunas obrigatórias ausentes: %s", strings.Join(panelRequiredHeaders, ", "))
	}

	headerRow := rows[headerIdx]
	colOf := func(header string) int {
		for i, c := range headerRow {
			if normalize.HeaderEquals(header, c) {
				return i
			}
		}
		return -1
	}

	plateCol := colOf("Placa")
	modelCol := colOf("Modelo")
	kmLastCol := colOf("Km Última Revisão")
	dateCol := colOf("Data Última Revisão")
	kmPanelCol := colOf(panelKmAtualHeader)

	seen := make(map[string]bool)
	var vehicles []models.VehicleBase
	for _, row := range rows[headerIdx+1:] {
		plate := normalize.Plate(cell(row, plateCol))
		model := strings.TrimSpace(cell(row, modelCol))
		if plate == "" || model == "" || seen[plate] {
			continue
		}

		kmLast := normalize.ParseKm(cell(row, kmLastCol))
		if kmLast == nil {
			continue
		}

		v := models.VehicleBase{
			Plate:           plate,
			Model:           model,
			KmAtLastService: *kmLast,
			LastServiceDate: formatServiceDate(cell(row, dateCol)),
		}
		if kmPanelCol >= 0 {
			v.KmFromPanel = normalize.ParseKm(cell(row, kmPanelCol))
		}

		seen[plate] = true
		vehicles = append(vehicles, v)
	}

	return vehicles, nil
}
