// Package export renders already-computed dashboard rows and schedule tasks
// to CSV or XLSX. It never alters status or ordering: what comes in is what
// goes out.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	"github.com/cadugr/frotawatch/internal/models"
)

// Format of an export download.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format query value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Filename builds the timestamped download name, e.g.
// Consolidado_20260829_153000.csv.
func Filename(prefix string, format Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), format)
}

// consolidatedRow is the flat export shape with the dashboard's column names.
type consolidatedRow struct {
	Plate           string `csv:"Placa"`
	Model           string `csv:"Modelo"`
	KmAtLastService int    `csv:"Km Última Revisão"`
	LastServiceDate string `csv:"Data Última Revisão"`
	CurrentKm       string `csv:"Km Atual"`
	KmSinceService  string `csv:"Km desde a última revisão"`
	Status          string `csv:"Status"`
	SourceUsed      string `csv:"Fonte do KM"`
}

func optional(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func toConsolidatedRows(rows []models.EnrichedRow) []consolidatedRow {
	out := make([]consolidatedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, consolidatedRow{
			Plate:           r.Plate,
			Model:           r.Model,
			KmAtLastService: r.KmAtLastService,
			LastServiceDate: r.LastServiceDate,
			CurrentKm:       optional(r.CurrentKm),
			KmSinceService:  optional(r.KmSinceService),
			Status:          string(r.DisplayStatus),
			SourceUsed:      r.SourceUsed,
		})
	}
	return out
}

// taskRow is the flat export shape for schedule tasks.
type taskRow struct {
	Plate         string `csv:"Placa"`
	Model         string `csv:"Modelo"`
	Stage         string `csv:"Coluna"`
	Priority      string `csv:"Prioridade"`
	ScheduledDate string `csv:"Data Agendada"`
	ScheduledTime string `csv:"Hora Agendada"`
	Workshop      string `csv:"Oficina"`
	CurrentKm     string `csv:"Km Atual"`
	Status        string `csv:"Status"`
	Notes         string `csv:"Observações"`
	CreatedAt     string `csv:"Criado Em"`
}

func toTaskRows(tasks []models.ScheduleTask) []taskRow {
	out := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskRow{
			Plate:         t.Plate,
			Model:         t.Model,
			Stage:         string(t.Stage),
			Priority:      string(t.Priority),
			ScheduledDate: t.ScheduledDate,
			ScheduledTime: t.ScheduledTime,
			Workshop:      t.Workshop,
			CurrentKm:     optional(t.CurrentKm),
			Status:        string(t.StatusAtCreation),
			Notes:         t.Notes,
			CreatedAt:     t.CreatedAt.Format("02/01/2006 15:04"),
		})
	}
	return out
}

// WriteConsolidatedCSV writes the dashboard rows as CSV.
func WriteConsolidatedCSV(w io.Writer, rows []models.EnrichedRow) error {
	data, err := csvutil.Marshal(toConsolidatedRows(rows))
	if err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteTasksCSV writes schedule tasks as CSV.
func WriteTasksCSV(w io.Writer, tasks []models.ScheduleTask) error {
	data, err := csvutil.Marshal(toTaskRows(tasks))
	if err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// writeSheet fills one worksheet with a header row and string cells.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return nil
}

// WriteConsolidatedXLSX writes the dashboard rows as a workbook.
func WriteConsolidatedXLSX(w io.Writer, rows []models.EnrichedRow) error {
	f := excelize.NewFile()
	defer f.Close()

	header := []string{"Placa", "Modelo", "Km Última Revisão", "Data Última Revisão", "Km Atual", "Km desde a última revisão", "Status", "Fonte do KM"}
	data := make([][]interface{}, 0, len(rows))
	for _, r := range toConsolidatedRows(rows) {
		data = append(data, []interface{}{
			r.Plate, r.Model, r.KmAtLastService, r.LastServiceDate,
			r.CurrentKm, r.KmSinceService, r.Status, r.SourceUsed,
		})
	}

	if err := writeSheet(f, "Consolidado", header, data); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteTasksXLSX writes schedule tasks as a workbook.
func WriteTasksXLSX(w io.Writer, tasks []models.ScheduleTask) error {
	f := excelize.NewFile()
	defer f.Close()

	header := []string{"Placa", "Modelo", "Coluna", "Prioridade", "Data Agendada", "Hora Agendada", "Oficina", "Km Atual", "Status", "Observações", "Criado Em"}
	data := make([][]interface{}, 0, len(tasks))
	for _, t := range toTaskRows(tasks) {
		data = append(data, []interface{}{
			t.Plate, t.Model, t.Stage, t.Priority, t.ScheduledDate, t.ScheduledTime,
			t.Workshop, t.CurrentKm, t.Status, t.Notes, t.CreatedAt,
		})
	}

	if err := writeSheet(f, "Agendamentos", header, data); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
