// Package enrich overlays scheduling-workflow state onto consolidated fleet
// records, producing the display-ready dashboard rows.
package enrich

import (
	"time"

	"github.com/cadugr/frotawatch/internal/models"
)

// DefaultDoneWindow is how long a concluded task keeps showing "CONCLUÍDO"
// before the row falls back to its raw KM status.
const DefaultDoneWindow = 24 * time.Hour

var stageLabels = map[models.Stage]models.DisplayStatus{
	models.StageToSchedule: models.DisplayToSchedule,
	models.StageScheduled:  models.DisplayScheduled,
	models.StageDueToday:   models.DisplayDueToday,
	models.StageInShop:     models.DisplayInShop,
	models.StageDone:       models.DisplayDone,
}

// StageLabel returns the operator-facing label for a Kanban stage.
func StageLabel(stage models.Stage) (models.DisplayStatus, bool) {
	label, ok := stageLabels[stage]
	return label, ok
}

// LatestByPlate indexes tasks by plate, keeping the most recently updated
// task per plate. On an exact UpdatedAt tie the first scanned task stays.
func LatestByPlate(tasks []models.ScheduleTask) map[string]*models.ScheduleTask {
	idx := make(map[string]*models.ScheduleTask, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if curr, ok := idx[t.Plate]; !ok || t.UpdatedAt.After(curr.UpdatedAt) {
			idx[t.Plate] = t
		}
	}
	return idx
}

// DisplayStatusFor computes what the dashboard shows for a row: the task's
// stage label when a task exists, except that a CONCLUIDO task older than
// doneWindow expires back to the raw KM status.
func DisplayStatusFor(row models.Consolidated, task *models.ScheduleTask, now time.Time, doneWindow time.Duration) models.DisplayStatus {
	if task == nil {
		return models.DisplayStatus(row.Status)
	}
	if task.Stage == models.StageDone && doneWindow >= 0 {
		if now.Sub(task.UpdatedAt) > doneWindow {
			return models.DisplayStatus(row.Status)
		}
	}
	if label, ok := stageLabels[task.Stage]; ok {
		return label
	}
	return models.DisplayStatus(row.Status)
}

// Enrich joins consolidated records against the latest schedule task per
// plate. Pure: the clock is an argument.
func Enrich(rows []models.Consolidated, tasks []models.ScheduleTask, now time.Time, doneWindow time.Duration) []models.EnrichedRow {
	latest := LatestByPlate(tasks)

	out := make([]models.EnrichedRow, 0, len(rows))
	for _, r := range rows {
		task := latest[r.Plate]
		enriched := models.EnrichedRow{
			Consolidated:  r,
			DisplayStatus: DisplayStatusFor(r, task, now, doneWindow),
		}
		if task != nil {
			enriched.Task = &models.TaskRef{
				ID:            task.ID,
				Stage:         task.Stage,
				UpdatedAt:     task.UpdatedAt,
				ScheduledDate: task.ScheduledDate,
				ScheduledTime: task.ScheduledTime,
			}
		}
		out = append(out, enriched)
	}
	return out
}
