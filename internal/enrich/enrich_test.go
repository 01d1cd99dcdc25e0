package enrich_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cadugr/frotawatch/internal/enrich"
	"github.com/cadugr/frotawatch/internal/models"
)

func row(plate string, status models.MaintenanceStatus) models.Consolidated {
	return models.Consolidated{
		VehicleBase: models.VehicleBase{Plate: plate},
		Status:      status,
	}
}

func task(plate string, stage models.Stage, updatedAt time.Time) models.ScheduleTask {
	return models.ScheduleTask{
		ID:        "task-" + plate,
		Plate:     plate,
		Stage:     stage,
		UpdatedAt: updatedAt,
	}
}

func TestEnrichNoTaskKeepsRawStatus(t *testing.T) {
	rows := enrich.Enrich(
		[]models.Consolidated{row("AAA1111", models.StatusExceeded)},
		nil, time.Now(), enrich.DefaultDoneWindow,
	)
	require.Len(t, rows, 1)
	require.Nil(t, rows[0].Task)
	require.Equal(t, models.DisplayStatus(models.StatusExceeded), rows[0].DisplayStatus)
}

func TestEnrichStageLabels(t *testing.T) {
	now := time.Now()
	tests := []struct {
		stage models.Stage
		want  models.DisplayStatus
	}{
		{models.StageToSchedule, models.DisplayToSchedule},
		{models.StageScheduled, models.DisplayScheduled},
		{models.StageDueToday, models.DisplayDueToday},
		{models.StageInShop, models.DisplayInShop},
		{models.StageDone, models.DisplayDone},
	}
	for _, tt := range tests {
		rows := enrich.Enrich(
			[]models.Consolidated{row("AAA1111", models.StatusOK)},
			[]models.ScheduleTask{task("AAA1111", tt.stage, now)},
			now, enrich.DefaultDoneWindow,
		)
		require.Equal(t, tt.want, rows[0].DisplayStatus, "stage %s", tt.stage)
	}
}

func TestEnrichDoneExpiresAfterWindow(t *testing.T) {
	now := time.Now()

	// 23h old: still shows CONCLUÍDO.
	fresh := enrich.DisplayStatusFor(
		row("AAA1111", models.StatusExceeded),
		&models.ScheduleTask{Stage: models.StageDone, UpdatedAt: now.Add(-23 * time.Hour)},
		now, 24*time.Hour,
	)
	require.Equal(t, models.DisplayDone, fresh)

	// 25h old: falls back to the raw KM status.
	stale := enrich.DisplayStatusFor(
		row("AAA1111", models.StatusExceeded),
		&models.ScheduleTask{Stage: models.StageDone, UpdatedAt: now.Add(-25 * time.Hour)},
		now, 24*time.Hour,
	)
	require.Equal(t, models.DisplayStatus(models.StatusExceeded), stale)
}

func TestLatestByPlatePicksGreatestUpdatedAt(t *testing.T) {
	now := time.Now()
	tasks := []models.ScheduleTask{
		task("AAA1111", models.StageDone, now.Add(-2*time.Hour)),
		task("AAA1111", models.StageScheduled, now.Add(-1*time.Hour)),
		task("BBB2222", models.StageInShop, now),
	}
	tasks[1].ID = "newer"

	idx := enrich.LatestByPlate(tasks)
	require.Equal(t, "newer", idx["AAA1111"].ID)
	require.Equal(t, models.StageInShop, idx["BBB2222"].Stage)
}

func TestEnrichCarriesTaskRef(t *testing.T) {
	now := time.Now()
	tk := task("AAA1111", models.StageScheduled, now)
	tk.ScheduledDate = "2026-09-01"
	tk.ScheduledTime = "08:30"

	rows := enrich.Enrich(
		[]models.Consolidated{row("AAA1111", models.StatusOK)},
		[]models.ScheduleTask{tk},
		now, enrich.DefaultDoneWindow,
	)
	require.NotNil(t, rows[0].Task)
	require.Equal(t, tk.ID, rows[0].Task.ID)
	require.Equal(t, models.StageScheduled, rows[0].Task.Stage)
	require.Equal(t, "2026-09-01", rows[0].Task.ScheduledDate)
	require.Equal(t, "08:30", rows[0].Task.ScheduledTime)
}
