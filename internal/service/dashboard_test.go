package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cadugr/frotawatch/internal/models"
	"github.com/cadugr/frotawatch/internal/repository"
)

type fakeFleet struct{ vehicles []models.VehicleBase }

func (f *fakeFleet) List(context.Context) ([]models.VehicleBase, error) { return f.vehicles, nil }
func (f *fakeFleet) Count(context.Context) (int, error)                { return len(f.vehicles), nil }

type fakeTelemetry struct{ readings []models.TelemetryReading }

func (f *fakeTelemetry) List(context.Context) ([]models.TelemetryReading, error) {
	return f.readings, nil
}

type fakeTasks struct{ tasks []models.ScheduleTask }

func (f *fakeTasks) List(context.Context) ([]models.ScheduleTask, error) { return f.tasks, nil }

type fakeKV struct{ data map[string][]byte }

func newFakeKV() *fakeKV { return &fakeKV{data: map[string][]byte{}} }

func (f *fakeKV) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return repository.ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func intPtr(v int) *int { return &v }

func newDashboard(t *testing.T, fleet *fakeFleet, tel *fakeTelemetry, tasks *fakeTasks) (*Dashboard, *fakeKV) {
	t.Helper()
	kv := newFakeKV()
	d := NewDashboard(zap.NewNop(), fleet, tel, tasks, kv, 24*time.Hour)
	d.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }
	return d, kv
}

func TestRowsRunsFullPipeline(t *testing.T) {
	fleet := &fakeFleet{vehicles: []models.VehicleBase{
		{Plate: "ABC1234", Model: "Sprinter", KmAtLastService: 50000, KmFromPanel: intPtr(58000)},
		{Plate: "DEF5678", Model: "Daily", KmAtLastService: 30000},
	}}
	tel := &fakeTelemetry{readings: []models.TelemetryReading{
		{Source: models.SourceThreeS, Plate: "ABC1234", CurrentKm: intPtr(60000)},
	}}
	d, _ := newDashboard(t, fleet, tel, &fakeTasks{})

	rows, err := d.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// default sort is km_since_service desc, so the exceeded row comes first
	require.Equal(t, "ABC1234", rows[0].Plate)
	require.Equal(t, models.DisplayStatus(models.StatusExceeded), rows[0].DisplayStatus)
	require.Equal(t, "DEF5678", rows[1].Plate)
	require.Equal(t, models.DisplayStatus(models.StatusNoData), rows[1].DisplayStatus)
}

func TestRowsReflectScheduleState(t *testing.T) {
	fleet := &fakeFleet{vehicles: []models.VehicleBase{
		{Plate: "ABC1234", Model: "Sprinter", KmAtLastService: 50000},
	}}
	tel := &fakeTelemetry{readings: []models.TelemetryReading{
		{Source: models.SourceIturan, Plate: "ABC1234", CurrentKm: intPtr(61000)},
	}}
	tasks := &fakeTasks{tasks: []models.ScheduleTask{
		{ID: "t1", Plate: "ABC1234", Stage: models.StageInShop, UpdatedAt: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)},
	}}
	d, _ := newDashboard(t, fleet, tel, tasks)

	rows, err := d.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, models.DisplayInShop, rows[0].DisplayStatus)
	require.NotNil(t, rows[0].Task)
	require.Equal(t, "t1", rows[0].Task.ID)
}

func TestStatsCountPerDisplayStatus(t *testing.T) {
	fleet := &fakeFleet{vehicles: []models.VehicleBase{
		{Plate: "AAA1111", KmAtLastService: 50000},
		{Plate: "BBB2222", KmAtLastService: 50000},
		{Plate: "CCC3333", KmAtLastService: 50000},
	}}
	tel := &fakeTelemetry{readings: []models.TelemetryReading{
		{Source: models.SourceThreeS, Plate: "AAA1111", CurrentKm: intPtr(60500)},
		{Source: models.SourceThreeS, Plate: "BBB2222", CurrentKm: intPtr(61000)},
	}}
	tasks := &fakeTasks{tasks: []models.ScheduleTask{
		{ID: "t1", Plate: "BBB2222", Stage: models.StageScheduled, UpdatedAt: time.Now()},
	}}
	d, _ := newDashboard(t, fleet, tel, tasks)

	s, err := d.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, s.Total)
	require.Equal(t, 1, s.Exceeded)
	require.Equal(t, 1, s.Scheduled)
	require.Equal(t, 1, s.NoData)
}

func TestFiltersDefaultThenPersist(t *testing.T) {
	d, kv := newDashboard(t, &fakeFleet{}, &fakeTelemetry{}, &fakeTasks{})
	ctx := context.Background()

	cfg, err := d.Filters(ctx)
	require.NoError(t, err)
	require.Equal(t, models.DefaultDashboardFilters(), cfg)

	cfg.SearchPlate = "abc"
	cfg.EnabledSources = []models.TrackerSource{models.SourceIturan}
	require.NoError(t, d.SaveFilters(ctx, cfg))
	require.Contains(t, kv.data, repository.KeyDashboardFilters)

	got, err := d.Filters(ctx)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestToggleSort(t *testing.T) {
	d, _ := newDashboard(t, &fakeFleet{}, &fakeTelemetry{}, &fakeTasks{})
	ctx := context.Background()

	// same key flips direction
	cfg, err := d.ToggleSort(ctx, "km_since_service")
	require.NoError(t, err)
	require.Equal(t, models.SortAsc, cfg.SortDir)

	cfg, err = d.ToggleSort(ctx, "km_since_service")
	require.NoError(t, err)
	require.Equal(t, models.SortDesc, cfg.SortDir)

	// a new key starts descending
	cfg, err = d.ToggleSort(ctx, "plate")
	require.NoError(t, err)
	require.Equal(t, "plate", cfg.SortKey)
	require.Equal(t, models.SortDesc, cfg.SortDir)
}

func TestReprocessCountsRows(t *testing.T) {
	fleet := &fakeFleet{vehicles: []models.VehicleBase{
		{Plate: "AAA1111"}, {Plate: "BBB2222"},
	}}
	d, _ := newDashboard(t, fleet, &fakeTelemetry{}, &fakeTasks{})

	n, err := d.Reprocess(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
