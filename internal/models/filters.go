package models

// SortDirection of the dashboard sort.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// DashboardFilters drives the filtering/sorting projection over enriched
// rows. Persisted as a kv blob so the view survives restarts.
type DashboardFilters struct {
	SearchPlate    string          `json:"search_plate"`
	SearchModel    string          `json:"search_model"`
	StatusFilter   []DisplayStatus `json:"status_filter"`
	EnabledSources []TrackerSource `json:"enabled_sources"`
	SortKey        string          `json:"sort_key"`
	SortDir        SortDirection   `json:"sort_dir"`
}

// DefaultDashboardFilters matches the dashboard's initial view: no text
// filters, all statuses, all tracker sources, worst vehicles first.
func DefaultDashboardFilters() DashboardFilters {
	return DashboardFilters{
		StatusFilter:   []DisplayStatus{},
		EnabledSources: append([]TrackerSource(nil), AllTrackerSources...),
		SortKey:        "km_since_service",
		SortDir:        SortDesc,
	}
}
