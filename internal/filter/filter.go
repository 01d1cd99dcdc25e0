// Package filter projects enriched dashboard rows through the operator's
// filter and sort configuration. Pure and stable.
package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/cadugr/frotawatch/internal/models"
)

// Apply filters and sorts rows per cfg. The input slice is not modified.
func Apply(rows []models.EnrichedRow, cfg models.DashboardFilters) []models.EnrichedRow {
	out := make([]models.EnrichedRow, 0, len(rows))
	for _, r := range rows {
		if matches(r, cfg) {
			out = append(out, r)
		}
	}
	sortRows(out, cfg.SortKey, cfg.SortDir)
	return out
}

func matches(r models.EnrichedRow, cfg models.DashboardFilters) bool {
	if cfg.SearchPlate != "" &&
		!strings.Contains(strings.ToLower(r.Plate), strings.ToLower(cfg.SearchPlate)) {
		return false
	}
	if cfg.SearchModel != "" &&
		!strings.Contains(strings.ToLower(r.Model), strings.ToLower(cfg.SearchModel)) {
		return false
	}

	if len(cfg.StatusFilter) > 0 {
		found := false
		for _, s := range cfg.StatusFilter {
			if r.DisplayStatus == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return sourceMatches(r, cfg.EnabledSources)
}

// sourceMatches keeps the upstream convention: an empty source set shows
// only rows with no source or a panel reading, not nothing and not
// everything. Panel-sourced and sourceless rows always pass.
func sourceMatches(r models.EnrichedRow, enabled []models.TrackerSource) bool {
	if r.SourceUsed == "" || r.SourceUsed == models.SourcePanel {
		return true
	}
	for _, s := range enabled {
		if r.SourceUsed == string(s) {
			return true
		}
	}
	return false
}

// sortValue extracts the comparable value for a sort key. The bool reports
// whether the value is a string (locale compare) as opposed to numeric.
func sortValue(r models.EnrichedRow, key string) (str string, num float64, isStr, isNil bool) {
	switch key {
	case "plate":
		return r.Plate, 0, true, false
	case "model":
		return r.Model, 0, true, false
	case "last_service_date":
		return r.LastServiceDate, 0, true, false
	case "status", "display_status":
		return string(r.DisplayStatus), 0, true, false
	case "source_used":
		return r.SourceUsed, 0, true, false
	case "km_at_last_service":
		return "", float64(r.KmAtLastService), false, false
	case "current_km":
		if r.CurrentKm == nil {
			return "", 0, false, true
		}
		return "", float64(*r.CurrentKm), false, false
	case "km_since_service":
		if r.KmSinceService == nil {
			return "", 0, false, true
		}
		return "", float64(*r.KmSinceService), false, false
	default:
		return "", 0, false, true
	}
}

func sortRows(rows []models.EnrichedRow, key string, dir models.SortDirection) {
	if key == "" {
		return
	}
	desc := dir == models.SortDesc

	// Collators are not safe for concurrent use, so each sort gets its own.
	col := collate.New(language.BrazilianPortuguese)

	sort.SliceStable(rows, func(i, j int) bool {
		less := compare(col, rows[i], rows[j], key) < 0
		if desc {
			less = compare(col, rows[j], rows[i], key) < 0
		}
		return less
	})
}

// compare orders two rows by key. Nil values sort as the lowest possible
// value; strings use pt-BR collation, numbers plain relational compare.
func compare(col *collate.Collator, a, b models.EnrichedRow, key string) int {
	as, an, aIsStr, aNil := sortValue(a, key)
	bs, bn, bIsStr, bNil := sortValue(b, key)

	switch {
	case aNil && bNil:
		return 0
	case aNil:
		return -1
	case bNil:
		return 1
	}

	if aIsStr && bIsStr {
		return col.CompareString(as, bs)
	}
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	default:
		return 0
	}
}
