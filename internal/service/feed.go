package service

import (
	"sort"
	"strings"
	"time"

	"github.com/fleetms/vms-backend/internal/dto"
)

// mergeActivity flattens per-entity slices into one feed ordered newest
// first, applies the filter, and cuts the requested page. Pure so the
// merge semantics stay testable without a database.
func mergeActivity(items []dto.ActivityItem, filter dto.ActivityFilter) dto.ActivityPage {
	filtered := items[:0:0]
	for _, item := range items {
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(item.Message), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.From != nil && item.Time.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !item.Time.Before(filter.To.AddDate(0, 0, 1)) {
			continue
		}
		filtered = append(filtered, item)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Time.After(filtered[j].Time)
	})

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 10
	}
	total := len(filtered)
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return dto.ActivityPage{
		Data:        filtered[start:end],
		Total:       total,
		CurrentPage: page,
		PerPage:     perPage,
		LastPage:    lastPage,
	}
}

// monthLabels returns the last n month labels ending at now, oldest
// first, formatted like "Jan 2006".
func monthLabels(now time.Time, n int) []time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		months = append(months, first.AddDate(0, -i, 0))
	}
	return months
}
