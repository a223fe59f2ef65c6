// Package query implements the stateless query engine: search, date-range
// filtering, and sorting over a slice of items. Every function returns a
// freshly allocated slice and never mutates its input, so callers can derive
// a displayed view from the persisted collection without aliasing it.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/keepitall/keepitall/internal/model"
)

// Search returns the items matching a free-text query. An empty query
// returns the full input in its original order.
func Search(items []model.Item, query string) []model.Item {
	result := make([]model.Item, 0, len(items))
	for _, item := range items {
		if item.MatchesQuery(query) {
			result = append(result, item)
		}
	}
	return result
}

// FilterByDateRange returns the items whose purchase date falls within
// [start, end] inclusive. Bounds are compared at day granularity.
func FilterByDateRange(items []model.Item, start, end time.Time) []model.Item {
	startDay := model.NormalizeDate(start)
	endDay := model.NormalizeDate(end)

	result := make([]model.Item, 0, len(items))
	for _, item := range items {
		day := model.NormalizeDate(item.PurchaseDate)
		if !day.Before(startDay) && !day.After(endDay) {
			result = append(result, item)
		}
	}
	return result
}

// SortItems returns a new ordering of the items by the given key and
// direction. The sort is stable: items with equal keys keep their relative
// input order.
func SortItems(items []model.Item, key model.SortKey, dir model.SortDirection) []model.Item {
	result := make([]model.Item, len(items))
	copy(result, items)

	var less func(a, b model.Item) bool
	switch key {
	case model.SortByName:
		less = func(a, b model.Item) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case model.SortByValue:
		less = func(a, b model.Item) bool {
			return a.Value < b.Value
		}
	case model.SortByDate:
		less = func(a, b model.Item) bool {
			return a.PurchaseDate.Before(b.PurchaseDate)
		}
	default:
		return result
	}

	sort.SliceStable(result, func(i, j int) bool {
		if dir == model.SortDescending {
			return less(result[j], result[i])
		}
		return less(result[i], result[j])
	})

	return result
}

// TotalValue sums the monetary value of the given items. The displayed
// total is always recomputed from the current view rather than maintained
// incrementally, so it matches whatever is shown.
func TotalValue(items []model.Item) float64 {
	var total float64
	for _, item := range items {
		total += item.Value
	}
	return total
}
