package model

import "fmt"

// SortKey selects the item field a sort operation orders by.
type SortKey string

// Supported sort keys.
const (
	SortByName  SortKey = "name"
	SortByValue SortKey = "value"
	SortByDate  SortKey = "date"
)

// SortDirection selects ascending or descending order.
type SortDirection string

// Supported sort directions.
const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// ParseSortKey converts user input into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortByName, SortByValue, SortByDate:
		return SortKey(s), nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want name, value, or date)", s)
	}
}

// ParseSortDirection converts user input into a SortDirection.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(s) {
	case SortAscending, SortDescending:
		return SortDirection(s), nil
	default:
		return "", fmt.Errorf("unknown sort direction %q (want asc or desc)", s)
	}
}
