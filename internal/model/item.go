// Package model defines the core domain types for the inventory tracker.
package model

import (
	"strings"
	"time"
)

// Item represents a single inventory entry owned by a user.
type Item struct {
	PurchaseDate time.Time
	ID           string
	Name         string
	Description  string
	Make         string
	Model        string
	SerialNumber string
	Comment      string
	PhotoPath    string
	Value        float64
}

// MatchesQuery reports whether the item matches a free-text search query.
// Matching is a case-insensitive substring check across the item's textual
// fields. An empty query matches every item.
func (i *Item) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{i.Name, i.Description, i.Make, i.Model, i.Comment} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// NormalizeDate truncates a timestamp to midnight UTC. Purchase dates carry
// day granularity only; storing and comparing them at midnight UTC keeps
// range filters inclusive at both ends.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
