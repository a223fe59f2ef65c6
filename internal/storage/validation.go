// Package storage provides the data persistence layer for the keepitall application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keepitall/keepitall/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidItem      = errors.New("invalid item")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateItems validates a slice of items.
func validateItems(items []model.Item) error {
	if items == nil {
		return fmt.Errorf("%w: items", ErrNilParameter)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: items", ErrEmptySlice)
	}

	for i, item := range items {
		if err := validateItem(&item); err != nil {
			return fmt.Errorf("item at index %d: %w", i, err)
		}
	}
	return nil
}

// validateItem validates a single item.
func validateItem(item *model.Item) error {
	if item == nil {
		return fmt.Errorf("%w: item", ErrNilParameter)
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidItem)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidItem)
	}
	if item.PurchaseDate.IsZero() {
		return fmt.Errorf("%w: missing purchase date", ErrInvalidItem)
	}
	return nil
}
