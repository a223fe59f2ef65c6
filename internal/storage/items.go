package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keepitall/keepitall/internal/common"
	"github.com/keepitall/keepitall/internal/model"
	"github.com/keepitall/keepitall/internal/service"
)

const itemColumns = `id, name, description, make, model, serial_number, comment, photo_path, value, purchase_date`

// OnItemAdded persists a newly added item. It is the sync gateway's add
// path: idempotent, so replaying a notification for an item that already
// reached the store overwrites it with the same data.
func (s *SQLiteStorage) OnItemAdded(ctx context.Context, item model.Item, ownerID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return err
	}
	if err := validateItem(&item); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO items (
			id, owner_id, name, description, make, model,
			serial_number, comment, photo_path, value, purchase_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID,
		ownerID,
		item.Name,
		item.Description,
		item.Make,
		item.Model,
		item.SerialNumber,
		item.Comment,
		item.PhotoPath,
		item.Value,
		model.NormalizeDate(item.PurchaseDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
	}

	return nil
}

// OnItemDeleted removes an item from the store. Deleting an item that is
// already gone is not an error: the gateway contract treats deletes as
// per-item no-ops when the target is missing.
func (s *SQLiteStorage) OnItemDeleted(ctx context.Context, item model.Item, ownerID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return err
	}
	if err := validateString(item.ID, "item.ID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND owner_id = ?`,
		item.ID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", item.ID, err)
	}

	return nil
}

// SaveItems persists multiple items for an owner in one transaction. Used by
// bulk import.
func (s *SQLiteStorage) SaveItems(ctx context.Context, ownerID string, items []model.Item) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return err
	}
	if err := validateItems(items); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO items (
			id, owner_id, name, description, make, model,
			serial_number, comment, photo_path, value, purchase_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		_, err = stmt.ExecContext(ctx,
			item.ID,
			ownerID,
			item.Name,
			item.Description,
			item.Make,
			item.Model,
			item.SerialNumber,
			item.Comment,
			item.PhotoPath,
			item.Value,
			model.NormalizeDate(item.PurchaseDate),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// GetItemByID retrieves a single item belonging to an owner.
func (s *SQLiteStorage) GetItemByID(ctx context.Context, ownerID, id string) (*model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND owner_id = ?`,
		id, ownerID)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: item %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return item, nil
}

// GetItemsByOwner retrieves all of an owner's items in insertion order.
func (s *SQLiteStorage) GetItemsByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	return s.GetItems(ctx, ownerID, service.ItemFilter{})
}

// GetItems retrieves an owner's items with optional date-range filtering and
// paging, in insertion order.
func (s *SQLiteStorage) GetItems(ctx context.Context, ownerID string, filter service.ItemFilter) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: %v after %v", ErrInvalidDateRange, filter.StartDate, filter.EndDate)
	}

	queryStr := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ?`
	args := []any{ownerID}

	if filter.StartDate != nil {
		queryStr += ` AND purchase_date >= ?`
		args = append(args, model.NormalizeDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		queryStr += ` AND purchase_date <= ?`
		args = append(args, model.NormalizeDate(*filter.EndDate))
	}

	queryStr += ` ORDER BY created_at, rowid`

	if filter.Limit > 0 {
		queryStr += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			queryStr += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan item: %w", scanErr)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// GetItemCount returns the number of items an owner has in the store.
func (s *SQLiteStorage) GetItemCount(ctx context.Context, ownerID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE owner_id = ?`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*model.Item, error) {
	var item model.Item
	var description, mk, mdl, serial, comment, photo sql.NullString

	err := row.Scan(
		&item.ID,
		&item.Name,
		&description,
		&mk,
		&mdl,
		&serial,
		&comment,
		&photo,
		&item.Value,
		&item.PurchaseDate,
	)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	item.Make = mk.String
	item.Model = mdl.String
	item.SerialNumber = serial.String
	item.Comment = comment.String
	item.PhotoPath = photo.String
	item.PurchaseDate = model.NormalizeDate(item.PurchaseDate)

	return &item, nil
}
