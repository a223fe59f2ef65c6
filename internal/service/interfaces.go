// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/keepitall/keepitall/internal/model"
)

// ItemFilter defines filtering options for item queries against storage.
type ItemFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	SyncGateway

	// Item operations
	SaveItems(ctx context.Context, ownerID string, items []model.Item) error
	GetItemByID(ctx context.Context, ownerID, id string) (*model.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID string) ([]model.Item, error)
	GetItems(ctx context.Context, ownerID string, filter ItemFilter) ([]model.Item, error)
	GetItemCount(ctx context.Context, ownerID string) (int, error)

	// User operations
	CreateUser(ctx context.Context, name string) (*model.User, error)
	GetUserByName(ctx context.Context, name string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, name string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// SyncGateway is the persistence boundary that receives add and delete
// notifications from the item collection service. Calls are best-effort:
// a failure is reported but never reverses the local mutation.
type SyncGateway interface {
	OnItemAdded(ctx context.Context, item model.Item, ownerID string) error
	OnItemDeleted(ctx context.Context, item model.Item, ownerID string) error
}

// OwnerResolver resolves a username to an owner identity and that owner's
// persisted items at session-start time.
type OwnerResolver interface {
	Resolve(ctx context.Context, username string) (*model.User, []model.Item, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
