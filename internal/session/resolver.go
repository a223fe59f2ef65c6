// Package session resolves a username into an owner identity and that
// owner's persisted item collection at service-start time. Resolution
// failures are fatal to the session: the collection service is never
// constructed without a valid owner.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/keepitall/keepitall/internal/common"
	"github.com/keepitall/keepitall/internal/model"
	"github.com/keepitall/keepitall/internal/service"
)

// Resolver looks up owners in the persistent store.
type Resolver struct {
	store service.Storage
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store service.Storage) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps a username to its owner record and loads the owner's
// persisted items in insertion order.
func (r *Resolver) Resolve(ctx context.Context, username string) (*model.User, []model.Item, error) {
	if username == "" {
		return nil, nil, common.ErrUsernameMissing
	}

	user, err := r.store.GetUserByName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %q", common.ErrUserNotFound, username)
		}
		return nil, nil, fmt.Errorf("failed to resolve owner %q: %w", username, err)
	}

	items, err := r.store.GetItemsByOwner(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load items for %q: %w", username, err)
	}

	return user, items, nil
}
