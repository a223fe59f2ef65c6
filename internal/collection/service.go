// Package collection implements the item collection service: the component
// that owns the authoritative in-memory set of a user's items, applies query
// operations over it, performs selection-based batch deletion, and pushes
// every mutation to the sync gateway.
//
// Two collections exist at all times and must never be confused. The
// persisted collection is the true owned-items set, mutated only by add and
// delete and always synced. The displayed collection is whatever the last
// search, filter, or sort produced; it is a view, never synced, and is
// rebuilt from the persisted collection after every mutation.
package collection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/keepitall/keepitall/internal/common"
	"github.com/keepitall/keepitall/internal/model"
	"github.com/keepitall/keepitall/internal/query"
	"github.com/keepitall/keepitall/internal/service"
)

// Service orchestrates a single owner's item collection. It is not safe for
// concurrent use: all operations are expected to run on one logical thread
// of control, driven by discrete UI or CLI events.
type Service struct {
	gateway    service.SyncGateway
	selected   map[string]struct{}
	logger     *slog.Logger
	owner      model.User
	persisted  []model.Item
	displayed  []model.Item
	selection  []string
	retryOpts  service.RetryOptions
	deleteMode bool
}

// NewService creates a collection service for the given owner, seeded with
// that owner's persisted items. The displayed collection starts as the full
// persisted set.
func NewService(owner model.User, items []model.Item, gateway service.SyncGateway) *Service {
	s := &Service{
		owner:     owner,
		gateway:   gateway,
		persisted: make([]model.Item, len(items)),
		selected:  make(map[string]struct{}),
		logger:    slog.Default().With("component", "collection", "owner", owner.Name),
		retryOpts: service.RetryOptions{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond},
	}
	copy(s.persisted, items)
	s.resetDisplayed()
	return s
}

// Owner returns the user this collection belongs to.
func (s *Service) Owner() model.User {
	return s.owner
}

// SetRetryOptions overrides the retry policy applied to sync gateway calls.
func (s *Service) SetRetryOptions(opts service.RetryOptions) {
	s.retryOpts = opts
}

// AddItem inserts a new item into the persisted collection and pushes it to
// the sync gateway. A colliding id is rejected with ErrDuplicateItem and
// nothing changes, including no sync call. Any active search or filter is
// reset: the displayed collection rebinds to the full persisted set.
func (s *Service) AddItem(ctx context.Context, item model.Item) error {
	if s.indexOf(item.ID) >= 0 {
		return fmt.Errorf("%w: %s", common.ErrDuplicateItem, item.ID)
	}

	s.persisted = append(s.persisted, item)
	s.resetDisplayed()

	// Persistence is best-effort: a gateway failure is reported but the
	// local mutation stands.
	if err := s.pushAdd(ctx, item); err != nil {
		common.LogError(err, "item sync failed after add",
			common.Fields{"item_id": item.ID, "owner": s.owner.Name})
		return fmt.Errorf("%w: %v", common.ErrSyncFailed, err)
	}

	return nil
}

// EnterDeleteMode switches the service into delete mode, in which item
// selection toggles membership in the pending-removal set instead of opening
// item detail. Entering while already in delete mode is a no-op.
func (s *Service) EnterDeleteMode() {
	s.deleteMode = true
}

// InDeleteMode reports whether delete mode is active.
func (s *Service) InDeleteMode() bool {
	return s.deleteMode
}

// ToggleSelection adds or removes an item id from the pending-removal set.
// It is only valid in delete mode.
func (s *Service) ToggleSelection(id string) error {
	if !s.deleteMode {
		return fmt.Errorf("%w: selection toggled outside delete mode", common.ErrInvalidState)
	}

	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		for i, selID := range s.selection {
			if selID == id {
				s.selection = append(s.selection[:i], s.selection[i+1:]...)
				break
			}
		}
		return nil
	}

	s.selected[id] = struct{}{}
	s.selection = append(s.selection, id)
	return nil
}

// IsSelected reports whether an item id is marked for deletion.
func (s *Service) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// SelectedCount returns the number of items marked for deletion.
func (s *Service) SelectedCount() int {
	return len(s.selection)
}

// CommitDelete removes every selected item from both collections, pushes one
// delete notification per item in selection order, clears the selection, and
// exits delete mode. Ids no longer present in the persisted collection are
// skipped without aborting the batch. Sync failures are collected and
// surfaced but never restore a removed item.
func (s *Service) CommitDelete(ctx context.Context) error {
	var syncErrs []error

	for _, id := range s.selection {
		idx := s.indexOf(id)
		if idx < 0 {
			s.logger.Warn("selected item no longer present, skipping", "item_id", id)
			continue
		}
		item := s.persisted[idx]
		s.persisted = append(s.persisted[:idx], s.persisted[idx+1:]...)
		s.removeDisplayed(id)

		if err := s.pushDelete(ctx, item); err != nil {
			common.LogError(err, "item sync failed after delete",
				common.Fields{"item_id": item.ID, "owner": s.owner.Name})
			syncErrs = append(syncErrs, err)
		}
	}

	s.selection = nil
	s.selected = make(map[string]struct{})
	s.deleteMode = false

	if len(syncErrs) > 0 {
		return fmt.Errorf("%w: %d of the deletions did not reach the store", common.ErrSyncFailed, len(syncErrs))
	}
	return nil
}

// PressDelete implements the two-press delete button: the first press arms
// delete mode, the second commits whatever is selected. Committing an empty
// selection removes nothing but still clears delete mode. There is no
// separate cancel path.
func (s *Service) PressDelete(ctx context.Context) error {
	if !s.deleteMode {
		s.EnterDeleteMode()
		return nil
	}
	return s.CommitDelete(ctx)
}

// Search rebuilds the displayed collection with the items matching the
// query. The search always runs against the full persisted set, not the
// previously displayed one, so consecutive queries do not compose.
func (s *Service) Search(q string) {
	s.displayed = query.Search(s.persisted, q)
}

// FilterByDateRange rebuilds the displayed collection with the items
// purchased within [start, end] inclusive. Both bounds are required; a
// missing bound returns ErrIncompleteDateRange and leaves the displayed
// collection untouched. Like Search, the filter runs against the full
// persisted set.
func (s *Service) FilterByDateRange(start, end *time.Time) error {
	if start == nil || end == nil {
		return common.ErrIncompleteDateRange
	}
	s.displayed = query.FilterByDateRange(s.persisted, *start, *end)
	return nil
}

// Sort reorders the displayed collection by the given key and direction,
// starting from the full persisted set. The sort is stable.
func (s *Service) Sort(key model.SortKey, dir model.SortDirection) {
	s.displayed = query.SortItems(s.persisted, key, dir)
}

// Items returns a snapshot of the displayed collection for rendering.
func (s *Service) Items() []model.Item {
	out := make([]model.Item, len(s.displayed))
	copy(out, s.displayed)
	return out
}

// PersistedItems returns a snapshot of the full persisted collection.
func (s *Service) PersistedItems() []model.Item {
	out := make([]model.Item, len(s.persisted))
	copy(out, s.persisted)
	return out
}

// TotalValue recomputes the total value of the displayed collection. The
// total always matches what is currently shown, including after a filter
// narrows the visible set.
func (s *Service) TotalValue() float64 {
	return query.TotalValue(s.displayed)
}

func (s *Service) pushAdd(ctx context.Context, item model.Item) error {
	return common.WithRetry(ctx, func() error {
		return s.gateway.OnItemAdded(ctx, item, s.owner.ID)
	}, s.retryOpts)
}

func (s *Service) pushDelete(ctx context.Context, item model.Item) error {
	return common.WithRetry(ctx, func() error {
		return s.gateway.OnItemDeleted(ctx, item, s.owner.ID)
	}, s.retryOpts)
}

func (s *Service) resetDisplayed() {
	s.displayed = make([]model.Item, len(s.persisted))
	copy(s.displayed, s.persisted)
}

func (s *Service) removeDisplayed(id string) {
	for i, item := range s.displayed {
		if item.ID == id {
			s.displayed = append(s.displayed[:i], s.displayed[i+1:]...)
			return
		}
	}
}

func (s *Service) indexOf(id string) int {
	for i, item := range s.persisted {
		if item.ID == id {
			return i
		}
	}
	return -1
}
