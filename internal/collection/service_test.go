package collection

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/keepitall/keepitall/internal/common"
	"github.com/keepitall/keepitall/internal/model"
	"github.com/keepitall/keepitall/internal/service"
)

// gatewayCall records one sync notification received by the mock gateway.
type gatewayCall struct {
	op     string
	itemID string
	owner  string
}

// mockGateway records sync notifications and can be made to fail.
type mockGateway struct {
	failWith error
	calls    []gatewayCall
}

func (g *mockGateway) OnItemAdded(_ context.Context, item model.Item, ownerID string) error {
	g.calls = append(g.calls, gatewayCall{op: "add", itemID: item.ID, owner: ownerID})
	return g.failWith
}

func (g *mockGateway) OnItemDeleted(_ context.Context, item model.Item, ownerID string) error {
	g.calls = append(g.calls, gatewayCall{op: "delete", itemID: item.ID, owner: ownerID})
	return g.failWith
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testOwner() model.User {
	return model.User{ID: "user-1", Name: "rcarver"}
}

func newTestService(items []model.Item) (*Service, *mockGateway) {
	gw := &mockGateway{}
	svc := NewService(testOwner(), items, gw)
	svc.SetRetryOptions(service.RetryOptions{MaxAttempts: 1, InitialDelay: time.Millisecond})
	return svc, gw
}

func itemAB() []model.Item {
	return []model.Item{
		{ID: "A", Name: "Armchair", Value: 10, PurchaseDate: date(2024, 1, 1)},
		{ID: "B", Name: "Bookshelf", Value: 5, PurchaseDate: date(2024, 2, 1)},
	}
}

func assertIDs(t *testing.T, items []model.Item, want ...string) {
	t.Helper()
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i].ID != want[i] {
			t.Fatalf("item %d: got id %q, want %q", i, items[i].ID, want[i])
		}
	}
}

func TestAddItem(t *testing.T) {
	svc, gw := newTestService(nil)
	ctx := context.Background()

	item := model.Item{ID: "A", Name: "Armchair", Value: 10, PurchaseDate: date(2024, 1, 1)}
	if err := svc.AddItem(ctx, item); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	assertIDs(t, svc.PersistedItems(), "A")
	assertIDs(t, svc.Items(), "A")
	if svc.TotalValue() != 10 {
		t.Errorf("TotalValue = %v, want 10", svc.TotalValue())
	}
	if len(gw.calls) != 1 || gw.calls[0].op != "add" || gw.calls[0].itemID != "A" || gw.calls[0].owner != "user-1" {
		t.Errorf("unexpected gateway calls: %+v", gw.calls)
	}
}

func TestAddItemDuplicateID(t *testing.T) {
	svc, gw := newTestService(itemAB())
	ctx := context.Background()

	err := svc.AddItem(ctx, model.Item{ID: "A", Name: "Another armchair", Value: 99})
	if !errors.Is(err, common.ErrDuplicateItem) {
		t.Fatalf("expected ErrDuplicateItem, got %v", err)
	}

	// Prior state untouched, no sync call made.
	assertIDs(t, svc.PersistedItems(), "A", "B")
	if len(gw.calls) != 0 {
		t.Errorf("expected no gateway calls, got %+v", gw.calls)
	}
}

func TestAddItemResetsActiveSearch(t *testing.T) {
	svc, _ := newTestService(itemAB())
	ctx := context.Background()

	svc.Search("Armchair")
	assertIDs(t, svc.Items(), "A")

	if err := svc.AddItem(ctx, model.Item{ID: "C", Name: "Couch", Value: 300}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	// An add rebinds the displayed collection to the full persisted set.
	assertIDs(t, svc.Items(), "A", "B", "C")
}

func TestAddItemSyncFailureKeepsLocalMutation(t *testing.T) {
	svc, gw := newTestService(nil)
	gw.failWith = fmt.Errorf("firestore unreachable")
	ctx := context.Background()

	err := svc.AddItem(ctx, model.Item{ID: "A", Name: "Armchair", Value: 10})
	if !errors.Is(err, common.ErrSyncFailed) {
		t.Fatalf("expected ErrSyncFailed, got %v", err)
	}

	// Local-first: the collection keeps the item even though sync failed.
	assertIDs(t, svc.PersistedItems(), "A")
}

func TestToggleSelectionOutsideDeleteMode(t *testing.T) {
	svc, _ := newTestService(itemAB())

	err := svc.ToggleSelection("A")
	if !errors.Is(err, common.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if svc.SelectedCount() != 0 {
		t.Errorf("selection should be empty, have %d", svc.SelectedCount())
	}
}

func TestToggleSelectionTwiceUnselects(t *testing.T) {
	svc, gw := newTestService(itemAB())
	ctx := context.Background()

	svc.EnterDeleteMode()
	if err := svc.ToggleSelection("A"); err != nil {
		t.Fatalf("ToggleSelection failed: %v", err)
	}
	if !svc.IsSelected("A") {
		t.Fatal("A should be selected")
	}
	if err := svc.ToggleSelection("A"); err != nil {
		t.Fatalf("ToggleSelection failed: %v", err)
	}
	if svc.IsSelected("A") {
		t.Fatal("A should be unselected after second toggle")
	}

	if err := svc.CommitDelete(ctx); err != nil {
		t.Fatalf("CommitDelete failed: %v", err)
	}

	// Nothing was deleted, mode exited, selection cleared.
	assertIDs(t, svc.PersistedItems(), "A", "B")
	if svc.InDeleteMode() {
		t.Error("delete mode should be exited")
	}
	if svc.SelectedCount() != 0 {
		t.Error("selection should be cleared")
	}
	if len(gw.calls) != 0 {
		t.Errorf("expected no gateway calls, got %+v", gw.calls)
	}
}

func TestCommitDeleteBatch(t *testing.T) {
	svc, gw := newTestService(itemAB())
	ctx := context.Background()

	svc.EnterDeleteMode()
	_ = svc.ToggleSelection("A")
	_ = svc.ToggleSelection("B")

	if err := svc.CommitDelete(ctx); err != nil {
		t.Fatalf("CommitDelete failed: %v", err)
	}

	assertIDs(t, svc.PersistedItems())
	assertIDs(t, svc.Items())
	if svc.TotalValue() != 0 {
		t.Errorf("TotalValue = %v, want 0", svc.TotalValue())
	}

	// One delete notification per item, in selection order.
	if len(gw.calls) != 2 {
		t.Fatalf("expected 2 gateway calls, got %d", len(gw.calls))
	}
	if gw.calls[0].op != "delete" || gw.calls[0].itemID != "A" {
		t.Errorf("first call = %+v, want delete A", gw.calls[0])
	}
	if gw.calls[1].op != "delete" || gw.calls[1].itemID != "B" {
		t.Errorf("second call = %+v, want delete B", gw.calls[1])
	}
}

func TestCommitDeleteMissingIDIsPerItemNoOp(t *testing.T) {
	svc, gw := newTestService(itemAB())
	ctx := context.Background()

	svc.EnterDeleteMode()
	_ = svc.ToggleSelection("A")
	_ = svc.ToggleSelection("ghost")
	_ = svc.ToggleSelection("B")

	if err := svc.CommitDelete(ctx); err != nil {
		t.Fatalf("CommitDelete failed: %v", err)
	}

	assertIDs(t, svc.PersistedItems())
	if len(gw.calls) != 2 {
		t.Fatalf("expected 2 gateway calls (ghost skipped), got %d", len(gw.calls))
	}
}

func TestCommitDeleteSyncFailureStillRemovesLocally(t *testing.T) {
	svc, gw := newTestService(itemAB())
	gw.failWith = fmt.Errorf("firestore unreachable")
	ctx := context.Background()

	svc.EnterDeleteMode()
	_ = svc.ToggleSelection("A")

	err := svc.CommitDelete(ctx)
	if !errors.Is(err, common.ErrSyncFailed) {
		t.Fatalf("expected ErrSyncFailed, got %v", err)
	}

	assertIDs(t, svc.PersistedItems(), "B")
	if svc.InDeleteMode() {
		t.Error("delete mode should be exited despite sync failure")
	}
}

func TestPressDeleteTwiceCommitsEmptyBatch(t *testing.T) {
	svc, gw := newTestService(itemAB())
	ctx := context.Background()

	// First press arms delete mode.
	if err := svc.PressDelete(ctx); err != nil {
		t.Fatalf("first press failed: %v", err)
	}
	if !svc.InDeleteMode() {
		t.Fatal("first press should arm delete mode")
	}

	// Second press with nothing selected commits an empty batch.
	if err := svc.PressDelete(ctx); err != nil {
		t.Fatalf("second press failed: %v", err)
	}
	if svc.InDeleteMode() {
		t.Error("second press should exit delete mode")
	}
	assertIDs(t, svc.PersistedItems(), "A", "B")
	if len(gw.calls) != 0 {
		t.Errorf("expected no gateway calls, got %+v", gw.calls)
	}
}

func TestQueriesRebuildFromPersistedSet(t *testing.T) {
	svc, _ := newTestService(itemAB())

	svc.Search("Armchair")
	assertIDs(t, svc.Items(), "A")

	// A sort does not remember the active search: it runs against the full
	// persisted collection.
	svc.Sort(model.SortByValue, model.SortAscending)
	assertIDs(t, svc.Items(), "B", "A")

	// Nor does a search remember an active filter.
	start, end := date(2024, 1, 15), date(2024, 2, 15)
	if err := svc.FilterByDateRange(&start, &end); err != nil {
		t.Fatalf("FilterByDateRange failed: %v", err)
	}
	assertIDs(t, svc.Items(), "B")

	svc.Search("")
	assertIDs(t, svc.Items(), "A", "B")
}

func TestFilterByDateRangeScenario(t *testing.T) {
	svc, _ := newTestService(itemAB())

	start, end := date(2024, 1, 15), date(2024, 2, 15)
	if err := svc.FilterByDateRange(&start, &end); err != nil {
		t.Fatalf("FilterByDateRange failed: %v", err)
	}

	assertIDs(t, svc.Items(), "B")
	if svc.TotalValue() != 5 {
		t.Errorf("TotalValue = %v, want 5", svc.TotalValue())
	}
	// The persisted collection is untouched by a filter.
	assertIDs(t, svc.PersistedItems(), "A", "B")
}

func TestFilterByDateRangeIncompleteBounds(t *testing.T) {
	svc, _ := newTestService(itemAB())

	svc.Search("Armchair")
	before := svc.Items()

	d := date(2024, 1, 1)
	for _, bounds := range []struct {
		start, end *time.Time
		name       string
	}{
		{name: "missing end", start: &d, end: nil},
		{name: "missing start", start: nil, end: &d},
		{name: "missing both", start: nil, end: nil},
	} {
		t.Run(bounds.name, func(t *testing.T) {
			err := svc.FilterByDateRange(bounds.start, bounds.end)
			if !errors.Is(err, common.ErrIncompleteDateRange) {
				t.Fatalf("expected ErrIncompleteDateRange, got %v", err)
			}
			// The prior displayed collection is left unchanged.
			assertIDs(t, svc.Items(), before[0].ID)
		})
	}
}

func TestTotalValueOnEmptyView(t *testing.T) {
	svc, _ := newTestService(itemAB())

	start, end := date(2030, 1, 1), date(2030, 12, 31)
	if err := svc.FilterByDateRange(&start, &end); err != nil {
		t.Fatalf("FilterByDateRange failed: %v", err)
	}

	assertIDs(t, svc.Items())
	if svc.TotalValue() != 0 {
		t.Errorf("TotalValue = %v, want exactly 0", svc.TotalValue())
	}
}

func TestAddDeleteSetAlgebra(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		item := model.Item{
			ID:           fmt.Sprintf("item-%d", i),
			Name:         fmt.Sprintf("Item %d", i),
			Value:        float64(i),
			PurchaseDate: date(2024, 1, 1+i),
		}
		if err := svc.AddItem(ctx, item); err != nil {
			t.Fatalf("AddItem(%d) failed: %v", i, err)
		}
	}

	svc.EnterDeleteMode()
	for _, id := range []string{"item-1", "item-3", "item-5", "item-7", "item-9"} {
		_ = svc.ToggleSelection(id)
	}
	if err := svc.CommitDelete(ctx); err != nil {
		t.Fatalf("CommitDelete failed: %v", err)
	}

	assertIDs(t, svc.PersistedItems(), "item-0", "item-2", "item-4", "item-6", "item-8")
	if svc.TotalValue() != 20 {
		t.Errorf("TotalValue = %v, want 20", svc.TotalValue())
	}
}

func TestItemsReturnsSnapshot(t *testing.T) {
	svc, _ := newTestService(itemAB())

	snapshot := svc.Items()
	snapshot[0].Name = "mutated"

	if svc.Items()[0].Name != "Armchair" {
		t.Error("mutating a snapshot must not affect the service's collection")
	}
}
