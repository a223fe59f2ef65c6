package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepitall/keepitall/internal/collection"
	"github.com/keepitall/keepitall/internal/model"
	"github.com/keepitall/keepitall/internal/service"
)

type nopGateway struct{}

func (nopGateway) OnItemAdded(_ context.Context, _ model.Item, _ string) error   { return nil }
func (nopGateway) OnItemDeleted(_ context.Context, _ model.Item, _ string) error { return nil }

func newTestModel() Model {
	owner := model.User{ID: "u1", Name: "tester"}
	items := []model.Item{
		{ID: "a", Name: "Armchair", Value: 10, PurchaseDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Name: "Bookshelf", Value: 5, PurchaseDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	svc := collection.NewService(owner, items, nopGateway{})
	svc.SetRetryOptions(service.RetryOptions{MaxAttempts: 1})
	return NewModel(svc)
}

func keyPress(m Model, keys string) Model {
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestNewModelShowsAllItems(t *testing.T) {
	m := newTestModel()

	assert.Len(t, m.table.Rows(), 2)
	assert.Contains(t, m.View(), "Armchair")
	assert.Contains(t, m.View(), "Total Value: $15.00")
}

func TestCursorKeysMoveSelection(t *testing.T) {
	m := newTestModel()
	require.Equal(t, 0, m.table.Cursor())

	m = keyPress(m, "j")
	assert.Equal(t, 1, m.table.Cursor())

	m = keyPress(m, "k")
	assert.Equal(t, 0, m.table.Cursor())
}

func TestDeleteModeTwoPressFlow(t *testing.T) {
	m := newTestModel()

	// First press arms delete mode.
	m = keyPress(m, "d")
	require.True(t, m.svc.InDeleteMode())
	assert.Contains(t, m.View(), "DELETE MODE")

	// Toggle-select the item under the cursor.
	m = keyPress(m, "x")
	assert.Equal(t, 1, m.svc.SelectedCount())

	// Second press commits the batch.
	m = keyPress(m, "d")
	assert.False(t, m.svc.InDeleteMode())
	assert.Len(t, m.svc.PersistedItems(), 1)
	assert.Len(t, m.table.Rows(), 1)
}

func TestDeleteModeSecondPressWithoutSelection(t *testing.T) {
	m := newTestModel()

	m = keyPress(m, "d")
	m = keyPress(m, "d")

	// Empty batch: nothing removed, mode cleared.
	assert.False(t, m.svc.InDeleteMode())
	assert.Len(t, m.svc.PersistedItems(), 2)
}

func TestToggleSelectOutsideDeleteModeWarns(t *testing.T) {
	m := newTestModel()

	m = keyPress(m, "x")
	assert.Equal(t, 0, m.svc.SelectedCount())
	assert.Contains(t, m.View(), "delete mode")
}

func TestIncrementalSearch(t *testing.T) {
	m := newTestModel()

	m = keyPress(m, "/")
	assert.Equal(t, ModeSearch, m.mode)

	// Each keystroke narrows the displayed collection.
	m = keyPress(m, "b")
	assert.Len(t, m.table.Rows(), 1)
	assert.Contains(t, m.View(), "Bookshelf")
	assert.Contains(t, m.View(), "Total Value: $5.00")

	// Leaving search keeps the query applied.
	m = keyPress(m, "esc")
	assert.Equal(t, ModeBrowse, m.mode)
	assert.Len(t, m.table.Rows(), 1)
}

func TestSortKeysToggleDirection(t *testing.T) {
	m := newTestModel()

	m = keyPress(m, "2") // sort by value ascending
	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Bookshelf", rows[0][1])

	m = keyPress(m, "2") // same key flips to descending
	rows = m.table.Rows()
	assert.Equal(t, "Armchair", rows[0][1])
}

func TestDetailViewOpensOnEnter(t *testing.T) {
	m := newTestModel()

	m = keyPress(m, "enter")
	assert.Equal(t, ModeDetail, m.mode)
	assert.Contains(t, m.View(), "Serial number")

	// Any key returns to the browse view.
	m = keyPress(m, "z")
	assert.Equal(t, ModeBrowse, m.mode)
}
