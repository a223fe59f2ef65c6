package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/keepitall/keepitall/internal/common"
)

func TestSQLiteStorage_CreateUser(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected a generated user id")
	}
	if user.Name != "alice" {
		t.Errorf("user name = %q, want %q", user.Name, "alice")
	}

	// Duplicate names are rejected.
	if _, err := store.CreateUser(ctx, "alice"); !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}

	// Empty names are rejected.
	if _, err := store.CreateUser(ctx, "  "); err == nil {
		t.Error("expected error for blank username")
	}
}

func TestSQLiteStorage_GetUserByName(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.GetUserByName(ctx, "nobody"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	created, err := store.CreateUser(ctx, "bob")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := store.GetUserByName(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserByName failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("user id = %q, want %q", got.ID, created.ID)
	}
}

func TestSQLiteStorage_DeleteUserRemovesItems(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "carol")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := store.SaveItems(ctx, user.ID, createTestItems(3)); err != nil {
		t.Fatalf("SaveItems failed: %v", err)
	}

	if err := store.DeleteUser(ctx, "carol"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := store.GetUserByName(ctx, "carol"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	items, err := store.GetItemsByOwner(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetItemsByOwner failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items after owner delete, got %d", len(items))
	}

	users, err := store.GetAllUsers(ctx)
	if err != nil {
		t.Fatalf("GetAllUsers failed: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no users, got %d", len(users))
	}
}
