package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/keepitall/keepitall/internal/collection"
	"github.com/keepitall/keepitall/internal/common"
	"github.com/keepitall/keepitall/internal/config"
	"github.com/keepitall/keepitall/internal/session"
	"github.com/keepitall/keepitall/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/keepitall/keepitall.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// startSession resolves the owner and builds a collection service over their
// persisted items. The caller owns closing the returned store.
func startSession(ctx context.Context, username string) (*collection.Service, *storage.SQLiteStorage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	owner, items, err := session.NewResolver(store).Resolve(ctx, username)
	if err != nil {
		_ = store.Close()
		switch {
		case errors.Is(err, common.ErrUsernameMissing):
			return nil, nil, common.NewUserError("no user given, pass --user", err)
		case errors.Is(err, common.ErrUserNotFound):
			return nil, nil, common.NewUserError("unknown user, register one with 'keepitall users add'", err)
		}
		return nil, nil, err
	}

	return collection.NewService(*owner, items, store), store, nil
}
