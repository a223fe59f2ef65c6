package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keepitall/keepitall/internal/cli"
	"github.com/keepitall/keepitall/internal/common"
	"github.com/keepitall/keepitall/internal/config"
	"github.com/keepitall/keepitall/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has all the required
tables and indexes for the application to function properly.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/keepitall/keepitall.db"
	}
	dbPath = config.ExpandPath(dbPath)

	common.LogInfo("Starting database migration", common.Fields{"database": dbPath})

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("database schema at version %d", storage.ExpectedSchemaVersion)))
	return nil
}
