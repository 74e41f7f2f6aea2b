package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberwick/storefront/config"
	"github.com/emberwick/storefront/database/seeders"
	"github.com/emberwick/storefront/pkg/database"
	"github.com/emberwick/storefront/pkg/migration"
)

// bootDB loads config and opens the database connection. The memory
// backend has no schema to manage, so these commands refuse it.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	if config.DatabaseDriver() == "memory" {
		return fmt.Errorf("DB_DRIVER=memory has no database to manage")
	}
	return database.Connect()
}

// emberwick migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Running migrations…")
		return migration.New(database.DB).Run()
	},
}

// emberwick migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Rolling back last batch…")
		return migration.New(database.DB).Rollback()
	},
}

// emberwick migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		return migration.New(database.DB).Status()
	},
}

// emberwick seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Running seeders…")
		return seeders.RunAll(database.DB)
	},
}
