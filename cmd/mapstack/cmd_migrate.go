package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/mapstack/config"
	"github.com/shashiranjanraj/mapstack/pkg/database"
	"github.com/shashiranjanraj/mapstack/pkg/migration"
)

// migrationRunner opens the state store without booting the full client;
// migrate commands must work before any session exists.
func migrationRunner() (*migration.Runner, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	return migration.New(database.DB), nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending state store migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := migrationRunner()
		if err != nil {
			return err
		}
		return runner.Run()
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Reverse the last migration batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := migrationRunner()
		if err != nil {
			return err
		}
		return runner.Rollback()
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "List applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := migrationRunner()
		if err != nil {
			return err
		}
		return runner.Status()
	},
}
