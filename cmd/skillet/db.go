package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/db"
	"github.com/skillet-ai/skillet/pkg/db/migrations"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "History database management commands",
	Long:  `Commands for managing the skillet history database (migrations, status, etc.)`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database migration status",
	Long:  `Shows the current database migration status, including applied and pending migrations.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dbPath, err := db.DefaultDBPath()
		if err != nil {
			return err
		}
		sqlDB, err := db.Open(ctx, dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer sqlDB.Close()

		runner := db.NewMigrationRunner(sqlDB)
		applied, err := runner.GetAppliedVersions(ctx)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}

		appliedMap := make(map[int64]bool)
		for _, v := range applied {
			appliedMap[v] = true
		}

		allMigrations := migrations.All()

		fmt.Println("Database Migration Status")
		fmt.Println("=========================")
		fmt.Printf("Database: %s\n\n", dbPath)

		appliedCount := 0
		for _, m := range allMigrations {
			status := "[ ]"
			if appliedMap[m.Version] {
				status = "[x]"
				appliedCount++
			}
			fmt.Printf("%s %d - %s\n", status, m.Version, m.Description)
		}

		fmt.Printf("\nApplied: %d/%d migrations\n", appliedCount, len(allMigrations))

		return nil
	},
}

var dbRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Rollback the last database migration",
	Long:  `Rolls back the most recently applied database migration. Useful for testing or downgrading skillet.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dbPath, err := db.DefaultDBPath()
		if err != nil {
			return err
		}
		sqlDB, err := db.Open(ctx, dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer sqlDB.Close()

		runner := db.NewMigrationRunner(sqlDB)
		applied, err := runner.GetAppliedVersions(ctx)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}

		if len(applied) == 0 {
			presenter.Warning("No migrations to rollback")
			return nil
		}

		lastVersion := applied[len(applied)-1]

		var description string
		for _, m := range migrations.All() {
			if m.Version == lastVersion {
				description = m.Description
				break
			}
		}

		presenter.Info(fmt.Sprintf("Rolling back migration %d: %s", lastVersion, description))

		if err := runner.Rollback(ctx, migrations.All()); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}

		presenter.Success(fmt.Sprintf("Successfully rolled back migration %d", lastVersion))

		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbRollbackCmd)
	rootCmd.AddCommand(dbCmd)
}
