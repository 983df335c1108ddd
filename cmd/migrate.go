package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adri-yano/social-media-app/config"
	database "github.com/adri-yano/social-media-app/db"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(db *database.DB) error {
				if err := db.MigrateUp(); err != nil {
					return err
				}
				return printVersion(cmd, db)
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withDatabase(func(db *database.DB) error {
				if err := db.MigrateDown(steps); err != nil {
					return err
				}
				return printVersion(cmd, db)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(db *database.DB) error {
				return printVersion(cmd, db)
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func withDatabase(fn func(db *database.DB) error) error {
	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	db, err := database.NewConnection(database.Config{
		URL:          dbCfg.URL,
		MaxOpenConns: dbCfg.MaxOpenConns,
		MaxIdleConns: dbCfg.MaxIdleConns,
		MaxLifetime:  dbCfg.MaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}

func printVersion(cmd *cobra.Command, db *database.DB) error {
	version, dirty, err := db.MigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	cmd.Printf("schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
