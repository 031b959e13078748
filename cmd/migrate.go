/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"database/sql"
	"fmt"

	"github.com/codecoach/client/internal/db"
	"github.com/spf13/cobra"
)

var migrateSteps int

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the journal database schema",
	Long: `Manage the journal database schema. Migrations are embedded in the
binary and tracked in the journal_schema_migrations table.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(conn *sql.DB) error {
			if err := db.Migrate(conn); err != nil {
				return err
			}
			return logVersion(conn)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(conn *sql.DB) error {
			if err := db.Rollback(conn, migrateSteps); err != nil {
				return err
			}
			return logVersion(conn)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(conn *sql.DB) error {
			version, dirty, err := db.Version(conn)
			if err != nil {
				return err
			}
			state := "clean"
			if dirty {
				state = "dirty"
			}
			fmt.Printf("version %d (%s)\n", version, state)
			return nil
		})
	},
}

func withDatabase(cmd *cobra.Command, fn func(*sql.DB) error) error {
	conn, err := db.Open(cmd.Context(), cfg.Journal.Database)
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

func logVersion(conn *sql.DB) error {
	version, dirty, err := db.Version(conn)
	if err != nil {
		return err
	}
	log.Info().
		Str("database", cfg.Journal.Database.DBName).
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("journal schema migrated")
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)

	migrateDownCmd.Flags().IntVarP(&migrateSteps, "steps", "n", 1, "number of migrations to roll back")
}
