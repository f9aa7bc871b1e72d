package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply the goose migrations under db/migrations to the station database",
	}
	migrateRollback bool
	migrateStatus   bool
	migrateTo       int64
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration, or down to --to when set")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print the applied state of every migration and exit")
	migrateCmd.Flags().Int64Var(&migrateTo, "to", 0, "migrate up (or down with -r) to this version instead of the latest")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

// migrationCommand maps the flags onto a goose command and its arguments.
func migrationCommand() (string, []string) {
	switch {
	case migrateStatus:
		return "status", nil
	case migrateRollback && migrateTo > 0:
		return "down-to", []string{fmt.Sprint(migrateTo)}
	case migrateRollback:
		return "down", nil
	case migrateTo > 0:
		return "up-to", []string{fmt.Sprint(migrateTo)}
	}
	return "up", nil
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: open database: %w", err)
	}
	defer db.Close()
	goose.SetTableName("schema_migrations")

	command, args := migrationCommand()
	slog.Info("running migrations", "command", command, "dir", migrateDir)
	if err := goose.RunContext(ctx, command, db, migrateDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	slog.Info("migrations finished", "command", command)
	return nil
}
