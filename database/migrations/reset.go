package migrations

import (
	"context"
	"fmt"

	"github.com/rollcall/server/config"
	"github.com/rollcall/server/database"
)

// ResetDatabase drops every table this module owns so Reset can re-run every
// migration against a clean schema.
func ResetDatabase(cfg *config.Config) error {
	db, err := database.DBConn(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	fmt.Println("Resetting database: dropping all tables...")

	_, err = db.ExecContext(ctx, `
		DROP TABLE IF EXISTS device_submissions CASCADE;
		DROP TABLE IF EXISTS attendance_records CASCADE;
		DROP TABLE IF EXISTS preferences CASCADE;
		DROP TABLE IF EXISTS courses CASCADE;
		DROP TABLE IF EXISTS bun_migrations CASCADE;
		DROP TABLE IF EXISTS bun_migration_locks CASCADE;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}

	fmt.Println("Database reset complete")
	return nil
}
