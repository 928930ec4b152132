package migrations

import (
	"context"
	"fmt"
	"log"

	"github.com/rollcall/server/config"
	"github.com/rollcall/server/database"
	"github.com/uptrace/bun/migrate"
)

// Migrate validates the registered migration graph, prints the plan, and
// applies every pending migration.
func Migrate(cfg *config.Config) {
	db, err := database.DBConn(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	migrator := migrate.NewMigrator(db, Migrations)
	ctx := context.Background()

	if err := migrator.Init(ctx); err != nil {
		log.Fatal(err)
	}

	if err := ValidateMigrations(); err != nil {
		log.Fatalf("Migration validation failed: %v", err)
	}
	PrintMigrationPlan()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		log.Fatal(err)
	}

	if group.ID == 0 {
		fmt.Println("No new migrations to run")
	} else {
		fmt.Printf("Migrated to %s\n", group)
	}
}

// MigrateStatus prints which registered migrations have been applied.
func MigrateStatus(cfg *config.Config) {
	db, err := database.DBConn(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		log.Fatal(err)
	}

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Migration Status:")
	fmt.Println("=================")
	if len(ms) == 0 {
		fmt.Println("No migrations found")
		return
	}

	for _, m := range ms {
		status := "PENDING"
		if m.MigratedAt.Unix() > 0 {
			status = "APPLIED"
		}

		desc := ""
		if meta, ok := MigrationRegistry[m.Name]; ok {
			desc = fmt.Sprintf(" - %s", meta.Description)
		}

		fmt.Printf("V%s: %s%s\n", m.Name, status, desc)
	}
}

// Reset drops every table this module owns and re-runs every migration from
// scratch. Destructive — callers must confirm with the operator first.
func Reset(cfg *config.Config) {
	if err := ResetDatabase(cfg); err != nil {
		log.Fatalf("Failed to reset database: %v", err)
	}

	db, err := database.DBConn(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Running all migrations...")
	group, err := migrator.Migrate(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Database reset and migration completed successfully. Migrated to %s\n", group)
}
