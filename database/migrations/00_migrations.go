// Package migrations holds the bun-migrate schema for the attendance
// kernel: courses, attendance records, device submissions, and
// preferences.
package migrations

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migration describes a single schema change with metadata used for
// ordering and the human-readable plan/status output.
type Migration struct {
	Version     string
	Description string
	DependsOn   []string
	Up          func(ctx context.Context, db *bun.DB) error
	Down        func(ctx context.Context, db *bun.DB) error
}

// Migrations is the bun-migrate registry that actually runs migrations.
var Migrations = migrate.NewMigrations()

// MigrationRegistry keeps the metadata (version, description, dependencies)
// for every migration registered with Migrations.
var MigrationRegistry = make(map[string]*Migration)

// registerMigration records migration in MigrationRegistry and registers its
// Up/Down functions with Migrations.
func registerMigration(m *Migration) {
	MigrationRegistry[m.Version] = m

	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Printf("Running migration V%s: %s\n", m.Version, m.Description)
			if err := m.Up(ctx, db); err != nil {
				return fmt.Errorf("migration V%s: %w", m.Version, err)
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Printf("Rolling back migration V%s: %s\n", m.Version, m.Description)
			return m.Down(ctx, db)
		},
	)
}

// RegisteredMigrations returns every registered migration ordered by
// semantic version.
func RegisteredMigrations() []*Migration {
	out := make([]*Migration, 0, len(MigrationRegistry))
	for _, m := range MigrationRegistry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return compareVersions(out[i].Version, out[j].Version) < 0
	})
	return out
}

// compareVersions compares two dotted version strings numerically, so
// "1.10.0" sorts after "1.9.0" rather than before it.
func compareVersions(a, b string) int {
	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")

	max := len(partsA)
	if len(partsB) > max {
		max = len(partsB)
	}

	for i := 0; i < max; i++ {
		var numA, numB int
		if i < len(partsA) {
			numA, _ = strconv.Atoi(partsA[i])
		}
		if i < len(partsB) {
			numB, _ = strconv.Atoi(partsB[i])
		}
		if numA != numB {
			if numA < numB {
				return -1
			}
			return 1
		}
	}
	return 0
}

// ValidateMigrations checks that every DependsOn reference points at a
// registered migration. It is a pure in-memory check, run before Migrate
// applies anything against a live database.
func ValidateMigrations() error {
	migrations := RegisteredMigrations()

	versions := make(map[string]bool, len(migrations))
	for _, m := range migrations {
		versions[m.Version] = true
	}

	for _, m := range migrations {
		for _, dep := range m.DependsOn {
			if !versions[dep] {
				return fmt.Errorf("migration %s depends on %s, but it doesn't exist", m.Version, dep)
			}
		}
	}

	return nil
}

// PrintMigrationPlan prints every registered migration in applied order.
func PrintMigrationPlan() {
	migrations := RegisteredMigrations()

	fmt.Println("Migration Plan:")
	fmt.Println("===============")
	for i, m := range migrations {
		deps := strings.Join(m.DependsOn, ", ")
		if deps == "" {
			deps = "none"
		}
		fmt.Printf("%d. V%s - %s (Dependencies: %s)\n", i+1, m.Version, m.Description, deps)
	}
	fmt.Println("===============")
}
