package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wayhaul/wayhaul-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestTripsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_trips.sql")

	checks := []string{
		"CREATE TABLE trips",
		"CHECK (capacity BETWEEN 1 AND 10)",
		"CHECK (available_capacity >= 0 AND available_capacity <= capacity)",
		"DROP TABLE trips",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPresenceMigrationEnforcesSingleActiveRow(t *testing.T) {
	content := readMigration(t, "*_create_locations.sql")

	checks := []string{
		"CREATE UNIQUE INDEX uq_location_presences_active",
		"WHERE is_active",
		"CHECK (current_user_count >= 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
