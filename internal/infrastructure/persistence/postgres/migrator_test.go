// internal/infrastructure/persistence/postgres/migrator_test.go
package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		file    string
		id      int
		name    string
		wantErr bool
	}{
		{"001_create_interaction_log.sql", 1, "create interaction log", false},
		{"012_add_index.sql", 12, "add index", false},
		{"create.sql", 0, "", true},
		{"abc_create.sql", 0, "", true},
		{"000_zero.sql", 0, "", true},
	}

	for _, tt := range tests {
		id, name, err := parseMigrationFilename(tt.file)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.file, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (id != tt.id || name != tt.name) {
			t.Errorf("%s: got (%d, %q), want (%d, %q)", tt.file, id, name, tt.id, tt.name)
		}
	}
}

func TestEmbeddedMigrationsLoad(t *testing.T) {
	m, err := NewMigrator(nil)
	if err != nil {
		t.Fatalf("NewMigrator: %v", err)
	}

	first, ok := m.migrations[1]
	if !ok {
		t.Fatal("migration 001 not loaded")
	}
	if !strings.Contains(first.SQL, "CREATE TABLE IF NOT EXISTS interaction_log") {
		t.Fatalf("unexpected SQL: %s", first.SQL)
	}
	if strings.Contains(first.SQL, "DROP TABLE") {
		t.Fatal("down section leaked into up SQL")
	}
	if first.Description == "No description" {
		t.Fatal("description not extracted")
	}
	if len(first.Checksum) != 64 {
		t.Fatalf("checksum length = %d", len(first.Checksum))
	}
}

func TestLoadMigrationsRejectsGaps(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_first.sql": {Data: []byte("SELECT 1;")},
		"m/003_third.sql": {Data: []byte("SELECT 3;")},
	}

	m := &Migrator{migrations: map[int]*Migration{}}
	if err := m.LoadMigrations(fsys, "m"); err == nil {
		t.Fatal("expected error for missing migration 002")
	}
}

func TestChecksumChangesWithContent(t *testing.T) {
	if calculateChecksum("a") == calculateChecksum("b") {
		t.Fatal("checksum collision")
	}
	if calculateChecksum("a") != calculateChecksum("a") {
		t.Fatal("checksum is not stable")
	}
}
