package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// newTestDB returns a migrated in-memory database closed at test end.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(newTestDB(t))
}

// schemaObjects lists user objects of the given type, sorted by name.
func schemaObjects(t *testing.T, db *sql.DB, kind string) []string {
	t.Helper()

	rows, err := db.Query(
		"SELECT name FROM sqlite_master WHERE type = ? AND name NOT LIKE 'sqlite_%' ORDER BY name", kind,
	)
	if err != nil {
		t.Fatalf("listing %s objects: %v", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			t.Fatalf("scanning %s name: %v", kind, err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterating %s objects: %v", kind, err)
	}
	return names
}

func TestOpenDatabase_FileUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "spillcheck.db")

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase(%q) error: %v", path, err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("reading journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("reading foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestDSN(t *testing.T) {
	want := "x.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	if got := dsn("x.db"); got != want {
		t.Errorf("dsn() = %q, want %q", got, want)
	}
}

func TestRunMigrations_Schema(t *testing.T) {
	db := newTestDB(t)

	tables := []string{"fabrications", "games", "kv", "rounds", "schema_migrations", "seen_stories"}
	if diff := cmp.Diff(tables, schemaObjects(t, db, "table")); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}

	got := schemaObjects(t, db, "index")
	for _, idx := range []string{"idx_games_updated", "idx_rounds_created", "idx_seen_at"} {
		found := false
		for _, name := range got {
			if name == idx {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("index %q missing, have %v", idx, got)
		}
	}
}

func TestRunMigrations_RerunIsNoop(t *testing.T) {
	db := newTestDB(t)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("second RunMigrations error: %v", err)
	}

	var versions []int
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		t.Fatalf("querying schema_migrations: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			t.Fatalf("scanning version: %v", err)
		}
		versions = append(versions, v)
	}
	if diff := cmp.Diff([]int{1}, versions); diff != "" {
		t.Errorf("recorded versions mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_CloseStopsQueries(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("OpenDatabase error: %v", err)
	}
	store := NewStore(db)
	if store.DB() != db {
		t.Fatal("DB() did not return the wrapped pool")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := db.Ping(); err == nil {
		t.Error("Ping() after Close() succeeded, want error")
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "stored layout", input: "2025-01-15T10:30:00.000Z", want: want},
		{name: "RFC3339 with offset", input: "2025-01-15T12:30:00+02:00", want: want},
		{name: "sqlite datetime", input: "2025-01-15 10:30:00", want: want},
		{name: "no zone", input: "2025-01-15T10:30:00", want: want},
		{name: "garbage", input: "yesterday-ish"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTime(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("parseTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatTime_SortsAsText(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	earlier := time.Date(2026, 3, 1, 9, 15, 30, 5_000_000, zone)
	later := earlier.Add(995 * time.Millisecond)

	if got := formatTime(earlier); got != "2026-03-01T08:15:30.005Z" {
		t.Errorf("formatTime() = %q, want UTC millisecond layout", got)
	}
	if !(formatTime(earlier) < formatTime(later)) {
		t.Errorf("formatTime(%v) >= formatTime(%v) as text", earlier, later)
	}
	if got := parseTime(formatTime(later)); !got.Equal(later) {
		t.Errorf("parseTime(formatTime(%v)) = %v", later, got)
	}
}
