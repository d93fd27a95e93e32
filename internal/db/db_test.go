package db

import (
	"database/sql"
	"os"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/VoxDroid/nycschools/internal/config"
)

func TestInitDBCreatesFileAndSchema(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(config.EnvHome, tmp)
	t.Setenv(config.EnvDB, "")

	dbPath, err := config.DBPath()
	if err != nil {
		t.Fatalf("DBPath(): %v", err)
	}

	db, err := InitDB()
	if err != nil {
		t.Fatalf("InitDB() error: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("db file not created: %v", err)
	}

	for _, table := range []string{"schools", "sat_scores", "fetch_history"} {
		var count int
		r := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", table)
		if err := r.Scan(&count); err != nil {
			t.Fatalf("query schema: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected table %q to exist", table)
		}
	}

	if _, err := db.Exec("INSERT INTO schools (dbn, name, updated_at) VALUES (?, ?, datetime('now'))", "01M292", "Henry Street School"); err != nil {
		t.Fatalf("insert school failed: %v", err)
	}
}

func TestTriggerRejectsBlankSchool(t *testing.T) {
	db, err := sql.Open("sqlite", "file:test_blank?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := ApplyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if _, err := db.Exec("INSERT INTO schools (dbn, name, updated_at) VALUES (?, ?, datetime('now'))", "  ", "x"); err == nil {
		t.Fatalf("expected insert with blank dbn to be rejected by trigger")
	}
	if _, err := db.Exec("INSERT INTO schools (dbn, name, updated_at) VALUES (?, ?, datetime('now'))", "02M260", []byte{0xff}); err == nil {
		t.Fatalf("expected blob name to be rejected by trigger")
	}
}

func TestApplyMigrationsIsRepeatable(t *testing.T) {
	db, err := sql.Open("sqlite", "file:test_repeat?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()
	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(db); err != nil {
			t.Fatalf("apply migrations (pass %d): %v", i, err)
		}
	}
	if _, err := db.Exec("INSERT INTO fetch_history (started_at, finished_at, status, source) VALUES ('a', 'b', 'ok', 'x')"); err != nil {
		t.Fatalf("expected source column: %v", err)
	}
}
