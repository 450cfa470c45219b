package database

import (
	"path/filepath"
	"testing"
)

func TestRunMigrations(t *testing.T) {
	db, err := NewConnection(filepath.Join(t.TempDir(), "nested", "dir", "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}
	if version != 3 {
		t.Errorf("Expected version 3, got %d", version)
	}

	// Second run is a no-op
	version, _, err = RunMigrations(db)
	if err != nil {
		t.Fatalf("Second RunMigrations failed: %v", err)
	}
	if version != 3 {
		t.Errorf("Expected version 3 after second run, got %d", version)
	}

	for _, table := range []string{"cached_posts", "announcements"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}
}
