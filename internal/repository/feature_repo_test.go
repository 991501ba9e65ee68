package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestUpsertToggleByName(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set, skip database integration test")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS feature_toggles (feature text PRIMARY KEY, enabled boolean NOT NULL)`); err != nil {
		t.Fatalf("failed to ensure feature_toggles table: %v", err)
	}

	repo := NewFeatureRepo(db)
	name := fmt.Sprintf("integration-toggle-%d", time.Now().UnixNano())
	defer func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM feature_toggles WHERE feature=$1`, name)
	}()

	created, err := repo.UpsertToggle(ctx, name, true)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if created.Feature != name || !created.Enabled {
		t.Fatalf("expected enabled toggle %s, got %+v", name, created)
	}

	updated, err := repo.UpsertToggle(ctx, name, false)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if updated.Enabled {
		t.Fatal("expected second upsert to flip the toggle off, not insert a new row")
	}

	toggles, err := repo.ListToggles(ctx)
	if err != nil {
		t.Fatalf("listing toggles failed: %v", err)
	}
	found := 0
	for _, toggle := range toggles {
		if toggle.Feature == name {
			found++
			if toggle.Enabled {
				t.Fatal("expected the stored toggle to be disabled after the second upsert")
			}
		}
	}
	if found != 1 {
		t.Fatalf("expected exactly one row for %s, got %d", name, found)
	}
}
