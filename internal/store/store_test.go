package store_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/subnetscope/subnetscope/internal/store"
	"github.com/subnetscope/subnetscope/internal/testutil"
)

func testMigrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create widgets table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT)`)
				return err
			},
		},
		{
			Version:     2,
			Description: "add widgets color column",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`ALTER TABLE widgets ADD COLUMN color TEXT`)
				return err
			},
		},
	}
}

func TestMigrateAppliesInOrder(t *testing.T) {
	db := testutil.NewStore(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, "widgets", testMigrations()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	if _, err := db.DB().Exec(`INSERT INTO widgets (name, color) VALUES ('a', 'red')`); err != nil {
		t.Fatalf("insert after migrations: %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testutil.NewStore(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, "widgets", testMigrations()); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	// A second run must skip already-applied versions instead of failing
	// on duplicate DDL.
	if err := db.Migrate(ctx, "widgets", testMigrations()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var applied int
	err := db.DB().QueryRow(
		`SELECT COUNT(*) FROM _migrations WHERE module_name = 'widgets'`,
	).Scan(&applied)
	if err != nil {
		t.Fatalf("count applied migrations: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied migrations = %d, want 2", applied)
	}
}

func TestMigrationsTrackedPerModule(t *testing.T) {
	db := testutil.NewStore(t)
	ctx := context.Background()

	first := []store.Migration{{
		Version:     1,
		Description: "create alpha table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE TABLE alpha (id INTEGER PRIMARY KEY)`)
			return err
		},
	}}
	second := []store.Migration{{
		Version:     1,
		Description: "create beta table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE TABLE beta (id INTEGER PRIMARY KEY)`)
			return err
		},
	}}

	if err := db.Migrate(ctx, "alpha", first); err != nil {
		t.Fatalf("migrate alpha: %v", err)
	}
	if err := db.Migrate(ctx, "beta", second); err != nil {
		t.Fatalf("migrate beta: %v", err)
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	db := testutil.NewStore(t)
	ctx := context.Background()

	bad := []store.Migration{{
		Version:     1,
		Description: "broken step",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`THIS IS NOT SQL`)
			return err
		},
	}}

	if err := db.Migrate(ctx, "broken", bad); err == nil {
		t.Fatal("Migrate succeeded with invalid SQL")
	}

	var applied int
	err := db.DB().QueryRow(
		`SELECT COUNT(*) FROM _migrations WHERE module_name = 'broken'`,
	).Scan(&applied)
	if err != nil {
		t.Fatalf("count applied migrations: %v", err)
	}
	if applied != 0 {
		t.Errorf("applied migrations = %d, want 0 after rollback", applied)
	}
}

func TestTxRollsBackOnError(t *testing.T) {
	db := testutil.NewStore(t)
	ctx := context.Background()

	if _, err := db.DB().Exec(`CREATE TABLE rows (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	wantErr := sql.ErrTxDone // arbitrary sentinel
	err := db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO rows (id) VALUES (1)`); err != nil {
			return err
		}
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("Tx error = %v, want sentinel", err)
	}

	var count int
	if err := db.DB().QueryRow(`SELECT COUNT(*) FROM rows`).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 0 {
		t.Errorf("rows = %d, want 0 after rollback", count)
	}
}
