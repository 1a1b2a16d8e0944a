// Package history records every snapshot build and analysis run in SQLite
// and exposes the run log over HTTP.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/subnetscope/subnetscope/internal/store"
)

// Run kinds.
const (
	KindSnapshot = "snapshot"
	KindAnalysis = "analysis"
)

// Record is one logged run. Snapshot runs carry participant counts only;
// analysis runs additionally carry the concentration figures.
type Record struct {
	ID           string    `json:"id"`
	Netuid       int       `json:"netuid"`
	Kind         string    `json:"kind"`
	TotalMiners  int       `json:"totalMiners"`
	AxonCoverage float64   `json:"axonCoverage"`
	HHI          int       `json:"hhi"`
	AdjustedHHI  int       `json:"adjustedHHI"`
	Level        string    `json:"level"`
	Score        float64   `json:"score"`
	ClusterCount int       `json:"clusterCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Repository provides access to logged runs.
type Repository interface {
	// Insert stores a run record. If rec.ID is empty, a UUID is generated.
	Insert(ctx context.Context, rec *Record) error

	// List returns the most recent runs, newest first. A netuid < 0
	// matches all subnets.
	List(ctx context.Context, netuid, limit int) ([]Record, error)
}

// Compile-time interface guard.
var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository implements Repository against the history_runs table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a Repository. The history_runs table must
// already exist (created by Migrations).
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Migrations returns the module's schema, applied under its module name.
func Migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create history_runs table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE history_runs (
						id            TEXT PRIMARY KEY,
						netuid        INTEGER NOT NULL,
						kind          TEXT    NOT NULL,
						total_miners  INTEGER NOT NULL DEFAULT 0,
						axon_coverage REAL    NOT NULL DEFAULT 0,
						hhi           INTEGER NOT NULL DEFAULT 0,
						adjusted_hhi  INTEGER NOT NULL DEFAULT 0,
						level         TEXT    NOT NULL DEFAULT '',
						score         REAL    NOT NULL DEFAULT 0,
						cluster_count INTEGER NOT NULL DEFAULT 0,
						created_at    DATETIME NOT NULL
					)
				`)
				return err
			},
		},
		{
			Version:     2,
			Description: "index history_runs by netuid and time",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE INDEX idx_history_runs_netuid_created
					ON history_runs (netuid, created_at DESC)
				`)
				return err
			},
		},
	}
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	// Timestamps are stored as RFC 3339 text; lexicographic order matches
	// chronological order for the created_at index.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history_runs
			(id, netuid, kind, total_miners, axon_coverage, hhi, adjusted_hhi,
			 level, score, cluster_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Netuid, rec.Kind, rec.TotalMiners, rec.AxonCoverage,
		rec.HHI, rec.AdjustedHHI, rec.Level, rec.Score, rec.ClusterCount,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run %s/%s: %w", rec.Kind, rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, netuid, limit int) ([]Record, error) {
	query := `
		SELECT id, netuid, kind, total_miners, axon_coverage, hhi,
		       adjusted_hhi, level, score, cluster_count, created_at
		FROM history_runs`
	args := []any{}
	if netuid >= 0 {
		query += ` WHERE netuid = ?`
		args = append(args, netuid)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Netuid, &rec.Kind, &rec.TotalMiners,
			&rec.AxonCoverage, &rec.HHI, &rec.AdjustedHHI, &rec.Level,
			&rec.Score, &rec.ClusterCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", createdAt, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}
