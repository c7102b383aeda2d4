package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/landminer/internal/db"
	"github.com/alexanderramin/landminer/internal/domain"
)

// SQLiteSnapshotRepo implements SnapshotRepo using a SQLite database.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

// NewSQLiteSnapshotRepo creates a new SQLiteSnapshotRepo.
func NewSQLiteSnapshotRepo(conn db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: conn}
}

func (r *SQLiteSnapshotRepo) Save(ctx context.Context, s *domain.MiningSummary, at time.Time) error {
	if s == nil {
		return fmt.Errorf("saving snapshot: nil summary")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO summary_snapshots (payload, captured_at) VALUES (?, ?)`,
		string(payload), formatTime(at))
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteSnapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, payload, captured_at FROM summary_snapshots ORDER BY id DESC LIMIT 1`)

	var (
		snap               Snapshot
		payload, captured string
	)
	if err := row.Scan(&snap.ID, &payload, &captured); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("summary snapshot: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &snap.Summary); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	t, err := parseTime(captured)
	if err != nil {
		return nil, fmt.Errorf("parsing captured_at: %w", err)
	}
	snap.CapturedAt = t
	return &snap, nil
}

// Prune keeps only the newest keep snapshots.
func (r *SQLiteSnapshotRepo) Prune(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM summary_snapshots WHERE id NOT IN (
			SELECT id FROM summary_snapshots ORDER BY id DESC LIMIT ?
		)`, max(keep, 0))
	if err != nil {
		return fmt.Errorf("pruning snapshots: %w", err)
	}
	return nil
}
