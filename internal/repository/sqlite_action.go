package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/landminer/internal/db"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/google/uuid"
)

const actionColumns = `id, kind, session_key, land_id, tool_ids, result, message, amount, created_at`

// SQLiteActionRepo implements ActionRepo using a SQLite database.
type SQLiteActionRepo struct {
	db db.DBTX
}

// NewSQLiteActionRepo creates a new SQLiteActionRepo.
func NewSQLiteActionRepo(conn db.DBTX) *SQLiteActionRepo {
	return &SQLiteActionRepo{db: conn}
}

func (r *SQLiteActionRepo) Create(ctx context.Context, e *domain.ActionEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	toolIDs := e.ToolIDs
	if toolIDs == nil {
		toolIDs = []int64{}
	}
	tools, err := json.Marshal(toolIDs)
	if err != nil {
		return fmt.Errorf("encoding tool ids: %w", err)
	}

	query := `INSERT INTO action_log (` + actionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		string(e.Kind),
		int64(e.SessionKey),
		e.LandID,
		string(tools),
		string(e.Result),
		e.Message,
		nullableDecimalToValue(e.Amount),
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting action: %w", err)
	}
	return nil
}

func (r *SQLiteActionRepo) GetByID(ctx context.Context, id string) (*domain.ActionEntry, error) {
	query := `SELECT ` + actionColumns + ` FROM action_log WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanAction(row)
}

func (r *SQLiteActionRepo) ListBySession(ctx context.Context, key domain.SessionKey) ([]*domain.ActionEntry, error) {
	query := `SELECT ` + actionColumns + ` FROM action_log WHERE session_key = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, int64(key))
	if err != nil {
		return nil, fmt.Errorf("listing actions by session: %w", err)
	}
	defer rows.Close()
	return r.scanActions(rows)
}

func (r *SQLiteActionRepo) ListRecent(ctx context.Context, limit int) ([]*domain.ActionEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + actionColumns + ` FROM action_log ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent actions: %w", err)
	}
	defer rows.Close()
	return r.scanActions(rows)
}

func (r *SQLiteActionRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM action_log WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purging actions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteActionRepo) scanAction(row *sql.Row) (*domain.ActionEntry, error) {
	e, err := r.populateAction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("action: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning action: %w", err)
	}
	return e, nil
}

func (r *SQLiteActionRepo) scanActions(rows *sql.Rows) ([]*domain.ActionEntry, error) {
	var entries []*domain.ActionEntry
	for rows.Next() {
		e, err := r.populateAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning action row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteActionRepo) populateAction(s rowScanner) (*domain.ActionEntry, error) {
	var (
		e                    domain.ActionEntry
		kind, result         string
		sessionKey           int64
		toolsJSON, createdAt string
		amount               sql.NullString
	)
	if err := s.Scan(&e.ID, &kind, &sessionKey, &e.LandID, &toolsJSON, &result, &e.Message, &amount, &createdAt); err != nil {
		return nil, err
	}
	e.Kind = domain.ActionKind(kind)
	e.Result = domain.ActionResult(result)
	e.SessionKey = domain.SessionKey(sessionKey)
	e.Amount = parseNullableDecimal(amount)

	if err := json.Unmarshal([]byte(toolsJSON), &e.ToolIDs); err != nil {
		return nil, fmt.Errorf("decoding tool ids: %w", err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	e.CreatedAt = t
	return &e, nil
}
