package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS action_log (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL CHECK(kind IN ('start','stop','stop_all','collect')),
		session_key INTEGER NOT NULL DEFAULT 0,
		land_id     INTEGER NOT NULL DEFAULT 0,
		tool_ids    TEXT NOT NULL DEFAULT '[]',
		result      TEXT NOT NULL CHECK(result IN ('ok','empty','error')),
		message     TEXT NOT NULL DEFAULT '',
		amount      TEXT,
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_action_log_session ON action_log(session_key, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_action_log_created ON action_log(created_at)`,
	`CREATE TABLE IF NOT EXISTS summary_snapshots (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		payload     TEXT NOT NULL,
		captured_at TEXT NOT NULL
	)`,
}
