package sqlite

import (
	"context"
	"database/sql"
)

// Migrate runs all database migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		// Drafts table
		`CREATE TABLE IF NOT EXISTS drafts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL,
			scope_id INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'submitted')),
			current_step INTEGER NOT NULL DEFAULT 1 CHECK (current_step >= 1),
			payload_json TEXT,
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1
		)`,

		// Indexes for privacy export and erasure
		`CREATE INDEX IF NOT EXISTS idx_drafts_owner ON drafts(owner_id, scope_id)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_scope ON drafts(scope_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return err
		}
	}

	return nil
}
