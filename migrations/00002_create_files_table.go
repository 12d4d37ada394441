package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateFilesTable, downCreateFilesTable)
}

// Files keep their owner: deleting a user that still owns files is rejected.
func upCreateFilesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS files (
	  id BIGSERIAL PRIMARY KEY,
	  name VARCHAR(255) NOT NULL,
	  path VARCHAR(512) NOT NULL,
	  total_pages INTEGER NOT NULL,
	  created_at TIMESTAMP NOT NULL DEFAULT (NOW() AT TIME ZONE 'utc'),
	  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT
	);

	CREATE INDEX IF NOT EXISTS idx_files_user_id ON files(user_id);
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateFilesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS files;`)
	return err
}
