package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateTemplatesTable, downCreateTemplatesTable)
}

func upCreateTemplatesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS templates (
	  id BIGSERIAL PRIMARY KEY,
	  name VARCHAR(255) NOT NULL,
	  type VARCHAR(255) NOT NULL,
	  size BIGINT NOT NULL,
	  path VARCHAR(512) NOT NULL,
	  created_at TIMESTAMP NOT NULL DEFAULT (NOW() AT TIME ZONE 'utc')
	);
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateTemplatesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS templates;`)
	return err
}
