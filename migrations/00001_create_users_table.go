package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUsersTable, downCreateUsersTable)
}

func upCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
	  id BIGSERIAL PRIMARY KEY,
	  name VARCHAR(255) NOT NULL,
	  email VARCHAR(255) NOT NULL UNIQUE,
	  password VARCHAR(255) NOT NULL,
	  role VARCHAR(255) NOT NULL DEFAULT 'user',
	  status VARCHAR(255) NOT NULL DEFAULT 'Active'
	);
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS users;`)
	return err
}
