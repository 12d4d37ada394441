package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/filekit/internal/models"
)

const userFilterClause = `
		WHERE ($1::TEXT IS NULL
		       OR POSITION(LOWER($1) IN LOWER(name)) > 0
		       OR POSITION(LOWER($1) IN LOWER(email)) > 0)
		  AND ($2::TEXT IS NULL OR status = $2)
`

type UserReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewUserReadRepository(db *sqlx.DB, txGetter TxGetter) *UserReadRepository {
	return &UserReadRepository{db: db, txGetter: txGetter}
}

// GetByEmail returns the user with the given email, or nil when none exists.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	const query = `
		SELECT id, name, email, password, role, status
		FROM users
		WHERE email = $1
		LIMIT 1
	`
	return r.getOne(ctx, query, email)
}

// GetByID returns the user with the given id, or nil when none exists.
func (r *UserReadRepository) GetByID(ctx context.Context, id int64) (*models.UserDB, error) {
	const query = `
		SELECT id, name, email, password, role, status
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, arg any) (*models.UserDB, error) {
	var user models.UserDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query, arg)
	logQuery(query, []any{arg}, user.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns one page of users matching the filter and the size of the
// whole filtered set.
func (r *UserReadRepository) List(ctx context.Context, filter models.UserFilter) ([]models.UserDB, int, error) {
	const countQuery = `SELECT COUNT(*) FROM users` + userFilterClause
	const listQuery = `
		SELECT id, name, email, password, role, status
		FROM users` + userFilterClause + `
		ORDER BY id
		LIMIT $3 OFFSET $4
	`

	ex := executor(ctx, r.db, r.txGetter)
	search, status := nullableString(filter.Search), nullableString(filter.Status)

	var total int
	err := sqlx.GetContext(ctx, ex, &total, countQuery, search, status)
	logQuery(countQuery, []any{search, status}, total, err)
	if err != nil {
		return nil, 0, err
	}

	users := []models.UserDB{}
	args := []any{search, status, filter.Page.Size, filter.Page.Offset()}
	err = sqlx.SelectContext(ctx, ex, &users, listQuery, args...)
	logQuery(listQuery, args, len(users), err)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewUserWriteRepository(db *sqlx.DB, txGetter TxGetter) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts the user and sets its generated id.
func (r *UserWriteRepository) Save(ctx context.Context, user *models.UserDB) error {
	const query = `
		INSERT INTO users (name, email, password, role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	args := []any{user.Name, user.Email, "***", user.Role, user.Status}

	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user.ID, query,
		user.Name, user.Email, user.Password, user.Role, user.Status)
	logQuery(query, args, user.ID, err)

	return translateError(err)
}

// Update overwrites name, email and status. It reports whether a row matched.
func (r *UserWriteRepository) Update(ctx context.Context, user *models.UserDB) (bool, error) {
	const query = `
		UPDATE users
		SET name = $1, email = $2, status = $3
		WHERE id = $4
	`
	args := []any{user.Name, user.Email, user.Status, user.ID}

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, args, rowsAffected, err)

	if err != nil {
		return false, translateError(err)
	}
	return rowsAffected > 0, nil
}

// Delete removes the user. It reports whether a row matched.
func (r *UserWriteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM users WHERE id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, id)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{id}, rowsAffected, err)

	if err != nil {
		return false, translateError(err)
	}
	return rowsAffected > 0, nil
}
