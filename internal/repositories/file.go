package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/filekit/internal/models"
)

type FileReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewFileReadRepository(db *sqlx.DB, txGetter TxGetter) *FileReadRepository {
	return &FileReadRepository{db: db, txGetter: txGetter}
}

// GetByID returns the file with the given id, or nil when none exists.
func (r *FileReadRepository) GetByID(ctx context.Context, id int64) (*models.FileDB, error) {
	const query = `
		SELECT id, name, path, total_pages, created_at, user_id
		FROM files
		WHERE id = $1
	`

	var file models.FileDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &file, query, id)
	logQuery(query, []any{id}, file.Path, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// List returns one page of files, restricted to userID when it is not nil,
// and the size of the whole filtered set.
func (r *FileReadRepository) List(ctx context.Context, userID *int64, page models.Page) ([]models.FileDB, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM files
		WHERE ($1::BIGINT IS NULL OR user_id = $1)
	`
	const listQuery = `
		SELECT id, name, path, total_pages, created_at, user_id
		FROM files
		WHERE ($1::BIGINT IS NULL OR user_id = $1)
		ORDER BY id
		LIMIT $2 OFFSET $3
	`

	ex := executor(ctx, r.db, r.txGetter)

	var total int
	err := sqlx.GetContext(ctx, ex, &total, countQuery, userID)
	logQuery(countQuery, []any{userID}, total, err)
	if err != nil {
		return nil, 0, err
	}

	files := []models.FileDB{}
	args := []any{userID, page.Size, page.Offset()}
	err = sqlx.SelectContext(ctx, ex, &files, listQuery, args...)
	logQuery(listQuery, args, len(files), err)
	if err != nil {
		return nil, 0, err
	}

	return files, total, nil
}

// ListWithOwner returns one page of all files joined with their owner's name.
func (r *FileReadRepository) ListWithOwner(ctx context.Context, page models.Page) ([]models.FileWithOwner, int, error) {
	const countQuery = `SELECT COUNT(*) FROM files`
	const listQuery = `
		SELECT f.id, f.name, f.path, f.total_pages, f.created_at, f.user_id,
		       u.name AS owner_name
		FROM files f
		JOIN users u ON u.id = f.user_id
		ORDER BY f.id
		LIMIT $1 OFFSET $2
	`

	ex := executor(ctx, r.db, r.txGetter)

	var total int
	err := sqlx.GetContext(ctx, ex, &total, countQuery)
	logQuery(countQuery, nil, total, err)
	if err != nil {
		return nil, 0, err
	}

	files := []models.FileWithOwner{}
	args := []any{page.Size, page.Offset()}
	err = sqlx.SelectContext(ctx, ex, &files, listQuery, args...)
	logQuery(listQuery, args, len(files), err)
	if err != nil {
		return nil, 0, err
	}

	return files, total, nil
}

type FileWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewFileWriteRepository(db *sqlx.DB, txGetter TxGetter) *FileWriteRepository {
	return &FileWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts the file and sets its generated id and creation time.
func (r *FileWriteRepository) Save(ctx context.Context, file *models.FileDB) error {
	const query = `
		INSERT INTO files (name, path, total_pages, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	args := []any{file.Name, file.Path, file.TotalPages, file.UserID}

	row := executor(ctx, r.db, r.txGetter).QueryRowxContext(ctx, query, args...)
	err := row.Scan(&file.ID, &file.CreatedAt)
	logQuery(query, args, file.ID, err)

	return translateError(err)
}

// Delete removes the file row. It reports whether a row matched.
func (r *FileWriteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM files WHERE id = $1`

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
