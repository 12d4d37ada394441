package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/filekit/internal/models"
)

type TemplateReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewTemplateReadRepository(db *sqlx.DB, txGetter TxGetter) *TemplateReadRepository {
	return &TemplateReadRepository{db: db, txGetter: txGetter}
}

// List returns one page of templates whose name contains search
// (case-insensitive) and the size of the whole filtered set.
func (r *TemplateReadRepository) List(ctx context.Context, search string, page models.Page) ([]models.TemplateDB, int, error) {
	const countQuery = `
		SELECT COUNT(*)
		FROM templates
		WHERE ($1::TEXT IS NULL OR POSITION(LOWER($1) IN LOWER(name)) > 0)
	`
	const listQuery = `
		SELECT id, name, type, size, path, created_at
		FROM templates
		WHERE ($1::TEXT IS NULL OR POSITION(LOWER($1) IN LOWER(name)) > 0)
		ORDER BY id
		LIMIT $2 OFFSET $3
	`

	ex := executor(ctx, r.db, r.txGetter)
	s := nullableString(search)

	var total int
	err := sqlx.GetContext(ctx, ex, &total, countQuery, s)
	logQuery(countQuery, []any{s}, total, err)
	if err != nil {
		return nil, 0, err
	}

	templates := []models.TemplateDB{}
	args := []any{s, page.Size, page.Offset()}
	err = sqlx.SelectContext(ctx, ex, &templates, listQuery, args...)
	logQuery(listQuery, args, len(templates), err)
	if err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

type TemplateWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewTemplateWriteRepository(db *sqlx.DB, txGetter TxGetter) *TemplateWriteRepository {
	return &TemplateWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts the template and sets its generated id and creation time.
func (r *TemplateWriteRepository) Save(ctx context.Context, tpl *models.TemplateDB) error {
	const query = `
		INSERT INTO templates (name, type, size, path)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	args := []any{tpl.Name, tpl.Type, tpl.Size, tpl.Path}

	row := executor(ctx, r.db, r.txGetter).QueryRowxContext(ctx, query, args...)
	err := row.Scan(&tpl.ID, &tpl.CreatedAt)
	logQuery(query, args, tpl.ID, err)

	return translateError(err)
}
