package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestUserWriteRepository_Save_Mock(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
		wantID  int64
	}{
		{name: "inserted", wantID: 5},
		{name: "duplicate email", dbErr: &pgconn.PgError{Code: "23505"}, wantErr: ErrUniqueViolation},
		{name: "other error", dbErr: errors.New("boom"), wantErr: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			exp := mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
				WithArgs("Ann", "ann@example.com", "hash", models.RoleUser, models.StatusActive)
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(tt.wantID))
			}

			user := &models.UserDB{Name: "Ann", Email: "ann@example.com", Password: "hash", Role: models.RoleUser, Status: models.StatusActive}
			err := NewUserWriteRepository(db, nil).Save(context.Background(), user)

			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, user.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserWriteRepository_Delete_Mock(t *testing.T) {
	t.Run("referenced by files", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
			WithArgs(int64(3)).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		ok, err := NewUserWriteRepository(db, nil).Delete(context.Background(), 3)
		assert.ErrorIs(t, err, ErrForeignKeyViolation)
		assert.False(t, ok)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewUserWriteRepository(db, nil).Delete(context.Background(), 3)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestUserReadRepository_GetByEmail_Mock(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "role", "status"}))

	user, err := NewUserReadRepository(db, nil).GetByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepositories_Integration(t *testing.T) {
	db, teardown := setupPostgresContainer(t)
	defer teardown()

	ctx := context.Background()
	writer := NewUserWriteRepository(db, nil)
	reader := NewUserReadRepository(db, nil)

	for i := 0; i < 7; i++ {
		status := models.StatusActive
		if i%2 == 1 {
			status = models.StatusInactive
		}
		err := writer.Save(ctx, &models.UserDB{
			Name:     fmt.Sprintf("User %d", i),
			Email:    fmt.Sprintf("user%d@Example.com", i),
			Password: "hash",
			Role:     models.RoleUser,
			Status:   status,
		})
		require.NoError(t, err)
	}

	t.Run("duplicate email", func(t *testing.T) {
		err := writer.Save(ctx, &models.UserDB{Name: "Dup", Email: "user0@Example.com", Password: "x", Role: models.RoleUser, Status: models.StatusActive})
		assert.ErrorIs(t, err, ErrUniqueViolation)
	})

	t.Run("get by email", func(t *testing.T) {
		user, err := reader.GetByEmail(ctx, "user3@Example.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "User 3", user.Name)
		assert.Equal(t, models.StatusInactive, user.Status)
	})

	t.Run("search is case-insensitive on email", func(t *testing.T) {
		users, total, err := reader.List(ctx, models.UserFilter{Search: "USER4@", Page: models.NewPage(1, 10)})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, users, 1)
		assert.Equal(t, "User 4", users[0].Name)
	})

	t.Run("status filter", func(t *testing.T) {
		_, total, err := reader.List(ctx, models.UserFilter{Status: models.StatusInactive, Page: models.NewPage(1, 10)})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("pages add up to total", func(t *testing.T) {
		seen := 0
		var total int
		for page := 1; page <= 4; page++ {
			users, tot, err := reader.List(ctx, models.UserFilter{Page: models.NewPage(page, 3)})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(users), 3)
			seen += len(users)
			total = tot
		}
		assert.Equal(t, 7, total)
		assert.Equal(t, total, seen)
	})

	t.Run("update and delete", func(t *testing.T) {
		user, err := reader.GetByEmail(ctx, "user1@Example.com")
		require.NoError(t, err)

		user.Status = models.StatusActive
		ok, err := writer.Update(ctx, user)
		require.NoError(t, err)
		assert.True(t, ok)

		user.Email = "user2@Example.com"
		_, err = writer.Update(ctx, user)
		assert.ErrorIs(t, err, ErrUniqueViolation)

		ok, err = writer.Delete(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = writer.Delete(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
