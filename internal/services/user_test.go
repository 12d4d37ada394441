package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/repositories"
	"github.com/sbilibin2017/filekit/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	svc := services.NewUserService(mockReader, services.NewMockUserWriter(ctrl), "111111")

	page := models.NewPage(1, 10)
	tests := []struct {
		name       string
		status     string
		wantStatus string
	}{
		{"active", models.StatusActive, models.StatusActive},
		{"inactive", models.StatusInactive, models.StatusInactive},
		{"wildcard", "*", ""},
		{"unknown value ignored", "Banned", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := []models.UserDB{{ID: 1, Name: "Ann"}}
			mockReader.EXPECT().
				List(gomock.Any(), models.UserFilter{Search: "an", Status: tt.wantStatus, Page: page}).
				Return(users, 7, nil)

			got, total, err := svc.List(context.Background(), models.UserFilter{Search: "an", Status: tt.status, Page: page})
			require.NoError(t, err)
			assert.Equal(t, users, got)
			assert.Equal(t, 7, total)
		})
	}

	t.Run("reader error", func(t *testing.T) {
		mockReader.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, errors.New("db error"))

		_, _, err := svc.List(context.Background(), models.UserFilter{Page: page})
		assert.EqualError(t, err, "db error")
	})
}

func TestUserService_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	svc := services.NewUserService(mockReader, mockWriter, "111111")

	t.Run("uses default password", func(t *testing.T) {
		mockReader.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(nil, nil)
		mockWriter.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *models.UserDB) error {
				assert.Equal(t, models.StatusInactive, u.Status)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("111111")))
				u.ID = 5
				return nil
			})

		user, err := svc.Add(context.Background(), "New", "new@example.com", models.StatusInactive)
		require.NoError(t, err)
		assert.Equal(t, int64(5), user.ID)
	})

	t.Run("email taken", func(t *testing.T) {
		mockReader.EXPECT().GetByEmail(gomock.Any(), "old@example.com").Return(&models.UserDB{ID: 1}, nil)

		_, err := svc.Add(context.Background(), "Old", "old@example.com", models.StatusActive)
		assert.ErrorIs(t, err, services.ErrUserAlreadyExists)
	})
}

func TestUserService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	svc := services.NewUserService(mockReader, mockWriter, "111111")

	existing := func() *models.UserDB {
		return &models.UserDB{ID: 9, Name: "Old", Email: "old@example.com", Role: models.RoleUser, Status: models.StatusActive}
	}

	tests := []struct {
		name      string
		user      *models.UserDB
		readerErr error
		found     bool
		writerErr error
		wantErr   error
	}{
		{name: "updated", user: existing(), found: true},
		{name: "missing", wantErr: services.ErrUserNotFound},
		{name: "reader error", readerErr: errors.New("db error"), wantErr: errors.New("db error")},
		{name: "email taken", user: existing(), writerErr: repositories.ErrUniqueViolation, wantErr: services.ErrUserAlreadyExists},
		{name: "removed meanwhile", user: existing(), found: false, wantErr: services.ErrUserNotFound},
		{name: "writer error", user: existing(), writerErr: errors.New("update error"), wantErr: errors.New("update error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().GetByID(gomock.Any(), int64(9)).Return(tt.user, tt.readerErr)
			if tt.user != nil {
				mockWriter.EXPECT().
					Update(gomock.Any(), &models.UserDB{ID: 9, Name: "New", Email: "new@example.com", Role: models.RoleUser, Status: models.StatusInactive}).
					Return(tt.found, tt.writerErr)
			}

			err := svc.Update(context.Background(), 9, "New", "new@example.com", models.StatusInactive)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockUserWriter(ctrl)
	svc := services.NewUserService(services.NewMockUserReader(ctrl), mockWriter, "111111")

	tests := []struct {
		name      string
		found     bool
		writerErr error
		wantErr   error
	}{
		{name: "deleted", found: true},
		{name: "missing", wantErr: services.ErrUserNotFound},
		{name: "owns files", writerErr: repositories.ErrForeignKeyViolation, wantErr: services.ErrUserHasFiles},
		{name: "db error", writerErr: errors.New("db error"), wantErr: errors.New("db error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockWriter.EXPECT().Delete(gomock.Any(), int64(3)).Return(tt.found, tt.writerErr)

			err := svc.Delete(context.Background(), 3)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				return
			}
			assert.NoError(t, err)
		})
	}
}
