package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/filekit/internal/logger"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/repositories"
)

// ErrUserHasFiles is returned when deleting a user who still owns files.
var ErrUserHasFiles = errors.New("user still owns files")

// UserService implements user administration.
type UserService struct {
	reader          UserReader
	writer          UserWriter
	defaultPassword string
}

// NewUserService creates a UserService. Accounts added by an admin get defaultPassword.
func NewUserService(reader UserReader, writer UserWriter, defaultPassword string) *UserService {
	return &UserService{
		reader:          reader,
		writer:          writer,
		defaultPassword: defaultPassword,
	}
}

// List returns one page of users and the size of the filtered set. A status
// other than Active or Inactive selects every user.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.UserDB, int, error) {
	if filter.Status != models.StatusActive && filter.Status != models.StatusInactive {
		filter.Status = ""
	}

	users, total, err := s.reader.List(ctx, filter)
	if err != nil {
		logger.Log.Errorw("failed to list users", "search", filter.Search, "status", filter.Status, "error", err)
		return nil, 0, err
	}
	return users, total, nil
}

// Add creates a user with the configured default password.
func (s *UserService) Add(ctx context.Context, name, email, status string) (*models.UserDB, error) {
	user := &models.UserDB{
		Name:   name,
		Email:  email,
		Role:   models.RoleUser,
		Status: status,
	}
	if err := createUser(ctx, s.reader, s.writer, user, s.defaultPassword); err != nil {
		return nil, err
	}
	logger.Log.Infow("user added", "user_id", user.ID, "email", email)
	return user, nil
}

// Update overwrites name, email and status of an existing user.
func (s *UserService) Update(ctx context.Context, id int64, name, email, status string) error {
	user, err := s.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", id, "error", err)
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.Name, user.Email, user.Status = name, email, status

	found, err := s.writer.Update(ctx, user)
	switch {
	case errors.Is(err, repositories.ErrUniqueViolation):
		return ErrUserAlreadyExists
	case err != nil:
		logger.Log.Errorw("failed to update user", "user_id", id, "error", err)
		return err
	case !found:
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user. Users that still own files are kept.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	found, err := s.writer.Delete(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrForeignKeyViolation):
		logger.Log.Warnw("user still owns files", "user_id", id)
		return ErrUserHasFiles
	case err != nil:
		logger.Log.Errorw("failed to delete user", "user_id", id, "error", err)
		return err
	case !found:
		return ErrUserNotFound
	}
	logger.Log.Infow("user deleted", "user_id", id)
	return nil
}
