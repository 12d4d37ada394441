package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/services"
)

//go:generate mockgen -source=users.go -destination=users_mock.go -package=handlers

// UserLister lists users page by page.
type UserLister interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.UserDB, int, error)
}

// UserAdder creates users on behalf of an admin.
type UserAdder interface {
	Add(ctx context.Context, name, email, status string) (*models.UserDB, error)
}

// UserUpdater changes an existing user.
type UserUpdater interface {
	Update(ctx context.Context, id int64, name, email, status string) error
}

// UserDeleter removes users.
type UserDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// UsersResponse is one page of users.
// swagger:model UsersResponse
type UsersResponse struct {
	TotalUsersCount int             `json:"total_users_count"`
	Users           []models.UserDB `json:"users"`
}

// AddUserRequest is the body of an add-user call.
// swagger:model AddUserRequest
type AddUserRequest struct {
	// required: true
	Name string `json:"name" form:"name" validate:"required"`
	// required: true
	Email string `json:"email" form:"email" validate:"required,email"`
	// required: true
	// enum: Active,Inactive
	Status string `json:"status" form:"status" validate:"required,oneof=Active Inactive"`
}

// UpdateUserRequest is the body of an update-user call.
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	// required: true
	ID int64 `json:"id" form:"id" validate:"required,gt=0"`
	// required: true
	Name string `json:"name" form:"name" validate:"required"`
	// required: true
	Email string `json:"email" form:"email" validate:"required,email"`
	// required: true
	// enum: Active,Inactive
	Status string `json:"status" form:"status" validate:"required,oneof=Active Inactive"`
}

// NewGetUsersHandler returns a handler listing users.
// @Summary List users
// @Description Case-insensitive search on name or email, optional status filter (Active, Inactive or * for all).
// @Tags users
// @Produce json
// @Param search query string false "Name or email fragment"
// @Param status query string false "Active, Inactive or *"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} handlers.UsersResponse
// @Failure 500 {object} handlers.MessageResponse
// @Router /users/get-users [get]
func NewGetUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := models.UserFilter{
			Search: q.Get("search"),
			Status: q.Get("status"),
			Page:   parsePage(r),
		}

		users, total, err := svc.List(r.Context(), filter)
		if err != nil {
			logError(r, "internal server error", err)
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Msg: "Database Error", Error: err.Error()})
			return
		}
		if users == nil {
			users = []models.UserDB{}
		}

		writeJSON(w, http.StatusOK, UsersResponse{TotalUsersCount: total, Users: users})
	}
}

// NewAddUserHandler returns a handler creating a user with the default password.
// @Summary Add a user
// @Tags admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body handlers.AddUserRequest true "New user"
// @Success 200 {object} handlers.MessageResponse "User Created successfully"
// @Failure 400 {object} handlers.MessageResponse "Missing fields"
// @Failure 409 {object} handlers.MessageResponse "User already exists with this email."
// @Router /admin/add-user [post]
// @Security BearerAuth
func NewAddUserHandler(svc UserAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddUserRequest
		if err := bindRequest(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Missing fields")
			return
		}

		if _, err := svc.Add(r.Context(), req.Name, req.Email, req.Status); err != nil {
			switch {
			case errors.Is(err, services.ErrUserAlreadyExists):
				writeMessage(w, http.StatusConflict, "User already exists with this email.")
			default:
				logError(r, "internal server error", err)
				writeJSON(w, http.StatusInternalServerError, MessageResponse{Msg: "Database Error", Error: err.Error()})
			}
			return
		}

		writeMessage(w, http.StatusOK, "User Created successfully")
	}
}

// NewUpdateUserHandler returns a handler updating name, email and status.
// @Summary Update a user
// @Tags admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body handlers.UpdateUserRequest true "Changed user"
// @Success 200 {object} handlers.MessageResponse "User updated successfully."
// @Failure 400 {object} handlers.MessageResponse "Invalid request. Missing required fields."
// @Failure 404 {object} handlers.MessageResponse "User not found."
// @Failure 409 {object} handlers.MessageResponse "User already exists with this email."
// @Router /admin/update-user [post]
// @Security BearerAuth
func NewUpdateUserHandler(svc UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateUserRequest
		if err := bindRequest(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request. Missing required fields.")
			return
		}

		if err := svc.Update(r.Context(), req.ID, req.Name, req.Email, req.Status); err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				writeMessage(w, http.StatusNotFound, "User not found.")
			case errors.Is(err, services.ErrUserAlreadyExists):
				writeMessage(w, http.StatusConflict, "User already exists with this email.")
			default:
				logError(r, "internal server error", err)
				writeJSON(w, http.StatusInternalServerError, MessageResponse{Msg: "Database error occurred during update.", Error: err.Error()})
			}
			return
		}

		writeMessage(w, http.StatusOK, "User updated successfully.")
	}
}

// NewDeleteUserHandler returns a handler deleting the user named in the path.
// @Summary Delete a user
// @Description Users who still own files cannot be deleted.
// @Tags admin
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} handlers.MessageResponse "User has been deleted successfully"
// @Failure 404 {object} handlers.MessageResponse "User not found"
// @Failure 409 {object} handlers.MessageResponse "User still owns files"
// @Router /admin/delete-user/{id} [delete]
// @Security BearerAuth
func NewDeleteUserHandler(svc UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				writeMessage(w, http.StatusNotFound, "User not found")
			case errors.Is(err, services.ErrUserHasFiles):
				writeMessage(w, http.StatusConflict, "User still owns files")
			default:
				logError(r, "internal server error", err)
				writeJSON(w, http.StatusInternalServerError, MessageResponse{Msg: "An error occurred while deleting the user", Error: err.Error()})
			}
			return
		}

		writeMessage(w, http.StatusOK, "User has been deleted successfully")
	}
}
