package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/services"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=handlers

// Registerer defines the interface that the signup service must implement.
type Registerer interface {
	Register(ctx context.Context, name, email, password string) (*models.UserDB, error)
}

// Loginer defines the interface that the signin service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string) (string, *models.UserDB, error)
}

// SignupRequest is the body of a signup call, as JSON or form fields.
// swagger:model SignupRequest
type SignupRequest struct {
	// required: true
	// default: John Doe
	Name string `json:"name" form:"name" validate:"required"`

	// required: true
	// default: john@example.com
	Email string `json:"email" form:"email" validate:"required,email"`

	// required: true
	// default: secret123
	Password string `json:"password" form:"password" validate:"required"`
}

// SigninRequest is the body of a signin call, as JSON or form fields.
// swagger:model SigninRequest
type SigninRequest struct {
	// required: true
	// default: john@example.com
	Email string `json:"email" form:"email" validate:"required"`

	// required: true
	// default: secret123
	Password string `json:"password" form:"password" validate:"required"`
}

// SigninResponse carries the issued token and the signed in user.
// swagger:model SigninResponse
type SigninResponse struct {
	// default: Login successful
	Msg   string         `json:"msg"`
	Token string         `json:"token"`
	User  *models.UserDB `json:"user"`
}

// NewSignupHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates an active account. The email must be unused; the password is stored as a bcrypt hash.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body handlers.SignupRequest true "Signup request"
// @Success 200 {object} handlers.MessageResponse "User Registered successfully"
// @Failure 400 {object} handlers.MessageResponse "Missing fields"
// @Failure 409 {object} handlers.MessageResponse "User already registered."
// @Router /auth/signup [post]
func NewSignupHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := bindRequest(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Missing fields")
			return
		}

		_, err := svc.Register(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserAlreadyExists):
				writeMessage(w, http.StatusConflict, "User already registered.")
			default:
				logError(r, "internal server error", err)
				writeMessage(w, http.StatusInternalServerError, "Database Error")
			}
			return
		}

		writeMessage(w, http.StatusOK, "User Registered successfully")
	}
}

// NewSigninHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Authenticates by email and password and returns a JWT valid for the configured lifetime.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body handlers.SigninRequest true "Signin request"
// @Success 200 {object} handlers.SigninResponse
// @Failure 400 {object} handlers.MessageResponse "Missing fields or user not yet approved"
// @Failure 401 {object} handlers.MessageResponse "Incorrect password"
// @Failure 404 {object} handlers.MessageResponse "Email address not found"
// @Failure 429 {object} handlers.MessageResponse "Too many requests"
// @Router /auth/signin [post]
func NewSigninHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SigninRequest
		if err := bindRequest(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Missing fields")
			return
		}

		token, user, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				writeMessage(w, http.StatusNotFound, "Email address not found")
			case errors.Is(err, services.ErrInvalidCredentials):
				writeMessage(w, http.StatusUnauthorized, "Incorrect password")
			case errors.Is(err, services.ErrUserInactive):
				writeMessage(w, http.StatusBadRequest, "User is not permitted. Please wait until the admin approves")
			default:
				logError(r, "internal server error", err)
				writeMessage(w, http.StatusInternalServerError, "Token generation failed")
			}
			return
		}

		writeJSON(w, http.StatusOK, SigninResponse{
			Msg:   "Login successful",
			Token: token,
			User:  user,
		})
	}
}
