package models

// User statuses.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// RoleUser is assigned to accounts created through signup or by an admin.
const RoleUser = "user"

// UserDB represents a user record in the database
type UserDB struct {
	ID       int64  `json:"id" db:"id"`         // Primary key
	Name     string `json:"name" db:"name"`     // Display name
	Email    string `json:"email" db:"email"`   // Unique email
	Password string `json:"-" db:"password"`    // Hashed password
	Role     string `json:"role" db:"role"`     // Role name
	Status   string `json:"status" db:"status"` // Active or Inactive
}

// UserFilter narrows a user listing.
type UserFilter struct {
	Search string // case-insensitive substring of name or email
	Status string // Active, Inactive or empty for all
	Page   Page
}
