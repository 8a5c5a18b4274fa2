package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// UserRole is the authorization role of an account.
type UserRole string

// UserStatus is the approval state of an account.
type UserStatus string

// Roles and statuses understood by the ownership gate.
const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"

	StatusPending UserStatus = "pending"
	StatusActive  UserStatus = "active"
)

// Common validation errors for User
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrInvalidUserRole     = errors.New("invalid user role")
	ErrInvalidUserStatus   = errors.New("invalid user status")
)

// User is an account that owns todos. Registration and approval happen
// outside this service; here the record is only read to resolve a principal.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email,omitempty"`
	HashedPassword string     `json:"-"`
	Role           UserRole   `json:"role"`
	Status         UserStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewUser creates a pending, non-admin user with an already hashed password.
func NewUser(username, email, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           RoleUser,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}
	switch u.Role {
	case RoleUser, RoleAdmin:
	default:
		return ErrInvalidUserRole
	}
	switch u.Status {
	case StatusPending, StatusActive:
	default:
		return ErrInvalidUserStatus
	}
	return nil
}

// CanAccess reports whether the account may use the API. Admins are always
// allowed; everyone else must have been approved.
func (u *User) CanAccess() bool {
	return u.Role == RoleAdmin || u.Status == StatusActive
}
