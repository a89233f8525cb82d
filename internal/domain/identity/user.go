package identity

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/shared"
)

// Role is the access level of a staff account
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User is a staff account that can log in and register sales
type User struct {
	shared.BaseEntity
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates a user. The password must already be hashed.
func NewUser(name, email, passwordHash string, role Role, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, shared.InvalidParameterError("INVALID_NAME", "name must have at least 2 characters")
	}
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.InvalidParameterError("INVALID_EMAIL", "invalid email address")
	}
	if passwordHash == "" {
		return nil, shared.InvalidParameterError("INVALID_PASSWORD", "password is required")
	}
	if role == "" {
		role = RoleStaff
	}
	if !role.IsValid() {
		return nil, shared.InvalidParameterError("INVALID_ROLE", "role must be ADMIN or STAFF")
	}
	return &User{
		BaseEntity:   shared.NewBaseEntity(now),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}, nil
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, window shared.Window) ([]User, error)
	Save(ctx context.Context, user *User) error
}
