// Package identity implements staff accounts and login.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/identity"
	"github.com/wimotos/backend/internal/domain/shared"
)

// ErrEmailTaken is returned when the email already belongs to a user
var ErrEmailTaken = shared.ConflictError("EMAIL_TAKEN", "email already registered")

// UserService handles user management
type UserService struct {
	txScope appshared.TransactionScope
	clock   appshared.Clock
	logger  *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(txScope appshared.TransactionScope, clock appshared.Clock, logger *zap.Logger) *UserService {
	if clock == nil {
		clock = appshared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{txScope: txScope, clock: clock, logger: logger}
}

// Create creates a user. Role defaults to STAFF.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	role := identity.RoleStaff
	if req.Role != "" {
		role = identity.Role(req.Role)
	}
	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := identity.NewUser(req.Name, req.Email, hash, role, s.clock.Now())
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		exists, err := repos.Users().ExistsByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}
		return repos.Users().Save(ctx, user)
	})
	if err != nil {
		// a concurrent insert trips the unique index instead of the check above
		if !errors.Is(err, ErrEmailTaken) && errors.Is(err, shared.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID returns one user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	var resp UserResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		user, err := repos.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToUserResponse(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns users ordered by name
func (s *UserService) List(ctx context.Context, q ListUsersQuery) ([]UserResponse, error) {
	var out []UserResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		users, err := repos.Users().List(ctx, q.Window())
		if err != nil {
			return err
		}
		out = make([]UserResponse, len(users))
		for i := range users {
			out[i] = ToUserResponse(&users[i])
		}
		return nil
	})
	return out, err
}

// EnsureAdmin creates an ADMIN account unless the email is already registered.
// It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	_, err := s.Create(ctx, CreateUserRequest{Name: name, Email: email, Password: password, Role: string(identity.RoleAdmin)})
	if errors.Is(err, ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
