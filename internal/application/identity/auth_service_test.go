package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/identity"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/infrastructure/auth"
	"github.com/wimotos/backend/internal/infrastructure/config"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, window shared.Window) ([]identity.User, error) {
	args := m.Called(ctx, window)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestAuthService(repo *MockUserRepository) (*AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-with-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "wimotos-test",
	})
	scope := appshared.NewNoOpTransactionScope(appshared.Repositories{UserRepo: repo})
	return NewAuthService(scope, jwtService, nil), jwtService
}

func createTestUser(t *testing.T, password string) *identity.User {
	t.Helper()
	hash, err := identity.HashPassword(password)
	require.NoError(t, err)
	user, err := identity.NewUser("Ana Admin", "ana@wimotos.com", hash, identity.RoleAdmin, time.Now())
	require.NoError(t, err)
	return user
}

func TestAuthService_Login(t *testing.T) {
	user := createTestUser(t, "s3cret!")

	t.Run("successful login", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, jwtService := newTestAuthService(repo)
		repo.On("FindByEmail", mock.Anything, "ana@wimotos.com").Return(user, nil)

		res, err := svc.Login(context.Background(), LoginRequest{Email: "  ANA@wimotos.com ", Password: "s3cret!"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.Equal(t, "Bearer", res.TokenType)
		assert.Equal(t, user.ID, res.User.ID)

		claims, err := jwtService.ValidateAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "ADMIN", claims.Role)
		repo.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("FindByEmail", mock.Anything, "ana@wimotos.com").Return(user, nil)

		_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@wimotos.com", Password: "nope!!"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		repo.On("FindByEmail", mock.Anything, "ghost@wimotos.com").Return(nil, shared.NotFoundError("user"))

		_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@wimotos.com", Password: "whatever"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("repository failure is not masked", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo)
		boom := shared.NewKindError(shared.KindStorageFailure, "DB_DOWN", "database unavailable")
		repo.On("FindByEmail", mock.Anything, "ana@wimotos.com").Return(nil, boom)

		_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@wimotos.com", Password: "s3cret!"})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, identity.ErrInvalidCredentials)
	})
}
