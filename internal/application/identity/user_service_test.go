package identity_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityapp "github.com/wimotos/backend/internal/application/identity"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/tests/testutil"
)

func TestUserService(t *testing.T) {
	fx := testutil.NewFixture(t)
	svc := identityapp.NewUserService(fx.Scope(), fx.Clock, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, identityapp.CreateUserRequest{
		Name: "Carlos", Email: "Carlos@WiMotos.com", Password: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "carlos@wimotos.com", created.Email)
	assert.Equal(t, "STAFF", created.Role)

	_, err = svc.Create(ctx, identityapp.CreateUserRequest{Name: "Outro", Email: "carlos@wimotos.com", Password: "654321"})
	assert.ErrorIs(t, err, identityapp.ErrEmailTaken)
	assert.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.Create(ctx, identityapp.CreateUserRequest{Name: "Curta", Email: "curta@wimotos.com", Password: "123"})
	assert.ErrorIs(t, err, shared.ErrInvalidParameter)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carlos", got.Name)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	createdAdmin, err := svc.EnsureAdmin(ctx, "Admin", "admin@wimotos.com", "admin123")
	require.NoError(t, err)
	assert.True(t, createdAdmin)
	createdAdmin, err = svc.EnsureAdmin(ctx, "Admin", "admin@wimotos.com", "admin123")
	require.NoError(t, err)
	assert.False(t, createdAdmin)

	users, err := svc.List(ctx, identityapp.ListUsersQuery{})
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestAuthFlowAgainstDatabase(t *testing.T) {
	fx := testutil.NewFixture(t)
	users := identityapp.NewUserService(fx.Scope(), fx.Clock, nil)
	_, err := users.Create(context.Background(), identityapp.CreateUserRequest{
		Name: "Carlos", Email: "carlos@wimotos.com", Password: "123456", Role: "ADMIN",
	})
	require.NoError(t, err)

	authSvc := identityapp.NewAuthService(fx.Scope(), testutil.NewJWTService(), nil)
	res, err := authSvc.Login(context.Background(), identityapp.LoginRequest{Email: "carlos@wimotos.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", res.User.Role)
}
