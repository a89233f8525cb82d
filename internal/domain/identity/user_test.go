package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wimotos/backend/internal/domain/shared"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Ana ", " Ana@WiMotos.com ", "$2a$hash", "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "ana@wimotos.com", u.Email)
	assert.Equal(t, RoleStaff, u.Role)
}

func TestNewUser_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		email string
		hash  string
		role  Role
		code  string
	}{
		{"Ana", "not-an-email", "h", RoleAdmin, "INVALID_EMAIL"},
		{"Ana", "ana@x.com", "", RoleAdmin, "INVALID_PASSWORD"},
		{"Ana", "ana@x.com", "h", "ROOT", "INVALID_ROLE"},
		{"A", "ana@x.com", "h", RoleAdmin, "INVALID_NAME"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := NewUser(tt.name, tt.email, tt.hash, tt.role, time.Now())
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("123")
	assert.ErrorIs(t, err, shared.ErrInvalidParameter)

	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	u, err := NewUser("Ana", "ana@wimotos.com", hash, RoleAdmin, time.Now())
	require.NoError(t, err)
	assert.True(t, u.CheckPassword("s3cret!"))
	assert.False(t, u.CheckPassword("wrong"))
}
