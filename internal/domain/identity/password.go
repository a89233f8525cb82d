package identity

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/wimotos/backend/internal/domain/shared"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// ErrInvalidCredentials is returned for an unknown email or a wrong password alike
var ErrInvalidCredentials = shared.NewKindError(shared.KindUnauthorized, "INVALID_CREDENTIALS",
	"invalid email or password")

// HashPassword validates and bcrypt-hashes a plain password
func HashPassword(plain string) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", shared.InvalidParameterError("INVALID_PASSWORD", "password must have at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", shared.InvalidParameterError("INVALID_PASSWORD", "password is too long")
		}
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}
