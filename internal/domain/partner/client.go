package partner

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/shared"
)

// MaxPhoneDigits bounds a client phone number (country code + area code + number)
const MaxPhoneDigits = 13

// Client is a dealership customer
type Client struct {
	shared.BaseEntity
	Name    string
	Phone   string
	CPF     *string
	Address *string
	Notes   *string
}

// OnlyDigits drops every non-digit rune
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewClient creates a client with a normalized phone
func NewClient(name, phone string, cpf, address, notes *string, now time.Time) (*Client, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, shared.InvalidParameterError("INVALID_NAME", "name must have at least 2 characters")
	}
	digits := OnlyDigits(phone)
	if len(digits) < 10 || len(digits) > MaxPhoneDigits {
		return nil, shared.InvalidParameterError("INVALID_PHONE", "phone must have between 10 and 13 digits")
	}
	c := &Client{
		BaseEntity: shared.NewBaseEntity(now),
		Name:       name,
		Phone:      digits,
		Address:    address,
		Notes:      notes,
	}
	if cpf != nil {
		d := OnlyDigits(*cpf)
		if d != "" {
			if len(d) != 11 {
				return nil, shared.InvalidParameterError("INVALID_CPF", "cpf must have 11 digits")
			}
			c.CPF = &d
		}
	}
	return c, nil
}

// ClientFilter narrows client listings
type ClientFilter struct {
	Query string
	shared.Window
}

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context, filter ClientFilter) ([]Client, error)
	Save(ctx context.Context, client *Client) error
}
