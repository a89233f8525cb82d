package partner

import (
	"time"

	"github.com/google/uuid"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/partner"
)

// CreateClientRequest represents a request to register a client
type CreateClientRequest struct {
	Name    string  `json:"name" binding:"required,min=2,max=120"`
	Phone   string  `json:"phone" binding:"required,phone"`
	CPF     *string `json:"cpf" binding:"omitempty,max=14"`
	Address *string `json:"address" binding:"omitempty,max=255"`
	Notes   *string `json:"notes" binding:"omitempty,max=1000"`
}

// ListClientsQuery filters GET /clients
type ListClientsQuery struct {
	Q string `form:"q" binding:"max=100"`
	appshared.ListQuery
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CPF       *string   `json:"cpf"`
	Address   *string   `json:"address"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToClientResponse converts a domain client
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		CPF:       c.CPF,
		Address:   c.Address,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
