package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/finance"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

// CreateEntryRequest represents a request to register a payable
type CreateEntryRequest struct {
	Company     string          `json:"company" binding:"required,min=1,max=120"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DueDate     string          `json:"due_date" binding:"required,datetime=2006-01-02"`
	Status      string          `json:"status" binding:"omitempty,oneof=PENDING PAID CANCELED"`
	Description *string         `json:"description" binding:"omitempty,max=255"`
	Notes       *string         `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateEntryRequest is a partial update
type UpdateEntryRequest struct {
	Company     *string          `json:"company" binding:"omitempty,min=1,max=120"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     *string          `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Status      *string          `json:"status" binding:"omitempty,oneof=PENDING PAID CANCELED"`
	Description *string          `json:"description" binding:"omitempty,max=255"`
	Notes       *string          `json:"notes" binding:"omitempty,max=1000"`
}

// PayEntryRequest is the body of POST /finance/:id/pay. PaidAt defaults to now.
type PayEntryRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// ListEntriesQuery filters GET /finance
type ListEntriesQuery struct {
	Status  string `form:"status" binding:"omitempty,oneof=PENDING PAID CANCELED"`
	Company string `form:"company" binding:"max=120"`
	appshared.ListQuery
}

// EntryResponse represents a finance entry in API responses
type EntryResponse struct {
	ID          uuid.UUID                  `json:"id"`
	Company     string                     `json:"company"`
	Amount      decimal.Decimal            `json:"amount"`
	DueDate     string                     `json:"due_date"`
	Status      string                     `json:"status"`
	Description *string                    `json:"description"`
	Notes       *string                    `json:"notes"`
	Reminder    appshared.ReminderResponse `json:"reminder"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// ToEntryResponse converts a domain entry
func ToEntryResponse(e *finance.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		Company:     e.Company,
		Amount:      e.Amount,
		DueDate:     e.DueDate.Format(valueobject.DateLayout),
		Status:      string(e.Status),
		Description: e.Description,
		Notes:       e.Notes,
		Reminder:    appshared.ToReminderResponse(e.Reminder),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
