package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	promissoryapp "github.com/wimotos/backend/internal/application/promissory"
	"github.com/wimotos/backend/internal/domain/sales"
)

// MaxInstallments bounds installments_count on the HTTP surface
const MaxInstallments = 60

// CreateSaleRequest is the body of POST /sales. UserID is taken from the token when omitted.
type CreateSaleRequest struct {
	ClientID          uuid.UUID        `json:"client_id" binding:"required"`
	UserID            uuid.UUID        `json:"user_id"`
	ProductID         uuid.UUID        `json:"product_id" binding:"required"`
	Total             decimal.Decimal  `json:"total" binding:"required"`
	Discount          decimal.Decimal  `json:"discount"`
	EntryAmount       *decimal.Decimal `json:"entry_amount"`
	PaymentType       string           `json:"payment_type" binding:"required,oneof=CASH PIX CARD PROMISSORY"`
	InstallmentsCount *int             `json:"installments_count" binding:"omitempty,min=1,max=60"`
	FirstDueDate      *string          `json:"first_due_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateSaleStatusRequest is the body of PATCH /sales/:id/status
type UpdateSaleStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT CONFIRMED CANCELED"`
}

// ListSalesQuery is the query string of GET /sales
type ListSalesQuery struct {
	Page        int        `form:"page,default=1"`
	PageSize    int        `form:"page_size,default=20"`
	ClientID    *uuid.UUID `form:"client_id"`
	UserID      *uuid.UUID `form:"user_id"`
	ProductID   *uuid.UUID `form:"product_id"`
	PaymentType string     `form:"payment_type" binding:"omitempty,oneof=CASH PIX CARD PROMISSORY"`
	DateFrom    string     `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo      string     `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	SortBy      string     `form:"sort_by"`
	SortOrder   string     `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID          uuid.UUID        `json:"id"`
	PublicID    string           `json:"public_id"`
	ClientID    uuid.UUID        `json:"client_id"`
	UserID      uuid.UUID        `json:"user_id"`
	ProductID   uuid.UUID        `json:"product_id"`
	Total       decimal.Decimal  `json:"total"`
	Discount    decimal.Decimal  `json:"discount"`
	EntryAmount *decimal.Decimal `json:"entry_amount"`
	PaymentType string           `json:"payment_type"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateSaleResult is the sale and, for PROMISSORY payments, its note
type CreateSaleResult struct {
	Sale       SaleResponse                `json:"sale"`
	Promissory *promissoryapp.NoteResponse `json:"promissory"`
}

// SaleListResponse is one page of sales
type SaleListResponse struct {
	Items    []SaleResponse `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// ToSaleResponse converts a sale
func ToSaleResponse(s *sales.Sale) SaleResponse {
	return SaleResponse{
		ID:          s.ID,
		PublicID:    s.PublicID,
		ClientID:    s.ClientID,
		UserID:      s.UserID,
		ProductID:   s.ProductID,
		Total:       s.Total,
		Discount:    s.Discount,
		EntryAmount: s.EntryAmount,
		PaymentType: string(s.PaymentType),
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToSaleResponses converts a list of sales
func ToSaleResponses(list []sales.Sale) []SaleResponse {
	out := make([]SaleResponse, len(list))
	for i := range list {
		out[i] = ToSaleResponse(&list[i])
	}
	return out
}
