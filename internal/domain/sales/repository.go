package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/shared"
)

// ListFilter holds the conjunctive filters of a sale listing
type ListFilter struct {
	ClientID    *uuid.UUID
	UserID      *uuid.UUID
	ProductID   *uuid.UUID
	PaymentType *PaymentType
	DateFrom    *time.Time
	DateTo      *time.Time
	// SortBy and SortOrder are whitelisted by the repository; unknown values fall back to created_at DESC
	SortBy    string
	SortOrder string
	shared.PageRequest
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	ExistsByPublicID(ctx context.Context, publicID string) (bool, error)
	// List returns one page, newest first unless sorted otherwise, plus the unpaginated total
	List(ctx context.Context, filter ListFilter) ([]Sale, int64, error)
	Save(ctx context.Context, sale *Sale) error
}
