package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/shared"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	Query  string
	Status ProductStatus
	shared.Window
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate finds a product and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// List returns products matching the filter, newest first
	List(ctx context.Context, filter ProductFilter) ([]Product, error)

	// ExistsByChassis reports whether another product already uses chassis
	ExistsByChassis(ctx context.Context, chassis string, excludeID *uuid.UUID) (bool, error)

	// ExistsByPlate reports whether another product already uses plate
	ExistsByPlate(ctx context.Context, plate string, excludeID *uuid.UUID) (bool, error)

	// FindOfferCandidates returns IN_STOCK products with a cover image, newest first
	FindOfferCandidates(ctx context.Context, limit int) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}
