package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to register a vehicle
type CreateProductRequest struct {
	Brand     string          `json:"brand" binding:"required,min=2,max=60"`
	Model     string          `json:"model" binding:"required,min=1,max=80"`
	Year      int             `json:"year" binding:"required,min=1900,max=2100"`
	Plate     string          `json:"plate" binding:"max=10"`
	Chassis   string          `json:"chassis" binding:"required,min=5,max=30"`
	Km        *int            `json:"km" binding:"omitempty,min=0"`
	Color     string          `json:"color" binding:"required,max=30"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Status    string          `json:"status" binding:"omitempty,oneof=IN_STOCK RESERVED SOLD"`
}

// UpdateProductRequest is a partial update. Omitted fields are left untouched.
type UpdateProductRequest struct {
	Brand     *string          `json:"brand" binding:"omitempty,min=2,max=60"`
	Model     *string          `json:"model" binding:"omitempty,min=1,max=80"`
	Year      *int             `json:"year" binding:"omitempty,min=1900,max=2100"`
	Plate     *string          `json:"plate" binding:"omitempty,max=10"`
	Chassis   *string          `json:"chassis" binding:"omitempty,min=5,max=30"`
	Km        *int             `json:"km" binding:"omitempty,min=0"`
	Color     *string          `json:"color" binding:"omitempty,max=30"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	Status    *string          `json:"status" binding:"omitempty,oneof=IN_STOCK RESERVED SOLD"`
}

// ListProductsQuery filters GET /products
type ListProductsQuery struct {
	Q      string `form:"q" binding:"max=100"`
	Status string `form:"status" binding:"omitempty,oneof=IN_STOCK RESERVED SOLD"`
	appshared.ListQuery
}

// UploadImageRequest carries an uploaded cover image
type UploadImageRequest struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	Brand     string          `json:"brand"`
	Model     string          `json:"model"`
	Year      int             `json:"year"`
	Plate     *string         `json:"plate"`
	Chassis   string          `json:"chassis"`
	Km        *int            `json:"km"`
	Color     string          `json:"color"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Status    string          `json:"status"`
	ImageKey  *string         `json:"image_key"`
	ImageURL  string          `json:"image_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product. The image URL is filled by the service.
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Brand:     p.Brand,
		Model:     p.Model,
		Year:      p.Year,
		Plate:     p.Plate,
		Chassis:   p.Chassis,
		Km:        p.Km,
		Color:     p.Color,
		CostPrice: p.CostPrice,
		SalePrice: p.SalePrice,
		Status:    string(p.Status),
		ImageKey:  p.ImageKey,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r UpdateProductRequest) patch() (catalog.ProductPatch, error) {
	patch := catalog.ProductPatch{
		Brand:     r.Brand,
		Model:     r.Model,
		Year:      r.Year,
		Plate:     r.Plate,
		Chassis:   r.Chassis,
		Km:        r.Km,
		Color:     r.Color,
		CostPrice: r.CostPrice,
		SalePrice: r.SalePrice,
	}
	if r.Status != nil {
		st, err := catalog.ParseProductStatus(*r.Status)
		if err != nil {
			return patch, err
		}
		patch.Status = &st
	}
	return patch, nil
}
