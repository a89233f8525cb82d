package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents the stock status of a vehicle
type ProductStatus string

const (
	ProductStatusInStock  ProductStatus = "IN_STOCK"
	ProductStatusReserved ProductStatus = "RESERVED"
	ProductStatusSold     ProductStatus = "SOLD"
)

// String implements fmt.Stringer
func (s ProductStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known product status
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusInStock, ProductStatusReserved, ProductStatusSold:
		return true
	}
	return false
}

// ParseProductStatus validates a raw status value
func ParseProductStatus(raw string) (ProductStatus, error) {
	s := ProductStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.InvalidParameterError("INVALID_PRODUCT_STATUS", "invalid product status")
	}
	return s, nil
}

// Product is a vehicle in the dealership inventory
type Product struct {
	shared.BaseEntity
	Brand     string
	Model     string
	Year      int
	Plate     *string
	Chassis   string
	Km        *int
	Color     string
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
	Status    ProductStatus
	ImageKey  *string
}

// NormalizePlate strips, upper-cases and removes dashes and spaces
func NormalizePlate(plate string) string {
	p := strings.ToUpper(strings.TrimSpace(plate))
	p = strings.ReplaceAll(p, "-", "")
	return strings.ReplaceAll(p, " ", "")
}

// NormalizeChassis strips, upper-cases and removes spaces
func NormalizeChassis(chassis string) string {
	c := strings.ToUpper(strings.TrimSpace(chassis))
	return strings.ReplaceAll(c, " ", "")
}

// ProductSpec carries the writable attributes of a product
type ProductSpec struct {
	Brand     string
	Model     string
	Year      int
	Plate     string
	Chassis   string
	Km        *int
	Color     string
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
	Status    ProductStatus
}

// NewProduct creates a product, IN_STOCK unless spec says otherwise
func NewProduct(spec ProductSpec, now time.Time) (*Product, error) {
	p := &Product{
		BaseEntity: shared.NewBaseEntity(now),
		Brand:      strings.TrimSpace(spec.Brand),
		Model:      strings.TrimSpace(spec.Model),
		Year:       spec.Year,
		Chassis:    NormalizeChassis(spec.Chassis),
		Km:         spec.Km,
		Color:      strings.TrimSpace(spec.Color),
		CostPrice:  valueobject.RoundMoney(spec.CostPrice),
		SalePrice:  valueobject.RoundMoney(spec.SalePrice),
		Status:     ProductStatusInStock,
	}
	p.SetPlate(spec.Plate)
	if spec.Status != "" {
		if !spec.Status.IsValid() {
			return nil, shared.InvalidParameterError("INVALID_PRODUCT_STATUS", "invalid product status")
		}
		p.Status = spec.Status
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPlate normalizes and sets the plate. An empty value clears it.
func (p *Product) SetPlate(raw string) {
	plate := NormalizePlate(raw)
	if plate == "" {
		p.Plate = nil
		return
	}
	p.Plate = &plate
}

// SetChassis normalizes and sets the chassis
func (p *Product) SetChassis(raw string) error {
	c := NormalizeChassis(raw)
	if len(c) < 5 {
		return shared.InvalidParameterError("INVALID_CHASSIS", "chassis must have at least 5 characters")
	}
	p.Chassis = c
	return nil
}

// SetImage records the object key of the cover image
func (p *Product) SetImage(key string, now time.Time) {
	p.ImageKey = &key
	p.Touch(now)
}

// HasImage reports whether a cover image was uploaded
func (p *Product) HasImage() bool {
	return p.ImageKey != nil && *p.ImageKey != ""
}

// IsAvailable reports whether the product can be sold
func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusInStock
}

// MarkSold flags the product as sold. A product never reverts automatically.
func (p *Product) MarkSold(now time.Time) {
	p.Status = ProductStatusSold
	p.Touch(now)
}

// Label renders "Brand Model Year" for messages
func (p *Product) Label() string {
	return strings.TrimSpace(p.Brand + " " + p.Model + " " + itoa(p.Year))
}

func (p *Product) validate() error {
	if len(p.Brand) < 2 {
		return shared.InvalidParameterError("INVALID_BRAND", "brand must have at least 2 characters")
	}
	if p.Model == "" {
		return shared.InvalidParameterError("INVALID_MODEL", "model is required")
	}
	if p.Year < 1900 || p.Year > 2100 {
		return shared.InvalidParameterError("INVALID_YEAR", "year must be between 1900 and 2100")
	}
	if len(p.Chassis) < 5 {
		return shared.InvalidParameterError("INVALID_CHASSIS", "chassis must have at least 5 characters")
	}
	if p.Color == "" {
		return shared.InvalidParameterError("INVALID_COLOR", "color is required")
	}
	if p.Km != nil && *p.Km < 0 {
		return shared.InvalidParameterError("INVALID_KM", "km cannot be negative")
	}
	if p.CostPrice.IsNegative() || p.SalePrice.IsNegative() {
		return shared.InvalidParameterError("NEGATIVE_AMOUNT", "prices cannot be negative")
	}
	return nil
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Brand     *string
	Model     *string
	Year      *int
	Plate     *string
	Chassis   *string
	Km        *int
	Color     *string
	CostPrice *decimal.Decimal
	SalePrice *decimal.Decimal
	Status    *ProductStatus
}

// Apply merges a patch into the product and revalidates it
func (p *Product) Apply(patch ProductPatch, now time.Time) error {
	if patch.Brand != nil {
		p.Brand = strings.TrimSpace(*patch.Brand)
	}
	if patch.Model != nil {
		p.Model = strings.TrimSpace(*patch.Model)
	}
	if patch.Year != nil {
		p.Year = *patch.Year
	}
	if patch.Plate != nil {
		p.SetPlate(*patch.Plate)
	}
	if patch.Chassis != nil {
		if err := p.SetChassis(*patch.Chassis); err != nil {
			return err
		}
	}
	if patch.Km != nil {
		p.Km = patch.Km
	}
	if patch.Color != nil {
		p.Color = strings.TrimSpace(*patch.Color)
	}
	if patch.CostPrice != nil {
		p.CostPrice = valueobject.RoundMoney(*patch.CostPrice)
	}
	if patch.SalePrice != nil {
		p.SalePrice = valueobject.RoundMoney(*patch.SalePrice)
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return shared.InvalidParameterError("INVALID_PRODUCT_STATUS", "invalid product status")
		}
		p.Status = *patch.Status
	}
	if err := p.validate(); err != nil {
		return err
	}
	p.Touch(now)
	return nil
}
