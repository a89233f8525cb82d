package models

import (
	"github.com/shopspring/decimal"
	"github.com/wimotos/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
// Plate uniqueness is a partial index created by the SQL migration; AutoMigrate setups
// rely on the nullable unique index declared here.
type ProductModel struct {
	BaseModel
	Brand     string                `gorm:"type:varchar(60);not null;index:ix_products_brand_model,priority:1"`
	Model     string                `gorm:"type:varchar(80);not null;index:ix_products_brand_model,priority:2"`
	Year      int                   `gorm:"not null"`
	Plate     *string               `gorm:"type:varchar(7);uniqueIndex:uq_products_plate"`
	Chassis   string                `gorm:"type:varchar(30);not null;uniqueIndex:uq_products_chassis"`
	Km        *int                  `gorm:"column:km"`
	Color     string                `gorm:"type:varchar(30);not null"`
	CostPrice decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	SalePrice decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	Status    catalog.ProductStatus `gorm:"type:varchar(16);not null;default:'IN_STOCK';index:ix_products_status"`
	ImageKey  *string               `gorm:"type:varchar(512)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		Brand:      m.Brand,
		Model:      m.Model,
		Year:       m.Year,
		Plate:      m.Plate,
		Chassis:    m.Chassis,
		Km:         m.Km,
		Color:      m.Color,
		CostPrice:  m.CostPrice,
		SalePrice:  m.SalePrice,
		Status:     m.Status,
		ImageKey:   m.ImageKey,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Brand = p.Brand
	m.Model = p.Model
	m.Year = p.Year
	m.Plate = p.Plate
	m.Chassis = p.Chassis
	m.Km = p.Km
	m.Color = p.Color
	m.CostPrice = p.CostPrice
	m.SalePrice = p.SalePrice
	m.Status = p.Status
	m.ImageKey = p.ImageKey
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
