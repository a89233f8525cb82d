package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wimotos/backend/internal/domain/sales"
)

// SaleModel is the persistence model for the Sale domain entity.
// The unique index on product_id enforces one sale per product.
type SaleModel struct {
	BaseModel
	PublicID    string            `gorm:"type:varchar(32);not null;uniqueIndex:uq_sales_public_id"`
	ClientID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uq_sales_product_id"`
	Total       decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	Discount    decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0"`
	EntryAmount *decimal.Decimal  `gorm:"type:numeric(12,2)"`
	PaymentType sales.PaymentType `gorm:"type:varchar(16);not null;default:'CASH';index:ix_sales_payment_type"`
	Status      sales.SaleStatus  `gorm:"type:varchar(16);not null;default:'DRAFT';index:ix_sales_status"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() *sales.Sale {
	return &sales.Sale{
		BaseEntity:  m.BaseModel.ToDomain(),
		PublicID:    m.PublicID,
		ClientID:    m.ClientID,
		UserID:      m.UserID,
		ProductID:   m.ProductID,
		Total:       m.Total,
		Discount:    m.Discount,
		EntryAmount: m.EntryAmount,
		PaymentType: m.PaymentType,
		Status:      m.Status,
	}
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *sales.Sale) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.PublicID = s.PublicID
	m.ClientID = s.ClientID
	m.UserID = s.UserID
	m.ProductID = s.ProductID
	m.Total = s.Total
	m.Discount = s.Discount
	m.EntryAmount = s.EntryAmount
	m.PaymentType = s.PaymentType
	m.Status = s.Status
}

// SaleModelFromDomain creates a new persistence model from a domain Sale entity.
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}
