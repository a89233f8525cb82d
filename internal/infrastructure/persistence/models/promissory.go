package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wimotos/backend/internal/domain/promissory"
)

// PromissoryModel is the persistence model for the promissory Note aggregate.
type PromissoryModel struct {
	BaseModel
	PublicID     string                `gorm:"type:varchar(32);not null;uniqueIndex:uq_promissories_public_id"`
	SaleID       *uuid.UUID            `gorm:"type:uuid;uniqueIndex:uq_promissories_sale_id"`
	ClientID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	ProductID    *uuid.UUID            `gorm:"type:uuid"`
	Total        decimal.Decimal       `gorm:"type:numeric(12,2);not null"`
	EntryAmount  decimal.Decimal       `gorm:"type:numeric(12,2);not null;default:0"`
	Status       promissory.NoteStatus `gorm:"type:varchar(16);not null;default:'DRAFT';index:ix_promissories_status"`
	IssuedAt     *time.Time
	Installments []InstallmentModel `gorm:"foreignKey:PromissoryID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PromissoryModel) TableName() string {
	return "promissories"
}

// ToDomain converts the persistence model to a domain Note. Installments are
// converted only when they were preloaded.
func (m *PromissoryModel) ToDomain() *promissory.Note {
	n := &promissory.Note{
		BaseEntity:  m.BaseModel.ToDomain(),
		PublicID:    m.PublicID,
		SaleID:      m.SaleID,
		ClientID:    m.ClientID,
		ProductID:   m.ProductID,
		Total:       m.Total,
		EntryAmount: m.EntryAmount,
		Status:      m.Status,
		IssuedAt:    m.IssuedAt,
	}
	if len(m.Installments) > 0 {
		n.Installments = make([]promissory.Installment, len(m.Installments))
		for i := range m.Installments {
			n.Installments[i] = *m.Installments[i].ToDomain()
		}
	}
	return n
}

// FromDomain populates the note columns. Installments are saved separately.
func (m *PromissoryModel) FromDomain(n *promissory.Note) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.PublicID = n.PublicID
	m.SaleID = n.SaleID
	m.ClientID = n.ClientID
	m.ProductID = n.ProductID
	m.Total = n.Total
	m.EntryAmount = n.EntryAmount
	m.Status = n.Status
	m.IssuedAt = utcPtr(n.IssuedAt)
}

// PromissoryModelFromDomain creates a new persistence model from a domain Note.
func PromissoryModelFromDomain(n *promissory.Note) *PromissoryModel {
	m := &PromissoryModel{}
	m.FromDomain(n)
	return m
}

// InstallmentModel is the persistence model for the Installment entity.
// Each reminder kind keeps its own tracking columns.
type InstallmentModel struct {
	BaseModel
	PromissoryID uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex:uq_installments_promissory_number,priority:1"`
	Number       int                          `gorm:"not null;uniqueIndex:uq_installments_promissory_number,priority:2"`
	DueDate      time.Time                    `gorm:"type:date;not null;index:ix_installments_due,priority:1"`
	Amount       decimal.Decimal              `gorm:"type:numeric(12,2);not null"`
	Status       promissory.InstallmentStatus `gorm:"type:varchar(16);not null;default:'PENDING';index:ix_installments_due,priority:2"`
	PaidAt       *time.Time
	PaidAmount   *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Note         *string          `gorm:"type:text"`
	DueSoon      TrackingColumns  `gorm:"embedded;embeddedPrefix:wa_due_"`
	Overdue      TrackingColumns  `gorm:"embedded;embeddedPrefix:wa_overdue_"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment.
func (m *InstallmentModel) ToDomain() *promissory.Installment {
	return &promissory.Installment{
		BaseEntity:      m.BaseModel.ToDomain(),
		PromissoryID:    m.PromissoryID,
		Number:          m.Number,
		DueDate:         dateUTC(m.DueDate),
		Amount:          m.Amount,
		Status:          m.Status,
		PaidAt:          m.PaidAt,
		PaidAmount:      m.PaidAmount,
		Note:            m.Note,
		DueSoonReminder: m.DueSoon.ToDomain(),
		OverdueReminder: m.Overdue.ToDomain(),
	}
}

// FromDomain populates the persistence model from a domain Installment.
func (m *InstallmentModel) FromDomain(i *promissory.Installment) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.PromissoryID = i.PromissoryID
	m.Number = i.Number
	m.DueDate = dateUTC(i.DueDate)
	m.Amount = i.Amount
	m.Status = i.Status
	m.PaidAt = utcPtr(i.PaidAt)
	m.PaidAmount = i.PaidAmount
	m.Note = i.Note
	m.DueSoon = TrackingColumnsFromDomain(i.DueSoonReminder)
	m.Overdue = TrackingColumnsFromDomain(i.OverdueReminder)
}

// InstallmentModelFromDomain creates a new persistence model from a domain Installment.
func InstallmentModelFromDomain(i *promissory.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(i)
	return m
}

// dateUTC keeps the civil date of a DATE column regardless of the driver's zone
func dateUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
