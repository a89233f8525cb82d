package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wimotos/backend/internal/domain/finance"
)

// FinanceEntryModel is the persistence model for the finance Entry entity.
type FinanceEntryModel struct {
	BaseModel
	Company     string              `gorm:"type:varchar(120);not null"`
	Amount      decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	DueDate     time.Time           `gorm:"type:date;not null;index:ix_finance_due_status,priority:1"`
	Status      finance.EntryStatus `gorm:"type:varchar(16);not null;default:'PENDING';index:ix_finance_due_status,priority:2"`
	Description *string             `gorm:"type:varchar(255)"`
	Notes       *string             `gorm:"type:text"`
	Reminder    TrackingColumns     `gorm:"embedded;embeddedPrefix:wpp_"`
}

// TableName returns the table name for GORM
func (FinanceEntryModel) TableName() string {
	return "finance_entries"
}

// ToDomain converts the persistence model to a domain Entry.
func (m *FinanceEntryModel) ToDomain() *finance.Entry {
	return &finance.Entry{
		BaseEntity:  m.BaseModel.ToDomain(),
		Company:     m.Company,
		Amount:      m.Amount,
		DueDate:     dateUTC(m.DueDate),
		Status:      m.Status,
		Description: m.Description,
		Notes:       m.Notes,
		Reminder:    m.Reminder.ToDomain(),
	}
}

// FromDomain populates the persistence model from a domain Entry.
func (m *FinanceEntryModel) FromDomain(e *finance.Entry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Company = e.Company
	m.Amount = e.Amount
	m.DueDate = dateUTC(e.DueDate)
	m.Status = e.Status
	m.Description = e.Description
	m.Notes = e.Notes
	m.Reminder = TrackingColumnsFromDomain(e.Reminder)
}

// FinanceEntryModelFromDomain creates a new persistence model from a domain Entry.
func FinanceEntryModelFromDomain(e *finance.Entry) *FinanceEntryModel {
	m := &FinanceEntryModel{}
	m.FromDomain(e)
	return m
}
