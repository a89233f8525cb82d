package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity. Timestamps come from the domain clock, so
// gorm's automatic create/update times are switched off.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt.UTC()
	m.UpdatedAt = e.UpdatedAt.UTC()
}

// TrackingColumns stores one notification.Tracking. Models embed it with a column prefix
// (wpp_ for finance entries, wa_due_ and wa_overdue_ for installments).
type TrackingColumns struct {
	Status        notification.SendStatus `gorm:"column:status;type:varchar(16);not null;default:'PENDING'"`
	Tries         int                     `gorm:"column:tries;not null;default:0"`
	LastError     *string                 `gorm:"column:last_error;type:text"`
	SentAt        *time.Time              `gorm:"column:sent_at"`
	NextRetryAt   *time.Time              `gorm:"column:next_retry_at"`
	LastAttemptAt *time.Time              `gorm:"column:last_attempt_at"`
}

// ToDomain converts the columns to a Tracking value
func (c TrackingColumns) ToDomain() notification.Tracking {
	t := notification.Tracking{
		Status:        c.Status,
		TryCount:      c.Tries,
		SentAt:        c.SentAt,
		NextRetryAt:   c.NextRetryAt,
		LastAttemptAt: c.LastAttemptAt,
	}
	if t.Status == "" {
		t.Status = notification.SendStatusPending
	}
	if c.LastError != nil {
		t.LastError = *c.LastError
	}
	return t
}

// TrackingColumnsFromDomain converts a Tracking value to its columns
func TrackingColumnsFromDomain(t notification.Tracking) TrackingColumns {
	c := TrackingColumns{
		Status:        t.Status,
		Tries:         t.TryCount,
		SentAt:        utcPtr(t.SentAt),
		NextRetryAt:   utcPtr(t.NextRetryAt),
		LastAttemptAt: utcPtr(t.LastAttemptAt),
	}
	if t.LastError != "" {
		msg := t.LastError
		c.LastError = &msg
	}
	return c
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// All returns every model in dependency order, for AutoMigrate in tests and sqlite setups
func All() []any {
	return []any{
		&UserModel{},
		&ClientModel{},
		&ProductModel{},
		&SaleModel{},
		&PromissoryModel{},
		&InstallmentModel{},
		&FinanceEntryModel{},
		&SchedulerStateModel{},
	}
}
