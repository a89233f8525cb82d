package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

// EntryStatus is the settlement state of a payable
type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "PENDING"
	EntryStatusPaid     EntryStatus = "PAID"
	EntryStatusCanceled EntryStatus = "CANCELED"
)

// IsValid reports whether s is a known entry status
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusPending, EntryStatusPaid, EntryStatusCanceled:
		return true
	}
	return false
}

// ParseEntryStatus validates a raw status, defaulting empty input to PENDING
func ParseEntryStatus(raw string) (EntryStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return EntryStatusPending, nil
	}
	s := EntryStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.InvalidParameterError("INVALID_FINANCE_STATUS", "status must be PENDING, PAID or CANCELED")
	}
	return s, nil
}

// Entry is a bill the dealership owes a vendor. The owner gets one reminder per entry
// once it is due.
type Entry struct {
	shared.BaseEntity
	Company     string
	Amount      decimal.Decimal
	DueDate     time.Time
	Status      EntryStatus
	Description *string
	Notes       *string
	Reminder    notification.Tracking
}

// NewEntry creates a payable with a fresh PENDING reminder
func NewEntry(company string, amount decimal.Decimal, dueDate time.Time, status EntryStatus,
	description, notes *string, now time.Time) (*Entry, error) {
	e := &Entry{
		BaseEntity:  shared.NewBaseEntity(now),
		Company:     strings.TrimSpace(company),
		Amount:      valueobject.RoundMoney(amount),
		DueDate:     valueobject.DateOf(dueDate),
		Status:      status,
		Description: description,
		Notes:       notes,
		Reminder:    notification.NewTracking(),
	}
	if e.Status == "" {
		e.Status = EntryStatusPending
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Entry) validate() error {
	if e.Company == "" {
		return shared.InvalidParameterError("INVALID_COMPANY", "company is required")
	}
	if e.Amount.IsNegative() {
		return shared.InvalidParameterError("NEGATIVE_AMOUNT", "amount cannot be negative")
	}
	if !e.Status.IsValid() {
		return shared.InvalidParameterError("INVALID_FINANCE_STATUS", "status must be PENDING, PAID or CANCELED")
	}
	return nil
}

// EntryPatch is a partial update
type EntryPatch struct {
	Company     *string
	Amount      *decimal.Decimal
	DueDate     *time.Time
	Status      *EntryStatus
	Description *string
	Notes       *string
}

// Apply merges a patch into the entry
func (e *Entry) Apply(p EntryPatch, now time.Time) error {
	if p.Company != nil {
		e.Company = strings.TrimSpace(*p.Company)
	}
	if p.Amount != nil {
		e.Amount = valueobject.RoundMoney(*p.Amount)
	}
	if p.DueDate != nil {
		e.DueDate = valueobject.DateOf(*p.DueDate)
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Description != nil {
		e.Description = p.Description
	}
	if p.Notes != nil {
		e.Notes = p.Notes
	}
	if err := e.validate(); err != nil {
		return err
	}
	e.Touch(now)
	return nil
}

// Pay settles the entry. The reminder is closed as SENT at paidAt so no message
// goes out for a bill that is already paid.
func (e *Entry) Pay(paidAt *time.Time, now time.Time) {
	at := now
	if paidAt != nil {
		at = *paidAt
	}
	e.Status = EntryStatusPaid
	e.Reminder.MarkSent(at)
	e.Touch(now)
}

// EntryFilter narrows finance listings
type EntryFilter struct {
	Status  EntryStatus
	Company string
	shared.Window
}

// EntryRepository defines the interface for finance entry persistence
type EntryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	List(ctx context.Context, filter EntryFilter) ([]Entry, error)
	// FindDueForReminder returns PENDING entries due on or before today whose reminder
	// is not SENT and whose retry window has elapsed, ordered by due_date then id
	FindDueForReminder(ctx context.Context, today, now time.Time, limit int) ([]Entry, error)
	// FindStaleSending returns entries whose reminder has been SENDING since before cutoff
	FindStaleSending(ctx context.Context, cutoff time.Time, limit int) ([]Entry, error)
	Save(ctx context.Context, entry *Entry) error
}
