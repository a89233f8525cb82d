package promissory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

// InstallmentStatus is the settlement state of one installment
type InstallmentStatus string

const (
	InstallmentStatusPending  InstallmentStatus = "PENDING"
	InstallmentStatusPaid     InstallmentStatus = "PAID"
	InstallmentStatusCanceled InstallmentStatus = "CANCELED"
)

// IsValid reports whether s is a known installment status
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPaid, InstallmentStatusCanceled:
		return true
	}
	return false
}

// ParseInstallmentStatus validates a raw status value
func ParseInstallmentStatus(raw string) (InstallmentStatus, error) {
	s := InstallmentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.InvalidParameterError("INVALID_INSTALLMENT_STATUS", "status must be PENDING, PAID or CANCELED")
	}
	return s, nil
}

// Installment is one scheduled payment of a note. It carries two independent
// reminders: one a few days before the due date, one after it is overdue.
type Installment struct {
	shared.BaseEntity
	PromissoryID    uuid.UUID
	Number          int
	DueDate         time.Time
	Amount          decimal.Decimal
	Status          InstallmentStatus
	PaidAt          *time.Time
	PaidAmount      *decimal.Decimal
	Note            *string
	DueSoonReminder notification.Tracking
	OverdueReminder notification.Tracking
}

// Pay settles the installment. An already PAID installment is returned unchanged
// and reports false. paidAmount defaults to the installment amount.
func (i *Installment) Pay(paidAmount *decimal.Decimal, now time.Time) (bool, error) {
	switch i.Status {
	case InstallmentStatusCanceled:
		return false, ErrCannotPayCanceled
	case InstallmentStatusPaid:
		return false, nil
	}
	amount := i.Amount
	if paidAmount != nil {
		amount = *paidAmount
	}
	amount = valueobject.RoundMoney(amount)
	if amount.IsNegative() {
		return false, ErrNegativeAmount
	}
	at := now.UTC()
	i.Status = InstallmentStatusPaid
	i.PaidAt = &at
	i.PaidAmount = &amount
	i.Touch(now)
	return true, nil
}

// ScheduleInput describes an installment plan
type ScheduleInput struct {
	Financed     decimal.Decimal
	Count        int
	FirstDueDate time.Time
}

// BuildSchedule splits the financed amount into Count installments.
// Installment n is due AddCalendarMonths(first, n-1); the last one absorbs the rounding remainder.
func BuildSchedule(promissoryID uuid.UUID, in ScheduleInput, now time.Time) ([]Installment, error) {
	if in.Count < 1 {
		return nil, ErrMissingInstallments
	}
	amounts, err := valueobject.SplitEvenly(in.Financed, in.Count)
	if err != nil {
		return nil, ErrMissingInstallments
	}
	first := valueobject.DateOf(in.FirstDueDate)

	out := make([]Installment, in.Count)
	for n := 1; n <= in.Count; n++ {
		out[n-1] = Installment{
			BaseEntity:      shared.NewBaseEntity(now),
			PromissoryID:    promissoryID,
			Number:          n,
			DueDate:         valueobject.AddCalendarMonths(first, n-1),
			Amount:          amounts[n-1],
			Status:          InstallmentStatusPending,
			DueSoonReminder: notification.NewTracking(),
			OverdueReminder: notification.NewTracking(),
		}
	}
	return out, nil
}
