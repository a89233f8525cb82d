package promissory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

// NoteStatus is the lifecycle state of a promissory note
type NoteStatus string

const (
	NoteStatusDraft    NoteStatus = "DRAFT"
	NoteStatusIssued   NoteStatus = "ISSUED"
	NoteStatusPaid     NoteStatus = "PAID"
	NoteStatusCanceled NoteStatus = "CANCELED"
)

// String implements fmt.Stringer
func (s NoteStatus) String() string {
	return string(s)
}

var noteTransitions = map[NoteStatus][]NoteStatus{
	NoteStatusDraft:    {NoteStatusIssued, NoteStatusCanceled},
	NoteStatusIssued:   {NoteStatusCanceled, NoteStatusPaid},
	NoteStatusPaid:     {},
	NoteStatusCanceled: {},
}

// IsValid reports whether s is a known note status
func (s NoteStatus) IsValid() bool {
	_, ok := noteTransitions[s]
	return ok
}

// CanTransitionTo reports whether the note table allows from -> to
func (s NoteStatus) CanTransitionTo(to NoteStatus) bool {
	for _, allowed := range noteTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ParseNoteStatus validates a raw status value
func ParseNoteStatus(raw string) (NoteStatus, error) {
	s := NoteStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.InvalidParameterError("INVALID_PROMISSORY_STATUS", "status must be DRAFT, ISSUED, PAID or CANCELED")
	}
	return s, nil
}

// Business rule errors
var (
	ErrCannotIssueCanceled = shared.NewKindError(shared.KindInvalidTransition, "CANNOT_ISSUE_CANCELED",
		"a canceled promissory note cannot be issued")
	ErrCannotCancelPaid = shared.ConflictError("CANNOT_CANCEL_PAID",
		"a paid promissory note cannot be canceled")
	ErrHasPaidInstallments = shared.ConflictError("HAS_PAID_INSTALLMENTS",
		"cannot cancel: the note has paid installments")
	ErrNoteCanceled = shared.ConflictError("NOTE_CANCELED",
		"the promissory note is canceled: installments cannot be paid")
	ErrCannotPayCanceled = shared.ConflictError("CANNOT_PAY_CANCELED",
		"a canceled installment cannot be paid")
	ErrNegativeAmount = shared.InvalidParameterError("NEGATIVE_AMOUNT",
		"paid_amount cannot be negative")
	ErrMissingInstallments = shared.InvalidParameterError("MISSING_INSTALLMENTS",
		"installments_count (>= 1) is required for PROMISSORY sales")
	ErrEntryExceedsTotal = shared.ConflictError("ENTRY_EXCEEDS_TOTAL",
		"entry_amount is greater than the total")
)

// Note is an installment-credit agreement. It exclusively owns its installments.
type Note struct {
	shared.BaseEntity
	PublicID     string
	SaleID       *uuid.UUID
	ClientID     uuid.UUID
	ProductID    *uuid.UUID
	Total        decimal.Decimal
	EntryAmount  decimal.Decimal
	Status       NoteStatus
	IssuedAt     *time.Time
	Installments []Installment
}

// NewNote creates a DRAFT note for a promissory sale
func NewNote(publicID string, saleID *uuid.UUID, clientID uuid.UUID, productID *uuid.UUID,
	total, entry decimal.Decimal, now time.Time) *Note {
	return &Note{
		BaseEntity:  shared.NewBaseEntity(now),
		PublicID:    publicID,
		SaleID:      saleID,
		ClientID:    clientID,
		ProductID:   productID,
		Total:       valueobject.RoundMoney(total),
		EntryAmount: valueobject.RoundMoney(entry),
		Status:      NoteStatusDraft,
	}
}

// Financed is the amount split into installments
func (n *Note) Financed() decimal.Decimal {
	return valueobject.RoundMoney(n.Total.Sub(n.EntryAmount))
}

// Issue moves DRAFT to ISSUED and stamps issued_at.
// ISSUED and PAID are returned as-is; CANCELED is rejected.
func (n *Note) Issue(now time.Time) (bool, error) {
	switch n.Status {
	case NoteStatusCanceled:
		return false, ErrCannotIssueCanceled
	case NoteStatusIssued, NoteStatusPaid:
		return false, nil
	}
	if !n.Status.CanTransitionTo(NoteStatusIssued) {
		return false, shared.InvalidTransitionError("promissory", n.Status, NoteStatusIssued)
	}
	at := now.UTC()
	n.Status = NoteStatusIssued
	n.IssuedAt = &at
	n.Touch(now)
	return true, nil
}

// Cancel cancels the note and every PENDING installment.
// The installments must be loaded. Returns false when already CANCELED.
func (n *Note) Cancel(now time.Time) (bool, error) {
	if n.Status == NoteStatusCanceled {
		return false, nil
	}
	if n.Status == NoteStatusPaid {
		return false, ErrCannotCancelPaid
	}
	for i := range n.Installments {
		if n.Installments[i].Status == InstallmentStatusPaid {
			return false, ErrHasPaidInstallments
		}
	}
	if !n.Status.CanTransitionTo(NoteStatusCanceled) {
		return false, shared.InvalidTransitionError("promissory", n.Status, NoteStatusCanceled)
	}
	n.Status = NoteStatusCanceled
	for i := range n.Installments {
		if n.Installments[i].Status == InstallmentStatusPending {
			n.Installments[i].Status = InstallmentStatusCanceled
			n.Installments[i].Touch(now)
		}
	}
	n.Touch(now)
	return true, nil
}

// AllInstallmentsPaid reports whether the note has installments and every one is PAID
func (n *Note) AllInstallmentsPaid() bool {
	if len(n.Installments) == 0 {
		return false
	}
	for i := range n.Installments {
		if n.Installments[i].Status != InstallmentStatusPaid {
			return false
		}
	}
	return true
}

// MarkPaidByCascade sets PAID once every installment is paid.
// This is the only way a note reaches PAID; a DRAFT note may be settled this way too.
func (n *Note) MarkPaidByCascade(now time.Time) bool {
	if n.Status == NoteStatusPaid || n.Status == NoteStatusCanceled {
		return false
	}
	if !n.AllInstallmentsPaid() {
		return false
	}
	n.Status = NoteStatusPaid
	n.Touch(now)
	return true
}

// FindInstallment returns the loaded installment with id, or nil
func (n *Note) FindInstallment(id uuid.UUID) *Installment {
	for i := range n.Installments {
		if n.Installments[i].ID == id {
			return &n.Installments[i]
		}
	}
	return nil
}
