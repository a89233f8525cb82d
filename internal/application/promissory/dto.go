package promissory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/promissory"
)

// NoteResponse represents a promissory note in API responses
type NoteResponse struct {
	ID           uuid.UUID             `json:"id"`
	PublicID     string                `json:"public_id"`
	SaleID       *uuid.UUID            `json:"sale_id"`
	ClientID     uuid.UUID             `json:"client_id"`
	ProductID    *uuid.UUID            `json:"product_id"`
	Total        decimal.Decimal       `json:"total"`
	EntryAmount  decimal.Decimal       `json:"entry_amount"`
	Financed     decimal.Decimal       `json:"financed"`
	Status       string                `json:"status"`
	IssuedAt     *time.Time            `json:"issued_at"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Installments []InstallmentResponse `json:"installments,omitempty"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID              uuid.UUID                  `json:"id"`
	PromissoryID    uuid.UUID                  `json:"promissory_id"`
	Number          int                        `json:"number"`
	DueDate         string                     `json:"due_date"`
	Amount          decimal.Decimal            `json:"amount"`
	Status          string                     `json:"status"`
	PaidAt          *time.Time                 `json:"paid_at"`
	PaidAmount      *decimal.Decimal           `json:"paid_amount"`
	Note            *string                    `json:"note,omitempty"`
	DueSoonReminder appshared.ReminderResponse `json:"due_soon_reminder"`
	OverdueReminder appshared.ReminderResponse `json:"overdue_reminder"`
}

// ListNotesQuery filters GET /promissories
type ListNotesQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=DRAFT ISSUED PAID CANCELED"`
	appshared.ListQuery
}

// ListInstallmentsQuery filters GET /installments
type ListInstallmentsQuery struct {
	PromissoryID *uuid.UUID `form:"promissory_id"`
	Status       string     `form:"status" binding:"omitempty,oneof=PENDING PAID CANCELED"`
	appshared.ListQuery
}

// PayInstallmentRequest is the body of POST /installments/:id/pay. A nil amount pays the full installment.
type PayInstallmentRequest struct {
	PaidAmount *decimal.Decimal `json:"paid_amount"`
}

// PayInstallmentResult carries the paid installment and the note after a possible cascade
type PayInstallmentResult struct {
	Installment InstallmentResponse `json:"installment"`
	Note        NoteResponse        `json:"promissory"`
}

// ToNoteResponse converts a note. Installments are included when loaded.
func ToNoteResponse(n *promissory.Note) NoteResponse {
	resp := NoteResponse{
		ID:          n.ID,
		PublicID:    n.PublicID,
		SaleID:      n.SaleID,
		ClientID:    n.ClientID,
		ProductID:   n.ProductID,
		Total:       n.Total,
		EntryAmount: n.EntryAmount,
		Financed:    n.Financed(),
		Status:      string(n.Status),
		IssuedAt:    n.IssuedAt,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
	if len(n.Installments) > 0 {
		resp.Installments = ToInstallmentResponses(n.Installments)
	}
	return resp
}

// ToNoteResponses converts a list of notes
func ToNoteResponses(notes []promissory.Note) []NoteResponse {
	out := make([]NoteResponse, len(notes))
	for i := range notes {
		out[i] = ToNoteResponse(&notes[i])
	}
	return out
}

// ToInstallmentResponse converts an installment
func ToInstallmentResponse(i *promissory.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:              i.ID,
		PromissoryID:    i.PromissoryID,
		Number:          i.Number,
		DueDate:         i.DueDate.Format(time.DateOnly),
		Amount:          i.Amount,
		Status:          string(i.Status),
		PaidAt:          i.PaidAt,
		PaidAmount:      i.PaidAmount,
		Note:            i.Note,
		DueSoonReminder: appshared.ToReminderResponse(i.DueSoonReminder),
		OverdueReminder: appshared.ToReminderResponse(i.OverdueReminder),
	}
}

// ToInstallmentResponses converts a list of installments
func ToInstallmentResponses(items []promissory.Installment) []InstallmentResponse {
	out := make([]InstallmentResponse, len(items))
	for i := range items {
		out[i] = ToInstallmentResponse(&items[i])
	}
	return out
}
