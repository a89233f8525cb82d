package promissory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/shared"
)

// NoteFilter narrows note listings
type NoteFilter struct {
	Status NoteStatus
	shared.Window
}

// InstallmentFilter narrows installment listings
type InstallmentFilter struct {
	PromissoryID *uuid.UUID
	Status       InstallmentStatus
	shared.Window
}

// NoteRepository defines the interface for promissory note persistence.
// Notes are loaded together with their installments, ordered by number.
type NoteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Note, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Note, error)
	ExistsByPublicID(ctx context.Context, publicID string) (bool, error)
	// List returns notes without installments, ordered by created_at descending
	List(ctx context.Context, filter NoteFilter) ([]Note, error)
	// Save upserts the note and every loaded installment
	Save(ctx context.Context, note *Note) error
}

// ReminderCandidate is an installment joined with what its reminder message needs
type ReminderCandidate struct {
	Installment  Installment
	NotePublicID string
	ClientName   string
	ClientPhone  string
	ProductLabel string
}

// InstallmentRepository defines the interface for installment persistence
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Installment, error)
	List(ctx context.Context, filter InstallmentFilter) ([]Installment, error)
	// FindDueSoon returns PENDING installments due exactly on dueDate whose due-soon
	// reminder is not SENT and whose retry window has elapsed
	FindDueSoon(ctx context.Context, dueDate, now time.Time, limit int) ([]ReminderCandidate, error)
	// FindOverdue returns PENDING installments due before today whose overdue
	// reminder is not SENT and whose retry window has elapsed
	FindOverdue(ctx context.Context, today, now time.Time, limit int) ([]ReminderCandidate, error)
	// FindStaleSending returns installments with either reminder SENDING since before cutoff
	FindStaleSending(ctx context.Context, cutoff time.Time, limit int) ([]Installment, error)
	Save(ctx context.Context, installment *Installment) error
}
