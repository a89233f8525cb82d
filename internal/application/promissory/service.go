// Package promissory implements the promissory note and installment use cases.
package promissory

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/promissory"
	"github.com/wimotos/backend/internal/domain/shared"
)

// ErrBookletUnavailable is returned when no booklet renderer is configured
var ErrBookletUnavailable = shared.NewKindError(shared.KindUnavailable, "PRINTING_DISABLED",
	"booklet printing is disabled")

// Booklet is the data printed on a payment booklet
type Booklet struct {
	Note           NoteResponse
	ClientName     string
	ClientPhone    string
	ClientCPF      *string
	ProductLabel   string
	ProductPlate   *string
	ProductChassis string
}

// BookletRenderer prints a booklet to PDF
type BookletRenderer interface {
	RenderBooklet(ctx context.Context, booklet Booklet) ([]byte, error)
}

// Service handles promissory note operations
type Service struct {
	txScope  appshared.TransactionScope
	clock    appshared.Clock
	renderer BookletRenderer
	logger   *zap.Logger
}

// NewService creates a new promissory service. renderer may be nil.
func NewService(txScope appshared.TransactionScope, clock appshared.Clock, renderer BookletRenderer, logger *zap.Logger) *Service {
	if clock == nil {
		clock = appshared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{txScope: txScope, clock: clock, renderer: renderer, logger: logger}
}

// Get returns a note with its installments
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*NoteResponse, error) {
	var resp NoteResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		note, err := repos.Notes().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToNoteResponse(note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns notes, newest first
func (s *Service) List(ctx context.Context, q ListNotesQuery) ([]NoteResponse, error) {
	filter := promissory.NoteFilter{Window: q.Window()}
	if q.Status != "" {
		st, err := promissory.ParseNoteStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	var out []NoteResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		notes, err := repos.Notes().List(ctx, filter)
		if err != nil {
			return err
		}
		out = ToNoteResponses(notes)
		return nil
	})
	return out, err
}

// Issue moves a DRAFT note to ISSUED. Issuing an ISSUED or PAID note returns it unchanged.
func (s *Service) Issue(ctx context.Context, id uuid.UUID) (*NoteResponse, error) {
	var resp NoteResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		note, err := repos.Notes().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		changed, err := note.Issue(s.clock.Now())
		if err != nil {
			return err
		}
		if changed {
			if err := repos.Notes().Save(ctx, note); err != nil {
				return err
			}
			s.logger.Info("promissory issued", zap.String("public_id", note.PublicID))
		}
		resp = ToNoteResponse(note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel cancels a note and every pending installment together
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*NoteResponse, error) {
	var resp NoteResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		note, err := repos.Notes().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		changed, err := note.Cancel(s.clock.Now())
		if err != nil {
			return err
		}
		if changed {
			if err := repos.Notes().Save(ctx, note); err != nil {
				return err
			}
			s.logger.Info("promissory canceled", zap.String("public_id", note.PublicID))
		}
		resp = ToNoteResponse(note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// PayInstallment pays one installment. When it was the last unpaid one the note
// becomes PAID in the same transaction.
func (s *Service) PayInstallment(ctx context.Context, id uuid.UUID, req PayInstallmentRequest) (*PayInstallmentResult, error) {
	var result PayInstallmentResult
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		inst, err := repos.Installments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		note, err := repos.Notes().FindByIDForUpdate(ctx, inst.PromissoryID)
		if err != nil {
			return err
		}
		if note.Status == promissory.NoteStatusCanceled {
			return promissory.ErrNoteCanceled
		}
		target := note.FindInstallment(id)
		if target == nil {
			return shared.NotFoundError("installment")
		}

		now := s.clock.Now()
		changed, err := target.Pay(req.PaidAmount, now)
		if err != nil {
			return err
		}
		if changed {
			if note.MarkPaidByCascade(now) {
				s.logger.Info("promissory paid off", zap.String("public_id", note.PublicID))
			}
			if err := repos.Notes().Save(ctx, note); err != nil {
				return err
			}
		}
		result = PayInstallmentResult{
			Installment: ToInstallmentResponse(target),
			Note:        ToNoteResponse(note),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetInstallment returns one installment
func (s *Service) GetInstallment(ctx context.Context, id uuid.UUID) (*InstallmentResponse, error) {
	var resp InstallmentResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		inst, err := repos.Installments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToInstallmentResponse(inst)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListInstallments returns installments ordered by note and number
func (s *Service) ListInstallments(ctx context.Context, q ListInstallmentsQuery) ([]InstallmentResponse, error) {
	filter := promissory.InstallmentFilter{PromissoryID: q.PromissoryID, Window: q.Window()}
	if q.Status != "" {
		st, err := promissory.ParseInstallmentStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	var out []InstallmentResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		items, err := repos.Installments().List(ctx, filter)
		if err != nil {
			return err
		}
		out = ToInstallmentResponses(items)
		return nil
	})
	return out, err
}

// RenderBooklet prints the payment booklet of a note as PDF
func (s *Service) RenderBooklet(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrBookletUnavailable
	}

	var booklet Booklet
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		note, err := repos.Notes().FindByID(ctx, id)
		if err != nil {
			return err
		}
		client, err := repos.Clients().FindByID(ctx, note.ClientID)
		if err != nil {
			return err
		}
		booklet = Booklet{
			Note:        ToNoteResponse(note),
			ClientName:  client.Name,
			ClientPhone: client.Phone,
			ClientCPF:   client.CPF,
		}
		if note.ProductID != nil {
			product, err := repos.Products().FindByID(ctx, *note.ProductID)
			if err != nil {
				return err
			}
			booklet.ProductLabel = product.DisplayLabel()
			booklet.ProductPlate = product.Plate
			booklet.ProductChassis = product.Chassis
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderBooklet(ctx, booklet)
}
