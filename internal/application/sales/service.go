// Package sales implements sale registration and its status workflow.
package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	promissoryapp "github.com/wimotos/backend/internal/application/promissory"
	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/promissory"
	"github.com/wimotos/backend/internal/domain/sales"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

// ErrProductUnavailable is returned when the product is not IN_STOCK
var ErrProductUnavailable = shared.ConflictError("PRODUCT_UNAVAILABLE",
	"product is not available (must be IN_STOCK)")

// Service handles sale operations
type Service struct {
	txScope appshared.TransactionScope
	clock   appshared.Clock
	logger  *zap.Logger
	idOpts  []shared.IDOption
}

// Option configures a Service
type Option func(*Service)

// WithIDOptions tunes public id generation. Used by tests.
func WithIDOptions(opts ...shared.IDOption) Option {
	return func(s *Service) { s.idOpts = opts }
}

// NewService creates a new sale service
func NewService(txScope appshared.TransactionScope, clock appshared.Clock, logger *zap.Logger, opts ...Option) *Service {
	if clock == nil {
		clock = appshared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{txScope: txScope, clock: clock, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSale registers a sale, marks its product SOLD and, for PROMISSORY payments,
// creates the note with its installment schedule. Everything commits together or not at all.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (*CreateSaleResult, error) {
	var firstDue *time.Time
	if req.FirstDueDate != nil && *req.FirstDueDate != "" {
		d, err := valueobject.ParseDate(*req.FirstDueDate)
		if err != nil {
			return nil, shared.InvalidParameterError("INVALID_DATE", "first_due_date must be YYYY-MM-DD")
		}
		firstDue = &d
	}

	now := s.clock.Now()
	var result CreateSaleResult
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if _, err := repos.Clients().FindByID(ctx, req.ClientID); err != nil {
			return err
		}
		if _, err := repos.Users().FindByID(ctx, req.UserID); err != nil {
			return err
		}
		product, err := repos.Products().FindByIDForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if !product.IsAvailable() {
			return ErrProductUnavailable
		}
		// Missing references win over a malformed payment type.
		paymentType, err := sales.ParsePaymentType(req.PaymentType)
		if err != nil {
			return err
		}

		amounts := sales.Amounts{Total: req.Total, Discount: req.Discount, EntryAmount: req.EntryAmount}.Rounded()
		if err := amounts.Validate(); err != nil {
			return err
		}

		publicID, err := shared.GenerateUniqueID(ctx, shared.SalePrefix, repos.Sales().ExistsByPublicID, s.idOptions()...)
		if err != nil {
			return s.generationFailed("sale", err)
		}
		sale, err := sales.NewSale(publicID, req.ClientID, req.UserID, req.ProductID, amounts, paymentType, now)
		if err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		product.MarkSold(now)
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		result.Sale = ToSaleResponse(sale)

		if paymentType != sales.PaymentPromissory {
			return nil
		}
		note, err := s.createNote(ctx, repos, sale, product, amounts, req.InstallmentsCount, firstDue, now)
		if err != nil {
			return err
		}
		resp := promissoryapp.ToNoteResponse(note)
		result.Promissory = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("public_id", result.Sale.PublicID),
		zap.String("payment_type", result.Sale.PaymentType))
	return &result, nil
}

func (s *Service) createNote(ctx context.Context, repos appshared.TransactionalRepositories, sale *sales.Sale,
	product *catalog.Product, amounts sales.Amounts, count *int, firstDue *time.Time, now time.Time) (*promissory.Note, error) {
	if count == nil || *count < 1 {
		return nil, promissory.ErrMissingInstallments
	}
	remaining := valueobject.RoundMoney(amounts.Total.Sub(amounts.Entry()))
	if remaining.IsNegative() {
		return nil, promissory.ErrEntryExceedsTotal
	}

	publicID, err := shared.GenerateUniqueID(ctx, shared.PromissoryPrefix, repos.Notes().ExistsByPublicID, s.idOptions()...)
	if err != nil {
		return nil, s.generationFailed("promissory", err)
	}
	saleID := sale.ID
	productID := product.ID
	note := promissory.NewNote(publicID, &saleID, sale.ClientID, &productID, amounts.Total, amounts.Entry(), now)

	first := valueobject.AddCalendarMonths(valueobject.DateOf(now), 1)
	if firstDue != nil {
		first = *firstDue
	}
	items, err := promissory.BuildSchedule(note.ID, promissory.ScheduleInput{
		Financed:     remaining,
		Count:        *count,
		FirstDueDate: first,
	}, now)
	if err != nil {
		return nil, err
	}
	note.Installments = items
	if err := repos.Notes().Save(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) idOptions() []shared.IDOption {
	return append([]shared.IDOption{shared.WithIDClock(s.clock.Now)}, s.idOpts...)
}

func (s *Service) generationFailed(entity string, err error) error {
	if errors.Is(err, shared.ErrGenerationExhausted) {
		s.logger.Error("public id generation exhausted", zap.String("entity", entity), zap.Error(err))
	}
	return err
}

// UpdateSaleStatus moves a sale along its status table. Repeating the current status is a no-op.
func (s *Service) UpdateSaleStatus(ctx context.Context, id uuid.UUID, req UpdateSaleStatusRequest) (*SaleResponse, error) {
	status, err := sales.ParseSaleStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var resp SaleResponse
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		sale, err := repos.Sales().FindByID(ctx, id)
		if err != nil {
			return err
		}
		// CONFIRMED -> CANCELED is not offered; a confirmed sale stays confirmed.
		changed, err := sale.TransitionTo(status, s.clock.Now())
		if err != nil {
			return err
		}
		if changed {
			if err := repos.Sales().Save(ctx, sale); err != nil {
				return err
			}
		}
		resp = ToSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSale returns one sale
func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	var resp SaleResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		sale, err := repos.Sales().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSales returns one page of sales, newest first, with the total match count
func (s *Service) ListSales(ctx context.Context, q ListSalesQuery) (*SaleListResponse, error) {
	filter := sales.ListFilter{
		ClientID:    q.ClientID,
		UserID:      q.UserID,
		ProductID:   q.ProductID,
		SortBy:      q.SortBy,
		SortOrder:   q.SortOrder,
		PageRequest: shared.PageRequest{Page: q.Page, PageSize: q.PageSize},
	}
	if err := filter.PageRequest.Validate(); err != nil {
		return nil, err
	}
	if q.PaymentType != "" {
		pt, err := sales.ParsePaymentType(q.PaymentType)
		if err != nil {
			return nil, err
		}
		filter.PaymentType = &pt
	}
	if q.DateFrom != "" {
		d, err := valueobject.ParseDate(q.DateFrom)
		if err != nil {
			return nil, shared.InvalidParameterError("INVALID_DATE", "date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = &d
	}
	if q.DateTo != "" {
		d, err := valueobject.ParseDate(q.DateTo)
		if err != nil {
			return nil, shared.InvalidParameterError("INVALID_DATE", "date_to must be YYYY-MM-DD")
		}
		filter.DateTo = &d
	}

	var out SaleListResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		items, total, err := repos.Sales().List(ctx, filter)
		if err != nil {
			return err
		}
		out = SaleListResponse{Items: ToSaleResponses(items), Total: total, Page: q.Page, PageSize: q.PageSize}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
