// Package finance implements the accounts payable use cases.
package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/finance"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

// EntryService handles finance entries
type EntryService struct {
	txScope appshared.TransactionScope
	clock   appshared.Clock
	logger  *zap.Logger
}

// NewEntryService creates a new EntryService
func NewEntryService(txScope appshared.TransactionScope, clock appshared.Clock, logger *zap.Logger) *EntryService {
	if clock == nil {
		clock = appshared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryService{txScope: txScope, clock: clock, logger: logger}
}

func parseDueDate(raw string) (time.Time, error) {
	d, err := valueobject.ParseDate(raw)
	if err != nil {
		return time.Time{}, shared.InvalidParameterError("INVALID_DATE", "due_date must be YYYY-MM-DD")
	}
	return d, nil
}

// Create registers a payable. Its reminder starts PENDING.
func (s *EntryService) Create(ctx context.Context, req CreateEntryRequest) (*EntryResponse, error) {
	status, err := finance.ParseEntryStatus(req.Status)
	if err != nil {
		return nil, err
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	entry, err := finance.NewEntry(req.Company, req.Amount, due, status, req.Description, req.Notes, s.clock.Now())
	if err != nil {
		return nil, err
	}
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		return repos.FinanceEntries().Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	resp := ToEntryResponse(entry)
	return &resp, nil
}

// Get returns one entry
func (s *EntryService) Get(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	var resp EntryResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		entry, err := repos.FinanceEntries().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToEntryResponse(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns entries ordered by due date then id
func (s *EntryService) List(ctx context.Context, q ListEntriesQuery) ([]EntryResponse, error) {
	filter := finance.EntryFilter{Company: strings.TrimSpace(q.Company), Window: q.Window()}
	if q.Status != "" {
		st, err := finance.ParseEntryStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	var out []EntryResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		items, err := repos.FinanceEntries().List(ctx, filter)
		if err != nil {
			return err
		}
		out = make([]EntryResponse, len(items))
		for i := range items {
			out[i] = ToEntryResponse(&items[i])
		}
		return nil
	})
	return out, err
}

// Update applies a partial update
func (s *EntryService) Update(ctx context.Context, id uuid.UUID, req UpdateEntryRequest) (*EntryResponse, error) {
	patch := finance.EntryPatch{
		Company:     req.Company,
		Amount:      req.Amount,
		Description: req.Description,
		Notes:       req.Notes,
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		patch.DueDate = &due
	}
	if req.Status != nil {
		st, err := finance.ParseEntryStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		patch.Status = &st
	}

	var resp EntryResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		entry, err := repos.FinanceEntries().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := entry.Apply(patch, s.clock.Now()); err != nil {
			return err
		}
		if err := repos.FinanceEntries().Save(ctx, entry); err != nil {
			return err
		}
		resp = ToEntryResponse(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pay settles an entry and closes its reminder so it is never sent
func (s *EntryService) Pay(ctx context.Context, id uuid.UUID, req PayEntryRequest) (*EntryResponse, error) {
	var resp EntryResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		entry, err := repos.FinanceEntries().FindByID(ctx, id)
		if err != nil {
			return err
		}
		entry.Pay(req.PaidAt, s.clock.Now())
		if err := repos.FinanceEntries().Save(ctx, entry); err != nil {
			return err
		}
		resp = ToEntryResponse(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("finance entry paid", zap.String("entry_id", id.String()))
	return &resp, nil
}
