package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	appshared "github.com/wimotos/backend/internal/application/shared"
)

// CycleReport counts the messages delivered by one cycle
type CycleReport struct {
	Reclaimed int `json:"reclaimed"`
	Finance   int `json:"finance"`
	DueSoon   int `json:"due_soon"`
	Overdue   int `json:"overdue"`
	Offers    int `json:"offers"`
}

// Total is the number of messages delivered
func (r CycleReport) Total() int {
	return r.Finance + r.DueSoon + r.Overdue + r.Offers
}

// CycleRunner runs every pass of one scheduler iteration inside one transaction
type CycleRunner struct {
	txScope    appshared.TransactionScope
	reminders  *ReminderService
	offers     *OfferService
	clock      appshared.Clock
	staleAfter time.Duration
	logger     *zap.Logger
}

// CycleOption configures a CycleRunner
type CycleOption func(*CycleRunner)

// WithStaleSweep enables reclaiming reminders stuck in SENDING for longer than after.
// Zero leaves the sweep off.
func WithStaleSweep(after time.Duration) CycleOption {
	return func(r *CycleRunner) { r.staleAfter = after }
}

// NewCycleRunner creates a new CycleRunner. offers may be nil.
func NewCycleRunner(txScope appshared.TransactionScope, reminders *ReminderService, offers *OfferService,
	clock appshared.Clock, logger *zap.Logger, opts ...CycleOption) *CycleRunner {
	if clock == nil {
		clock = appshared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &CycleRunner{txScope: txScope, reminders: reminders, offers: offers, clock: clock, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunCycle runs the stale sweep (when enabled), finance dues, due-soon, overdue and
// offers passes. Any persistence error rolls the whole cycle back.
func (r *CycleRunner) RunCycle(ctx context.Context) (CycleReport, error) {
	now := r.clock.Now()
	var report CycleReport
	err := r.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		if r.staleAfter > 0 {
			if report.Reclaimed, err = r.reminders.ReclaimStale(ctx, repos, now, r.staleAfter); err != nil {
				return err
			}
		}
		if report.Finance, err = r.reminders.ProcessFinanceDues(ctx, repos, now); err != nil {
			return err
		}
		if report.DueSoon, err = r.reminders.ProcessInstallmentsDueSoon(ctx, repos, now); err != nil {
			return err
		}
		if report.Overdue, err = r.reminders.ProcessInstallmentsOverdue(ctx, repos, now); err != nil {
			return err
		}
		if r.offers != nil {
			if report.Offers, err = r.offers.ProcessDailyOffers(ctx, repos, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return CycleReport{}, err
	}
	if report.Total() > 0 || report.Reclaimed > 0 {
		r.logger.Info("reminder cycle sent messages",
			zap.Int("finance", report.Finance),
			zap.Int("due_soon", report.DueSoon),
			zap.Int("overdue", report.Overdue),
			zap.Int("offers", report.Offers),
			zap.Int("reclaimed", report.Reclaimed))
	}
	return report, nil
}
