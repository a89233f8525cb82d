package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
)

// ReminderConfig tunes the reminder passes
type ReminderConfig struct {
	DueSoonLeadDays      int
	FinanceBatchSize     int
	InstallmentBatchSize int
	// Location decides which civil date "today" is
	Location *time.Location
	// Recipients of owner reminders; empty means the transport default
	Recipients []string
}

func (c ReminderConfig) withDefaults() ReminderConfig {
	if c.DueSoonLeadDays <= 0 {
		c.DueSoonLeadDays = 5
	}
	if c.FinanceBatchSize <= 0 {
		c.FinanceBatchSize = 50
	}
	if c.InstallmentBatchSize <= 0 {
		c.InstallmentBatchSize = 100
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// ReminderService sends the owner the finance and installment reminders.
// Each pass returns the number of messages delivered. A delivery failure is recorded
// on the record and never fails the pass; only persistence errors are returned.
type ReminderService struct {
	cfg      ReminderConfig
	sender   MessageSender
	observer DeliveryObserver
	logger   *zap.Logger
}

// ReminderOption configures a ReminderService
type ReminderOption func(*ReminderService)

// WithDeliveryObserver reports every attempt to o
func WithDeliveryObserver(o DeliveryObserver) ReminderOption {
	return func(s *ReminderService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewReminderService creates a new ReminderService
func NewReminderService(cfg ReminderConfig, sender MessageSender, logger *zap.Logger, opts ...ReminderOption) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReminderService{cfg: cfg.withDefaults(), sender: sender, observer: nopObserver{}, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessFinanceDues reminds the owner of PENDING payables due today or earlier
func (s *ReminderService) ProcessFinanceDues(ctx context.Context, repos appshared.TransactionalRepositories, now time.Time) (int, error) {
	today := valueobject.Today(now, s.cfg.Location)
	entries, err := repos.FinanceEntries().FindDueForReminder(ctx, today, now, s.cfg.FinanceBatchSize)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range entries {
		e := &entries[i]
		ok, err := s.deliver(ctx, delivery{
			kind:     KindFinance,
			recordID: e.ID.String(),
			tracking: &e.Reminder,
			body:     financeDueMessage(e),
			save:     func() error { return repos.FinanceEntries().Save(ctx, e) },
		}, now)
		if err != nil {
			return sent, err
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

// ProcessInstallmentsDueSoon reminds the owner of installments due in exactly DueSoonLeadDays
func (s *ReminderService) ProcessInstallmentsDueSoon(ctx context.Context, repos appshared.TransactionalRepositories, now time.Time) (int, error) {
	today := valueobject.Today(now, s.cfg.Location)
	target := today.AddDate(0, 0, s.cfg.DueSoonLeadDays)
	candidates, err := repos.Installments().FindDueSoon(ctx, target, now, s.cfg.InstallmentBatchSize)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range candidates {
		c := &candidates[i]
		ok, err := s.deliver(ctx, delivery{
			kind:     KindDueSoon,
			recordID: c.Installment.ID.String(),
			tracking: &c.Installment.DueSoonReminder,
			body:     dueSoonMessage(c, s.cfg.DueSoonLeadDays),
			save:     func() error { return repos.Installments().Save(ctx, &c.Installment) },
		}, now)
		if err != nil {
			return sent, err
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

// ProcessInstallmentsOverdue reminds the owner of PENDING installments past their due date
func (s *ReminderService) ProcessInstallmentsOverdue(ctx context.Context, repos appshared.TransactionalRepositories, now time.Time) (int, error) {
	today := valueobject.Today(now, s.cfg.Location)
	candidates, err := repos.Installments().FindOverdue(ctx, today, now, s.cfg.InstallmentBatchSize)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range candidates {
		c := &candidates[i]
		ok, err := s.deliver(ctx, delivery{
			kind:     KindOverdue,
			recordID: c.Installment.ID.String(),
			tracking: &c.Installment.OverdueReminder,
			body:     overdueMessage(c),
			save:     func() error { return repos.Installments().Save(ctx, &c.Installment) },
		}, now)
		if err != nil {
			return sent, err
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

type delivery struct {
	kind     string
	recordID string
	tracking *notification.Tracking
	body     string
	save     func() error
}

// deliver claims the record as SENDING and persists that before calling the transport,
// then records the outcome.
func (s *ReminderService) deliver(ctx context.Context, d delivery, now time.Time) (bool, error) {
	if err := d.tracking.MarkSending(now); err != nil {
		// selected but no longer eligible; leave it alone
		return false, nil
	}
	if err := d.save(); err != nil {
		return false, err
	}

	sendErr := s.sender.SendText(ctx, s.cfg.Recipients, d.body)
	s.observer.ObserveDelivery(ctx, d.kind, sendErr)
	if sendErr != nil {
		d.tracking.MarkFailed(sendErr, now)
		s.logger.Warn("reminder delivery failed",
			zap.String("kind", d.kind),
			zap.String("record_id", d.recordID),
			zap.Int("try_count", d.tracking.TryCount),
			zap.Timep("next_retry_at", d.tracking.NextRetryAt),
			zap.Error(sendErr))
	} else {
		d.tracking.MarkSent(now)
	}
	if err := d.save(); err != nil {
		return false, err
	}
	return sendErr == nil, nil
}

// ReclaimStale turns reminders stuck in SENDING for longer than after into FAILED,
// so the backoff schedule retries them. The original attempt may have reached the
// transport, so this trades a possible duplicate for a record that would otherwise stay stuck.
func (s *ReminderService) ReclaimStale(ctx context.Context, repos appshared.TransactionalRepositories, now time.Time, after time.Duration) (int, error) {
	if after <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-after)
	reclaimed := 0

	entries, err := repos.FinanceEntries().FindStaleSending(ctx, cutoff, s.cfg.FinanceBatchSize)
	if err != nil {
		return 0, err
	}
	for i := range entries {
		if entries[i].Reminder.ReclaimStale(now, after) {
			if err := repos.FinanceEntries().Save(ctx, &entries[i]); err != nil {
				return reclaimed, err
			}
			reclaimed++
		}
	}

	installments, err := repos.Installments().FindStaleSending(ctx, cutoff, s.cfg.InstallmentBatchSize)
	if err != nil {
		return reclaimed, err
	}
	for i := range installments {
		inst := &installments[i]
		soon := inst.DueSoonReminder.ReclaimStale(now, after)
		over := inst.OverdueReminder.ReclaimStale(now, after)
		if !soon && !over {
			continue
		}
		if err := repos.Installments().Save(ctx, inst); err != nil {
			return reclaimed, err
		}
		reclaimed++
	}

	if reclaimed > 0 {
		s.logger.Warn("reclaimed stale SENDING reminders", zap.Int("count", reclaimed), zap.Duration("after", after))
	}
	return reclaimed, nil
}
