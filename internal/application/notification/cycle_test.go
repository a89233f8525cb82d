package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notificationapp "github.com/wimotos/backend/internal/application/notification"
	"github.com/wimotos/backend/internal/domain/finance"
	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/tests/testutil"
)

func TestRunCycle(t *testing.T) {
	env := newOfferEnv(t)
	fx := env.fx
	ctx := context.Background()
	observer := newCountingObserver()

	seedEntry(t, fx, "Energia SA", "350", day(2026, 1, 30), finance.EntryStatusPending)
	stuck := seedEntry(t, fx, "Agua SA", "80", day(2026, 1, 28), finance.EntryStatusPending)
	require.NoError(t, stuck.Reminder.MarkSending(fx.Clock.Now().Add(-2*time.Hour)))
	require.NoError(t, fx.Repos.FinanceEntries().Save(ctx, stuck))

	seedNote(t, fx, "PROM-2026-000401", "CHASSIS0000000401", day(2026, 2, 4), 1)
	seedNote(t, fx, "PROM-2026-000402", "CHASSIS0000000402", day(2026, 1, 15), 1)
	env.productWithImage(t, "CHASSIS0000000403", true)

	reminders := notificationapp.NewReminderService(notificationapp.ReminderConfig{
		Recipients: []string{"5511988887777"},
	}, env.sender, nil, notificationapp.WithDeliveryObserver(observer))
	offers := env.service(defaultOfferConfig())
	runner := notificationapp.NewCycleRunner(fx.Scope(), reminders, offers, fx.Clock, nil,
		notificationapp.WithStaleSweep(30*time.Minute))

	report, err := runner.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, notificationapp.CycleReport{Reclaimed: 1, Finance: 1, DueSoon: 1, Overdue: 1, Offers: 1}, report)
	assert.Equal(t, 4, report.Total())
	assert.Equal(t, map[string]int{
		notificationapp.KindFinance: 1,
		notificationapp.KindDueSoon: 1,
		notificationapp.KindOverdue: 1,
	}, observer.ok)

	got := reloadEntry(t, fx, stuck)
	assert.Equal(t, notification.SendStatusFailed, got.Reminder.Status)

	report, err = runner.RunCycle(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Total(), "sent records and today's offers are not repeated")

	fx.Clock.Advance(61 * time.Second)
	report, err = runner.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Finance, "the reclaimed entry is retried after its backoff")
	assert.Equal(t, notification.SendStatusSent, reloadEntry(t, fx, stuck).Reminder.Status)
}

func TestRunCycle_WithoutOffersOrSweep(t *testing.T) {
	fx := testutil.NewFixture(t)
	ctx := context.Background()
	stuck := seedEntry(t, fx, "Agua SA", "80", day(2026, 1, 28), finance.EntryStatusPending)
	require.NoError(t, stuck.Reminder.MarkSending(fx.Clock.Now().Add(-2*time.Hour)))
	require.NoError(t, fx.Repos.FinanceEntries().Save(ctx, stuck))

	reminders := notificationapp.NewReminderService(notificationapp.ReminderConfig{}, &fakeSender{}, nil)
	runner := notificationapp.NewCycleRunner(fx.Scope(), reminders, nil, fx.Clock, nil)

	report, err := runner.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, notificationapp.CycleReport{}, report)
	assert.Equal(t, notification.SendStatusSending, reloadEntry(t, fx, stuck).Reminder.Status)
}
