package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	financeapp "github.com/wimotos/backend/internal/application/finance"
	notificationapp "github.com/wimotos/backend/internal/application/notification"
	salesapp "github.com/wimotos/backend/internal/application/sales"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/internal/infrastructure/persistence"
	"github.com/wimotos/backend/tests/testutil"
)

func TestCreateSale_ConcurrentBuyersOfOneProduct(t *testing.T) {
	tdb := NewTestDB(t)
	fx := testutil.NewFixtureWithDB(t, tdb.DB)
	svc := salesapp.NewService(persistence.NewGormTransactionScope(tdb.DB), fx.Clock, zap.NewNop())

	seller := fx.User("vendas@wimotos.test")
	product := fx.Product("9C2KC2200RR200001")
	const buyers = 8
	clients := make([]uuid.UUID, buyers)
	for i := range clients {
		clients[i] = fx.Client(fmt.Sprintf("Cliente %d", i), fmt.Sprintf("55119999000%02d", i)).ID
	}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := salesapp.CreateSaleRequest{
				ClientID:    clients[i],
				UserID:      seller.ID,
				ProductID:   product.ID,
				Total:       decimal.RequireFromString("12000"),
				PaymentType: "PIX",
			}
			_, err := svc.CreateSale(context.Background(), req)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, shared.ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, buyers-1, conflicts.Load())
	assert.EqualValues(t, 1, tdb.Count("sales"))
}

// slowSender counts deliveries and holds each one long enough for cycles to overlap
type slowSender struct {
	delay time.Duration
	sent  atomic.Int32
}

func (s *slowSender) SendText(ctx context.Context, _ []string, _ string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
	}
	s.sent.Add(1)
	return nil
}

func TestReminderCycles_OverlappingWorkersSendOnce(t *testing.T) {
	tdb := NewTestDB(t)
	fx := testutil.NewFixtureWithDB(t, tdb.DB)
	scope := persistence.NewGormTransactionScope(tdb.DB)
	ctx := context.Background()

	entries := financeapp.NewEntryService(scope, fx.Clock, zap.NewNop())
	const due = 5
	for i := 0; i < due; i++ {
		_, err := entries.Create(ctx, financeapp.CreateEntryRequest{
			Company: "Fornecedor",
			Amount:  decimal.RequireFromString("100"),
			DueDate: "2026-01-30",
		})
		require.NoError(t, err)
	}

	sender := &slowSender{delay: 50 * time.Millisecond}
	newRunner := func() *notificationapp.CycleRunner {
		reminders := notificationapp.NewReminderService(notificationapp.ReminderConfig{}, sender, zap.NewNop())
		return notificationapp.NewCycleRunner(scope, reminders, nil, fx.Clock, zap.NewNop())
	}

	var wg sync.WaitGroup
	reports := make([]notificationapp.CycleReport, 2)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			report, err := newRunner().RunCycle(ctx)
			assert.NoError(t, err)
			reports[i] = report
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, due, sender.sent.Load())
	assert.Equal(t, due, reports[0].Finance+reports[1].Finance)

	// a later cycle finds nothing left to send
	report, err := newRunner().RunCycle(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Total())
}
