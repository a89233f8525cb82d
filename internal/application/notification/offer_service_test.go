package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notificationapp "github.com/wimotos/backend/internal/application/notification"
	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/infrastructure/storage"
	"github.com/wimotos/backend/tests/testutil"
)

type offerEnv struct {
	fx     *testutil.Fixture
	blobs  *storage.MemoryObjectStorage
	sender *fakeSender
	sleeps *recordedSleeps
}

func newOfferEnv(t *testing.T) *offerEnv {
	return &offerEnv{
		fx:     testutil.NewFixture(t),
		blobs:  storage.NewMemoryObjectStorage(),
		sender: &fakeSender{},
		sleeps: &recordedSleeps{},
	}
}

func (e *offerEnv) service(cfg notificationapp.OfferConfig) *notificationapp.OfferService {
	return notificationapp.NewOfferService(cfg, e.sender, e.blobs, fakeTranscoder{}, nil,
		notificationapp.WithSleeper(e.sleeps.sleep))
}

// productWithImage seeds an IN_STOCK product. When upload is false the key points at nothing.
func (e *offerEnv) productWithImage(t *testing.T, chassis string, upload bool) *catalog.Product {
	p := e.fx.Product(chassis)
	key := "products/" + p.ID.String() + "/cover.jpg"
	if upload {
		require.NoError(t, e.blobs.Upload(context.Background(), key, []byte{0xff, 0xd8}, "image/jpeg"))
	}
	p.SetImage(key, e.fx.Clock.Now())
	e.fx.SaveProduct(p)
	e.fx.Clock.Advance(time.Minute)
	return p
}

func defaultOfferConfig() notificationapp.OfferConfig {
	return notificationapp.OfferConfig{
		Enabled:      true,
		Hour:         9,
		MaxPerDay:    5,
		Delay:        8 * time.Second,
		QueryLimit:   20,
		Destinations: []string{"5511999990000"},
	}
}

func TestProcessDailyOffers(t *testing.T) {
	env := newOfferEnv(t)
	ctx := context.Background()
	env.productWithImage(t, "CHASSIS0000000001", true)
	env.productWithImage(t, "CHASSIS0000000002", false)
	newest := env.productWithImage(t, "CHASSIS0000000003", true)
	env.fx.Product("CHASSIS0000000004") // no image, never offered

	svc := env.service(defaultOfferConfig())
	sent, err := svc.ProcessDailyOffers(ctx, env.fx.Repos, env.fx.Clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, sent, "the missing image is logged and skipped")

	require.Len(t, env.sender.sent, 2)
	first := env.sender.sent[0]
	assert.Equal(t, []string{"5511999990000"}, first.To)
	assert.Equal(t, newest.DisplayLabel(), first.Title, "newest first")
	assert.Equal(t, "data:image/jpeg;base64,AAAA", first.DataURI)
	assert.Contains(t, first.Body, "Por R$ 12000.00")

	assert.Equal(t, []time.Duration{8 * time.Second, 8 * time.Second}, env.sleeps.calls, "delay between attempts only")

	state, err := env.fx.Repos.OffersState().Get(ctx, notification.OffersStateKey)
	require.NoError(t, err)
	require.NotNil(t, state.LastSentDate)
	assert.Equal(t, "2026-01-30", state.LastSentDate.Format(time.DateOnly))

	sent, err = svc.ProcessDailyOffers(ctx, env.fx.Repos, env.fx.Clock.Now().Add(3*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, sent, "once per day")
	assert.Len(t, env.sender.sent, 2)

	env.fx.Clock.Set(time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC))
	sent, err = svc.ProcessDailyOffers(ctx, env.fx.Repos, env.fx.Clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, sent, "the gate reopens the next day")
}

func TestProcessDailyOffers_MaxPerDay(t *testing.T) {
	env := newOfferEnv(t)
	for _, c := range []string{"CHASSIS0000000001", "CHASSIS0000000002", "CHASSIS0000000003"} {
		env.productWithImage(t, c, true)
	}
	cfg := defaultOfferConfig()
	cfg.MaxPerDay = 2

	sent, err := env.service(cfg).ProcessDailyOffers(context.Background(), env.fx.Repos, env.fx.Clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Len(t, env.sleeps.calls, 1)
}

func TestProcessDailyOffers_Gate(t *testing.T) {
	t.Run("before the hour", func(t *testing.T) {
		env := newOfferEnv(t)
		env.productWithImage(t, "CHASSIS0000000001", true)
		cfg := defaultOfferConfig()
		cfg.Location = time.FixedZone("BRT", -3*3600)

		// 12:02 UTC is 09:02 in BRT, 11:59 UTC is 08:59
		sent, err := env.service(cfg).ProcessDailyOffers(context.Background(), env.fx.Repos,
			time.Date(2026, 1, 30, 11, 59, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Zero(t, sent)

		state, err := env.fx.Repos.OffersState().Get(context.Background(), notification.OffersStateKey)
		require.NoError(t, err)
		assert.Nil(t, state.LastSentDate, "a closed gate writes nothing")

		sent, err = env.service(cfg).ProcessDailyOffers(context.Background(), env.fx.Repos,
			time.Date(2026, 1, 30, 12, 2, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("disabled", func(t *testing.T) {
		env := newOfferEnv(t)
		env.productWithImage(t, "CHASSIS0000000001", true)
		cfg := defaultOfferConfig()
		cfg.Enabled = false
		sent, err := env.service(cfg).ProcessDailyOffers(context.Background(), env.fx.Repos, env.fx.Clock.Now())
		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Zero(t, env.sender.attempts)
	})

	t.Run("nothing to offer leaves the marker unset", func(t *testing.T) {
		env := newOfferEnv(t)
		sent, err := env.service(defaultOfferConfig()).ProcessDailyOffers(context.Background(), env.fx.Repos, env.fx.Clock.Now())
		require.NoError(t, err)
		assert.Zero(t, sent)
		state, err := env.fx.Repos.OffersState().Get(context.Background(), notification.OffersStateKey)
		require.NoError(t, err)
		assert.Nil(t, state.LastSentDate)
	})

	t.Run("all deliveries failing still closes the day", func(t *testing.T) {
		env := newOfferEnv(t)
		env.productWithImage(t, "CHASSIS0000000001", true)
		env.sender.failAll = true
		sent, err := env.service(defaultOfferConfig()).ProcessDailyOffers(context.Background(), env.fx.Repos, env.fx.Clock.Now())
		require.NoError(t, err)
		assert.Zero(t, sent)
		state, err := env.fx.Repos.OffersState().Get(context.Background(), notification.OffersStateKey)
		require.NoError(t, err)
		assert.NotNil(t, state.LastSentDate)
	})
}
