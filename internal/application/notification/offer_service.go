package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/notification"
)

// OfferConfig tunes the daily offers broadcast
type OfferConfig struct {
	Enabled       bool
	Hour          int
	MaxPerDay     int
	Delay         time.Duration
	QueryLimit    int
	Destinations  []string
	CaptionFooter string
	Location      *time.Location
}

func (c OfferConfig) withDefaults() OfferConfig {
	if c.Hour < 0 || c.Hour > 23 {
		c.Hour = 9
	}
	if c.MaxPerDay <= 0 {
		c.MaxPerDay = 5
	}
	if c.QueryLimit <= 0 {
		c.QueryLimit = 20
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// OfferService broadcasts in-stock products with their cover image once a day.
// It is best effort: failures are logged and never retried.
type OfferService struct {
	cfg        OfferConfig
	media      MediaSender
	blobs      BlobStore
	transcoder ImageTranscoder
	observer   DeliveryObserver
	sleep      SleepFunc
	logger     *zap.Logger
}

// OfferOption configures an OfferService
type OfferOption func(*OfferService)

// WithSleeper replaces the inter-send wait. Used by tests.
func WithSleeper(fn SleepFunc) OfferOption {
	return func(s *OfferService) { s.sleep = fn }
}

// WithOfferObserver reports every send attempt to o
func WithOfferObserver(o DeliveryObserver) OfferOption {
	return func(s *OfferService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewOfferService creates a new OfferService
func NewOfferService(cfg OfferConfig, media MediaSender, blobs BlobStore, transcoder ImageTranscoder,
	logger *zap.Logger, opts ...OfferOption) *OfferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OfferService{
		cfg:        cfg.withDefaults(),
		media:      media,
		blobs:      blobs,
		transcoder: transcoder,
		observer:   nopObserver{},
		sleep:      sleepContext,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessDailyOffers runs the broadcast when the local hour has reached the configured
// hour and it has not run today. The marker is written in the caller's transaction
// once at least one product was attempted.
func (s *OfferService) ProcessDailyOffers(ctx context.Context, repos appshared.TransactionalRepositories, now time.Time) (int, error) {
	if !s.cfg.Enabled || s.media == nil || s.blobs == nil || s.transcoder == nil {
		return 0, nil
	}
	local := now.In(s.cfg.Location)

	state, err := repos.OffersState().Get(ctx, notification.OffersStateKey)
	if err != nil {
		return 0, err
	}
	if !notification.OfferGateOpen(*state, local, s.cfg.Hour) {
		return 0, nil
	}

	products, err := repos.Products().FindOfferCandidates(ctx, s.cfg.QueryLimit)
	if err != nil {
		return 0, err
	}

	attempted, sent := 0, 0
	for i := range products {
		if sent >= s.cfg.MaxPerDay {
			break
		}
		if attempted > 0 {
			if err := s.sleep(ctx, s.cfg.Delay); err != nil {
				s.logger.Info("offers broadcast interrupted", zap.Error(err))
				break
			}
		}
		attempted++
		if s.sendOffer(ctx, &products[i]) {
			sent++
		}
	}

	if attempted == 0 {
		return 0, nil
	}
	state.MarkSent(local)
	if err := repos.OffersState().Save(ctx, state); err != nil {
		return sent, err
	}
	s.logger.Info("offers broadcast done", zap.Int("attempted", attempted), zap.Int("sent", sent))
	return sent, nil
}

func (s *OfferService) sendOffer(ctx context.Context, p *catalog.Product) bool {
	log := s.logger.With(zap.String("product_id", p.ID.String()))
	if !p.HasImage() {
		return false
	}
	data, err := s.blobs.GetBytes(ctx, *p.ImageKey)
	if err != nil {
		log.Warn("offer image fetch failed", zap.String("key", *p.ImageKey), zap.Error(err))
		return false
	}
	uri, err := s.transcoder.ToDataURI(data)
	if err != nil {
		log.Warn("offer image transcode failed", zap.String("key", *p.ImageKey), zap.Error(err))
		return false
	}
	err = s.media.SendMedia(ctx, s.cfg.Destinations, p.DisplayLabel(), offerCaption(p, s.cfg.CaptionFooter), uri)
	s.observer.ObserveDelivery(ctx, KindOffer, err)
	if err != nil {
		log.Warn("offer delivery failed", zap.Error(err))
		return false
	}
	return true
}
