// Package bootstrap assembles the infrastructure shared by the API server and the worker.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	catalogapp "github.com/wimotos/backend/internal/application/catalog"
	notificationapp "github.com/wimotos/backend/internal/application/notification"
	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/infrastructure/cache"
	"github.com/wimotos/backend/internal/infrastructure/config"
	"github.com/wimotos/backend/internal/infrastructure/imaging"
	"github.com/wimotos/backend/internal/infrastructure/logger"
	"github.com/wimotos/backend/internal/infrastructure/migration"
	"github.com/wimotos/backend/internal/infrastructure/persistence"
	"github.com/wimotos/backend/internal/infrastructure/scheduler"
	"github.com/wimotos/backend/internal/infrastructure/storage"
	"github.com/wimotos/backend/internal/infrastructure/telemetry"
	"github.com/wimotos/backend/internal/infrastructure/whatsapp"
)

const meterName = "github.com/wimotos/backend"

// ObjectStore is the blob storage seen by product images and the offers broadcast
type ObjectStore interface {
	catalogapp.ImageStore
	notificationapp.BlobStore
}

// Runtime holds the process-wide infrastructure
type Runtime struct {
	Config    *config.Config
	Logger    *zap.Logger
	Telemetry *telemetry.Providers
	Database  *persistence.Database
	Scope     appshared.TransactionScope
}

// Open sets up telemetry, the logger and the database. role names the process in every
// log line. SQLite databases are migrated from the models; Postgres uses cmd/migrate.
func Open(ctx context.Context, cfg *config.Config, role string) (*Runtime, error) {
	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tel, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	log, err := logger.New(logCfg,
		logger.WithTee(tel.ZapCore(zapcore.InfoLevel)),
		logger.WithFields(zap.String("role", role)))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(time.Duration(cfg.Database.SlowQueryMS)*time.Millisecond))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	if tel.DBTracing() {
		if err := telemetry.InstrumentDB(db.DB, cfg.Database.Driver, log); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}
	if err := prepareSchema(cfg, db, log); err != nil {
		_ = db.Close()
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	return &Runtime{
		Config:    cfg,
		Logger:    log,
		Telemetry: tel,
		Database:  db,
		Scope:     persistence.NewGormTransactionScope(db.DB),
	}, nil
}

// prepareSchema auto-migrates sqlite. Postgres runs the embedded SQL migrations only
// when database.migrate_on_start is set; otherwise cmd/migrate owns the schema.
func prepareSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.Driver == "sqlite" {
		return db.AutoMigrate()
	}
	if !cfg.Database.MigrateOnStart {
		return nil
	}
	// closing the migrator would close the pool gorm keeps using
	m, err := migration.New(db.SQL(), "", log)
	if err != nil {
		return err
	}
	return m.Up()
}

// Close releases the database and flushes telemetry and logs
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if err := r.Database.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	if err := r.Telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
	}
	_ = r.Logger.Sync()
	return errors.Join(errs...)
}

// ObjectStore returns the configured blob storage, or nil when S3 is not configured.
// Product images and offers are disabled without it.
func (r *Runtime) ObjectStore(ctx context.Context) ObjectStore {
	cfg := r.Config.Storage
	if cfg.Driver == "memory" {
		r.Logger.Warn("Using in-memory object storage, images are lost on restart")
		return storage.NewMemoryObjectStorage()
	}
	s3, err := storage.NewS3ObjectStorage(&cfg, storage.WithLogger(r.Logger))
	if err != nil {
		r.Logger.Warn("Object storage disabled", zap.Error(err))
		return nil
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		r.Logger.Warn("Object storage bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
	}
	return s3
}

// WhatsApp returns the messaging gateway client
func (r *Runtime) WhatsApp() *whatsapp.Client {
	client := whatsapp.NewClient(r.Config.WhatsApp, whatsapp.WithLogger(r.Logger))
	if !client.Configured() {
		r.Logger.Warn("WhatsApp gateway not configured, reminders will be recorded as failed")
	}
	return client
}

// ReminderLoop builds the scheduler loop: reminder passes, the offers broadcast when
// enabled and a blob store exists, cycle metrics and the cross-process lock.
func (r *Runtime) ReminderLoop(store ObjectStore) (*scheduler.ReminderLoop, error) {
	cfg := r.Config
	loc := cfg.Scheduler.Location()

	metrics, err := telemetry.NewReminderMetrics(otel.Meter(meterName))
	if err != nil {
		return nil, fmt.Errorf("reminder metrics: %w", err)
	}

	sender := r.WhatsApp()
	reminders := notificationapp.NewReminderService(notificationapp.ReminderConfig{
		DueSoonLeadDays:      cfg.Scheduler.DueSoonLeadDays,
		FinanceBatchSize:     cfg.Scheduler.FinanceBatchSize,
		InstallmentBatchSize: cfg.Scheduler.InstallmentBatchSize,
		Location:             loc,
	}, sender, r.Logger.Named("reminders"), notificationapp.WithDeliveryObserver(metrics))

	var offers *notificationapp.OfferService
	switch {
	case !cfg.Offers.Enabled:
	case store == nil:
		r.Logger.Warn("Offers broadcast disabled: no object storage")
	default:
		transcoder := imaging.NewTranscoder(cfg.Offers.ImageMaxDim, cfg.Offers.ImageQuality, cfg.Offers.ImageMaxBytes)
		offers = notificationapp.NewOfferService(notificationapp.OfferConfig{
			Enabled:       true,
			Hour:          cfg.Offers.Hour,
			MaxPerDay:     cfg.Offers.MaxPerDay,
			Delay:         cfg.Offers.Delay,
			QueryLimit:    cfg.Offers.QueryLimit,
			Destinations:  cfg.Offers.Destinations,
			CaptionFooter: cfg.Offers.CaptionFooter,
			Location:      loc,
		}, sender, store, transcoder, r.Logger.Named("offers"), notificationapp.WithOfferObserver(metrics))
	}

	cycle := notificationapp.NewCycleRunner(r.Scope, reminders, offers, appshared.SystemClock{}, r.Logger,
		notificationapp.WithStaleSweep(cfg.Scheduler.StaleSendingAfter))

	var locker cache.Locker
	if cfg.Scheduler.LockEnabled {
		locker, err = cache.NewLockerFactory(cfg.Redis, cache.WithLogger(r.Logger)).CreateLocker()
		if err != nil {
			return nil, fmt.Errorf("cycle lock: %w", err)
		}
	}

	return scheduler.NewReminderLoop(scheduler.LoopConfig{
		Interval: cfg.Scheduler.Interval,
		LockTTL:  cfg.Scheduler.LockTTL,
	}, cycle, locker, r.Logger.Named("scheduler"), scheduler.WithCycleObserver(metrics)), nil
}
