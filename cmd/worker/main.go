// Command worker runs the reminder and offers loop without the HTTP API.
// Several workers may run side by side when scheduler.lock_enabled points them at Redis.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wimotos/backend/internal/bootstrap"
	"github.com/wimotos/backend/internal/infrastructure/config"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, cfg, "worker")
	if err != nil {
		panic("Failed to start: " + err.Error())
	}
	log := rt.Logger
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := rt.Close(closeCtx); err != nil {
			log.Error("Error during shutdown", zap.Error(err))
		}
	}()

	loop, err := rt.ReminderLoop(rt.ObjectStore(ctx))
	if err != nil {
		log.Error("Failed to build reminder loop", zap.Error(err))
		return
	}

	if *once {
		report, err := loop.RunOnce(ctx)
		if err != nil {
			log.Error("Cycle failed", zap.Error(err))
			return
		}
		log.Info("Cycle finished", zap.Int("delivered", report.Total()))
		return
	}

	if err := loop.Start(ctx); err != nil {
		log.Error("Failed to start reminder loop", zap.Error(err))
		return
	}
	log.Info("Worker running", zap.Duration("interval", cfg.Scheduler.Interval))

	<-ctx.Done()
	log.Info("Stopping worker...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := loop.Stop(stopCtx); err != nil {
		log.Warn("Reminder loop did not stop cleanly", zap.Error(err))
	}
}
