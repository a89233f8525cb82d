package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/wimotos/backend/docs"
	catalogapp "github.com/wimotos/backend/internal/application/catalog"
	financeapp "github.com/wimotos/backend/internal/application/finance"
	identityapp "github.com/wimotos/backend/internal/application/identity"
	partnerapp "github.com/wimotos/backend/internal/application/partner"
	promissoryapp "github.com/wimotos/backend/internal/application/promissory"
	salesapp "github.com/wimotos/backend/internal/application/sales"
	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/bootstrap"
	"github.com/wimotos/backend/internal/infrastructure/auth"
	"github.com/wimotos/backend/internal/infrastructure/config"
	"github.com/wimotos/backend/internal/infrastructure/printing"
	"github.com/wimotos/backend/internal/interfaces/http/handler"
	"github.com/wimotos/backend/internal/interfaces/http/router"
)

//	@title			Wi Motos API
//	@version		1.0
//	@description	Vehicle dealership backend: stock, sales, promissory notes, payables and WhatsApp reminders

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, cfg, "server")
	if err != nil {
		panic("Failed to start: " + err.Error())
	}
	log := rt.Logger
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := rt.Close(closeCtx); err != nil {
			log.Error("Error during shutdown", zap.Error(err))
		}
	}()

	log.Info("Starting Wi Motos backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	clock := appshared.SystemClock{}
	users := identityapp.NewUserService(rt.Scope, clock, log)
	if cfg.App.AdminEmail != "" {
		created, err := users.EnsureAdmin(ctx, cfg.App.AdminName, cfg.App.AdminEmail, cfg.App.AdminPassword)
		if err != nil {
			log.Fatal("Failed to ensure admin user", zap.Error(err))
		}
		if created {
			log.Info("Admin user created", zap.String("email", cfg.App.AdminEmail))
		}
	}

	store := rt.ObjectStore(ctx)
	var images catalogapp.ImageStore
	if store != nil {
		images = store
	}

	var booklets promissoryapp.BookletRenderer
	if cfg.Printing.Enabled {
		chrome := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout:  cfg.Printing.Timeout,
			ExecPath:        cfg.Printing.ChromePath,
			RemoteURL:       cfg.Printing.ChromeURL,
			MaxConcurrent:   cfg.Printing.MaxConcurrent,
			NoSandbox:       true,
			PrintBackground: true,
			Logger:          log,
		})
		defer func() { _ = chrome.Close() }()
		booklets = printing.NewBookletRenderer(chrome, cfg.Printing.CompanyName, cfg.Printing.Timeout, log)
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	engine := router.NewEngine(router.EngineConfig{
		HTTP:        cfg.HTTP,
		Swagger:     cfg.Swagger.Enabled,
		Telemetry:   rt.Telemetry.Enabled(),
		ServiceName: cfg.Telemetry.ServiceName,
		JWT:         jwtService,
		Logger:      log,
		HSTS:        cfg.App.Env == "production",
	}, router.Handlers{
		Auth:       handler.NewAuthHandler(identityapp.NewAuthService(rt.Scope, jwtService, log)),
		Users:      handler.NewUserHandler(users),
		Clients:    handler.NewClientHandler(partnerapp.NewClientService(rt.Scope, clock, log)),
		Products:   handler.NewProductHandler(catalogapp.NewProductService(rt.Scope, images, clock, log)),
		Sales:      handler.NewSaleHandler(salesapp.NewService(rt.Scope, clock, log)),
		Promissory: handler.NewPromissoryHandler(promissoryapp.NewService(rt.Scope, clock, booklets, log)),
		Finance:    handler.NewFinanceHandler(financeapp.NewEntryService(rt.Scope, clock, log)),
		Health:     handler.NewHealthHandler(rt.Database),
	})

	if cfg.Scheduler.Enabled {
		loop, err := rt.ReminderLoop(store)
		if err != nil {
			log.Fatal("Failed to build reminder loop", zap.Error(err))
		}
		if err := loop.Start(ctx); err != nil {
			log.Fatal("Failed to start reminder loop", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := loop.Stop(stopCtx); err != nil {
				log.Warn("Reminder loop did not stop cleanly", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}
