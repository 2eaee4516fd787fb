package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/karthikvn/clinicq/internal/api/router"
	"github.com/karthikvn/clinicq/internal/appointments"
	appconfig "github.com/karthikvn/clinicq/internal/config"
	"github.com/karthikvn/clinicq/internal/directory"
	"github.com/karthikvn/clinicq/internal/http/handlers"
	"github.com/karthikvn/clinicq/internal/notify"
	"github.com/karthikvn/clinicq/internal/observability/metrics"
	"github.com/karthikvn/clinicq/internal/queue"
	"github.com/karthikvn/clinicq/internal/scheduling"
	"github.com/karthikvn/clinicq/pkg/logging"
)

func main() {
	// Load .env in development; a missing file is not an error.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinicq API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Storage: Postgres when configured, in-memory otherwise. The
	// in-memory stores keep local development and demos DB-free.
	var (
		userRepo     directory.Repository
		hospitalRepo directory.HospitalRepository
		apptStore    appointments.Store
		notifyStore  notify.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		err = pool.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		userRepo = directory.NewPostgresRepository(pool)
		hospitalRepo = directory.NewPostgresHospitalRepository(pool)
		apptStore = appointments.NewPostgresStore(pool)
		notifyStore = notify.NewPostgresStore(pool)
		logger.Info("using postgres storage")
	} else {
		userRepo = directory.NewInMemoryRepository()
		hospitalRepo = directory.NewInMemoryHospitalRepository()
		apptStore = appointments.NewInMemoryStore()
		notifyStore = notify.NewInMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory storage")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, crowd cache disabled", "error", err)
			redisClient = nil
		}
	}

	queueMetrics := metrics.NewQueueMetrics(nil)

	emailSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	var smsSender notify.SMSSender
	if cfg.SMSAccountSID != "" && cfg.SMSAuthToken != "" && cfg.SMSFromNumber != "" {
		smsSender = notify.NewSimpleSMSSender(cfg.SMSFromNumber,
			notify.TwilioSendFunc(cfg.SMSAccountSID, cfg.SMSAuthToken), logger)
		logger.Info("using SMS gateway", "from", cfg.SMSFromNumber)
	} else {
		smsSender = notify.NewStubSMSSender(logger)
	}

	var dispatcherEmail notify.EmailSender
	if emailSender != nil {
		dispatcherEmail = emailSender
	}
	dispatcher := notify.NewDispatcher(notifyStore, dispatcherEmail, smsSender, queueMetrics, logger)

	engine := queue.NewEngine(apptStore)
	selector := queue.NewSelector(userRepo, engine)
	allocator := queue.NewTokenAllocator(apptStore)
	crowd := queue.NewCrowdService(
		queue.NewCrowdAggregator(apptStore, userRepo),
		redisClient, cfg.CrowdCacheTTL, logger,
	)

	service := scheduling.NewService(
		userRepo, apptStore, selector, allocator, engine,
		crowd, dispatcher, queueMetrics, logger,
	).WithDayWindow(cfg.DefaultDayStart, cfg.DefaultDayEnd)

	r := router.New(&router.Config{
		Logger:             logger,
		Booking:            handlers.NewBookingHandler(service, logger),
		Availability:       handlers.NewAvailabilityHandler(service, logger),
		Crowd:              handlers.NewCrowdHandler(crowd, logger),
		Notifications:      handlers.NewNotificationsHandler(notifyStore, logger),
		Hospitals:          handlers.NewHospitalsHandler(hospitalRepo, logger),
		AdminDashboard:     handlers.NewAdminDashboardHandler(apptStore, userRepo, crowd, nil, logger),
		MetricsHandler:     promhttp.Handler(),
		AdminAuthSecret:    cfg.AdminAuthSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BookingRatePerSec:  cfg.BookingRatePerSec,
		BookingBurst:       cfg.BookingBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
