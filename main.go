// Package main provides the main entry point for the Sartor marketplace backend
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sartorhq/sartor/app/handlers"
	"github.com/sartorhq/sartor/app/middleware"
	"github.com/sartorhq/sartor/app/router"
	"github.com/sartorhq/sartor/app/scheduler"
	"github.com/sartorhq/sartor/app/services"
	businessflow "github.com/sartorhq/sartor/business_flow"
	"github.com/sartorhq/sartor/config"
	"github.com/sartorhq/sartor/repository"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Sartor application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging directs the standard logger to a rotating file when configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output != "file" && cfg.Output != "both" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
		return
	}
	log.SetOutput(rotator)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity.
// A nil client disables directory caching downstream.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeNotificationService selects notification providers based on configuration
func initializeNotificationService(cfg *config.ProductionConfig) services.NotificationService {
	var smsProvider services.SMSProvider
	switch cfg.SMS.ProviderDomain {
	case "", "mock":
		smsProvider = services.NewMockSMSProvider()
	default:
		smsProvider = services.NewSMSProvider(&cfg.SMS)
	}

	var emailProvider services.EmailProvider
	if cfg.Email.Host == "" {
		emailProvider = services.NewMockEmailProvider()
	} else {
		emailProvider = services.NewSMTPEmailProvider(&cfg.Email)
	}

	return services.NewNotificationService(smsProvider, emailProvider)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, 30*time.Second)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	tailorRepo := repository.NewTailorRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	serviceRepo := repository.NewTailorServiceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	presetRepo := repository.NewMeasurementPresetRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	notificationService := initializeNotificationService(cfg)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize Google ID token verifier
	verifierCtx, verifierCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer verifierCancel()
	identityVerifier, err := services.NewGoogleVerifier(verifierCtx, cfg.Google.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity verifier: %w", err)
	}

	// Initialize flows
	authFlow := businessflow.NewAuthFlow(
		tailorRepo,
		customerRepo,
		auditRepo,
		tokenService,
		identityVerifier,
		db,
	)

	directoryFlow := businessflow.NewTailorDirectoryFlow(
		tailorRepo,
		serviceRepo,
		rc,
	)

	bookingFlow := businessflow.NewBookingFlow(
		bookingRepo,
		serviceRepo,
		tailorRepo,
		customerRepo,
		auditRepo,
		notificationService,
		db,
	)

	presetFlow := businessflow.NewMeasurementPresetFlow(
		presetRepo,
		customerRepo,
	)

	reviewFlow := businessflow.NewReviewFlow(
		reviewRepo,
		bookingRepo,
		tailorRepo,
		customerRepo,
		auditRepo,
		db,
	)

	profileFlow := businessflow.NewProfileFlow(
		customerRepo,
		tailorRepo,
		serviceRepo,
		auditRepo,
		directoryFlow,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authFlow)
	tailorHandler := handlers.NewTailorHandler(directoryFlow, reviewFlow)
	bookingHandler := handlers.NewBookingHandler(bookingFlow)
	presetHandler := handlers.NewPresetHandler(presetFlow)
	reviewHandler := handlers.NewReviewHandler(reviewFlow)
	profileHandler := handlers.NewProfileHandler(profileFlow)

	// Start booking reminder scheduler
	reminders := scheduler.NewReminderScheduler(
		bookingRepo,
		customerRepo,
		tailorRepo,
		notificationService,
		log.Default(),
		15*time.Minute,
		24*time.Hour,
	)
	stopFuncs = append(stopFuncs, reminders.Start(context.Background()))

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, authFlow)

	// Initialize router
	appRouter := router.NewFiberRouter(
		authHandler,
		tailorHandler,
		bookingHandler,
		presetHandler,
		reviewHandler,
		profileHandler,
		authMiddleware,
		cfg.Security.AllowedOrigins,
	)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
