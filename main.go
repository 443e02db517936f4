// Package main provides the main entry point for the CivicMitra Seva citizen services backend
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civicmitra/seva-backend/app/handlers"
	"github.com/civicmitra/seva-backend/app/middleware"
	"github.com/civicmitra/seva-backend/app/router"
	"github.com/civicmitra/seva-backend/app/services"
	businessflow "github.com/civicmitra/seva-backend/business_flow"
	"github.com/civicmitra/seva-backend/config"
	_ "github.com/civicmitra/seva-backend/docs"
	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/repository"
	"github.com/civicmitra/seva-backend/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Seva backend...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Route the standard logger through the configured sink
	logCloser := utils.SetupLogger(utils.LoggerOptions{
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	if logCloser != nil {
		defer logCloser.Close()
	}

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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
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
// Returns nil when caching is disabled; the dashboard flow tolerates a
// nil client and recomputes stats on every request.
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

// initializeNotificationService initializes the citizen notification service
func initializeNotificationService(cfg *config.ProductionConfig) services.NotificationService {
	var whatsappService services.WhatsAppService
	var emailProvider services.EmailProvider

	switch cfg.WhatsApp.ProviderDomain {
	case "mock":
		whatsappService = services.NewMockWhatsAppService()
	default:
		whatsappService = services.NewWhatsAppService(&cfg.WhatsApp)
	}

	if cfg.Email.Host != "" {
		emailProvider = services.NewSMTPEmailProvider(
			cfg.Email.Host,
			cfg.Email.Port,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.FromEmail,
		)
	} else {
		emailProvider = services.NewMockEmailProvider()
	}

	return services.NewNotificationService(whatsappService, emailProvider)
}

// seedSequenceCounters makes sure the named counters exist and sit at or
// above the highest reference ID already issued, so a restore from backup
// can never hand out a duplicate GRV or APT number.
func seedSequenceCounters(counterRepo repository.SequenceCounterRepository) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := counterRepo.InitializeFromExisting(ctx, models.CounterGrievance, "grievances", "reference_id", utils.GrievanceIDPrefix); err != nil {
		return fmt.Errorf("failed to seed grievance counter: %w", err)
	}
	if err := counterRepo.InitializeFromExisting(ctx, models.CounterAppointment, "appointments", "reference_id", utils.AppointmentIDPrefix); err != nil {
		return fmt.Errorf("failed to seed appointment counter: %w", err)
	}

	log.Println("Sequence counters initialized")
	return nil
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
	companyRepo := repository.NewCompanyRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	staffRepo := repository.NewStaffUserRepository(db)
	sessionRepo := repository.NewStaffSessionRepository(db)
	citizenRepo := repository.NewCitizenRepository(db)
	grievanceRepo := repository.NewGrievanceRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	counterRepo := repository.NewSequenceCounterRepository(db)
	timelineRepo := repository.NewTimelineEventRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Seed the reference ID allocators before serving traffic
	if err := seedSequenceCounters(counterRepo); err != nil {
		return nil, err
	}

	// Initialize services
	notificationService := initializeNotificationService(cfg)

	// Captcha service for the staff login page
	captchaSvc, err := services.NewCaptchaServiceRotate(2*time.Minute, 15, 300)
	if err != nil {
		return nil, err
	}

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	authFlow := businessflow.NewAuthFlow(
		staffRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		captchaSvc,
		cfg.Security.BcryptCost,
		db,
	)

	grievanceFlow := businessflow.NewGrievanceFlow(
		grievanceRepo,
		citizenRepo,
		companyRepo,
		departmentRepo,
		staffRepo,
		counterRepo,
		timelineRepo,
		notificationService,
		db,
	)

	appointmentFlow := businessflow.NewAppointmentFlow(
		appointmentRepo,
		citizenRepo,
		companyRepo,
		departmentRepo,
		staffRepo,
		counterRepo,
		timelineRepo,
		notificationService,
		db,
	)

	adminFlow := businessflow.NewAdminFlow(
		companyRepo,
		departmentRepo,
		staffRepo,
		sessionRepo,
		auditRepo,
		cfg.Security.BcryptCost,
		db,
	)

	dashboardFlow := businessflow.NewDashboardFlow(
		grievanceRepo,
		appointmentRepo,
		companyRepo,
		rc,
		cfg.Cache.RedisPrefix,
	)

	reportFlow := businessflow.NewReportFlow(
		grievanceRepo,
		citizenRepo,
		companyRepo,
		staffRepo,
		auditRepo,
	)

	webhookFlow := businessflow.NewWebhookFlow(
		companyRepo,
		grievanceFlow,
		&cfg.WhatsApp,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authFlow)
	grievanceHandler := handlers.NewGrievanceHandler(grievanceFlow)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentFlow)
	adminHandler := handlers.NewAdminHandler(adminFlow, dashboardFlow, reportFlow)
	webhookHandler := handlers.NewWebhookHandler(webhookFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		authHandler,
		grievanceHandler,
		appointmentHandler,
		adminHandler,
		webhookHandler,
		authMiddleware,
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
