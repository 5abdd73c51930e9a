package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sefazor/omnitemplates-backend/internal/config"
	"github.com/sefazor/omnitemplates-backend/internal/handler"
	"github.com/sefazor/omnitemplates-backend/internal/middleware"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/internal/repository"
	"github.com/sefazor/omnitemplates-backend/internal/scheduler"
	"github.com/sefazor/omnitemplates-backend/internal/service"
	"github.com/sefazor/omnitemplates-backend/pkg/bcrypt"
	"github.com/sefazor/omnitemplates-backend/pkg/database"
	"github.com/sefazor/omnitemplates-backend/pkg/email"
	jwtPkg "github.com/sefazor/omnitemplates-backend/pkg/jwt"
	"github.com/sefazor/omnitemplates-backend/pkg/logger"
	"github.com/sefazor/omnitemplates-backend/pkg/payment"
	"github.com/sefazor/omnitemplates-backend/pkg/qrcode"
	"github.com/sefazor/omnitemplates-backend/pkg/storage"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
)

func main() {
	// .env yoksa ortam değişkenleri kullanılır
	_ = godotenv.Load()

	// Config'i yükle
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	defer zlog.Sync()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL, zlog); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.SeedTemplates(db, zlog); err != nil {
		zlog.Fatal("template seed failed", zap.Error(err))
	}

	// Repositories
	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	pageRepo := repository.NewPageRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Storage
	r2Storage, err := storage.NewS3Storage(context.Background(), cfg.R2)
	if err != nil {
		zlog.Fatal("failed to initialize R2 storage", zap.Error(err))
	}

	emailService := email.NewEmailService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, cfg.FrontendURL, zlog)
	tokens := jwtPkg.NewManager(cfg.JWTSecret, "omnitemplates")
	qrService := qrcode.NewQRService(cfg.FrontendURL)

	// Payment gateway
	var (
		gateway      payment.Gateway
		stripeEvents service.StripeEvents
	)
	stripeGateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	if cfg.Stripe.SecretKey != "" {
		stripeEvents = stripeGateway
	}
	switch cfg.PaymentProvider {
	case payment.ProviderStripe:
		gateway = stripeGateway
	default:
		gateway = payment.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	}

	// Services
	ledgerService := service.NewLedgerService(creditRepo, zlog)
	passwords, err := bcrypt.NewHasher(cfg.BcryptCost)
	if err != nil {
		zlog.Fatal("invalid bcrypt cost", zap.Error(err))
	}
	authService := service.NewAuthService(txManager, userRepo, ledgerService, emailService, tokens, passwords, cfg.AdminEmails, zlog)
	uploadService := service.NewUploadService(r2Storage, cfg.AssetBaseURL(), zlog)
	templateService := service.NewTemplateService(templateRepo, zlog)
	pageService := service.NewPageService(txManager, pageRepo, templateRepo, ledgerService, uploadService, qrService, cfg.Currency, cfg.PageRetention, zlog)
	paymentService := service.NewPaymentService(txManager, orderRepo, pageRepo, userRepo, ledgerService, gateway, stripeEvents, emailService, service.PaymentConfig{
		Currency:              cfg.Currency,
		FrontendURL:           cfg.FrontendURL,
		RazorpayKeyID:         cfg.Razorpay.KeyID,
		RazorpayKeySecret:     cfg.Razorpay.KeySecret,
		RazorpayWebhookSecret: cfg.Razorpay.WebhookSecret,
	}, zlog)
	reviewService := service.NewReviewService(txManager, reviewRepo, ledgerService, zlog)
	adminService := service.NewAdminService(txManager, statsRepo, userRepo, orderRepo, ledgerService, zlog)
	cleanupService := service.NewCleanupService(pageRepo, uploadService, zlog)
	dashboardService := service.NewDashboardService(userRepo, pageRepo, orderRepo, ledgerService)

	// Validator'ı önce tanımla
	validator := utils.NewValidator(models.TemplateComponents)

	// Handlers
	handlers := &Handlers{
		Auth:      handler.NewAuthHandler(authService, validator, zlog),
		Template:  handler.NewTemplateHandler(templateService, uploadService, validator, zlog),
		Page:      handler.NewPageHandler(pageService, validator, zlog),
		Payment:   handler.NewPaymentHandler(paymentService, validator, zlog),
		Review:    handler.NewReviewHandler(reviewService, validator, zlog),
		Upload:    handler.NewUploadHandler(uploadService, validator, zlog),
		Credit:    handler.NewCreditHandler(ledgerService, zlog),
		Admin:     handler.NewAdminHandler(adminService, validator, zlog),
		Cron:      handler.NewCronHandler(cleanupService, cfg.CronSecret, zlog),
		Dashboard: handler.NewDashboardHandler(dashboardService, zlog),
	}

	stop := make(chan struct{})
	reviewReadLimiter := middleware.NewRateLimiter("reviews_read", 30)
	reviewWriteLimiter := middleware.NewRateLimiter("reviews_write", 5)
	reviewReadLimiter.StartCleanup(5*time.Minute, stop)
	reviewWriteLimiter.StartCleanup(5*time.Minute, stop)

	app := NewApp(cfg, zlog)
	RegisterRoutes(app, handlers, authService, Limiters{
		ReviewRead:  reviewReadLimiter,
		ReviewWrite: reviewWriteLimiter,
	})

	sched := scheduler.New(zlog)
	if err := sched.AddCleanup(cfg.CleanupSchedule, cleanupService); err != nil {
		zlog.Fatal("scheduler setup failed", zap.Error(err))
	}
	sched.Start()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Fatal("server stopped", zap.Error(err))
		}
	}()
	zlog.Info("server started", zap.String("port", cfg.Port), zap.String("payment_provider", gateway.Name()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sched.Stop(ctx)
	if err := app.ShutdownWithContext(ctx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
}
