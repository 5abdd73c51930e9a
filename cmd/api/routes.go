package main

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sefazor/omnitemplates-backend/internal/config"
	"github.com/sefazor/omnitemplates-backend/internal/handler"
	"github.com/sefazor/omnitemplates-backend/internal/metrics"
	"github.com/sefazor/omnitemplates-backend/internal/middleware"
	"github.com/sefazor/omnitemplates-backend/internal/models"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Template  *handler.TemplateHandler
	Page      *handler.PageHandler
	Payment   *handler.PaymentHandler
	Review    *handler.ReviewHandler
	Upload    *handler.UploadHandler
	Credit    *handler.CreditHandler
	Admin     *handler.AdminHandler
	Cron      *handler.CronHandler
	Dashboard *handler.DashboardHandler
}

type Limiters struct {
	ReviewRead  *middleware.RateLimiter
	ReviewWrite *middleware.RateLimiter
}

func NewApp(cfg *config.Config, zlog *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "omnitemplates",
		BodyLimit: 12 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				zlog.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(models.ErrorResponse(err.Error()))
		},
	})

	// Global Middleware'ler önce tanımlanmalı
	app.Use(recover.New())
	app.Use(middleware.Metrics())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return middleware.ClientKey(c)
		},
		Next: func(c *fiber.Ctx) bool {
			// Gateway webhook'ları limitlenmez
			return c.Path() == "/api/webhooks/razorpay" || c.Path() == "/api/webhooks/stripe"
		},
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	return app
}

func RegisterRoutes(app *fiber.App, h *Handlers, auth middleware.Authenticator, limiters Limiters) {
	requireAuth := middleware.AuthMiddleware(auth)
	optionalAuth := middleware.OptionalAuth(auth)

	api := app.Group("/api")

	// Public routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/forgot-password", h.Auth.ForgotPassword)
	authGroup.Post("/reset-password", h.Auth.ResetPassword)
	authGroup.Get("/me", requireAuth, h.Auth.Me)

	api.Get("/templates", h.Template.List)
	api.Get("/templates/:id", h.Template.Get)

	api.Post("/pages", optionalAuth, h.Page.Create)
	api.Post("/pages/:id/unlock", requireAuth, h.Page.Unlock)
	api.Get("/p/:slug", h.Page.GetPublic)
	api.Get("/p/:slug/qr", h.Page.QRCode)
	api.Get("/checkout/:pageId", optionalAuth, h.Page.Checkout)

	api.Post("/uploads/presign", h.Upload.Presign)
	api.Post("/upload", h.Upload.Upload)
	api.Get("/uploads/*", h.Upload.Serve)

	api.Get("/reviews", limiters.ReviewRead.Handler(), h.Review.List)
	api.Post("/reviews", requireAuth, limiters.ReviewWrite.Handler(), h.Review.Submit)

	credits := api.Group("/credits")
	credits.Get("/balance", optionalAuth, h.Credit.Balance)
	credits.Get("/transactions", requireAuth, h.Credit.Transactions)
	credits.Post("/purchase", requireAuth, h.Payment.CreateCreditOrder)
	credits.Post("/verify", requireAuth, h.Payment.VerifyCreditPayment)

	api.Post("/razorpay/order", requireAuth, h.Payment.CreatePageOrder)
	api.Post("/razorpay/verify", optionalAuth, h.Payment.VerifyPagePayment)

	// Webhook'lar imza ile doğrulanır
	api.Post("/webhooks/razorpay", h.Payment.RazorpayWebhook)
	api.Post("/webhooks/stripe", h.Payment.StripeWebhook)

	api.Get("/cron/cleanup", h.Cron.Cleanup)

	api.Get("/dashboard", requireAuth, h.Dashboard.Get)

	// Admin routes
	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	admin.Get("/stats", h.Admin.Stats)
	admin.Get("/users", h.Admin.Users)
	admin.Get("/transactions", h.Admin.Transactions)
	admin.Get("/orders", h.Admin.Orders)
	admin.Post("/credits/adjust", h.Admin.AdjustCredits)

	admin.Get("/templates", h.Template.AdminList)
	admin.Post("/templates", h.Template.Create)
	admin.Put("/templates/:id", h.Template.Update)
	admin.Delete("/templates/:id", h.Template.Delete)
	admin.Post("/templates/thumbnail", h.Template.PresignThumbnail)

	admin.Get("/reviews", h.Review.AdminList)
	admin.Post("/reviews/:id/approve", h.Review.Approve)
	admin.Post("/reviews/:id/reject", h.Review.Reject)
}
