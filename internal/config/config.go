package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type R2Config struct {
	AccountID       string `env:"R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	Bucket          string `env:"R2_BUCKET"`
	// Endpoint boşsa R2 hesabından türetilir
	Endpoint  string `env:"R2_ENDPOINT"`
	Region    string `env:"R2_REGION" envDefault:"auto"`
	PublicURL string `env:"R2_PUBLIC_URL"`
}

// Endpoint'i döner; açıkça verilmemişse Cloudflare R2 adresini kullanır.
func (c R2Config) ResolvedEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

type RazorpayConfig struct {
	KeyID         string `env:"RAZORPAY_KEY_ID"`
	KeySecret     string `env:"RAZORPAY_KEY_SECRET"`
	WebhookSecret string `env:"RAZORPAY_WEBHOOK_SECRET"`
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

type EmailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromAddress  string `env:"EMAIL_FROM_ADDRESS" envDefault:"hello@omnitemplates.app"`
	FromName     string `env:"EMAIL_FROM_NAME" envDefault:"OmniTemplates"`
}

type Config struct {
	Env         string   `env:"APP_ENV" envDefault:"production"`
	Port        string   `env:"PORT" envDefault:"8080"`
	DatabaseURL string   `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret   string   `env:"JWT_SECRET,required,notEmpty"`
	FrontendURL string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	CORSOrigins string   `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// PublicAssetBaseURL yüklenen dosyaların dışarıya açık adresi
	PublicAssetBaseURL string `env:"PUBLIC_ASSET_BASE_URL"`

	PaymentProvider string `env:"PAYMENT_PROVIDER" envDefault:"razorpay"`
	Currency        string `env:"CURRENCY" envDefault:"INR"`

	CronSecret      string        `env:"CRON_SECRET"`
	CleanupSchedule string        `env:"CLEANUP_SCHEDULE" envDefault:"@every 6h"`
	PageRetention   time.Duration `env:"PAGE_RETENTION" envDefault:"360h"`

	RateLimitMax int `env:"RATE_LIMIT_MAX" envDefault:"120"`
	BcryptCost   int `env:"BCRYPT_COST" envDefault:"10"`

	R2       R2Config
	Razorpay RazorpayConfig
	Stripe   StripeConfig
	Email    EmailConfig
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// AssetBaseURL yüklenen nesnelerin hangi adresten sunulacağını belirler.
// R2 public bucket yoksa kendi proxy rotamız kullanılır.
func (c *Config) AssetBaseURL() string {
	if c.PublicAssetBaseURL != "" {
		return c.PublicAssetBaseURL
	}
	if c.R2.PublicURL != "" {
		return c.R2.PublicURL
	}
	return c.FrontendURL + "/api/uploads"
}

func LoadConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	switch cfg.PaymentProvider {
	case "razorpay", "stripe":
	default:
		return nil, fmt.Errorf("unsupported PAYMENT_PROVIDER %q", cfg.PaymentProvider)
	}

	return &cfg, nil
}
