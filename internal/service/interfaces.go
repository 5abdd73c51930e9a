package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/email"
	"gorm.io/gorm"
)

// TxRunner fn'i tek bir veritabanı transaction'ı içinde çalıştırır.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserStore interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

type CreditStore interface {
	LockUser(ctx context.Context, tx *gorm.DB, userID uint) (*models.User, error)
	SetCredits(ctx context.Context, tx *gorm.DB, userID uint, credits int) error
	CreateTransaction(ctx context.Context, tx *gorm.DB, t *models.CreditTransaction) error
	GetBalance(ctx context.Context, userID uint) (int, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.CreditTransaction, error)
	ListRecent(ctx context.Context, limit int) ([]models.CreditTransactionView, error)
}

type TemplateStore interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Template, error)
	ListPublic(ctx context.Context) ([]models.Template, error)
	ListAll(ctx context.Context) ([]models.Template, error)
	Create(ctx context.Context, tmpl *models.Template) error
	Update(ctx context.Context, tmpl *models.Template) error
	Delete(ctx context.Context, id uint) error
	CountPages(ctx context.Context, id uint) (int64, error)
}

type PageStore interface {
	Create(ctx context.Context, tx *gorm.DB, page *models.Page) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Page, error)
	GetBySlug(ctx context.Context, slug string) (*models.Page, error)
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Page, error)
	MarkPaid(ctx context.Context, tx *gorm.DB, id uuid.UUID, userID *uint) error
	ListByUser(ctx context.Context, userID uint) ([]models.Page, error)
	ListExpired(ctx context.Context, before time.Time, limit int) ([]models.Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	LockByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.OrderStatus, paymentID string) error
	ListByUser(ctx context.Context, userID uint) ([]models.Order, error)
	List(ctx context.Context, limit int) ([]models.Order, error)
}

type ReviewStore interface {
	Create(ctx context.Context, tx *gorm.DB, review *models.Review) error
	LockByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Review, error)
	UpdateModeration(ctx context.Context, tx *gorm.DB, review *models.Review) error
	ListApproved(ctx context.Context, limit int) ([]models.PublicReview, error)
	List(ctx context.Context, status models.ReviewStatus) ([]models.Review, error)
	CountSince(ctx context.Context, tx *gorm.DB, userID uint, since time.Time) (text int64, video int64, err error)
}

type StatsStore interface {
	Overview(ctx context.Context) (*models.AdminStats, error)
	DailyEarnings(ctx context.Context, since time.Time) ([]models.DailyEarning, error)
}

type Mailer interface {
	SendWelcomeEmail(email, name string, bonusCredits int) error
	SendPasswordResetEmail(email, resetToken string) error
	SendPaymentReceipt(email, name string, receipt email.Receipt) error
}
