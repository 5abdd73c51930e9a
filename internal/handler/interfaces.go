package handler

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/internal/service"
	"github.com/sefazor/omnitemplates-backend/pkg/storage"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Me(ctx context.Context, userID uint) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type TemplateService interface {
	ListPublic(ctx context.Context) ([]models.Template, error)
	ListAll(ctx context.Context) ([]models.Template, error)
	GetPublic(ctx context.Context, id uint) (*models.Template, error)
	Create(ctx context.Context, req models.TemplateRequest) (*models.Template, error)
	Update(ctx context.Context, id uint, req models.TemplateRequest) (*models.Template, error)
	Delete(ctx context.Context, id uint) error
}

type PageService interface {
	CreatePage(ctx context.Context, userID *uint, req models.CreatePageRequest) (*models.CreatePageResult, error)
	GetPublicPage(ctx context.Context, slug string) (*models.PublicPage, error)
	GetCheckout(ctx context.Context, pageID uuid.UUID, userID *uint) (*models.CheckoutInfo, error)
	UnlockWithCredits(ctx context.Context, userID uint, pageID uuid.UUID) (*models.UnlockResult, error)
	ShareQRCode(ctx context.Context, slug string, size int) ([]byte, error)
}

type PaymentService interface {
	CreatePageOrder(ctx context.Context, userID uint, pageID uuid.UUID) (*models.OrderResponse, error)
	CreateCreditOrder(ctx context.Context, userID uint, amount float64) (*models.OrderResponse, error)
	VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest, userID *uint) (*models.VerifyPaymentResult, error)
	HandleRazorpayWebhook(ctx context.Context, body []byte, signature string) error
	HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

type ReviewService interface {
	ListApproved(ctx context.Context) ([]models.PublicReview, error)
	List(ctx context.Context, status models.ReviewStatus) ([]models.Review, error)
	Submit(ctx context.Context, userID uint, req models.SubmitReviewRequest) (*models.Review, error)
	Approve(ctx context.Context, reviewID uint) (*models.Review, error)
	Reject(ctx context.Context, reviewID uint) (*models.Review, error)
}

type UploadService interface {
	PresignUpload(ctx context.Context, req models.UploadURLRequest) (*models.UploadURLResponse, error)
	PresignTemplateThumbnail(ctx context.Context, req models.UploadURLRequest) (*models.UploadURLResponse, error)
	Upload(ctx context.Context, filename, contentType string, size int64, src io.Reader) (*service.UploadResult, error)
	Open(ctx context.Context, key string) (*storage.Object, error)
}

type CreditService interface {
	Balance(ctx context.Context, userID *uint) (int, error)
	History(ctx context.Context, userID uint, limit int) ([]models.CreditTransaction, error)
}

type AdminService interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
	Users(ctx context.Context, limit, offset int) ([]models.User, error)
	RecentTransactions(ctx context.Context) ([]models.CreditTransactionView, error)
	Orders(ctx context.Context, limit int) ([]models.Order, error)
	AdjustCredits(ctx context.Context, req models.AdjustCreditsRequest) (*models.CreditTransaction, int, error)
}

type CleanupService interface {
	Run(ctx context.Context) (*models.CleanupResult, error)
}

type DashboardService interface {
	Get(ctx context.Context, userID uint) (*models.Dashboard, error)
}
