package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/metrics"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/qrcode"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PageService struct {
	tx        TxRunner
	pages     PageStore
	templates TemplateStore
	ledger    *LedgerService
	uploads   *UploadService
	qr        *qrcode.QRService
	currency  string
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewPageService(tx TxRunner, pages PageStore, templates TemplateStore, ledger *LedgerService, uploads *UploadService, qr *qrcode.QRService, currency string, retention time.Duration, logger *zap.Logger) *PageService {
	if retention <= 0 {
		retention = models.PageRetention
	}
	return &PageService{
		tx:        tx,
		pages:     pages,
		templates: templates,
		ledger:    ledger,
		uploads:   uploads,
		qr:        qr,
		currency:  currency,
		retention: retention,
		now:       time.Now,
		logger:    logger.Named("page"),
	}
}

func publicPath(slug string) string {
	return "/p/" + slug
}

func checkoutPath(id uuid.UUID) string {
	return "/checkout/" + id.String()
}

// CreatePage sayfayı oluşturur. Kullanıcının kredisi yetiyorsa ödeme aynı transaction içinde
// kredi ile yapılır; düşüm başarısız olursa sayfa da oluşmaz.
func (s *PageService) CreatePage(ctx context.Context, userID *uint, req models.CreatePageRequest) (*models.CreatePageResult, error) {
	content, err := s.buildContent(req)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &models.CreatePageResult{}

	err = s.tx.InTx(ctx, func(tx *gorm.DB) error {
		tmpl, err := s.templates.GetByID(ctx, tx, req.TemplateID)
		if err != nil {
			return notFound(err, ErrTemplateNotFound)
		}

		price := tmpl.EffectivePrice()
		payWithCredits := false
		if price > 0 && userID != nil {
			balance, err := s.ledger.LockedBalance(ctx, tx, *userID)
			if err != nil {
				return err
			}
			payWithCredits = balance >= price
		}

		page := &models.Page{
			ID:         uuid.New(),
			UserID:     userID,
			TemplateID: tmpl.ID,
			Content:    datatypes.JSON(raw),
			Slug:       uuid.NewString(),
			IsPaid:     price <= 0 || payWithCredits,
			ExpiresAt:  now.Add(s.retention),
			CreatedAt:  now,
		}
		if err := s.pages.Create(ctx, tx, page); err != nil {
			return err
		}

		if payWithCredits {
			_, _, err := s.ledger.Apply(ctx, tx, LedgerEntry{
				UserID:      *userID,
				Amount:      -price,
				Type:        models.CreditSpend,
				Description: "Purchased template: " + tmpl.Name,
				ReferenceID: page.ID.String(),
			}, BalanceStrict)
			if err != nil {
				return err
			}
		}

		page.Template = tmpl
		result.Page = page
		result.PaidWithCredits = payWithCredits
		return nil
	})
	if err != nil {
		return nil, err
	}

	page := result.Page
	if page.IsPaid {
		result.Redirect = publicPath(page.Slug)
	} else {
		result.Redirect = checkoutPath(page.ID)
	}

	label := "checkout"
	switch {
	case result.PaidWithCredits:
		label = "credits"
	case page.IsPaid:
		label = "free"
	}
	metrics.PagesCreated.WithLabelValues(label).Inc()

	s.logger.Info("page created",
		zap.String("page_id", page.ID.String()),
		zap.Uint("template_id", page.TemplateID),
		zap.Bool("paid", page.IsPaid),
		zap.Bool("paid_with_credits", result.PaidWithCredits),
	)
	return result, nil
}

func (s *PageService) buildContent(req models.CreatePageRequest) (*models.PageContent, error) {
	content := &models.PageContent{
		RecipientName: strings.TrimSpace(req.RecipientName),
		Title:         strings.TrimSpace(req.Title),
		Message:       strings.TrimSpace(req.Message),
	}
	if content.RecipientName == "" {
		return nil, utils.NewFieldError("recipient_name", "is required")
	}

	for i, p := range req.Photos {
		p = strings.TrimSpace(p)
		switch {
		case strings.HasPrefix(p, "https://"), strings.HasPrefix(p, "http://"):
			content.Photos = append(content.Photos, models.PagePhoto{URL: p})
		case strings.HasPrefix(strings.TrimPrefix(p, "/"), UploadPrefix) && IsManagedKey(strings.TrimPrefix(p, "/")):
			key := strings.TrimPrefix(p, "/")
			content.Photos = append(content.Photos, models.PagePhoto{Key: key, URL: s.uploads.PublicURL(key)})
		default:
			return nil, utils.NewFieldError(fmt.Sprintf("photos[%d]", i), "must be an uploaded file key or URL")
		}
	}
	return content, nil
}

func decodeContent(raw datatypes.JSON) models.PageContent {
	var content models.PageContent
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &content)
	}
	return content
}

// getLive süresi dolmuş sayfayı bulunamadı olarak döner.
func (s *PageService) getLive(ctx context.Context, slug string) (*models.Page, error) {
	page, err := s.pages.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, ErrPageNotFound)
	}
	if page.IsExpired(s.now()) || page.Template == nil {
		return nil, ErrPageNotFound
	}
	return page, nil
}

func (s *PageService) GetPublicPage(ctx context.Context, slug string) (*models.PublicPage, error) {
	page, err := s.getLive(ctx, slug)
	if err != nil {
		return nil, err
	}

	content := decodeContent(page.Content)
	view := &models.PublicPage{
		ID:           page.ID,
		Slug:         page.Slug,
		TemplateKey:  page.Template.ComponentKey,
		TemplateName: page.Template.Name,
		Content:      content,
		IsPaid:       page.IsPaid,
		Watermark:    !page.IsPaid,
		ExpiresAt:    page.ExpiresAt,
		Meta: models.PageMeta{
			Title:       pageTitle(content, page.Template.Name),
			Description: utils.Truncate(content.Message, 160),
		},
	}
	if view.Meta.Description == "" {
		view.Meta.Description = page.Template.Name
	}
	if !page.IsPaid {
		view.CheckoutURL = checkoutPath(page.ID)
	}
	return view, nil
}

// "<başlık> - For <alıcı>", başlık yoksa şablon adı
func pageTitle(content models.PageContent, templateName string) string {
	title := strings.TrimSpace(content.Title)
	if title == "" {
		title = templateName
	}
	return title + " - For " + content.RecipientName
}

func (s *PageService) GetCheckout(ctx context.Context, pageID uuid.UUID, userID *uint) (*models.CheckoutInfo, error) {
	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		return nil, notFound(err, ErrPageNotFound)
	}
	if page.Template == nil {
		return nil, ErrPageNotFound
	}

	info := &models.CheckoutInfo{
		PageID:   page.ID,
		IsPaid:   page.IsPaid,
		Currency: s.currency,
	}
	if page.IsPaid {
		info.Redirect = publicPath(page.Slug)
		return info, nil
	}

	price := page.Template.EffectivePrice()
	info.TemplateName = page.Template.Name
	info.Price = price
	info.Amount = int64(price) * 100

	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	info.Balance = balance
	return info, nil
}

// UnlockWithCredits ödenmemiş bir sayfayı kullanıcının kredisiyle açar.
func (s *PageService) UnlockWithCredits(ctx context.Context, userID uint, pageID uuid.UUID) (*models.UnlockResult, error) {
	result := &models.UnlockResult{}

	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		page, err := s.pages.LockByID(ctx, tx, pageID)
		if err != nil {
			return notFound(err, ErrPageNotFound)
		}
		if page.IsPaid {
			return ErrPageAlreadyPaid
		}
		if page.UserID != nil && *page.UserID != userID {
			return ErrForbidden
		}

		if price := page.Template.EffectivePrice(); price > 0 {
			_, balance, err := s.ledger.Apply(ctx, tx, LedgerEntry{
				UserID:      userID,
				Amount:      -price,
				Type:        models.CreditSpend,
				Description: "Purchased template: " + page.Template.Name,
				ReferenceID: page.ID.String(),
			}, BalanceStrict)
			if err != nil {
				return err
			}
			result.NewBalance = balance
		}

		if err := s.pages.MarkPaid(ctx, tx, page.ID, &userID); err != nil {
			return err
		}
		page.IsPaid = true
		page.UserID = &userID
		result.Page = page
		result.Redirect = publicPath(page.Slug)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("page unlocked with credits", zap.String("page_id", pageID.String()), zap.Uint("user_id", userID))
	return result, nil
}

func (s *PageService) ListUserPages(ctx context.Context, userID uint) ([]models.Page, error) {
	return s.pages.ListByUser(ctx, userID)
}

// ShareQRCode sayfanın herkese açık linki için PNG QR kod üretir.
func (s *PageService) ShareQRCode(ctx context.Context, slug string, size int) ([]byte, error) {
	page, err := s.getLive(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.qr.GenerateQRCode(page.Slug, size)
}
