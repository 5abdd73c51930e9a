package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/metrics"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/email"
	"github.com/sefazor/omnitemplates-backend/pkg/payment"
	"github.com/stripe/stripe-go/v74"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StripeEvents Stripe webhook imzasını doğrulayıp event'i çözer.
type StripeEvents interface {
	ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error)
}

type PaymentConfig struct {
	Currency              string
	FrontendURL           string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
}

type PaymentService struct {
	tx      TxRunner
	orders  OrderStore
	pages   PageStore
	users   UserStore
	ledger  *LedgerService
	gateway payment.Gateway
	stripe  StripeEvents
	mailer  Mailer
	cfg     PaymentConfig
	now     func() time.Time
	logger  *zap.Logger
}

func NewPaymentService(tx TxRunner, orders OrderStore, pages PageStore, users UserStore, ledger *LedgerService, gateway payment.Gateway, stripeEvents StripeEvents, mailer Mailer, cfg PaymentConfig, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		tx:      tx,
		orders:  orders,
		pages:   pages,
		users:   users,
		ledger:  ledger,
		gateway: gateway,
		stripe:  stripeEvents,
		mailer:  mailer,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.Named("payment"),
	}
}

// CreatePageOrder ödenmemiş bir sayfa için gateway siparişi açar.
func (s *PaymentService) CreatePageOrder(ctx context.Context, userID uint, pageID uuid.UUID) (*models.OrderResponse, error) {
	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		return nil, notFound(err, ErrPageNotFound)
	}
	if page.IsPaid {
		return nil, ErrPageAlreadyPaid
	}
	if page.UserID != nil && *page.UserID != userID {
		return nil, ErrForbidden
	}
	if page.Template == nil {
		return nil, ErrPageNotFound
	}

	price := page.Template.EffectivePrice()
	if price <= 0 {
		return nil, ErrPageFree
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:      int64(price) * 100,
		Currency:    s.cfg.Currency,
		Receipt:     "page_" + strings.ReplaceAll(page.ID.String(), "-", ""),
		Description: page.Template.Name,
		Email:       user.Email,
		Notes: map[string]string{
			"page_id": page.ID.String(),
			"user_id": strconv.FormatUint(uint64(userID), 10),
			"type":    string(models.OrderKindPageUnlock),
		},
		SuccessURL: s.cfg.FrontendURL + checkoutPath(page.ID),
		CancelURL:  s.cfg.FrontendURL + checkoutPath(page.ID),
	})
	if err != nil {
		return nil, err
	}

	pid := page.ID
	order := &models.Order{
		UserID:   &userID,
		Kind:     models.OrderKindPageUnlock,
		Provider: s.gateway.Name(),
		OrderID:  gwOrder.ID,
		Amount:   gwOrder.Amount,
		Currency: gwOrder.Currency,
		PageID:   &pid,
		Status:   models.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("page order created",
		zap.String("order_id", order.OrderID),
		zap.String("page_id", pid.String()),
		zap.Int64("amount", order.Amount),
	)
	return s.orderResponse(order, gwOrder), nil
}

// CreateCreditOrder 1..10000 arası tam sayı kredi satın alımı başlatır.
func (s *PaymentService) CreateCreditOrder(ctx context.Context, userID uint, amount float64) (*models.OrderResponse, error) {
	if amount != math.Trunc(amount) || amount < models.MinCreditPurchase || amount > models.MaxCreditPurchase {
		return nil, ErrInvalidAmount
	}
	credits := int(amount)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:      int64(credits) * 100,
		Currency:    s.cfg.Currency,
		Receipt:     fmt.Sprintf("credits_%d_%d", userID, s.now().Unix()),
		Description: fmt.Sprintf("%d OmniTemplates credits", credits),
		Email:       user.Email,
		Notes: map[string]string{
			"user_id": strconv.FormatUint(uint64(userID), 10),
			"type":    string(models.OrderKindCreditPurchase),
			"credits": strconv.Itoa(credits),
		},
		SuccessURL: s.cfg.FrontendURL + "/dashboard?payment=success",
		CancelURL:  s.cfg.FrontendURL + "/credits",
	})
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:   &userID,
		Kind:     models.OrderKindCreditPurchase,
		Provider: s.gateway.Name(),
		OrderID:  gwOrder.ID,
		Amount:   gwOrder.Amount,
		Currency: gwOrder.Currency,
		Credits:  credits,
		Status:   models.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("credit order created", zap.String("order_id", order.OrderID), zap.Int("credits", credits))
	return s.orderResponse(order, gwOrder), nil
}

func (s *PaymentService) orderResponse(order *models.Order, gwOrder *payment.GatewayOrder) *models.OrderResponse {
	resp := &models.OrderResponse{
		OrderID:     order.OrderID,
		Provider:    order.Provider,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Credits:     order.Credits,
		CheckoutURL: gwOrder.CheckoutURL,
	}
	if order.Provider == payment.ProviderRazorpay {
		resp.KeyID = s.cfg.RazorpayKeyID
	}
	return resp
}

// VerifyPayment checkout callback imzasını doğrular; imza tutmazsa hiçbir şey değişmez.
func (s *PaymentService) VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest, userID *uint) (*models.VerifyPaymentResult, error) {
	if err := payment.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature, s.cfg.RazorpayKeySecret); err != nil {
		metrics.Payments.WithLabelValues(payment.ProviderRazorpay, "invalid_signature").Inc()
		s.logger.Warn("payment signature mismatch", zap.String("order_id", req.OrderID))
		return nil, ErrInvalidSignature
	}
	return s.completeOrder(ctx, payment.ProviderRazorpay, req.OrderID, req.PaymentID, userID)
}

// completeOrder siparişi ödendi olarak işaretler ve karşılığını (sayfa ya da kredi) verir.
// Zaten ödenmiş siparişler için tekrar işlem yapmaz.
func (s *PaymentService) completeOrder(ctx context.Context, provider, orderID, paymentID string, userID *uint) (*models.VerifyPaymentResult, error) {
	result := &models.VerifyPaymentResult{}
	completed := false

	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.LockByOrderID(ctx, tx, orderID)
		if err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		if userID != nil && order.UserID != nil && *order.UserID != *userID {
			return ErrForbidden
		}
		result.Order = order

		if order.Status == models.OrderStatusPaid {
			return nil
		}

		if err := s.orders.UpdateStatus(ctx, tx, order.ID, models.OrderStatusPaid, paymentID); err != nil {
			return err
		}
		order.Status = models.OrderStatusPaid
		order.PaymentID = paymentID

		switch order.Kind {
		case models.OrderKindPageUnlock:
			if order.PageID == nil {
				return fmt.Errorf("order %s has no page", order.OrderID)
			}
			page, err := s.pages.LockByID(ctx, tx, *order.PageID)
			if err != nil {
				return notFound(err, ErrPageNotFound)
			}
			owner := page.UserID
			if owner == nil {
				owner = order.UserID
			}
			if err := s.pages.MarkPaid(ctx, tx, page.ID, owner); err != nil {
				return err
			}
			result.Redirect = publicPath(page.Slug)

		case models.OrderKindCreditPurchase:
			if order.UserID == nil {
				return fmt.Errorf("order %s has no user", order.OrderID)
			}
			_, balance, err := s.ledger.Apply(ctx, tx, LedgerEntry{
				UserID:      *order.UserID,
				Amount:      order.Credits,
				Type:        models.CreditPurchase,
				Description: fmt.Sprintf("Purchased %d credits", order.Credits),
				ReferenceID: paymentID,
			}, BalanceStrict)
			if err != nil {
				return err
			}
			result.CreditsAdded = order.Credits
			result.NewBalance = balance
		}

		completed = true
		return nil
	})
	if err != nil {
		metrics.Payments.WithLabelValues(provider, "error").Inc()
		return nil, err
	}

	if !completed {
		metrics.Payments.WithLabelValues(provider, "duplicate").Inc()
		if result.Order.Kind == models.OrderKindCreditPurchase {
			balance, err := s.ledger.Balance(ctx, result.Order.UserID)
			if err != nil {
				return nil, err
			}
			result.NewBalance = balance
		}
		if result.Order.Kind == models.OrderKindPageUnlock && result.Order.PageID != nil {
			if page, err := s.pages.GetByID(ctx, *result.Order.PageID); err == nil {
				result.Redirect = publicPath(page.Slug)
			}
		}
		return result, nil
	}

	metrics.Payments.WithLabelValues(provider, "paid").Inc()
	s.logger.Info("order paid",
		zap.String("provider", provider),
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID),
		zap.String("kind", string(result.Order.Kind)),
	)
	s.sendReceipt(*result.Order, result.Redirect)
	return result, nil
}

func (s *PaymentService) failOrder(ctx context.Context, provider, orderID string) error {
	return s.tx.InTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.LockByOrderID(ctx, tx, orderID)
		if err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		if order.Status != models.OrderStatusPending {
			return nil
		}
		metrics.Payments.WithLabelValues(provider, "failed").Inc()
		return s.orders.UpdateStatus(ctx, tx, order.ID, models.OrderStatusFailed, "")
	})
}

// HandleRazorpayWebhook X-Razorpay-Signature ile imzalanmış event'leri işler.
func (s *PaymentService) HandleRazorpayWebhook(ctx context.Context, body []byte, signature string) error {
	if err := payment.VerifyWebhookSignature(body, signature, s.cfg.RazorpayWebhookSecret); err != nil {
		metrics.Payments.WithLabelValues(payment.ProviderRazorpay, "invalid_signature").Inc()
		return ErrInvalidSignature
	}
	if !gjson.ValidBytes(body) {
		return ErrInvalidPayload
	}

	event := gjson.GetBytes(body, "event").String()
	orderID := gjson.GetBytes(body, "payload.payment.entity.order_id").String()
	if orderID == "" {
		orderID = gjson.GetBytes(body, "payload.order.entity.id").String()
	}
	paymentID := gjson.GetBytes(body, "payload.payment.entity.id").String()

	var err error
	switch event {
	case "payment.captured", "order.paid":
		_, err = s.completeOrder(ctx, payment.ProviderRazorpay, orderID, paymentID, nil)
	case "payment.failed":
		err = s.failOrder(ctx, payment.ProviderRazorpay, orderID)
	default:
		s.logger.Debug("ignoring razorpay event", zap.String("event", event))
		return nil
	}

	// Bizim oluşturmadığımız siparişler
	if errors.Is(err, ErrOrderNotFound) {
		s.logger.Warn("webhook for unknown order", zap.String("event", event), zap.String("order_id", orderID))
		return nil
	}
	return err
}

// HandleStripeWebhook checkout session event'lerini sipariş durumuna yansıtır.
func (s *PaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if s.stripe == nil {
		return ErrGatewayNotConfigured
	}

	event, err := s.stripe.ConstructEvent(payload, signatureHeader)
	if err != nil {
		metrics.Payments.WithLabelValues(payment.ProviderStripe, "invalid_signature").Inc()
		s.logger.Warn("stripe webhook rejected", zap.Error(err))
		return ErrInvalidSignature
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded",
		"checkout.session.expired", "checkout.session.async_payment_failed":
	default:
		return nil
	}

	var session stripe.CheckoutSession
	if event.Data == nil {
		return ErrInvalidPayload
	}
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return ErrInvalidPayload
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			// Asenkron ödemeler async_payment_succeeded ile tamamlanır
			return nil
		}
		paymentID := session.ID
		if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
			paymentID = session.PaymentIntent.ID
		}
		_, err = s.completeOrder(ctx, payment.ProviderStripe, session.ID, paymentID, nil)
	default:
		err = s.failOrder(ctx, payment.ProviderStripe, session.ID)
	}

	if errors.Is(err, ErrOrderNotFound) {
		s.logger.Warn("webhook for unknown order", zap.String("event", string(event.Type)), zap.String("session_id", session.ID))
		return nil
	}
	return err
}

func (s *PaymentService) sendReceipt(order models.Order, redirect string) {
	if s.mailer == nil || order.UserID == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := s.users.GetByID(ctx, *order.UserID)
		if err != nil {
			s.logger.Warn("receipt skipped, user lookup failed", zap.Uint("user_id", *order.UserID), zap.Error(err))
			return
		}

		receipt := email.Receipt{
			Description: "Page unlock",
			Amount:      fmt.Sprintf("%.2f %s", float64(order.Amount)/100, order.Currency),
			Reference:   order.PaymentID,
		}
		if order.Kind == models.OrderKindCreditPurchase {
			receipt.Description = fmt.Sprintf("%d credits", order.Credits)
		}
		if redirect != "" {
			receipt.Link = s.cfg.FrontendURL + redirect
		}

		if err := s.mailer.SendPaymentReceipt(user.Email, user.Name, receipt); err != nil {
			s.logger.Warn("receipt email failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}()
}
