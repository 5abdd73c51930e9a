package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	testKeySecret     = "rzp_secret"
	testWebhookSecret = "rzp_webhook_secret"
)

type paymentFixture struct {
	db      *fakeDB
	svc     *PaymentService
	gateway *fakeGateway
	mailer  *fakeMailer
	orders  fakeOrders
}

func newPaymentFixture(stripeEvents StripeEvents) *paymentFixture {
	db := newFakeDB()
	gw := &fakeGateway{name: payment.ProviderRazorpay}
	mailer := &fakeMailer{}
	svc := NewPaymentService(db, fakeOrders{db}, fakePages{db}, fakeUsers{db}, newTestLedger(db), gw, stripeEvents, mailer, PaymentConfig{
		Currency:              "INR",
		FrontendURL:           "https://omnitemplates.app",
		RazorpayKeyID:         "rzp_key",
		RazorpayKeySecret:     testKeySecret,
		RazorpayWebhookSecret: testWebhookSecret,
	}, zap.NewNop())
	return &paymentFixture{db: db, svc: svc, gateway: gw, mailer: mailer, orders: fakeOrders{db}}
}

func (f *paymentFixture) addPage(ownerID *uint, tmpl *models.Template, paid bool) models.Page {
	p := models.Page{
		ID:         uuid.New(),
		UserID:     ownerID,
		TemplateID: tmpl.ID,
		Content:    datatypes.JSON(`{"recipient_name":"Ada"}`),
		Slug:       uuid.NewString(),
		IsPaid:     paid,
		ExpiresAt:  time.Now().Add(models.PageRetention),
	}
	f.db.pages[p.ID] = p
	return p
}

func TestCreateCreditOrderValidatesAmount(t *testing.T) {
	f := newPaymentFixture(nil)
	user := f.db.addUser("ali", 0)

	for _, amount := range []float64{0, -5, 1.5, 10001} {
		_, err := f.svc.CreateCreditOrder(context.Background(), user.ID, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
	}
	assert.Empty(t, f.gateway.requests)

	resp, err := f.svc.CreateCreditOrder(context.Background(), user.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), resp.Amount)
	assert.Equal(t, 250, resp.Credits)
	assert.Equal(t, "rzp_key", resp.KeyID)

	order := f.orders.get(resp.OrderID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.OrderKindCreditPurchase, order.Kind)
	assert.Equal(t, "250", f.gateway.requests[0].Notes["credits"])
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture(nil)
	user := f.db.addUser("veli", 0)
	resp, err := f.svc.CreateCreditOrder(context.Background(), user.ID, 100)
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(context.Background(), models.VerifyPaymentRequest{
		OrderID:   resp.OrderID,
		PaymentID: "pay_1",
		Signature: payment.PaymentSignature(resp.OrderID, "pay_1", "wrong-secret"),
	}, &user.ID)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	assert.Equal(t, models.OrderStatusPending, f.orders.get(resp.OrderID).Status)
	assert.Zero(t, f.db.balance(user.ID))
}

func TestVerifyPaymentCreditsFromStoredOrderAndIsIdempotent(t *testing.T) {
	f := newPaymentFixture(nil)
	user := f.db.addUser("hasan", 3)
	resp, err := f.svc.CreateCreditOrder(context.Background(), user.ID, 100)
	require.NoError(t, err)

	req := models.VerifyPaymentRequest{
		OrderID:   resp.OrderID,
		PaymentID: "pay_42",
		Signature: payment.PaymentSignature(resp.OrderID, "pay_42", testKeySecret),
	}

	result, err := f.svc.VerifyPayment(context.Background(), req, &user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, result.CreditsAdded)
	assert.Equal(t, 103, result.NewBalance)
	assert.Equal(t, models.OrderStatusPaid, f.orders.get(resp.OrderID).Status)
	assert.Equal(t, "pay_42", f.orders.get(resp.OrderID).PaymentID)

	again, err := f.svc.VerifyPayment(context.Background(), req, &user.ID)
	require.NoError(t, err)
	assert.Zero(t, again.CreditsAdded)
	assert.Equal(t, 103, again.NewBalance)
	assert.Equal(t, 103, f.db.balance(user.ID))

	entries := f.db.ledgerFor(user.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.CreditPurchase, entries[0].Type)
	assert.Equal(t, "pay_42", entries[0].ReferenceID)

	assert.Eventually(t, func() bool { return f.mailer.receiptCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestVerifyPaymentForbiddenForOtherUser(t *testing.T) {
	f := newPaymentFixture(nil)
	buyer := f.db.addUser("buyer", 0)
	other := f.db.addUser("other", 0)
	resp, err := f.svc.CreateCreditOrder(context.Background(), buyer.ID, 10)
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(context.Background(), models.VerifyPaymentRequest{
		OrderID:   resp.OrderID,
		PaymentID: "pay_1",
		Signature: payment.PaymentSignature(resp.OrderID, "pay_1", testKeySecret),
	}, &other.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, models.OrderStatusPending, f.orders.get(resp.OrderID).Status)
}

func TestPageOrderFlow(t *testing.T) {
	f := newPaymentFixture(nil)
	user := f.db.addUser("gul", 0)
	paidTmpl := f.db.addTemplate("Proposal", 99, intPtr(79))
	freeTmpl := f.db.addTemplate("Free", 0, nil)

	_, err := f.svc.CreatePageOrder(context.Background(), user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPageNotFound)

	alreadyPaid := f.addPage(&user.ID, paidTmpl, true)
	_, err = f.svc.CreatePageOrder(context.Background(), user.ID, alreadyPaid.ID)
	assert.ErrorIs(t, err, ErrPageAlreadyPaid)

	free := f.addPage(&user.ID, freeTmpl, false)
	_, err = f.svc.CreatePageOrder(context.Background(), user.ID, free.ID)
	assert.ErrorIs(t, err, ErrPageFree)

	page := f.addPage(&user.ID, paidTmpl, false)
	resp, err := f.svc.CreatePageOrder(context.Background(), user.ID, page.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7900), resp.Amount)
	assert.LessOrEqual(t, len(f.gateway.requests[0].Receipt), 40)

	result, err := f.svc.VerifyPayment(context.Background(), models.VerifyPaymentRequest{
		OrderID:   resp.OrderID,
		PaymentID: "pay_page",
		Signature: payment.PaymentSignature(resp.OrderID, "pay_page", testKeySecret),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/p/"+page.Slug, result.Redirect)
	assert.True(t, f.db.pages[page.ID].IsPaid)
	assert.Empty(t, f.db.ledgerFor(user.ID))
}

func TestCreatePageOrderGatewayError(t *testing.T) {
	f := newPaymentFixture(nil)
	user := f.db.addUser("kaan", 0)
	tmpl := f.db.addTemplate("Birthday", 49, nil)
	page := f.addPage(&user.ID, tmpl, false)
	f.gateway.err = errors.New("gateway down")

	_, err := f.svc.CreatePageOrder(context.Background(), user.ID, page.ID)
	require.Error(t, err)
	assert.Empty(t, f.db.orders)
}

func razorpayEvent(t *testing.T, event, orderID, paymentID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"event": event,
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       paymentID,
					"order_id": orderID,
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestHandleRazorpayWebhook(t *testing.T) {
	f := newPaymentFixture(nil)
	user := f.db.addUser("sema", 0)
	resp, err := f.svc.CreateCreditOrder(context.Background(), user.ID, 20)
	require.NoError(t, err)

	body := razorpayEvent(t, "payment.captured", resp.OrderID, "pay_hook")

	err = f.svc.HandleRazorpayWebhook(context.Background(), body, "bad")
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Zero(t, f.db.balance(user.ID))

	require.NoError(t, f.svc.HandleRazorpayWebhook(context.Background(), body, payment.Sign(testWebhookSecret, body)))
	assert.Equal(t, 20, f.db.balance(user.ID))

	// Tekrar gelen event kredi eklemez
	require.NoError(t, f.svc.HandleRazorpayWebhook(context.Background(), body, payment.Sign(testWebhookSecret, body)))
	assert.Equal(t, 20, f.db.balance(user.ID))

	unknown := razorpayEvent(t, "payment.captured", "order_unknown", "pay_x")
	assert.NoError(t, f.svc.HandleRazorpayWebhook(context.Background(), unknown, payment.Sign(testWebhookSecret, unknown)))
}

func TestHandleRazorpayWebhookFailedPayment(t *testing.T) {
	f := newPaymentFixture(nil)
	user := f.db.addUser("umut", 0)
	resp, err := f.svc.CreateCreditOrder(context.Background(), user.ID, 20)
	require.NoError(t, err)

	body := razorpayEvent(t, "payment.failed", resp.OrderID, "pay_failed")
	require.NoError(t, f.svc.HandleRazorpayWebhook(context.Background(), body, payment.Sign(testWebhookSecret, body)))
	assert.Equal(t, models.OrderStatusFailed, f.orders.get(resp.OrderID).Status)
	assert.Zero(t, f.db.balance(user.ID))
}

type fakeStripeEvents struct {
	event stripe.Event
	err   error
}

func (f fakeStripeEvents) ConstructEvent(_ []byte, _ string) (stripe.Event, error) {
	return f.event, f.err
}

func stripeSessionEvent(t *testing.T, eventType, sessionID, status string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"id":   "evt_1",
		"type": eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             sessionID,
				"object":         "checkout.session",
				"payment_status": status,
				"payment_intent": "pi_123",
			},
		},
	})
	require.NoError(t, err)

	var event stripe.Event
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func TestHandleStripeWebhook(t *testing.T) {
	events := &fakeStripeEvents{}
	f := newPaymentFixture(events)
	f.gateway.name = payment.ProviderStripe
	user := f.db.addUser("tolga", 0)
	resp, err := f.svc.CreateCreditOrder(context.Background(), user.ID, 15)
	require.NoError(t, err)
	assert.Empty(t, resp.KeyID)

	events.event = stripeSessionEvent(t, "checkout.session.completed", resp.OrderID, "unpaid")
	require.NoError(t, f.svc.HandleStripeWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Equal(t, models.OrderStatusPending, f.orders.get(resp.OrderID).Status)

	events.event = stripeSessionEvent(t, "checkout.session.async_payment_succeeded", resp.OrderID, "paid")
	require.NoError(t, f.svc.HandleStripeWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Equal(t, 15, f.db.balance(user.ID))
	assert.Equal(t, "pi_123", f.orders.get(resp.OrderID).PaymentID)

	events.err = errors.New("signature mismatch")
	assert.ErrorIs(t, f.svc.HandleStripeWebhook(context.Background(), []byte("{}"), "bad"), ErrInvalidSignature)
}

func TestHandleStripeWebhookNotConfigured(t *testing.T) {
	f := newPaymentFixture(nil)
	assert.ErrorIs(t, f.svc.HandleStripeWebhook(context.Background(), []byte("{}"), "sig"), ErrGatewayNotConfigured)
}
