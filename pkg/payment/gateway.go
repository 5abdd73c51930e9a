package payment

import (
	"context"
	"errors"
)

const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)

var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

type OrderRequest struct {
	// Amount en küçük para biriminde (paise, cent)
	Amount      int64
	Currency    string
	Receipt     string
	Description string
	Email       string
	Notes       map[string]string
	SuccessURL  string
	CancelURL   string
}

type GatewayOrder struct {
	ID          string
	Amount      int64
	Currency    string
	CheckoutURL string
}

// Gateway ödeme sağlayıcısında sipariş oluşturur.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error)
}
