package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

type OrderKind string

const (
	OrderKindPageUnlock     OrderKind = "page_unlock"
	OrderKindCreditPurchase OrderKind = "credit_purchase"
)

type Order struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	UserID    *uint       `json:"user_id,omitempty"`
	Kind      OrderKind   `json:"kind" gorm:"not null"`
	Provider  string      `json:"provider" gorm:"not null"`
	OrderID   string      `json:"order_id" gorm:"uniqueIndex;not null"`
	PaymentID string      `json:"payment_id,omitempty"`
	Amount    int64       `json:"amount" gorm:"not null"`
	Currency  string      `json:"currency" gorm:"not null"`
	Credits   int         `json:"credits"`
	PageID    *uuid.UUID  `json:"page_id,omitempty" gorm:"type:uuid"`
	Status    OrderStatus `json:"status" gorm:"not null;default:pending"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type CreatePageOrderRequest struct {
	PageID string `json:"page_id" validate:"required,uuid"`
}

type CreditPurchaseRequest struct {
	Amount float64 `json:"amount" validate:"required"`
}

// VerifyPaymentRequest gateway callback'inden gelen alanlar
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

type OrderResponse struct {
	OrderID     string `json:"order_id"`
	Provider    string `json:"provider"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Credits     int    `json:"credits,omitempty"`
	KeyID       string `json:"key_id,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

type VerifyPaymentResult struct {
	Order        *Order `json:"order"`
	CreditsAdded int    `json:"credits_added,omitempty"`
	NewBalance   int    `json:"new_balance,omitempty"`
	Redirect     string `json:"redirect,omitempty"`
}
