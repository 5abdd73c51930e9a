package models

import (
	"time"
)

type CreditTransactionType string

const (
	CreditSignupBonus  CreditTransactionType = "signup_bonus"
	CreditReviewReward CreditTransactionType = "review_reward"
	CreditPurchase     CreditTransactionType = "purchase"
	CreditSpend        CreditTransactionType = "spend"
	CreditAdjustment   CreditTransactionType = "adjustment"
)

const (
	MinCreditPurchase = 1
	MaxCreditPurchase = 10000
)

// CreditTransaction append-only kayıttır, güncellenmez.
type CreditTransaction struct {
	ID          uint                  `json:"id" gorm:"primaryKey"`
	UserID      uint                  `json:"user_id" gorm:"not null;index"`
	Amount      int                   `json:"amount" gorm:"not null"`
	Type        CreditTransactionType `json:"type" gorm:"not null"`
	Description string                `json:"description"`
	ReferenceID string                `json:"reference_id,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// CreditTransactionView admin listesinde kullanıcı adı ile birlikte
type CreditTransactionView struct {
	CreditTransaction
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

type AdjustCreditsRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Amount int    `json:"amount" validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,max=200"`
}

type BalanceResponse struct {
	Credits int `json:"credits"`
}
