package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PageRetention sayfaların ne kadar süre yayında kalacağını belirler
const PageRetention = 15 * 24 * time.Hour

type Page struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     *uint          `json:"user_id,omitempty"`
	TemplateID uint           `json:"template_id" gorm:"not null"`
	Template   *Template      `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
	Content    datatypes.JSON `json:"content"`
	Slug       string         `json:"slug" gorm:"uniqueIndex;not null"`
	IsPaid     bool           `json:"is_paid" gorm:"not null;default:false"`
	ExpiresAt  time.Time      `json:"expires_at"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (p *Page) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Slug == "" {
		p.Slug = uuid.NewString()
	}
	return nil
}

func (p *Page) IsExpired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

func (p *Page) OwnedBy(userID uint) bool {
	return p.UserID != nil && *p.UserID == userID
}

type PagePhoto struct {
	Key string `json:"key,omitempty"`
	URL string `json:"url"`
}

type PageContent struct {
	RecipientName string      `json:"recipient_name"`
	Title         string      `json:"title,omitempty"`
	Message       string      `json:"message,omitempty"`
	Photos        []PagePhoto `json:"photos,omitempty"`
}

type CreatePageRequest struct {
	TemplateID    uint     `json:"template_id" validate:"required"`
	RecipientName string   `json:"recipient_name" validate:"required,max=100"`
	Title         string   `json:"title" validate:"max=150"`
	Message       string   `json:"message" validate:"max=2000"`
	Photos        []string `json:"photos" validate:"max=10,dive,required,max=500"`
}

type CreatePageResult struct {
	Page            *Page  `json:"page"`
	PaidWithCredits bool   `json:"paid_with_credits"`
	Redirect        string `json:"redirect"`
}

type PageMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PublicPage /p/:slug için dönen görünüm
type PublicPage struct {
	ID           uuid.UUID   `json:"id"`
	Slug         string      `json:"slug"`
	TemplateKey  string      `json:"template_key"`
	TemplateName string      `json:"template_name"`
	Content      PageContent `json:"content"`
	IsPaid       bool        `json:"is_paid"`
	Watermark    bool        `json:"watermark"`
	CheckoutURL  string      `json:"checkout_url,omitempty"`
	ExpiresAt    time.Time   `json:"expires_at"`
	Meta         PageMeta    `json:"meta"`
}

type CheckoutInfo struct {
	PageID       uuid.UUID `json:"page_id"`
	IsPaid       bool      `json:"is_paid"`
	Redirect     string    `json:"redirect,omitempty"`
	TemplateName string    `json:"template_name,omitempty"`
	Price        int       `json:"price"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	Balance      int       `json:"balance"`
}

type UnlockResult struct {
	Page       *Page  `json:"page"`
	NewBalance int    `json:"new_balance"`
	Redirect   string `json:"redirect"`
}
