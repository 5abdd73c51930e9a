package models

import (
	"time"

	"github.com/google/uuid"
)

type DailyEarning struct {
	Day    time.Time `json:"day"`
	Amount int64     `json:"amount"`
}

type RecentPage struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	TemplateName string    `json:"template_name"`
	IsPaid       bool      `json:"is_paid"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminStats struct {
	Users                int64          `json:"users"`
	Orders               int64          `json:"orders"`
	Pages                int64          `json:"pages"`
	PendingReviews       int64          `json:"pending_reviews"`
	TotalReviews         int64          `json:"total_reviews"`
	TotalEarnings        int64          `json:"total_earnings"`
	CreditsInCirculation int64          `json:"credits_in_circulation"`
	RecentPages          []RecentPage   `json:"recent_pages"`
	DailyEarnings        []DailyEarning `json:"daily_earnings"`
}

type Dashboard struct {
	User    *User   `json:"user"`
	Credits int     `json:"credits"`
	Pages   []Page  `json:"pages"`
	Orders  []Order `json:"orders"`
}

type CleanupResult struct {
	PagesDeleted  int `json:"pages_deleted"`
	AssetsDeleted int `json:"assets_deleted"`
	AssetErrors   int `json:"asset_errors"`
}
