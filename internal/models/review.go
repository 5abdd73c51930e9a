package models

import (
	"strings"
	"time"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

const (
	TextReviewReward  = 15
	VideoReviewReward = 40
)

type Review struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	UserID         uint         `json:"user_id" gorm:"not null"`
	User           *User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Text           string       `json:"text" gorm:"not null"`
	Rating         int          `json:"rating" gorm:"not null"`
	Role           string       `json:"role,omitempty"`
	VideoURL       string       `json:"video_url,omitempty"`
	Status         ReviewStatus `json:"status" gorm:"not null;default:pending"`
	CreditsAwarded int          `json:"credits_awarded" gorm:"not null;default:0"`
	ReviewedAt     *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (r *Review) IsVideo() bool {
	return r.VideoURL != ""
}

// Reward onay anında verilecek kredi miktarı
func (r *Review) Reward() int {
	if r.IsVideo() {
		return VideoReviewReward
	}
	return TextReviewReward
}

type SubmitReviewRequest struct {
	Text     string `json:"text" validate:"required,max=500"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Role     string `json:"role" validate:"max=50"`
	VideoURL string `json:"video_url" validate:"omitempty,url,max=500"`
}

// Normalize uzunluk kontrolünden önce boşlukları kırpar.
func (r *SubmitReviewRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	r.Role = strings.TrimSpace(r.Role)
	r.VideoURL = strings.TrimSpace(r.VideoURL)
}

// PublicReview onaylanmış yorumların herkese açık görünümü
type PublicReview struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	Role      string    `json:"role,omitempty"`
	VideoURL  string    `json:"video_url,omitempty"`
	UserName  string    `json:"user_name"`
	UserImage string    `json:"user_image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
