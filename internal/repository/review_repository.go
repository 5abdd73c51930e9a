package repository

import (
	"context"
	"time"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{
		db: db,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	return conn(ctx, r.db, tx).Omit("User").Create(review).Error
}

func (r *ReviewRepository) LockByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Review, error) {
	var review models.Review
	if err := conn(ctx, r.db, tx).Clauses(forUpdate()).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateModeration yalnızca moderasyon alanlarını yazar.
func (r *ReviewRepository) UpdateModeration(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	return conn(ctx, r.db, tx).Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"status":          review.Status,
			"credits_awarded": review.CreditsAwarded,
			"reviewed_at":     review.ReviewedAt,
		}).Error
}

func (r *ReviewRepository) ListApproved(ctx context.Context, limit int) ([]models.PublicReview, error) {
	var reviews []models.PublicReview
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.id, reviews.text, reviews.rating, reviews.role, reviews.video_url, reviews.created_at, users.name AS user_name, users.image AS user_image").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.status = ?", models.ReviewStatusApproved).
		Order("reviews.created_at DESC").
		Limit(limit).
		Scan(&reviews).Error
	return reviews, err
}

func (r *ReviewRepository) List(ctx context.Context, status models.ReviewStatus) ([]models.Review, error) {
	var reviews []models.Review
	q := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&reviews).Error
	return reviews, err
}

// CountSince kullanıcının verilen tarihten beri yazdığı metin ve video yorum sayıları
func (r *ReviewRepository) CountSince(ctx context.Context, tx *gorm.DB, userID uint, since time.Time) (text int64, video int64, err error) {
	var rows []struct {
		IsVideo bool
		Count   int64
	}
	err = conn(ctx, r.db, tx).
		Model(&models.Review{}).
		Select("video_url <> '' AS is_video, COUNT(*) AS count").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Group("is_video").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}

	for _, row := range rows {
		if row.IsVideo {
			video = row.Count
		} else {
			text = row.Count
		}
	}
	return text, video, nil
}
