package repository

import (
	"context"
	"time"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"gorm.io/gorm"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{
		db: db,
	}
}

func (r *StatsRepository) Overview(ctx context.Context) (*models.AdminStats, error) {
	db := r.db.WithContext(ctx)
	stats := &models.AdminStats{}

	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dest  *int64
	}{
		{&models.User{}, "", nil, &stats.Users},
		{&models.Order{}, "", nil, &stats.Orders},
		{&models.Page{}, "", nil, &stats.Pages},
		{&models.Review{}, "status = ?", []interface{}{models.ReviewStatusPending}, &stats.PendingReviews},
		{&models.Review{}, "", nil, &stats.TotalReviews},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalEarnings).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.User{}).
		Select("COALESCE(SUM(credits), 0)").
		Scan(&stats.CreditsInCirculation).Error; err != nil {
		return nil, err
	}

	if err := db.Table("pages").
		Select("pages.id, pages.slug, pages.is_paid, pages.created_at, templates.name AS template_name").
		Joins("JOIN templates ON templates.id = pages.template_id").
		Order("pages.created_at DESC").
		Limit(10).
		Scan(&stats.RecentPages).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// DailyEarnings ödenmiş siparişlerin gün bazında toplamı (boş günler dahil değil).
func (r *StatsRepository) DailyEarnings(ctx context.Context, since time.Time) ([]models.DailyEarning, error) {
	var rows []models.DailyEarning
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("date_trunc('day', created_at) AS day, COALESCE(SUM(amount), 0) AS amount").
		Where("status = ? AND created_at >= ?", models.OrderStatusPaid, since).
		Group("day").
		Order("day").
		Scan(&rows).Error
	return rows, err
}
