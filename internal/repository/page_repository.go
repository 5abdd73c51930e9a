package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"gorm.io/gorm"
)

type PageRepository struct {
	db *gorm.DB
}

func NewPageRepository(db *gorm.DB) *PageRepository {
	return &PageRepository{
		db: db,
	}
}

func (r *PageRepository) Create(ctx context.Context, tx *gorm.DB, page *models.Page) error {
	return conn(ctx, r.db, tx).Omit("Template").Create(page).Error
}

func (r *PageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).Preload("Template").First(&page, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *PageRepository) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).Preload("Template").Where("slug = ?", slug).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// LockByID sayfayı ve şablonunu transaction içinde kilitli okur.
func (r *PageRepository) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Page, error) {
	db := conn(ctx, r.db, tx)

	var page models.Page
	if err := db.Clauses(forUpdate()).First(&page, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var tmpl models.Template
	if err := db.First(&tmpl, page.TemplateID).Error; err != nil {
		return nil, err
	}
	page.Template = &tmpl
	return &page, nil
}

func (r *PageRepository) MarkPaid(ctx context.Context, tx *gorm.DB, id uuid.UUID, userID *uint) error {
	updates := map[string]interface{}{"is_paid": true}
	if userID != nil {
		updates["user_id"] = *userID
	}
	res := conn(ctx, r.db, tx).Model(&models.Page{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PageRepository) ListByUser(ctx context.Context, userID uint) ([]models.Page, error) {
	var pages []models.Page
	err := r.db.WithContext(ctx).
		Preload("Template").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&pages).Error
	return pages, err
}

func (r *PageRepository) ListExpired(ctx context.Context, before time.Time, limit int) ([]models.Page, error) {
	var pages []models.Page
	err := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Order("expires_at ASC").
		Limit(limit).
		Find(&pages).Error
	return pages, err
}

func (r *PageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Page{}, "id = ?", id).Error
}
