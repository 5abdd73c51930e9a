package repository

import (
	"context"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{
		db: db,
	}
}

func (r *TemplateRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Template, error) {
	var tmpl models.Template
	if err := conn(ctx, r.db, tx).First(&tmpl, id).Error; err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *TemplateRepository) ListPublic(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("created_at DESC, id DESC").
		Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) ListAll(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) Create(ctx context.Context, tmpl *models.Template) error {
	return r.db.WithContext(ctx).Create(tmpl).Error
}

func (r *TemplateRepository) Update(ctx context.Context, tmpl *models.Template) error {
	return r.db.WithContext(ctx).Save(tmpl).Error
}

func (r *TemplateRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Template{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TemplateRepository) CountPages(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Page{}).Where("template_id = ?", id).Count(&count).Error
	return count, err
}
