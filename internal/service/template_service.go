package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TemplateService struct {
	templates TemplateStore
	logger    *zap.Logger
}

func NewTemplateService(templates TemplateStore, logger *zap.Logger) *TemplateService {
	return &TemplateService{
		templates: templates,
		logger:    logger.Named("template"),
	}
}

func (s *TemplateService) ListPublic(ctx context.Context) ([]models.Template, error) {
	return s.templates.ListPublic(ctx)
}

func (s *TemplateService) ListAll(ctx context.Context) ([]models.Template, error) {
	return s.templates.ListAll(ctx)
}

// GetPublic gizli şablonları yokmuş gibi gösterir.
func (s *TemplateService) GetPublic(ctx context.Context, id uint) (*models.Template, error) {
	tmpl, err := s.templates.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrTemplateNotFound)
	}
	if !tmpl.IsPublic {
		return nil, ErrTemplateNotFound
	}
	return tmpl, nil
}

func (s *TemplateService) Create(ctx context.Context, req models.TemplateRequest) (*models.Template, error) {
	tmpl := &models.Template{IsPublic: true}
	if err := applyTemplateRequest(tmpl, req); err != nil {
		return nil, err
	}

	if err := s.templates.Create(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info("template created", zap.Uint("template_id", tmpl.ID), zap.String("component", tmpl.ComponentKey))
	return tmpl, nil
}

func (s *TemplateService) Update(ctx context.Context, id uint, req models.TemplateRequest) (*models.Template, error) {
	tmpl, err := s.templates.GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrTemplateNotFound)
	}

	if err := applyTemplateRequest(tmpl, req); err != nil {
		return nil, err
	}

	if err := s.templates.Update(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info("template updated", zap.Uint("template_id", tmpl.ID))
	return tmpl, nil
}

// Delete sayfası olan şablonu silmez.
func (s *TemplateService) Delete(ctx context.Context, id uint) error {
	count, err := s.templates.CountPages(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrTemplateInUse
	}

	// sayım ile silme arasında eklenen sayfa FK'ye takılır
	if err := s.templates.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrTemplateInUse
		}
		return notFound(err, ErrTemplateNotFound)
	}

	s.logger.Info("template deleted", zap.Uint("template_id", id))
	return nil
}

func applyTemplateRequest(tmpl *models.Template, req models.TemplateRequest) error {
	if req.SalePrice != nil && *req.SalePrice > req.Price {
		return utils.NewFieldError("sale_price", "must not exceed price")
	}

	tmpl.Name = strings.TrimSpace(req.Name)
	tmpl.Description = strings.TrimSpace(req.Description)
	tmpl.Price = req.Price
	tmpl.SalePrice = req.SalePrice
	tmpl.ComponentKey = req.ComponentKey
	tmpl.Tags = utils.SplitTags(req.Tags)

	// Boş thumbnail mevcut görseli korur
	if thumb := strings.TrimSpace(req.Thumbnail); thumb != "" {
		tmpl.Thumbnail = thumb
	}
	if req.IsPublic != nil {
		tmpl.IsPublic = *req.IsPublic
	}
	if req.Fields != nil {
		fields, err := json.Marshal(req.Fields)
		if err != nil {
			return utils.NewFieldError("fields", "must be a JSON object")
		}
		tmpl.Fields = datatypes.JSON(fields)
	}
	return nil
}
