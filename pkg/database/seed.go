package database

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/sefazor/omnitemplates-backend/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:embed seed/templates.yaml
var seedTemplates []byte

type templateSeed struct {
	Name         string                 `yaml:"name"`
	ComponentKey string                 `yaml:"component_key"`
	Description  string                 `yaml:"description"`
	Price        int                    `yaml:"price"`
	SalePrice    *int                   `yaml:"sale_price"`
	Thumbnail    string                 `yaml:"thumbnail"`
	Tags         []string               `yaml:"tags"`
	Fields       map[string]interface{} `yaml:"fields"`
}

// LoadTemplateSeeds gömülü kataloğu okur.
func LoadTemplateSeeds() ([]models.Template, error) {
	var seeds []templateSeed
	if err := yaml.Unmarshal(seedTemplates, &seeds); err != nil {
		return nil, fmt.Errorf("failed to parse template seeds: %w", err)
	}

	templates := make([]models.Template, 0, len(seeds))
	for _, s := range seeds {
		if _, ok := models.TemplateComponents[s.ComponentKey]; !ok {
			return nil, fmt.Errorf("seed %q uses unknown component %q", s.Name, s.ComponentKey)
		}

		fields, err := json.Marshal(s.Fields)
		if err != nil {
			return nil, err
		}

		tags := s.Tags
		if tags == nil {
			tags = []string{}
		}

		templates = append(templates, models.Template{
			Name:         s.Name,
			ComponentKey: s.ComponentKey,
			Description:  s.Description,
			Price:        s.Price,
			SalePrice:    s.SalePrice,
			Thumbnail:    s.Thumbnail,
			Tags:         tags,
			Fields:       datatypes.JSON(fields),
			IsPublic:     true,
		})
	}
	return templates, nil
}

// SeedTemplates bileşen anahtarı veritabanında olmayan şablonları ekler (eğer yoksa).
func SeedTemplates(db *gorm.DB, log *zap.Logger) error {
	templates, err := LoadTemplateSeeds()
	if err != nil {
		return err
	}

	for _, tmpl := range templates {
		var count int64
		if err := db.Model(&models.Template{}).Where("component_key = ?", tmpl.ComponentKey).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&tmpl).Error; err != nil {
			return fmt.Errorf("failed to add template %s: %w", tmpl.Name, err)
		}
		log.Info("seeded template", zap.String("component", tmpl.ComponentKey), zap.Uint("id", tmpl.ID))
	}

	return nil
}
