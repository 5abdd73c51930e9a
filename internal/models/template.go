package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Components the front end knows how to render, keyed by Template.ComponentKey.
var TemplateComponents = map[string]string{
	"valentine":   "Valentine",
	"anniversary": "Anniversary",
	"proposal":    "Proposal",
	"birthday":    "Birthday",
}

type Template struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Description  string         `json:"description"`
	Price        int            `json:"price" gorm:"not null;default:0"`
	SalePrice    *int           `json:"sale_price,omitempty"`
	Thumbnail    string         `json:"thumbnail"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	ComponentKey string         `json:"component_key" gorm:"not null"`
	Fields       datatypes.JSON `json:"fields,omitempty"`
	IsPublic     bool           `json:"is_public" gorm:"not null;default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// EffectivePrice sale price'ı, tanımlı ve sıfırdan büyükse, normal fiyata tercih eder.
func (t *Template) EffectivePrice() int {
	if t.SalePrice != nil && *t.SalePrice > 0 {
		return *t.SalePrice
	}
	return t.Price
}

func (t *Template) IsFree() bool {
	return t.EffectivePrice() <= 0
}

type TemplateRequest struct {
	Name         string                 `json:"name" validate:"required,max=120"`
	Description  string                 `json:"description" validate:"max=2000"`
	Price        int                    `json:"price" validate:"min=0"`
	SalePrice    *int                   `json:"sale_price" validate:"omitempty,min=0"`
	Thumbnail    string                 `json:"thumbnail"`
	Tags         string                 `json:"tags"`
	ComponentKey string                 `json:"component_key" validate:"required,template_component"`
	Fields       map[string]interface{} `json:"fields"`
	IsPublic     *bool                  `json:"is_public"`
}

type UploadURLRequest struct {
	Filename    string `json:"filename" validate:"required,max=200"`
	ContentType string `json:"content_type" validate:"required,supported_image"`
}

type UploadURLResponse struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	PublicURL string `json:"public_url"`
	ExpiresIn int    `json:"expires_in"`
}
