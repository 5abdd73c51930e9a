package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sefazor/omnitemplates-backend/internal/metrics"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const cleanupBatchSize = 100

// AssetDeleter depodan nesne siler.
type AssetDeleter interface {
	Delete(ctx context.Context, key string) error
}

type CleanupService struct {
	pages  PageStore
	assets AssetDeleter
	now    func() time.Time
	logger *zap.Logger
}

func NewCleanupService(pages PageStore, assets AssetDeleter, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		pages:  pages,
		assets: assets,
		now:    time.Now,
		logger: logger.Named("cleanup"),
	}
}

// Run süresi geçmiş sayfaları ve onlara ait yüklenmiş dosyaları siler.
func (s *CleanupService) Run(ctx context.Context) (*models.CleanupResult, error) {
	result := &models.CleanupResult{}
	cutoff := s.now()

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pages, err := s.pages.ListExpired(ctx, cutoff, cleanupBatchSize)
		if err != nil {
			return result, fmt.Errorf("list expired pages: %w", err)
		}
		if len(pages) == 0 {
			break
		}

		for _, page := range pages {
			for _, key := range ExtractAssetKeys(page.Content) {
				if err := s.assets.Delete(ctx, key); err != nil {
					result.AssetErrors++
					s.logger.Warn("asset delete failed",
						zap.String("page_id", page.ID.String()),
						zap.String("key", key),
						zap.Error(err),
					)
					continue
				}
				result.AssetsDeleted++
			}

			if err := s.pages.Delete(ctx, page.ID); err != nil {
				return result, fmt.Errorf("delete page %s: %w", page.ID, err)
			}
			result.PagesDeleted++
			metrics.CleanupPagesDeleted.Inc()
		}

		if len(pages) < cleanupBatchSize {
			break
		}
	}

	s.logger.Info("cleanup finished",
		zap.Int("pages_deleted", result.PagesDeleted),
		zap.Int("assets_deleted", result.AssetsDeleted),
		zap.Int("asset_errors", result.AssetErrors),
	)
	return result, nil
}

// ExtractAssetKeys sayfa içeriğindeki uploads/ anahtarlarını toplar.
// photos[].key, düz string fotoğraflar ve üst seviyedeki string değerler taranır.
func ExtractAssetKeys(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}

	var content map[string]interface{}
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var keys []string
	add := func(v interface{}) {
		key, ok := v.(string)
		if !ok || !strings.HasPrefix(key, UploadPrefix) || seen[key] {
			return
		}
		seen[key] = true
		keys = append(keys, key)
	}

	if photos, ok := content["photos"].([]interface{}); ok {
		for _, photo := range photos {
			switch p := photo.(type) {
			case string:
				add(p)
			case map[string]interface{}:
				add(p["key"])
			}
		}
	}
	for _, v := range content {
		add(v)
	}
	return keys
}
