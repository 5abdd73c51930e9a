package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/sefazor/omnitemplates-backend/pkg/storage"
	"github.com/sefazor/omnitemplates-backend/pkg/utils"
	"go.uber.org/zap"
)

const (
	UploadPrefix   = "uploads/"
	TemplatePrefix = "templates/"

	PresignExpiry = time.Hour
	MaxUploadSize = 10 << 20 // 10MB
)

type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type UploadService struct {
	storage      storage.StorageService
	assetBaseURL string
	now          func() time.Time
	logger       *zap.Logger
}

func NewUploadService(storage storage.StorageService, assetBaseURL string, logger *zap.Logger) *UploadService {
	return &UploadService{
		storage:      storage,
		assetBaseURL: strings.TrimSuffix(assetBaseURL, "/"),
		now:          time.Now,
		logger:       logger.Named("upload"),
	}
}

// PublicURL object key'in dışarıdan erişilebilir adresi
func (s *UploadService) PublicURL(key string) string {
	return s.assetBaseURL + "/" + strings.TrimPrefix(key, "/")
}

// uploads/<unixms>-<uuid>-<filename>
func (s *UploadService) uploadKey(filename string) string {
	return fmt.Sprintf("%s%d-%s-%s", UploadPrefix, s.now().UnixMilli(), uuid.NewString(), utils.SanitizeFilename(filename))
}

// templates/<unixms>-<filename>
func (s *UploadService) templateKey(filename string) string {
	return fmt.Sprintf("%s%d-%s", TemplatePrefix, s.now().UnixMilli(), utils.SanitizeFilename(filename))
}

func (s *UploadService) PresignUpload(ctx context.Context, req models.UploadURLRequest) (*models.UploadURLResponse, error) {
	return s.presign(ctx, s.uploadKey(req.Filename), req.ContentType)
}

func (s *UploadService) PresignTemplateThumbnail(ctx context.Context, req models.UploadURLRequest) (*models.UploadURLResponse, error) {
	return s.presign(ctx, s.templateKey(req.Filename), req.ContentType)
}

func (s *UploadService) presign(ctx context.Context, key, contentType string) (*models.UploadURLResponse, error) {
	if !utils.SupportedImageTypes[contentType] {
		return nil, ErrUnsupportedFile
	}

	url, err := s.storage.PresignPut(ctx, key, contentType, PresignExpiry)
	if err != nil {
		return nil, err
	}

	return &models.UploadURLResponse{
		URL:       url,
		Key:       key,
		PublicURL: s.PublicURL(key),
		ExpiresIn: int(PresignExpiry.Seconds()),
	}, nil
}

// Upload dosyayı sunucu üzerinden storage'a aktarır.
func (s *UploadService) Upload(ctx context.Context, filename, contentType string, size int64, src io.Reader) (*UploadResult, error) {
	if !utils.SupportedImageTypes[contentType] {
		return nil, ErrUnsupportedFile
	}
	if size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	key := s.uploadKey(filename)
	if err := s.storage.Upload(ctx, key, io.LimitReader(src, MaxUploadSize+1), contentType); err != nil {
		s.logger.Error("upload failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	return &UploadResult{Key: key, URL: s.PublicURL(key)}, nil
}

// Open yalnızca bizim yazdığımız prefix'ler altındaki nesneleri açar.
func (s *UploadService) Open(ctx context.Context, key string) (*storage.Object, error) {
	if !IsManagedKey(key) {
		return nil, ErrObjectNotFound
	}
	return s.storage.Get(ctx, key)
}

func (s *UploadService) Delete(ctx context.Context, key string) error {
	if !IsManagedKey(key) {
		return ErrObjectNotFound
	}
	return s.storage.Delete(ctx, key)
}

func IsManagedKey(key string) bool {
	if strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, UploadPrefix) || strings.HasPrefix(key, TemplatePrefix)
}
