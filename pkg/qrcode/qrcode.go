package qrcode

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	MinSize     = 128
	MaxSize     = 1024
	DefaultSize = 256
)

// QRService paylaşım linkleri için QR kod üretir
type QRService struct {
	baseURL string // örn: "https://omnitemplates.app/p/"
}

func NewQRService(baseURL string) *QRService {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &QRService{
		baseURL: baseURL,
	}
}

func (s *QRService) URL(slug string) string {
	return s.baseURL + slug
}

// GenerateQRCode slug için PNG formatında QR kod üretir
func (s *QRService) GenerateQRCode(slug string, size int) ([]byte, error) {
	if size < MinSize || size > MaxSize {
		size = DefaultSize
	}

	png, err := qrcode.Encode(s.URL(slug), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}

	return png, nil
}
