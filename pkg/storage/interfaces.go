package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

type StorageService interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
}
