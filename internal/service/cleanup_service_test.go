package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func TestExtractAssetKeys(t *testing.T) {
	raw := datatypes.JSON(`{
		"recipient_name": "Ada",
		"cover": "uploads/cover.jpg",
		"photos": [
			{"key": "uploads/a.jpg", "url": "https://cdn.example.com/uploads/a.jpg"},
			{"url": "https://images.example.com/external.png"},
			"uploads/b.png",
			"uploads/a.jpg",
			"templates/thumb.png"
		]
	}`)

	keys := ExtractAssetKeys(raw)
	assert.ElementsMatch(t, []string{"uploads/a.jpg", "uploads/b.png", "uploads/cover.jpg"}, keys)

	assert.Nil(t, ExtractAssetKeys(nil))
	assert.Nil(t, ExtractAssetKeys(datatypes.JSON(`not json`)))
}

func TestCleanupRun(t *testing.T) {
	db := newFakeDB()
	tmpl := db.addTemplate("Valentine", 0, nil)
	store := newFakeStorage()
	store.failOnKey["uploads/broken.jpg"] = errors.New("r2 unavailable")
	uploads := NewUploadService(store, "https://cdn.example.com", zap.NewNop())

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	expired := models.Page{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		Slug:       "old",
		Content:    datatypes.JSON(`{"photos":[{"key":"uploads/one.jpg"},{"key":"uploads/broken.jpg"}]}`),
		ExpiresAt:  now.Add(-time.Hour),
	}
	live := models.Page{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		Slug:       "new",
		Content:    datatypes.JSON(`{"photos":[{"key":"uploads/keep.jpg"}]}`),
		ExpiresAt:  now.Add(time.Hour),
	}
	db.pages[expired.ID] = expired
	db.pages[live.ID] = live

	svc := NewCleanupService(fakePages{db}, uploads, zap.NewNop())
	svc.now = fixedClock(now)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.CleanupResult{PagesDeleted: 1, AssetsDeleted: 1, AssetErrors: 1}, result)

	assert.NotContains(t, db.pages, expired.ID)
	assert.Contains(t, db.pages, live.ID)
	assert.Equal(t, []string{"uploads/one.jpg"}, store.deleted)
}

func TestCleanupRunProcessesBatches(t *testing.T) {
	db := newFakeDB()
	tmpl := db.addTemplate("Valentine", 0, nil)
	now := time.Now()
	for i := 0; i < cleanupBatchSize+5; i++ {
		p := models.Page{ID: uuid.New(), TemplateID: tmpl.ID, Slug: uuid.NewString(), ExpiresAt: now.Add(-time.Minute)}
		db.pages[p.ID] = p
	}

	svc := NewCleanupService(fakePages{db}, newFakeStorage(), zap.NewNop())
	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cleanupBatchSize+5, result.PagesDeleted)
	assert.Empty(t, db.pages)
}
