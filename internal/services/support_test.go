package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/config"
	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/utils"
)

func TestProductLocks_SerializeSameProduct(t *testing.T) {
	locks := NewProductLocks()
	id := uuid.New()

	var mu sync.Mutex
	inside := 0
	maxInside := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(id)
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
	assert.Empty(t, locks.locks)
}

func TestProductLocks_IndependentProducts(t *testing.T) {
	locks := NewProductLocks()

	unlockA := locks.Lock(uuid.New())
	done := make(chan struct{})
	go func() {
		unlock := locks.Lock(uuid.New())
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another product blocked")
	}
	unlockA()
}

func TestClock_TodayUsesLocation(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:30 UTC on the 12th is still the 11th in São Paulo
	c := Clock{Now: func() time.Time { return time.Date(2024, 3, 12, 1, 30, 0, 0, time.UTC) }, Location: saoPaulo}
	assert.Equal(t, date(2024, 3, 11), c.Today())
}

func TestStorageService_FileURL(t *testing.T) {
	disabled, err := NewStorageService(config.AWSConfig{S3Bucket: "atelier"})
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())
	assert.Empty(t, disabled.FileURL(models.ProductFile{StorageKey: "products/a.png"}))

	enabled, err := NewStorageService(config.AWSConfig{
		Region:          "sa-east-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		S3Bucket:        "atelier",
		PresignTTL:      time.Minute,
	})
	require.NoError(t, err)

	url := enabled.FileURL(models.ProductFile{StorageKey: "products/a.png"})
	assert.True(t, strings.Contains(url, "atelier"), url)
	assert.Contains(t, url, "products/a.png")
	assert.Contains(t, url, "X-Amz-Signature")
	assert.Empty(t, enabled.FileURL(models.ProductFile{}))
}

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	f := newFixture(t)
	f.productWithPipeline(t, "P01", models.PriorityMedium)
	f.productWithPipeline(t, "P02", models.PriorityMedium)

	params := utils.PaginationParams{Page: 1, Limit: 1}
	list, total, err := f.notifications.List(context.Background(), params, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationPipelineCreated, list[0].Type)

	require.NoError(t, f.notifications.MarkRead(context.Background(), list[0].ID))
	_, unread, err := f.notifications.List(context.Background(), params, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	assert.ErrorIs(t, f.notifications.MarkRead(context.Background(), uuid.New()), ErrNotificationNotFound)
}

func TestNotificationService_MarkReadLookupFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Callback().Query().Before("gorm:query").Register("test:fail_notifications", func(db *gorm.DB) {
		if db.Statement.Table == "notifications" {
			db.AddError(errors.New("connection reset"))
		}
	}))

	err := f.notifications.MarkRead(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotificationNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}
