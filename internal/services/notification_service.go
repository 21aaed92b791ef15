// internal/services/notification_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/utils"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService persists the toast feed written after each workflow mutation.
type NotificationService struct {
	db   *gorm.DB
	lang string
}

type NotificationRequest struct {
	Type        models.NotificationType
	TitleKey    string
	MessageKey  string
	MessageArgs []interface{}
	ProductID   *uuid.UUID
	StageName   string
	Data        map[string]interface{}
}

func NewNotificationService(db *gorm.DB, lang string) *NotificationService {
	if lang == "" {
		lang = i18n.DefaultLang()
	}
	return &NotificationService{
		db:   db,
		lang: lang,
	}
}

// Record writes a notification using tx, so it commits or rolls back with the
// mutation it describes. A nil tx uses the service's own handle.
func (s *NotificationService) Record(tx *gorm.DB, req NotificationRequest) error {
	if tx == nil {
		tx = s.db
	}

	notification := &models.Notification{
		Type:      req.Type,
		Title:     i18n.T(s.lang, req.TitleKey),
		Message:   i18n.T(s.lang, req.MessageKey, req.MessageArgs...),
		ProductID: req.ProductID,
		StageName: req.StageName,
		Data:      models.JSONB(req.Data),
	}

	if err := tx.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"type":       req.Type,
		"product_id": req.ProductID,
		"stage":      req.StageName,
	}).Debug("Notification recorded")
	return nil
}

func (s *NotificationService) List(ctx context.Context, params utils.PaginationParams, unreadOnly bool) ([]models.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{})
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", now)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up notification: %w", err)
		}
		if count == 0 {
			return ErrNotificationNotFound
		}
	}
	return nil
}
