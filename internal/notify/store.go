package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"studentnest/internal/apperror"
	"studentnest/internal/models"
)

const (
	// FeedSize is the number of recent notifications included in a feed
	FeedSize = 5

	DefaultListSize = 50
	MaxListSize     = 100
)

// Store reads a user's stored notifications and tracks read state
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewStore(db *gorm.DB, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{db: db, logger: logger}
}

// List returns the user's notifications, newest first. A limit of zero or
// less means DefaultListSize; larger limits are capped at MaxListSize.
func (s *Store) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	switch {
	case limit <= 0:
		limit = DefaultListSize
	case limit > MaxListSize:
		limit = MaxListSize
	}
	query = query.Limit(limit)

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *Store) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// Feed returns the unread count and the most recent notifications
func (s *Store) Feed(ctx context.Context, userID uuid.UUID) (*models.NotificationFeed, error) {
	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.List(ctx, userID, FeedSize)
	if err != nil {
		return nil, err
	}
	return &models.NotificationFeed{UnreadCount: unread, Notifications: recent}, nil
}

// MarkRead marks one notification as read. Notifications addressed to
// someone else are reported as not found.
func (s *Store) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("notification %s not found", id)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read and
// returns how many changed
func (s *Store) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"count":   result.RowsAffected,
	}).Debug("Marked notifications read")
	return result.RowsAffected, nil
}
