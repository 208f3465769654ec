// Package lifecycle owns the status changes of bookings and inquiries.
// Every operation authorizes the actor before touching storage, applies the
// status change in a single versioned update and notifies the other party
// after the change is stored.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"studentnest/internal/apperror"
	"studentnest/internal/auth"
	"studentnest/internal/models"
	"studentnest/internal/notify"
)

type Manager struct {
	db       *gorm.DB
	notifier notify.Notifier
	policy   auth.Policy
	logger   *logrus.Logger
	validate *validator.Validate
	now      func() time.Time

	// strict rejects transitions outside the forward graph below
	strict bool
}

func NewManager(db *gorm.DB, notifier notify.Notifier, policy auth.Policy, strict bool, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		db:       db,
		notifier: notifier,
		policy:   policy,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
		strict:   strict,
	}
}

// activeProperty loads a listing that can still be booked or asked about
func (m *Manager) activeProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	err := m.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("property %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	return &property, nil
}

// emit hands a notification to the notifier. Failures are logged and never
// undo the change that triggered them.
func (m *Manager) emit(ctx context.Context, n *models.Notification) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(ctx, n); err != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":           n.UserID,
			"notification_type": n.Type,
		}).Error("Failed to emit notification")
	}
}

func payload(fields map[string]string) datatypes.JSON {
	data, _ := json.Marshal(fields)
	return datatypes.JSON(data)
}

func displayName(actor auth.Actor) string {
	if actor.Name != "" {
		return actor.Name
	}
	return "A student"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
