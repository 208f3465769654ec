package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotifyBookingRequest  NotificationType = "booking_request"
	NotifyInquiry         NotificationType = "inquiry"
	NotifyInquiryResponse NotificationType = "inquiry_response"
)

// BookingNotificationType returns the booking_<status> tag for a transition
func BookingNotificationType(status BookingStatus) NotificationType {
	return NotificationType("booking_" + string(status))
}

// Notification is a message addressed to one user
type Notification struct {
	ID        uuid.UUID        `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    uuid.UUID        `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Type      NotificationType `json:"notification_type" gorm:"column:notification_type;size:50;not null"`
	Title     string           `json:"title" gorm:"size:255"`
	Message   string           `json:"message" gorm:"type:text"`
	Data      datatypes.JSON   `json:"data"`
	IsRead    bool             `json:"is_read" gorm:"index"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NotificationFeed is the unread count plus the most recent notifications
type NotificationFeed struct {
	UnreadCount   int64          `json:"unread_count"`
	Notifications []Notification `json:"notifications"`
}
