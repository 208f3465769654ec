package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InquiryStatus string

const (
	InquiryNew       InquiryStatus = "new"
	InquiryContacted InquiryStatus = "contacted"
	InquiryResponded InquiryStatus = "responded"
	InquiryClosed    InquiryStatus = "closed"
)

// Inquiry is a free-text question from a student about a property
type Inquiry struct {
	ID         uuid.UUID     `json:"id" gorm:"type:varchar(36);primaryKey"`
	PropertyID uuid.UUID     `json:"property_id" gorm:"type:varchar(36);index;not null"`
	Property   *Property     `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	StudentID  uuid.UUID     `json:"student_id" gorm:"type:varchar(36);index;not null"`
	Message    string        `json:"message" gorm:"type:text;not null"`
	Status     InquiryStatus `json:"status" gorm:"size:20;index;not null"`
	Version    int64         `json:"version" gorm:"not null"`
	CreatedAt  time.Time     `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type InquirySummary struct {
	Inquiries      []Inquiry `json:"inquiries"`
	NewCount       int       `json:"new_count"`
	RespondedCount int       `json:"responded_count"`
}
