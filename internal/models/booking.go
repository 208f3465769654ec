package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Booking is one student's reservation request against one property
type Booking struct {
	ID         uuid.UUID `json:"id" gorm:"type:varchar(36);primaryKey"`
	StudentID  uuid.UUID `json:"student_id" gorm:"type:varchar(36);index;not null"`
	PropertyID uuid.UUID `json:"property_id" gorm:"type:varchar(36);index;not null"`
	Property   *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	// Copied from the property when the booking is created
	LandlordID uuid.UUID `json:"landlord_id" gorm:"type:varchar(36);index;not null"`

	CheckInDate         time.Time `json:"check_in_date"`
	CheckOutDate        time.Time `json:"check_out_date"`
	NumberOfOccupants   int       `json:"number_of_occupants"`
	DurationMonths      int       `json:"duration_months"`
	TotalPrice          float64   `json:"total_price"`
	SecurityDepositPaid float64   `json:"security_deposit_paid"`

	StudentMessage        string `json:"student_message" gorm:"type:text"`
	SpecialRequests       string `json:"special_requests" gorm:"type:text"`
	EmergencyContactName  string `json:"emergency_contact_name" gorm:"size:255"`
	EmergencyContactPhone string `json:"emergency_contact_phone" gorm:"size:20"`

	Status        BookingStatus `json:"status" gorm:"size:20;index;not null"`
	LandlordNotes string        `json:"landlord_notes,omitempty" gorm:"type:text"`
	AdminNotes    string        `json:"admin_notes,omitempty" gorm:"type:text"`

	BookedAt    time.Time  `json:"booked_at" gorm:"index"`
	ApprovedAt  *time.Time `json:"approved_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	PaymentStatus string `json:"payment_status" gorm:"size:20"`
	PaymentID     string `json:"payment_id,omitempty" gorm:"size:255"`

	// Incremented on every status change; guards against lost updates
	Version   int64     `json:"version" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BookingSummary is a role-scoped booking list with per-status counts
type BookingSummary struct {
	Bookings       []Booking `json:"bookings"`
	PendingCount   int       `json:"pending_count"`
	ApprovedCount  int       `json:"approved_count"`
	CompletedCount int       `json:"completed_count"`
}

// BookingView is a booking together with what the viewer may do next
type BookingView struct {
	Booking     *Booking `json:"booking"`
	CanApprove  bool     `json:"can_approve"`
	CanCancel   bool     `json:"can_cancel"`
	CanComplete bool     `json:"can_complete"`
}
