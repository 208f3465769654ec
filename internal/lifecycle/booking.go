package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studentnest/internal/apperror"
	"studentnest/internal/auth"
	"studentnest/internal/models"
)

// BookingRequest is what a student submits when booking a listing
type BookingRequest struct {
	CheckInDate           time.Time `json:"check_in_date" validate:"required"`
	CheckOutDate          time.Time `json:"check_out_date" validate:"required,gtfield=CheckInDate"`
	NumberOfOccupants     int       `json:"number_of_occupants" validate:"gte=1,lte=20"`
	StudentMessage        string    `json:"student_message" validate:"max=2000"`
	SpecialRequests       string    `json:"special_requests" validate:"max=2000"`
	EmergencyContactName  string    `json:"emergency_contact_name" validate:"max=255"`
	EmergencyContactPhone string    `json:"emergency_contact_phone" validate:"max=20"`
}

var bookingTargets = map[models.BookingStatus]bool{
	models.BookingApproved:  true,
	models.BookingRejected:  true,
	models.BookingCancelled: true,
	models.BookingCompleted: true,
}

// Forward graph enforced in strict mode
var bookingGraph = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:  {models.BookingApproved, models.BookingRejected, models.BookingCancelled},
	models.BookingApproved: {models.BookingCancelled, models.BookingCompleted},
}

// CreateBooking records a pending booking by the acting student against an
// active listing and notifies the landlord
func (m *Manager) CreateBooking(ctx context.Context, actor auth.Actor, propertyID uuid.UUID, req BookingRequest) (*models.Booking, error) {
	if !m.policy.CanActAsStudent(actor) {
		return nil, apperror.PermissionDenied("only students can book a property")
	}
	if err := m.validate.Struct(req); err != nil {
		return nil, apperror.FromValidator(err)
	}

	property, err := m.activeProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.MaximumOccupants > 0 && req.NumberOfOccupants > property.MaximumOccupants {
		return nil, apperror.Validation("property allows at most %d occupants", property.MaximumOccupants)
	}

	months := DurationMonths(req.CheckInDate, req.CheckOutDate)
	booking := &models.Booking{
		StudentID:             actor.UserID,
		PropertyID:            property.ID,
		LandlordID:            property.LandlordID,
		CheckInDate:           req.CheckInDate,
		CheckOutDate:          req.CheckOutDate,
		NumberOfOccupants:     req.NumberOfOccupants,
		DurationMonths:        months,
		TotalPrice:            property.PricePerMonth * float64(months),
		StudentMessage:        req.StudentMessage,
		SpecialRequests:       req.SpecialRequests,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		Status:                models.BookingPending,
		BookedAt:              m.now(),
		PaymentStatus:         "pending",
		Version:               1,
	}

	if err := m.db.WithContext(ctx).Omit(clause.Associations).Create(booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	booking.Property = property

	m.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"property_id": property.ID,
		"months":      months,
	}).Info("Booking requested")

	m.emit(ctx, &models.Notification{
		UserID:  property.LandlordID,
		Type:    models.NotifyBookingRequest,
		Title:   "New Booking Request",
		Message: fmt.Sprintf("%s has requested to book your property: %s", displayName(actor), property.Title),
		Data: payload(map[string]string{
			"booking_id":  booking.ID.String(),
			"property_id": property.ID.String(),
		}),
	})

	return booking, nil
}

// TransitionBooking moves a booking to target on behalf of its landlord. The
// matching lifecycle timestamp is stamped with the current time on every
// call and the other two are cleared, so the stamped field always agrees with
// the status. Rejection has no timestamp.
func (m *Manager) TransitionBooking(ctx context.Context, actor auth.Actor, bookingID uuid.UUID, target models.BookingStatus) (*models.Booking, error) {
	booking, err := m.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !m.policy.CanManageBooking(actor, booking) {
		return nil, apperror.PermissionDenied("not allowed to update booking %s", bookingID)
	}
	if !bookingTargets[target] {
		return nil, apperror.InvalidTransition("%q is not a valid booking status", target)
	}
	if m.strict && !allowed(bookingGraph[booking.Status], target) {
		return nil, apperror.InvalidTransition("booking cannot move from %s to %s", booking.Status, target)
	}

	now := m.now()
	var approvedAt, cancelledAt, completedAt *time.Time
	switch target {
	case models.BookingApproved:
		approvedAt = &now
	case models.BookingCancelled:
		cancelledAt = &now
	case models.BookingCompleted:
		completedAt = &now
	}

	result := m.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND version = ?", booking.ID, booking.Version).
		Updates(map[string]interface{}{
			"status":       target,
			"approved_at":  approvedAt,
			"cancelled_at": cancelledAt,
			"completed_at": completedAt,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.Conflict("booking %s was modified concurrently", booking.ID)
	}

	previous := booking.Status
	booking.Status = target
	booking.ApprovedAt = approvedAt
	booking.CancelledAt = cancelledAt
	booking.CompletedAt = completedAt
	booking.Version++
	booking.UpdatedAt = now

	m.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"from":       previous,
		"to":         target,
		"actor":      actor.UserID,
	}).Info("Booking status updated")

	m.emit(ctx, &models.Notification{
		UserID:  booking.StudentID,
		Type:    models.BookingNotificationType(target),
		Title:   "Booking " + capitalize(string(target)),
		Message: fmt.Sprintf("Your booking for %s has been %s.", booking.Property.Title, target),
		Data:    payload(map[string]string{"booking_id": booking.ID.String()}),
	})

	return booking, nil
}

// ListBookings returns the actor's bookings, newest first, with per-status
// counts. Students see their own bookings and landlords the bookings on
// their listings; anyone else gets an empty list.
func (m *Manager) ListBookings(ctx context.Context, actor auth.Actor) (*models.BookingSummary, error) {
	summary := &models.BookingSummary{Bookings: []models.Booking{}}

	query := m.db.WithContext(ctx).Preload("Property").Order("booked_at DESC").Order("id DESC")
	switch {
	case actor.IsStudent():
		query = query.Where("student_id = ?", actor.UserID)
	case actor.IsLandlord():
		query = query.Where("landlord_id = ?", actor.UserID)
	default:
		return summary, nil
	}

	if err := query.Find(&summary.Bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	for _, b := range summary.Bookings {
		switch b.Status {
		case models.BookingPending:
			summary.PendingCount++
		case models.BookingApproved:
			summary.ApprovedCount++
		case models.BookingCompleted:
			summary.CompletedCount++
		}
	}
	return summary, nil
}

// GetBooking returns a booking to one of its parties together with the
// transitions the actor may trigger from its current status
func (m *Manager) GetBooking(ctx context.Context, actor auth.Actor, bookingID uuid.UUID) (*models.BookingView, error) {
	booking, err := m.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !m.policy.CanViewBooking(actor, booking) {
		return nil, apperror.PermissionDenied("not allowed to view booking %s", bookingID)
	}

	manages := m.policy.CanManageBooking(actor, booking)
	return &models.BookingView{
		Booking:     booking,
		CanApprove:  manages && booking.Status == models.BookingPending,
		CanCancel:   manages && booking.Status == models.BookingPending,
		CanComplete: manages && booking.Status == models.BookingApproved,
	}, nil
}

func (m *Manager) loadBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := m.db.WithContext(ctx).Preload("Property").First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("booking %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &booking, nil
}

func allowed[S comparable](next []S, target S) bool {
	for _, s := range next {
		if s == target {
			return true
		}
	}
	return false
}
