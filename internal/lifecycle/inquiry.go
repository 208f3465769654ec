package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studentnest/internal/apperror"
	"studentnest/internal/auth"
	"studentnest/internal/models"
)

type InquiryRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

var inquiryTargets = map[models.InquiryStatus]bool{
	models.InquiryContacted: true,
	models.InquiryResponded: true,
	models.InquiryClosed:    true,
}

var inquiryGraph = map[models.InquiryStatus][]models.InquiryStatus{
	models.InquiryNew:       {models.InquiryContacted, models.InquiryResponded, models.InquiryClosed},
	models.InquiryContacted: {models.InquiryResponded, models.InquiryClosed},
	models.InquiryResponded: {models.InquiryClosed},
}

// CreateInquiry records a new inquiry by the acting student and notifies the
// landlord
func (m *Manager) CreateInquiry(ctx context.Context, actor auth.Actor, propertyID uuid.UUID, req InquiryRequest) (*models.Inquiry, error) {
	if !m.policy.CanActAsStudent(actor) {
		return nil, apperror.PermissionDenied("only students can send inquiries")
	}
	if err := m.validate.Struct(req); err != nil {
		return nil, apperror.FromValidator(err)
	}

	property, err := m.activeProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	inquiry := &models.Inquiry{
		PropertyID: property.ID,
		StudentID:  actor.UserID,
		Message:    req.Message,
		Status:     models.InquiryNew,
		Version:    1,
		CreatedAt:  m.now(),
	}
	if err := m.db.WithContext(ctx).Omit(clause.Associations).Create(inquiry).Error; err != nil {
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}
	inquiry.Property = property

	m.logger.WithFields(logrus.Fields{
		"inquiry_id":  inquiry.ID,
		"property_id": property.ID,
	}).Info("Inquiry created")

	m.emit(ctx, &models.Notification{
		UserID:  property.LandlordID,
		Type:    models.NotifyInquiry,
		Title:   "New Property Inquiry",
		Message: fmt.Sprintf("%s has inquired about your property: %s", displayName(actor), property.Title),
		Data: payload(map[string]string{
			"inquiry_id":  inquiry.ID.String(),
			"property_id": property.ID.String(),
		}),
	})

	return inquiry, nil
}

// TransitionInquiry moves an inquiry to target on behalf of the listing's
// landlord. Only a move to responded notifies the student.
func (m *Manager) TransitionInquiry(ctx context.Context, actor auth.Actor, inquiryID uuid.UUID, target models.InquiryStatus) (*models.Inquiry, error) {
	inquiry, err := m.loadInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if !m.policy.CanManageInquiry(actor, inquiry) {
		return nil, apperror.PermissionDenied("not allowed to update inquiry %s", inquiryID)
	}
	if !inquiryTargets[target] {
		return nil, apperror.InvalidTransition("%q is not a valid inquiry status", target)
	}
	if m.strict && !allowed(inquiryGraph[inquiry.Status], target) {
		return nil, apperror.InvalidTransition("inquiry cannot move from %s to %s", inquiry.Status, target)
	}

	now := m.now()
	result := m.db.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("id = ? AND version = ?", inquiry.ID, inquiry.Version).
		Updates(map[string]interface{}{
			"status":     target,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update inquiry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.Conflict("inquiry %s was modified concurrently", inquiry.ID)
	}

	previous := inquiry.Status
	inquiry.Status = target
	inquiry.Version++
	inquiry.UpdatedAt = now

	m.logger.WithFields(logrus.Fields{
		"inquiry_id": inquiry.ID,
		"from":       previous,
		"to":         target,
	}).Info("Inquiry status updated")

	if target == models.InquiryResponded {
		m.emit(ctx, &models.Notification{
			UserID:  inquiry.StudentID,
			Type:    models.NotifyInquiryResponse,
			Title:   "Inquiry Response",
			Message: fmt.Sprintf("The landlord has responded to your inquiry about %s.", inquiry.Property.Title),
			Data:    payload(map[string]string{"inquiry_id": inquiry.ID.String()}),
		})
	}

	return inquiry, nil
}

// ListInquiries returns the inquiries a student sent or a landlord received,
// newest first, with new and responded counts
func (m *Manager) ListInquiries(ctx context.Context, actor auth.Actor) (*models.InquirySummary, error) {
	summary := &models.InquirySummary{Inquiries: []models.Inquiry{}}

	query := m.db.WithContext(ctx).Preload("Property").Order("inquiries.created_at DESC").Order("inquiries.id DESC")
	switch {
	case actor.IsStudent():
		query = query.Where("inquiries.student_id = ?", actor.UserID)
	case actor.IsLandlord():
		query = query.
			Joins("JOIN properties ON properties.id = inquiries.property_id").
			Where("properties.landlord_id = ?", actor.UserID)
	default:
		return summary, nil
	}

	if err := query.Find(&summary.Inquiries).Error; err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}

	for _, i := range summary.Inquiries {
		switch i.Status {
		case models.InquiryNew:
			summary.NewCount++
		case models.InquiryResponded:
			summary.RespondedCount++
		}
	}
	return summary, nil
}

func (m *Manager) loadInquiry(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := m.db.WithContext(ctx).Preload("Property").First(&inquiry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("inquiry %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inquiry: %w", err)
	}
	return &inquiry, nil
}
