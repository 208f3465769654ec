package accounts

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studentnest/internal/auth"
	"studentnest/internal/models"
)

type StudentDashboard struct {
	FavoriteCount  int64            `json:"favorite_count"`
	BookingCount   int64            `json:"booking_count"`
	InquiryCount   int64            `json:"inquiry_count"`
	RecentBookings []models.Booking `json:"recent_bookings"`
}

type LandlordDashboard struct {
	PropertyCount    int64             `json:"property_count"`
	BookingCount     int64             `json:"booking_count"`
	InquiryCount     int64             `json:"inquiry_count"`
	RecentInquiries  []models.Inquiry  `json:"recent_inquiries"`
	RecentProperties []models.Property `json:"recent_properties"`
}

type StaffDashboard struct {
	TotalUsers           int64 `json:"total_users"`
	TotalProperties      int64 `json:"total_properties"`
	TotalBookings        int64 `json:"total_bookings"`
	PendingVerifications int64 `json:"pending_verifications"`
}

// Dashboard holds exactly one section, chosen by the actor's role. A user
// that is neither student, landlord nor staff gets an empty dashboard.
type Dashboard struct {
	Student  *StudentDashboard  `json:"student,omitempty"`
	Landlord *LandlordDashboard `json:"landlord,omitempty"`
	Staff    *StaffDashboard    `json:"staff,omitempty"`
}

func (s *Service) Dashboard(ctx context.Context, actor auth.Actor) (*Dashboard, error) {
	var err error
	dashboard := &Dashboard{}
	switch {
	case actor.IsStudent():
		dashboard.Student, err = s.studentDashboard(ctx, actor)
	case actor.IsLandlord():
		dashboard.Landlord, err = s.landlordDashboard(ctx, actor)
	case actor.IsAdmin():
		dashboard.Staff, err = s.staffDashboard(ctx)
	}
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (s *Service) studentDashboard(ctx context.Context, actor auth.Actor) (*StudentDashboard, error) {
	db := s.db.WithContext(ctx)
	d := &StudentDashboard{RecentBookings: []models.Booking{}}

	if err := db.Model(&models.FavoriteProperty{}).Where("user_id = ?", actor.UserID).Count(&d.FavoriteCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}
	if err := db.Model(&models.Booking{}).Where("student_id = ?", actor.UserID).Count(&d.BookingCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if err := db.Model(&models.Inquiry{}).Where("student_id = ?", actor.UserID).Count(&d.InquiryCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count inquiries: %w", err)
	}

	err := db.Preload("Property").
		Where("student_id = ?", actor.UserID).
		Order("booked_at DESC").
		Order("id DESC").
		Limit(recentLimit).
		Find(&d.RecentBookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent bookings: %w", err)
	}
	return d, nil
}

func (s *Service) landlordDashboard(ctx context.Context, actor auth.Actor) (*LandlordDashboard, error) {
	db := s.db.WithContext(ctx)
	d := &LandlordDashboard{RecentInquiries: []models.Inquiry{}, RecentProperties: []models.Property{}}

	if err := db.Model(&models.Property{}).Where("landlord_id = ?", actor.UserID).Count(&d.PropertyCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	if err := db.Model(&models.Booking{}).Where("landlord_id = ?", actor.UserID).Count(&d.BookingCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	inquiries := func() *gorm.DB {
		return db.Model(&models.Inquiry{}).
			Joins("JOIN properties ON properties.id = inquiries.property_id").
			Where("properties.landlord_id = ?", actor.UserID)
	}
	if err := inquiries().Count(&d.InquiryCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count inquiries: %w", err)
	}
	err := inquiries().
		Preload("Property").
		Order("inquiries.created_at DESC").
		Order("inquiries.id DESC").
		Limit(recentLimit).
		Find(&d.RecentInquiries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent inquiries: %w", err)
	}

	err = db.Where("landlord_id = ?", actor.UserID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(recentLimit).
		Find(&d.RecentProperties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent properties: %w", err)
	}
	return d, nil
}

func (s *Service) staffDashboard(ctx context.Context) (*StaffDashboard, error) {
	db := s.db.WithContext(ctx)
	d := &StaffDashboard{}

	if err := db.Model(&models.User{}).Count(&d.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&models.Property{}).Count(&d.TotalProperties).Error; err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	if err := db.Model(&models.Booking{}).Count(&d.TotalBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if err := db.Model(&models.Property{}).Where("is_verified = ?", false).Count(&d.PendingVerifications).Error; err != nil {
		return nil, fmt.Errorf("failed to count unverified properties: %w", err)
	}
	return d, nil
}
