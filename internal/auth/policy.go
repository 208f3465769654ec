package auth

import (
	"studentnest/internal/models"
)

// Policy holds the capability predicates checked before any mutation.
// AdminOverride lets administrators act where a specific party is required.
type Policy struct {
	AdminOverride bool
}

func NewPolicy(adminOverride bool) Policy {
	return Policy{AdminOverride: adminOverride}
}

func (p Policy) admin(a Actor) bool {
	return p.AdminOverride && a.IsAdmin()
}

// CanActAsStudent gates creating bookings and inquiries
func (p Policy) CanActAsStudent(a Actor) bool {
	return a.IsStudent() || p.admin(a)
}

// CanActAsLandlord gates creating listings
func (p Policy) CanActAsLandlord(a Actor) bool {
	return a.IsLandlord() || p.admin(a)
}

// CanManageBooking gates status transitions on a booking
func (p Policy) CanManageBooking(a Actor, b *models.Booking) bool {
	return a.UserID == b.LandlordID || p.admin(a)
}

// CanViewBooking allows either party to the booking, or an administrator
func (p Policy) CanViewBooking(a Actor, b *models.Booking) bool {
	return a.UserID == b.StudentID || a.UserID == b.LandlordID || p.admin(a)
}

// CanManageInquiry gates status transitions on an inquiry. The property must
// be loaded.
func (p Policy) CanManageInquiry(a Actor, i *models.Inquiry) bool {
	if i.Property != nil && a.UserID == i.Property.LandlordID {
		return true
	}
	return p.admin(a)
}

// CanManageProperty gates changes to a listing
func (p Policy) CanManageProperty(a Actor, prop *models.Property) bool {
	return a.UserID == prop.LandlordID || p.admin(a)
}
