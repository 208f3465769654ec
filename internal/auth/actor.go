package auth

import (
	"github.com/google/uuid"

	"studentnest/internal/models"
)

// Actor is the authenticated party behind a request. It is passed explicitly
// into every operation that needs to authorise something.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
	Staff  bool
	Name   string
}

func (a Actor) IsStudent() bool  { return a.Role == models.RoleStudent }
func (a Actor) IsLandlord() bool { return a.Role == models.RoleLandlord }

// IsAdmin reports whether the actor has administrator capabilities
func (a Actor) IsAdmin() bool {
	return a.Staff || a.Role == models.RoleAdmin
}

// ActorFromUser builds the actor for a stored user
func ActorFromUser(u *models.User) Actor {
	return Actor{
		UserID: u.ID,
		Role:   u.Role,
		Staff:  u.IsStaff,
		Name:   u.FullName(),
	}
}
