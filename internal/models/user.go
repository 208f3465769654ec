package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent  Role = "student"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID              uuid.UUID        `json:"id" gorm:"type:varchar(36);primaryKey"`
	Username        string           `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email           string           `json:"email" gorm:"size:254"`
	FirstName       string           `json:"first_name" gorm:"size:150"`
	LastName        string           `json:"last_name" gorm:"size:150"`
	Role            Role             `json:"user_type" gorm:"column:user_type;size:10;not null"`
	IsStaff         bool             `json:"is_staff"`
	PhoneNumber     string           `json:"phone_number,omitempty" gorm:"size:20"`
	University      string           `json:"university,omitempty" gorm:"size:255"`
	StudentNumber   string           `json:"student_id,omitempty" gorm:"size:50"`
	IsVerified      bool             `json:"is_verified"`
	StudentProfile  *StudentProfile  `json:"-" gorm:"foreignKey:UserID"`
	LandlordProfile *LandlordProfile `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName returns "First Last", falling back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Profile is the role-specific profile attached to a user. Exactly one of
// StudentProfile, LandlordProfile or NoProfile implements it for any user.
type Profile interface {
	profileKind() string
}

// NoProfile is returned for users without a role-specific profile
type NoProfile struct{}

func (NoProfile) profileKind() string { return "none" }

type StudentProfile struct {
	ID                  uint       `json:"-" gorm:"primaryKey"`
	UserID              uuid.UUID  `json:"-" gorm:"type:varchar(36);uniqueIndex;not null"`
	BudgetMin           float64    `json:"budget_min"`
	BudgetMax           float64    `json:"budget_max"`
	PreferredLocation   string     `json:"preferred_location" gorm:"size:255"`
	RoomTypePreference  string     `json:"room_type_preference" gorm:"size:50"`
	MoveInDate          *time.Time `json:"move_in_date"`
	SpecialRequirements string     `json:"special_requirements" gorm:"type:text"`
}

func (*StudentProfile) profileKind() string { return "student" }

type LandlordProfile struct {
	ID            uint       `json:"-" gorm:"primaryKey"`
	UserID        uuid.UUID  `json:"-" gorm:"type:varchar(36);uniqueIndex;not null"`
	CompanyName   string     `json:"company_name" gorm:"size:255"`
	ContactPerson string     `json:"contact_person" gorm:"size:255"`
	Address       string     `json:"address" gorm:"type:text"`
	TaxID         string     `json:"tax_id" gorm:"size:100"`
	Rating        float64    `json:"rating"`
	TotalListings int        `json:"total_listings"`
	VerifiedSince *time.Time `json:"verified_since"`
}

func (*LandlordProfile) profileKind() string { return "landlord" }

// Profile returns the user's profile variant. A user with both profiles
// loaded resolves by role.
func (u *User) Profile() Profile {
	switch {
	case u.StudentProfile != nil && (u.Role == RoleStudent || u.LandlordProfile == nil):
		return u.StudentProfile
	case u.LandlordProfile != nil:
		return u.LandlordProfile
	default:
		return NoProfile{}
	}
}

// ProfileKind returns "student", "landlord" or "none"
func ProfileKind(p Profile) string {
	return p.profileKind()
}
