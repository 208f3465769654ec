package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"studentnest/internal/apperror"
	"studentnest/internal/auth"
	"studentnest/internal/models"
)

// ProfileInput is a partial update of the caller's role profile. Only the
// fields of the caller's own variant may be set.
type ProfileInput struct {
	BudgetMin           *float64 `json:"budget_min" validate:"omitempty,gte=0"`
	BudgetMax           *float64 `json:"budget_max" validate:"omitempty,gte=0"`
	PreferredLocation   *string  `json:"preferred_location" validate:"omitempty,max=255"`
	RoomTypePreference  *string  `json:"room_type_preference" validate:"omitempty,max=50"`
	MoveInDate          *string  `json:"move_in_date" validate:"omitempty,datetime=2006-01-02"`
	SpecialRequirements *string  `json:"special_requirements" validate:"omitempty,max=2000"`

	CompanyName   *string `json:"company_name" validate:"omitempty,max=255"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=255"`
	Address       *string `json:"address" validate:"omitempty,max=1000"`
	TaxID         *string `json:"tax_id" validate:"omitempty,max=100"`
}

func (in ProfileInput) hasStudentFields() bool {
	return in.BudgetMin != nil || in.BudgetMax != nil || in.PreferredLocation != nil ||
		in.RoomTypePreference != nil || in.MoveInDate != nil || in.SpecialRequirements != nil
}

func (in ProfileInput) hasLandlordFields() bool {
	return in.CompanyName != nil || in.ContactPerson != nil || in.Address != nil || in.TaxID != nil
}

// UpdateProfile applies in to the actor's student or landlord profile and
// returns the stored profile
func (s *Service) UpdateProfile(ctx context.Context, actor auth.Actor, in ProfileInput) (models.Profile, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.FromValidator(err)
	}

	user, err := s.users.GetUser(actor.UserID)
	if err != nil {
		return nil, err
	}

	var profile interface{}
	switch p := user.Profile().(type) {
	case *models.StudentProfile:
		if in.hasLandlordFields() {
			return nil, apperror.Validation("landlord fields cannot be set on a student profile")
		}
		if err := applyStudent(p, in); err != nil {
			return nil, err
		}
		profile = p
	case *models.LandlordProfile:
		if in.hasStudentFields() {
			return nil, apperror.Validation("student fields cannot be set on a landlord profile")
		}
		applyLandlord(p, in)
		profile = p
	case models.NoProfile:
		return nil, apperror.NotFound("user %s has no profile", actor.UserID)
	default:
		return nil, fmt.Errorf("unexpected profile type %T", p)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": actor.UserID,
		"profile": models.ProfileKind(user.Profile()),
	}).Info("Profile updated")

	return user.Profile(), nil
}

func applyStudent(p *models.StudentProfile, in ProfileInput) error {
	if in.BudgetMin != nil {
		p.BudgetMin = *in.BudgetMin
	}
	if in.BudgetMax != nil {
		p.BudgetMax = *in.BudgetMax
	}
	if p.BudgetMax > 0 && p.BudgetMin > p.BudgetMax {
		return apperror.Validation("budget_min %.2f exceeds budget_max %.2f", p.BudgetMin, p.BudgetMax)
	}
	if in.PreferredLocation != nil {
		p.PreferredLocation = *in.PreferredLocation
	}
	if in.RoomTypePreference != nil {
		p.RoomTypePreference = *in.RoomTypePreference
	}
	if in.MoveInDate != nil {
		if *in.MoveInDate == "" {
			p.MoveInDate = nil
		} else {
			date, err := time.Parse("2006-01-02", *in.MoveInDate)
			if err != nil {
				return apperror.Wrap(apperror.KindValidation, err, "invalid move_in_date")
			}
			p.MoveInDate = &date
		}
	}
	if in.SpecialRequirements != nil {
		p.SpecialRequirements = *in.SpecialRequirements
	}
	return nil
}

func applyLandlord(p *models.LandlordProfile, in ProfileInput) {
	if in.CompanyName != nil {
		p.CompanyName = *in.CompanyName
	}
	if in.ContactPerson != nil {
		p.ContactPerson = *in.ContactPerson
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.TaxID != nil {
		p.TaxID = *in.TaxID
	}
}
