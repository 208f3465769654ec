// Package listings manages landlords' property listings and students'
// favorites.
package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studentnest/internal/apperror"
	"studentnest/internal/auth"
	"studentnest/internal/database"
	"studentnest/internal/models"
)

const (
	relatedLimit  = 4
	featuredLimit = 8
)

// Detail is a listing as shown on its own page
type Detail struct {
	Property   *models.Property  `json:"property"`
	Amenities  []string          `json:"amenities"`
	Related    []models.Property `json:"related"`
	IsFavorite bool              `json:"is_favorite"`
}

// Portfolio is a landlord's own listings with totals
type Portfolio struct {
	Properties []models.Property    `json:"properties"`
	Stats      models.LandlordStats `json:"stats"`
}

// Locator resolves an address to latitude and longitude
type Locator interface {
	Locate(ctx context.Context, address, city, country string) (float64, float64, error)
}

type Service struct {
	db       *gorm.DB
	policy   auth.Policy
	logger   *logrus.Logger
	validate *validator.Validate
	locator  Locator
}

func NewService(db *gorm.DB, policy auth.Policy, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{db: db, policy: policy, logger: logger, validate: validator.New()}
}

// SetLocator enables filling in coordinates for listings created without them
func (s *Service) SetLocator(l Locator) {
	s.locator = l
}

func (s *Service) locate(ctx context.Context, p *models.Property) {
	if s.locator == nil || (p.Latitude != nil && p.Longitude != nil) {
		return
	}
	lat, lng, err := s.locator.Locate(ctx, p.Address, p.City, p.Country)
	if err != nil {
		s.logger.WithError(err).WithField("city", p.City).Warn("Could not geocode property address")
		return
	}
	p.Latitude = &lat
	p.Longitude = &lng
}

// Create stores a new active, unverified listing owned by the acting landlord
func (s *Service) Create(ctx context.Context, actor auth.Actor, in PropertyInput) (*models.Property, error) {
	if !s.policy.CanActAsLandlord(actor) {
		return nil, apperror.PermissionDenied("only landlords can list a property")
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.FromValidator(err)
	}

	property := in.toModel()
	property.LandlordID = actor.UserID
	s.locate(ctx, property)
	amenities := property.CustomAmenities
	property.CustomAmenities = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(property).Error; err != nil {
			return fmt.Errorf("failed to create property: %w", err)
		}
		if len(amenities) == 0 {
			return nil
		}
		for i := range amenities {
			amenities[i].PropertyID = property.ID
		}
		if err := tx.Create(&amenities).Error; err != nil {
			return fmt.Errorf("failed to create amenities: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	property.CustomAmenities = amenities

	s.logger.WithFields(logrus.Fields{
		"property_id": property.ID,
		"landlord_id": actor.UserID,
		"city":        property.City,
	}).Info("Property listed")

	return property, nil
}

// editableColumns are the columns Update overwrites. Verification, activity
// and counters are left alone.
var editableColumns = []string{
	"title", "description", "property_type", "room_type",
	"address", "city", "state", "zip_code", "country", "latitude", "longitude",
	"price_per_month", "security_deposit", "utilities_included", "wifi_included",
	"bedrooms", "bathrooms", "area_sqft", "furnished", "has_kitchen", "has_laundry",
	"has_parking", "has_gym", "has_pool", "pet_friendly", "smoking_allowed",
	"nearest_university", "distance_to_university", "transport_options",
	"available_from", "available_to", "minimum_stay_months", "maximum_occupants",
}

// Update replaces a listing's editable fields. Custom amenities are replaced
// only when the input names at least one.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in PropertyInput) (*models.Property, error) {
	var existing models.Property
	err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("property %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if !s.policy.CanManageProperty(actor, &existing) {
		return nil, apperror.PermissionDenied("not allowed to change property %s", id)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.FromValidator(err)
	}

	updated := in.toModel()
	amenities := updated.CustomAmenities
	updated.CustomAmenities = nil
	if updated.Latitude == nil && updated.Longitude == nil && sameLocation(&existing, updated) {
		updated.Latitude, updated.Longitude = existing.Latitude, existing.Longitude
	} else {
		s.locate(ctx, updated)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Property{}).
			Where("id = ?", id).
			Select(editableColumns).
			Updates(updated).Error
		if err != nil {
			return fmt.Errorf("failed to update property: %w", err)
		}
		if len(amenities) == 0 {
			return nil
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.Amenity{}).Error; err != nil {
			return fmt.Errorf("failed to clear amenities: %w", err)
		}
		for i := range amenities {
			amenities[i].PropertyID = id
		}
		if err := tx.Create(&amenities).Error; err != nil {
			return fmt.Errorf("failed to create amenities: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var property models.Property
	if err := s.db.WithContext(ctx).Preload("CustomAmenities").First(&property, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload property: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": id,
		"actor_id":    actor.UserID,
	}).Info("Property updated")

	return &property, nil
}

func sameLocation(a, b *models.Property) bool {
	return a.Address == b.Address && a.City == b.City && a.Country == b.Country
}

// Get returns an active listing, counts the view and adds up to four other
// verified listings in the same city. The actor is optional.
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*Detail, error) {
	var property models.Property
	err := s.db.WithContext(ctx).
		Preload("Landlord").
		Preload("CustomAmenities").
		Where("id = ? AND is_active = ?", id, true).
		First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("property %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", property.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count view: %w", err)
	}
	property.ViewCount++

	related := []models.Property{}
	err = s.db.WithContext(ctx).
		Where("is_active = ? AND is_verified = ? AND city = ? AND id <> ?", true, true, property.City, property.ID).
		Order("created_at DESC").
		Limit(relatedLimit).
		Find(&related).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load related properties: %w", err)
	}

	detail := &Detail{Property: &property, Amenities: property.Amenities(), Related: related}
	if actor != nil {
		var count int64
		err = s.db.WithContext(ctx).
			Model(&models.FavoriteProperty{}).
			Where("user_id = ? AND property_id = ?", actor.UserID, property.ID).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check favorite: %w", err)
		}
		detail.IsFavorite = count > 0
	}
	return detail, nil
}

// Deactivate hides a listing from search. Listings are never hard-deleted
// because bookings reference them.
func (s *Service) Deactivate(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	var property models.Property
	err := s.db.WithContext(ctx).First(&property, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("property %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to load property: %w", err)
	}
	if !s.policy.CanManageProperty(actor, &property) {
		return apperror.PermissionDenied("not allowed to change property %s", id)
	}

	err = s.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", id).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate property: %w", err)
	}

	s.logger.WithField("property_id", id).Info("Property deactivated")
	return nil
}

// ToggleFavorite adds the listing to the actor's favorites, or removes it
// when already there, keeping favorite_count in step. It reports whether the
// listing is a favorite afterwards.
func (s *Service) ToggleFavorite(ctx context.Context, actor auth.Actor, id uuid.UUID) (bool, error) {
	var favorited bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		err := tx.Where("id = ? AND is_active = ?", id, true).First(&property).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("property %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("failed to load property: %w", err)
		}

		var existing models.FavoriteProperty
		err = tx.Where("user_id = ? AND property_id = ?", actor.UserID, id).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("failed to remove favorite: %w", err)
			}
			favorited = false
			return tx.Model(&models.Property{}).
				Where("id = ?", id).
				UpdateColumn("favorite_count", gorm.Expr("CASE WHEN favorite_count > 0 THEN favorite_count - 1 ELSE 0 END")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			favorite := &models.FavoriteProperty{UserID: actor.UserID, PropertyID: id}
			if err := tx.Omit(clause.Associations).Create(favorite).Error; err != nil {
				if database.IsUniqueViolation(err) {
					return apperror.Conflict("property %s is already a favorite", id)
				}
				return fmt.Errorf("failed to add favorite: %w", err)
			}
			favorited = true
			return tx.Model(&models.Property{}).
				Where("id = ?", id).
				UpdateColumn("favorite_count", gorm.Expr("favorite_count + ?", 1)).Error
		default:
			return fmt.Errorf("failed to load favorite: %w", err)
		}
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

// Favorites returns the actor's saved listings, most recently saved first
func (s *Service) Favorites(ctx context.Context, actor auth.Actor) ([]models.FavoriteProperty, error) {
	favorites := []models.FavoriteProperty{}
	err := s.db.WithContext(ctx).
		Preload("Property").
		Where("user_id = ?", actor.UserID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}

// Mine returns every listing of the acting landlord, active or not
func (s *Service) Mine(ctx context.Context, actor auth.Actor) (*Portfolio, error) {
	if !s.policy.CanActAsLandlord(actor) {
		return nil, apperror.PermissionDenied("only landlords have listings")
	}

	portfolio := &Portfolio{Properties: []models.Property{}}
	err := s.db.WithContext(ctx).
		Where("landlord_id = ?", actor.UserID).
		Order("created_at DESC").
		Find(&portfolio.Properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	for _, p := range portfolio.Properties {
		portfolio.Stats.TotalProperties++
		if p.IsActive {
			portfolio.Stats.ActiveProperties++
		}
		if p.IsVerified {
			portfolio.Stats.VerifiedProperties++
		}
	}
	return portfolio, nil
}

// SiteStats summarises the active catalogue for the landing page
func (s *Service) SiteStats(ctx context.Context) (*models.SiteStats, error) {
	stats := &models.SiteStats{Featured: []models.Property{}}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Property{}).Where("is_active = ?", true).Count(&stats.TotalProperties).Error; err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	if err := db.Model(&models.Property{}).Where("is_active = ? AND is_verified = ?", true, true).Count(&stats.VerifiedProperties).Error; err != nil {
		return nil, fmt.Errorf("failed to count verified properties: %w", err)
	}
	if err := db.Model(&models.Property{}).Where("is_active = ?", true).Distinct("landlord_id").Count(&stats.ActiveLandlords).Error; err != nil {
		return nil, fmt.Errorf("failed to count landlords: %w", err)
	}

	err := db.Preload("Landlord").
		Where("is_active = ? AND is_verified = ?", true, true).
		Order("created_at DESC").
		Limit(featuredLimit).
		Find(&stats.Featured).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load featured properties: %w", err)
	}
	return stats, nil
}
