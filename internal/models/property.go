package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeCondo     PropertyType = "condo"
	PropertyTypeStudio    PropertyType = "studio"
	PropertyTypeDorm      PropertyType = "dorm"
	PropertyTypeShared    PropertyType = "shared"
)

type RoomType string

const (
	RoomTypeSingle RoomType = "single"
	RoomTypeDouble RoomType = "double"
	RoomTypeTriple RoomType = "triple"
	RoomTypeEntire RoomType = "entire"
	RoomTypeShared RoomType = "shared"
)

// Property is a rental listing owned by a landlord
type Property struct {
	ID          uuid.UUID    `json:"id" gorm:"type:varchar(36);primaryKey"`
	LandlordID  uuid.UUID    `json:"landlord_id" gorm:"type:varchar(36);index;not null"`
	Landlord    *User        `json:"landlord,omitempty" gorm:"foreignKey:LandlordID"`
	Title       string       `json:"title" gorm:"size:255;not null"`
	Description string       `json:"description" gorm:"type:text"`
	Type        PropertyType `json:"property_type" gorm:"column:property_type;size:20;index"`
	RoomType    RoomType     `json:"room_type" gorm:"size:20"`
	Address     string       `json:"address" gorm:"type:text"`
	City        string       `json:"city" gorm:"size:100;index"`
	State       string       `json:"state" gorm:"size:100"`
	ZipCode     string       `json:"zip_code" gorm:"size:20"`
	Country     string       `json:"country" gorm:"size:100"`
	Latitude    *float64     `json:"latitude"`
	Longitude   *float64     `json:"longitude"`

	PricePerMonth     float64 `json:"price_per_month" gorm:"not null"`
	SecurityDeposit   float64 `json:"security_deposit"`
	UtilitiesIncluded bool    `json:"utilities_included"`
	WifiIncluded      bool    `json:"wifi_included"`

	Bedrooms       int     `json:"bedrooms"`
	Bathrooms      float64 `json:"bathrooms"`
	AreaSqft       *int    `json:"area_sqft"`
	Furnished      bool    `json:"furnished"`
	HasKitchen     bool    `json:"has_kitchen"`
	HasLaundry     bool    `json:"has_laundry"`
	HasParking     bool    `json:"has_parking"`
	HasGym         bool    `json:"has_gym"`
	HasPool        bool    `json:"has_pool"`
	PetFriendly    bool    `json:"pet_friendly"`
	SmokingAllowed bool    `json:"smoking_allowed"`

	NearestUniversity    string  `json:"nearest_university" gorm:"size:255"`
	DistanceToUniversity float64 `json:"distance_to_university"`
	TransportOptions     string  `json:"transport_options" gorm:"type:text"`

	AvailableFrom     time.Time  `json:"available_from"`
	AvailableTo       *time.Time `json:"available_to"`
	MinimumStayMonths int        `json:"minimum_stay_months"`
	MaximumOccupants  int        `json:"maximum_occupants"`
	IsVerified        bool       `json:"is_verified" gorm:"index"`
	IsActive          bool       `json:"is_active" gorm:"index"`
	VerificationNotes string     `json:"verification_notes,omitempty" gorm:"type:text"`
	VerifiedAt        *time.Time `json:"verified_at"`
	ViewCount         int        `json:"view_count"`
	FavoriteCount     int        `json:"favorite_count"`
	CustomAmenities   []Amenity  `json:"custom_amenities,omitempty" gorm:"foreignKey:PropertyID"`
	CreatedAt         time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Amenities returns the display labels of the boolean amenities a listing offers
func (p *Property) Amenities() []string {
	amenities := []string{}
	if p.Furnished {
		amenities = append(amenities, "Furnished")
	}
	if p.HasKitchen {
		amenities = append(amenities, "Kitchen")
	}
	if p.HasLaundry {
		amenities = append(amenities, "Laundry")
	}
	if p.HasParking {
		amenities = append(amenities, "Parking")
	}
	if p.HasGym {
		amenities = append(amenities, "Gym")
	}
	if p.HasPool {
		amenities = append(amenities, "Pool")
	}
	if p.PetFriendly {
		amenities = append(amenities, "Pet Friendly")
	}
	if p.UtilitiesIncluded {
		amenities = append(amenities, "Utilities Included")
	}
	if p.WifiIncluded {
		amenities = append(amenities, "WiFi Included")
	}
	return amenities
}

// Amenity is a free-form amenity a landlord attached to a listing
type Amenity struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PropertyID  uuid.UUID `json:"property_id" gorm:"type:varchar(36);index;not null"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description,omitempty" gorm:"size:255"`
}

// FavoriteProperty links a user to a listing they saved
type FavoriteProperty struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_favorite_user_property;not null"`
	PropertyID uuid.UUID `json:"property_id" gorm:"type:varchar(36);uniqueIndex:idx_favorite_user_property;not null"`
	Property   *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	CreatedAt  time.Time `json:"created_at"`
}

// SiteStats summarises the active catalogue
type SiteStats struct {
	TotalProperties    int64      `json:"total_properties"`
	VerifiedProperties int64      `json:"verified_properties"`
	ActiveLandlords    int64      `json:"active_landlords"`
	Featured           []Property `json:"featured"`
}

// LandlordStats summarises a landlord's own listings
type LandlordStats struct {
	TotalProperties    int64 `json:"total_properties"`
	ActiveProperties   int64 `json:"active_properties"`
	VerifiedProperties int64 `json:"verified_properties"`
}
