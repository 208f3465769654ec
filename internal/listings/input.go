package listings

import (
	"strings"
	"time"

	"studentnest/internal/models"
)

// PropertyInput is what a landlord submits when listing a property
type PropertyInput struct {
	Title        string              `json:"title" validate:"required,max=255"`
	Description  string              `json:"description" validate:"max=10000"`
	PropertyType models.PropertyType `json:"property_type" validate:"required,oneof=apartment house condo studio dorm shared"`
	RoomType     models.RoomType     `json:"room_type" validate:"required,oneof=single double triple entire shared"`
	Address      string              `json:"address" validate:"required,max=1000"`
	City         string              `json:"city" validate:"required,max=100"`
	State        string              `json:"state" validate:"max=100"`
	ZipCode      string              `json:"zip_code" validate:"max=20"`
	Country      string              `json:"country" validate:"max=100"`
	Latitude     *float64            `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64            `json:"longitude" validate:"omitempty,longitude"`

	NearestUniversity    string  `json:"nearest_university" validate:"max=255"`
	DistanceToUniversity float64 `json:"distance_to_university" validate:"gte=0"`
	TransportOptions     string  `json:"transport_options" validate:"max=2000"`

	Bedrooms          int     `json:"bedrooms" validate:"gte=0,lte=20"`
	Bathrooms         float64 `json:"bathrooms" validate:"gte=0,lte=20"`
	AreaSqft          *int    `json:"area_sqft" validate:"omitempty,gte=0"`
	MaximumOccupants  int     `json:"maximum_occupants" validate:"gte=1,lte=20"`
	MinimumStayMonths int     `json:"minimum_stay_months" validate:"gte=0,lte=24"`
	PricePerMonth     float64 `json:"price_per_month" validate:"gt=0"`
	SecurityDeposit   float64 `json:"security_deposit" validate:"gte=0"`

	AvailableFrom time.Time  `json:"available_from" validate:"required"`
	AvailableTo   *time.Time `json:"available_to" validate:"omitempty,gtfield=AvailableFrom"`

	Furnished         bool `json:"furnished"`
	HasKitchen        bool `json:"has_kitchen"`
	HasLaundry        bool `json:"has_laundry"`
	HasParking        bool `json:"has_parking"`
	HasGym            bool `json:"has_gym"`
	HasPool           bool `json:"has_pool"`
	PetFriendly       bool `json:"pet_friendly"`
	SmokingAllowed    bool `json:"smoking_allowed"`
	UtilitiesIncluded bool `json:"utilities_included"`
	WifiIncluded      bool `json:"wifi_included"`

	// Free-form amenities beyond the boolean ones
	Amenities []string `json:"amenities" validate:"max=30,dive,max=100"`
}

func (in PropertyInput) toModel() *models.Property {
	p := &models.Property{
		Title:                strings.TrimSpace(in.Title),
		Description:          in.Description,
		Type:                 in.PropertyType,
		RoomType:             in.RoomType,
		Address:              in.Address,
		City:                 strings.TrimSpace(in.City),
		State:                in.State,
		ZipCode:              in.ZipCode,
		Country:              in.Country,
		Latitude:             in.Latitude,
		Longitude:            in.Longitude,
		NearestUniversity:    in.NearestUniversity,
		DistanceToUniversity: in.DistanceToUniversity,
		TransportOptions:     in.TransportOptions,
		Bedrooms:             in.Bedrooms,
		Bathrooms:            in.Bathrooms,
		AreaSqft:             in.AreaSqft,
		MaximumOccupants:     in.MaximumOccupants,
		MinimumStayMonths:    in.MinimumStayMonths,
		PricePerMonth:        in.PricePerMonth,
		SecurityDeposit:      in.SecurityDeposit,
		AvailableFrom:        in.AvailableFrom,
		AvailableTo:          in.AvailableTo,
		Furnished:            in.Furnished,
		HasKitchen:           in.HasKitchen,
		HasLaundry:           in.HasLaundry,
		HasParking:           in.HasParking,
		HasGym:               in.HasGym,
		HasPool:              in.HasPool,
		PetFriendly:          in.PetFriendly,
		SmokingAllowed:       in.SmokingAllowed,
		UtilitiesIncluded:    in.UtilitiesIncluded,
		WifiIncluded:         in.WifiIncluded,
		IsActive:             true,
	}

	for _, name := range in.Amenities {
		if name = strings.TrimSpace(name); name != "" {
			p.CustomAmenities = append(p.CustomAmenities, models.Amenity{Name: name})
		}
	}
	return p
}
