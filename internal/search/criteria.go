package search

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"studentnest/internal/apperror"
	"studentnest/internal/models"
)

// Criteria is the set of optional listing filters. Every field is optional
// and adds at most one predicate.
type Criteria struct {
	Query        string              `form:"q" json:"q" validate:"max=200"`
	City         string              `form:"city" json:"city" validate:"max=100"`
	MinPrice     *float64            `form:"min_price" json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice     *float64            `form:"max_price" json:"max_price" validate:"omitempty,gte=0"`
	PropertyType models.PropertyType `form:"property_type" json:"property_type" validate:"omitempty,oneof=apartment house condo studio dorm shared"`
	RoomType     models.RoomType     `form:"room_type" json:"room_type" validate:"omitempty,oneof=single double triple entire shared"`
	Bedrooms     *int                `form:"bedrooms" json:"bedrooms" validate:"omitempty,gte=0"`

	// A false flag adds no predicate; it never means "must not have"
	Furnished         bool `form:"furnished" json:"furnished"`
	PetFriendly       bool `form:"pet_friendly" json:"pet_friendly"`
	UtilitiesIncluded bool `form:"utilities_included" json:"utilities_included"`
	HasParking        bool `form:"has_parking" json:"has_parking"`

	NearLat  *float64 `form:"near_lat" json:"near_lat" validate:"omitempty,latitude"`
	NearLng  *float64 `form:"near_lng" json:"near_lng" validate:"omitempty,longitude"`
	RadiusKm *float64 `form:"radius_km" json:"radius_km" validate:"omitempty,gt=0,lte=500"`

	Page     int `form:"page" json:"page" validate:"gte=0"`
	PageSize int `form:"page_size" json:"page_size" validate:"gte=0"`
}

// Predicate is one conjunct of the listing query
type Predicate struct {
	Query string
	Args  []interface{}
}

// textFields are matched by the free-text query; any one matching is enough
var textFields = []string{"title", "description", "address", "city", "nearest_university"}

var validate = validator.New()

// Build validates the criteria and returns the predicates to AND together.
// The active-listing predicate is always first.
func Build(c Criteria) ([]Predicate, error) {
	if err := validate.Struct(c); err != nil {
		return nil, apperror.FromValidator(err)
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return nil, apperror.Validation("min_price %.2f is greater than max_price %.2f", *c.MinPrice, *c.MaxPrice)
	}

	predicates := []Predicate{{Query: "is_active = ?", Args: []interface{}{true}}}

	if q := strings.TrimSpace(c.Query); q != "" {
		predicates = append(predicates, textPredicate(q))
	}
	if city := strings.TrimSpace(c.City); city != "" {
		predicates = append(predicates, Predicate{
			Query: `LOWER(city) LIKE ? ESCAPE '\'`,
			Args:  []interface{}{likePattern(city)},
		})
	}
	if c.MinPrice != nil {
		predicates = append(predicates, Predicate{Query: "price_per_month >= ?", Args: []interface{}{*c.MinPrice}})
	}
	if c.MaxPrice != nil {
		predicates = append(predicates, Predicate{Query: "price_per_month <= ?", Args: []interface{}{*c.MaxPrice}})
	}
	if c.PropertyType != "" {
		predicates = append(predicates, Predicate{Query: "property_type = ?", Args: []interface{}{string(c.PropertyType)}})
	}
	if c.RoomType != "" {
		predicates = append(predicates, Predicate{Query: "room_type = ?", Args: []interface{}{string(c.RoomType)}})
	}
	if c.Bedrooms != nil {
		predicates = append(predicates, Predicate{Query: "bedrooms = ?", Args: []interface{}{*c.Bedrooms}})
	}

	flags := []struct {
		set    bool
		column string
	}{
		{c.Furnished, "furnished"},
		{c.PetFriendly, "pet_friendly"},
		{c.UtilitiesIncluded, "utilities_included"},
		{c.HasParking, "has_parking"},
	}
	for _, f := range flags {
		if f.set {
			predicates = append(predicates, Predicate{Query: f.column + " = ?", Args: []interface{}{true}})
		}
	}

	near, err := nearPredicate(c)
	if err != nil {
		return nil, err
	}
	if near != nil {
		predicates = append(predicates, *near)
	}

	return predicates, nil
}

func textPredicate(q string) Predicate {
	pattern := likePattern(q)
	clauses := make([]string, len(textFields))
	args := make([]interface{}, len(textFields))
	for i, field := range textFields {
		clauses[i] = "LOWER(" + field + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return Predicate{Query: "(" + strings.Join(clauses, " OR ") + ")", Args: args}
}

// nearPredicate restricts listings to the bounding box around a point.
// All three of near_lat, near_lng and radius_km must be given together.
func nearPredicate(c Criteria) (*Predicate, error) {
	given := 0
	for _, set := range []bool{c.NearLat != nil, c.NearLng != nil, c.RadiusKm != nil} {
		if set {
			given++
		}
	}
	switch given {
	case 0:
		return nil, nil
	case 3:
	default:
		return nil, apperror.Validation("near_lat, near_lng and radius_km must be given together")
	}

	bound := geo.NewBoundAroundPoint(orb.Point{*c.NearLng, *c.NearLat}, *c.RadiusKm*1000)
	return &Predicate{
		Query: "latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
		Args:  []interface{}{bound.Min.Lat(), bound.Max.Lat(), bound.Min.Lon(), bound.Max.Lon()},
	}, nil
}

// likePattern lower-cases s and escapes LIKE wildcards so user input is
// matched literally
func likePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(s)) + "%"
}
