package search

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studentnest/internal/apperror"
	"studentnest/internal/database"
	"studentnest/internal/models"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	db       *gorm.DB
	composer *Composer
	landlord *models.User
	created  time.Time
}

func newFixture(t *testing.T) *fixture {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	require.NoError(t, database.MigrateSchema(db))

	landlord := &models.User{Username: "landlord", Role: models.RoleLandlord}
	require.NoError(t, db.Create(landlord).Error)

	return &fixture{
		db:       db,
		composer: NewComposer(db, logrus.New(), 12, 50),
		landlord: landlord,
		created:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// add stores an active listing created one hour after the previous one
func (f *fixture) add(t *testing.T, p models.Property) *models.Property {
	f.created = f.created.Add(time.Hour)
	p.LandlordID = f.landlord.ID
	p.CreatedAt = f.created
	if p.Title == "" {
		p.Title = "Listing"
	}
	if p.PricePerMonth == 0 {
		p.PricePerMonth = 700
	}
	require.NoError(t, f.db.Create(&p).Error)
	return &p
}

func titles(r *Result) []string {
	out := make([]string, len(r.Properties))
	for i, p := range r.Properties {
		out[i] = p.Title
	}
	return out
}

func TestSearchRejectsInvertedPriceRangeWithoutQuerying(t *testing.T) {
	f := newFixture(t)

	queries := 0
	require.NoError(t, f.db.Callback().Query().Before("gorm:query").Register("test:count_queries", func(*gorm.DB) {
		queries++
	}))

	result, err := f.composer.Search(context.Background(), Criteria{MinPrice: ptr(1000.0), MaxPrice: ptr(500.0)})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, queries)
}

func TestSearchDefaultOrdering(t *testing.T) {
	f := newFixture(t)
	f.add(t, models.Property{Title: "unverified-old", IsActive: true})
	f.add(t, models.Property{Title: "verified-old", IsActive: true, IsVerified: true})
	f.add(t, models.Property{Title: "verified-mid", IsActive: true, IsVerified: true})
	f.add(t, models.Property{Title: "unverified-new", IsActive: true})
	f.add(t, models.Property{Title: "verified-new", IsActive: true, IsVerified: true})
	f.add(t, models.Property{Title: "inactive", IsActive: false, IsVerified: true})

	result, err := f.composer.Search(context.Background(), Criteria{})
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.Total)
	assert.Equal(t, []string{
		"verified-new", "verified-mid", "verified-old",
		"unverified-new", "unverified-old",
	}, titles(result))
}

func TestSearchFreeTextMatchesAnyField(t *testing.T) {
	f := newFixture(t)
	f.add(t, models.Property{Title: "Downtown Loft", IsActive: true})
	f.add(t, models.Property{Title: "a", Description: "Walk to DOWNTOWN bars", IsActive: true})
	f.add(t, models.Property{Title: "b", Address: "1 downtown road", IsActive: true})
	f.add(t, models.Property{Title: "c", City: "Downtownville", IsActive: true})
	f.add(t, models.Property{Title: "d", NearestUniversity: "Downtown College", IsActive: true})
	f.add(t, models.Property{Title: "Suburban House", City: "Springfield", IsActive: true})

	result, err := f.composer.Search(context.Background(), Criteria{Query: "downtown"})
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.Total)
	assert.NotContains(t, titles(result), "Suburban House")
}

func TestSearchFreeTextEscapesWildcards(t *testing.T) {
	f := newFixture(t)
	f.add(t, models.Property{Title: "100% furnished", IsActive: true})
	f.add(t, models.Property{Title: "1000 sqft", IsActive: true})

	result, err := f.composer.Search(context.Background(), Criteria{Query: "100%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% furnished"}, titles(result))
}

func TestSearchFilters(t *testing.T) {
	f := newFixture(t)
	f.add(t, models.Property{Title: "cheap-studio", City: "Boston", PricePerMonth: 400, Type: models.PropertyTypeStudio, RoomType: models.RoomTypeEntire, Bedrooms: 1, IsActive: true})
	f.add(t, models.Property{Title: "mid-apartment", City: "Cambridge", PricePerMonth: 800, Type: models.PropertyTypeApartment, RoomType: models.RoomTypeSingle, Bedrooms: 2, Furnished: true, PetFriendly: true, IsActive: true})
	f.add(t, models.Property{Title: "pricey-house", City: "Boston", PricePerMonth: 1500, Type: models.PropertyTypeHouse, RoomType: models.RoomTypeEntire, Bedrooms: 3, HasParking: true, UtilitiesIncluded: true, IsActive: true})

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"city is case-insensitive substring", Criteria{City: "bost"}, []string{"pricey-house", "cheap-studio"}},
		{"min price inclusive", Criteria{MinPrice: ptr(800.0)}, []string{"pricey-house", "mid-apartment"}},
		{"max price inclusive", Criteria{MaxPrice: ptr(800.0)}, []string{"mid-apartment", "cheap-studio"}},
		{"price range", Criteria{MinPrice: ptr(500.0), MaxPrice: ptr(1000.0)}, []string{"mid-apartment"}},
		{"property type", Criteria{PropertyType: models.PropertyTypeHouse}, []string{"pricey-house"}},
		{"room type", Criteria{RoomType: models.RoomTypeEntire}, []string{"pricey-house", "cheap-studio"}},
		{"bedrooms", Criteria{Bedrooms: ptr(2)}, []string{"mid-apartment"}},
		{"furnished", Criteria{Furnished: true}, []string{"mid-apartment"}},
		{"pet friendly", Criteria{PetFriendly: true}, []string{"mid-apartment"}},
		{"utilities included", Criteria{UtilitiesIncluded: true}, []string{"pricey-house"}},
		{"parking", Criteria{HasParking: true}, []string{"pricey-house"}},
		{"filters are conjunctive", Criteria{City: "boston", MaxPrice: ptr(1000.0)}, []string{"cheap-studio"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.composer.Search(context.Background(), tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(result))
		})
	}
}

func TestBuildFalseFlagsAddNoPredicate(t *testing.T) {
	predicates, err := Build(Criteria{Furnished: false, PetFriendly: false})
	require.NoError(t, err)
	require.Len(t, predicates, 1)
	assert.Equal(t, "is_active = ?", predicates[0].Query)

	predicates, err = Build(Criteria{Furnished: true, HasParking: true})
	require.NoError(t, err)
	assert.Len(t, predicates, 3)
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
	}{
		{"unknown property type", Criteria{PropertyType: "castle"}},
		{"unknown room type", Criteria{RoomType: "attic"}},
		{"negative price", Criteria{MinPrice: ptr(-1.0)}},
		{"negative page", Criteria{Page: -1}},
		{"partial geo", Criteria{NearLat: ptr(42.0)}},
		{"bad latitude", Criteria{NearLat: ptr(120.0), NearLng: ptr(0.0), RadiusKm: ptr(1.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.criteria)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestSearchNearPoint(t *testing.T) {
	f := newFixture(t)
	f.add(t, models.Property{Title: "near", Latitude: ptr(42.3601), Longitude: ptr(-71.0589), IsActive: true})
	f.add(t, models.Property{Title: "far", Latitude: ptr(40.7128), Longitude: ptr(-74.0060), IsActive: true})
	f.add(t, models.Property{Title: "unknown location", IsActive: true})

	result, err := f.composer.Search(context.Background(), Criteria{
		NearLat:  ptr(42.3500),
		NearLng:  ptr(-71.0600),
		RadiusKm: ptr(5.0),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"near"}, titles(result))
}

func TestSearchPagination(t *testing.T) {
	f := newFixture(t)
	for _, title := range []string{"p1", "p2", "p3", "p4", "p5"} {
		f.add(t, models.Property{Title: title, IsActive: true})
	}

	result, err := f.composer.Search(context.Background(), Criteria{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Total)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, []string{"p1"}, titles(result))

	// Page size is capped
	result, err = f.composer.Search(context.Background(), Criteria{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 50, result.PageSize)
	assert.Len(t, result.Properties, 5)
}

func TestSearchTiesBreakOnIDAcrossPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		p := &models.Property{LandlordID: f.landlord.ID, Title: "Same", PricePerMonth: 600, IsActive: true, CreatedAt: created}
		require.NoError(t, f.db.Create(p).Error)
		ids = append(ids, p.ID.String())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	var seen []string
	for page := 1; page <= 3; page++ {
		result, err := f.composer.Search(ctx, Criteria{Page: page, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), result.Total)
		for _, p := range result.Properties {
			seen = append(seen, p.ID.String())
		}
	}
	assert.Equal(t, ids, seen)

	again, err := f.composer.Search(ctx, Criteria{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, again.Properties, 2)
	assert.Equal(t, ids[2:4], []string{again.Properties[0].ID.String(), again.Properties[1].ID.String()})
}
