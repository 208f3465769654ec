package listings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studentnest/internal/apperror"
	"studentnest/internal/auth"
	"studentnest/internal/database"
	"studentnest/internal/models"
)

type fixture struct {
	db       *gorm.DB
	service  *Service
	landlord auth.Actor
	other    auth.Actor
	student  auth.Actor
}

func newFixture(t *testing.T) *fixture {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	require.NoError(t, database.MigrateSchema(db))

	landlord := &models.User{Username: "lena", Role: models.RoleLandlord}
	other := &models.User{Username: "otto", Role: models.RoleLandlord}
	student := &models.User{Username: "sam", Role: models.RoleStudent}
	for _, u := range []*models.User{landlord, other, student} {
		require.NoError(t, db.Create(u).Error)
	}

	return &fixture{
		db:       db,
		service:  NewService(db, auth.NewPolicy(true), logrus.New()),
		landlord: auth.ActorFromUser(landlord),
		other:    auth.ActorFromUser(other),
		student:  auth.ActorFromUser(student),
	}
}

func validInput() PropertyInput {
	return PropertyInput{
		Title:            "Garden Room",
		PropertyType:     models.PropertyTypeHouse,
		RoomType:         models.RoomTypeSingle,
		Address:          "12 Elm Street",
		City:             "Leeds",
		MaximumOccupants: 1,
		PricePerMonth:    550,
		AvailableFrom:    time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		Furnished:        true,
		WifiIncluded:     true,
		Amenities:        []string{" Bike storage ", "", "Garden"},
	}
}

func (f *fixture) seed(t *testing.T, owner auth.Actor, title, city string, verified, active bool, created time.Time) *models.Property {
	p := &models.Property{
		LandlordID:    owner.UserID,
		Title:         title,
		City:          city,
		PricePerMonth: 500,
		IsVerified:    verified,
		IsActive:      active,
		CreatedAt:     created,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	property, err := f.service.Create(ctx, f.landlord, validInput())
	require.NoError(t, err)
	assert.True(t, property.IsActive)
	assert.False(t, property.IsVerified)
	assert.Equal(t, f.landlord.UserID, property.LandlordID)

	var amenities []models.Amenity
	require.NoError(t, f.db.Where("property_id = ?", property.ID).Order("id").Find(&amenities).Error)
	require.Len(t, amenities, 2)
	assert.Equal(t, "Bike storage", amenities[0].Name)
	assert.Equal(t, "Garden", amenities[1].Name)

	_, err = f.service.Create(ctx, f.student, validInput())
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	invalid := validInput()
	invalid.PricePerMonth = 0
	invalid.PropertyType = "castle"
	_, err = f.service.Create(ctx, f.landlord, invalid)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

type stubLocator struct {
	calls int
	err   error
}

func (l *stubLocator) Locate(ctx context.Context, address, city, country string) (float64, float64, error) {
	l.calls++
	if l.err != nil {
		return 0, 0, l.err
	}
	return 53.8, -1.55, nil
}

func TestCreateGeocodesMissingCoordinates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	locator := &stubLocator{}
	f.service.SetLocator(locator)

	property, err := f.service.Create(ctx, f.landlord, validInput())
	require.NoError(t, err)
	require.NotNil(t, property.Latitude)
	assert.Equal(t, 53.8, *property.Latitude)
	assert.Equal(t, -1.55, *property.Longitude)

	in := validInput()
	lat, lng := 51.5, -0.12
	in.Latitude, in.Longitude = &lat, &lng
	property, err = f.service.Create(ctx, f.landlord, in)
	require.NoError(t, err)
	assert.Equal(t, 51.5, *property.Latitude)
	assert.Equal(t, 1, locator.calls)

	// Geocoding failures leave the listing without coordinates
	locator.err = fmt.Errorf("no results")
	property, err = f.service.Create(ctx, f.landlord, validInput())
	require.NoError(t, err)
	assert.Nil(t, property.Latitude)
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	main := f.seed(t, f.landlord, "main", "Leeds", true, true, base)
	for i := 0; i < 5; i++ {
		f.seed(t, f.other, fmt.Sprintf("related-%d", i), "Leeds", true, true, base.Add(time.Duration(i+1)*time.Hour))
	}
	f.seed(t, f.other, "unverified", "Leeds", false, true, base)
	f.seed(t, f.other, "elsewhere", "York", true, true, base)
	hidden := f.seed(t, f.other, "hidden", "Leeds", true, false, base)

	detail, err := f.service.Get(ctx, nil, main.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Property.ViewCount)
	assert.False(t, detail.IsFavorite)
	require.Len(t, detail.Related, 4)
	assert.Equal(t, "related-4", detail.Related[0].Title)
	for _, r := range detail.Related {
		assert.NotEqual(t, main.ID, r.ID)
		assert.Equal(t, "Leeds", r.City)
		assert.True(t, r.IsVerified)
	}

	_, err = f.service.ToggleFavorite(ctx, f.student, main.ID)
	require.NoError(t, err)
	detail, err = f.service.Get(ctx, &f.student, main.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsFavorite)
	assert.Equal(t, 2, detail.Property.ViewCount)

	_, err = f.service.Get(ctx, nil, hidden.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, f.landlord, "flat", "Leeds", false, true, time.Now())

	err := f.service.Deactivate(ctx, f.other, p.ID)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)

	require.NoError(t, f.service.Deactivate(ctx, f.landlord, p.ID))

	var stored models.Property
	require.NoError(t, f.db.First(&stored, "id = ?", p.ID).Error)
	assert.False(t, stored.IsActive)

	_, err = f.service.Get(ctx, nil, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.landlord, validInput())
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Property{}).Where("id = ?", created.ID).
		Updates(map[string]interface{}{"is_verified": true, "view_count": 9}).Error)

	in := validInput()
	in.Title = "Garden Room (refurbished)"
	in.PricePerMonth = 600
	in.Furnished = false
	in.Amenities = []string{"Piano"}

	_, err = f.service.Update(ctx, f.other, created.ID, in)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
	_, err = f.service.Update(ctx, f.landlord, uuid.New(), in)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	updated, err := f.service.Update(ctx, f.landlord, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Garden Room (refurbished)", updated.Title)
	assert.Equal(t, 600.0, updated.PricePerMonth)
	assert.False(t, updated.Furnished)
	assert.True(t, updated.IsVerified)
	assert.True(t, updated.IsActive)
	assert.Equal(t, 9, updated.ViewCount)
	assert.Equal(t, f.landlord.UserID, updated.LandlordID)
	require.Len(t, updated.CustomAmenities, 1)
	assert.Equal(t, "Piano", updated.CustomAmenities[0].Name)

	// Without amenities in the input the stored ones stay
	in.Amenities = nil
	updated, err = f.service.Update(ctx, f.landlord, created.ID, in)
	require.NoError(t, err)
	require.Len(t, updated.CustomAmenities, 1)

	invalid := validInput()
	invalid.PricePerMonth = 0
	_, err = f.service.Update(ctx, f.landlord, created.ID, invalid)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	admin := &models.User{Username: "root", Role: models.RoleAdmin, IsStaff: true}
	require.NoError(t, f.db.Create(admin).Error)
	in.Title = "Moderated"
	updated, err = f.service.Update(ctx, auth.ActorFromUser(admin), created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Moderated", updated.Title)
}

func TestUpdateKeepsCoordinatesForSameAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	locator := &stubLocator{}

	in := validInput()
	lat, lng := 51.5, -0.12
	in.Latitude, in.Longitude = &lat, &lng
	created, err := f.service.Create(ctx, f.landlord, in)
	require.NoError(t, err)

	f.service.SetLocator(locator)
	in = validInput()
	in.Title = "Renamed"
	updated, err := f.service.Update(ctx, f.landlord, created.ID, in)
	require.NoError(t, err)
	require.NotNil(t, updated.Latitude)
	assert.Equal(t, 51.5, *updated.Latitude)
	assert.Zero(t, locator.calls)

	in.Address = "1 New Road"
	updated, err = f.service.Update(ctx, f.landlord, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 53.8, *updated.Latitude)
	assert.Equal(t, 1, locator.calls)
}

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seed(t, f.landlord, "flat", "Leeds", false, true, time.Now())

	favorited, err := f.service.ToggleFavorite(ctx, f.student, p.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	favorites, err := f.service.Favorites(ctx, f.student)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	require.NotNil(t, favorites[0].Property)
	assert.Equal(t, "flat", favorites[0].Property.Title)

	var stored models.Property
	require.NoError(t, f.db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, 1, stored.FavoriteCount)

	favorited, err = f.service.ToggleFavorite(ctx, f.student, p.ID)
	require.NoError(t, err)
	assert.False(t, favorited)

	require.NoError(t, f.db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, 0, stored.FavoriteCount)

	favorites, err = f.service.Favorites(ctx, f.student)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestToggleFavoriteInactive(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, f.landlord, "flat", "Leeds", false, false, time.Now())

	_, err := f.service.ToggleFavorite(context.Background(), f.student, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMine(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.seed(t, f.landlord, "a", "Leeds", true, true, now)
	f.seed(t, f.landlord, "b", "Leeds", false, true, now.Add(time.Minute))
	f.seed(t, f.landlord, "c", "Leeds", true, false, now.Add(2*time.Minute))
	f.seed(t, f.other, "d", "Leeds", true, true, now)

	portfolio, err := f.service.Mine(context.Background(), f.landlord)
	require.NoError(t, err)
	require.Len(t, portfolio.Properties, 3)
	assert.Equal(t, "c", portfolio.Properties[0].Title)
	assert.Equal(t, models.LandlordStats{TotalProperties: 3, ActiveProperties: 2, VerifiedProperties: 2}, portfolio.Stats)

	_, err = f.service.Mine(context.Background(), f.student)
	assert.ErrorIs(t, err, apperror.ErrPermissionDenied)
}

func TestSiteStats(t *testing.T) {
	f := newFixture(t)
	base := time.Now()
	for i := 0; i < 9; i++ {
		f.seed(t, f.landlord, fmt.Sprintf("verified-%d", i), "Leeds", true, true, base.Add(time.Duration(i)*time.Minute))
	}
	f.seed(t, f.other, "unverified", "York", false, true, base)
	f.seed(t, f.other, "inactive", "York", true, false, base)

	stats, err := f.service.SiteStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalProperties)
	assert.Equal(t, int64(9), stats.VerifiedProperties)
	assert.Equal(t, int64(2), stats.ActiveLandlords)
	require.Len(t, stats.Featured, 8)
	assert.Equal(t, "verified-8", stats.Featured[0].Title)
}
