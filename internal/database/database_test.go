package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentnest/internal/apperror"
	"studentnest/internal/models"
)

func TestMigrateSchemaCreatesTables(t *testing.T) {
	db, err := NewTestDB()
	require.NoError(t, err)
	require.NoError(t, MigrateSchema(db))

	for _, table := range []string{"users", "properties", "bookings", "inquiries", "notifications", "favorite_properties"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// Running twice must be harmless
	assert.NoError(t, MigrateSchema(db))
}

func TestNewTestDBIsIsolated(t *testing.T) {
	first, err := NewTestDB()
	require.NoError(t, err)
	require.NoError(t, MigrateSchema(first))
	require.NoError(t, first.Create(&models.User{Username: "only-here", Role: models.RoleStudent}).Error)

	second, err := NewTestDB()
	require.NoError(t, err)
	require.NoError(t, MigrateSchema(second))

	var count int64
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestIsUniqueViolation(t *testing.T) {
	db, err := NewTestDB()
	require.NoError(t, err)
	require.NoError(t, MigrateSchema(db))

	require.NoError(t, db.Create(&models.User{Username: "dup", Role: models.RoleStudent}).Error)
	err = db.Create(&models.User{Username: "dup", Role: models.RoleStudent}).Error
	require.Error(t, err)

	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := NewTestDB()
	require.NoError(t, err)
	require.NoError(t, MigrateSchema(db))

	err = db.Create(&models.Property{
		LandlordID:    uuid.New(),
		Title:         "Orphan",
		PricePerMonth: 500,
		IsActive:      true,
	}).Error
	assert.Error(t, err)
}

func TestNewDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studentnest.db")

	d, err := NewDatabase(DriverSQLite, path, logrus.New())
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.RunMigrations())
	assert.FileExists(t, path)
}

func TestNewDatabaseUnsupportedDriver(t *testing.T) {
	_, err := NewDatabase("oracle", "x", nil)
	assert.Error(t, err)
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "a.db?_foreign_keys=on", withForeignKeys("a.db"))
	assert.Equal(t, "a.db?cache=shared&_foreign_keys=on", withForeignKeys("a.db?cache=shared"))
	assert.Equal(t, "a.db?_fk=1", withForeignKeys("a.db?_fk=1"))
}

func TestCreateUserAddsRoleProfile(t *testing.T) {
	gdb, err := NewTestDB()
	require.NoError(t, err)
	require.NoError(t, MigrateSchema(gdb))
	db := FromGorm(gdb)

	student := &models.User{Username: "sam", Role: models.RoleStudent}
	require.NoError(t, db.CreateUser(student))

	loaded, err := db.GetUserByUsername("sam")
	require.NoError(t, err)
	assert.Equal(t, "student", models.ProfileKind(loaded.Profile()))

	admin := &models.User{Username: "root", Role: models.RoleAdmin, IsStaff: true}
	require.NoError(t, db.CreateUser(admin))
	loaded, err = db.GetUser(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "none", models.ProfileKind(loaded.Profile()))

	err = db.CreateUser(&models.User{Username: "sam", Role: models.RoleLandlord})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	err = db.CreateUser(&models.User{Username: "x", Role: "janitor"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = db.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
