package database

import (
	"fmt"

	"gorm.io/gorm"

	"studentnest/internal/models"
)

// MigrateSchema creates or updates every table and the listing indexes
func MigrateSchema(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.LandlordProfile{},
		&models.Property{},
		&models.Amenity{},
		&models.FavoriteProperty{},
		&models.Booking{},
		&models.Inquiry{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Matches the default search ordering
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_listing_order
		ON properties(is_active, is_verified, created_at);
	`).Error
	if err != nil {
		return fmt.Errorf("failed to create listing order index: %w", err)
	}

	// Create spatial index on coordinates
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_coordinates
		ON properties(latitude, longitude);
	`).Error
	if err != nil {
		return fmt.Errorf("failed to create coordinates index: %w", err)
	}

	return nil
}
