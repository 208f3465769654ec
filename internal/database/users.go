package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studentnest/internal/apperror"
	"studentnest/internal/models"
)

// FromGorm wraps an already opened connection
func FromGorm(db *gorm.DB) *Database {
	return &Database{db: db}
}

// CreateUser stores a user together with the empty profile matching its role
func (d *Database) CreateUser(user *models.User) error {
	if !user.Role.Valid() {
		return apperror.Validation("unknown role %q", user.Role)
	}

	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			if IsUniqueViolation(err) {
				return apperror.Conflict("username %q is taken", user.Username)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		switch user.Role {
		case models.RoleStudent:
			user.StudentProfile = &models.StudentProfile{UserID: user.ID}
			if err := tx.Create(user.StudentProfile).Error; err != nil {
				return fmt.Errorf("failed to create student profile: %w", err)
			}
		case models.RoleLandlord:
			user.LandlordProfile = &models.LandlordProfile{UserID: user.ID}
			if err := tx.Create(user.LandlordProfile).Error; err != nil {
				return fmt.Errorf("failed to create landlord profile: %w", err)
			}
		}
		return nil
	})
}

// GetUser loads a user with whichever profile it has
func (d *Database) GetUser(id uuid.UUID) (*models.User, error) {
	return d.findUser("id = ?", id)
}

func (d *Database) GetUserByUsername(username string) (*models.User, error) {
	return d.findUser("username = ?", username)
}

func (d *Database) findUser(query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := d.db.Preload("StudentProfile").Preload("LandlordProfile").Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
