// Package accounts serves a signed-in user's own views: the per-role
// dashboard and the role profile.
package accounts

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"studentnest/internal/database"
)

const recentLimit = 5

type Service struct {
	db       *gorm.DB
	users    *database.Database
	logger   *logrus.Logger
	validate *validator.Validate
}

func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		db:       db,
		users:    database.FromGorm(db),
		logger:   logger,
		validate: validator.New(),
	}
}
